package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/podmirror/podmirror/app/link"
	"github.com/podmirror/podmirror/app/model"
)

var (
	// ErrFeedNotFound is returned when a feed id has no record.
	ErrFeedNotFound = errors.New("feed not found")
	// ErrFeedExists is returned when creating a feed whose source is already mirrored.
	ErrFeedExists = errors.New("feed already exists")
)

var _ FeedStore = (*FeedRepository)(nil)

// neverSynced marks a feed that has not completed a sync attempt yet; it makes
// new feeds immediately due.
var neverSynced = time.Unix(0, 0).UTC()

// FeedRepository handles database operations for feeds
type FeedRepository struct {
	db *DB
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db *DB) *FeedRepository {
	return &FeedRepository{db: db}
}

// CreateFeed inserts a new feed record with an empty episode list.
func (r *FeedRepository) CreateFeed(feed *model.Feed) error {
	_, err := r.db.Exec(`
		INSERT INTO feeds (id, provider, link_type, item_id, source_url, format, quality, page_size, update_interval, last_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, '', ?, ?)
	`, feed.ID, string(feed.Provider), string(feed.LinkType), feed.ItemID, feed.URL,
		string(feed.Format), string(feed.Quality), feed.PageSize, feed.UpdateInterval,
		feed.CreatedAt.UTC(), neverSynced)

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrFeedExists
		}
		return fmt.Errorf("failed to create feed: %w", err)
	}

	return nil
}

// UpsertFeed registers a declaratively defined feed. The source identity
// (provider, link type, item, format, quality, page size) is the conflict key;
// an existing record keeps its id, episodes and cursor, only the update
// interval is refreshed.
func (r *FeedRepository) UpsertFeed(feed *model.Feed) error {
	_, err := r.db.Exec(`
		INSERT INTO feeds (id, provider, link_type, item_id, source_url, format, quality, page_size, update_interval, last_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, '', ?, ?)
		ON CONFLICT(provider, link_type, item_id, format, quality, page_size)
		DO UPDATE SET update_interval = excluded.update_interval
	`, feed.ID, string(feed.Provider), string(feed.LinkType), feed.ItemID, feed.URL,
		string(feed.Format), string(feed.Quality), feed.PageSize, feed.UpdateInterval,
		feed.CreatedAt.UTC(), neverSynced)
	if err != nil {
		return fmt.Errorf("failed to upsert feed: %w", err)
	}

	return nil
}

// GetFeed returns a feed with its decoded episode list. A corrupted episode
// payload degrades to an empty list with a warning so synchronization can
// still make forward progress.
func (r *FeedRepository) GetFeed(feedID string) (*model.Feed, error) {
	var (
		feed                                model.Feed
		provider, linkType, format, quality string
		episodesData                        []byte
	)

	err := r.db.QueryRow(`
		SELECT id, provider, link_type, item_id, source_url, format, quality, page_size, update_interval, last_id, episodes_data, created_at, updated_at
		FROM feeds
		WHERE id = ?
	`, feedID).Scan(&feed.ID, &provider, &linkType, &feed.ItemID, &feed.URL,
		&format, &quality, &feed.PageSize, &feed.UpdateInterval, &feed.LastID, &episodesData, &feed.CreatedAt, &feed.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrFeedNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	feed.Provider = link.Provider(provider)
	feed.LinkType = link.Type(linkType)
	feed.Format = model.Format(format)
	feed.Quality = model.Quality(quality)

	episodes, err := decodeEpisodes(episodesData)
	if err != nil {
		slog.Warn("Corrupted episode snapshot, starting from an empty list", "feed_id", feedID, "error", err)
		episodes = nil
	}
	feed.Episodes = episodes

	return &feed, nil
}

// GetDueFeeds returns ids of feeds whose last sync is older than their own
// update interval, oldest first.
func (r *FeedRepository) GetDueFeeds(now time.Time) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT id, update_interval, updated_at FROM feeds
		ORDER BY updated_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query due feeds: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var (
			id        string
			interval  int
			updatedAt time.Time
		)
		if err := rows.Scan(&id, &interval, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		if !updatedAt.Add(time.Duration(interval) * time.Second).After(now) {
			ids = append(ids, id)
		}
	}

	return ids, rows.Err()
}

// GetFeedCount returns the total number of mirrored feeds.
func (r *FeedRepository) GetFeedCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM feeds`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count feeds: %w", err)
	}
	return count, nil
}

// UpdateFeedEpisodes persists a new episode snapshot together with the new
// cursor and sync timestamp, as a single write.
func (r *FeedRepository) UpdateFeedEpisodes(feedID string, episodes []model.Episode, lastID string, updatedAt time.Time) error {
	data, err := encodeEpisodes(episodes)
	if err != nil {
		return err
	}

	res, err := r.db.Exec(`
		UPDATE feeds
		SET episodes_data = ?, last_id = ?, updated_at = ?
		WHERE id = ?
	`, data, lastID, updatedAt.UTC(), feedID)
	if err != nil {
		return fmt.Errorf("failed to update feed episodes: %w", err)
	}

	return requireRow(res)
}

// TouchFeed updates only the sync timestamp; used for clean sync attempts.
func (r *FeedRepository) TouchFeed(feedID string, updatedAt time.Time) error {
	res, err := r.db.Exec(`
		UPDATE feeds SET updated_at = ? WHERE id = ?
	`, updatedAt.UTC(), feedID)
	if err != nil {
		return fmt.Errorf("failed to touch feed: %w", err)
	}

	return requireRow(res)
}

// DeleteFeed removes a feed and its episode snapshot.
func (r *FeedRepository) DeleteFeed(feedID string) error {
	res, err := r.db.Exec(`DELETE FROM feeds WHERE id = ?`, feedID)
	if err != nil {
		return fmt.Errorf("failed to delete feed: %w", err)
	}

	return requireRow(res)
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return ErrFeedNotFound
	}
	return nil
}
