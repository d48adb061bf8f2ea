package database

import (
	"time"

	"github.com/podmirror/podmirror/app/model"
)

// FeedStore is the persistence contract for feed records. The sync pipeline
// reads a feed once at the start of an attempt and writes at most once at the
// end: either the full episode snapshot with the new cursor, or just the
// updated timestamp when nothing changed.
type FeedStore interface {
	CreateFeed(feed *model.Feed) error
	UpsertFeed(feed *model.Feed) error
	GetFeed(feedID string) (*model.Feed, error)
	GetDueFeeds(now time.Time) ([]string, error)
	GetFeedCount() (int, error)

	UpdateFeedEpisodes(feedID string, episodes []model.Episode, lastID string, updatedAt time.Time) error
	TouchFeed(feedID string, updatedAt time.Time) error

	DeleteFeed(feedID string) error
}
