package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/podmirror/podmirror/app/database"
	"github.com/podmirror/podmirror/app/sync"
)

// SyncFeedTask runs one synchronization attempt for a feed and persists the
// outcome: the new episode snapshot and cursor when something changed, only
// the sync timestamp when nothing did.
type SyncFeedTask struct {
	Task
	feedRepo database.FeedStore
	syncer   *sync.Syncer
}

func NewSyncFeedTask(feedID string, feedRepo database.FeedStore, syncer *sync.Syncer) *SyncFeedTask {
	return &SyncFeedTask{
		Task:     NewTask(TaskTypeSyncFeed, feedID),
		feedRepo: feedRepo,
		syncer:   syncer,
	}
}

func (t *SyncFeedTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	feed, err := t.feedRepo.GetFeed(t.FeedID)
	if err != nil {
		if errors.Is(err, database.ErrFeedNotFound) {
			slog.Warn("Feed disappeared before sync, dropping task", "feed_id", t.FeedID)
			return nil
		}
		return fmt.Errorf("failed to load feed: %w", err)
	}

	result, err := t.syncer.Sync(ctx, sync.Request{
		FeedID:   feed.ID,
		URL:      feed.URL,
		Format:   feed.Format,
		Quality:  feed.Quality,
		Start:    1,
		Count:    feed.PageSize,
		PageSize: feed.PageSize,
		LastID:   feed.LastID,
		Kind:     feed.Kind(),
		Stored:   feed.Episodes,
	})
	if err != nil {
		if errors.Is(err, sync.ErrInvalidInput) {
			slog.Error("Feed has an invalid sync request, dropping task", "feed_id", t.FeedID, "error", err)
			return nil
		}
		return fmt.Errorf("sync failed: %w", err)
	}

	now := time.Now().UTC()
	if result.Dirty {
		err = t.feedRepo.UpdateFeedEpisodes(t.FeedID, result.Episodes, result.LastID, now)
	} else {
		err = t.feedRepo.TouchFeed(t.FeedID, now)
	}
	if err != nil {
		if errors.Is(err, database.ErrFeedNotFound) {
			slog.Warn("Feed deleted during sync, dropping result", "feed_id", t.FeedID)
			return nil
		}
		return fmt.Errorf("failed to persist sync result: %w", err)
	}

	slog.Info("Task completed",
		"type", "SyncFeed",
		"feed_id", t.FeedID,
		"duration", t.GetDuration(),
		"dirty", result.Dirty,
		"episodes", len(result.Episodes))

	return nil
}
