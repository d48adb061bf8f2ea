package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/podmirror/podmirror/app/config"
	"github.com/podmirror/podmirror/app/database"
	"github.com/podmirror/podmirror/app/link"
	"github.com/podmirror/podmirror/app/model"
)

// RegisterFeedTask materializes a declarative feed definition into a feed
// record. Re-registering an existing source only refreshes its update
// interval; episodes and cursor are kept.
type RegisterFeedTask struct {
	Task
	Definition *config.FeedConfig
	feedRepo   database.FeedStore
}

func NewRegisterFeedTask(definition *config.FeedConfig, feedRepo database.FeedStore) *RegisterFeedTask {
	return &RegisterFeedTask{
		Task:       NewTask(TaskTypeRegisterFeed, definition.Feed.URL),
		Definition: definition,
		feedRepo:   feedRepo,
	}
}

func (t *RegisterFeedTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	info, err := link.Parse(t.Definition.Feed.URL)
	if err != nil {
		return fmt.Errorf("failed to parse feed link: %w", err)
	}

	sourceURL, err := link.SourceURL(info.Provider, info.LinkType, info.ItemID)
	if err != nil {
		return fmt.Errorf("failed to build source url: %w", err)
	}

	feed := &model.Feed{
		ID:             uuid.NewString(),
		Provider:       info.Provider,
		LinkType:       info.LinkType,
		ItemID:         info.ItemID,
		URL:            sourceURL,
		Format:         model.Format(t.Definition.Feed.Format),
		Quality:        model.Quality(t.Definition.Feed.Quality),
		PageSize:       t.Definition.Settings.PageSize,
		UpdateInterval: t.Definition.Settings.UpdateInterval,
		CreatedAt:      time.Now().UTC(),
	}

	if err := t.feedRepo.UpsertFeed(feed); err != nil {
		slog.Error("Task failed", "type", "RegisterFeed", "url", t.Definition.Feed.URL, "error", err)
		return fmt.Errorf("failed to register feed: %w", err)
	}

	slog.Info("Task completed",
		"type", "RegisterFeed",
		"url", t.Definition.Feed.URL,
		"duration", t.GetDuration())

	return nil
}
