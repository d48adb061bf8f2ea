package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/podmirror/podmirror/app/cfg"
	"github.com/podmirror/podmirror/app/database"
	"github.com/podmirror/podmirror/app/link"
	"github.com/podmirror/podmirror/app/model"
	"github.com/podmirror/podmirror/app/resolver"
	"github.com/podmirror/podmirror/app/sync"
	"github.com/podmirror/podmirror/app/tasks"
)

func NewHandler(feedRepo database.FeedStore, resolver *resolver.Resolver,
	syncer *sync.Syncer, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		feedRepo:  feedRepo,
		resolver:  resolver,
		syncer:    syncer,
		scheduler: scheduler,
	}
}

func (h *Handler) CreateFeed(c *gin.Context) {
	var req CreateFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.Format == "" {
		req.Format = string(model.FormatVideo)
	}
	if req.Quality == "" {
		req.Quality = string(model.QualityHigh)
	}
	if req.PageSize == 0 {
		req.PageSize = 50
	}
	if req.UpdateInterval == 0 {
		req.UpdateInterval = model.DefaultUpdateInterval
	}

	if _, err := model.FormatSpec(model.Format(req.Format), model.Quality(req.Quality)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.PageSize < 1 || req.PageSize > sync.MaxCount {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Page size out of range"})
		return
	}

	info, err := link.Parse(req.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported link", "details": err.Error()})
		return
	}

	sourceURL, err := link.SourceURL(info.Provider, info.LinkType, info.ItemID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported link", "details": err.Error()})
		return
	}

	feed := &model.Feed{
		ID:             uuid.NewString(),
		Provider:       info.Provider,
		LinkType:       info.LinkType,
		ItemID:         info.ItemID,
		URL:            sourceURL,
		Format:         model.Format(req.Format),
		Quality:        model.Quality(req.Quality),
		PageSize:       req.PageSize,
		UpdateInterval: req.UpdateInterval,
		CreatedAt:      time.Now().UTC(),
	}

	if err := h.feedRepo.CreateFeed(feed); err != nil {
		if errors.Is(err, database.ErrFeedExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Feed already exists"})
			return
		}
		slog.Error("Database error", "operation", "create_feed", "url", req.URL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// Kick off the first synchronization right away instead of waiting for the
	// scheduler tick.
	syncTask := tasks.NewSyncFeedTask(feed.ID, h.feedRepo, h.syncer)
	if err := h.scheduler.EnqueueTask(syncTask); err != nil {
		slog.Warn("Failed to enqueue initial sync", "feed_id", feed.ID, "error", err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":              feed.ID,
		"url":             feed.URL,
		"format":          feed.Format,
		"quality":         feed.Quality,
		"page_size":       feed.PageSize,
		"update_interval": feed.UpdateInterval,
	})
}

func (h *Handler) GetFeedByID(c *gin.Context) {
	id := c.Param("id")

	feed, err := h.feedRepo.GetFeed(id)
	if err != nil {
		if errors.Is(err, database.ErrFeedNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found"})
			return
		}
		slog.Error("Database error", "operation", "get_feed", "feed_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":              feed.ID,
		"provider":        feed.Provider,
		"link_type":       feed.LinkType,
		"item_id":         feed.ItemID,
		"url":             feed.URL,
		"format":          feed.Format,
		"quality":         feed.Quality,
		"page_size":       feed.PageSize,
		"update_interval": feed.UpdateInterval,
		"last_id":         feed.LastID,
		"created_at":      feed.CreatedAt,
		"updated_at":      feed.UpdatedAt,
		"episodes":        feed.Episodes,
	})
}

func (h *Handler) DeleteFeedByID(c *gin.Context) {
	id := c.Param("id")

	if err := h.feedRepo.DeleteFeed(id); err != nil {
		if errors.Is(err, database.ErrFeedNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found"})
			return
		}
		slog.Error("Database error", "operation", "delete_feed", "feed_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) DownloadEpisode(c *gin.Context) {
	feedID := c.Param("id")
	episodeID := c.Param("episode_id")

	feed, err := h.feedRepo.GetFeed(feedID)
	if err != nil {
		if errors.Is(err, database.ErrFeedNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found"})
			return
		}
		slog.Error("Database error", "operation", "get_feed", "feed_id", feedID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !hasEpisode(feed, episodeID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Episode not found"})
		return
	}

	mediaURL, err := h.resolver.URL(c.Request.Context(), feed, episodeID)
	if err != nil {
		slog.Error("Episode resolution failed", "feed_id", feedID, "episode_id", episodeID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to resolve episode"})
		return
	}

	c.Redirect(http.StatusFound, mediaURL)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"version":   cfg.GetVersion(),
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		health["feeds"] = feedCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"version": cfg.GetVersion(),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		stats["feeds"] = feedCount
	}

	c.JSON(http.StatusOK, stats)
}

func hasEpisode(feed *model.Feed, episodeID string) bool {
	for _, ep := range feed.Episodes {
		if ep.ID == episodeID {
			return true
		}
	}
	return false
}
