package api

import (
	"github.com/podmirror/podmirror/app/database"
	"github.com/podmirror/podmirror/app/resolver"
	"github.com/podmirror/podmirror/app/sync"
	"github.com/podmirror/podmirror/app/tasks"
)

type Handler struct {
	feedRepo  database.FeedStore
	resolver  *resolver.Resolver
	syncer    *sync.Syncer
	scheduler tasks.TaskSchedulerInterface
}

// CreateFeedRequest is the body of a feed provisioning call. Format, quality
// and the numeric settings fall back to defaults when omitted.
type CreateFeedRequest struct {
	URL            string `json:"url" binding:"required"`
	Format         string `json:"format"`
	Quality        string `json:"quality"`
	PageSize       int    `json:"page_size"`
	UpdateInterval int    `json:"update_interval"`
}
