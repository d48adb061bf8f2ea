package sync

import (
	"context"

	"github.com/podmirror/podmirror/app/model"
)

// Entry is a lightweight item stub produced by an upstream listing.
type Entry struct {
	ID    string
	Title string
	URL   string
}

// Resolved is raw per-item metadata as reported upstream. UploadDate is a
// compact calendar string (YYYYMMDD); Size is 0 when upstream cannot report
// an exact byte size for the selected format.
type Resolved struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	Duration    int64  `json:"duration"`
	VideoURL    string `json:"video_url"`
	UploadDate  string `json:"upload_date"`
	Size        int64  `json:"size"`
}

// Extractor lists an upstream window and resolves item metadata.
//
// List must return entries in the upstream's native order; for stream sources
// that order is assumed to be newest-first, which the cursor scan depends on.
// An extractor that cannot guarantee this must not be used for stream feeds.
type Extractor interface {
	List(ctx context.Context, url string, start, count int) ([]Entry, error)
	Resolve(ctx context.Context, entry Entry, formatSpec string) (Resolved, error)
}

// Request describes one synchronization attempt.
type Request struct {
	FeedID   string
	URL      string
	Format   model.Format
	Quality  model.Quality
	Start    int
	Count    int
	PageSize int
	LastID   string
	Kind     model.Kind
	Stored   []model.Episode
}

// Result of a synchronization attempt. Episodes is nil when Dirty is false;
// the caller then persists nothing but the updated timestamp.
type Result struct {
	Episodes []model.Episode
	LastID   string
	Dirty    bool
}
