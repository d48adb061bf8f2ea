package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/podmirror/podmirror/app/cache"
	"github.com/podmirror/podmirror/app/link"
	"github.com/podmirror/podmirror/app/model"
	"github.com/podmirror/podmirror/app/sync"
)

const (
	defaultTTL     = 15 * time.Minute
	defaultTimeout = 1 * time.Minute
)

// Resolver turns a feed episode into a playable media URL for the feed's
// format and quality. Results are cached for a short period because upstream
// download URLs expire.
type Resolver struct {
	extractor sync.Extractor
	cache     cache.Cache
	ttl       time.Duration
	timeout   time.Duration
}

func New(extractor sync.Extractor, c cache.Cache) *Resolver {
	return &Resolver{
		extractor: extractor,
		cache:     c,
		ttl:       defaultTTL,
		timeout:   defaultTimeout,
	}
}

// URL resolves the playable media URL for one episode of the feed.
func (r *Resolver) URL(ctx context.Context, feed *model.Feed, episodeID string) (string, error) {
	key := cacheKey(feed, episodeID)

	if cached, err := r.cache.Get(ctx, key); err == nil {
		return string(cached), nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		slog.Warn("Resolution cache lookup failed", "key", key, "error", err)
	}

	spec, err := model.FormatSpec(feed.Format, feed.Quality)
	if err != nil {
		return "", err
	}

	watchURL, err := link.VideoURL(feed.Provider, episodeID)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resolved, err := r.extractor.Resolve(ctx, sync.Entry{ID: episodeID, URL: watchURL}, spec)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", episodeID, err)
	}
	if resolved.VideoURL == "" {
		return "", fmt.Errorf("no media url for %q with format %q", episodeID, spec)
	}

	if err := r.cache.Set(ctx, key, []byte(resolved.VideoURL), r.ttl); err != nil {
		slog.Warn("Failed to cache resolved url", "key", key, "error", err)
	}

	return resolved.VideoURL, nil
}

func cacheKey(feed *model.Feed, episodeID string) string {
	return fmt.Sprintf("resolve:%s:%s:%s:%s", feed.Provider, episodeID, feed.Format, feed.Quality)
}
