package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/podmirror/podmirror/app/model"
)

const (
	// MaxCount bounds the listing window size accepted from callers.
	MaxCount = 600

	defaultListTimeout    = 5 * time.Minute
	defaultResolveTimeout = 1 * time.Minute
	defaultConcurrency    = 4
)

// Options tune the orchestrator's external calls.
type Options struct {
	ListTimeout    time.Duration
	ResolveTimeout time.Duration
	Concurrency    int
}

// Syncer is the single entry point of the synchronization engine. It
// sequences extractor calls, diffs the listing against the stored cursor or
// episode set, resolves new items and merges the candidate episode list.
// It performs no writes itself; the caller persists the result.
type Syncer struct {
	extractor      Extractor
	listTimeout    time.Duration
	resolveTimeout time.Duration
	concurrency    int
}

func NewSyncer(extractor Extractor, opts Options) *Syncer {
	if opts.ListTimeout == 0 {
		opts.ListTimeout = defaultListTimeout
	}
	if opts.ResolveTimeout == 0 {
		opts.ResolveTimeout = defaultResolveTimeout
	}
	if opts.Concurrency == 0 {
		opts.Concurrency = defaultConcurrency
	}

	return &Syncer{
		extractor:      extractor,
		listTimeout:    opts.ListTimeout,
		resolveTimeout: opts.ResolveTimeout,
		concurrency:    opts.Concurrency,
	}
}

// Sync runs one synchronization attempt. It is a pure function of the stored
// feed state carried in the request and the freshly listed upstream window,
// so an abandoned attempt is always safe to re-run from scratch.
func (s *Syncer) Sync(ctx context.Context, req Request) (Result, error) {
	if err := validate(req); err != nil {
		return Result{}, err
	}

	spec, err := model.FormatSpec(req.Format, req.Quality)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	// Upstream listing is occasionally transiently empty or malformed, so a
	// null outcome on a stream feed is retried exactly once. A second null
	// result is accepted as "no updates", not an error.
	for attempt := 0; ; attempt++ {
		entries := s.list(ctx, req)

		if len(entries) == 0 {
			if req.Kind == model.KindStream && attempt == 0 {
				slog.Warn("Empty upstream listing, retrying once", "feed_id", req.FeedID)
				continue
			}
			slog.Info("No upstream entries", "feed_id", req.FeedID)
			return Result{LastID: req.LastID, Dirty: false}, nil
		}

		if req.Kind == model.KindPlaylist {
			return s.syncPlaylist(ctx, req, spec, entries), nil
		}
		return s.syncStream(ctx, req, spec, entries), nil
	}
}

func (s *Syncer) syncStream(ctx context.Context, req Request, spec string, entries []Entry) Result {
	d := diffStream(entries, req.LastID, req.Count)

	slog.Debug("Stream diff computed", "feed_id", req.FeedID, "new_items", len(d.fresh), "last_id", d.lastID)

	resolved := s.resolveAll(ctx, d.fresh, spec, req.Format, req.Quality)
	fresh := orderedEpisodes(d.fresh, resolved)

	merged := mergeStream(fresh, req.Stored, req.PageSize)
	if sameEpisodes(merged, req.Stored) {
		return Result{LastID: d.lastID, Dirty: false}
	}

	return Result{Episodes: merged, LastID: d.lastID, Dirty: true}
}

func (s *Syncer) syncPlaylist(ctx context.Context, req Request, spec string, entries []Entry) Result {
	d := diffPlaylist(entries, req.Stored)
	if !d.dirty {
		return Result{Dirty: false}
	}

	slog.Debug("Playlist diff computed", "feed_id", req.FeedID, "new_items", len(d.fresh), "upstream_count", len(d.order))

	resolved := s.resolveAll(ctx, d.fresh, spec, req.Format, req.Quality)
	merged := mergePlaylist(d, resolved)

	// Resolution failures can leave the merged list identical to the stored
	// one; persisting it anyway would churn the snapshot for nothing.
	if sameEpisodes(merged, req.Stored) {
		return Result{Dirty: false}
	}

	return Result{Episodes: merged, Dirty: true}
}

// list wraps the upstream listing call with a timeout. A listing failure is
// reported as zero entries: the caller's retry-once policy and the "no
// updates" downgrade absorb transient upstream flakiness without escalating.
func (s *Syncer) list(ctx context.Context, req Request) []Entry {
	ctx, cancel := context.WithTimeout(ctx, s.listTimeout)
	defer cancel()

	entries, err := s.extractor.List(ctx, req.URL, req.Start, req.Count)
	if err != nil {
		slog.Warn("Upstream listing failed", "feed_id", req.FeedID, "url", req.URL, "error", err)
		return nil
	}

	return entries
}

func validate(req Request) error {
	if req.URL == "" {
		return fmt.Errorf("%w: missing source URL", ErrInvalidInput)
	}
	if req.Start < 1 {
		return fmt.Errorf("%w: start must be >= 1, got %d", ErrInvalidInput, req.Start)
	}
	if req.Count < 1 || req.Count > MaxCount {
		return fmt.Errorf("%w: count must be within [1, %d], got %d", ErrInvalidInput, MaxCount, req.Count)
	}
	return nil
}
