package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/podmirror/podmirror/app/model"
)

// uploadDateLayout is the compact calendar format upstream publish dates
// arrive in (youtube-dl upload_date).
const uploadDateLayout = "20060102"

// resolveAll resolves metadata for every entry, a bounded number at a time,
// and recombines results in the original listing order. A failed entry is
// logged and skipped; it never fails the sync.
func (s *Syncer) resolveAll(ctx context.Context, entries []Entry, spec string,
	format model.Format, quality model.Quality) map[string]model.Episode {

	if len(entries) == 0 {
		return nil
	}

	results := make([]*model.Episode, len(entries))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.concurrency)

	for i, entry := range entries {
		wg.Add(1)
		go func(i int, entry Entry) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			ep, err := s.resolveOne(ctx, entry, spec, format, quality)
			if err != nil {
				slog.Warn("Item resolution failed, skipping", "item_id", entry.ID, "error", err)
				return
			}
			results[i] = ep
		}(i, entry)
	}

	wg.Wait()

	resolved := make(map[string]model.Episode, len(entries))
	for _, ep := range results {
		if ep != nil {
			resolved[ep.ID] = *ep
		}
	}

	return resolved
}

func (s *Syncer) resolveOne(ctx context.Context, entry Entry, spec string,
	format model.Format, quality model.Quality) (*model.Episode, error) {

	ctx, cancel := context.WithTimeout(ctx, s.resolveTimeout)
	defer cancel()

	raw, err := s.extractor.Resolve(ctx, entry, spec)
	if err != nil {
		return nil, err
	}

	if raw.UploadDate == "" {
		return nil, fmt.Errorf("item %q has no upload date", entry.ID)
	}

	pubDate, err := time.ParseInLocation(uploadDateLayout, raw.UploadDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("failed to parse upload date %q: %w", raw.UploadDate, err)
	}

	size := raw.Size
	if size == 0 {
		size = estimateSize(format, quality, raw.Duration)
	}

	id := raw.ID
	if id == "" {
		id = entry.ID
	}

	return &model.Episode{
		ID:          id,
		Title:       raw.Title,
		Description: raw.Description,
		Thumbnail:   raw.Thumbnail,
		Duration:    raw.Duration,
		VideoURL:    raw.VideoURL,
		PubDate:     pubDate,
		Size:        size,
	}, nil
}

// orderedEpisodes projects resolved episodes back into listing order.
func orderedEpisodes(entries []Entry, resolved map[string]model.Episode) []model.Episode {
	ordered := make([]model.Episode, 0, len(resolved))
	for _, e := range entries {
		if ep, ok := resolved[e.ID]; ok {
			ordered = append(ordered, ep)
		}
	}
	return ordered
}
