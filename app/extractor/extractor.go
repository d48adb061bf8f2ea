// Package extractor provides upstream listing and item resolution backed by
// a youtube-dl sidecar service, with an optional RSS-based lister for
// YouTube channel uploads.
package extractor

import (
	"context"
	"net/http"
	"time"

	"github.com/podmirror/podmirror/app/link"
	"github.com/podmirror/podmirror/app/sync"
)

var _ sync.Extractor = (*Extractor)(nil)

// Extractor routes listing calls between the RSS lister and the sidecar and
// always resolves metadata through the sidecar.
type Extractor struct {
	remote    *Remote
	rss       *RSS
	preferRSS bool
}

// New builds the extractor. When rssListing is enabled, YouTube channel and
// user uploads are listed through their public RSS feeds instead of the
// sidecar; playlists always go through the sidecar, since RSS feeds expose
// only the most recent entries and cannot mirror full playlist membership.
func New(sidecarURL string, userAgent string, rssListing bool) *Extractor {
	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			MaxIdleConnsPerHost: 5,
		},
	}

	remote := NewRemote(sidecarURL, client, userAgent)

	return &Extractor{
		remote:    remote,
		rss:       NewRSS(client, userAgent),
		preferRSS: rssListing,
	}
}

func (e *Extractor) List(ctx context.Context, url string, start, count int) ([]sync.Entry, error) {
	if e.preferRSS && supportsRSSListing(url) {
		return e.rss.List(ctx, url, start, count)
	}
	return e.remote.List(ctx, url, start, count)
}

func (e *Extractor) Resolve(ctx context.Context, entry sync.Entry, formatSpec string) (sync.Resolved, error) {
	return e.remote.Resolve(ctx, entry, formatSpec)
}

func supportsRSSListing(url string) bool {
	info, err := link.Parse(url)
	if err != nil {
		return false
	}
	if info.Provider != link.ProviderYoutube {
		return false
	}
	return info.LinkType == link.TypeChannel || info.LinkType == link.TypeUser
}
