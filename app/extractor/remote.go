package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/podmirror/podmirror/app/sync"
)

// Upstream throttles aggressively; keep sidecar traffic well below that.
const sidecarRequestsPerSecond = 4

// Remote is an HTTP client for the youtube-dl sidecar. The sidecar exposes
// GET /list (flat playlist extraction over a positional window) and
// GET /resolve (full metadata for a single item, given a format expression).
type Remote struct {
	baseURL   string
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
}

type listResponse struct {
	Entries []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"entries"`
}

func NewRemote(baseURL string, client *http.Client, userAgent string) *Remote {
	return &Remote{
		baseURL:   baseURL,
		client:    client,
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Limit(sidecarRequestsPerSecond), 1),
	}
}

func (r *Remote) List(ctx context.Context, sourceURL string, start, count int) ([]sync.Entry, error) {
	qs := url.Values{}
	qs.Add("url", sourceURL)
	qs.Add("start", strconv.Itoa(start))
	qs.Add("count", strconv.Itoa(count))

	var out listResponse
	if err := r.get(ctx, "/list", qs, &out); err != nil {
		return nil, err
	}

	entries := make([]sync.Entry, 0, len(out.Entries))
	for _, e := range out.Entries {
		entries = append(entries, sync.Entry{ID: e.ID, Title: e.Title, URL: e.URL})
	}

	return entries, nil
}

func (r *Remote) Resolve(ctx context.Context, entry sync.Entry, formatSpec string) (sync.Resolved, error) {
	target := entry.URL
	if target == "" {
		target = entry.ID
	}

	qs := url.Values{}
	qs.Add("url", target)
	qs.Add("format", formatSpec)

	var out sync.Resolved
	if err := r.get(ctx, "/resolve", qs, &out); err != nil {
		return sync.Resolved{}, err
	}

	return out, nil
}

func (r *Remote) get(ctx context.Context, path string, qs url.Values, out interface{}) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path+"?"+qs.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build sidecar request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("sidecar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected sidecar response (%d): %q", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode sidecar response: %w", err)
	}

	return nil
}
