package tasks

import (
	"context"
	gosync "sync"
	"testing"
	"time"

	"github.com/podmirror/podmirror/app/config"
	"github.com/podmirror/podmirror/app/database"
	"github.com/podmirror/podmirror/app/link"
	"github.com/podmirror/podmirror/app/model"
	"github.com/podmirror/podmirror/app/sync"
)

type mockFeedStore struct {
	mu          gosync.Mutex
	feeds       map[string]*model.Feed
	upserted    []*model.Feed
	updateCalls int
	touchCalls  int
}

var _ database.FeedStore = (*mockFeedStore)(nil)

func newMockFeedStore(feeds ...*model.Feed) *mockFeedStore {
	store := &mockFeedStore{feeds: map[string]*model.Feed{}}
	for _, feed := range feeds {
		store.feeds[feed.ID] = feed
	}
	return store
}

func (s *mockFeedStore) CreateFeed(feed *model.Feed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feeds[feed.ID] = feed
	return nil
}

func (s *mockFeedStore) UpsertFeed(feed *model.Feed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserted = append(s.upserted, feed)
	s.feeds[feed.ID] = feed
	return nil
}

func (s *mockFeedStore) GetFeed(feedID string) (*model.Feed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	feed, ok := s.feeds[feedID]
	if !ok {
		return nil, database.ErrFeedNotFound
	}
	return feed, nil
}

func (s *mockFeedStore) GetDueFeeds(now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id := range s.feeds {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *mockFeedStore) GetFeedCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.feeds), nil
}

func (s *mockFeedStore) UpdateFeedEpisodes(feedID string, episodes []model.Episode, lastID string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	feed, ok := s.feeds[feedID]
	if !ok {
		return database.ErrFeedNotFound
	}
	feed.Episodes = episodes
	feed.LastID = lastID
	feed.UpdatedAt = updatedAt
	s.updateCalls++
	return nil
}

func (s *mockFeedStore) TouchFeed(feedID string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	feed, ok := s.feeds[feedID]
	if !ok {
		return database.ErrFeedNotFound
	}
	feed.UpdatedAt = updatedAt
	s.touchCalls++
	return nil
}

func (s *mockFeedStore) DeleteFeed(feedID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.feeds, feedID)
	return nil
}

type stubExtractor struct {
	mu      gosync.Mutex
	entries []sync.Entry
	listErr error
}

func (e *stubExtractor) List(_ context.Context, _ string, _, _ int) ([]sync.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listErr != nil {
		return nil, e.listErr
	}
	return e.entries, nil
}

func (e *stubExtractor) Resolve(_ context.Context, entry sync.Entry, _ string) (sync.Resolved, error) {
	return sync.Resolved{
		ID:         entry.ID,
		Title:      entry.Title,
		Duration:   60,
		VideoURL:   entry.URL,
		UploadDate: "20240115",
		Size:       1000,
	}, nil
}

func streamFeed(id string) *model.Feed {
	return &model.Feed{
		ID:             id,
		Provider:       link.ProviderYoutube,
		LinkType:       link.TypeChannel,
		ItemID:         "UC123",
		URL:            "https://youtube.com/channel/UC123",
		Format:         model.FormatVideo,
		Quality:        model.QualityHigh,
		PageSize:       50,
		UpdateInterval: model.DefaultUpdateInterval,
	}
}

func TestSyncFeedTask_PersistsNewEpisodes(t *testing.T) {
	store := newMockFeedStore(streamFeed("f1"))
	extractor := &stubExtractor{entries: []sync.Entry{
		{ID: "v2", Title: "Second", URL: "https://youtube.com/watch?v=v2"},
		{ID: "v1", Title: "First", URL: "https://youtube.com/watch?v=v1"},
	}}
	syncer := sync.NewSyncer(extractor, sync.Options{})

	task := NewSyncFeedTask("f1", store, syncer)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if store.updateCalls != 1 {
		t.Errorf("Expected 1 episode update, got %d", store.updateCalls)
	}

	feed, _ := store.GetFeed("f1")
	if feed.LastID != "v2" {
		t.Errorf("Expected cursor v2, got %q", feed.LastID)
	}
	if len(feed.Episodes) != 2 {
		t.Errorf("Expected 2 episodes, got %d", len(feed.Episodes))
	}
}

func TestSyncFeedTask_CleanAttemptTouchesFeed(t *testing.T) {
	feed := streamFeed("f1")
	feed.LastID = "v2"
	feed.Episodes = []model.Episode{{ID: "v2"}, {ID: "v1"}}

	store := newMockFeedStore(feed)
	extractor := &stubExtractor{entries: []sync.Entry{
		{ID: "v2", Title: "Second"},
		{ID: "v1", Title: "First"},
	}}
	syncer := sync.NewSyncer(extractor, sync.Options{})

	task := NewSyncFeedTask("f1", store, syncer)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if store.updateCalls != 0 {
		t.Errorf("Expected no episode writes, got %d", store.updateCalls)
	}
	if store.touchCalls != 1 {
		t.Errorf("Expected 1 touch, got %d", store.touchCalls)
	}
}

func TestSyncFeedTask_MissingFeedDropped(t *testing.T) {
	store := newMockFeedStore()
	syncer := sync.NewSyncer(&stubExtractor{}, sync.Options{})

	task := NewSyncFeedTask("missing", store, syncer)
	if err := task.Execute(context.Background()); err != nil {
		t.Errorf("Expected missing feed to be dropped without error, got %v", err)
	}
}

func TestSyncFeedTask_InvalidRequestDropped(t *testing.T) {
	feed := streamFeed("f1")
	feed.PageSize = 9999 // above the listing window limit

	store := newMockFeedStore(feed)
	syncer := sync.NewSyncer(&stubExtractor{}, sync.Options{})

	task := NewSyncFeedTask("f1", store, syncer)
	if err := task.Execute(context.Background()); err != nil {
		t.Errorf("Expected invalid request to be dropped without error, got %v", err)
	}
	if store.touchCalls != 0 || store.updateCalls != 0 {
		t.Error("Expected no writes for a dropped task")
	}
}

func TestRegisterFeedTask(t *testing.T) {
	store := newMockFeedStore()

	definition := &config.FeedConfig{
		Feed: config.FeedInfo{
			URL:     "https://youtube.com/playlist?list=PL123",
			Format:  "audio",
			Quality: "low",
		},
		Settings: config.FeedSettings{
			PageSize:       25,
			UpdateInterval: 1800,
		},
	}

	task := NewRegisterFeedTask(definition, store)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(store.upserted) != 1 {
		t.Fatalf("Expected 1 upserted feed, got %d", len(store.upserted))
	}

	feed := store.upserted[0]
	if feed.ID == "" {
		t.Error("Expected a generated feed id")
	}
	if feed.Provider != link.ProviderYoutube || feed.LinkType != link.TypePlaylist || feed.ItemID != "PL123" {
		t.Errorf("Unexpected feed source: %s/%s/%s", feed.Provider, feed.LinkType, feed.ItemID)
	}
	if feed.Format != model.FormatAudio || feed.Quality != model.QualityLow {
		t.Errorf("Unexpected media selection: %s/%s", feed.Format, feed.Quality)
	}
	if feed.PageSize != 25 || feed.UpdateInterval != 1800 {
		t.Errorf("Unexpected settings: page_size=%d update_interval=%d", feed.PageSize, feed.UpdateInterval)
	}
}

func TestRegisterFeedTask_InvalidLink(t *testing.T) {
	store := newMockFeedStore()

	definition := &config.FeedConfig{
		Feed: config.FeedInfo{URL: "https://example.com/feed.xml"},
	}

	task := NewRegisterFeedTask(definition, store)
	if err := task.Execute(context.Background()); err == nil {
		t.Error("Expected error for unsupported link")
	}
	if len(store.upserted) != 0 {
		t.Error("Expected no upsert for unsupported link")
	}
}

func TestTaskRetryCounting(t *testing.T) {
	task := NewTask(TaskTypeSyncFeed, "f1")

	if !task.CanRetry() {
		t.Error("Expected new task to be retryable")
	}

	for i := 0; i < DefaultMaxRetries; i++ {
		task.IncrementRetryCount()
	}

	if task.CanRetry() {
		t.Error("Expected task to be exhausted after max retries")
	}
}

func TestSchedulerLifecycle(t *testing.T) {
	store := newMockFeedStore(streamFeed("f1"))
	extractor := &stubExtractor{entries: []sync.Entry{
		{ID: "v1", Title: "First", URL: "https://youtube.com/watch?v=v1"},
	}}
	syncer := sync.NewSyncer(extractor, sync.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	scheduler := &Scheduler{
		definitions: map[string]*config.FeedConfig{},
		feedRepo:    store,
		syncer:      syncer,
		interval:    50 * time.Millisecond,
		workerCount: 1,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 10),
	}

	scheduler.Start()
	time.Sleep(200 * time.Millisecond)
	scheduler.Stop()

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.updateCalls == 0 {
		t.Error("Expected the due feed to be synchronized")
	}
}

func TestSchedulerQueueFull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := &Scheduler{
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, 1),
	}

	if err := scheduler.EnqueueTask(NewSyncFeedTask("f1", newMockFeedStore(), nil)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := scheduler.EnqueueTask(NewSyncFeedTask("f2", newMockFeedStore(), nil)); err == nil {
		t.Error("Expected error when queue is full")
	}
}
