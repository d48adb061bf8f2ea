package tasks

import (
	"context"
	"fmt"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/podmirror/podmirror/app/cfg"
	"github.com/podmirror/podmirror/app/config"
	"github.com/podmirror/podmirror/app/database"
	"github.com/podmirror/podmirror/app/sync"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	definitions map[string]*config.FeedConfig
	feedRepo    database.FeedStore
	syncer      *sync.Syncer
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          gosync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(definitions map[string]*config.FeedConfig, feedRepo database.FeedStore,
	syncer *sync.Syncer) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		definitions: definitions,
		feedRepo:    feedRepo,
		syncer:      syncer,
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()

}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	if len(s.definitions) == 0 {
		slog.Debug("No feed definitions found")
	}

	for file, definition := range s.definitions {
		registerTask := NewRegisterFeedTask(definition, s.feedRepo)
		if err := s.EnqueueTask(registerTask); err != nil {
			slog.Warn("Failed to enqueue RegisterFeedTask", "file", file, "error", err)
		}
	}

	s.enqueueTasks()
}

func (s *Scheduler) enqueueTasks() {
	feedIDs, err := s.feedRepo.GetDueFeeds(time.Now().UTC())
	if err != nil {
		slog.Error("Failed to query due feeds", "error", err)
		return
	}
	if len(feedIDs) == 0 {
		slog.Debug("No feeds due for synchronization")
		return
	}

	slog.Debug("Scheduling due feeds", "count", len(feedIDs))

	for _, feedID := range feedIDs {
		syncTask := NewSyncFeedTask(feedID, s.feedRepo, s.syncer)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncFeedTask", "feed_id", feedID, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 10*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "feed_id", task.GetFeedID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
