package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to manage background synchronization.
// Example usage:
//
//	scheduler := NewScheduler(definitions, feedRepo, syncer)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewSyncFeedTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
