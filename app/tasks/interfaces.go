package tasks

// TaskSchedulerInterface defines the interface for background task
// scheduling. Used by the main application to manage the worker pool
// and the periodic calendar sync cycle.
// Example usage:
//
//	scheduler := NewScheduler(apartmentRepo, syncService)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewSyncApartmentTask(apartment, syncService))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
