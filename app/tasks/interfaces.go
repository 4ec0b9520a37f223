package tasks

// TaskSchedulerInterface defines how services dispatch enrichment work.
// Callers never wait for a dispatched task to complete.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
