package tasks

import (
	"context"
	"fmt"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okhomenko/staysync/app/cfg"
	"github.com/okhomenko/staysync/app/database"
	"github.com/okhomenko/staysync/app/property"
	"github.com/okhomenko/staysync/app/sync"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler runs a fixed worker pool draining a task queue. A cron
// entry refills the queue with one sync task per syncable apartment
// every SyncInterval minutes. At startup the YAML property configs are
// seeded into the database first, then an initial sync cycle is
// enqueued, so a fresh deployment does not wait a full interval.
type Scheduler struct {
	apartmentRepo database.ApartmentRepository
	configCache   *property.ConfigCache
	syncService   *sync.Service
	interval      time.Duration
	workerCount   int
	cron          *cron.Cron
	ctx           context.Context
	cancel        context.CancelFunc
	wg            stdsync.WaitGroup
	taskQueue     chan TaskInterface
}

func NewScheduler(configCache *property.ConfigCache, apartmentRepo database.ApartmentRepository, syncService *sync.Service) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		apartmentRepo: apartmentRepo,
		configCache:   configCache,
		syncService:   syncService,
		interval:      time.Duration(cfg.SyncInterval) * time.Minute,
		workerCount:   cfg.WorkerCount,
		cron:          cron.New(),
		ctx:           ctx,
		cancel:        cancel,
		taskQueue:     make(chan TaskInterface, 100),
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
		// Seed tasks run inline so apartments exist before the first
		// sync cycle queries the database.
		s.runSeedTasks()
		s.enqueueSyncTasks()
	}()

	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.enqueueSyncTasks); err != nil {
		slog.Error("Failed to register sync schedule", "spec", spec, "error", err)
		return
	}
	s.cron.Start()

	slog.Info("Scheduler started", "workers", s.workerCount, "interval", s.interval.String())
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
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

func (s *Scheduler) runSeedTasks() {
	configs := s.configCache.GetConfigs()
	if len(configs) == 0 {
		slog.Debug("No property configurations found")
		return
	}

	slog.Debug("Seeding property configurations", "count", len(configs))

	for _, config := range configs {
		task := NewSeedPropertyTask(config, s.apartmentRepo)
		s.executeTask(0, task)
	}
}

func (s *Scheduler) enqueueSyncTasks() {
	apartments, err := s.apartmentRepo.ListSyncable(s.ctx)
	if err != nil {
		slog.Error("Failed to list syncable apartments", "error", err)
		return
	}
	if len(apartments) == 0 {
		slog.Debug("No syncable apartments found")
		return
	}

	slog.Debug("Scheduling apartment sync tasks", "count", len(apartments))

	for _, apartment := range apartments {
		task := NewSyncApartmentTask(apartment, s.syncService)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue SyncApartmentTask", "property", apartment.Name, "error", err)
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

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
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

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "property", task.GetApartmentName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

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
