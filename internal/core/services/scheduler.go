package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/ports/driven"
	"github.com/custodia-labs/foodsync/internal/core/ports/driving"
	"github.com/custodia-labs/foodsync/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// taskHistoryRetained is the number of results kept per task.
const taskHistoryRetained = 100

// Scheduler runs the periodic catalog import.
//
// Task state lives in the scheduler store so a restart keeps the timetable.
// The first due time follows the run ledger: a manual import pushes the
// scheduled one back by a full interval, and an empty ledger imports at once.
type Scheduler struct {
	config   domain.SchedulerConfig
	store    driven.SchedulerStore
	syncOrch driving.SyncOrchestrator

	// tick is how often due tasks are checked, and how long a task waits
	// after finding an import already running.
	tick time.Duration
	now  func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	syncOrch driving.SyncOrchestrator,
) *Scheduler {
	return &Scheduler{
		config:   config,
		store:    store,
		syncOrch: syncOrch,
		tick:     time.Minute,
		now:      time.Now,
	}
}

// Start runs the scheduler loop until Stop is called or ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Error("scheduler: failed to initialise tasks: %v", err)
	}

	return s.run(ctx)
}

// Stop ends the loop and waits for a running import to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// initialiseTasks brings the stored import task in line with configuration.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	cfg := s.config.GetTaskConfig(domain.TaskIDProductImport)
	if !s.config.Enabled {
		cfg.Enabled = false
	}
	return s.ensureImportTask(ctx, cfg)
}

// ensureImportTask creates, updates or disables the import task.
// A disabled configuration never creates a task.
func (s *Scheduler) ensureImportTask(ctx context.Context, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, domain.TaskIDProductImport)
	if err != nil {
		return err
	}

	if task == nil {
		if !cfg.Enabled {
			return nil
		}
		task = &domain.ScheduledTask{
			ID:       domain.TaskIDProductImport,
			Name:     "Product Import",
			Interval: cfg.Interval,
			Enabled:  true,
			NextRun:  s.firstRun(ctx, cfg.Interval),
		}
		logger.Info("scheduler: product import every %s, first run at %s",
			cfg.Interval, task.NextRun.Format(time.RFC3339))
		return s.store.SaveTask(ctx, task)
	}

	if cfg.Enabled && task.Interval != cfg.Interval {
		task.Interval = cfg.Interval
		if task.LastRun.IsZero() {
			task.NextRun = s.now().Add(cfg.Interval)
		} else {
			task.NextRun = task.LastRun.Add(cfg.Interval)
		}
		logger.Info("scheduler: product import interval changed to %s", cfg.Interval)
	}
	task.Enabled = cfg.Enabled
	return s.store.SaveTask(ctx, task)
}

// firstRun is one interval after the most recent import, or now if the
// ledger is empty or unreadable.
func (s *Scheduler) firstRun(ctx context.Context, interval time.Duration) time.Time {
	now := s.now()
	if s.syncOrch == nil {
		return now
	}
	last, err := s.syncOrch.LastRunStartedAt(ctx)
	if err != nil {
		logger.Warn("scheduler: reading last import time: %v", err)
		return now
	}
	if last == nil {
		return now
	}
	return last.Add(interval)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Error("scheduler: failed to list tasks: %v", err)
		return
	}

	now := s.now()
	for i := range tasks {
		if tasks[i].Due(now) {
			s.runTask(ctx, &tasks[i])
		}
	}
}

// runTask executes a single task in the background.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if task.ID != domain.TaskIDProductImport {
			logger.Warn("scheduler: unknown task ID: %s", task.ID)
			return
		}

		result := &domain.TaskResult{
			TaskID:    task.ID,
			StartedAt: s.now(),
		}
		if err := s.runProductImport(ctx, result); errors.Is(err, domain.ErrSyncInProgress) {
			task.NextRun = s.now().Add(s.tick)
			logger.Info("scheduler: import already running, retrying at %s", task.NextRun.Format(time.RFC3339))
			if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
				logger.Error("scheduler: failed to save task %s: %v", task.ID, saveErr)
			}
			return
		}

		result.EndedAt = s.now()
		task.Record(*result)
		logger.Info("scheduler: %s finished in %s, next run at %s",
			task.ID, result.Duration().Round(time.Millisecond), task.NextRun.Format(time.RFC3339))

		if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
			logger.Error("scheduler: failed to save task %s: %v", task.ID, saveErr)
		}
		if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
			logger.Error("scheduler: failed to record result for %s: %v", task.ID, recordErr)
		}
		if pruneErr := s.store.PruneHistory(ctx, taskHistoryRetained); pruneErr != nil {
			logger.Warn("scheduler: failed to prune history: %v", pruneErr)
		}
	}()
}

// runProductImport runs one import and fills in the task result.
// The task succeeds when the listing succeeded; per-file failures are
// kept in the error text without failing the task. The returned error is
// the orchestrator's refusal to start, if any.
func (s *Scheduler) runProductImport(ctx context.Context, result *domain.TaskResult) error {
	if s.syncOrch == nil {
		result.Success = true
		return nil
	}

	res, err := s.syncOrch.Run(ctx)
	if err != nil {
		result.Success = false
		result.Error = err.Error()
		return err
	}

	result.RunID = res.RunID
	result.Success = res.Success
	result.FilesProcessed = res.FilesProcessed
	result.ProductsImported = res.RecordsImported
	if joined := res.Err(); joined != nil {
		result.Error = joined.Error()
	}
	return nil
}
