package domain

import "time"

// TaskIDProductImport is the scheduled catalog import.
const TaskIDProductImport = "product-import"

// ScheduledTask is the persisted timetable of a recurring task.
type ScheduledTask struct {
	ID       string
	Name     string
	Interval time.Duration
	Enabled  bool

	// LastRun is when the last attempt started; zero if it never ran.
	LastRun time.Time

	// NextRun is when the task is next due.
	NextRun time.Time

	// LastSuccess is when an attempt last ended successfully.
	LastSuccess time.Time

	// LastError is the error text of the last attempt, empty on success.
	LastError string
}

// Due reports whether the task should run at now.
func (t ScheduledTask) Due(now time.Time) bool {
	return t.Enabled && !t.NextRun.After(now)
}

// Record folds a finished attempt into the timetable. The next run is one
// interval after the attempt started, so a slow import does not drift the
// schedule.
func (t *ScheduledTask) Record(r TaskResult) {
	t.LastRun = r.StartedAt
	t.NextRun = r.StartedAt.Add(t.Interval)
	t.LastError = r.Error
	if r.Success {
		t.LastSuccess = r.EndedAt
	}
}

// TaskResult is the outcome of one scheduled attempt.
type TaskResult struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time

	// Success mirrors ImportResult.Success: only a failed listing fails
	// the task. Error may be set either way.
	Success bool
	Error   string

	// RunID is the import run the task started, empty if it never began.
	RunID string

	// FilesProcessed and ProductsImported mirror the import result.
	FilesProcessed   int
	ProductsImported int
}

// Duration returns how long the attempt took.
func (r TaskResult) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// SchedulerConfig switches the scheduler and its tasks.
type SchedulerConfig struct {
	Enabled     bool
	TaskConfigs map[string]TaskConfig
}

// TaskConfig is the configured state of one task.
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration
}

// GetTaskConfig returns the configuration for taskID, or a disabled zero
// value if it is not configured.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig imports once a day.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfigFromSettings(ImportSettings{Enabled: true, Interval: DefaultImportInterval})
}

// SchedulerConfigFromSettings derives the scheduler configuration from the
// import settings. A non-positive interval falls back to the default.
func SchedulerConfigFromSettings(s ImportSettings) SchedulerConfig {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultImportInterval
	}
	return SchedulerConfig{
		Enabled: s.Enabled,
		TaskConfigs: map[string]TaskConfig{
			TaskIDProductImport: {Enabled: s.Enabled, Interval: interval},
		},
	}
}
