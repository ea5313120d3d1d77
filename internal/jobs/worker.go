package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Worker is a background job run on a cron schedule.
type Worker interface {
	Name() string
	Run(ctx context.Context) error
}

// BaseWorker provides the name and logger shared by workers.
type BaseWorker struct {
	name string
	log  *slog.Logger
}

// NewBaseWorker creates a new base worker.
func NewBaseWorker(name string, log *slog.Logger) BaseWorker {
	return BaseWorker{
		name: name,
		log:  log.With("worker", name),
	}
}

// Name returns the worker name.
func (w *BaseWorker) Name() string {
	return w.name
}

// Scheduler runs workers on cron specs. A run that is still going when its
// next tick fires is skipped rather than overlapped.
type Scheduler struct {
	cron    *cron.Cron
	log     *slog.Logger
	timeout time.Duration
}

// NewScheduler creates a scheduler. timeout bounds each run; zero means none.
func NewScheduler(log *slog.Logger, timeout time.Duration) *Scheduler {
	l := cronLogger{log: log.With("component", "scheduler")}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		log:     log,
		timeout: timeout,
	}
}

// Add schedules w. spec is a standard five-field cron expression or a
// descriptor such as "@hourly".
func (s *Scheduler) Add(ctx context.Context, spec string, w Worker) error {
	_, err := s.cron.AddFunc(spec, func() { s.runOnce(ctx, w) })
	if err != nil {
		return err
	}
	s.log.Info("worker scheduled", "worker", w.Name(), "schedule", spec)
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context, w Worker) {
	if ctx.Err() != nil {
		return
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := w.Run(ctx); err != nil {
		s.log.Error("worker error", "worker", w.Name(), "err", err)
		return
	}
	s.log.Debug("worker finished", "worker", w.Name(), "took", time.Since(start))
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out with jobs still running")
	}
}

// cronLogger adapts slog to cron's logger interface.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "err", err)...)
}
