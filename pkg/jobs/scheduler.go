package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task is a named background job run on a cron schedule.
type Task struct {
	Name string
	Spec string
	Run  func(context.Context) error
}

// Scheduler runs registered tasks on cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler constructs an idle scheduler.
func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		logger: logger,
	}
}

// Register adds a task to the schedule.
func (s *Scheduler) Register(task Task) error {
	_, err := s.cron.AddFunc(task.Spec, func() {
		s.logger.Info("scheduled task started", zap.String("task", task.Name))
		if err := task.Run(context.Background()); err != nil {
			s.logger.Error("scheduled task failed", zap.String("task", task.Name), zap.Error(err))
			return
		}
		s.logger.Info("scheduled task finished", zap.String("task", task.Name))
	})
	return err
}

// Start launches the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running tasks to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}
