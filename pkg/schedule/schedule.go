package schedule

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is one periodically executed background task.
type Job struct {
	Name     string
	Interval time.Duration
	Handler  func(ctx context.Context) error
}

// Scheduler runs registered jobs on their intervals until the context ends.
// It replaces ad-hoc sleep loops so background work shuts down with the
// process.
type Scheduler struct {
	jobs   []Job
	logger *zap.Logger
}

func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

// Register adds a job. Must be called before Run.
func (s *Scheduler) Register(job Job) {
	s.jobs = append(s.jobs, job)
	s.logger.Info("Registered scheduled task",
		zap.String("task", job.Name),
		zap.Duration("interval", job.Interval))
}

// Run blocks until the context is cancelled and every job loop has stopped.
func (s *Scheduler) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, job := range s.jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			s.runJob(ctx, job)
		}(job)
	}
	wg.Wait()
	return nil
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := job.Handler(ctx); err != nil {
				s.logger.Error("Scheduled task failed",
					zap.String("task", job.Name),
					zap.Error(err))
				continue
			}
			s.logger.Info("Scheduled task completed", zap.String("task", job.Name))
		}
	}
}
