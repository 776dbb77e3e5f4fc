package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// JobScheduler submits its jobs to a pool on a fixed interval. One scheduler
// exists per cadence: the hourly task tick, the weather sweep, and the daily
// inventory sweep.
type JobScheduler struct {
	Name   string
	Ticker *time.Ticker
	Jobs   []Job
	Pool   *WorkingPool
	mu     sync.RWMutex
}

func NewJobScheduler(name string, interval time.Duration, pool *WorkingPool) *JobScheduler {
	return &JobScheduler{
		Name:   name,
		Ticker: time.NewTicker(interval),
		Jobs:   make([]Job, 0),
		Pool:   pool,
	}
}

func (s *JobScheduler) AddJob(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Jobs = append(s.Jobs, job)
}

// Run submits the jobs once immediately, then on every tick until the context
// is cancelled.
func (s *JobScheduler) Run(ctx context.Context) {
	slog.Info("Scheduler running", "name", s.Name)
	defer s.Ticker.Stop()

	s.submitJobs()

	for {
		select {
		case <-s.Ticker.C:
			slog.Debug("Scheduler tick", "name", s.Name)
			s.submitJobs()
		case <-ctx.Done():
			slog.Info("Scheduler shutting down", "name", s.Name)
			return
		}
	}
}

func (s *JobScheduler) submitJobs() {
	s.mu.RLock()
	jobsToRun := make([]Job, len(s.Jobs))
	copy(jobsToRun, s.Jobs)
	s.mu.RUnlock()

	for _, job := range jobsToRun {
		s.Pool.SubmitJob(job)
	}
}
