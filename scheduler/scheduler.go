package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"riotapi-schema/logfields"
)

// Job is one scheduled unit of work
type Job func(ctx context.Context) error

// Scheduler runs a job immediately and then on every tick of its interval
type Scheduler struct {
	interval time.Duration
	job      Job
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	once     sync.Once
}

// NewScheduler creates a new scheduler bound to parent
func NewScheduler(parent context.Context, interval time.Duration, job Job) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("schedule interval must be positive, got %s", interval)
	}
	ctx, cancel := context.WithCancel(parent)

	return &Scheduler{
		interval: interval,
		job:      job,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}, nil
}

// Start starts the scheduler in a goroutine
func (s *Scheduler) Start() {
	s.once.Do(func() { go s.run() })
}

// Stop stops the scheduler and waits for a running job to return
func (s *Scheduler) Stop() {
	s.cancel()
	s.Start()
	<-s.done
}

// Wait blocks until the scheduler stops
func (s *Scheduler) Wait() {
	<-s.done
}

// run is the main scheduler loop
func (s *Scheduler) run() {
	defer close(s.done)
	if s.ctx.Err() != nil {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("Scheduler started", slog.Duration("interval", s.interval))
	s.runJob()

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.runJob()
		}
	}
}

// runJob logs a failed run and keeps the loop alive
func (s *Scheduler) runJob() {
	start := time.Now()
	if err := s.job(s.ctx); err != nil {
		slog.Error("Scheduled run failed", logfields.Error(err), logfields.DurationMS(time.Since(start).Milliseconds()))
		return
	}
	slog.Debug("Scheduled run finished", logfields.DurationMS(time.Since(start).Milliseconds()))
}
