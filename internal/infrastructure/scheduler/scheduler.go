package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"flightwatch-service/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Job is a unit of periodic work. The context is cancelled on Stop.
type Job func(ctx context.Context)

// Scheduler runs jobs at fixed intervals. A job that is still running when
// its next activation comes up is skipped, and a panicking job is recovered
// so later activations keep firing.
type Scheduler struct {
	cron   *cron.Cron
	logger logger.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
	started bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a stopped scheduler
func New(log logger.Logger) *Scheduler {
	cl := cronLogger{logger: log}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			// Recover sits inside the skip guard so a panic still releases it
			cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)),
		),
		logger:  log,
		entries: make(map[string]cron.EntryID),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Every registers job under name to run once per interval. Intervals below
// one second are rounded up by cron.
func (s *Scheduler) Every(name string, interval time.Duration, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("invalid interval %s for job %s", interval, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.entries[name]; ok {
		s.cron.Remove(id)
	}

	id := s.cron.Schedule(cron.Every(interval), cron.FuncJob(func() {
		start := time.Now()
		job(s.ctx)
		s.logger.Debug("Scheduled job finished", "job", name, "duration", time.Since(start))
	}))
	s.entries[name] = id

	s.logger.Info("Job scheduled", "job", name, "interval", interval)
	return nil
}

// RunNow triggers a registered job immediately through the same skip and
// recover wrappers used for scheduled runs
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %s", name)
	}

	entry := s.cron.Entry(id)
	if entry.WrappedJob == nil {
		return fmt.Errorf("job %s has no entry", name)
	}
	go entry.WrappedJob.Run()
	return nil
}

// Start begins firing jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.cron.Start()
		s.started = true
	}
}

// Stop cancels the job context and waits for running jobs to return or
// for ctx to expire, whichever comes first
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()
	if !s.started {
		return nil
	}
	s.started = false

	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("scheduler stop timed out"), ctx.Err())
	}
}

// cronLogger exposes logger.Logger through the cron.Logger interface
type cronLogger struct {
	logger logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
