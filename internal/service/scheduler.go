package service

import (
	"context"
	"sync"
	"time"

	"github.com/dripkit/dripkit/internal/domain"
	"github.com/dripkit/dripkit/pkg/logger"
	"golang.org/x/sync/semaphore"
)

// housekeepingEvery is the tick cadence for the reaper and the stale sweep
const housekeepingEvery = 10

// Scheduler drives the engine: a periodic loop claiming due executions,
// gating them through the rate limiter and dispatching them to the step
// executor under a bounded worker pool. It also runs trigger discovery and
// the housekeeping sweeps. Multiple instances may run against the same
// database; the atomic claim keeps them from stepping on each other.
type Scheduler struct {
	executionRepo domain.ExecutionRepository
	executor      *StepExecutor
	discovery     *TriggerDiscovery
	limiter       DispatchLimiter
	logger        logger.Logger

	interval           time.Duration
	batchSize          int
	concurrency        int64
	staleTimeout       time.Duration
	completedRetention time.Duration
	failedRetention    time.Duration

	stopChan    chan struct{}
	stoppedChan chan struct{}
	mu          sync.Mutex
	running     bool
	tick        int
}

// SchedulerConfig carries the scheduler tunables
type SchedulerConfig struct {
	Interval           time.Duration
	BatchSize          int
	Concurrency        int
	StaleTimeout       time.Duration
	CompletedRetention time.Duration
	FailedRetention    time.Duration
}

// NewScheduler creates a new Scheduler
func NewScheduler(
	executionRepo domain.ExecutionRepository,
	executor *StepExecutor,
	discovery *TriggerDiscovery,
	limiter DispatchLimiter,
	log logger.Logger,
	cfg SchedulerConfig,
) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 16
	}
	if cfg.StaleTimeout <= 0 {
		cfg.StaleTimeout = time.Hour
	}
	return &Scheduler{
		executionRepo:      executionRepo,
		executor:           executor,
		discovery:          discovery,
		limiter:            limiter,
		logger:             log,
		interval:           cfg.Interval,
		batchSize:          cfg.BatchSize,
		concurrency:        int64(cfg.Concurrency),
		staleTimeout:       cfg.StaleTimeout,
		completedRetention: cfg.CompletedRetention,
		failedRetention:    cfg.FailedRetention,
		stopChan:           make(chan struct{}),
		stoppedChan:        make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("Scheduler already running")
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.WithFields(map[string]interface{}{
		"interval":   s.interval.String(),
		"batch_size": s.batchSize,
		"workers":    s.concurrency,
	}).Info("Starting scheduler")

	go s.run(ctx)
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping scheduler...")
	close(s.stopChan)

	select {
	case <-s.stoppedChan:
		s.logger.Info("Scheduler stopped successfully")
	case <-time.After(30 * time.Second):
		s.logger.Warn("Scheduler stop timeout exceeded")
	}
}

// IsRunning reports whether the loop is active
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.stoppedChan)
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// first tick immediately on start
	s.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler context cancelled")
			return
		case <-s.stopChan:
			s.logger.Info("Scheduler received stop signal")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one scheduler pass: claim, gate, dispatch, discover, and
// periodically clean up. Exported so tests and operational tooling can drive
// the loop by hand.
func (s *Scheduler) Tick(ctx context.Context) {
	start := time.Now()

	dispatched, deferred := s.dispatchDue(ctx)

	enrolled := 0
	if s.discovery != nil {
		n, err := s.discovery.Run(ctx)
		if err != nil {
			s.logger.WithField("error", err.Error()).Error("Trigger discovery pass failed")
		}
		enrolled = n
	}

	s.mu.Lock()
	s.tick++
	tick := s.tick
	s.mu.Unlock()
	if tick%housekeepingEvery == 1 {
		s.housekeeping(ctx)
	}

	if dispatched > 0 || deferred > 0 || enrolled > 0 {
		s.logger.WithFields(map[string]interface{}{
			"dispatched": dispatched,
			"deferred":   deferred,
			"enrolled":   enrolled,
			"elapsed":    time.Since(start).String(),
		}).Info("Scheduler tick complete")
	}
}

// dispatchDue claims the due batch and runs it through the worker pool. The
// rate limiter is consulted per workspace before dispatch: over-cap
// executions are released back a short interval out without touching their
// attempt counters.
func (s *Scheduler) dispatchDue(ctx context.Context) (dispatched, deferred int) {
	due, err := s.executionRepo.ClaimDue(ctx, time.Now().UTC(), s.batchSize)
	if err != nil {
		s.logger.WithField("error", err.Error()).Error("Failed to claim due executions")
		return 0, 0
	}
	if len(due) == 0 {
		return 0, 0
	}

	sem := semaphore.NewWeighted(s.concurrency)
	var wg sync.WaitGroup

	for _, d := range due {
		if s.limiter != nil && !s.limiter.Allow(RateLimitNamespace, d.WorkspaceID) {
			// throttled, not failed
			s.executor.Defer(ctx, d.WorkspaceID, &d.Execution, d.PrevStatus)
			deferred++
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			s.executor.Defer(ctx, d.WorkspaceID, &d.Execution, d.PrevStatus)
			deferred++
			continue
		}

		wg.Add(1)
		dispatched++
		go func(d *domain.DueExecution) {
			defer wg.Done()
			defer sem.Release(1)
			s.executor.ProcessDue(ctx, d)
		}(d)
	}

	wg.Wait()
	return dispatched, deferred
}

// housekeeping resets stale processing rows and reaps terminal executions
// past their retention windows. Not correctness-critical; failures are
// logged and tried again next round.
func (s *Scheduler) housekeeping(ctx context.Context) {
	now := time.Now().UTC()

	reset, err := s.executionRepo.ResetStale(ctx, now.Add(-s.staleTimeout))
	if err != nil {
		s.logger.WithField("error", err.Error()).Error("Stale execution sweep failed")
	} else if reset > 0 {
		s.logger.WithField("reset", reset).Warn("Reset stale processing executions")
	}

	if s.completedRetention <= 0 && s.failedRetention <= 0 {
		return
	}
	reaped, err := s.executionRepo.ReapTerminal(ctx,
		now.Add(-s.completedRetention), now.Add(-s.failedRetention))
	if err != nil {
		s.logger.WithField("error", err.Error()).Error("Terminal execution reap failed")
	} else if reaped > 0 {
		s.logger.WithField("reaped", reaped).Info("Reaped terminal executions")
	}
}
