// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/olegiv/olib-go/internal/metrics"
	"github.com/olegiv/olib-go/internal/store"
)

// Handler processes one job. A returned error schedules a retry until the
// job runs out of attempts.
type Handler func(ctx context.Context, job store.Job) error

// ErrPermanent wraps errors that must not be retried.
var ErrPermanent = errors.New("permanent job failure")

// Permanent marks err as not retryable.
func Permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// Store is the storage capability needed by the worker pool.
type Store interface {
	ClaimNextJob(ctx context.Context, now time.Time) (store.Job, error)
	CompleteJob(ctx context.Context, id int64, now time.Time) error
	RetryJob(ctx context.Context, id int64, lastError string, runAt, now time.Time) error
	FailJob(ctx context.Context, id int64, lastError string, now time.Time) error
}

// PoolConfig holds worker pool settings.
type PoolConfig struct {
	Workers      int
	PollInterval time.Duration
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
}

// DefaultPoolConfig returns the default pool settings.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Workers:      2,
		PollInterval: time.Second,
		BaseBackoff:  10 * time.Second,
		MaxBackoff:   30 * time.Minute,
	}
}

// Pool runs registered handlers against claimed jobs.
type Pool struct {
	store    Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
	cfg      PoolConfig
	handlers map[string]Handler

	wg      sync.WaitGroup
	done    chan struct{}
	mu      sync.RWMutex
	running bool
}

// NewPool creates a worker pool. m may be nil.
func NewPool(s Store, logger *slog.Logger, m *metrics.Metrics, cfg PoolConfig) *Pool {
	def := DefaultPoolConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = def.BaseBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pool{
		store:    s,
		logger:   logger,
		metrics:  m,
		cfg:      cfg,
		handlers: make(map[string]Handler),
	}
}

// Register binds a handler to a job type. Registering after Start is allowed.
func (p *Pool) Register(jobType string, h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[jobType] = h
}

func (p *Pool) handler(jobType string) (Handler, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	h, ok := p.handlers[jobType]
	return h, ok
}

// Start launches the workers. They stop when ctx is cancelled or Stop is called.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.done = make(chan struct{})
	p.mu.Unlock()

	p.logger.Info("starting job workers", "workers", p.cfg.Workers)
	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop signals the workers and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.done)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("job workers stopped")
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		// drain everything that is due before sleeping again
		for {
			processed, err := p.RunOnce(ctx)
			if err != nil {
				p.logger.Error("claiming job", "worker_id", id, "error", err)
				break
			}
			if !processed {
				break
			}
			select {
			case <-p.done:
				return
			case <-ctx.Done():
				return
			default:
			}
		}

		select {
		case <-p.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce claims and processes a single due job. It reports false when no
// job was due.
func (p *Pool) RunOnce(ctx context.Context) (bool, error) {
	job, err := p.store.ClaimNextJob(ctx, time.Now().UTC())
	if store.IsNoRows(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	p.process(ctx, job)
	return true, nil
}

func (p *Pool) process(ctx context.Context, job store.Job) {
	log := p.logger.With("job_id", job.ID, "job_type", job.Type, "attempt", job.Attempts)

	h, ok := p.handler(job.Type)
	if !ok {
		p.fail(ctx, job, "no handler registered")
		log.Error("job failed", "error", "no handler registered")
		return
	}

	err := p.run(ctx, h, job)
	now := time.Now().UTC()
	if err == nil {
		if cerr := p.store.CompleteJob(ctx, job.ID, now); cerr != nil {
			log.Error("marking job completed", "error", cerr)
		}
		p.metrics.JobProcessed(job.Type, "completed")
		log.Debug("job completed")
		return
	}

	if errors.Is(err, ErrPermanent) || job.Attempts >= job.MaxAttempts {
		p.fail(ctx, job, err.Error())
		log.Error("job failed", "error", err)
		return
	}

	runAt := now.Add(Backoff(int(job.Attempts), p.cfg.BaseBackoff, p.cfg.MaxBackoff))
	if rerr := p.store.RetryJob(ctx, job.ID, err.Error(), runAt, now); rerr != nil {
		log.Error("scheduling job retry", "error", rerr)
	}
	p.metrics.JobProcessed(job.Type, "retried")
	log.Warn("job failed, will retry", "error", err, "run_at", runAt)
}

// run invokes h and converts a panic into an error.
func (p *Pool) run(ctx context.Context, h Handler, job store.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h(ctx, job)
}

func (p *Pool) fail(ctx context.Context, job store.Job, reason string) {
	if err := p.store.FailJob(ctx, job.ID, reason, time.Now().UTC()); err != nil {
		p.logger.Error("marking job failed", "job_id", job.ID, "error", err)
	}
	p.metrics.JobProcessed(job.Type, "failed")
}

// Backoff returns the delay before retry number attempt (1-based):
// base, 2*base, 4*base and so on, capped at limit.
func Backoff(attempt int, base, limit time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= limit {
			return limit
		}
	}
	if d > limit {
		return limit
	}
	return d
}
