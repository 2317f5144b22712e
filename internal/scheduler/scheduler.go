// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance tasks on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// TaskFunc is one run of a task.
type TaskFunc func(ctx context.Context) error

type task struct {
	name        string
	description string
	schedule    string
	timeout     time.Duration
	fn          TaskFunc
	entryID     cron.EntryID
}

// TaskInfo is the public view of a registered task.
type TaskInfo struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Schedule    string    `json:"schedule"`
	LastRun     time.Time `json:"last_run"`
	NextRun     time.Time `json:"next_run"`
}

// Scheduler owns the cron instance and the registered tasks.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu     sync.RWMutex
	tasks  map[string]*task
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Scheduler. Overlapping runs of a task are skipped and panics
// are recovered and logged.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		tasks:  make(map[string]*task),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers fn under name on a standard five-field cron schedule. Each
// run gets a context bounded by timeout (no bound when zero).
func (s *Scheduler) Add(name, description, schedule string, timeout time.Duration, fn TaskFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[name]; exists {
		return fmt.Errorf("task %q already registered", name)
	}

	t := &task{name: name, description: description, schedule: schedule, timeout: timeout, fn: fn}
	id, err := s.cron.AddFunc(schedule, func() { _ = s.run(s.ctx, t) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q for task %s: %w", schedule, name, err)
	}
	t.entryID = id
	s.tasks[name] = t
	return nil
}

func (s *Scheduler) run(ctx context.Context, t *task) error {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	start := time.Now()
	err := t.fn(ctx)
	if err != nil {
		s.logger.Error("scheduled task failed", "task", t.name, "duration", time.Since(start), "error", err)
		return err
	}
	s.logger.Debug("scheduled task finished", "task", t.name, "duration", time.Since(start))
	return nil
}

// Start begins running tasks in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "tasks", len(s.cron.Entries()))
}

// Stop cancels running tasks and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// TriggerNow runs the named task synchronously.
func (s *Scheduler) TriggerNow(ctx context.Context, name string) error {
	s.mu.RLock()
	t, ok := s.tasks[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("task %q not found", name)
	}
	s.logger.Info("manually triggering task", "task", name)
	return s.run(ctx, t)
}

// List returns the registered tasks sorted by name.
func (s *Scheduler) List() []TaskInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]TaskInfo, 0, len(s.tasks))
	for _, t := range s.tasks {
		entry := s.cron.Entry(t.entryID)
		out = append(out, TaskInfo{
			Name:        t.name,
			Description: t.description,
			Schedule:    t.schedule,
			LastRun:     entry.Prev,
			NextRun:     entry.Next,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
