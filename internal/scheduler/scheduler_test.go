// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/olegiv/olib-go/internal/testutil"
)

func TestAddAndList(t *testing.T) {
	s := New(testutil.TestLoggerSilent())

	noop := func(context.Context) error { return nil }
	if err := s.Add("b", "second", "*/5 * * * *", 0, noop); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add("a", "first", "@hourly", 0, noop); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add("a", "dup", "* * * * *", 0, noop); err == nil {
		t.Error("duplicate name accepted")
	}
	if err := s.Add("c", "bad", "not a schedule", 0, noop); err == nil {
		t.Error("invalid schedule accepted")
	}

	s.Start()
	defer s.Stop()

	list := s.List()
	if len(list) != 2 || list[0].Name != "a" || list[1].Name != "b" {
		t.Fatalf("List() = %+v", list)
	}
	if list[0].NextRun.IsZero() {
		t.Error("started task has no next run")
	}
}

func TestTriggerNow(t *testing.T) {
	s := New(testutil.TestLoggerSilent())
	calls := 0
	boom := errors.New("boom")
	_ = s.Add("count", "", "@daily", time.Second, func(ctx context.Context) error {
		calls++
		if _, ok := ctx.Deadline(); !ok {
			t.Error("task context has no deadline")
		}
		return nil
	})
	_ = s.Add("fail", "", "@daily", 0, func(context.Context) error { return boom })

	if err := s.TriggerNow(context.Background(), "count"); err != nil {
		t.Fatalf("TriggerNow: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if err := s.TriggerNow(context.Background(), "fail"); !errors.Is(err, boom) {
		t.Errorf("TriggerNow error = %v, want boom", err)
	}
	if err := s.TriggerNow(context.Background(), "missing"); err == nil {
		t.Error("unknown task triggered")
	}
}

type fakeSweeper struct{ published, archived int }

func (f *fakeSweeper) PublishScheduled(context.Context) (int, error) { f.published++; return 2, nil }
func (f *fakeSweeper) ArchiveExpired(context.Context) (int, error)   { f.archived++; return 0, nil }

type fakeJobs struct {
	staleCutoff, pruneCutoff time.Time
}

func (f *fakeJobs) RecoverStaleJobs(_ context.Context, cutoff, _ time.Time) (int64, error) {
	f.staleCutoff = cutoff
	return 1, nil
}

func (f *fakeJobs) DeleteFinishedJobs(_ context.Context, cutoff time.Time) (int64, error) {
	f.pruneCutoff = cutoff
	return 0, nil
}

type fakePruner struct{ olderThan time.Duration }

func (f *fakePruner) DeleteOldEvents(_ context.Context, olderThan time.Duration) (int64, error) {
	f.olderThan = olderThan
	return 0, nil
}

func TestRegisterDefaults(t *testing.T) {
	s := New(testutil.TestLoggerSilent())
	sweeper := &fakeSweeper{}
	jobs := &fakeJobs{}
	pruner := &fakePruner{}

	err := s.RegisterDefaults(Tasks{
		Articles:       sweeper,
		Jobs:           jobs,
		Events:         pruner,
		StaleJobAfter:  15 * time.Minute,
		EventRetention: 30 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("RegisterDefaults: %v", err)
	}

	names := map[string]bool{}
	for _, info := range s.List() {
		names[info.Name] = true
	}
	for _, want := range []string{TaskPublishScheduled, TaskArchiveExpired, TaskRecoverJobs, TaskPruneJobs, TaskPruneEvents} {
		if !names[want] {
			t.Errorf("task %s not registered", want)
		}
	}
	if names[TaskWebhookRetries] || names[TaskGeoIPReload] {
		t.Error("tasks registered for nil collaborators")
	}

	ctx := context.Background()
	for _, name := range []string{TaskPublishScheduled, TaskArchiveExpired, TaskRecoverJobs, TaskPruneJobs, TaskPruneEvents} {
		if err := s.TriggerNow(ctx, name); err != nil {
			t.Errorf("TriggerNow(%s): %v", name, err)
		}
	}
	if sweeper.published != 1 || sweeper.archived != 1 {
		t.Errorf("sweeper calls = %+v", sweeper)
	}
	if age := time.Since(jobs.staleCutoff); age < 15*time.Minute || age > 16*time.Minute {
		t.Errorf("stale cutoff age = %v, want about 15m", age)
	}
	if age := time.Since(jobs.pruneCutoff); age < 7*24*time.Hour-time.Minute {
		t.Errorf("prune cutoff age = %v, want about 7 days", age)
	}
	if pruner.olderThan != 30*24*time.Hour {
		t.Errorf("event retention = %v", pruner.olderThan)
	}
}
