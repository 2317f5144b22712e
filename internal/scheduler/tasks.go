// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"time"
)

// ArticleSweeper applies time-based article transitions.
type ArticleSweeper interface {
	PublishScheduled(ctx context.Context) (int, error)
	ArchiveExpired(ctx context.Context) (int, error)
}

// JobStore is the job table maintenance the scheduler performs.
type JobStore interface {
	RecoverStaleJobs(ctx context.Context, cutoff, now time.Time) (int64, error)
	DeleteFinishedJobs(ctx context.Context, cutoff time.Time) (int64, error)
}

// EventPruner deletes old audit events.
type EventPruner interface {
	DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}

// WebhookRetrier resends due webhook deliveries.
type WebhookRetrier interface {
	ProcessPending(ctx context.Context) (int, error)
}

// Reloader reloads an on-disk resource such as the GeoIP database.
type Reloader interface {
	Reload() error
}

// Tasks are the collaborators of the built-in tasks. Nil members skip the
// corresponding task.
type Tasks struct {
	Articles       ArticleSweeper
	Jobs           JobStore
	Events         EventPruner
	Webhooks       WebhookRetrier
	GeoIP          Reloader
	StaleJobAfter  time.Duration
	JobRetention   time.Duration
	EventRetention time.Duration
}

// Task names.
const (
	TaskPublishScheduled = "publish_scheduled"
	TaskArchiveExpired   = "archive_expired"
	TaskRecoverJobs      = "recover_stale_jobs"
	TaskPruneJobs        = "prune_finished_jobs"
	TaskPruneEvents      = "prune_events"
	TaskWebhookRetries   = "webhook_retries"
	TaskGeoIPReload      = "geoip_reload"
)

// RegisterDefaults adds the built-in maintenance tasks.
func (s *Scheduler) RegisterDefaults(t Tasks) error {
	if t.StaleJobAfter <= 0 {
		t.StaleJobAfter = 10 * time.Minute
	}
	if t.JobRetention <= 0 {
		t.JobRetention = 7 * 24 * time.Hour
	}
	if t.EventRetention <= 0 {
		t.EventRetention = 90 * 24 * time.Hour
	}

	type def struct {
		name, desc, schedule string
		timeout              time.Duration
		fn                   TaskFunc
	}
	var defs []def

	if t.Articles != nil {
		defs = append(defs,
			def{TaskPublishScheduled, "Publish articles whose scheduled time has passed", "* * * * *", time.Minute,
				func(ctx context.Context) error {
					n, err := t.Articles.PublishScheduled(ctx)
					if n > 0 {
						s.logger.Info("published scheduled articles", "count", n)
					}
					return err
				}},
			def{TaskArchiveExpired, "Archive published articles past their expiry", "* * * * *", time.Minute,
				func(ctx context.Context) error {
					n, err := t.Articles.ArchiveExpired(ctx)
					if n > 0 {
						s.logger.Info("archived expired articles", "count", n)
					}
					return err
				}},
		)
	}
	if t.Jobs != nil {
		defs = append(defs,
			def{TaskRecoverJobs, "Return jobs stuck in running to the queue", "*/5 * * * *", time.Minute,
				func(ctx context.Context) error {
					now := time.Now().UTC()
					n, err := t.Jobs.RecoverStaleJobs(ctx, now.Add(-t.StaleJobAfter), now)
					if n > 0 {
						s.logger.Warn("recovered stale jobs", "count", n)
					}
					return err
				}},
			def{TaskPruneJobs, "Delete completed and failed jobs", "30 3 * * *", 5 * time.Minute,
				func(ctx context.Context) error {
					_, err := t.Jobs.DeleteFinishedJobs(ctx, time.Now().UTC().Add(-t.JobRetention))
					return err
				}},
		)
	}
	if t.Events != nil {
		defs = append(defs, def{TaskPruneEvents, "Delete audit events past retention", "0 4 * * *", 5 * time.Minute,
			func(ctx context.Context) error {
				n, err := t.Events.DeleteOldEvents(ctx, t.EventRetention)
				if n > 0 {
					s.logger.Info("pruned events", "count", n)
				}
				return err
			}})
	}
	if t.Webhooks != nil {
		defs = append(defs, def{TaskWebhookRetries, "Retry due webhook deliveries", "* * * * *", 5 * time.Minute,
			func(ctx context.Context) error {
				_, err := t.Webhooks.ProcessPending(ctx)
				return err
			}})
	}
	if t.GeoIP != nil {
		defs = append(defs, def{TaskGeoIPReload, "Reload the GeoIP database if replaced", "15 5 * * *", time.Minute,
			func(context.Context) error { return t.GeoIP.Reload() }})
	}

	for _, d := range defs {
		if err := s.Add(d.name, d.desc, d.schedule, d.timeout, d.fn); err != nil {
			return err
		}
	}
	return nil
}
