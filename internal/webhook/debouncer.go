// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"context"
	"sync"
	"time"
)

// DebounceConfig holds debouncer settings.
type DebounceConfig struct {
	// Interval is the quiet period after the last event before it is sent.
	Interval time.Duration
	// MaxWait bounds how long a busy key can be held back.
	MaxWait time.Duration
}

// DefaultDebounceConfig returns the production settings.
func DefaultDebounceConfig() DebounceConfig {
	return DebounceConfig{Interval: time.Second, MaxWait: 5 * time.Second}
}

type pendingEvent struct {
	event     *Event
	timer     *time.Timer
	firstSeen time.Time
}

// Debouncer coalesces bursts of the same event for the same entity, for
// example several quick edits of one article, into a single delivery
// carrying the latest data. Events whose data is not Keyed pass straight
// through.
type Debouncer struct {
	dispatcher *Dispatcher
	config     DebounceConfig
	pending    map[string]*pendingEvent
	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewDebouncer wraps dispatcher.
func NewDebouncer(dispatcher *Dispatcher, config DebounceConfig) *Debouncer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Debouncer{
		dispatcher: dispatcher,
		config:     config,
		pending:    make(map[string]*pendingEvent),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Dispatch holds the event for the debounce interval.
func (d *Debouncer) Dispatch(ctx context.Context, eventType string, data any) error {
	ev := NewEvent(eventType, data)
	if _, ok := data.(Keyed); !ok {
		return d.dispatcher.dispatch(ctx, ev)
	}

	key := eventKey(ev)
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.pending[key]; ok {
		existing.event = ev
		if now.Sub(existing.firstSeen) >= d.config.MaxWait {
			d.flushLocked(key)
			return nil
		}
		existing.timer.Reset(d.config.Interval)
		return nil
	}

	d.pending[key] = &pendingEvent{
		event:     ev,
		firstSeen: now,
		timer: time.AfterFunc(d.config.Interval, func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.flushLocked(key)
		}),
	}
	return nil
}

// flushLocked sends the pending event for key. d.mu must be held.
func (d *Debouncer) flushLocked(key string) {
	pe, ok := d.pending[key]
	if !ok {
		return
	}
	pe.timer.Stop()
	delete(d.pending, key)

	d.wg.Add(1)
	go func(ev *Event) {
		defer d.wg.Done()
		if err := d.dispatcher.dispatch(d.ctx, ev); err != nil {
			d.dispatcher.logger.Error("dispatching debounced webhook event", "event", ev.Type, "error", err)
		}
	}(pe.event)
}

// Flush sends every pending event now.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key := range d.pending {
		d.flushLocked(key)
	}
}

// Stop flushes pending events and waits until they are recorded.
func (d *Debouncer) Stop() {
	d.Flush()
	d.wg.Wait()
	d.cancel()
}

// PendingCount returns the number of held events.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
