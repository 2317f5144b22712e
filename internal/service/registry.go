// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
)

// DomainEvent is returned by mutating operations and handed to listeners
// after the write has committed.
type DomainEvent struct {
	Name    string
	Ref     model.EntityRef
	Article store.Article
	Actor   Actor
	Changes map[string]any
	Payload any
	At      time.Time
}

func articleEvent(name string, a store.Article, actor Actor, changes map[string]any) DomainEvent {
	return DomainEvent{
		Name:    name,
		Ref:     model.Ref(model.KindArticle, a.ID),
		Article: a,
		Actor:   actor,
		Changes: changes,
		At:      time.Now().UTC(),
	}
}

// Listener reacts to a domain event. Errors are logged and never undo the
// write that produced the event.
type Listener func(ctx context.Context, ev DomainEvent) error

// Registry dispatches domain events synchronously to registered listeners in
// registration order.
type Registry struct {
	mu        sync.RWMutex
	listeners map[string][]namedListener
	all       []namedListener
	logger    *slog.Logger
}

type namedListener struct {
	name string
	fn   Listener
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		listeners: make(map[string][]namedListener),
		logger:    logger,
	}
}

// On registers fn for events called event.
func (r *Registry) On(event, name string, fn Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners[event] = append(r.listeners[event], namedListener{name: name, fn: fn})
}

// OnAll registers fn for every event.
func (r *Registry) OnAll(name string, fn Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, namedListener{name: name, fn: fn})
}

// Publish delivers events to their listeners. A nil Registry drops events.
func (r *Registry) Publish(ctx context.Context, events ...DomainEvent) {
	if r == nil {
		return
	}
	for _, ev := range events {
		r.mu.RLock()
		targets := make([]namedListener, 0, len(r.listeners[ev.Name])+len(r.all))
		targets = append(targets, r.listeners[ev.Name]...)
		targets = append(targets, r.all...)
		r.mu.RUnlock()

		for _, l := range targets {
			if err := r.call(ctx, l, ev); err != nil {
				r.logger.Error("event listener failed",
					"listener", l.name, "event", ev.Name, "ref", ev.Ref.String(), "error", err)
			}
		}
	}
}

func (r *Registry) call(ctx context.Context, l namedListener, ev DomainEvent) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return l.fn(ctx, ev)
}
