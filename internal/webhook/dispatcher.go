// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/olegiv/olib-go/internal/metrics"
	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
)

// Store is the storage capability the dispatcher needs.
type Store interface {
	ListWebhooksForEvent(ctx context.Context, event sql.NullString) ([]store.Webhook, error)
	GetWebhook(ctx context.Context, id int64) (store.Webhook, error)
	CreateWebhookDelivery(ctx context.Context, arg store.CreateWebhookDeliveryParams) (store.WebhookDelivery, error)
	GetWebhookDelivery(ctx context.Context, id int64) (store.WebhookDelivery, error)
	UpdateDeliverySuccess(ctx context.Context, arg store.UpdateDeliverySuccessParams) error
	UpdateDeliveryRetry(ctx context.Context, arg store.UpdateDeliveryRetryParams) error
	UpdateDeliveryDead(ctx context.Context, arg store.UpdateDeliveryDeadParams) error
	ListPendingDeliveries(ctx context.Context, now time.Time, limit int64) ([]store.WebhookDelivery, error)
}

// Config holds dispatcher settings.
type Config struct {
	Workers   int
	QueueSize int
	// AllowPrivateTargets disables the private address guard. Tests only.
	AllowPrivateTargets bool
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{Workers: 3, QueueSize: 100}
}

// Dispatcher records a delivery per subscribed webhook and sends them from a
// small worker pool. Deliveries that could not be queued or that failed are
// picked up again by ProcessPending.
type Dispatcher struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	client  *http.Client
	queue   chan int64
	workers int

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. m may be nil.
func NewDispatcher(s Store, logger *slog.Logger, m *metrics.Metrics, cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:   s,
		logger:  logger,
		metrics: m,
		client:  newHTTPClient(cfg.AllowPrivateTargets),
		queue:   make(chan int64, cfg.QueueSize),
		workers: cfg.Workers,
	}
}

func newHTTPClient(allowPrivate bool) *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext:         dialer.DialContext,
	}
	if !allowPrivate {
		transport.DialContext = guardedDialContext(dialer)
	}
	return &http.Client{
		Timeout:   RequestTimeout,
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Start launches the delivery workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	ctx, d.cancel = context.WithCancel(ctx)
	d.running = true

	d.logger.Info("starting webhook dispatcher", "workers", d.workers)
	for i := range d.workers {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

// Stop cancels the workers and waits for in-flight deliveries.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.cancel()
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("webhook dispatcher stopped")
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case deliveryID := <-d.queue:
			d.logger.Debug("webhook worker processing delivery", "worker_id", id, "delivery_id", deliveryID)
			d.deliver(ctx, deliveryID)
		}
	}
}

// Dispatch records a delivery of eventType for every active webhook
// subscribed to it and queues them for sending.
func (d *Dispatcher) Dispatch(ctx context.Context, eventType string, data any) error {
	return d.dispatch(ctx, NewEvent(eventType, data))
}

func (d *Dispatcher) dispatch(ctx context.Context, ev *Event) error {
	hooks, err := d.store.ListWebhooksForEvent(ctx, sql.NullString{String: ev.Type, Valid: true})
	if err != nil {
		return err
	}
	if len(hooks) == 0 {
		return nil
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, wh := range hooks {
		// the SQL filter is a LIKE match, confirm against the parsed list
		if !slices.Contains(model.ParseWebhookEvents(wh.Events), ev.Type) {
			continue
		}
		delivery, err := d.store.CreateWebhookDelivery(ctx, store.CreateWebhookDeliveryParams{
			WebhookID:   wh.ID,
			Event:       ev.Type,
			Payload:     string(payload),
			NextRetryAt: sql.NullTime{Time: now.Add(InitialBackoff), Valid: true},
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			d.logger.Error("creating webhook delivery", "webhook_id", wh.ID, "event", ev.Type, "error", err)
			continue
		}
		d.enqueue(delivery.ID)
	}
	return nil
}

func (d *Dispatcher) enqueue(deliveryID int64) {
	d.mu.Lock()
	running := d.running
	d.mu.Unlock()
	if !running {
		return
	}
	select {
	case d.queue <- deliveryID:
	default:
		d.logger.Warn("webhook queue full, delivery left for retry sweep", "delivery_id", deliveryID)
	}
}

// ProcessPending sends every pending delivery whose retry time has passed and
// returns how many were attempted.
func (d *Dispatcher) ProcessPending(ctx context.Context) (int, error) {
	due, err := d.store.ListPendingDeliveries(ctx, time.Now().UTC(), 100)
	if err != nil {
		return 0, err
	}
	for _, delivery := range due {
		if ctx.Err() != nil {
			break
		}
		d.deliver(ctx, delivery.ID)
	}
	return len(due), nil
}
