// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
)

// Delivery settings.
const (
	MaxAttempts    = 5
	InitialBackoff = time.Minute
	MaxBackoff     = 24 * time.Hour
	RequestTimeout = 30 * time.Second
	MaxResponseLen = 10 * 1024
	UserAgent      = "oLib-Webhook/1.0"
)

// Signature and metadata headers sent with every delivery.
const (
	HeaderSignature  = "X-Webhook-Signature"
	HeaderEvent      = "X-Webhook-Event"
	HeaderDeliveryID = "X-Webhook-Delivery-ID"
)

type attemptResult struct {
	ok         bool
	retry      bool
	statusCode int
	body       string
	err        error
}

// deliver makes one attempt at a delivery and records the outcome.
func (d *Dispatcher) deliver(ctx context.Context, deliveryID int64) {
	record, err := d.store.GetWebhookDelivery(ctx, deliveryID)
	if err != nil {
		d.logger.Error("loading webhook delivery", "delivery_id", deliveryID, "error", err)
		return
	}
	if record.Status != model.DeliveryStatusPending {
		return
	}
	wh, err := d.store.GetWebhook(ctx, record.WebhookID)
	if err != nil {
		d.logger.Error("loading webhook", "webhook_id", record.WebhookID, "error", err)
		return
	}

	var res attemptResult
	if wh.IsActive {
		res = d.attempt(ctx, wh, record)
	} else {
		res = attemptResult{err: fmt.Errorf("webhook %d is inactive", wh.ID)}
	}
	now := time.Now().UTC()

	switch {
	case res.ok:
		err = d.store.UpdateDeliverySuccess(ctx, store.UpdateDeliverySuccessParams{
			ResponseCode: sql.NullInt64{Int64: int64(res.statusCode), Valid: true},
			ResponseBody: sql.NullString{String: res.body, Valid: true},
			DeliveredAt:  sql.NullTime{Time: now, Valid: true},
			UpdatedAt:    now,
			ID:           record.ID,
		})
		d.metrics.WebhookDelivery("delivered")
		d.logger.Info("webhook delivered", "delivery_id", record.ID, "webhook_id", wh.ID, "status_code", res.statusCode)

	case !res.retry || record.Attempts+1 >= MaxAttempts:
		err = d.store.UpdateDeliveryDead(ctx, store.UpdateDeliveryDeadParams{
			ErrorMessage: nullError(res.err),
			UpdatedAt:    now,
			ID:           record.ID,
		})
		d.metrics.WebhookDelivery("dead")
		d.logger.Warn("webhook delivery abandoned", "delivery_id", record.ID, "webhook_id", wh.ID,
			"attempts", record.Attempts+1, "error", res.err)

	default:
		next := now.Add(Backoff(record.Attempts + 1))
		err = d.store.UpdateDeliveryRetry(ctx, store.UpdateDeliveryRetryParams{
			ResponseCode: sql.NullInt64{Int64: int64(res.statusCode), Valid: res.statusCode > 0},
			ResponseBody: sql.NullString{String: res.body, Valid: res.body != ""},
			ErrorMessage: nullError(res.err),
			NextRetryAt:  sql.NullTime{Time: next, Valid: true},
			UpdatedAt:    now,
			ID:           record.ID,
		})
		d.metrics.WebhookDelivery("retry")
		d.logger.Info("webhook delivery will be retried", "delivery_id", record.ID, "webhook_id", wh.ID,
			"attempt", record.Attempts+1, "next_retry_at", next.Format(time.RFC3339))
	}
	if err != nil {
		d.logger.Error("recording webhook delivery outcome", "delivery_id", record.ID, "error", err)
	}
}

func (d *Dispatcher) attempt(ctx context.Context, wh store.Webhook, record store.WebhookDelivery) attemptResult {
	payload := []byte(record.Payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wh.Url, bytes.NewReader(payload))
	if err != nil {
		return attemptResult{err: fmt.Errorf("building request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set(HeaderSignature, GenerateSignature(payload, wh.Secret))
	req.Header.Set(HeaderEvent, record.Event)
	req.Header.Set(HeaderDeliveryID, strconv.FormatInt(record.ID, 10))
	for k, v := range model.ParseWebhookHeaders(wh.Headers) {
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return attemptResult{retry: true, err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))
	res := attemptResult{statusCode: resp.StatusCode, body: string(body)}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		res.ok = true
	case resp.StatusCode == http.StatusRequestTimeout, resp.StatusCode == http.StatusTooManyRequests:
		res.retry = true
	case resp.StatusCode >= 500:
		res.retry = true
	}
	if !res.ok {
		res.err = fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return res
}

// Backoff returns the delay before retry number attempt: one minute doubled
// per attempt, capped at MaxBackoff.
func Backoff(attempt int64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := InitialBackoff
	for i := int64(1); i < attempt; i++ {
		delay *= 2
		if delay >= MaxBackoff {
			return MaxBackoff
		}
	}
	return delay
}

func nullError(err error) sql.NullString {
	if err == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: err.Error(), Valid: true}
}
