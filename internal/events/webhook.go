package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/platform/dbctx"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

type WebhookLister interface {
	ListActiveFor(dbc dbctx.Context, event string) ([]*types.Webhook, error)
}

// WebhookSink POSTs the envelope to every active webhook subscribed to
// the event.
type WebhookSink struct {
	log    *logger.Logger
	hooks  WebhookLister
	client *http.Client
}

func NewWebhookSink(log *logger.Logger, hooks WebhookLister, timeout time.Duration) *WebhookSink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookSink{
		log:    log.With("sink", "webhook"),
		hooks:  hooks,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Send(ctx context.Context, env Envelope) error {
	targets, err := s.hooks.ListActiveFor(dbctx.Context{Ctx: ctx}, env.Meta.Type)
	if err != nil {
		return fmt.Errorf("list webhooks: %w", err)
	}
	if len(targets) == 0 {
		return nil
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	var errs []error
	for _, w := range targets {
		if err := s.post(ctx, w.URL, env, body); err != nil {
			errs = append(errs, fmt.Errorf("webhook %s: %w", w.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *WebhookSink) post(ctx context.Context, url string, env Envelope, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", env.Meta.Type)
	req.Header.Set("X-Event-Id", env.Meta.ID)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
