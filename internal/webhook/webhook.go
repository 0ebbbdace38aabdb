// Package webhook forwards usage events to an external HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/config"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/metrics"
	"github.com/therealutkarshpriyadarshi/tubenotes/pkg/models"
)

// Event is the body POSTed to the endpoint
type Event struct {
	Event     string             `json:"event"`
	Timestamp time.Time          `json:"timestamp"`
	Data      *models.UsageEvent `json:"data"`
}

// Retry delays between delivery attempts
var defaultRetryDelays = []time.Duration{
	1 * time.Second,
	5 * time.Second,
	15 * time.Second,
}

// Notifier delivers usage events in the background and retries failures
type Notifier struct {
	client *http.Client
	url    string
	secret string
	events map[string]bool
	delays []time.Duration
	logger *logging.Logger
	wg     sync.WaitGroup
}

// NewNotifier creates a notifier for cfg.URL. An empty event list forwards
// every event.
func NewNotifier(cfg config.WebhookConfig, logger *logging.Logger) *Notifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Nop()
	}

	events := make(map[string]bool, len(cfg.Events))
	for _, e := range cfg.Events {
		events[e] = true
	}

	return &Notifier{
		client: &http.Client{
			Timeout: timeout,
		},
		url:    cfg.URL,
		secret: cfg.Secret,
		events: events,
		delays: defaultRetryDelays,
		logger: logger,
	}
}

// Publish schedules delivery of evt. It never blocks on the endpoint.
func (n *Notifier) Publish(ctx context.Context, evt *models.UsageEvent) error {
	if len(n.events) > 0 && !n.events[evt.Type] {
		return nil
	}

	payload, err := json.Marshal(Event{
		Event:     evt.Type,
		Timestamp: time.Now().UTC(),
		Data:      evt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	deliveryID := uuid.New().String()

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.deliverWithRetry(context.WithoutCancel(ctx), deliveryID, evt.Type, payload)
	}()

	return nil
}

// Wait blocks until in-flight deliveries finish
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) deliverWithRetry(ctx context.Context, deliveryID, event string, payload []byte) {
	l := n.logger.WithField("delivery_id", deliveryID).WithField("event", event)

	for attempt := 0; ; attempt++ {
		err := n.deliver(ctx, deliveryID, event, payload)
		if err == nil {
			metrics.RecordUsageEvent(event, "webhook")
			return
		}

		if attempt >= len(n.delays) {
			l.ErrorWithErr("Webhook delivery failed, giving up", err)
			metrics.RecordError("webhook", "delivery")
			return
		}

		l.WithError(err).WithField("retry_in", n.delays[attempt].String()).Warn("Webhook delivery failed")
		select {
		case <-ctx.Done():
			return
		case <-time.After(n.delays[attempt]):
		}
	}
}

// deliver attempts to deliver a webhook once
func (n *Notifier) deliver(ctx context.Context, deliveryID, event string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Tubenotes-Webhook/1.0")
	req.Header.Set("X-Webhook-Event", event)
	req.Header.Set("X-Webhook-Delivery", deliveryID)

	// Add HMAC signature if secret is configured
	if n.secret != "" {
		req.Header.Set("X-Webhook-Signature", generateSignature(payload, n.secret))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("endpoint returned %d: %s", resp.StatusCode, body)
	}
	return nil
}

// generateSignature generates HMAC-SHA256 signature for webhook payload
func generateSignature(payload []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}

// VerifySignature checks a signature produced for payload with secret
func VerifySignature(payload []byte, secret, signature string) bool {
	return hmac.Equal([]byte(generateSignature(payload, secret)), []byte(signature))
}
