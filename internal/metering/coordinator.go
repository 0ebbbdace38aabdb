// Package metering charges users at most once per video and keeps the
// usage history that backs the charge decision.
package metering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/therealutkarshpriyadarshi/tubenotes/internal/ledger"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/metrics"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/tracing"
	"github.com/therealutkarshpriyadarshi/tubenotes/pkg/models"
)

// Publisher receives usage events. Delivery is best-effort.
type Publisher interface {
	Publish(ctx context.Context, evt *models.UsageEvent) error
}

// Request describes the work a user asked for
type Request struct {
	UserID     string
	VideoID    string
	VideoURL   string
	Title      string
	OutputType models.OutputType
}

// Coordinator composes the ledger primitives into the charge workflow
type Coordinator struct {
	ledger         ledger.Ledger
	tokensPerVideo int
	publishers     []Publisher
	logger         *logging.Logger
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithPublisher emits usage events to p. Repeat to fan out.
func WithPublisher(p Publisher) Option {
	return func(c *Coordinator) {
		if p != nil {
			c.publishers = append(c.publishers, p)
		}
	}
}

// WithLogger sets the coordinator's logger
func WithLogger(l *logging.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// NewCoordinator creates a coordinator charging tokensPerVideo per new video
func NewCoordinator(l ledger.Ledger, tokensPerVideo int, opts ...Option) *Coordinator {
	c := &Coordinator{
		ledger:         l,
		tokensPerVideo: tokensPerVideo,
		logger:         logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TokensPerVideo returns the charge for processing a new video
func (c *Coordinator) TokensPerVideo() int {
	return c.tokensPerVideo
}

// HasUserProcessedVideo reports whether the user has any usage record for
// the video, whatever its output type or status.
func (c *Coordinator) HasUserProcessedVideo(ctx context.Context, userID, videoID string) (bool, error) {
	start := time.Now()
	processed, err := c.ledger.HasVideoUsage(ctx, userID, videoID)
	metrics.RecordDatabaseOperation("has_video_usage", err, time.Since(start).Seconds())
	if err != nil {
		return false, fmt.Errorf("failed to check video usage: %w", err)
	}
	return processed, nil
}

// DeductTokens charges amount to the user and returns the new balance. It
// fails with ledger.ErrInsufficientTokens, leaving the balance untouched,
// when the balance cannot cover amount. The consumption transaction is
// appended best-effort.
func (c *Coordinator) DeductTokens(ctx context.Context, userID string, amount int, videoID string) (int, error) {
	start := time.Now()
	balance, err := c.ledger.GetBalance(ctx, userID)
	metrics.RecordDatabaseOperation("get_balance", err, time.Since(start).Seconds())
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	if balance.TokensRemaining < amount {
		metrics.RecordTokenCharge("insufficient", amount)
		return balance.TokensRemaining, ledger.ErrInsufficientTokens
	}

	start = time.Now()
	remaining, err := c.ledger.DeductTokens(ctx, userID, amount)
	c.logger.LogLedgerOperation("deduct_tokens", userID, videoID, time.Since(start), err)
	metrics.RecordDatabaseOperation("deduct_tokens", err, time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientTokens) {
			metrics.RecordTokenCharge("insufficient", amount)
			return remaining, err
		}
		return 0, fmt.Errorf("failed to deduct tokens: %w", err)
	}
	metrics.RecordTokenCharge("charged", amount)

	tx := &models.TokenTransaction{
		UserID:       userID,
		VideoID:      videoID,
		TokensAmount: amount,
		Type:         models.TransactionTypeConsumption,
	}
	if err := c.ledger.AppendTransaction(ctx, tx); err != nil {
		c.logger.WithUserID(userID).WithVideoID(videoID).ErrorWithErr("Failed to record token transaction", err)
		metrics.RecordError("metering", "transaction_append")
	}

	c.publish(ctx, &models.UsageEvent{
		Type:    models.EventTokensCharged,
		UserID:  userID,
		VideoID: videoID,
		Tokens:  amount,
	})

	return remaining, nil
}

// RecordVideoUsage inserts a usage record and returns its id. Failures are
// logged and yield an empty id.
func (c *Coordinator) RecordVideoUsage(ctx context.Context, req Request, status string) string {
	start := time.Now()
	id, err := c.ledger.CreateVideoUsage(ctx, &models.VideoUsageRecord{
		UserID:     req.UserID,
		VideoID:    req.VideoID,
		VideoURL:   req.VideoURL,
		Title:      req.Title,
		OutputType: req.OutputType,
		Status:     status,
	})
	metrics.RecordDatabaseOperation("create_video_usage", err, time.Since(start).Seconds())
	if err != nil {
		c.logger.WithUserID(req.UserID).WithVideoID(req.VideoID).ErrorWithErr("Failed to record video usage", err)
		metrics.RecordError("metering", "usage_record")
		return ""
	}

	metrics.RecordUsage(string(req.OutputType), status)
	return id
}

// UpdateVideoUsageStatus moves a usage record to status. An empty id is a
// no-op; failures are logged.
func (c *Coordinator) UpdateVideoUsageStatus(ctx context.Context, recordID, status string, errorMessage *string) {
	if recordID == "" {
		return
	}

	start := time.Now()
	err := c.ledger.UpdateVideoUsageStatus(ctx, recordID, status, errorMessage)
	metrics.RecordDatabaseOperation("update_video_usage", err, time.Since(start).Seconds())
	if err != nil {
		c.logger.WithField("record_id", recordID).ErrorWithErr("Failed to update video usage status", err)
		metrics.RecordError("metering", "usage_update")
	}
}

// Usage is an in-flight request holding its usage record
type Usage struct {
	c        *Coordinator
	req      Request
	recordID string
	charged  bool
	tokens   int
}

// RecordID returns the usage record id, empty when recording failed
func (u *Usage) RecordID() string {
	return u.recordID
}

// Charged reports whether this request paid for the video
func (u *Usage) Charged() bool {
	return u.charged
}

// Begin runs the charge workflow: a video the user has not processed
// before is charged, then a pending usage record is created.
//
// The check and the charge are not atomic. Two concurrent first requests
// for the same video can both be charged.
func (c *Coordinator) Begin(ctx context.Context, req Request) (*Usage, error) {
	span, ctx := tracing.StartSpan(ctx, "metering.begin")
	defer tracing.FinishSpan(span)
	tracing.SetTag(span, "video_id", req.VideoID)
	tracing.SetTag(span, "output_type", string(req.OutputType))

	processed, err := c.HasUserProcessedVideo(ctx, req.UserID, req.VideoID)
	if err != nil {
		tracing.LogError(span, err)
		return nil, err
	}

	u := &Usage{c: c, req: req}
	if processed {
		metrics.RecordTokenCharge("skipped", c.tokensPerVideo)
	} else {
		if _, err := c.DeductTokens(ctx, req.UserID, c.tokensPerVideo, req.VideoID); err != nil {
			tracing.LogError(span, err)
			return nil, err
		}
		u.charged = true
		u.tokens = c.tokensPerVideo
	}
	tracing.SetTag(span, "charged", u.charged)

	u.recordID = c.RecordVideoUsage(ctx, req, models.UsageStatusPending)
	return u, nil
}

// Finish marks the usage record completed, or failed with the message of
// workErr.
func (u *Usage) Finish(ctx context.Context, workErr error) {
	if u == nil {
		return
	}

	evt := &models.UsageEvent{
		UserID:     u.req.UserID,
		VideoID:    u.req.VideoID,
		OutputType: u.req.OutputType,
		RecordID:   u.recordID,
		Tokens:     u.tokens,
	}

	if workErr != nil {
		msg := workErr.Error()
		u.c.UpdateVideoUsageStatus(ctx, u.recordID, models.UsageStatusFailed, &msg)
		metrics.RecordUsage(string(u.req.OutputType), models.UsageStatusFailed)
		evt.Type = models.EventUsageFailed
		evt.Error = msg
	} else {
		u.c.UpdateVideoUsageStatus(ctx, u.recordID, models.UsageStatusCompleted, nil)
		metrics.RecordUsage(string(u.req.OutputType), models.UsageStatusCompleted)
		evt.Type = models.EventUsageCompleted
	}

	u.c.publish(ctx, evt)
}

func (c *Coordinator) publish(ctx context.Context, evt *models.UsageEvent) {
	if len(c.publishers) == 0 {
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	for _, p := range c.publishers {
		if err := p.Publish(ctx, evt); err != nil {
			c.logger.WithField("event", evt.Type).ErrorWithErr("Failed to publish usage event", err)
			metrics.RecordError("metering", "publish")
		}
	}
}
