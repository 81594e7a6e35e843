package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// OfferExpirer is the slice of the documents service the sweep needs.
type OfferExpirer interface {
	ExpireOverdue(ctx context.Context) (int64, error)
}

// CacheInvalidator drops derived read-side caches after the ledger changed.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// OfferExpiryJob flips overdue pending offers to expired.
type OfferExpiryJob struct {
	Documents OfferExpirer
	Analytics CacheInvalidator
	Logger    *slog.Logger
	clock     func() time.Time
}

// NewOfferExpiryJob wires dependencies for the expiry handler.
func NewOfferExpiryJob(documents OfferExpirer, analytics CacheInvalidator, logger *slog.Logger) *OfferExpiryJob {
	return &OfferExpiryJob{
		Documents: documents,
		Analytics: analytics,
		Logger:    logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskOfferExpiry tasks.
func (j *OfferExpiryJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Documents == nil {
		return errors.New("offer expiry: handler not configured")
	}
	var payload OfferExpiryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	started := j.clock()
	expired, err := j.Documents.ExpireOverdue(ctx)
	if err != nil {
		j.Logger.Error("offer expiry sweep failed", slog.Any("error", err))
		return err
	}
	if expired > 0 && j.Analytics != nil {
		j.Analytics.Invalidate(ctx)
	}
	j.Logger.Info("offer expiry sweep finished",
		slog.Int64("expired", expired),
		slog.Duration("took", j.clock().Sub(started)))
	return nil
}
