package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// RollupWarmer precomputes the read-side rollup caches.
type RollupWarmer interface {
	Warm(ctx context.Context) error
}

// AnalyticsWarmupJob pre-populates the top-product caches for every active
// party so detail views stay warm off-peak.
type AnalyticsWarmupJob struct {
	Analytics RollupWarmer
	Logger    *slog.Logger
	clock     func() time.Time
}

// NewAnalyticsWarmupJob wires dependencies for the warmup handler.
func NewAnalyticsWarmupJob(analytics RollupWarmer, logger *slog.Logger) *AnalyticsWarmupJob {
	return &AnalyticsWarmupJob{
		Analytics: analytics,
		Logger:    logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskAnalyticsWarmup tasks.
func (j *AnalyticsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Analytics == nil {
		return errors.New("analytics warmup: handler not configured")
	}
	var payload AnalyticsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	started := j.clock()
	if err := j.Analytics.Warm(ctx); err != nil {
		j.Logger.Error("analytics warmup failed", slog.Any("error", err))
		return err
	}
	j.Logger.Info("analytics warmup finished",
		slog.String("reason", payload.Reason),
		slog.Duration("took", j.clock().Sub(started)))
	return nil
}
