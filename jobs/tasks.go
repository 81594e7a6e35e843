package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOfferExpiry sweeps overdue pending offers into the expired state.
	TaskOfferExpiry = "offers:expire"
	// TaskAnalyticsWarmup precomputes the top-product rollup caches.
	TaskAnalyticsWarmup = "analytics:warmup"
)

// OfferExpiryPayload parameterizes an expiry sweep. AsOf defaults to the
// handler's clock when zero.
type OfferExpiryPayload struct {
	AsOf time.Time `json:"as_of,omitempty"`
}

// AnalyticsWarmupPayload parameterizes a cache warmup run.
type AnalyticsWarmupPayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewOfferExpiryTask constructs an Asynq task for the expiry sweep.
func NewOfferExpiryTask(payload OfferExpiryPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOfferExpiry, data), nil
}

// NewAnalyticsWarmupTask constructs an Asynq task for the cache warmup.
func NewAnalyticsWarmupTask(payload AnalyticsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalyticsWarmup, data), nil
}
