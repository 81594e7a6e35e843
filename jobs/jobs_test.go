package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	expired int64
	err     error
	calls   int
}

func (f *fakeExpirer) ExpireOverdue(context.Context) (int64, error) {
	f.calls++
	return f.expired, f.err
}

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) Invalidate(context.Context) { f.calls++ }

type fakeWarmer struct {
	err   error
	calls int
}

func (f *fakeWarmer) Warm(context.Context) error {
	f.calls++
	return f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOfferExpiryInvalidatesCacheWhenRowsExpired(t *testing.T) {
	expirer := &fakeExpirer{expired: 3}
	invalidator := &fakeInvalidator{}
	job := NewOfferExpiryJob(expirer, invalidator, testLogger())

	task, err := NewOfferExpiryTask(OfferExpiryPayload{})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, expirer.calls)
	assert.Equal(t, 1, invalidator.calls)
}

func TestOfferExpirySkipsInvalidationWhenNothingExpired(t *testing.T) {
	expirer := &fakeExpirer{expired: 0}
	invalidator := &fakeInvalidator{}
	job := NewOfferExpiryJob(expirer, invalidator, testLogger())

	task, err := NewOfferExpiryTask(OfferExpiryPayload{})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Zero(t, invalidator.calls)
}

func TestOfferExpiryPropagatesSweepError(t *testing.T) {
	expirer := &fakeExpirer{err: errors.New("boom")}
	job := NewOfferExpiryJob(expirer, nil, testLogger())

	task, err := NewOfferExpiryTask(OfferExpiryPayload{})
	require.NoError(t, err)

	assert.Error(t, job.Handle(context.Background(), task))
}

func TestOfferExpirySkipsRetryOnMalformedPayload(t *testing.T) {
	job := NewOfferExpiryJob(&fakeExpirer{}, nil, testLogger())
	task := asynq.NewTask(TaskOfferExpiry, []byte("{not json"))

	err := job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestAnalyticsWarmupRunsWarmer(t *testing.T) {
	warmer := &fakeWarmer{}
	job := NewAnalyticsWarmupJob(warmer, testLogger())

	task, err := NewAnalyticsWarmupTask(AnalyticsWarmupPayload{Reason: "test"})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, warmer.calls)
}

type fakeEnqueuer struct {
	expiries int
	warmups  int
	err      error
}

func (f *fakeEnqueuer) EnqueueOfferExpiry(context.Context, OfferExpiryPayload) (*asynq.TaskInfo, error) {
	f.expiries++
	if f.err != nil {
		return nil, f.err
	}
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueDefault}, nil
}

func (f *fakeEnqueuer) EnqueueAnalyticsWarmup(context.Context, AnalyticsWarmupPayload) (*asynq.TaskInfo, error) {
	f.warmups++
	if f.err != nil {
		return nil, f.err
	}
	return &asynq.TaskInfo{ID: "task-2", Queue: QueueDefault}, nil
}

func mountJobsRouter(enqueuer Enqueuer) chi.Router {
	r := chi.NewRouter()
	NewHandler(nil, enqueuer, testLogger()).MountRoutes(r)
	return r
}

func TestRunOfferExpiryEnqueuesTask(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	router := mountJobsRouter(enqueuer)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/offer-expiry", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, enqueuer.expiries)
	assert.JSONEq(t, `{"task_id":"task-1","queue":"default"}`, rec.Body.String())
}

func TestRunAnalyticsWarmupEnqueuesTask(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	router := mountJobsRouter(enqueuer)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analytics-warmup", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, enqueuer.warmups)
}

func TestRunOfferExpiryReportsBrokerFailure(t *testing.T) {
	enqueuer := &fakeEnqueuer{err: errors.New("broker down")}
	router := mountJobsRouter(enqueuer)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/offer-expiry", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRunOfferExpiryWithoutEnqueuer(t *testing.T) {
	router := mountJobsRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/offer-expiry", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAnalyticsWarmupPropagatesError(t *testing.T) {
	warmer := &fakeWarmer{err: errors.New("warm failed")}
	job := NewAnalyticsWarmupJob(warmer, testLogger())

	task, err := NewAnalyticsWarmupTask(AnalyticsWarmupPayload{})
	require.NoError(t, err)

	assert.Error(t, job.Handle(context.Background(), task))
}
