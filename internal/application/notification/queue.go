package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/domain/shared"
)

// DispatchRecorder receives one observation per completed dispatch attempt.
// Implemented by the telemetry layer; a nil recorder disables recording.
type DispatchRecorder interface {
	RecordDispatch(ctx context.Context, channel notification.Channel, outcome string)
}

// Dispatch outcomes reported to the recorder
const (
	OutcomeSent        = "sent"
	OutcomeRetried     = "retried"
	OutcomeFailed      = "failed"
	OutcomeUnavailable = "unavailable"
)

// QueueConfig tunes the delivery queue's retry and concurrency behavior
type QueueConfig struct {
	MaxAttempts       int
	BaseBackoff       time.Duration
	MaxBackoff        time.Duration
	WorkersPerChannel int
	BufferSize        int
}

// DefaultQueueConfig returns the queue defaults used when config is absent
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		MaxAttempts:       3,
		BaseBackoff:       2 * time.Second,
		MaxBackoff:        time.Minute,
		WorkersPerChannel: 2,
		BufferSize:        256,
	}
}

func (c QueueConfig) withDefaults() QueueConfig {
	d := DefaultQueueConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = d.BaseBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = d.MaxBackoff
	}
	if c.WorkersPerChannel <= 0 {
		c.WorkersPerChannel = d.WorkersPerChannel
	}
	if c.BufferSize <= 0 {
		c.BufferSize = d.BufferSize
	}
	return c
}

// QueueStats is a point-in-time count of jobs by status
type QueueStats struct {
	Pending int `json:"pending"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Total   int `json:"total"`
}

// ChannelStats aggregates dispatch outcomes for one channel
type ChannelStats struct {
	Total  int `json:"total"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// DeliveryStats aggregates delivery outcomes across all channels. Only
// terminal jobs count toward the success rate; in-flight jobs are excluded.
type DeliveryStats struct {
	Total       int                     `json:"total"`
	Sent        int                     `json:"sent"`
	Failed      int                     `json:"failed"`
	SuccessRate float64                 `json:"success_rate"`
	ByChannel   map[string]ChannelStats `json:"by_channel"`
}

// DeliveryQueue fans order lifecycle notifications out to the user's
// enabled channels and drives each job through dispatch, retry with
// exponential backoff, and terminal success or failure. Each channel gets
// its own worker pool so a slow SMS gateway cannot starve email delivery.
type DeliveryQueue struct {
	adapters map[notification.Channel]notification.ChannelAdapter
	prefs    *PreferencesService
	cfg      QueueConfig
	recorder DispatchRecorder
	logger   *zap.Logger

	mu   sync.RWMutex
	jobs map[uuid.UUID]*notification.Job

	work    map[notification.Channel]chan uuid.UUID
	stop    chan struct{}
	wg      sync.WaitGroup
	started bool
	stopped bool
}

// NewDeliveryQueue creates a delivery queue over the given channel adapters
func NewDeliveryQueue(adapters []notification.ChannelAdapter, prefs *PreferencesService, cfg QueueConfig, logger *zap.Logger) *DeliveryQueue {
	cfg = cfg.withDefaults()
	q := &DeliveryQueue{
		adapters: make(map[notification.Channel]notification.ChannelAdapter, len(adapters)),
		prefs:    prefs,
		cfg:      cfg,
		logger:   logger,
		jobs:     make(map[uuid.UUID]*notification.Job),
		work:     make(map[notification.Channel]chan uuid.UUID),
		stop:     make(chan struct{}),
	}
	for _, adapter := range adapters {
		q.adapters[adapter.Channel()] = adapter
		q.work[adapter.Channel()] = make(chan uuid.UUID, cfg.BufferSize)
	}
	return q
}

// SetDispatchRecorder wires an observer for dispatch outcomes
func (q *DeliveryQueue) SetDispatchRecorder(recorder DispatchRecorder) {
	q.recorder = recorder
}

// Start launches the per-channel worker pools
func (q *DeliveryQueue) Start(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return shared.NewDomainError(shared.CodeInvalidState, "Delivery queue already started")
	}
	q.started = true

	for channel, adapter := range q.adapters {
		for i := 0; i < q.cfg.WorkersPerChannel; i++ {
			q.wg.Add(1)
			go q.worker(channel, adapter)
		}
	}
	q.logger.Info("delivery queue started",
		zap.Int("channels", len(q.adapters)),
		zap.Int("workers_per_channel", q.cfg.WorkersPerChannel))
	return nil
}

// Stop shuts the workers down and waits for in-flight dispatches to finish.
// Pending jobs stay in the queue; they are not marked failed.
func (q *DeliveryQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.stopped || !q.started {
		q.mu.Unlock()
		return nil
	}
	q.stopped = true
	q.mu.Unlock()

	close(q.stop)

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	q.logger.Info("delivery queue stopped")
	return nil
}

// Enqueue creates one delivery job per channel the user has enabled for the
// payload's event type and hands them to the workers. A user with everything
// disabled yields zero jobs and no error. A channel enabled in preferences
// but carrying no recipient address fails its job immediately.
func (q *DeliveryQueue) Enqueue(ctx context.Context, userID uuid.UUID, payload notification.Payload) ([]uuid.UUID, error) {
	prefs, err := q.prefs.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	channels := prefs.EnabledChannels(payload.EventType)
	jobIDs := make([]uuid.UUID, 0, len(channels))

	for _, channel := range channels {
		job, err := notification.NewJob(payload.OrderID, userID, channel, prefs.Recipient(channel), payload, q.cfg.MaxAttempts)
		if err != nil {
			return nil, err
		}

		q.mu.Lock()
		q.jobs[job.ID] = job
		if job.Recipient == "" {
			job.FailUnavailable("no recipient address configured for channel " + channel.String())
			q.mu.Unlock()
			q.record(ctx, channel, OutcomeUnavailable)
			q.logger.Warn("notification job failed, no recipient address",
				zap.String("job_id", job.ID.String()),
				zap.String("channel", channel.String()),
				zap.String("user_id", userID.String()))
			jobIDs = append(jobIDs, job.ID)
			continue
		}
		q.mu.Unlock()

		jobIDs = append(jobIDs, job.ID)
		q.submit(job.ID, channel)
	}
	return jobIDs, nil
}

// GetJob returns a snapshot of one job
func (q *DeliveryQueue) GetJob(id uuid.UUID) (notification.Job, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	job, ok := q.jobs[id]
	if !ok {
		return notification.Job{}, shared.ErrNotFound
	}
	return *job, nil
}

// JobsForOrder returns snapshots of every job created for an order
func (q *DeliveryQueue) JobsForOrder(orderID uuid.UUID) []notification.Job {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]notification.Job, 0)
	for _, job := range q.jobs {
		if job.OrderID == orderID {
			out = append(out, *job)
		}
	}
	return out
}

// GetQueueStats counts jobs by status
func (q *DeliveryQueue) GetQueueStats() QueueStats {
	q.mu.RLock()
	defer q.mu.RUnlock()
	var stats QueueStats
	for _, job := range q.jobs {
		switch job.Status {
		case notification.JobStatusPending:
			stats.Pending++
		case notification.JobStatusSent:
			stats.Sent++
		case notification.JobStatusFailed:
			stats.Failed++
		}
	}
	stats.Total = len(q.jobs)
	return stats
}

// GetDeliveryStats aggregates terminal outcomes per channel
func (q *DeliveryQueue) GetDeliveryStats() DeliveryStats {
	q.mu.RLock()
	defer q.mu.RUnlock()

	stats := DeliveryStats{ByChannel: make(map[string]ChannelStats)}
	for _, job := range q.jobs {
		// Pending and in-flight jobs have no outcome yet; only terminal
		// jobs enter the delivery totals.
		cs := stats.ByChannel[job.Channel.String()]
		switch job.Status {
		case notification.JobStatusSent:
			stats.Sent++
			cs.Sent++
			cs.Total++
		case notification.JobStatusFailed:
			stats.Failed++
			cs.Failed++
			cs.Total++
		default:
			continue
		}
		stats.ByChannel[job.Channel.String()] = cs
	}
	stats.Total = stats.Sent + stats.Failed
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Sent) / float64(stats.Total)
	}
	return stats
}

// submit hands a job to its channel's worker pool
func (q *DeliveryQueue) submit(jobID uuid.UUID, channel notification.Channel) {
	work, ok := q.work[channel]
	if !ok {
		q.failUnavailable(jobID, channel, "no adapter registered for channel "+channel.String())
		return
	}
	select {
	case work <- jobID:
	case <-q.stop:
	}
}

func (q *DeliveryQueue) failUnavailable(jobID uuid.UUID, channel notification.Channel, cause string) {
	q.mu.Lock()
	job, ok := q.jobs[jobID]
	if ok && !job.IsTerminal() {
		_ = job.FailUnavailable(cause)
	}
	q.mu.Unlock()
	q.record(context.Background(), channel, OutcomeUnavailable)
	q.logger.Warn("notification job failed, channel unavailable",
		zap.String("job_id", jobID.String()),
		zap.String("channel", channel.String()),
		zap.String("cause", cause))
}

func (q *DeliveryQueue) worker(channel notification.Channel, adapter notification.ChannelAdapter) {
	defer q.wg.Done()
	work := q.work[channel]
	for {
		select {
		case <-q.stop:
			return
		case jobID := <-work:
			q.dispatch(context.Background(), jobID, channel, adapter)
		}
	}
}

// dispatch performs one send attempt and applies the outcome to the job
func (q *DeliveryQueue) dispatch(ctx context.Context, jobID uuid.UUID, channel notification.Channel, adapter notification.ChannelAdapter) {
	q.mu.RLock()
	job, ok := q.jobs[jobID]
	if !ok || job.IsTerminal() {
		q.mu.RUnlock()
		return
	}
	recipient := job.Recipient
	payload := job.Payload
	q.mu.RUnlock()

	result := adapter.Send(ctx, recipient, payload)

	q.mu.Lock()
	if job.IsTerminal() {
		q.mu.Unlock()
		return
	}

	if result.Success {
		_ = job.MarkSent()
		q.mu.Unlock()
		q.record(ctx, channel, OutcomeSent)
		q.logger.Info("notification sent",
			zap.String("job_id", jobID.String()),
			zap.String("channel", channel.String()),
			zap.String("event_type", payload.EventType.String()))
		return
	}

	cause := "delivery failed"
	if result.Error != nil {
		cause = result.Error.Error()
	}

	// An unavailable channel cannot recover within the retry horizon, so the
	// retry budget is not spent on it.
	if shared.IsCode(result.Error, shared.CodeChannelUnavailable) {
		_ = job.FailUnavailable(cause)
		q.mu.Unlock()
		q.record(ctx, channel, OutcomeUnavailable)
		q.logger.Warn("notification channel unavailable",
			zap.String("job_id", jobID.String()),
			zap.String("channel", channel.String()),
			zap.String("cause", cause))
		return
	}

	_ = job.RecordFailure(cause, q.cfg.BaseBackoff, q.cfg.MaxBackoff)
	if job.Status == notification.JobStatusFailed {
		attempts := job.Attempts
		q.mu.Unlock()
		q.record(ctx, channel, OutcomeFailed)
		q.logger.Error("notification delivery failed permanently",
			zap.String("job_id", jobID.String()),
			zap.String("channel", channel.String()),
			zap.Int("attempts", attempts),
			zap.String("cause", cause))
		return
	}

	delay := time.Until(*job.NextAttemptAt)
	attempts := job.Attempts
	q.mu.Unlock()

	q.record(ctx, channel, OutcomeRetried)
	q.logger.Warn("notification dispatch failed, retry scheduled",
		zap.String("job_id", jobID.String()),
		zap.String("channel", channel.String()),
		zap.Int("attempts", attempts),
		zap.Duration("retry_in", delay),
		zap.String("cause", cause))

	time.AfterFunc(delay, func() {
		select {
		case <-q.stop:
		default:
			q.submit(jobID, channel)
		}
	})
}

func (q *DeliveryQueue) record(ctx context.Context, channel notification.Channel, outcome string) {
	if q.recorder != nil {
		q.recorder.RecordDispatch(ctx, channel, outcome)
	}
}
