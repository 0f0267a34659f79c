package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// JobStatus is the state of a queued delivery job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusSent    JobStatus = "SENT"
	JobStatusFailed  JobStatus = "FAILED"
)

// IsTerminal reports whether no further transition is defined for the status
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusSent || s == JobStatusFailed
}

// Job is one queued attempt stream to deliver a notification through one
// channel for one order event. It is created by the delivery queue and mutated
// only by its dispatch loop; once terminal it never changes again.
type Job struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	UserID        uuid.UUID
	Channel       Channel
	Recipient     string
	Payload       Payload
	Status        JobStatus
	Attempts      int
	MaxAttempts   int
	LastError     string
	NextAttemptAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time
}

// NewJob creates a pending delivery job with zero attempts
func NewJob(orderID, userID uuid.UUID, channel Channel, recipient string, payload Payload, maxAttempts int) (*Job, error) {
	if !channel.IsValid() {
		return nil, shared.NewValidationError("Unknown delivery channel")
	}
	if maxAttempts < 1 {
		return nil, shared.NewValidationError("Max attempts must be at least 1")
	}
	now := time.Now()
	return &Job{
		ID:          uuid.New(),
		OrderID:     orderID,
		UserID:      userID,
		Channel:     channel,
		Recipient:   recipient,
		Payload:     payload,
		Status:      JobStatusPending,
		Attempts:    0,
		MaxAttempts: maxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsTerminal reports whether the job reached a final state
func (j *Job) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// MarkSent records a successful dispatch. Terminal jobs are immutable.
func (j *Job) MarkSent() error {
	if j.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidState, "Job already in a terminal state")
	}
	now := time.Now()
	j.Attempts++
	j.Status = JobStatusSent
	j.LastError = ""
	j.NextAttemptAt = nil
	j.UpdatedAt = now
	j.CompletedAt = &now
	return nil
}

// RecordFailure counts a failed dispatch attempt. If retry budget remains the
// job stays pending with an exponential backoff delay (base doubled per
// attempt, capped at maxDelay); otherwise it becomes failed and immutable.
func (j *Job) RecordFailure(cause string, baseDelay, maxDelay time.Duration) error {
	if j.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidState, "Job already in a terminal state")
	}
	now := time.Now()
	j.Attempts++
	j.LastError = cause
	j.UpdatedAt = now

	if j.Attempts >= j.MaxAttempts {
		j.Status = JobStatusFailed
		j.NextAttemptAt = nil
		j.CompletedAt = &now
		return nil
	}

	delay := baseDelay << (j.Attempts - 1)
	if maxDelay > 0 && delay > maxDelay {
		delay = maxDelay
	}
	next := now.Add(delay)
	j.NextAttemptAt = &next
	return nil
}

// FailUnavailable fails the job immediately without consuming retry budget
// beyond this single attempt; used when the channel has no credentials
// configured and retrying cannot help.
func (j *Job) FailUnavailable(cause string) error {
	if j.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidState, "Job already in a terminal state")
	}
	now := time.Now()
	j.Attempts++
	j.Status = JobStatusFailed
	j.LastError = cause
	j.NextAttemptAt = nil
	j.UpdatedAt = now
	j.CompletedAt = &now
	return nil
}

// RetryDue reports whether the job is pending and its backoff delay elapsed
func (j *Job) RetryDue(now time.Time) bool {
	if j.Status != JobStatusPending {
		return false
	}
	if j.NextAttemptAt == nil {
		return true
	}
	return !now.Before(*j.NextAttemptAt)
}
