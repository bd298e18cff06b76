package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "cv-analyzer/pkg/errors"
	"cv-analyzer/pkg/memorydb"
)

const (
	jobKeyPrefix      = "job:"
	timelineKeyPrefix = "timeline:"

	// recordTTL bounds how long job records and timelines are retained.
	// Refreshed on every write.
	recordTTL = 7 * 24 * time.Hour
)

// Tracker persists job records and their timelines in Redis.
type Tracker struct {
	rdb *memorydb.RedisClient
	log *zap.Logger
}

func NewTracker(rdb *memorydb.RedisClient, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{rdb: rdb, log: log}
}

func jobKey(jobID string) string      { return jobKeyPrefix + jobID }
func timelineKey(jobID string) string { return timelineKeyPrefix + jobID }

// Create writes a fresh pending job record and its job_created timeline
// event. Returns ErrAlreadyExists when a record with the same id is present.
func (t *Tracker) Create(ctx context.Context, jobID, cvID, provider, promptVersion string) error {
	now := time.Now().UTC()
	job := Job{
		ID:            jobID,
		CVID:          cvID,
		Provider:      provider,
		PromptVersion: promptVersion,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job record: %w", err)
	}

	ok, err := t.rdb.SetNX(ctx, jobKey(jobID), payload, recordTTL)
	if err != nil {
		return apperrors.WrapError(err, apperrors.ErrDependency.Code, "create job record", http.StatusBadGateway)
	}
	if !ok {
		return apperrors.WrapError(nil, apperrors.ErrAlreadyExists.Code,
			fmt.Sprintf("job %s already exists", jobID), http.StatusConflict)
	}

	if err := t.AppendTimeline(ctx, jobID, "job_created", "Job created", nil); err != nil {
		return err
	}

	t.log.Info("job created", zap.String("job_id", jobID), zap.String("cv_id", cvID))
	return nil
}

// UpdateStatus moves a job to status, refusing transitions that would move it
// backward along the lifecycle. An empty errMsg keeps any previous error.
func (t *Tracker) UpdateStatus(ctx context.Context, jobID string, status Status, errMsg string) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}

	job, err := t.Get(ctx, jobID)
	if err != nil {
		return err
	}

	if statusRank(status) <= statusRank(job.Status) {
		return apperrors.NewError("INVALID_TRANSITION",
			fmt.Sprintf("job %s cannot transition from %s to %s", jobID, job.Status, status),
			http.StatusConflict)
	}

	job.Status = status
	job.UpdatedAt = time.Now().UTC()
	if errMsg != "" {
		job.Error = errMsg
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job record: %w", err)
	}
	if err := t.rdb.Set(ctx, jobKey(jobID), payload, recordTTL); err != nil {
		return apperrors.WrapError(err, apperrors.ErrDependency.Code, "update job record", http.StatusBadGateway)
	}

	t.log.Info("job status updated", zap.String("job_id", jobID), zap.String("status", string(status)))
	return nil
}

// Get returns the job record, or a NOT_FOUND error when absent or expired.
func (t *Tracker) Get(ctx context.Context, jobID string) (*Job, error) {
	raw, err := t.rdb.Get(ctx, jobKey(jobID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.WrapError(nil, apperrors.ErrNotFound.Code,
				fmt.Sprintf("job %s not found", jobID), http.StatusNotFound)
		}
		return nil, apperrors.WrapError(err, apperrors.ErrDependency.Code, "get job record", http.StatusBadGateway)
	}

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, fmt.Errorf("unmarshal job record: %w", err)
	}
	return &job, nil
}

// AppendTimeline appends one immutable event to the job's timeline. Failures
// always propagate to the caller; silently dropping timeline entries would
// hide pipeline failures.
func (t *Tracker) AppendTimeline(ctx context.Context, jobID, event, message string, metadata map[string]any) error {
	entry := TimelineEvent{
		Timestamp: time.Now().UTC(),
		Event:     event,
		Message:   message,
		Metadata:  metadata,
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal timeline event: %w", err)
	}

	key := timelineKey(jobID)
	if err := t.rdb.RPush(ctx, key, payload); err != nil {
		return apperrors.WrapError(err, apperrors.ErrDependency.Code, "append timeline event", http.StatusBadGateway)
	}
	if err := t.rdb.Expire(ctx, key, recordTTL); err != nil {
		return apperrors.WrapError(err, apperrors.ErrDependency.Code, "refresh timeline ttl", http.StatusBadGateway)
	}

	t.log.Debug("timeline event appended", zap.String("job_id", jobID), zap.String("event", event))
	return nil
}

// GetTimeline returns the job's events oldest first. A job with no events
// yields an empty slice; a missing job yields NOT_FOUND.
func (t *Tracker) GetTimeline(ctx context.Context, jobID string) ([]TimelineEvent, error) {
	exists, err := t.rdb.Exists(ctx, jobKey(jobID))
	if err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrDependency.Code, "check job record", http.StatusBadGateway)
	}
	if !exists {
		return nil, apperrors.WrapError(nil, apperrors.ErrNotFound.Code,
			fmt.Sprintf("job %s not found", jobID), http.StatusNotFound)
	}

	raws, err := t.rdb.LRange(ctx, timelineKey(jobID), 0, -1)
	if err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrDependency.Code, "read timeline", http.StatusBadGateway)
	}

	events := make([]TimelineEvent, 0, len(raws))
	for _, raw := range raws {
		var ev TimelineEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			return nil, fmt.Errorf("unmarshal timeline event: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}
