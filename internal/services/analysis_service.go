package services

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cv-analyzer/internal/jobs"
	apperrors "cv-analyzer/pkg/errors"
)

// AnalyzeResult is returned when an analysis job is accepted.
type AnalyzeResult struct {
	JobID     string      `json:"job_id"`
	CVID      string      `json:"cv_id"`
	Status    jobs.Status `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// JobStatusResult joins a job record with its timeline.
type JobStatusResult struct {
	JobID     string               `json:"job_id"`
	CVID      string               `json:"cv_id"`
	Status    jobs.Status          `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	Timeline  []jobs.TimelineEvent `json:"timeline"`
	Error     string               `json:"error,omitempty"`
}

// AnalysisService accepts analysis requests and exposes job status.
type AnalysisService struct {
	cvs             *CVService
	tracker         *jobs.Tracker
	queue           *jobs.Queue
	defaultProvider string
	log             *zap.Logger
}

func NewAnalysisService(cvs *CVService, tracker *jobs.Tracker, queue *jobs.Queue, defaultProvider string, log *zap.Logger) *AnalysisService {
	return &AnalysisService{
		cvs:             cvs,
		tracker:         tracker,
		queue:           queue,
		defaultProvider: defaultProvider,
		log:             log,
	}
}

// Request creates a pending job for the CV and enqueues it. The record is
// written before the enqueue so a poller never sees an unknown job id; an
// enqueue failure after that leaves a pending record behind, which the
// record TTL eventually clears.
func (s *AnalysisService) Request(ctx context.Context, cvID, provider, promptVersion string) (*AnalyzeResult, error) {
	obj, err := s.cvs.Exists(ctx, cvID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewError(apperrors.ErrNotFound.Code,
				"CV not found", http.StatusNotFound)
		}
		return nil, err
	}

	if provider == "" {
		provider = s.defaultProvider
	}
	if promptVersion == "" {
		promptVersion = "v1"
	}

	jobID := uuid.NewString()
	if err := s.tracker.Create(ctx, jobID, cvID, provider, promptVersion); err != nil {
		return nil, err
	}

	// Prefer the filename declared at upload time; older objects stored
	// without one fall back to an extension derived from the content type.
	filename := obj.Filename
	if filename == "" {
		filename = cvID + extensionForContentType(obj.ContentType)
	}

	desc := jobs.Descriptor{
		JobID:         jobID,
		CVID:          cvID,
		Provider:      provider,
		PromptVersion: promptVersion,
		Metadata: map[string]any{
			"filename": filename,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.queue.Enqueue(ctx, desc); err != nil {
		return nil, err
	}

	s.log.Info("analysis triggered",
		zap.String("cv_id", cvID),
		zap.String("job_id", jobID),
		zap.String("provider", provider))

	return &AnalyzeResult{
		JobID:     jobID,
		CVID:      cvID,
		Status:    jobs.StatusPending,
		CreatedAt: desc.CreatedAt,
	}, nil
}

// Status returns the job record joined with its timeline.
func (s *AnalysisService) Status(ctx context.Context, jobID string) (*JobStatusResult, error) {
	job, err := s.tracker.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	timeline, err := s.tracker.GetTimeline(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return &JobStatusResult{
		JobID:     job.ID,
		CVID:      job.CVID,
		Status:    job.Status,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
		Timeline:  timeline,
		Error:     job.Error,
	}, nil
}

// extensionForContentType maps a stored content type back to a filename
// extension so the worker can pick the right parser.
func extensionForContentType(contentType string) string {
	switch contentType {
	case "application/pdf":
		return ".pdf"
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return ".docx"
	case "text/plain":
		return ".txt"
	default:
		return ".pdf"
	}
}
