package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cv-analyzer/config"
	"cv-analyzer/internal/analyzer"
	"cv-analyzer/internal/jobs"
	"cv-analyzer/internal/metrics"
	"cv-analyzer/internal/storage"
	"cv-analyzer/internal/tracking"
)

// maxErrorLen caps the error text persisted on a failed job so a dumped
// response body cannot bloat the job record.
const maxErrorLen = 1024

// RunRecorder logs one experiment run per analysis. Implementations must be
// non-fatal: a failed write returns an empty run id, never an error.
type RunRecorder interface {
	LogRun(ctx context.Context, jobID, cvID, provider, promptVersion string, result *analyzer.Result) string
}

// Worker consumes analysis jobs from the queue and drives each one through
// download, analysis, tracking and status updates.
type Worker struct {
	tracker  *jobs.Tracker
	queue    *jobs.Queue
	store    storage.Store
	analyzer *analyzer.Analyzer
	recorder RunRecorder
	cfg      *config.WorkerConfig
	log      *zap.Logger
}

func New(
	tracker *jobs.Tracker,
	queue *jobs.Queue,
	store storage.Store,
	an *analyzer.Analyzer,
	recorder RunRecorder,
	cfg *config.WorkerConfig,
	log *zap.Logger,
) *Worker {
	if recorder == nil {
		recorder = tracking.Disabled{}
	}
	return &Worker{
		tracker:  tracker,
		queue:    queue,
		store:    store,
		analyzer: an,
		recorder: recorder,
		cfg:      cfg,
		log:      log,
	}
}

// Run polls the queue until ctx is cancelled. Per-job failures and transient
// queue errors never stop the loop.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("worker starting", zap.String("queue", w.queue.Name()))

	for {
		desc, err := w.queue.Dequeue(ctx, w.cfg.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				w.log.Info("worker stopping")
				return nil
			}
			w.log.Error("dequeue failed", zap.Error(err))
			select {
			case <-time.After(w.cfg.ErrorBackoff):
			case <-ctx.Done():
				w.log.Info("worker stopping")
				return nil
			}
			continue
		}
		if desc == nil {
			if ctx.Err() != nil {
				w.log.Info("worker stopping")
				return nil
			}
			continue
		}

		w.Process(ctx, desc)
	}
}

// Process runs one job to a terminal state. Errors are recorded on the job,
// not returned, so the calling loop keeps going.
func (w *Worker) Process(ctx context.Context, desc *jobs.Descriptor) {
	log := w.log.With(
		zap.String("job_id", desc.JobID),
		zap.String("cv_id", desc.CVID),
		zap.String("provider", desc.Provider))

	start := time.Now()
	jobCtx, cancel := context.WithTimeout(ctx, w.cfg.RequestTimeout)
	defer cancel()

	if err := w.runJob(jobCtx, desc, log); err != nil {
		w.fail(desc.JobID, err, log)
		metrics.JobsProcessedTotal.WithLabelValues("failed", desc.Provider).Inc()
		metrics.JobProcessingDuration.WithLabelValues(desc.Provider).Observe(time.Since(start).Seconds())
		return
	}
	metrics.JobsProcessedTotal.WithLabelValues("success", desc.Provider).Inc()
	metrics.JobProcessingDuration.WithLabelValues(desc.Provider).Observe(time.Since(start).Seconds())
	log.Info("job completed", zap.Duration("duration", time.Since(start)))
}

// runJob contains any panic from the pipeline or its collaborators, so a
// single poisoned document can never take down the consumer loop.
func (w *Worker) runJob(ctx context.Context, desc *jobs.Descriptor, log *zap.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing job: %v", r)
		}
	}()
	return w.process(ctx, desc, log)
}

func (w *Worker) process(ctx context.Context, desc *jobs.Descriptor, log *zap.Logger) error {
	if err := w.tracker.UpdateStatus(ctx, desc.JobID, jobs.StatusProcessing, ""); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	if err := w.tracker.AppendTimeline(ctx, desc.JobID, "processing_started", "Started processing CV", nil); err != nil {
		return err
	}

	log.Info("downloading cv")
	obj, err := w.store.Get(ctx, desc.CVID)
	if err != nil {
		return fmt.Errorf("download cv: %w", err)
	}
	if err := w.tracker.AppendTimeline(ctx, desc.JobID, "cv_downloaded", "Downloaded CV from storage", nil); err != nil {
		return err
	}

	result, err := w.analyzer.Analyze(ctx, obj.Data, desc.Filename(), desc.Provider, desc.PromptVersion)
	if err != nil {
		return err
	}
	if err := w.tracker.AppendTimeline(ctx, desc.JobID, "analysis_complete", "AI analysis completed", map[string]any{
		"provider": desc.Provider,
		"tokens":   result.Provider.TokensUsed,
	}); err != nil {
		return err
	}

	runID := w.recorder.LogRun(ctx, desc.JobID, desc.CVID, desc.Provider, desc.PromptVersion, result)
	var meta map[string]any
	if runID != "" {
		meta = map[string]any{"run_id": runID}
	}
	if err := w.tracker.AppendTimeline(ctx, desc.JobID, "run_logged", "Logged analysis run", meta); err != nil {
		return err
	}

	if err := w.tracker.UpdateStatus(ctx, desc.JobID, jobs.StatusCompleted, ""); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return w.tracker.AppendTimeline(ctx, desc.JobID, "job_completed", "Job completed successfully", nil)
}

// fail records the terminal FAILED state. Uses a fresh context so a job that
// failed on deadline can still be marked.
func (w *Worker) fail(jobID string, cause error, log *zap.Logger) {
	log.Error("job failed", zap.Error(cause))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := truncateError(cause)
	if err := w.tracker.UpdateStatus(ctx, jobID, jobs.StatusFailed, msg); err != nil {
		log.Error("could not mark job failed", zap.Error(err))
	}
	if err := w.tracker.AppendTimeline(ctx, jobID, "job_failed", "Job failed: "+msg, nil); err != nil {
		log.Error("could not append failure event", zap.Error(err))
	}
}

func truncateError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) > maxErrorLen {
		return msg[:maxErrorLen]
	}
	return msg
}
