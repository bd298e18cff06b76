package tracking

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cv-analyzer/internal/analyzer"
	"cv-analyzer/pkg/postgres"
)

// Disabled is the recorder used when tracking is turned off or the tracking
// store is unreachable. Runs are simply not recorded.
type Disabled struct{}

func (Disabled) LogRun(context.Context, string, string, string, string, *analyzer.Result) string {
	return ""
}

// Recorder persists one row per completed analysis so runs can be compared
// across providers and prompt versions.
type Recorder struct {
	db         *postgres.DB
	experiment string
	log        *zap.Logger
}

const createRunsTable = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	run_id UUID PRIMARY KEY,
	experiment TEXT NOT NULL,
	job_id TEXT NOT NULL,
	cv_id TEXT NOT NULL,
	provider TEXT NOT NULL,
	prompt_version TEXT NOT NULL,
	model TEXT NOT NULL,
	params JSONB NOT NULL DEFAULT '{}',
	metrics JSONB NOT NULL DEFAULT '{}',
	artifact JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func NewRecorder(ctx context.Context, db *postgres.DB, experiment string, log *zap.Logger) (*Recorder, error) {
	if _, err := db.Exec(ctx, createRunsTable); err != nil {
		return nil, fmt.Errorf("ensure analysis_runs table: %w", err)
	}
	return &Recorder{db: db, experiment: experiment, log: log}, nil
}

// LogRun records one analysis run. Failures are logged and swallowed so a
// broken tracking store never fails the job that produced the result.
func (r *Recorder) LogRun(ctx context.Context, jobID, cvID, provider, promptVersion string, result *analyzer.Result) string {
	runID := uuid.NewString()

	params := map[string]any{
		"job_id":         jobID,
		"cv_id":          cvID,
		"provider":       provider,
		"prompt_version": promptVersion,
		"model":          result.Provider.Model,
	}

	metrics := map[string]any{
		"tokens_used": result.Provider.TokensUsed,
		"latency_ms":  result.Provider.LatencyMS,
	}
	if score, ok := result.Analysis["overall_score"]; ok {
		metrics["overall_score"] = score
	}
	if breakdown, ok := result.Analysis["score_breakdown"].(map[string]any); ok {
		for key, value := range breakdown {
			metrics["score_"+key] = value
		}
	}

	if err := r.insert(ctx, runID, jobID, cvID, provider, promptVersion, result, params, metrics); err != nil {
		r.log.Error("run logging failed",
			zap.String("job_id", jobID),
			zap.Error(err))
		return ""
	}

	r.log.Info("run logged",
		zap.String("job_id", jobID),
		zap.String("run_id", runID))
	return runID
}

func (r *Recorder) insert(ctx context.Context, runID, jobID, cvID, provider, promptVersion string, result *analyzer.Result, params, metrics map[string]any) error {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return err
	}
	metricsJSON, err := json.Marshal(metrics)
	if err != nil {
		return err
	}
	artifactJSON, err := json.Marshal(result)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO analysis_runs
			(run_id, experiment, job_id, cv_id, provider, prompt_version, model, params, metrics, artifact)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		runID, r.experiment, jobID, cvID, provider, promptVersion,
		result.Provider.Model, paramsJSON, metricsJSON, artifactJSON)
	return err
}
