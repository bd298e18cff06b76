package jobs

import "time"

// Status is the lifecycle state of an analysis job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// statusRank orders statuses along the transition graph. Transitions must
// strictly increase the rank, which makes completed/failed terminal and
// forbids moving a job backward.
func statusRank(s Status) int {
	switch s {
	case StatusPending:
		return 0
	case StatusProcessing:
		return 1
	case StatusCompleted, StatusFailed:
		return 2
	default:
		return -1
	}
}

// Terminal reports whether no further transitions may leave s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	return statusRank(s) >= 0
}

// Job is the durable record for one analysis request.
type Job struct {
	ID            string    `json:"job_id"`
	CVID          string    `json:"cv_id"`
	Provider      string    `json:"provider"`
	PromptVersion string    `json:"prompt_version,omitempty"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Error         string    `json:"error,omitempty"`
}

// TimelineEvent is one append-only audit entry in a job's timeline.
type TimelineEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Event     string         `json:"event"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Descriptor is the message passed from producer to consumer through the
// queue. It is a routing pointer only; the job store stays the ground truth
// for everything else.
type Descriptor struct {
	JobID         string         `json:"job_id"`
	CVID          string         `json:"cv_id"`
	Provider      string         `json:"provider"`
	PromptVersion string         `json:"prompt_version,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Filename returns the original upload filename carried in the descriptor
// metadata. Old producers did not record it, so fall back to a pdf name.
func (d *Descriptor) Filename() string {
	if name, ok := d.Metadata["filename"].(string); ok && name != "" {
		return name
	}
	return d.CVID + ".pdf"
}
