package job

import (
	"lplens/internal/core/enrich"
	"lplens/internal/core/extract"
)

// Job is the Redis-backed state of one queued analysis.
type Job struct {
	JobID   string    `json:"job_id"`
	URL     string    `json:"url"`
	Status  Status    `json:"status"`
	Results JobResult `json:"results,omitempty"`
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// JobResult carries whichever stages the worker finished. A failed
// enrichment still leaves the extraction in place.
type JobResult struct {
	Analysis   *extract.Result   `json:"analysis,omitempty"`
	Enrichment *enrich.Record    `json:"enrichment,omitempty"`
	Debug      *enrich.DebugInfo `json:"debug,omitempty"`
	Error      string            `json:"error,omitempty"`
}
