package job

import (
	"context"
	"fmt"

	rds "lplens/internal/platform/redis"
)

type JobService struct{ redis *rds.Service }

func NewJobService(redis *rds.Service) *JobService { return &JobService{redis: redis} }

func (s *JobService) GetJobStatus(ctx context.Context, jobID string) (*Job, error) {
	var job Job
	if err := s.redis.CacheGet(ctx, key(jobID), &job); err != nil {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	return &job, nil
}

func (s *JobService) InitPending(ctx context.Context, jobID, url string) error {
	return s.store(ctx, jobID, url, StatusPending, JobResult{})
}

func (s *JobService) SetProcessing(ctx context.Context, jobID string) error {
	return s.store(ctx, jobID, "", StatusProcessing, JobResult{})
}

func (s *JobService) Complete(ctx context.Context, jobID string, status Status, result JobResult) error {
	return s.store(ctx, jobID, "", status, result)
}

func (s *JobService) store(ctx context.Context, jobID, url string, status Status, result JobResult) error {
	var job Job
	_ = s.redis.CacheGet(ctx, key(jobID), &job)
	job.JobID = jobID
	if url != "" {
		job.URL = url
	}
	job.Status = status
	if result != (JobResult{}) {
		job.Results = result
	}
	if err := s.redis.CacheSet(ctx, key(jobID), job, ttl(status)); err != nil {
		return err
	}
	// Status-change event for any poll-free listeners
	_ = s.redis.Client().Publish(ctx, key(jobID), string(status)).Err()
	return nil
}

func key(id string) string { return "job:" + id }

// Terminal jobs stick around for an hour, in-flight ones for ten minutes.
func ttl(s Status) int {
	if s == StatusCompleted || s == StatusFailed {
		return 3600
	}
	return 600
}
