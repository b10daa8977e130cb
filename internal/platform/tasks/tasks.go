package tasks

import (
	"encoding/json"

	"lplens/internal/platform/redis"

	"github.com/hibiken/asynq"
)

const (
	TaskTypeAnalyze = "analyze:task"
)

// AnalyzePayload is the wire format of a queued landing-page analysis.
type AnalyzePayload struct {
	JobID  string `json:"job_id"`
	URL    string `json:"url"`
	Enrich bool   `json:"enrich"`
}

type Client struct{ c *asynq.Client }

func New(r *redis.Service) *Client { return &Client{c: asynq.NewClient(r.AsynqRedisOpt())} }

func (t *Client) Enqueue(task *asynq.Task, queue string, maxRetries int) error {
	_, err := t.c.Enqueue(task, asynq.Queue(queue), asynq.MaxRetry(maxRetries))
	return err
}

// NewAnalyzeTask builds an asynq task carrying an AnalyzePayload.
func NewAnalyzeTask(p AnalyzePayload) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAnalyze, b), nil
}
