package worker

import (
	"context"
	"time"

	"lplens/internal/logger"

	"github.com/hibiken/asynq"
)

// Mux wraps asynq's ServeMux and logs task lifecycle around each handler.
type Mux struct {
	mux *asynq.ServeMux
	log *logger.Logger
}

func NewMux() *Mux { return &Mux{mux: asynq.NewServeMux(), log: logger.New("Worker")} }

func (m *Mux) HandleFunc(t string, h func(ctx context.Context, task *asynq.Task) error) {
	m.mux.HandleFunc(t, func(ctx context.Context, task *asynq.Task) error {
		start := time.Now()
		m.log.LogDebugf("task start type=%s", task.Type())
		err := h(ctx, task)
		if err != nil {
			m.log.LogErrorf("task failed type=%s after %v: %v", task.Type(), time.Since(start), err)
			return err
		}
		m.log.LogSuccessf("task done type=%s in %v", task.Type(), time.Since(start))
		return nil
	})
}

func (m *Mux) Mux() *asynq.ServeMux { return m.mux }
