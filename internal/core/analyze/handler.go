package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lplens/internal/core/enrich"
	"lplens/internal/core/fetch"
	"lplens/internal/core/job"
	"lplens/internal/logger"
	"lplens/internal/platform/tasks"
	"lplens/internal/utils/htmltext"
	"lplens/internal/utils/parser"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Handler struct {
	service    *Service
	jobs       *job.JobService
	tasks      *tasks.Client
	enricher   *enrich.Service
	maxRetries int
	log        *logger.Logger
}

func NewHandler(service *Service, jobs *job.JobService, tc *tasks.Client, enricher *enrich.Service, maxRetries int) *Handler {
	return &Handler{
		service:    service,
		jobs:       jobs,
		tasks:      tc,
		enricher:   enricher,
		maxRetries: maxRetries,
		log:        logger.New("AnalyzeHandler"),
	}
}

type extractParams struct {
	URL   string `form:"url"`
	Fresh bool   `form:"fresh"`
}

// HandleGetExtract handles GET /v1/extract: synchronous extraction with
// no queue and no LLM, for callers that just want the structured record.
func (h *Handler) HandleGetExtract(c *fiber.Ctx) error {
	var p extractParams
	if err := parser.ParseQuery(c, &p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid query"})
	}
	if p.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "url is required"})
	}

	result, err := h.service.Analyze(c.UserContext(), p.URL, p.Fresh)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "analysis": result})
}

type analyzeRequest struct {
	URL    string `json:"url"`
	Enrich bool   `json:"enrich"`
}

// HandleCreateAnalyze handles POST /v1/analyze: registers a pending job
// and queues the work. The response carries the job ID for polling.
func (h *Handler) HandleCreateAnalyze(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid request body"})
	}
	if req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "url is required"})
	}
	if _, err := fetch.ValidateURL(req.URL); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	jobID := uuid.New().String()
	if err := h.jobs.InitPending(c.UserContext(), jobID, req.URL); err != nil {
		h.log.LogErrorf("init job %s: %v", jobID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "failed to create job"})
	}

	task, err := tasks.NewAnalyzeTask(tasks.AnalyzePayload{JobID: jobID, URL: req.URL, Enrich: req.Enrich})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "failed to build task"})
	}
	if err := h.tasks.Enqueue(task, "default", h.maxRetries); err != nil {
		h.log.LogErrorf("enqueue job %s: %v", jobID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "failed to enqueue job"})
	}

	h.log.LogInfof("queued analysis job=%s url=%s enrich=%v", jobID, req.URL, req.Enrich)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"success": true, "job_id": jobID, "status": job.StatusPending})
}

// HandleGetAnalyze handles GET /v1/analyze/:jobId.
func (h *Handler) HandleGetAnalyze(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	j, err := h.jobs.GetJobStatus(c.UserContext(), jobID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "job": j})
}

// HandleAnalyzeTask is the asynq worker entry point. It runs the full
// pipeline for one job: extract, optionally enrich, store the outcome.
// An enrichment failure is recorded but does not fail the job.
func (h *Handler) HandleAnalyzeTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.AnalyzePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := h.jobs.SetProcessing(ctx, p.JobID); err != nil {
		h.log.LogWarnf("mark processing job=%s: %v", p.JobID, err)
	}

	result, body, err := h.service.AnalyzeWithBody(ctx, p.URL, false)
	if err != nil {
		_ = h.jobs.Complete(ctx, p.JobID, job.StatusFailed, job.JobResult{Error: err.Error()})
		// Validation failures never succeed on retry.
		if errors.Is(err, fetch.ErrInvalidURL) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	out := job.JobResult{Analysis: result}
	if p.Enrich && h.enricher != nil {
		record, debug, enrichErr := h.enricher.Analyze(ctx, result, htmltext.Markdown(body))
		out.Enrichment = record
		out.Debug = debug
		if enrichErr != nil {
			out.Error = fmt.Sprintf("enrichment: %v", enrichErr)
		}
	}

	if err := h.jobs.Complete(ctx, p.JobID, job.StatusCompleted, out); err != nil {
		return fmt.Errorf("store result job=%s: %w", p.JobID, err)
	}
	return nil
}

func (h *Handler) errorResponse(c *fiber.Ctx, err error) error {
	msg := err.Error()
	switch {
	case errors.Is(err, fetch.ErrInvalidURL):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": msg})
	case errors.Is(err, fetch.ErrFetchExhausted), errors.Is(err, ErrAllAttemptsFailed):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"success": false, "error": msg})
	case errors.Is(err, context.DeadlineExceeded), strings.Contains(msg, "timeout"):
		return c.Status(fiber.StatusRequestTimeout).JSON(fiber.Map{"success": false, "error": msg})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": msg})
	}
}
