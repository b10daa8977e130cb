package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"lplens/internal/config"
	"lplens/internal/core/analyze"
	"lplens/internal/core/enrich"
	"lplens/internal/core/fetch"
	"lplens/internal/core/job"
	"lplens/internal/core/price"
	"lplens/internal/logger"
	"lplens/internal/platform/eino"
	rds "lplens/internal/platform/redis"
	tasks "lplens/internal/platform/tasks"
	"lplens/internal/server"
	"lplens/internal/worker"
)

func main() {
	cfg := config.Load()
	log.Printf("[lplens] starting at %s (env=%s)\n", cfg.HTTPAddr, cfg.AppEnv)

	logr := logger.New("main")

	// Redis client
	redisSvc, err := rds.New(rds.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer redisSvc.Close()

	// Asynq client and server
	taskClient := tasks.New(redisSvc)
	asynqServer := asynq.NewServer(redisSvc.AsynqRedisOpt(), asynq.Config{
		Concurrency: 10,
		Queues:      map[string]int{"default": 1},
	})

	// Price scoring weights, optionally overridden from YAML
	weights, err := price.LoadWeights(cfg.PriceWeightsFile)
	if err != nil {
		logr.LogWarnf("price weights file %s unusable, using defaults: %v", cfg.PriceWeightsFile, err)
	}
	pricer := price.NewExtractor(weights)

	// Fetch backends
	fetchTimeout := time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	var render fetch.Acquirer
	if cfg.RenderEnabled {
		render = fetch.NewRenderBackend()
	}

	// Core services
	jobSvc := job.NewJobService(redisSvc)
	analyzeSvc := analyze.NewService(analyze.Config{
		Redis:    redisSvc,
		Primary:  fetch.NewService(fetchTimeout),
		Variant:  fetch.NewCollyBackend(fetchTimeout),
		Render:   render,
		Assessor: analyze.NewAssessor(pricer),
		CacheTTL: cfg.CacheTTLSeconds,
	})

	// Eino (LLM) service; enrichment stays disabled without an API key
	var enrichSvc *enrich.Service
	if cfg.GeminiAPIKey != "" {
		einoSvc, err := eino.NewService(eino.Config{
			Provider: cfg.LLMProvider,
			APIKey:   cfg.GeminiAPIKey,
			Model:    cfg.DefaultLLMModel,
		})
		if err != nil {
			log.Fatalf("failed to initialize Eino service: %v", err)
		}
		enrichSvc = enrich.NewService(einoSvc)
	} else {
		logr.LogWarnf("GEMINI_API_KEY not set, enrichment disabled")
	}

	analyzeHandler := analyze.NewHandler(analyzeSvc, jobSvc, taskClient, enrichSvc, cfg.TaskMaxRetries)

	// Worker mux
	mux := worker.NewMux()
	mux.HandleFunc(tasks.TaskTypeAnalyze, analyzeHandler.HandleAnalyzeTask)

	// Start worker
	_, workerCancel := context.WithCancel(context.Background())
	go func() {
		if err := asynqServer.Start(mux.Mux()); err != nil {
			log.Printf("[worker] stopped: %v\n", err)
		}
	}()

	// HTTP server
	app := fiber.New(fiber.Config{
		AppName: "LP Lens",
		JSONEncoder: func(v interface{}) ([]byte, error) {
			var buf bytes.Buffer
			encoder := json.NewEncoder(&buf)
			encoder.SetEscapeHTML(false)
			if err := encoder.Encode(v); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
	})

	deps := server.Dependencies{
		Analyze: analyzeHandler,
		Redis:   redisSvc,
	}
	healthHandler := server.RegisterRoutes(app, deps)

	// Mark application as ready after all services are initialized
	go func() {
		time.Sleep(5 * time.Second)
		healthHandler.SetReady()
	}()

	// Graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		logr.LogInfo("Shutting down...")
		workerCancel()
		asynqServer.Shutdown()
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Fatalf("server listen: %v", err)
	}
}
