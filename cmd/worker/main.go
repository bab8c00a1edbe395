package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	appcfg "github.com/AliceDavies2025/clincerta/config"
	"github.com/AliceDavies2025/clincerta/internal/service/document"
	"github.com/AliceDavies2025/clincerta/pkg/logger"
	"github.com/AliceDavies2025/clincerta/pkg/worker"
)

func main() {
	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/worker.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	policy, err := appcfg.LoadPolicy(os.Getenv("CLINCERTA_POLICY_FILE"))
	if err != nil {
		log.Error("Failed to load policy", logger.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	docService, err := document.GetService(ctx, policy, log)
	if err != nil {
		log.Error("Failed to create document service", logger.Error(err))
		os.Exit(1)
	}
	docService.StartBackground(ctx)
	defer docService.StopBackground()

	rc := appcfg.GetRedisConfig()
	workerCfg := &worker.Config{
		RedisAddr:   rc.Addr,
		RedisDB:     rc.DB,
		Concurrency: 10,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
	}

	documentWorker, err := worker.NewDocumentWorker(workerCfg, docService, log)
	if err != nil {
		log.Error("Failed to create document worker", logger.Error(err))
		os.Exit(1)
	}

	if err := documentWorker.Start(ctx); err != nil {
		log.Error("Failed to start worker", logger.Error(err))
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down worker...")
	documentWorker.Stop()
	log.Info("Worker stopped")
}
