package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AliceDavies2025/clincerta/api/handlers"
	"github.com/AliceDavies2025/clincerta/api/routes"
	appcfg "github.com/AliceDavies2025/clincerta/config"
	"github.com/AliceDavies2025/clincerta/internal/service/document"
	"github.com/AliceDavies2025/clincerta/pkg/logger"
)

func main() {
	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/app.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	policy, err := appcfg.LoadPolicy(os.Getenv("CLINCERTA_POLICY_FILE"))
	if err != nil {
		log.Fatal("Failed to load policy", logger.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	docService, err := document.GetService(ctx, policy, log)
	if err != nil {
		log.Fatal("Failed to get document service", logger.Error(err))
	}
	docService.StartBackground(ctx)
	defer docService.StopBackground()

	h := handlers.NewHandlers(docService, log)
	h.Analysis.WithGoldenThreadPolicy(docService.GoldenThreadPolicy())

	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h)

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		log.Info("Server starting on port 8080")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", logger.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", logger.Error(err))
	}
}
