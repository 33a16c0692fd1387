package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alimgiray/gmash/internal/handlers"
	"github.com/alimgiray/gmash/internal/middleware"
	"github.com/alimgiray/gmash/internal/services"
	"github.com/alimgiray/gmash/pkg/config"
	"github.com/alimgiray/gmash/pkg/logger"
	"github.com/gin-gonic/gin"
)

// NewMashService wires both provider mergers from the configuration
func NewMashService(cfg *config.Config) (*services.MashService, error) {
	githubClient, err := services.NewGitHubClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	fetchService := services.NewFetchService(&http.Client{Timeout: cfg.Fetch.Timeout})

	return services.NewMashService(
		services.NewGitHubMergeService(githubClient, cfg.Fetch.Concurrency),
		services.NewBitbucketMergeService(fetchService, cfg.Bitbucket.APIURL, cfg.Fetch.Concurrency),
	), nil
}

// NewRouter builds the gin engine with middleware and routes
func NewRouter(cfg *config.Config) (*gin.Engine, error) {
	switch cfg.Server.Mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	mashService, err := NewMashService(cfg)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger())

	handlers.SetupRoutes(router, mashService, services.NewExportService())
	return router, nil
}

// Run serves HTTP until SIGINT or SIGTERM and then shuts down gracefully
func Run(cfg *config.Config) error {
	router, err := NewRouter(cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
