package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finflowhq/finflow/internal/api"
	"github.com/finflowhq/finflow/internal/api/middleware"
	"github.com/finflowhq/finflow/internal/config"
	"github.com/finflowhq/finflow/internal/feed"
	"github.com/finflowhq/finflow/internal/logger"
	"github.com/finflowhq/finflow/internal/repository"
	"github.com/finflowhq/finflow/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(&logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		File:        cfg.Logging.File,
		ServiceName: "finflow-api",
	})
	logger.SetDefaultLogger(log)
	defer logger.Sync()

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	jobs := repository.NewJobRepository(db)
	uploads := repository.NewUploadRepository(db)
	transactions := repository.NewTransactionRepository(db)

	feedClient := feed.NewClient(&feed.Config{
		BaseURL:  cfg.Plaid.BaseURL,
		ClientID: cfg.Plaid.ClientID,
		Secret:   cfg.Plaid.Secret,
		PageSize: cfg.Plaid.PageSize,
	})
	feedImport := service.NewFeedImportService(feedClient, transactions, log)

	router := api.SetupRouter(jobs, uploads, feedImport, cfg.Server.Mode, middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Server.Port).Info("API server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
