package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/finflowhq/finflow/internal/config"
	"github.com/finflowhq/finflow/internal/domain"
	"github.com/finflowhq/finflow/internal/logger"
	"github.com/finflowhq/finflow/internal/repository"
	"github.com/finflowhq/finflow/internal/service"
	"github.com/finflowhq/finflow/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
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
		ServiceName: "finflow-worker",
	})
	logger.SetDefaultLogger(log)
	defer logger.Sync()

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	objectStorage, err := storage.NewS3Storage(&storage.S3Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	jobs := repository.NewJobRepository(db)
	uploads := repository.NewUploadRepository(db)
	transactions := repository.NewTransactionRepository(db)

	ingest := service.NewIngestService(uploads, transactions, objectStorage, log)

	worker := service.NewWorker(jobs, map[domain.JobType]service.JobHandler{
		domain.JobTypeIngestUpload: ingest,
	}, cfg.Worker.ID, cfg.Worker.PollInterval(), log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := objectStorage.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("failed to ensure storage bucket: %w", err)
	}

	worker.Run(ctx)
	return nil
}
