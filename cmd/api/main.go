package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/cuistot/backend/config"
	"github.com/pageza/cuistot/backend/internal/database"
	"github.com/pageza/cuistot/backend/internal/logger"
	"github.com/pageza/cuistot/backend/internal/server"
	"github.com/pageza/cuistot/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.Environment == config.Development,
		File:        cfg.LogFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	db, err := database.Open(cfg, log)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(db, log); err != nil {
		return err
	}

	deps := server.Dependencies{
		DB:       db,
		Provider: service.NewLLMService(cfg.LLM, log),
	}

	if cfg.RedisURL != "" {
		rdb, err := database.NewRedisClient(cfg.RedisURL, log)
		if err != nil {
			return err
		}
		defer rdb.Close()
		deps.Redis = rdb
	} else {
		log.Warn("redis not configured: generation locks and rate limits are disabled")
	}

	if cfg.S3BucketName != "" {
		s3cfg, err := config.NewS3Config(context.Background(), cfg.S3BucketName, cfg.AWSRegion)
		if err != nil {
			return err
		}
		deps.Presigner = s3cfg
	}

	srv := server.New(cfg, deps, log)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		log.Info("received signal", zap.String("signal", sig.String()))
	}

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
