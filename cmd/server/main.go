package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/config"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/infra"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/metrics"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/router"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title                      Midlands Price Checker API
// @version                    1.0
// @description                Product lookup, barcode overrides and stock-take for the shop floor scanners.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @securityDefinitions.apikey AdminPin
// @in                         header
// @name                       X-Admin-Pin
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	db, err := infra.NewDatabase(infra.DatabaseOptions{
		Driver:        cfg.DBDriver,
		DSN:           cfg.DatabaseURL,
		BusyTimeoutMS: cfg.BusyTimeoutMS,
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to open database")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	images, err := infra.NewImageStore(ctx, cfg.ImagesDir, cfg.ImageS3Bucket, cfg.AWSRegion)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open image store")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewCatalogMetrics(reg)

	mailer := infra.NewMailer(cfg)

	// Without Redis reorder e-mails are sent inline by the dispatcher.
	if rdb != nil {
		store := worker.NewRedisJobStore(rdb)
		worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, map[string]worker.JobHandler{
			worker.JobReorderEmail: worker.NewEmailWorker(mailer, store, m),
		})
		worker.StartRetryCron(ctx, worker.RetryCronConfig{Store: store, Mailer: mailer})
	} else {
		log.Info().Msg("REDIS_URL not set, reorder e-mails are sent inline")
	}

	r := router.New(cfg, db, rdb, router.Deps{
		Images:   images,
		Mailer:   mailer,
		Metrics:  m,
		Gatherer: reg,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Msgf("price checker backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server exited")
}

// setupLogger: pretty console output in development, JSON in production.
func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsProduction() {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
