package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartcity/evsite/internal/delivery/http"
	"github.com/smartcity/evsite/internal/domain"
	"github.com/smartcity/evsite/internal/repository/kafka"
	"github.com/smartcity/evsite/internal/repository/postgres"
	"github.com/smartcity/evsite/internal/service"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the site analysis HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L()

		registry := loadRegistry(ctx, cfg)

		// Database connection
		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		repo, closeRepo := openPredictionLog(dbCtx, cfg.Database.URL)
		defer closeRepo()

		recorders := []domain.PredictionRecorder{repo}
		if cfg.Kafka.Enabled {
			publisher, err := kafka.Dial(cfg.Kafka.Brokers, cfg.Kafka.Topic)
			if err != nil {
				log.Warn("kafka unavailable, prediction events disabled", zap.Error(err))
			} else {
				defer publisher.Close()
				recorders = append(recorders, publisher)
			}
		}

		// Dependency Injection: Services
		predictionSvc := service.NewPredictionService(registry, cfg.Batch.MaxConcurrency)
		recordingSvc := service.NewRecordingService(5*time.Second, recorders...)

		app := http.NewApp(http.AppConfig{
			ReadTimeout:      time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
			WriteTimeout:     time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
			CORSAllowOrigins: cfg.Server.CORSAllowOrigins,
			RequestLogging:   true,
		})
		http.SetupRoutes(app, http.NewHandler(predictionSvc, recordingSvc, repo, cfg.Batch.MaxLocations))

		port := cfg.Server.Port
		if servePort > 0 {
			port = servePort
		}

		// Graceful shutdown
		go func() {
			log.Info("server starting", zap.Int("port", port))
			if err := app.Listen(fmt.Sprintf(":%d", port)); err != nil {
				log.Fatal("server error", zap.Error(err))
			}
		}()

		// Wait for interrupt signal
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Info("shutting down server")
		if err := app.ShutdownWithTimeout(time.Duration(cfg.Server.ShutdownTimeoutSecs) * time.Second); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
		recordingSvc.WaitBackground()
		log.Info("server exited gracefully")
		return nil
	},
}

// openPredictionLog connects to PostgreSQL. An empty URL, a bad URL or a
// database that does not answer a ping leaves the in-memory log in place.
func openPredictionLog(ctx context.Context, url string) (domain.PredictionRepository, func()) {
	log := zap.L()
	if url == "" {
		return postgres.NewMockRepository(), func() {}
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		log.Warn("could not connect to database, prediction log disabled", zap.Error(err))
		return postgres.NewMockRepository(), func() {}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		log.Warn("database not reachable, prediction log disabled", zap.Error(err))
		return postgres.NewMockRepository(), func() {}
	}

	log.Info("connected to PostgreSQL")
	return postgres.NewPostgresRepository(pool), pool.Close
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}
