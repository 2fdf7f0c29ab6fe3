package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/redis/go-redis/v9"

	"github.com/ptl2504/text-vending/internal/adapter/classifier"
	"github.com/ptl2504/text-vending/internal/adapter/handler"
	"github.com/ptl2504/text-vending/internal/adapter/storage"
	"github.com/ptl2504/text-vending/internal/config"
	"github.com/ptl2504/text-vending/internal/core/service"
	"github.com/ptl2504/text-vending/internal/logger"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL holds the catalog, the account, and the audit log.
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect mysql")
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping mysql")
	}
	log.Info().Msg("connected to mysql")

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	log.Info().Msg("connected to redis")

	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb, cfg.LabelCacheTTL)

	// Provision tables and seed rows; both steps are no-ops on a
	// populated store.
	if err := mysqlAdapter.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create schema")
	}
	if err := mysqlAdapter.Seed(ctx, cfg.AccountName, cfg.AccountBalance); err != nil {
		log.Fatal().Err(err).Msg("failed to seed stores")
	}
	log.Info().Str("account", cfg.AccountName).Msg("stores provisioned")

	openaiClient := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
	oracle := classifier.NewOpenAIClassifier(openaiClient, cfg.OpenAIModel, redisAdapter, log)

	vendService := service.NewVendService(
		oracle, mysqlAdapter, mysqlAdapter, mysqlAdapter, cfg.AccountName, log,
	)

	httpHandler := handler.NewHTTPHandler(vendService)
	mux := http.NewServeMux()
	mux.HandleFunc("/health", httpHandler.HealthCheck)
	mux.HandleFunc("/extract", httpHandler.Extract)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info().Msg("HTTP server stopped")

	rdb.Close()
	db.Close()
	log.Info().Msg("connections closed")
}
