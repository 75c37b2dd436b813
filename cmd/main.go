package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	txcmd "github.com/ledgerbook/ledger/internal/command"
	"github.com/ledgerbook/ledger/internal/config"
	"github.com/ledgerbook/ledger/internal/handler"
	txqry "github.com/ledgerbook/ledger/internal/query"
	"github.com/ledgerbook/ledger/internal/repository"
	"github.com/ledgerbook/ledger/internal/router"
	"github.com/ledgerbook/ledger/shared/events"
	redisClient "github.com/ledgerbook/ledger/shared/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// A missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	// Database connection
	db, err := repository.Open(ctx, cfg.DatabaseClient, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("client", cfg.DatabaseClient).Msg("Failed to open database")
	}
	defer db.Close()

	// Redis connection, optional
	var redis *goredis.Client
	if cfg.RedisAddr != "" {
		client, err := redisClient.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
		}
		defer client.Close()
		redis = client.Client
	}

	// Initialize event publisher
	publisher, err := newPublisher(cfg, redis)
	if err != nil {
		log.Fatal().Err(err).Str("broker", cfg.EventBroker).Msg("Failed to create event publisher")
	}
	defer publisher.Close()

	// CQRS: write repo, read repo with optional view cache
	writeRepo := repository.NewTransactionWriteRepository(db)
	readRepo := repository.NewTransactionReadRepository(db, redis, cfg.CacheTTL)

	// Command + Query services
	commandSvc := txcmd.NewTransactionCommandService(writeRepo, publisher)
	querySvc := txqry.NewTransactionQueryService(readRepo, cfg.Scoping)

	transactionHandler := handler.NewTransactionHandler(commandSvc, querySvc, cfg.Scoping)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(transactionHandler, cfg.Scoping),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("database", cfg.DatabaseClient).
			Str("scoping", string(cfg.Scoping)).
			Bool("cache", redis != nil).
			Str("events", cfg.EventBroker).
			Msg("Ledger service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}

// setupLogger installs the global zerolog logger: JSON lines, or a plain
// console format for "text".
func setupLogger(level, format string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var out io.Writer = os.Stdout
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339, NoColor: true}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

func newPublisher(cfg *config.Config, redis *goredis.Client) (events.Publisher, error) {
	switch cfg.EventBroker {
	case config.BrokerRedis:
		if redis == nil {
			return nil, errors.New("redis broker requires REDIS_ADDR")
		}
		return events.NewRedisPublisher(redis), nil
	case config.BrokerKafka:
		return events.NewKafkaPublisher(cfg.KafkaBrokers), nil
	case config.BrokerAMQP:
		publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, err
		}
		return publisher, nil
	default:
		return events.NopPublisher{}, nil
	}
}
