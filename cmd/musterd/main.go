package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/firewatch/muster/internal/changefeed"
	"github.com/firewatch/muster/internal/common/clock"
	"github.com/firewatch/muster/internal/common/uuid"
	"github.com/firewatch/muster/internal/config"
	"github.com/firewatch/muster/internal/handlers/httpapi"
	"github.com/firewatch/muster/internal/repositories/attendance"
	"github.com/firewatch/muster/internal/repositories/employee"
	"github.com/firewatch/muster/internal/repositories/marshal"
	"github.com/firewatch/muster/internal/repositories/session"
	"github.com/firewatch/muster/internal/services/muster"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	// Initialize the Redis client and verify the store is reachable.
	// An unreachable store is fatal: the server cannot run degraded.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to Redis")
	}

	feed, err := changefeed.NewPublisher(&changefeed.PublisherConfig{
		RedisClient: redisClient,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create feed publisher")
	}

	marshalRepo, err := marshal.NewRedis(&marshal.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create marshal repository")
	}

	employeeRepo, err := employee.NewRedis(&employee.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create employee repository")
	}

	sessionRepo, err := session.NewRedis(&session.Config{
		RedisClient: redisClient,
		Feed:        feed,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create session repository")
	}

	attendanceRepo, err := attendance.NewRedis(&attendance.Config{
		RedisClient: redisClient,
		Feed:        feed,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create attendance repository")
	}

	musterSvc, err := muster.New(&muster.Config{
		SessionRepo:     sessionRepo,
		AttendanceRepo:  attendanceRepo,
		MarshalRepo:     marshalRepo,
		EmployeeRepo:    employeeRepo,
		Clock:           &clock.DefaultClock{},
		UUID:            uuid.New(),
		SessionPageSize: cfg.SessionPageSize,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create muster service")
	}

	server, err := httpapi.New(&httpapi.Config{
		Addr:          cfg.Addr,
		MusterService: musterSvc,
		RedisClient:   redisClient,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create API server")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("server error")
		}
	case <-sc:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error stopping server")
	}

	logger.Info().Msg("muster server has shut down")
}
