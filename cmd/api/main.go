// Command api runs the task tracker HTTP service.
//
// @title                       Task Tracker API
// @version                     1.0
// @description                 Multi-user task tracking with bearer token authentication.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/tasktracker/task-api/internal/api"
	"github.com/tasktracker/task-api/internal/api/handler"
	"github.com/tasktracker/task-api/internal/core/service"
	"github.com/tasktracker/task-api/internal/infrastructure/config"
	"github.com/tasktracker/task-api/internal/infrastructure/db/mongo"
	"github.com/tasktracker/task-api/internal/infrastructure/db/redis"
	"github.com/tasktracker/task-api/internal/infrastructure/queue"
	"github.com/tasktracker/task-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "task-api",
	})

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	userRepo := mongo.NewUserRepository(db)
	taskRepo := mongo.NewTaskRepository(db)
	activityRepo := mongo.NewActivityRepository(db)
	if err := mongo.EnsureIndexes(ctx, userRepo, taskRepo, activityRepo); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	// Writes keep their own context so queued entries survive the shutdown signal.
	dispatcher := queue.NewDispatcher(cfg.ActivityWorkers, activityRepo, logger.Component("activity"))
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()

	tokens := service.NewTokenManager(cfg.Auth)
	revocations := redis.NewRevocationStore(rdb)

	e := api.NewRouter(api.Deps{
		Auth:     service.NewAuthService(userRepo, tokens, revocations, logger.Component("auth")),
		Tasks:    service.NewTaskService(taskRepo, activityRepo, dispatcher, logger.Component("tasks")),
		Verifier: tokens,
		Revoker:  revocations,
		Readiness: map[string]handler.DependencyCheck{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return pingRedis(ctx, rdb) },
		},
		AllowedOrigins: cfg.AllowedOrigins(),
		Logger:         logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func pingRedis(ctx context.Context, rdb *goredis.Client) error {
	return rdb.Ping(ctx).Err()
}
