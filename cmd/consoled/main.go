// consoled is the federation admin-console gateway. It owns one operator
// session against the upstream federation API: it restores the session from
// the credential store at boot, then serves the console HTTP surface with
// every protected view gated by the route guard.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redislib "github.com/redis/go-redis/v9"
	mongolib "go.mongodb.org/mongo-driver/mongo"

	"github.com/sportsfed/console-gateway/internal/api"
	"github.com/sportsfed/console-gateway/internal/api/metrics"
	"github.com/sportsfed/console-gateway/internal/core/domain"
	"github.com/sportsfed/console-gateway/internal/core/ports"
	"github.com/sportsfed/console-gateway/internal/core/service"
	"github.com/sportsfed/console-gateway/internal/infrastructure/config"
	"github.com/sportsfed/console-gateway/internal/infrastructure/credstore"
	mongoconn "github.com/sportsfed/console-gateway/internal/infrastructure/db/mongo"
	redisconn "github.com/sportsfed/console-gateway/internal/infrastructure/db/redis"
	"github.com/sportsfed/console-gateway/internal/infrastructure/queue"
	"github.com/sportsfed/console-gateway/internal/upstream"
	"github.com/sportsfed/console-gateway/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Credential store ---
	var (
		store ports.CredentialStore
		rdb   *redislib.Client
	)
	switch cfg.Store.Backend {
	case "redis":
		client, err := redisconn.Connect(ctx, redisconn.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer client.Close()
		rdb = client
		store = credstore.NewRedisStore(client)
	case "memory":
		store = credstore.NewMemoryStore()
	default:
		fileStore, err := credstore.NewFileStore(cfg.Store.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("credential store init failed")
		}
		store = fileStore
	}

	// --- Session audit trail (optional) ---
	var (
		audit ports.AuditRecorder
		db    *mongolib.Database
	)
	if cfg.Mongo.URI != "" {
		client, database, err := mongoconn.Connect(ctx, mongoconn.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connection failed")
		}
		defer func() {
			_ = client.Disconnect(context.Background())
		}()
		db = database

		dispatcher := queue.NewDispatcher(0, mongoconn.NewAuditRepository(database), log)
		dispatcher.Start(ctx)
		audit = dispatcher
	}

	// --- Pipeline and session manager ---
	client := upstream.NewClient(upstream.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
	}, store, log)

	sessions := service.NewSessionManager(store, client, audit, log)
	client.OnUnauthorized(func() {
		sessions.Invalidate(domain.InvalidationUnauthorized)
	})

	// Every session teardown emits exactly one event; count and log them here.
	go func() {
		for reason := range sessions.Invalidations() {
			metrics.SessionInvalidationsTotal.WithLabelValues(string(reason)).Inc()
			log.Info().Str("reason", string(reason)).Msg("session invalidated")
		}
	}()

	// Restoration gates the listener: by the time the guard sees a request,
	// the session state is resolved.
	sessions.Restore(ctx)

	e := api.NewRouter(sessions, client, rdb, db, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("upstream", cfg.Upstream.BaseURL).Msg("console gateway started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
