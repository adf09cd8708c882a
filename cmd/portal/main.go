package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klinik-sejahtera/clinic-portal/internal/api"
	"github.com/klinik-sejahtera/clinic-portal/internal/core/service"
	"github.com/klinik-sejahtera/clinic-portal/internal/infrastructure/backend"
	"github.com/klinik-sejahtera/clinic-portal/internal/infrastructure/config"
	mongodb "github.com/klinik-sejahtera/clinic-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/klinik-sejahtera/clinic-portal/internal/infrastructure/db/redis"
	"github.com/klinik-sejahtera/clinic-portal/internal/infrastructure/queue"
	"github.com/klinik-sejahtera/clinic-portal/pkg/logger"
)

// @title        Clinic Portal API
// @version      1.0
// @description  Session gateway and role-gated portal for the clinic management system.
// @BasePath     /
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	rdb, err := redisdb.Connect(rootCtx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	mongoClient, db, err := mongodb.Connect(rootCtx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	client := backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, log)

	audit := queue.NewAuditDispatcher(4, mongodb.NewAuditRepository(db), log)
	audit.Start(rootCtx)

	store := redisdb.NewSessionStore(rdb, cfg.SessionTTL)
	sessions := service.NewManager(store, client, audit, log)

	e := api.NewRouter(sessions, client, db, rdb, cfg.CookieName, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("portal starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	rootCancel()
	log.Info().Msg("shutdown complete")
}
