package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	caseshandler "github.com/piipapoy/pedulikucing-app-sub000/internal/cases/handler"
	casesmetrics "github.com/piipapoy/pedulikucing-app-sub000/internal/cases/metrics"
	casesservice "github.com/piipapoy/pedulikucing-app-sub000/internal/cases/service"
	casesstore "github.com/piipapoy/pedulikucing-app-sub000/internal/cases/store"
	chathandler "github.com/piipapoy/pedulikucing-app-sub000/internal/chat/handler"
	chatmetrics "github.com/piipapoy/pedulikucing-app-sub000/internal/chat/metrics"
	"github.com/piipapoy/pedulikucing-app-sub000/internal/chat/pairlock"
	chatservice "github.com/piipapoy/pedulikucing-app-sub000/internal/chat/service"
	chatstore "github.com/piipapoy/pedulikucing-app-sub000/internal/chat/store"
	identitystore "github.com/piipapoy/pedulikucing-app-sub000/internal/identity/store"
	"github.com/piipapoy/pedulikucing-app-sub000/internal/identity/token"
	"github.com/piipapoy/pedulikucing-app-sub000/internal/platform/config"
	"github.com/piipapoy/pedulikucing-app-sub000/internal/platform/httpserver"
	"github.com/piipapoy/pedulikucing-app-sub000/internal/platform/logger"
	"github.com/piipapoy/pedulikucing-app-sub000/internal/platform/metrics"
	platformredis "github.com/piipapoy/pedulikucing-app-sub000/internal/platform/redis"
	httptransport "github.com/piipapoy/pedulikucing-app-sub000/internal/transport/http"
)

// main wires storage, services, and transport, then runs the server until a
// shutdown signal. Business logic lives in the internal service packages.
func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New(cfg.Env)

	checks := map[string]httptransport.Health{}

	var caseStore interface {
		casesservice.ReportStore
		casesservice.AdoptionStore
		casesservice.CatStore
		casesservice.CampaignStore
	}
	var convStore interface {
		chatservice.ConversationStore
		chatservice.MessageStore
	}
	var userStore identitystore.UserStore

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			cancel()
			log.Error("database unreachable", "error", err)
			os.Exit(1)
		}
		cancel()

		caseStore = casesstore.NewPostgres(db)
		convStore = chatstore.NewPostgres(db)
		userStore = identitystore.NewPostgres(db)
		checks["database"] = db.Ping
		log.Info("using postgres storage")
	} else {
		caseStore = casesstore.NewInMemory()
		convStore = chatstore.NewInMemory()
		userStore = identitystore.NewInMemory()
		log.Info("using in-memory storage; data will not survive restarts")
	}

	var locker pairlock.Locker = pairlock.NewLocal()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		locker = pairlock.NewRedis(redisClient.Client)
		checks["redis"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(ctx)
		}
		log.Info("using redis pair locking")
	}

	httpMetrics := metrics.New()
	tokens := token.NewService(cfg.JWTSigningKey, "pedulikucing")

	caseSvc := casesservice.New(caseStore, caseStore, caseStore, caseStore,
		casesservice.WithLogger(log),
		casesservice.WithMetrics(casesmetrics.New()),
	)
	chatSvc := chatservice.New(convStore, convStore, userStore, caseSvc,
		chatservice.WithLogger(log),
		chatservice.WithMetrics(chatmetrics.New()),
		chatservice.WithPairLocker(locker),
	)

	router := httptransport.NewRouter(httptransport.Config{
		Logger:  log,
		Metrics: httpMetrics,
		Handlers: []httptransport.Registrar{
			chathandler.New(chatSvc, log, tokens),
			caseshandler.New(caseSvc, log, tokens),
		},
		Checks: checks,
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
