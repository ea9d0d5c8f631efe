package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"incident-portal/internal/audit"
	"incident-portal/internal/auth"
	"incident-portal/internal/config"
	"incident-portal/internal/httpapi"
	"incident-portal/internal/incidents"
	"incident-portal/internal/rbac"
	"incident-portal/internal/session"
	"incident-portal/internal/tenancy"
	"incident-portal/pkg/logger"
	"incident-portal/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// .env is a local convenience; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	codec, err := auth.NewCodec(auth.CodecConfig{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.JWTIssuer,
		Audience: cfg.Auth.JWTAudience,
		TokenTTL: cfg.Auth.AccessTokenTTL,
		Leeway:   cfg.Auth.Leeway,
	})
	if err != nil {
		log.Error("codec init failed", "err", err)
		os.Exit(1)
	}

	registry, err := rbac.LoadRegistry(rootCtx, db)
	if err != nil {
		log.Error("role registry load failed", "err", err)
		os.Exit(1)
	}

	pgDirectory := tenancy.NewPostgresDirectory(db)
	directory := tenancy.NewCachedDirectory(pgDirectory, cfg.Tenancy.CacheTTL)
	resolver := tenancy.NewResolver(directory, cfg.Tenancy.LookupTimeout)

	auditSvc := audit.NewService(audit.NewPostgresRepo(db))
	issuer := session.NewIssuer(session.NewPostgresStore(db), registry, directory, codec, auditSvc)

	throttle, err := session.NewRedisThrottle(rdb, cfg.Login.AttemptLimit, cfg.Login.AttemptWindow)
	if err != nil {
		log.Error("login throttle init failed", "err", err)
		os.Exit(1)
	}

	pipeline := auth.NewPipeline(codec, resolver, auditSvc, log)
	handlers := httpapi.Handlers{
		Issuer:    issuer,
		Throttle:  throttle,
		Tenants:   pgDirectory,
		Incidents: incidents.NewService(incidents.NewPostgresRepo(db)),
		Log:       log,
	}

	httpapi.RegisterValidations()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, pipeline, handlers)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
