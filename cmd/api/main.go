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

	"retail-crm/internal/activities"
	"retail-crm/internal/auth"
	"retail-crm/internal/calls"
	"retail-crm/internal/campaigns"
	"retail-crm/internal/commerce"
	"retail-crm/internal/config"
	"retail-crm/internal/httpapi"
	"retail-crm/internal/pipeline"
	"retail-crm/internal/prospects"
	"retail-crm/internal/reporting"
	"retail-crm/internal/tasks"
	"retail-crm/internal/team"
	"retail-crm/internal/telephony"
	"retail-crm/internal/webhooklog"
	"retail-crm/pkg/logger"
	"retail-crm/pkg/telemetry"
	"retail-crm/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A missing .env is normal outside local development.
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

	shutdownTracer, err := telemetry.InitTracer(cfg.Telemetry.Enabled, cfg.Telemetry.ServiceName, log)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis and Mongo are optional; without them webhooks and launches run
	// unlocked and deliveries are not archived.
	var (
		webhookLocker  calls.Locker
		campaignLocker campaigns.Locker
	)
	if cfg.Redis.Enabled() {
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		locker := utils.NewRedisLocker(rdb, "crm:")
		webhookLocker, campaignLocker = locker, locker
	}

	var deliveries calls.DeliveryLog
	if cfg.Mongo.Enabled() {
		archive, closeMongo, err := webhooklog.Open(rootCtx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			log.Error("mongo init failed", "err", err)
			os.Exit(1)
		}
		defer func() { _ = closeMongo(context.Background()) }()
		deliveries = archive
	}

	commerceStore, err := commerce.NewGormStore(db)
	if err != nil {
		log.Error("gorm init failed", "err", err)
		os.Exit(1)
	}

	bland, err := telephony.NewBlandClient(cfg.Bland, nil, log)
	if err != nil {
		log.Error("bland client init failed", "err", err)
		os.Exit(1)
	}

	var authMW gin.HandlerFunc
	if cfg.Auth.Enabled {
		authManager, err := auth.NewManager(cfg.Auth)
		if err != nil {
			log.Error("auth init failed", "err", err)
			os.Exit(1)
		}
		authMW = auth.RequireAccessToken(authManager)
	}

	prospectRepo := prospects.NewPostgresRepo(db)
	callRepo := calls.NewPostgresRepo(db)
	activitySvc := activities.NewService(activities.NewPostgresRepo(db))
	pipelineSvc := pipeline.NewService(prospectRepo, activitySvc, log)

	h := httpapi.Handlers{
		Prospects:  prospects.NewService(prospectRepo, log),
		Pipeline:   pipelineSvc,
		Activities: activitySvc,
		Tasks:      tasks.NewService(tasks.NewPostgresRepo(db), activitySvc, log),
		Team:       team.NewService(team.NewPostgresRepo(db)),
		Reporting:  reporting.NewService(reporting.NewPostgresRepo(db), activitySvc),
		Calls:      calls.NewManager(callRepo, prospectRepo, activitySvc, bland, log),
		Webhooks: calls.NewIngestor(calls.IngestorDeps{
			Calls:      callRepo,
			Prospects:  prospectRepo,
			Activities: activitySvc,
			Pipeline:   pipelineSvc,
			Locker:     webhookLocker,
			Deliveries: deliveries,
			Logger:     log,
		}),
		Campaigns: campaigns.NewService(campaigns.NewPostgresRepo(db), bland, campaignLocker, log),
		Commerce:  commerce.NewService(commerceStore),
		Ping: func(ctx context.Context) error {
			return utils.HealthCheck(ctx, db, 2*time.Second)
		},
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.Use(httpapi.CORS(cfg.App.CORSOrigins))

	registerRoutes(r, h, authMW)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           otelhttp.NewHandler(r, cfg.Telemetry.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "auth", cfg.Auth.Enabled)
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
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", "err", err)
	}
}
