package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/noah-isme/assignment-helper-api/api/swagger"
	"github.com/noah-isme/assignment-helper-api/internal/repository"
	"github.com/noah-isme/assignment-helper-api/internal/service"
	"github.com/noah-isme/assignment-helper-api/pkg/cache"
	"github.com/noah-isme/assignment-helper-api/pkg/config"
	"github.com/noah-isme/assignment-helper-api/pkg/database"
	"github.com/noah-isme/assignment-helper-api/pkg/export"
	"github.com/noah-isme/assignment-helper-api/pkg/llm"
	"github.com/noah-isme/assignment-helper-api/pkg/logger"
	"github.com/noah-isme/assignment-helper-api/pkg/storage"
)

// @title Academic Assignment Helper API
// @version 2.0.0
// @description Upload assignments, receive AI analysis, plagiarism checks and source suggestions.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if err := database.Migrate(ctx, db); err != nil {
		logr.Fatal("schema migration failed", zap.Error(err))
	}

	if cfg.UsesDevSecret() {
		logr.Warn("JWT_SECRET_KEY is unset, tokens are signed with the development secret")
	}

	app, err := buildApp(ctx, cfg, db, logr)
	if err != nil {
		logr.Fatal("failed to initialise services", zap.Error(err))
	}
	defer app.close()

	if cfg.Database.SeedSamples {
		inserted, err := database.Seed(ctx, db)
		if err != nil {
			logr.Warn("sample source seeding failed", zap.Error(err))
		} else if inserted > 0 {
			logr.Info("seeded sample sources", zap.Int("count", inserted))
			if err := app.sources.InvalidateCache(ctx); err != nil {
				logr.Warn("source cache invalidation failed", zap.Error(err))
			}
		}
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           newRouter(cfg, logr, app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logr.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "llm_provider", cfg.LLM.Provider)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
	logr.Info("server stopped")
}

type app struct {
	metrics     *service.MetricsService
	auth        *service.AuthService
	sources     *service.SourceService
	submissions *service.SubmissionService
	exports     *service.ExportService
	health      *service.HealthService
	closers     []func() error
}

func (a *app) close() {
	for _, fn := range a.closers {
		_ = fn()
	}
}

func buildApp(ctx context.Context, cfg *config.Config, db *sqlx.DB, logr *zap.Logger) (*app, error) {
	metrics := service.NewMetricsService()
	a := &app{metrics: metrics}

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, source cache disabled", zap.Error(err))
	} else if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, "aah:", logr)
		a.closers = append(a.closers, cacheRepo.Close)
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Sources.CacheTTL, logr, cfg.Sources.CacheEnabled)
	}

	var store service.DocumentStore
	switch cfg.Storage.Driver {
	case config.StorageS3:
		s3Store, err := storage.NewS3Storage(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("s3 storage: %w", err)
		}
		store = s3Store
	default:
		local, err := storage.NewLocalStorage(cfg.Storage.UploadDir)
		if err != nil {
			return nil, fmt.Errorf("local storage: %w", err)
		}
		store = local
	}

	client, err := llm.New(cfg.LLM)
	if err != nil {
		if !errors.Is(err, llm.ErrNotConfigured) {
			return nil, fmt.Errorf("llm client: %w", err)
		}
		logr.Warn("no LLM credentials configured, analyses will use placeholder results", zap.String("provider", cfg.LLM.Provider))
		client = nil
	}

	accounts := repository.NewAccountRepository(db)
	submissions := repository.NewSubmissionRepository(db)
	analyses := repository.NewAnalysisRepository(db)
	sourceRepo := repository.NewSourceRepository(db)

	credentials := service.NewCredentialManager(service.CredentialConfig{
		Secret:     cfg.JWT.Secret,
		DefaultTTL: cfg.JWT.DefaultTTL,
		Issuer:     cfg.JWT.Issuer,
	})

	a.auth = service.NewAuthService(accounts, credentials, validator.New(), logr, service.AuthConfig{AccessTokenExpiry: cfg.JWT.Expiration})
	a.sources = service.NewSourceService(sourceRepo, cacheSvc, metrics, logr)
	analyzer := service.NewAnalysisService(analyses, a.sources, client, metrics, logr)
	a.submissions = service.NewSubmissionService(submissions, analyses, store, analyzer, metrics, logr, service.SubmissionConfig{
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	})
	a.exports = service.NewExportService(a.submissions, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	a.health = service.NewHealthService(db, analyzer.Configured(), logr)

	return a, nil
}
