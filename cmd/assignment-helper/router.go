package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/assignment-helper-api/internal/handler"
	"github.com/noah-isme/assignment-helper-api/internal/middleware"
	"github.com/noah-isme/assignment-helper-api/pkg/config"
	"github.com/noah-isme/assignment-helper-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/assignment-helper-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/assignment-helper-api/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, logr *zap.Logger, a *app) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(a.metrics))

	healthHandler := handler.NewHealthHandler(a.health)
	authHandler := handler.NewAuthHandler(a.auth)
	submissionHandler := handler.NewSubmissionHandler(a.submissions, a.exports)
	sourceHandler := handler.NewSourceHandler(a.sources)
	metricsHandler := handler.NewMetricsHandler(a.metrics)

	r.GET("/", healthHandler.Root)
	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)

	protected := r.Group("/")
	protected.Use(middleware.JWT(a.auth))
	protected.GET("/auth/me", authHandler.Me)
	protected.POST("/upload", submissionHandler.Upload)
	protected.GET("/submissions", submissionHandler.List)
	protected.GET("/analysis/:id", submissionHandler.GetAnalysis)
	protected.GET("/analysis/:id/export", submissionHandler.Export)
	protected.GET("/sources", sourceHandler.Search)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
