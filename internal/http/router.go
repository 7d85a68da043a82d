package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/salesday/backend/internal/config"
	"github.com/salesday/backend/internal/http/handlers"
	"github.com/salesday/backend/internal/http/middleware"
	"github.com/salesday/backend/internal/metrics"
	"github.com/salesday/backend/internal/service"

	_ "github.com/salesday/backend/docs"
)

// Deps are the collaborators the HTTP surface drives. Store may be nil when
// no database is configured.
type Deps struct {
	Orchestrator *service.Orchestrator
	Metrics      *metrics.Metrics
	Store        handlers.Pinger
}

func Router(cfg config.Config, deps Deps, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.AdminKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" || cfg.CORSAllowed == "" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Orchestrator:   deps.Orchestrator,
		Metrics:        deps.Metrics,
		Validator:      validator.New(),
		Logger:         logger,
		Store:          deps.Store,
		Office:         cfg.Office(),
		RequestTimeout: cfg.RequestTimeout,
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/day", h.GetStatus)
		api.GET("/day/stops/:id/map", h.StopMap)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/day", h.StartDay)
		admin.DELETE("/day", h.ResetDay)
		admin.POST("/day/route", h.ComputeRoute)
		admin.POST("/day/progress", h.RecordProgress)
		admin.PUT("/day/visits/:id", h.MarkVisit)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
