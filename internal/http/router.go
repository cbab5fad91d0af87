package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/materials-catalog/internal/http/handlers"
	httpMW "github.com/yungbote/materials-catalog/internal/http/middleware"
	"github.com/yungbote/materials-catalog/internal/observability"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AllowedOrigins []string

	AuthMiddleware  *httpMW.AuthMiddleware
	MaterialHandler *httpH.MaterialHandler
	CatalogHandler  *httpH.CatalogHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	requireUser := func(c *gin.Context) { c.Next() }
	requireAdmin := requireUser
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.Authenticate())
		requireUser = cfg.AuthMiddleware.RequireUser()
		requireAdmin = cfg.AuthMiddleware.RequireAdmin()
	}

	// Catalog (public)
	if cfg.CatalogHandler != nil {
		api.GET("/categories", cfg.CatalogHandler.Categories)
		api.GET("/tags", cfg.CatalogHandler.Tags)
		api.GET("/statistics", cfg.CatalogHandler.Statistics)
		api.GET("/featured", cfg.CatalogHandler.Featured)
	}

	// Materials
	if h := cfg.MaterialHandler; h != nil {
		api.GET("/materials", h.List)
		api.GET("/materials/:id", h.Get)
		api.GET("/materials/:id/file", h.File)
		api.GET("/materials/:id/thumbnail", h.Thumbnail)
		api.POST("/materials/:id/track", h.Track)

		api.POST("/materials/:id/progress", requireUser, h.SaveProgress)
		api.GET("/materials/:id/progress", requireUser, h.GetProgress)
		api.POST("/materials/:id/rate", requireUser, h.Rate)

		api.POST("/materials", requireAdmin, h.Create)
		api.PUT("/materials/:id", requireAdmin, h.Update)
		api.DELETE("/materials/:id", requireAdmin, h.Delete)
	}

	return r
}
