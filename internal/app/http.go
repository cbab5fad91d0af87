package app

import (
	"gorm.io/gorm"

	httpapi "github.com/yungbote/materials-catalog/internal/http"
	httpH "github.com/yungbote/materials-catalog/internal/http/handlers"
	httpMW "github.com/yungbote/materials-catalog/internal/http/middleware"
	"github.com/yungbote/materials-catalog/internal/observability"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Material *httpH.MaterialHandler
	Catalog  *httpH.CatalogHandler
}

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireHandlers(log *logger.Logger, db *gorm.DB, cfg Config, svc Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(db),
		Material: httpH.NewMaterialHandler(log, svc.Query, svc.Write, svc.Engagement, cfg.MaxUploadBytes),
		Catalog:  httpH.NewCatalogHandler(log, svc.Query),
	}
}

func wireMiddleware(log *logger.Logger, svc Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, svc.Tokens)}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, mw Middleware) *httpapi.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return httpapi.NewServer(httpapi.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     serviceName,
		AllowedOrigins:  cfg.AllowedOrigins,
		AuthMiddleware:  mw.Auth,
		MaterialHandler: handlers.Material,
		CatalogHandler:  handlers.Catalog,
		HealthHandler:   handlers.Health,
	}, cfg.ShutdownTimeout)
}
