package app

import (
	httpH "github.com/yungbote/medlibrary-backend/internal/http/handlers"
	httpMW "github.com/yungbote/medlibrary-backend/internal/http/middleware"
	"github.com/yungbote/medlibrary-backend/internal/platform/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Content *httpH.ContentHandler
	Admin   *httpH.AdminHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(services.Library),
		Content: httpH.NewContentHandler(log, services.Library),
		Admin:   httpH.NewAdminHandler(log, services.Library),
	}
}

type Middleware struct {
	Admin *httpMW.AdminMiddleware
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	if cfg.AdminToken == "" {
		log.Warn("ADMIN_TOKEN not set; admin endpoints are disabled")
	}
	return Middleware{
		Admin: httpMW.NewAdminMiddleware(log, cfg.AdminToken),
	}
}
