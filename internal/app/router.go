package app

import (
	apphttp "github.com/yungbote/medlibrary-backend/internal/http"
	"github.com/yungbote/medlibrary-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *apphttp.Server {
	return apphttp.NewServer(":"+cfg.Port, apphttp.RouterConfig{
		Log:             log,
		ServiceName:     cfg.ServiceName,
		CORSOrigins:     cfg.CORSOrigins,
		ContentHandler:  handlers.Content,
		AdminHandler:    handlers.Admin,
		AdminMiddleware: middleware.Admin,
		HealthHandler:   handlers.Health,
	})
}
