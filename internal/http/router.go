package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/medlibrary-backend/internal/http/handlers"
	httpMW "github.com/yungbote/medlibrary-backend/internal/http/middleware"
	"github.com/yungbote/medlibrary-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	ContentHandler  *httpH.ContentHandler
	AdminHandler    *httpH.AdminHandler
	AdminMiddleware *httpMW.AdminMiddleware

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")
	{
		// Content
		if cfg.ContentHandler != nil {
			api.GET("/content", cfg.ContentHandler.ListContent)
			api.GET("/content/:id", cfg.ContentHandler.GetContent)
			api.GET("/content/:id/levels/:tier", cfg.ContentHandler.GetLevel)
			api.GET("/content/:id/related", cfg.ContentHandler.GetRelated)
			api.GET("/tags/:category/:value", cfg.ContentHandler.FindByTag)
			api.GET("/search", cfg.ContentHandler.Search)
		}

		if cfg.AdminHandler != nil {
			api.GET("/audit", cfg.AdminHandler.Audit)
		}
	}

	admin := api.Group("/admin")
	{
		if cfg.AdminMiddleware != nil {
			admin.Use(cfg.AdminMiddleware.RequireAdmin())
		}
		if cfg.AdminHandler != nil {
			admin.POST("/reload", cfg.AdminHandler.Reload)
			admin.POST("/mirror", cfg.AdminHandler.Mirror)
			admin.POST("/graph", cfg.AdminHandler.ProjectGraph)
		}
	}

	return r
}
