package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/craftbase/appbuilder-backend/internal/http/handlers"
	httpMW "github.com/craftbase/appbuilder-backend/internal/http/middleware"
	"github.com/craftbase/appbuilder-backend/internal/pkg/logger"
)

type RouterConfig struct {
	ServiceName string
	Log         *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler      *httpH.HealthHandler
	ApplicationHandler *httpH.ApplicationHandler
	RecordHandler      *httpH.RecordHandler
	CheckpointHandler  *httpH.CheckpointHandler
	SessionHandler     *httpH.SessionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// Applications (scope roots)
	if cfg.ApplicationHandler != nil {
		api.POST("/applications", cfg.ApplicationHandler.Create)
		api.GET("/applications", cfg.ApplicationHandler.List)
		api.GET("/applications/:appID", cfg.ApplicationHandler.Get)
		api.DELETE("/applications/:appID", cfg.ApplicationHandler.Delete)
	}

	// Object store rows (all writes go through the mutation interceptor)
	if cfg.RecordHandler != nil {
		api.POST("/applications/:appID/tables/:table/rows", cfg.RecordHandler.Create)
		api.GET("/applications/:appID/tables/:table/rows", cfg.RecordHandler.List)
		api.GET("/applications/:appID/tables/:table/rows/:id", cfg.RecordHandler.Get)
		api.PATCH("/applications/:appID/tables/:table/rows/:id", cfg.RecordHandler.Update)
		api.DELETE("/applications/:appID/tables/:table/rows/:id", cfg.RecordHandler.Delete)
	}

	// Checkpoint history and restore
	if cfg.CheckpointHandler != nil {
		api.GET("/applications/:appID/checkpoints", cfg.CheckpointHandler.History)
		api.GET("/applications/:appID/checkout", cfg.CheckpointHandler.Checkout)
		api.POST("/applications/:appID/checkpoints/:checkpointID/restore", cfg.CheckpointHandler.Restore)
		api.DELETE("/applications/:appID/checkpoints", cfg.CheckpointHandler.DeleteAll)
	}

	// Grouped checkpoint sessions
	if cfg.SessionHandler != nil {
		api.POST("/applications/:appID/sessions", cfg.SessionHandler.Begin)
		api.POST("/applications/:appID/sessions/:sessionID/commit", cfg.SessionHandler.Commit)
		api.POST("/applications/:appID/sessions/:sessionID/abort", cfg.SessionHandler.Abort)
	}

	return r
}
