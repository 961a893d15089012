package app

import (
	"github.com/gin-gonic/gin"

	httplayer "github.com/craftbase/appbuilder-backend/internal/http"
	httpMW "github.com/craftbase/appbuilder-backend/internal/http/middleware"
	"github.com/craftbase/appbuilder-backend/internal/pkg/logger"
)

func wireRouter(log *logger.Logger, cfg Config, h Handlers, auth *httpMW.AuthMiddleware) *gin.Engine {
	log.Info("Wiring router...")
	return httplayer.NewRouter(httplayer.RouterConfig{
		ServiceName: cfg.ServiceName,
		Log:         log,

		AuthMiddleware: auth,

		HealthHandler:      h.Health,
		ApplicationHandler: h.Application,
		RecordHandler:      h.Record,
		CheckpointHandler:  h.Checkpoint,
		SessionHandler:     h.Session,
	})
}
