package http

import (
	"github.com/gin-gonic/gin"
)

// Server fronts the builder API: application management, checkpointed row
// mutations, and the history/restore endpoints assembled by NewRouter.
type Server struct {
	Engine *gin.Engine
}

func NewServer(cfg RouterConfig) *Server {
	return &Server{Engine: NewRouter(cfg)}
}

func (s *Server) Run(address string) error {
	return s.Engine.Run(address)
}
