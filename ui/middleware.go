package ui

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"liftcast/ui/middleware"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestLogger(s.logger))

	staticFS, err := fs.Sub(s.files, "ui/static")
	if err != nil {
		s.logger.Warn("static files unavailable: %v", err)
		return
	}
	s.router.StaticFS("/static", http.FS(staticFS))
}
