package ui

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"liftcast/app"
	"liftcast/internal"
)

// Server represents the dashboard web server
type Server struct {
	router    *gin.Engine
	model     *app.ModelService
	api       http.Handler
	templates *template.Template
	files     fs.FS
	logger    *internal.Logger
}

// NewServer creates the dashboard. files must contain ui/templates/*.html
// and ui/static/; api, when set, serves /api/* and /healthz.
func NewServer(model *app.ModelService, api http.Handler, files fs.FS, logger *internal.Logger) (*Server, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router: gin.New(),
		model:  model,
		api:    api,
		files:  files,
		logger: logger.With("Dashboard"),
	}

	if err := s.parseTemplates(); err != nil {
		return nil, err
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) parseTemplates() error {
	templatesFS, err := fs.Sub(s.files, "ui/templates")
	if err != nil {
		return fmt.Errorf("failed to create templates filesystem: %w", err)
	}

	funcMap := template.FuncMap{
		"pct":  func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
		"bits": func(v float64) string { return fmt.Sprintf("%.2f bits", v) },
	}
	s.templates, err = template.New("").Funcs(funcMap).ParseFS(templatesFS, "*.html")
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	s.logger.Debug("parsed templates: %s", s.templates.DefinedTemplates())
	return nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)

	if s.api != nil {
		s.router.GET("/healthz", gin.WrapH(s.api))
		s.router.GET("/metrics", gin.WrapH(s.api))
		s.router.Any("/api/*path", gin.WrapH(s.api))
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer wraps the router for callers that manage shutdown themselves.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{Addr: addr, Handler: s.router}
}
