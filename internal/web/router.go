package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lojf/enrollments/internal/db"
	"github.com/lojf/enrollments/internal/handlers"
	"github.com/lojf/enrollments/internal/logger"
	"github.com/lojf/enrollments/internal/metrics"
	svc "github.com/lojf/enrollments/internal/services"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	DB        *gorm.DB
	Store     db.Store
	Schema    *svc.Schema
	Log       *zap.Logger
	Metrics   *metrics.Metrics
	PublicURL string
	StaticDir string
}

func Router(d Deps) (http.Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	home, err := handlers.Home(tmpl, d.Schema)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(d.Log))
	r.Use(d.Metrics.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/", home)
	r.Post("/enrollments", handlers.CreateEnrollment(d.Store, d.Schema, d.Log, d.Metrics))

	r.Get("/healthz", handlers.Health(d.DB))
	r.Get("/qr.png", handlers.FormQR(d.PublicURL))
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	if d.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(d.StaticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r, nil
}
