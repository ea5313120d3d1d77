package transporthttp

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/swaggo/swag"

	_ "github.com/MrKriegler/go-warranty/docs"
	"github.com/MrKriegler/go-warranty/internal/http/handlers"
	"github.com/MrKriegler/go-warranty/internal/middleware"
	"github.com/MrKriegler/go-warranty/internal/platform/metrics"
	"github.com/MrKriegler/go-warranty/pkg/problem"
)

// Deps bundles what the router needs. Public handlers mount under /api/v1,
// Admin handlers under /api/v1/admin behind the API key.
type Deps struct {
	Log            *slog.Logger
	Public         []handlers.Mountable
	Admin          []handlers.Mountable
	Health         http.Handler
	APIKey         string
	AllowedOrigins []string
	Limiter        middleware.Limiter // nil disables rate limiting
	RequestTimeout time.Duration
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	}))

	if d.Health != nil {
		r.Mount("/", d.Health)
	}
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			problem.Write(w, http.StatusInternalServerError, "Internal Server Error", "API documentation unavailable")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SetJSONContentType)
		r.Use(middleware.LimitRequestBody(middleware.MaxBodySize))
		if d.RequestTimeout > 0 {
			r.Use(chimw.Timeout(d.RequestTimeout))
		}
		if d.Limiter != nil {
			r.Use(middleware.RateLimit(d.Limiter, d.Log))
		}

		// Mount each feature's routes into this router.
		for _, m := range d.Public {
			m.Mount(r)
		}

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.APIKey(d.APIKey))
			for _, m := range d.Admin {
				m.Mount(r)
			}
		})
	})

	return r
}
