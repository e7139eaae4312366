package httpapi

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/njg37/video-generator-backend/internal/http/handlers"
	"github.com/njg37/video-generator-backend/internal/infra"
	"github.com/njg37/video-generator-backend/internal/middleware"
)

// NewRouter assembles the chi router with the standard middleware chain and
// every route the API serves.
func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger, countries middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.CORS(cfg.AllowedOrigins),
		middleware.Logger(logger, countries),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/generate", func(r chi.Router) {
			r.With(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute)).Post("/", app.Generate)
			r.Get("/history", app.GenerationHistory)
		})

		r.Route("/theme", func(r chi.Router) {
			r.Get("/", app.ListThemes)
			r.Post("/", app.ApplyTheme)
			r.Get("/{theme}", app.ResolveTheme)
		})

		r.Route("/spotify", func(r chi.Router) {
			r.Get("/login", app.SpotifyLogin)
			r.Get("/callback", app.SpotifyCallback)
			r.Get("/refresh_token", app.SpotifyRefresh)
			r.Get("/token", app.SpotifyToken)
			r.Get("/search", app.SpotifySearch)
		})
	})

	// Uploaded audio and generated videos are served straight off disk.
	fileServer(r, "/uploads", cfg.UploadDir)
	if cfg.OutputDir != cfg.UploadDir {
		fileServer(r, "/videos", cfg.OutputDir)
	}

	if cfg.Production() {
		spaHandler(r, cfg.FrontendDir)
	}

	return r
}

func fileServer(r chi.Router, prefix, dir string) {
	fs := http.StripPrefix(prefix+"/", http.FileServer(http.Dir(dir)))
	r.Get(prefix+"/*", func(w http.ResponseWriter, req *http.Request) {
		fs.ServeHTTP(w, req)
	})
}

// spaHandler serves the bundled frontend build, falling back to index.html
// for client-side routes.
func spaHandler(r chi.Router, dir string) {
	fs := http.FileServer(http.Dir(dir))
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+req.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fs.ServeHTTP(w, req)
			return
		}
		http.ServeFile(w, req, filepath.Join(dir, "index.html"))
	})
}
