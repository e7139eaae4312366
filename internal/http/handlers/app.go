package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/njg37/video-generator-backend/internal/domain"
	"github.com/njg37/video-generator-backend/internal/history"
	"github.com/njg37/video-generator-backend/internal/infra"
	"github.com/njg37/video-generator-backend/internal/pipeline"
	"github.com/njg37/video-generator-backend/internal/providers/spotify"
)

// VideoGenerator runs the media-assembly pipeline for one request.
type VideoGenerator interface {
	Generate(ctx context.Context, req pipeline.Request) (*domain.GeneratedVideo, error)
}

// ThemeURLResolver resolves a theme label to a remote video URL.
type ThemeURLResolver interface {
	ResolveURL(ctx context.Context, theme string) (string, error)
}

// App is the handler container; the router wires its methods to routes.
type App struct {
	Cfg      *infra.Config
	Logger   infra.Logger
	Pipeline VideoGenerator
	Themes   ThemeURLResolver
	Spotify  *spotify.Client
	History  *history.Repository
}

// NewApp builds the handler container.
func NewApp(cfg *infra.Config, logger infra.Logger, gen VideoGenerator, themes ThemeURLResolver, sp *spotify.Client, hist *history.Repository) *App {
	return &App{
		Cfg:      cfg,
		Logger:   logger,
		Pipeline: gen,
		Themes:   themes,
		Spotify:  sp,
		History:  hist,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func (a *App) error(w http.ResponseWriter, code int, message, diagnostic string) {
	a.json(w, code, errorResponse{Message: message, Error: diagnostic})
}

// pipelineError translates a pipeline error kind into an HTTP status and a
// user-facing message. Diagnostics ride along in the error field; stack
// traces never do.
func (a *App) pipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingInput):
		a.error(w, http.StatusBadRequest, "Audio file and theme are required", "")
	case errors.Is(err, domain.ErrNoResults):
		a.error(w, http.StatusNotFound, "No videos found for the specified theme", "")
	case errors.Is(err, domain.ErrAssetNotFound):
		if strings.Contains(err.Error(), "audio") {
			a.error(w, http.StatusNotFound, "Audio file not found", "")
		} else {
			a.error(w, http.StatusNotFound, "Theme not found", "")
		}
	case errors.Is(err, domain.ErrTimeout):
		a.error(w, http.StatusGatewayTimeout, "Video generation timed out", err.Error())
	case errors.Is(err, domain.ErrDownload):
		a.error(w, http.StatusInternalServerError, "Failed to download theme video", err.Error())
	case errors.Is(err, domain.ErrStorage):
		a.error(w, http.StatusInternalServerError, "Failed to save uploaded file", err.Error())
	case errors.Is(err, domain.ErrTranscode):
		a.error(w, http.StatusInternalServerError, "Error generating video", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("unexpected pipeline error")
		a.error(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}
