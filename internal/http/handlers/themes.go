package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/njg37/video-generator-backend/internal/domain"
	"github.com/njg37/video-generator-backend/internal/pipeline"
)

// ListThemes handles GET /api/theme.
func (a *App) ListThemes(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"themes": pipeline.KnownThemes()})
}

type applyThemeRequest struct {
	Theme string `json:"theme"`
}

// ApplyTheme handles POST /api/theme, validating a theme name against the
// static list.
func (a *App) ApplyTheme(w http.ResponseWriter, r *http.Request) {
	var req applyThemeRequest
	if err := decodeJSON(r, &req); err != nil || !pipeline.IsKnownTheme(req.Theme) {
		a.error(w, http.StatusBadRequest, "Invalid theme", "")
		return
	}
	a.json(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Theme '%s' applied successfully", req.Theme),
	})
}

// ResolveTheme handles GET /api/theme/{theme}, resolving a theme to a remote
// video URL via the configured search provider.
func (a *App) ResolveTheme(w http.ResponseWriter, r *http.Request) {
	theme := strings.TrimSpace(chi.URLParam(r, "theme"))
	if theme == "" {
		a.error(w, http.StatusBadRequest, "Theme is required", "")
		return
	}
	if a.Themes == nil {
		a.error(w, http.StatusNotFound, "Remote theme resolution is not enabled", "")
		return
	}

	videoURL, err := a.Themes.ResolveURL(r.Context(), theme)
	if err != nil {
		if errors.Is(err, domain.ErrNoResults) {
			a.error(w, http.StatusNotFound, "No videos found for the specified theme", "")
			return
		}
		a.pipelineError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{
		"message":  "Theme video resolved",
		"videoUrl": videoURL,
	})
}
