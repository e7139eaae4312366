package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/njg37/video-generator-backend/internal/domain"
	"github.com/njg37/video-generator-backend/internal/http/handlers"
	"github.com/njg37/video-generator-backend/internal/infra"
	"github.com/njg37/video-generator-backend/internal/pipeline"
	"github.com/rs/zerolog"
)

type noopGenerator struct{}

func (noopGenerator) Generate(context.Context, pipeline.Request) (*domain.GeneratedVideo, error) {
	return &domain.GeneratedVideo{Name: "output-1.mp4"}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &infra.Config{
		AppEnv:          "test",
		Port:            "0",
		UploadDir:       t.TempDir(),
		OutputDir:       t.TempDir(),
		MaxUploadBytes:  1 << 20,
		RateLimitPerMin: 100,
		ThemeSource:     infra.ThemeSourceLibrary,
	}
	logger := zerolog.Nop()
	app := handlers.NewApp(cfg, logger, noopGenerator{}, nil, nil, nil)
	return NewRouter(app, cfg, logger, nil)
}

func TestRouterHealthz(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRouterThemeList(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/theme", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterUnknownRouteIs404InDevelopment(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/definitely/not/here", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
