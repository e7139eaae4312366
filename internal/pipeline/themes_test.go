package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/njg37/video-generator-backend/internal/domain"
	"github.com/njg37/video-generator-backend/internal/providers/pexels"
	"github.com/njg37/video-generator-backend/internal/storage"
	"github.com/rs/zerolog"
)

func TestKnownThemes(t *testing.T) {
	themes := KnownThemes()
	want := []string{"Default", "Neon", "Retro", "Minimalistic"}
	if len(themes) != len(want) {
		t.Fatalf("themes = %v, want %v", themes, want)
	}
	for i := range want {
		if themes[i] != want[i] {
			t.Fatalf("themes[%d] = %q, want %q", i, themes[i], want[i])
		}
	}
}

func TestIsKnownTheme(t *testing.T) {
	if !IsKnownTheme("Neon") || !IsKnownTheme("neon") {
		t.Fatalf("Neon should be known in any case")
	}
	if IsKnownTheme("space battle") {
		t.Fatalf("space battle should not be known")
	}
}

func TestSearchQuery(t *testing.T) {
	if got := SearchQuery("Neon"); got != "neon city lights at night" {
		t.Fatalf("SearchQuery(Neon) = %q", got)
	}
	if got := SearchQuery("space battle"); got != "space battle" {
		t.Fatalf("unrecognized theme should search its own text, got %q", got)
	}
}

func TestLibrarySourceResolve(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "neon.mp4"), []byte("video"), 0o644); err != nil {
		t.Fatalf("write theme: %v", err)
	}
	source := NewLibrarySource(dir)

	asset, err := source.Resolve(context.Background(), domain.ThemeRequest{Name: "Neon"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if asset.Scratch {
		t.Fatalf("library assets are not scratch files")
	}
	if filepath.Base(asset.Path) != "neon.mp4" {
		t.Fatalf("path = %q, want neon.mp4", asset.Path)
	}

	if _, err := source.Resolve(context.Background(), domain.ThemeRequest{Name: "vaporwave"}); !errors.Is(err, domain.ErrAssetNotFound) {
		t.Fatalf("unknown theme err = %v, want ErrAssetNotFound", err)
	}
}

func TestLibrarySourceRejectsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "retro.mp4"), nil, 0o644); err != nil {
		t.Fatalf("write theme: %v", err)
	}
	source := NewLibrarySource(dir)
	if _, err := source.Resolve(context.Background(), domain.ThemeRequest{Name: "retro"}); !errors.Is(err, domain.ErrAssetNotFound) {
		t.Fatalf("empty theme file err = %v, want ErrAssetNotFound", err)
	}
}

type okValidator struct{}

func (okValidator) ValidateVideo(context.Context, string) error { return nil }

func newPexelsTestSource(t *testing.T, handler http.HandlerFunc) (*PexelsSource, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := pexels.NewClient(pexels.Options{APIKey: "test", BaseURL: srv.URL})
	scratch, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return NewPexelsSource(client, scratch, okValidator{}, 10*time.Second, zerolog.Nop()), srv
}

func TestPexelsSourceNoResults(t *testing.T) {
	source, _ := newPexelsTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total_results": 0, "videos": []}`))
	})

	_, err := source.Resolve(context.Background(), domain.ThemeRequest{Name: "space battle"})
	if !errors.Is(err, domain.ErrNoResults) {
		t.Fatalf("err = %v, want ErrNoResults", err)
	}
}

func TestPexelsSourceDownloadsScratchAsset(t *testing.T) {
	var srvURL string
	source, srv := newPexelsTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/videos/search") {
			_, _ = w.Write([]byte(`{"total_results": 1, "videos": [{
				"id": 1, "duration": 30,
				"video_files": [{"link": "` + srvURL + `/file.mp4", "quality": "hd", "file_type": "video/mp4"}]
			}]}`))
			return
		}
		_, _ = w.Write([]byte("theme-bytes"))
	})
	srvURL = srv.URL

	asset, err := source.Resolve(context.Background(), domain.ThemeRequest{Name: "neon"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !asset.Scratch {
		t.Fatalf("downloaded asset should be scratch")
	}
	data, err := os.ReadFile(asset.Path)
	if err != nil {
		t.Fatalf("read scratch: %v", err)
	}
	if string(data) != "theme-bytes" {
		t.Fatalf("scratch content mismatch: %q", data)
	}
}

func TestPexelsSourceRetriesTransientSearchFailure(t *testing.T) {
	var calls int
	var srvURL string
	source, srv := newPexelsTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/videos/search") {
			calls++
			if calls == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`{"total_results": 1, "videos": [{
				"id": 1, "duration": 30,
				"video_files": [{"link": "` + srvURL + `/file.mp4", "quality": "hd", "file_type": "video/mp4"}]
			}]}`))
			return
		}
		_, _ = w.Write([]byte("theme-bytes"))
	})
	srvURL = srv.URL

	if _, err := source.Resolve(context.Background(), domain.ThemeRequest{Name: "neon"}); err != nil {
		t.Fatalf("Resolve should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Fatalf("search calls = %d, want 2", calls)
	}
}

func TestPexelsSourceResolveURL(t *testing.T) {
	source, _ := newPexelsTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total_results": 1, "videos": [{
			"id": 1, "duration": 30,
			"video_files": [{"link": "https://cdn.example.com/hd.mp4", "quality": "hd", "file_type": "video/mp4"}]
		}]}`))
	})

	url, err := source.ResolveURL(context.Background(), "neon")
	if err != nil {
		t.Fatalf("ResolveURL: %v", err)
	}
	if url != "https://cdn.example.com/hd.mp4" {
		t.Fatalf("url = %q", url)
	}
}
