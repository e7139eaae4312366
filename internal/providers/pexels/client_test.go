package pexels

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestSearchVideosPicksHDFile(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"total_results": 1,
			"videos": [{
				"id": 857195,
				"duration": 30,
				"video_files": [
					{"link": "https://cdn.example.com/sd.mp4", "quality": "sd", "file_type": "video/mp4", "width": 640, "height": 360},
					{"link": "https://cdn.example.com/hd.mp4", "quality": "hd", "file_type": "video/mp4", "width": 1920, "height": 1080}
				]
			}]
		}`))
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "test-key", BaseURL: srv.URL})
	videos, err := client.SearchVideos(context.Background(), "neon city lights", 1)
	if err != nil {
		t.Fatalf("SearchVideos: %v", err)
	}
	if gotAuth != "test-key" {
		t.Fatalf("Authorization = %q, want %q", gotAuth, "test-key")
	}
	if gotQuery != "neon city lights" {
		t.Fatalf("query = %q, want %q", gotQuery, "neon city lights")
	}
	if len(videos) != 1 {
		t.Fatalf("len(videos) = %d, want 1", len(videos))
	}
	if videos[0].FileURL != "https://cdn.example.com/hd.mp4" {
		t.Fatalf("FileURL = %q, want the hd rendition", videos[0].FileURL)
	}
	if videos[0].Duration != 30 {
		t.Fatalf("Duration = %d, want 30", videos[0].Duration)
	}
}

func TestSearchVideosNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total_results": 0, "videos": []}`))
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "test-key", BaseURL: srv.URL})
	_, err := client.SearchVideos(context.Background(), "space battle", 1)
	if !errors.Is(err, ErrNoVideos) {
		t.Fatalf("err = %v, want ErrNoVideos", err)
	}
}

func TestSearchVideosRequiresAPIKey(t *testing.T) {
	client := NewClient(Options{})
	_, err := client.SearchVideos(context.Background(), "anything", 1)
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestDownloadWritesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fake-video-bytes"))
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "test-key"})
	dest := filepath.Join(t.TempDir(), "scratch.mp4")
	if err := client.Download(context.Background(), srv.URL+"/video.mp4", dest); err != nil {
		t.Fatalf("Download: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read scratch: %v", err)
	}
	if string(data) != "fake-video-bytes" {
		t.Fatalf("content mismatch: %q", data)
	}
}

func TestDownloadRemovesPartialOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "test-key"})
	dest := filepath.Join(t.TempDir(), "scratch.mp4")
	if err := client.Download(context.Background(), srv.URL+"/video.mp4", dest); err == nil {
		t.Fatalf("expected error for 404 download")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("partial file should not exist: %v", err)
	}
}

func TestDownloadRejectsEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "test-key"})
	dest := filepath.Join(t.TempDir(), "scratch.mp4")
	if err := client.Download(context.Background(), srv.URL+"/video.mp4", dest); err == nil {
		t.Fatalf("expected error for empty download")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("empty file should have been removed: %v", err)
	}
}
