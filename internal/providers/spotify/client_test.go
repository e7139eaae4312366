package spotify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestAuthorizeURL(t *testing.T) {
	client := NewClient(Options{
		ClientID:     "cid",
		ClientSecret: "secret",
		RedirectURI:  "http://localhost:5000/api/spotify/callback",
	})

	raw := client.AuthorizeURL("state-123")
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse authorize url: %v", err)
	}
	if parsed.Host != "accounts.spotify.com" {
		t.Fatalf("host = %q, want accounts.spotify.com", parsed.Host)
	}
	q := parsed.Query()
	if q.Get("client_id") != "cid" {
		t.Fatalf("client_id = %q, want cid", q.Get("client_id"))
	}
	if q.Get("response_type") != "code" {
		t.Fatalf("response_type = %q, want code", q.Get("response_type"))
	}
	if q.Get("redirect_uri") != "http://localhost:5000/api/spotify/callback" {
		t.Fatalf("redirect_uri = %q", q.Get("redirect_uri"))
	}
	if !strings.Contains(q.Get("scope"), "playlist-read-private") {
		t.Fatalf("scope = %q, want playlist-read-private included", q.Get("scope"))
	}
}

func TestSearchTracksTrimsResponse(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Query().Get("q") != "daft punk" {
			t.Errorf("q = %q, want daft punk", r.URL.Query().Get("q"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"tracks": {"items": [{
				"id": "t1",
				"name": "One More Time",
				"artists": [{"name": "Daft Punk"}],
				"album": {
					"name": "Discovery",
					"images": [{"url": "https://img.example.com/cover.jpg"}]
				},
				"preview_url": "https://cdn.example.com/preview.mp3"
			}]}
		}`))
	}))
	defer srv.Close()

	client := NewClient(Options{ClientID: "cid", ClientSecret: "secret", APIBaseURL: srv.URL})
	tracks, err := client.SearchTracks(context.Background(), "user-token", "daft punk", "", 0)
	if err != nil {
		t.Fatalf("SearchTracks: %v", err)
	}
	if gotAuth != "Bearer user-token" {
		t.Fatalf("Authorization = %q, want bearer passthrough", gotAuth)
	}
	if len(tracks) != 1 {
		t.Fatalf("len(tracks) = %d, want 1", len(tracks))
	}
	want := Track{
		ID:         "t1",
		Name:       "One More Time",
		Artist:     "Daft Punk",
		Album:      "Discovery",
		PreviewURL: "https://cdn.example.com/preview.mp3",
		ImageURL:   "https://img.example.com/cover.jpg",
	}
	if tracks[0] != want {
		t.Fatalf("track = %+v, want %+v", tracks[0], want)
	}
}

func TestExchangeRequiresCredentials(t *testing.T) {
	client := NewClient(Options{})
	if _, err := client.Exchange(context.Background(), "code"); err == nil {
		t.Fatalf("expected error without credentials")
	}
}
