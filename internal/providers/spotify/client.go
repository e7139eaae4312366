package spotify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/njg37/video-generator-backend/internal/infra"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	spotifyauth "golang.org/x/oauth2/spotify"
)

// ErrMissingCredentials indicates the relay was configured without a client
// id/secret pair.
var ErrMissingCredentials = errors.New("spotify: client credentials are required")

// Scopes requested during the authorization-code flow.
var Scopes = []string{"user-read-private", "user-read-email", "playlist-read-private"}

// Options configures the Spotify relay client.
type Options struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	APIBaseURL   string
	HTTPClient   *http.Client
	Logger       *infra.Logger
}

// Client relays Spotify OAuth flows and track search for the frontend. It
// holds no tokens itself; callers own their access/refresh tokens.
type Client struct {
	oauthCfg   *oauth2.Config
	ccCfg      *clientcredentials.Config
	apiBaseURL string
	httpClient *http.Client
	logger     infra.Logger
}

// Track is the trimmed search result shape returned to the frontend.
type Track struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	PreviewURL string `json:"previewUrl"`
	ImageURL   string `json:"imageUrl"`
}

// NewClient constructs a relay client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	apiBaseURL := strings.TrimRight(opts.APIBaseURL, "/")
	if apiBaseURL == "" {
		apiBaseURL = "https://api.spotify.com/v1"
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		oauthCfg: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURI,
			Scopes:       Scopes,
			Endpoint:     spotifyauth.Endpoint,
		},
		ccCfg: &clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     spotifyauth.Endpoint.TokenURL,
		},
		apiBaseURL: apiBaseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// HasCredentials reports whether the relay can perform token exchanges.
func (c *Client) HasCredentials() bool {
	return c.oauthCfg.ClientID != "" && c.oauthCfg.ClientSecret != ""
}

// AuthorizeURL builds the provider authorization URL for the login redirect.
func (c *Client) AuthorizeURL(state string) string {
	return c.oauthCfg.AuthCodeURL(state)
}

// Exchange trades an authorization code for access and refresh tokens.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingCredentials
	}
	token, err := c.oauthCfg.Exchange(c.oauthContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("spotify: exchange code: %w", err)
	}
	return token, nil
}

// Refresh trades a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingCredentials
	}
	src := c.oauthCfg.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("spotify: refresh token: %w", err)
	}
	return token, nil
}

// ClientToken issues a client-credentials access token for server-side calls.
func (c *Client) ClientToken(ctx context.Context) (*oauth2.Token, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingCredentials
	}
	token, err := c.ccCfg.Token(c.oauthContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("spotify: client credentials token: %w", err)
	}
	return token, nil
}

// SearchTracks proxies the Web API search endpoint with the caller's bearer
// token and trims the response down to the fields the frontend renders.
func (c *Client) SearchTracks(ctx context.Context, accessToken, query, searchType string, limit int) ([]Track, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("spotify: query is required")
	}
	if searchType == "" {
		searchType = "track"
	}
	if limit <= 0 {
		limit = 10
	}

	endpoint := c.apiBaseURL + "/search?" + url.Values{
		"q":     {query},
		"type":  {searchType},
		"limit": {strconv.Itoa(limit)},
	}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("spotify: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("spotify: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("spotify: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	items := gjson.GetBytes(raw, "tracks.items")
	tracks := make([]Track, 0, limit)
	items.ForEach(func(_, item gjson.Result) bool {
		tracks = append(tracks, Track{
			ID:         item.Get("id").String(),
			Name:       item.Get("name").String(),
			Artist:     item.Get("artists.0.name").String(),
			Album:      item.Get("album.name").String(),
			PreviewURL: item.Get("preview_url").String(),
			ImageURL:   item.Get("album.images.0.url").String(),
		})
		return true
	})
	c.logger.Debug().Str("query", query).Int("tracks", len(tracks)).Msg("spotify: search")
	return tracks, nil
}

// oauthContext injects the configured HTTP client so token exchanges honor
// its timeout and tests can stub the transport.
func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}
