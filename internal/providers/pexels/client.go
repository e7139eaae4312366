package pexels

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/njg37/video-generator-backend/internal/infra"
	"github.com/rs/zerolog"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("pexels: api key is required")

// ErrNoVideos indicates the search matched nothing.
var ErrNoVideos = errors.New("pexels: no videos found")

// Options configures the Pexels video search client.
type Options struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the Pexels videos API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     infra.Logger
}

// Video is one search hit, reduced to what the pipeline needs.
type Video struct {
	ID       int64
	Duration int
	FileURL  string
	Width    int
	Height   int
}

type searchResponse struct {
	TotalResults int          `json:"total_results"`
	Videos       []videoEntry `json:"videos"`
}

type videoEntry struct {
	ID         int64       `json:"id"`
	Duration   int         `json:"duration"`
	VideoFiles []videoFile `json:"video_files"`
}

type videoFile struct {
	Link     string `json:"link"`
	Quality  string `json:"quality"`
	FileType string `json:"file_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// NewClient constructs a client with sane defaults.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.pexels.com"
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// SearchVideos queries the videos search endpoint and returns up to perPage
// hits. A zero-hit search returns ErrNoVideos.
func (c *Client) SearchVideos(ctx context.Context, query string, perPage int) ([]Video, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("pexels: query is required")
	}
	if perPage <= 0 {
		perPage = 1
	}

	endpoint := c.baseURL + "/videos/search?" + url.Values{
		"query":    {query},
		"per_page": {strconv.Itoa(perPage)},
	}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("pexels: build request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pexels: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pexels: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pexels: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded searchResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("pexels: decode response: %w", err)
	}
	if len(decoded.Videos) == 0 {
		return nil, ErrNoVideos
	}

	videos := make([]Video, 0, len(decoded.Videos))
	for _, entry := range decoded.Videos {
		file := pickFile(entry.VideoFiles)
		if file.Link == "" {
			continue
		}
		videos = append(videos, Video{
			ID:       entry.ID,
			Duration: entry.Duration,
			FileURL:  file.Link,
			Width:    file.Width,
			Height:   file.Height,
		})
	}
	if len(videos) == 0 {
		return nil, ErrNoVideos
	}
	c.logger.Debug().Str("query", query).Int("hits", len(videos)).Msg("pexels: search")
	return videos, nil
}

// Download streams the video file at fileURL to destPath. The destination is
// removed on any failure so a partial file is never left behind.
func (c *Client) Download(ctx context.Context, fileURL, destPath string) (err error) {
	parsed, perr := url.Parse(strings.TrimSpace(fileURL))
	if perr != nil || parsed.Scheme == "" {
		return fmt.Errorf("pexels: invalid video url: %s", fileURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return fmt.Errorf("pexels: build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pexels: download video: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("pexels: download status %d", resp.StatusCode)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("pexels: create scratch file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(destPath)
		}
	}()

	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("pexels: write scratch file: %w", err)
	}
	if n == 0 {
		err = fmt.Errorf("pexels: downloaded file is empty")
		return err
	}
	c.logger.Debug().Str("url", parsed.String()).Int64("bytes", n).Msg("pexels: downloaded video")
	return nil
}

// pickFile prefers an HD mp4 rendition, falling back to the first usable link.
func pickFile(files []videoFile) videoFile {
	var fallback videoFile
	for _, f := range files {
		if f.Link == "" {
			continue
		}
		if f.Quality == "hd" && strings.Contains(f.FileType, "mp4") {
			return f
		}
		if fallback.Link == "" {
			fallback = f
		}
	}
	return fallback
}
