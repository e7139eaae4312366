package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/njg37/video-generator-backend/internal/domain"
	"github.com/njg37/video-generator-backend/internal/providers/pexels"
	"github.com/njg37/video-generator-backend/internal/storage"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ThemeSource resolves a theme request to a background video on local disk.
type ThemeSource interface {
	Resolve(ctx context.Context, req domain.ThemeRequest) (domain.ThemeAsset, error)
}

// knownThemes are the theme names offered by the theme listing endpoint.
var knownThemes = []string{"default", "neon", "retro", "minimalistic"}

// searchQueries maps known theme names to stock-footage search phrases.
var searchQueries = map[string]string{
	"default":      "abstract colorful background",
	"neon":         "neon city lights at night",
	"retro":        "retro vintage aesthetic",
	"minimalistic": "minimal clean background",
}

// KnownThemes returns the display-cased theme list.
func KnownThemes() []string {
	caser := cases.Title(language.Und)
	return lo.Map(knownThemes, func(name string, _ int) string {
		return caser.String(name)
	})
}

// IsKnownTheme reports whether name is in the static theme list.
func IsKnownTheme(name string) bool {
	return lo.ContainsBy(knownThemes, func(t string) bool {
		return strings.EqualFold(t, name)
	})
}

// SearchQuery maps a theme label to a search phrase. Unrecognized themes fall
// through to their own text so free-form labels still search something useful.
func SearchQuery(theme string) string {
	theme = strings.TrimSpace(theme)
	if q, ok := searchQueries[strings.ToLower(theme)]; ok {
		return q
	}
	return theme
}

// LibrarySource resolves themes against a fixed local directory of
// <theme>.mp4 files. No network, no scratch files.
type LibrarySource struct {
	dir string
}

// NewLibrarySource constructs a LibrarySource rooted at dir.
func NewLibrarySource(dir string) *LibrarySource {
	return &LibrarySource{dir: dir}
}

func (s *LibrarySource) Resolve(_ context.Context, req domain.ThemeRequest) (domain.ThemeAsset, error) {
	name := strings.ToLower(strings.TrimSpace(req.Name)) + ".mp4"
	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return domain.ThemeAsset{}, fmt.Errorf("%w: theme %q", domain.ErrAssetNotFound, req.Name)
	}
	return domain.ThemeAsset{Path: path}, nil
}

var _ ThemeSource = (*LibrarySource)(nil)

// videoValidator checks a downloaded file decodes as video.
type videoValidator interface {
	ValidateVideo(ctx context.Context, path string) error
}

// PexelsSource resolves themes by searching a stock-footage provider and
// downloading the first hit to a scratch path.
type PexelsSource struct {
	client   *pexels.Client
	scratch  *storage.FileStore
	prober   videoValidator
	timeout  time.Duration
	attempts int
	backoff  time.Duration
	logger   zerolog.Logger
}

// NewPexelsSource wires a Pexels client with a scratch store and prober.
// Remote calls get a bounded timeout and one retry with backoff; a zero-hit
// search is authoritative and never retried.
func NewPexelsSource(client *pexels.Client, scratch *storage.FileStore, prober videoValidator, timeout time.Duration, logger zerolog.Logger) *PexelsSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PexelsSource{
		client:   client,
		scratch:  scratch,
		prober:   prober,
		timeout:  timeout,
		attempts: 2,
		backoff:  500 * time.Millisecond,
		logger:   logger,
	}
}

func (s *PexelsSource) Resolve(ctx context.Context, req domain.ThemeRequest) (domain.ThemeAsset, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	video, err := s.search(ctx, SearchQuery(req.Name))
	if err != nil {
		return domain.ThemeAsset{}, err
	}

	dest := s.scratch.ScratchPath("theme", ".mp4")
	if err := s.client.Download(ctx, video.FileURL, dest); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return domain.ThemeAsset{}, fmt.Errorf("%w: theme download exceeded %s", domain.ErrTimeout, s.timeout)
		}
		return domain.ThemeAsset{}, fmt.Errorf("%w: %v", domain.ErrDownload, err)
	}

	if info, err := os.Stat(dest); err != nil || info.Size() == 0 {
		_ = s.scratch.Remove(dest)
		return domain.ThemeAsset{}, fmt.Errorf("%w: downloaded theme file is missing or empty", domain.ErrDownload)
	}
	if s.prober != nil {
		if err := s.prober.ValidateVideo(ctx, dest); err != nil {
			_ = s.scratch.Remove(dest)
			return domain.ThemeAsset{}, fmt.Errorf("%w: downloaded theme is not decodable: %v", domain.ErrDownload, err)
		}
	}

	return domain.ThemeAsset{Path: dest, Scratch: true, SourceURL: video.FileURL}, nil
}

// ResolveURL returns the remote video URL for a theme without downloading it.
// Backs the GET /api/theme/{theme} route.
func (s *PexelsSource) ResolveURL(ctx context.Context, theme string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	video, err := s.search(ctx, SearchQuery(theme))
	if err != nil {
		return "", err
	}
	return video.FileURL, nil
}

func (s *PexelsSource) search(ctx context.Context, query string) (pexels.Video, error) {
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		videos, err := s.client.SearchVideos(ctx, query, 1)
		if err == nil {
			return videos[0], nil
		}
		if errors.Is(err, pexels.ErrNoVideos) {
			return pexels.Video{}, fmt.Errorf("%w: query %q", domain.ErrNoResults, query)
		}
		if ctx.Err() == context.DeadlineExceeded {
			return pexels.Video{}, fmt.Errorf("%w: theme search exceeded %s", domain.ErrTimeout, s.timeout)
		}
		lastErr = err
		if attempt < s.attempts {
			s.logger.Warn().Err(err).Int("attempt", attempt).Str("query", query).Msg("theme search failed, retrying")
			select {
			case <-time.After(time.Duration(attempt) * s.backoff):
			case <-ctx.Done():
				return pexels.Video{}, fmt.Errorf("%w: theme search exceeded %s", domain.ErrTimeout, s.timeout)
			}
		}
	}
	return pexels.Video{}, fmt.Errorf("%w: %v", domain.ErrDownload, lastErr)
}

var _ ThemeSource = (*PexelsSource)(nil)
