package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/njg37/video-generator-backend/internal/domain"
	"github.com/njg37/video-generator-backend/internal/storage"
	"github.com/rs/zerolog"
)

// muxer combines a theme video with an audio track into one output file.
type muxer interface {
	Mux(ctx context.Context, themePath, audioPath, outputPath string) error
}

// Request carries one generation request into the pipeline. Exactly one of
// Upload or AudioFilename references the audio track.
type Request struct {
	// Upload is an inline audio file to stage into the uploads area.
	Upload io.Reader
	// UploadName is the original file name of the inline upload.
	UploadName string
	// AudioFilename references a previously uploaded file by name.
	AudioFilename string
	Theme         string
}

// Generator runs the media-assembly pipeline: resolve inputs, acquire a theme
// asset, mux, report. Stateless across requests; every run owns its own
// scratch and output paths.
type Generator struct {
	uploads *storage.FileStore
	outputs *storage.FileStore
	themes  ThemeSource
	muxer   muxer
	logger  zerolog.Logger
}

// NewGenerator wires the pipeline stages together.
func NewGenerator(uploads, outputs *storage.FileStore, themes ThemeSource, m muxer, logger zerolog.Logger) *Generator {
	return &Generator{
		uploads: uploads,
		outputs: outputs,
		themes:  themes,
		muxer:   m,
		logger:  logger,
	}
}

// Generate runs one pipeline pass and returns the output artifact. Scratch
// files created along the way (a staged inline upload, a downloaded theme
// clip) are deleted before returning, on both the success and failure paths.
func (g *Generator) Generate(ctx context.Context, req Request) (*domain.GeneratedVideo, error) {
	if strings.TrimSpace(req.Theme) == "" || (req.Upload == nil && strings.TrimSpace(req.AudioFilename) == "") {
		return nil, fmt.Errorf("%w: audio file and theme are required", domain.ErrMissingInput)
	}

	audio, err := g.resolveAudio(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if audio.Staged {
			g.cleanup(audio.Path)
		}
	}()

	theme, err := g.themes.Resolve(ctx, domain.ThemeRequest{Name: req.Theme})
	if err != nil {
		return nil, err
	}
	defer func() {
		if theme.Scratch {
			g.cleanup(theme.Path)
		}
	}()

	name := outputName()
	outputPath, err := g.outputs.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	if err := g.muxer.Mux(ctx, theme.Path, audio.Path, outputPath); err != nil {
		return nil, err
	}

	g.logger.Info().
		Str("theme", req.Theme).
		Str("audio", audio.StorageKey).
		Str("video", name).
		Msg("pipeline: generated video")

	return &domain.GeneratedVideo{Name: name, Path: outputPath, CreatedAt: time.Now()}, nil
}

// resolveAudio stages an inline upload or resolves a filename reference.
// Filename references are existence-checked here; an inline upload was just
// written so only its persist can fail.
func (g *Generator) resolveAudio(req Request) (domain.AudioAsset, error) {
	if req.Upload != nil {
		name := strings.TrimSpace(req.UploadName)
		if name == "" {
			name = "upload-" + uuid.NewString() + ".mp3"
		}
		key, n, err := g.uploads.Save(name, req.Upload)
		if err != nil {
			return domain.AudioAsset{}, fmt.Errorf("%w: persist upload: %v", domain.ErrStorage, err)
		}
		path, err := g.uploads.Resolve(key)
		if err != nil {
			return domain.AudioAsset{}, fmt.Errorf("%w: %v", domain.ErrStorage, err)
		}
		return domain.AudioAsset{StorageKey: key, Path: path, SizeBytes: n, Staged: true}, nil
	}

	key := strings.TrimSpace(req.AudioFilename)
	size, err := g.uploads.Stat(key)
	if err != nil || size == 0 {
		return domain.AudioAsset{}, fmt.Errorf("%w: audio file %q", domain.ErrAssetNotFound, key)
	}
	path, err := g.uploads.Resolve(key)
	if err != nil {
		return domain.AudioAsset{}, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return domain.AudioAsset{StorageKey: key, Path: path, SizeBytes: size}, nil
}

// cleanup is best-effort; a failed delete is logged, never propagated.
func (g *Generator) cleanup(path string) {
	if err := g.outputs.Remove(path); err != nil {
		g.logger.Warn().Err(err).Str("path", path).Msg("pipeline: scratch cleanup failed")
	}
}

// outputName derives a unique, time-based output file name. The uuid fragment
// keeps two requests landing in the same millisecond apart.
func outputName() string {
	return fmt.Sprintf("output-%d-%s.mp4", time.Now().UnixMilli(), uuid.NewString()[:8])
}
