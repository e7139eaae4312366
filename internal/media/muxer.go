package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/njg37/video-generator-backend/internal/domain"
	"github.com/njg37/video-generator-backend/internal/infra"
	"github.com/rs/zerolog"
)

// Options configures the Muxer.
type Options struct {
	FFmpegPath string
	// VideoCodec is "copy" to keep the theme's video stream as-is or "h264"
	// to re-encode with libx264.
	VideoCodec string
	// AudioCodec is the target audio codec, normally "aac".
	AudioCodec string
	Timeout    time.Duration
	Logger     *infra.Logger
}

// Muxer combines the video stream of one file with the audio stream of
// another by shelling out to ffmpeg.
type Muxer struct {
	ffmpegPath string
	videoCodec string
	audioCodec string
	timeout    time.Duration
	logger     infra.Logger
}

// NewMuxer constructs a Muxer with sane defaults.
func NewMuxer(opts Options) *Muxer {
	ffmpegPath := strings.TrimSpace(opts.FFmpegPath)
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	videoCodec := opts.VideoCodec
	if videoCodec == "" {
		videoCodec = "copy"
	}
	audioCodec := opts.AudioCodec
	if audioCodec == "" {
		audioCodec = "aac"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Muxer{
		ffmpegPath: ffmpegPath,
		videoCodec: videoCodec,
		audioCodec: audioCodec,
		timeout:    timeout,
		logger:     logger,
	}
}

// Args builds the ffmpeg argument vector for muxing themePath's video stream
// with audioPath's audio stream into outputPath. Streams are mapped
// explicitly so the theme file's own audio track never leaks into the
// output, and -shortest caps the result at the shorter input.
func (m *Muxer) Args(themePath, audioPath, outputPath string) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", themePath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
	}

	if m.videoCodec == "copy" {
		args = append(args, "-c:v", "copy")
	} else {
		args = append(args, "-c:v", "libx264", "-preset", "fast", "-pix_fmt", "yuv420p")
	}

	args = append(args,
		"-c:a", m.audioCodec,
		"-shortest",
		"-y",
		outputPath,
	)
	return args
}

// Mux runs ffmpeg and blocks until the process finishes. A non-zero exit
// surfaces as domain.ErrTranscode carrying the process's stderr; exceeding
// the configured timeout surfaces as domain.ErrTimeout.
func (m *Muxer) Mux(ctx context.Context, themePath, audioPath, outputPath string) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	args := m.Args(themePath, audioPath, outputPath)
	m.logger.Debug().Strs("args", args).Msg("ffmpeg: muxing")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, m.ffmpegPath, args...)
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: ffmpeg exceeded %s", domain.ErrTimeout, m.timeout)
	}

	diag := strings.TrimSpace(stderr.String())
	if diag == "" {
		diag = err.Error()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("%w: ffmpeg exited %d: %s", domain.ErrTranscode, exitErr.ExitCode(), diag)
	}
	return fmt.Errorf("%w: ffmpeg failed to start: %s", domain.ErrTranscode, diag)
}
