package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Prober inspects media files with ffprobe.
type Prober struct {
	ffprobePath string
}

// NewProber constructs a Prober using the given ffprobe binary.
func NewProber(ffprobePath string) *Prober {
	if strings.TrimSpace(ffprobePath) == "" {
		ffprobePath = "ffprobe"
	}
	return &Prober{ffprobePath: ffprobePath}
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

// Duration returns the container duration in seconds.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe: parse duration: %w", err)
	}
	return dur, nil
}

// ValidateVideo reports an error unless path decodes and contains at least
// one video stream.
func (p *Prober) ValidateVideo(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-show_streams",
		"-of", "json",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("ffprobe: %w", err)
	}
	var ff ffprobeOutput
	if err := json.Unmarshal(out, &ff); err != nil {
		return fmt.Errorf("ffprobe: decode output: %w", err)
	}
	for _, s := range ff.Streams {
		if s.CodecType == "video" {
			return nil
		}
	}
	return fmt.Errorf("ffprobe: no video stream in %s", path)
}
