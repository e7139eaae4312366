package media

import (
	"slices"
	"testing"
)

func TestArgsMapStreamsExplicitly(t *testing.T) {
	m := NewMuxer(Options{VideoCodec: "copy", AudioCodec: "aac"})
	args := m.Args("themes/neon.mp4", "uploads/song.mp3", "uploads/output-1.mp4")

	wantPairs := [][2]string{
		{"-i", "themes/neon.mp4"},
		{"-i", "uploads/song.mp3"},
		{"-map", "0:v:0"},
		{"-map", "1:a:0"},
		{"-c:v", "copy"},
		{"-c:a", "aac"},
	}
	for _, pair := range wantPairs {
		if !hasPair(args, pair[0], pair[1]) {
			t.Fatalf("args missing %q %q: %v", pair[0], pair[1], args)
		}
	}
	if !slices.Contains(args, "-shortest") {
		t.Fatalf("args missing -shortest: %v", args)
	}
	if args[len(args)-1] != "uploads/output-1.mp4" {
		t.Fatalf("output path should be last arg, got %q", args[len(args)-1])
	}

	// The first -map must select the theme input's video; the theme's own
	// audio track must never be mapped.
	if hasPair(args, "-map", "0:a:0") {
		t.Fatalf("theme audio stream must not be mapped: %v", args)
	}
}

func TestArgsReencodeVideo(t *testing.T) {
	m := NewMuxer(Options{VideoCodec: "h264", AudioCodec: "aac"})
	args := m.Args("a.mp4", "b.mp3", "out.mp4")

	if !hasPair(args, "-c:v", "libx264") {
		t.Fatalf("h264 policy should use libx264: %v", args)
	}
	if hasPair(args, "-c:v", "copy") {
		t.Fatalf("h264 policy should not copy video: %v", args)
	}
}

func TestArgsDefaults(t *testing.T) {
	m := NewMuxer(Options{})
	args := m.Args("a.mp4", "b.mp3", "out.mp4")
	if !hasPair(args, "-c:v", "copy") || !hasPair(args, "-c:a", "aac") {
		t.Fatalf("default codecs should be copy/aac: %v", args)
	}
}

func hasPair(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}
