package domain

import "time"

// AudioAsset identifies an uploaded audio file on local disk.
type AudioAsset struct {
	// StorageKey is the file name inside the uploads area.
	StorageKey string
	// Path is the absolute or working-directory-relative location on disk.
	Path      string
	SizeBytes int64
	// Staged marks an inline upload persisted just for this run; staged
	// copies are scratch files and get deleted when the run ends.
	Staged bool
}

// ThemeRequest is the caller-supplied theme label. Free text; the provider
// maps it to a library file name or a stock-footage search query.
type ThemeRequest struct {
	Name string
}

// ThemeAsset is a background video usable as the visual track.
type ThemeAsset struct {
	Path string
	// Scratch marks a freshly downloaded file owned by one pipeline run.
	Scratch bool
	// SourceURL is set when the asset came from a remote search.
	SourceURL string
}

// GeneratedVideo is the pipeline's output artifact.
type GeneratedVideo struct {
	// Name is the public-facing file name (unique, time-derived).
	Name      string
	Path      string
	CreatedAt time.Time
}

// Generation is one recorded pipeline run, persisted by the optional
// history store.
type Generation struct {
	ID        string
	Theme     string
	Source    string
	AudioKey  string
	VideoName string
	Elapsed   time.Duration
	CreatedAt time.Time
}
