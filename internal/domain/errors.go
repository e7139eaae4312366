package domain

import "errors"

// Pipeline error kinds. Each stage fails fast with exactly one of these;
// handlers classify with errors.Is to pick the HTTP status.
var (
	ErrMissingInput  = errors.New("missing input")
	ErrAssetNotFound = errors.New("asset not found")
	ErrNoResults     = errors.New("no search results")
	ErrDownload      = errors.New("download failed")
	ErrStorage       = errors.New("storage failure")
	ErrTranscode     = errors.New("transcode failure")
	ErrTimeout       = errors.New("operation timed out")
)
