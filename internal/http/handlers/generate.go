package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/njg37/video-generator-backend/internal/domain"
	"github.com/njg37/video-generator-backend/internal/pipeline"
)

type generateJSONRequest struct {
	// AudioFile mirrors the legacy payload where clients sent the uploaded
	// file's name under "audioFile".
	AudioFile     string `json:"audioFile"`
	AudioFilename string `json:"audioFilename"`
	Theme         string `json:"theme"`
}

type generateResponse struct {
	Message string `json:"message"`
	Video   string `json:"video"`
}

// Generate handles POST /api/generate. The body is either multipart form data
// with an inline "audioFile" part, or JSON referencing a previous upload by
// name. Either way a "theme" is required.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.Cfg.MaxUploadBytes)

	req, err := a.parseGenerateRequest(r)
	if err != nil {
		a.pipelineError(w, err)
		return
	}

	start := time.Now()
	video, err := a.Pipeline.Generate(r.Context(), req)
	if err != nil {
		a.pipelineError(w, err)
		return
	}

	a.recordGeneration(r, req, video.Name, time.Since(start))
	a.json(w, http.StatusOK, generateResponse{
		Message: "Video generated successfully",
		Video:   video.Name,
	})
}

func (a *App) parseGenerateRequest(r *http.Request) (pipeline.Request, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if strings.HasPrefix(mediaType, "multipart/") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return pipeline.Request{}, errTooLargeOrMalformed(err)
		}
		req := pipeline.Request{
			Theme:         r.FormValue("theme"),
			AudioFilename: r.FormValue("audioFilename"),
		}
		file, header, err := r.FormFile("audioFile")
		if err == nil {
			req.Upload = file
			req.UploadName = filepath.Base(header.Filename)
		}
		return req, nil
	}

	var body generateJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return pipeline.Request{}, errTooLargeOrMalformed(err)
	}
	filename := body.AudioFilename
	if filename == "" {
		filename = body.AudioFile
	}
	return pipeline.Request{AudioFilename: filename, Theme: body.Theme}, nil
}

// errTooLargeOrMalformed keeps oversized uploads distinguishable from plain
// bad payloads while both land on the missing-input response.
func errTooLargeOrMalformed(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return domain.ErrStorage
	}
	return domain.ErrMissingInput
}

// recordGeneration writes one history row when the store is enabled. History
// is best-effort and never fails the response.
func (a *App) recordGeneration(r *http.Request, req pipeline.Request, videoName string, elapsed time.Duration) {
	if a.History == nil || !a.History.Enabled() {
		return
	}
	audioKey := req.AudioFilename
	if audioKey == "" {
		audioKey = req.UploadName
	}
	gen := domain.Generation{
		Theme:     req.Theme,
		Source:    a.Cfg.ThemeSource,
		AudioKey:  audioKey,
		VideoName: videoName,
		Elapsed:   elapsed,
	}
	if err := a.History.Record(r.Context(), gen); err != nil {
		a.Logger.Warn().Err(err).Msg("failed to record generation history")
	}
}

// GenerationHistory handles GET /api/generate/history.
func (a *App) GenerationHistory(w http.ResponseWriter, r *http.Request) {
	if a.History == nil || !a.History.Enabled() {
		a.error(w, http.StatusNotFound, "Generation history is not enabled", "")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := a.History.List(r.Context(), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("failed to list generation history")
		a.error(w, http.StatusInternalServerError, "Failed to load history", "")
		return
	}
	type historyItem struct {
		ID        string    `json:"id"`
		Theme     string    `json:"theme"`
		Source    string    `json:"source"`
		AudioKey  string    `json:"audioKey"`
		Video     string    `json:"video"`
		ElapsedMS int64     `json:"elapsedMs"`
		CreatedAt time.Time `json:"createdAt"`
	}
	out := make([]historyItem, 0, len(items))
	for _, gen := range items {
		out = append(out, historyItem{
			ID:        gen.ID,
			Theme:     gen.Theme,
			Source:    gen.Source,
			AudioKey:  gen.AudioKey,
			Video:     gen.VideoName,
			ElapsedMS: gen.Elapsed.Milliseconds(),
			CreatedAt: gen.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": out})
}
