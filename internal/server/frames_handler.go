// Package server serves archived frames and live websocket previews.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/noisegen/internal/archive"
)

// FramesHandler serves frames from an archive database.
type FramesHandler struct {
	reader       *archive.Reader
	meta         archive.Metadata
	logger       *slog.Logger
	cacheControl string
}

// FramesConfig configures the frames handler.
type FramesConfig struct {
	ArchivePath  string
	CacheControl string
}

// NewFramesHandler opens the archive at cfg.ArchivePath.
func NewFramesHandler(cfg FramesConfig, logger *slog.Logger) (*FramesHandler, error) {
	reader, err := archive.OpenReader(cfg.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	meta, err := reader.Metadata()
	if err != nil {
		reader.Close()
		return nil, fmt.Errorf("failed to read archive metadata: %w", err)
	}

	return &FramesHandler{
		reader:       reader,
		meta:         meta,
		logger:       logger,
		cacheControl: cfg.CacheControl,
	}, nil
}

// Handler returns the HTTP handler function.
func (h *FramesHandler) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/frames" || r.URL.Path == "/frames/" {
			h.serveIndex(w)
			return
		}
		h.serveFrame(w, r)
	}
}

type framesIndex struct {
	Name       string `json:"name,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Format     string `json:"format,omitempty"`
	Resolution int    `json:"resolution,omitempty"`
	IntervalMS int64  `json:"intervalMs,omitempty"`
	Seed       int64  `json:"seed,omitempty"`
	Family     string `json:"family,omitempty"`
	Gradient   string `json:"gradient,omitempty"`
	Frames     int    `json:"frames"`
}

func (h *FramesHandler) serveIndex(w http.ResponseWriter) {
	count, err := h.reader.FrameCount()
	if err != nil {
		h.log().Error("Failed to count frames", "error", err)
		http.Error(w, "Archive unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", h.cacheControl)
	err = json.NewEncoder(w).Encode(framesIndex{
		Name:       h.meta.Name,
		Kind:       h.meta.Kind,
		Format:     h.meta.Format,
		Resolution: h.meta.Resolution,
		IntervalMS: h.meta.Interval.Milliseconds(),
		Seed:       h.meta.Seed,
		Family:     h.meta.Family,
		Gradient:   h.meta.Gradient,
		Frames:     count,
	})
	if err != nil {
		h.log().Error("Failed to write response", "error", err)
	}
}

func (h *FramesHandler) serveFrame(w http.ResponseWriter, r *http.Request) {
	index, ok := parseFramePath(r.URL.Path, h.meta.Format)
	if !ok {
		http.NotFound(w, r)
		return
	}

	frame, err := h.reader.ReadFrame(index)
	if err != nil {
		if errors.Is(err, archive.ErrFrameNotFound) {
			http.Error(w, "Frame not found", http.StatusNotFound)
			return
		}
		h.log().Error("Failed to read frame", "index", index, "error", err)
		http.Error(w, "Archive unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", h.cacheControl)
	w.Header().Set("Content-Type", h.meta.ContentType())
	w.Header().Set("X-Frame-Elapsed-Ms", strconv.FormatInt(frame.Elapsed.Milliseconds(), 10))

	if _, err := w.Write(frame.Data); err != nil {
		h.log().Error("Failed to write response", "error", err)
	}
}

// Close closes the archive reader.
func (h *FramesHandler) Close() error {
	return h.reader.Close()
}

func (h *FramesHandler) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

// parseFramePath parses /frames/12 or /frames/12.png. The extension, when
// present, must match the archive format.
func parseFramePath(requestPath, format string) (int, bool) {
	if !strings.HasPrefix(requestPath, "/frames/") {
		return 0, false
	}

	name := path.Base(requestPath)
	if ext := path.Ext(name); ext != "" {
		if format == "" || ext != "."+format {
			return 0, false
		}
		name = strings.TrimSuffix(name, ext)
	}

	index, err := strconv.Atoi(name)
	if err != nil || index < 0 {
		return 0, false
	}
	return index, true
}
