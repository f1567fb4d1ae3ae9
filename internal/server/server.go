package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MeKo-Tech/noisegen/internal/clock"
	"github.com/MeKo-Tech/noisegen/internal/noise"
	"github.com/MeKo-Tech/noisegen/internal/terrain"
	"github.com/MeKo-Tech/noisegen/internal/texture"
)

// Config configures the preview server. Nil Texture or Terrain configs
// disable the corresponding stream; an empty ArchivePath disables /frames/.
type Config struct {
	Addr         string
	ArchivePath  string
	CacheControl string
	TickInterval time.Duration
	Seed         int64

	Texture *texture.Config
	Terrain *terrain.Config
}

// Server serves archived frames and live previews driven by a tick loop.
type Server struct {
	cfg    Config
	logger *slog.Logger
	mux    *http.ServeMux

	frames  *FramesHandler
	creator *texture.Creator
	terrain *terrain.Synthesizer
	ticker  clock.Group

	TextureHub *Hub
	TerrainHub *Hub
}

// New builds the handlers and synthesizers. Synthesis starts with Start.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 100 * time.Millisecond
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.ArchivePath != "" {
		frames, err := NewFramesHandler(FramesConfig{
			ArchivePath:  cfg.ArchivePath,
			CacheControl: cfg.CacheControl,
		}, logger)
		if err != nil {
			return nil, err
		}
		s.frames = frames
		s.mux.Handle("/frames", withCORS(frames.Handler()))
		s.mux.Handle("/frames/", withCORS(frames.Handler()))
	}

	table := noise.NewTable(cfg.Seed)
	if cfg.Texture != nil {
		s.TextureHub = NewHub("texture", logger)
		creator, err := texture.New(*cfg.Texture, table, &TextureStream{Hub: s.TextureHub}, logger)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to configure texture stream: %w", err)
		}
		s.creator = creator
		s.ticker = append(s.ticker, creator)
		s.mux.Handle("/stream/texture", s.TextureHub)
	}
	if cfg.Terrain != nil {
		s.TerrainHub = NewHub("terrain", logger)
		synth, err := terrain.New(*cfg.Terrain, table, &TerrainStream{Hub: s.TerrainHub}, logger)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to configure terrain stream: %w", err)
		}
		s.terrain = synth
		s.ticker = append(s.ticker, synth)
		s.mux.Handle("/stream/terrain", s.TerrainHub)
	}

	return s, nil
}

func (s *Server) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.mux }

// Start creates the live synthesizers, publishing their first frame.
func (s *Server) Start() error {
	if s.creator != nil {
		if err := s.creator.Create(); err != nil {
			return fmt.Errorf("failed to create texture: %w", err)
		}
	}
	if s.terrain != nil {
		if err := s.terrain.Create(); err != nil {
			return fmt.Errorf("failed to create terrain: %w", err)
		}
	}
	return nil
}

// Tick advances every live synthesizer by elapsed.
func (s *Server) Tick(elapsed time.Duration) error {
	return s.ticker.Tick(elapsed)
}

// Run starts synthesis and serves HTTP until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}

	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 2)
	if len(s.ticker) > 0 {
		go func() {
			if err := clock.Run(ctx, s.cfg.TickInterval, s); err != nil {
				errCh <- fmt.Errorf("preview tick failed: %w", err)
			}
		}()
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.log().Info("preview server listening",
		"addr", s.cfg.Addr,
		"archive", s.cfg.ArchivePath,
		"texture_stream", s.creator != nil,
		"terrain_stream", s.terrain != nil,
		"tick", s.cfg.TickInterval)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to shut down server: %w", err)
	}
	return runErr
}

// Close releases the archive and synthesizer buffers.
func (s *Server) Close() error {
	if s.creator != nil {
		s.creator.Destroy()
	}
	if s.terrain != nil {
		s.terrain.Destroy()
	}
	if s.frames != nil {
		return s.frames.Close()
	}
	return nil
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
