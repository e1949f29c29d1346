// Package server wires the kiosk backend's HTTP surface: the websocket
// session endpoint, the asset route, health, and metrics.
package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"ramen-kiosk/internal/ledger"
	"ramen-kiosk/internal/metrics"
	"ramen-kiosk/internal/middleware"
	"ramen-kiosk/internal/model"
	"ramen-kiosk/internal/session"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server holds the shared dependencies every session needs: the immutable
// menu config (pre-serialised once) and the pooled ledger.
type Server struct {
	cfg         *model.Config
	configReply []byte
	ledger      ledger.Ledger
	assetDir    string
	logger      zerolog.Logger
	upgrader    websocket.Upgrader
}

// New creates the server. The config is serialised here, once, so every
// config reply for the process lifetime is byte-identical.
func New(cfg *model.Config, led ledger.Ledger, assetDir string, logger zerolog.Logger) (*Server, error) {
	configReply, err := session.EncodeConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to serialise menu config: %w", err)
	}

	return &Server{
		cfg:         cfg,
		configReply: configReply,
		ledger:      led,
		assetDir:    assetDir,
		logger:      logger.With().Str("component", "server").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Kiosks are dedicated devices on the local network, not
			// browsers; origin checks do not apply.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}, nil
}

// Handler returns the full HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/assets/", s.handleAsset)
	mux.HandleFunc("/kiosk", s.handleKiosk)

	var handler http.Handler = mux
	handler = middleware.Logging(s.logger)(handler)
	handler = middleware.Recovery(s.logger)(handler)

	return handler
}

// handleKiosk upgrades the connection and runs one session on it. Each
// accepted connection is an independent unit of concurrency; the http server
// already gives every request its own goroutine.
func (s *Server) handleKiosk(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	metrics.SessionsActive.Inc()
	defer metrics.SessionsActive.Dec()

	sess := session.New(conn, s.cfg, s.configReply, s.ledger, s.logger)
	if err := sess.Run(r.Context()); err != nil {
		// Fatal to this session only; the process and all other
		// sessions carry on.
		s.logger.Warn().
			Err(err).
			Str("session_id", sess.ID().String()).
			Str("remote_addr", r.RemoteAddr).
			Msg("session ended with error")
	}
}

// handleAsset serves raw image bytes for the kiosk prefetcher.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/assets/")
	if name == "" || strings.ContainsAny(name, "/\\") || name == ".." {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, filepath.Join(s.assetDir, name))
}
