package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/rnet/internal/logging"
	"github.com/muurk/rnet/internal/protocol"
	"github.com/muurk/rnet/internal/session"
)

// DefaultShutdownTimeout bounds graceful shutdown
const DefaultShutdownTimeout = 10 * time.Second

// Config holds the server configuration
type Config struct {
	Listen string    // host:port to listen on
	Labels LabelFunc // Optional zone labels for /zones
	// Status reports bus session state for /healthz. Optional.
	Status func() session.Stats
}

// Server streams zone updates over WebSocket and serves the zone snapshot.
// It is a protocol.Consumer.
type Server struct {
	config   Config
	hub      *Hub
	state    *StateCache
	started  time.Time
	listener net.Listener
	http     *http.Server
}

// New creates a new Server instance
func New(config Config) *Server {
	s := &Server{
		config:  config,
		hub:     NewHub(),
		state:   NewStateCache(config.Labels),
		started: time.Now(),
	}

	mux := http.NewServeMux()
	mux.Handle("GET /ws", s.hub)
	mux.HandleFunc("GET /zones", s.handleZones)
	mux.HandleFunc("GET /zones/{controller}/{zone}", s.handleZone)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.http = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// HandleUpdate records update and broadcasts it to stream clients
func (s *Server) HandleUpdate(update protocol.ZoneStateUpdate) {
	s.state.Apply(update)

	msg, err := json.Marshal(update)
	if err != nil {
		logging.Error("Failed to encode zone update",
			zap.Stringer("zone", update.Zone),
			zap.Error(err),
		)
		return
	}
	s.hub.Broadcast(msg)
}

// State returns the zone state cache
func (s *Server) State() *StateCache { return s.state }

// Clients returns the number of connected stream clients
func (s *Server) Clients() int { return s.hub.Len() }

// Listen binds the configured address. Start calls it when needed.
func (s *Server) Listen() error {
	if s.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Port returns the bound TCP port, or 0 before Listen
func (s *Server) Port() int {
	if tcp, ok := s.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}

// Start serves until ctx is done, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	logging.Info("Update stream server listening",
		zap.String("addr", s.listener.Addr().String()),
	)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.http.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down update stream server...")

	// Hijacked WebSocket connections are not tracked by http.Server
	s.hub.Close()

	if err := s.http.Shutdown(ctx); err != nil {
		logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		return s.http.Close()
	}
	return nil
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

func (s *Server) handleZone(w http.ResponseWriter, r *http.Request) {
	controller, err1 := strconv.Atoi(r.PathValue("controller"))
	zone, err2 := strconv.Atoi(r.PathValue("zone"))
	if err1 != nil || err2 != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "controller and zone must be numbers"})
		return
	}

	st, ok := s.state.Zone(protocol.ZoneID{Controller: controller, Zone: zone})
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "zone not seen yet"})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type healthResponse struct {
	Status  string         `json:"status"`
	Uptime  string         `json:"uptime"`
	Clients int            `json:"clients"`
	Zones   int            `json:"zones"`
	Session *session.Stats `json:"session,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		Uptime:  time.Since(s.started).Truncate(time.Second).String(),
		Clients: s.hub.Len(),
		Zones:   s.state.Len(),
	}
	code := http.StatusOK

	if s.config.Status != nil {
		stats := s.config.Status()
		resp.Session = &stats
		if !stats.Connected {
			resp.Status = "disconnected"
			code = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("Failed to write response", zap.Error(err))
	}
}
