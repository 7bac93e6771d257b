// Package server exposes a running engine over HTTP: Prometheus metrics, the
// latest frame as JSON, and a websocket stream of every frame.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/zeusync/xrig/internal/core/events/bus"
	"github.com/zeusync/xrig/internal/core/observability/log"
	"github.com/zeusync/xrig/internal/sim"
)

// Engine is the part of sim.Engine the server reads from.
type Engine interface {
	Snapshot() sim.Frame
	Bus() bus.EventBus
	MetricsHandler() http.Handler
}

// Config holds server configuration
type Config struct {
	ListenAddr        string
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	ShutdownTimeout   time.Duration
	// ClientBuffer is how many frames may queue per websocket client before
	// it is dropped.
	ClientBuffer int
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() Config {
	return Config{
		ListenAddr:        "127.0.0.1:8080",
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      2 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		ClientBuffer:      64,
	}
}

func (c Config) validate() error {
	switch {
	case c.ListenAddr == "":
		return fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	case c.ClientBuffer < 1:
		return fmt.Errorf("%w: client buffer must be positive", ErrInvalidConfig)
	case c.WriteTimeout <= 0:
		return fmt.Errorf("%w: write timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

type Server struct {
	config Config
	engine Engine
	logger log.Log
	hub    *hub

	http *http.Server
	sub  bus.Subscription

	running int32 // atomic bool
	closed  int32 // atomic bool
}

func NewServer(config Config, engine Engine, logger log.Log) (*Server, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.With(log.String("component", "server"))

	s := &Server{
		config: config,
		engine: engine,
		logger: logger,
		hub:    newHub(config.ClientBuffer, config.WriteTimeout, logger),
	}
	s.http = &http.Server{
		Addr:              config.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	sub, err := engine.Bus().Subscribe(sim.EventFrame, s.onFrame)
	if err != nil {
		return nil, err
	}
	s.sub = sub

	s.logger.Info("Server created", log.String("listen_addr", config.ListenAddr))
	return s, nil
}

// Handler routes /metrics, /snapshot, /ws and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.engine.MetricsHandler())
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.HandleFunc("/ws", s.hub.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// Clients is the number of connected websocket clients.
func (s *Server) Clients() int { return s.hub.len() }

// Start listens and serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		s.logger.Error("Failed to listen", log.Error(err))
		return err
	}
	s.logger.Info("Server listening", log.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- s.http.Serve(ln) }()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting connections, drops websocket clients and detaches
// from the engine bus. Calling it twice is a no-op.
func (s *Server) Shutdown(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	s.logger.Info("Stopping server")

	var all error
	if s.sub != nil {
		all = errors.Join(all, s.sub.Cancel())
	}
	s.hub.closeAll()
	if err := s.http.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		all = errors.Join(all, err)
	}
	atomic.StoreInt32(&s.running, 0)

	s.logger.Info("Server stopped")
	return all
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.engine.Snapshot()); err != nil {
		s.logger.Warn("Failed to write snapshot", log.Error(err))
	}
}

// onFrame runs on the engine goroutine; it only encodes and enqueues.
func (s *Server) onFrame(ev bus.Event) error {
	frame, ok := ev.Data().(sim.Frame)
	if !ok {
		return fmt.Errorf("unexpected %s payload %T", ev.Type(), ev.Data())
	}
	b, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	s.hub.broadcast(b)
	return nil
}
