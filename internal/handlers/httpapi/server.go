// Package httpapi exposes the muster operations to the presentation
// layer as a JSON API, plus a websocket bridge that streams change-feed
// notifications to connected marshals.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/firewatch/muster/internal/services/muster"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Config holds configuration for the API server
type Config struct {
	// Addr is the listen address
	Addr string

	// MusterService executes the operations
	MusterService muster.Service

	// RedisClient backs websocket feed subscriptions
	RedisClient *redis.Client

	// Logger for request and feed lifecycle events
	Logger zerolog.Logger
}

// Server is the HTTP API server
type Server struct {
	service muster.Service
	redis   *redis.Client
	logger  zerolog.Logger
	httpSrv *http.Server
}

// New creates the API server and registers its routes
func New(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.MusterService == nil {
		return nil, errors.New("muster service cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	s := &Server{
		service: cfg.MusterService,
		redis:   cfg.RedisClient,
		logger:  cfg.Logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/marshals", s.handleListMarshals)
	mux.HandleFunc("POST /api/marshals", s.handleAddMarshal)
	mux.HandleFunc("DELETE /api/marshals/{id}", s.handleRemoveMarshal)

	mux.HandleFunc("GET /api/employees", s.handleListEmployees)
	mux.HandleFunc("POST /api/employees", s.handleAddEmployee)
	mux.HandleFunc("DELETE /api/employees/{id}", s.handleRemoveEmployee)

	mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	mux.HandleFunc("POST /api/sessions", s.handleStartDrill)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("POST /api/sessions/{id}/stop", s.handleStopDrill)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)

	mux.HandleFunc("GET /api/sessions/{id}/attendance", s.handleLoadAttendance)
	mux.HandleFunc("PUT /api/sessions/{id}/attendance/{employee_id}", s.handleUpsertAttendance)
	mux.HandleFunc("POST /api/sessions/{id}/attendance/{employee_id}/cycle", s.handleCycleStatus)

	mux.HandleFunc("GET /api/sessions/{id}/report", s.handleReport)

	mux.HandleFunc("GET /ws", s.handleFeed)

	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Start serves until Stop is called
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpSrv.Addr).Msg("muster API listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the listener down
func (s *Server) Stop(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
