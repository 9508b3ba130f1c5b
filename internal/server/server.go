// Package server owns the HTTP server and the resources that live as long as it does.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"gitlab.com/dirk.krummacker/contacts-api/internal/config"
)

type Server struct {
	Config *config.Config
	Logger zerolog.Logger
	DB     *sqlx.DB

	httpServer *http.Server
}

func New(cfg *config.Config, logger zerolog.Logger, db *sqlx.DB) *Server {
	return &Server{
		Config: cfg,
		Logger: logger,
		DB:     db,
	}
}

// SetupHTTPServer wraps handler with the CORS policy and prepares the HTTP server.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         s.Config.Server.Address(),
		Handler:      CORS(s.Config.Server.CORSAllowedOrigins).Handler(handler),
		ReadTimeout:  s.Config.Server.ReadTimeout,
		WriteTimeout: s.Config.Server.WriteTimeout,
		IdleTimeout:  s.Config.Server.IdleTimeout,
	}
}

// CORS returns the CORS policy for the given origins. Without origins, cross-origin requests are not
// allowed at all.
func CORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})
}

// Start blocks until the server stops. It returns nil if the server was shut down.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}
	s.Logger.Info().
		Str("address", s.httpServer.Addr).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown waits for active requests to finish and then closes the database.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}
	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}
