// Package server exposes the planner as a JSON API
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/username/shift-calendar/internal/planner"
	"go.uber.org/zap"
)

// Server is the HTTP front end of the calendar
type Server struct {
	manager         *planner.Manager
	router          *mux.Router
	addr            string
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// New creates a server and registers every route
func New(manager *planner.Manager, addr string, shutdownTimeout time.Duration, logger *zap.Logger) *Server {
	s := &Server{
		manager:         manager,
		router:          mux.NewRouter(),
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
	s.routes()
	return s
}

// Handler returns the root handler (for tests and embedding)
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.health).Methods(http.MethodGet)

	api.HandleFunc("/days/{date}", s.getDay).Methods(http.MethodGet)
	api.HandleFunc("/months/{year:[0-9]+}/{month:[0-9]+}", s.getMonth).Methods(http.MethodGet)
	api.HandleFunc("/holidays/{year:[0-9]+}", s.getHolidays).Methods(http.MethodGet)
	api.HandleFunc("/chargeable", s.getChargeable).Methods(http.MethodGet)
	api.HandleFunc("/stats/{year:[0-9]+}", s.getStats).Methods(http.MethodGet)
	api.HandleFunc("/overview", s.getOverview).Methods(http.MethodGet)

	api.HandleFunc("/vacations", s.postVacation).Methods(http.MethodPost)
	api.HandleFunc("/vacations", s.deleteVacation).Methods(http.MethodDelete)

	api.HandleFunc("/notes/{date}", s.putNote).Methods(http.MethodPut)
	api.HandleFunc("/notes/{date}", s.deleteNote).Methods(http.MethodDelete)

	api.HandleFunc("/important-dates", s.listImportantDates).Methods(http.MethodGet)
	api.HandleFunc("/important-dates", s.postImportantDate).Methods(http.MethodPost)
	api.HandleFunc("/important-dates/{id:[0-9]+}", s.deleteImportantDate).Methods(http.MethodDelete)

	api.HandleFunc("/rotation", s.getRotation).Methods(http.MethodGet)
	api.HandleFunc("/rotation", s.putRotation).Methods(http.MethodPut)
	api.HandleFunc("/rotation/presets", s.getPresets).Methods(http.MethodGet)

	api.HandleFunc("/requests", s.postRequest).Methods(http.MethodPost)
	api.HandleFunc("/decisions", s.postDecision).Methods(http.MethodPost)

	api.HandleFunc("/backup", s.getBackup).Methods(http.MethodGet)
	api.HandleFunc("/backup", s.postRestore).Methods(http.MethodPost)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully within the configured timeout
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(ln)
	}()

	s.logger.Info("HTTP server started", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)

	case <-ctx.Done():
		s.logger.Info("Context cancelled, shutting down")

	case sig := <-sigChan:
		s.logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}
