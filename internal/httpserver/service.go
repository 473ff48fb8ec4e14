package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Archie-bot-stack/Archie/internal/logger"
)

// Server is the lifecycle of an *http.Server.
type Server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// Service runs a Server under a suture supervisor.
type Service struct {
	server          Server
	shutdownTimeout time.Duration
}

// New returns a service listening on addr with the health and metrics router.
func New(addr string, db Pinger) *Service {
	return NewService(&http.Server{
		Addr:              addr,
		Handler:           NewRouter(db),
		ReadHeaderTimeout: 10 * time.Second,
	}, 10*time.Second)
}

// NewService wraps server. A non-positive shutdownTimeout means ten seconds.
func NewService(server Server, shutdownTimeout time.Duration) *Service {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &Service{server: server, shutdownTimeout: shutdownTimeout}
}

// Serve listens until ctx is done, then shuts the server down.
func (s *Service) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		logger.Debug("HTTP server stopped")
		return ctx.Err()
	}
}

func (s *Service) String() string {
	return "http-server"
}
