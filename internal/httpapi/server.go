// Package httpapi is netopscore's HTTP surface: an echo router wiring
// every resource handler through the auth/request-id/rate-limit
// middleware chain onto the service packages. Echo lifecycle (this
// file) is kept separate from route registration (router.go) and DI
// wiring (cmd/netopscore).
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"netopscore/internal/apperrors"
)

// Config holds server-level knobs independent of any one handler.
type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Development  bool
}

// DefaultConfig returns sane development-mode server defaults.
func DefaultConfig() Config {
	return Config{
		Port:         "8080",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// Server wraps an echo.Echo instance with lifecycle management.
type Server struct {
	Echo   *echo.Echo
	Config Config
}

// New builds a Server, installs the base middleware chain and error
// handler, and registers every resource route from deps.
func New(cfg Config, deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler

	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout
	e.Server.IdleTimeout = cfg.IdleTimeout

	e.Use(echomw.Recover())
	e.Use(deps.middlewares()...)

	registerRoutes(e, deps)

	return &Server{Echo: e, Config: cfg}
}

// Start runs the server and blocks until a SIGINT/SIGTERM triggers
// graceful shutdown; shutdownFn runs first to release non-HTTP
// resources (db handle, blob store, event bus).
func (s *Server) Start(shutdownFn func(ctx context.Context)) {
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("netopscore: shutting down gracefully...")

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if shutdownFn != nil {
			shutdownFn(ctx)
		}
		if err := s.Echo.Shutdown(ctx); err != nil {
			log.Fatalf("netopscore: could not gracefully shutdown: %v", err)
		}
		close(done)
	}()

	addr := fmt.Sprintf("0.0.0.0:%s", s.Config.Port)
	if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("netopscore: could not listen on %s: %v", addr, err)
	}

	<-done
	log.Println("netopscore: stopped")
}
