// Package server hosts the HTTP API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/tanglenotes/tangle/internal/observability"
	"github.com/tanglenotes/tangle/internal/profile"
	tanglemw "github.com/tanglenotes/tangle/server/middleware"
	apiv1 "github.com/tanglenotes/tangle/server/router/api/v1"
	"github.com/tanglenotes/tangle/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	s := &Server{
		Profile: profile,
		Store:   store,
	}

	echoServer := echo.New()
	echoServer.Debug = true
	echoServer.HideBanner = true
	echoServer.HidePort = true

	echoServer.Use(middleware.Recover())
	echoServer.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}))
	echoServer.Use(requestContextMiddleware())
	echoServer.Use(tanglemw.NewRateLimiter(10, 20).Middleware())

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	apiV1Service := apiv1.NewAPIV1Service(profile, store)
	apiV1Service.RegisterRoutes(echoServer)

	s.echoServer = echoServer
	return s, nil
}

func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "address", address, "mode", s.Profile.Mode, "driver", s.Profile.Driver)
	if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to start echo server")
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}

	slog.Info("server stopped")
}

// requestContextMiddleware attaches a request-scoped logger with a request
// id and logs each request on completion.
func requestContextMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rc := observability.NewRequestContext(slog.Default(), req.Method+" "+c.Path())
			c.SetRequest(req.WithContext(observability.WithRequestContext(req.Context(), rc)))

			err := next(c)

			rc.Info("request completed",
				"status", c.Response().Status,
				observability.LogFieldDuration, rc.DurationMs())
			return err
		}
	}
}
