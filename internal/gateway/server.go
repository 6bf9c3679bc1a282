// Package gateway exposes the agent orchestration core over HTTP.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/bridgeware/agentbridge/internal/agent"
	"github.com/bridgeware/agentbridge/internal/config"
	"github.com/bridgeware/agentbridge/internal/logging"
)

// Server is the HTTP gateway.
type Server struct {
	echo *echo.Echo
	orch *agent.Orchestrator
	cfg  *config.Config
	log  *logging.Logger
}

// NewServer builds the gateway and registers its routes.
func NewServer(orch *agent.Orchestrator, cfg *config.Config, log *logging.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, orch: orch, cfg: cfg, log: log.Sub("gateway")}

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(s.requestLogger())

	e.GET("/status", s.Status)

	agents := e.Group("/agent", keyAuth(cfg.Server.APIKey))
	agents.POST("/chat", s.Chat)
	agents.POST("/chat-direct", s.ChatDirect)
	agents.POST("/chat-docs", s.ChatDocs)
	agents.POST("/chat/create", s.CreateAgent)
	agents.GET("/history", s.History)
	agents.GET("/chat/ws", s.ChatWS)

	return s
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	s.log.Info().Str("addr", addr).Msg("gateway listening")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Msg("request")
			return nil
		},
	})
}
