package gateway

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bridgeware/agentbridge/internal/agent"
	"github.com/bridgeware/agentbridge/internal/domain"
	"github.com/bridgeware/agentbridge/internal/version"
)

// Status reports service health.
func (s *Server) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// Chat runs a turn against the configured agent with thread continuity.
func (s *Server) Chat(c echo.Context) error {
	var req domain.ChatTurnRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}

	result, err := s.orch.ChatPersisted(c.Request().Context(), req)
	if err != nil {
		return s.turnError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"result": result})
}

// ChatDirect runs a turn on a throwaway code-interpreter agent.
func (s *Server) ChatDirect(c echo.Context) error {
	var req domain.ChatTurnRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}

	result, err := s.orch.ChatDirect(c.Request().Context(), req)
	if err != nil {
		return s.turnError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"result": result})
}

// ChatDocs answers a query over multipart-uploaded documents.
func (s *Server) ChatDocs(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "expected multipart form"})
	}

	query := c.FormValue("query")
	var docs []agent.Doc
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable upload " + fh.Filename})
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable upload " + fh.Filename})
		}
		docs = append(docs, agent.Doc{Name: fh.Filename, Data: data})
	}

	text, err := s.orch.ChatDocs(c.Request().Context(), query, docs)
	if err != nil {
		if !s.cfg.Server.StrictErrors {
			return c.JSON(http.StatusOK, map[string]string{"result": "Error: " + err.Error()})
		}
		return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"result": text})
}

// CreateAgent registers an agent definition idempotently by name.
func (s *Server) CreateAgent(c echo.Context) error {
	var req domain.AgentCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}

	created, err := s.orch.RegisterAgent(c.Request().Context(), req)
	if err != nil {
		return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"agent": created})
}

// History lists recent turn audit rows.
func (s *Server) History(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
		}
		limit = n
	}

	turns, err := s.orch.History(c.Request().Context(), c.QueryParam("thread_id"), limit)
	if err != nil {
		return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
	}
	if turns == nil {
		turns = []domain.TurnRecord{}
	}
	return c.JSON(http.StatusOK, map[string]any{"turns": turns})
}

// turnError finishes a failed turn. The legacy contract folds the failure
// into a 200 result body ("Error: <message>"); strict mode maps the error
// taxonomy to status codes.
func (s *Server) turnError(c echo.Context, err error) error {
	if !s.cfg.Server.StrictErrors {
		return c.JSON(http.StatusOK, map[string]any{"result": &domain.TurnResult{
			Content: "Error: " + err.Error(),
		}})
	}
	return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	var (
		valErr *domain.ValidationError
		nfErr  *domain.NotFoundError
		cfgErr *domain.ConfigError
		toErr  *domain.TimeoutError
		runErr *domain.RunFailedError
		remErr *domain.RemoteError
	)
	switch {
	case errors.As(err, &valErr):
		return http.StatusBadRequest
	case errors.As(err, &nfErr):
		return http.StatusNotFound
	case errors.As(err, &toErr):
		return http.StatusGatewayTimeout
	case errors.As(err, &runErr), errors.As(err, &remErr):
		return http.StatusBadGateway
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
