package gateway

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/bridgeware/agentbridge/internal/domain"
	"github.com/bridgeware/agentbridge/internal/platform"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The gateway fronts browser and service clients alike; the API key
	// middleware already gates the route.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsFrame is one message pushed to a websocket client during a streamed turn.
type wsFrame struct {
	Type string `json:"type"`

	// Delta carries incremental assistant text for "delta" frames.
	Delta string `json:"delta,omitempty"`

	// Status is the run status for "run_status" frames.
	Status string `json:"status,omitempty"`

	// Step names the run step for "step" frames.
	Step string `json:"step,omitempty"`

	// Result is the completed turn for the final "result" frame.
	Result *domain.TurnResult `json:"result,omitempty"`

	// Error is set on "error" frames.
	Error string `json:"error,omitempty"`
}

// ChatWS streams a persisted turn over a websocket. The client sends one
// ChatTurnRequest frame and receives event frames until a terminal "result"
// or "error" frame closes the exchange.
func (s *Server) ChatWS(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil // Upgrade already wrote the error response.
	}
	defer conn.Close()

	var req domain.ChatTurnRequest
	if err := conn.ReadJSON(&req); err != nil {
		conn.WriteJSON(wsFrame{Type: "error", Error: "malformed request frame"})
		return nil
	}

	ctx := c.Request().Context()
	result, err := s.orch.ChatStream(ctx, req, func(ev platform.RunEvent) {
		frame, ok := frameFor(ev)
		if !ok {
			return
		}
		if err := conn.WriteJSON(frame); err != nil {
			s.log.Debug().Err(err).Msg("websocket write failed")
		}
	})
	if err != nil {
		conn.WriteJSON(wsFrame{Type: "error", Error: err.Error()})
		return nil
	}

	conn.WriteJSON(wsFrame{Type: "result", Result: result})
	return nil
}

func frameFor(ev platform.RunEvent) (wsFrame, bool) {
	switch ev.Kind {
	case platform.EventMessageDelta:
		return wsFrame{Type: "delta", Delta: ev.Delta}, true
	case platform.EventRunStatus:
		return wsFrame{Type: "run_status", Status: string(ev.Run.Status)}, true
	case platform.EventRunStep:
		return wsFrame{Type: "step", Step: ev.Step}, true
	default:
		return wsFrame{}, false
	}
}
