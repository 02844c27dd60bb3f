package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/logging"
)

const (
	wsReadTimeout  = 5 * time.Minute
	wsWriteTimeout = 10 * time.Second
	wsMaxMessage   = 64 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// handlePayoffStream answers each payoff request read from a WebSocket with
// a payoff response, or an error message, until the client disconnects.
func (s *Server) handlePayoffStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		return
	}
	defer conn.Close()

	logger := logging.FromContext(r.Context())
	conn.SetReadLimit(wsMaxMessage)

	for {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn().Err(err).Msg("payoff stream closed")
			}
			return
		}

		var reply interface{}
		var req payoffRequest
		if err := json.Unmarshal(data, &req); err != nil {
			reply = errorResponse{Error: apperrors.NewValidationError("message", nil, err.Error()).Error()}
		} else if resp, err := s.payoff(req); err != nil {
			reply = errorResponse{Error: err.Error()}
		} else {
			reply = resp
		}

		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn().Err(err).Msg("payoff stream write failed")
			return
		}
	}
}
