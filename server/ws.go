package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

// Message is a websocket chat frame.
type Message struct {
	Type    string      `json:"type"`
	Content string      `json:"content"`
	Data    interface{} `json:"data,omitempty"`
}

// handleWebSocket runs the same query pipeline as POST /chat over a
// persistent connection. Messages are handled sequentially per
// connection; the upgrader owns the connection after this point.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := s.tenant(r)
	if userID == "" {
		respondError(w, http.StatusBadRequest, "No User ID provided")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("websocket read failed", zap.Error(err))
			}
			break
		}

		if msg.Content == "" {
			s.sendMessage(conn, Message{Type: "error", Content: "missing message"})
			continue
		}

		state, err := s.agent.Run(r.Context(), msg.Content, userID)
		if err != nil {
			s.logger.Error("websocket chat failed",
				zap.String("user_id", userID),
				zap.Error(err))
			s.sendMessage(conn, Message{Type: "error", Content: "failed to generate a response"})
			continue
		}

		s.sendMessage(conn, Message{
			Type:    "response",
			Content: state.Answer,
			Data:    map[string]string{"tool": state.Tool},
		})
	}
}

func (s *Server) sendMessage(conn *websocket.Conn, msg Message) {
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Warn("websocket write failed", zap.Error(err))
	}
}
