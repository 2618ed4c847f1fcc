package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/xhad/rag/internal/logger"
	"github.com/xhad/rag/pkg/rag"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

type Message struct {
	Type    string      `json:"type"`
	Content string      `json:"content"`
	Data    interface{} `json:"data,omitempty"`
}

// WSServer answers queries over a websocket against one provisioned index.
type WSServer struct {
	index  *rag.Index
	logger *logger.Logger
}

func NewWSServer(index *rag.Index, log *logger.Logger) *WSServer {
	return &WSServer{
		index:  index,
		logger: log,
	}
}

// Start serves the websocket endpoint at /ws until the listener fails.
func (s *WSServer) Start(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.logger.Info("Serving queries on ws://%s/ws (collection %s)", addr, s.index.Collection())
	return http.ListenAndServe(addr, mux)
}

func (s *WSServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Error("Error reading message: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			s.logger.Error("Error unmarshaling message: %v", err)
			continue
		}

		if msg.Type != "query" || msg.Content == "" {
			s.writeJSON(conn, Message{Type: "error", Content: "expected a query message"})
			continue
		}

		answer, err := s.index.Query(r.Context(), msg.Content)
		if err != nil {
			s.logger.Error("Query failed: %v", err)
			s.writeJSON(conn, Message{Type: "error", Content: fmt.Sprintf("query failed: %v", err)})
			continue
		}

		s.writeJSON(conn, Message{
			Type:    "answer",
			Content: answer.Text,
			Data:    answer.Sources,
		})
	}
}

func (s *WSServer) writeJSON(conn *websocket.Conn, msg Message) {
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Error("Error writing message: %v", err)
	}
}
