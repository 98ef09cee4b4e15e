package server

import (
	"context"
	"net/http"

	"market-dashboard/src/models"
	"market-dashboard/src/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// runHub owns the client set. On shutdown it closes every connection, which ends
// each client's pumps.
func (s *DashboardServer) runHub() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.connections.Store(int64(len(s.clients)))

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				s.connections.Store(int64(len(s.clients)))
			}

		case <-s.done:
			for client := range s.clients {
				client.conn.Close()
				delete(s.clients, client)
			}
			s.connections.Store(0)
			return
		}
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		hub:     s,
		conn:    conn,
		session: pipeline.NewSession(s.Dashboard),
		events:  make(chan models.MSessionEvent, maxPending),
		send:    make(chan models.MSessionReply, maxPending),
		ctx:     ctx,
		cancel:  cancel,
	}

	select {
	case s.register <- client:
	case <-s.done:
		cancel()
		conn.Close()
		return
	}

	go client.writePump()
	go client.eventPump()
	go client.readPump()
}
