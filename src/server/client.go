package server

import (
	"context"
	"encoding/json"
	"time"

	"market-dashboard/src/models"
	"market-dashboard/src/pipeline"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	maxPending     = 16
)

// -----------------------------------------------------------------------------
// Client Structure
// -----------------------------------------------------------------------------

// Client is one websocket connection with its own dashboard session.
// Events are handled one at a time in arrival order by eventPump, so reads
// (and pong handling) continue while a render is running.
type Client struct {
	hub     *DashboardServer
	conn    *websocket.Conn
	session *pipeline.Session
	events  chan models.MSessionEvent
	send    chan models.MSessionReply
	ctx     context.Context
	cancel  context.CancelFunc
}

// -----------------------------------------------------------------------------
// readPump - decodes events and queues them for eventPump
// -----------------------------------------------------------------------------

func (c *Client) readPump() {
	defer func() {
		c.cancel()
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
		c.hub.Logger.Debug("Client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.Logger.Info("WebSocket error: %v", err)
			}
			return
		}

		var ev models.MSessionEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			if !c.reply(models.MSessionReply{Error: "invalid event: " + err.Error()}) {
				return
			}
			continue
		}

		select {
		case c.events <- ev:
		default:
			if !c.reply(models.MSessionReply{Event: ev.Event, Error: "too many pending events"}) {
				return
			}
		}
	}
}

// -----------------------------------------------------------------------------
// eventPump - runs queued events against the session
// -----------------------------------------------------------------------------

func (c *Client) eventPump() {
	for {
		select {
		case ev := <-c.events:
			if !c.reply(c.session.Handle(c.ctx, ev)) {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

// reply queues r for writePump; false once the client is gone.
func (c *Client) reply(r models.MSessionReply) bool {
	select {
	case c.send <- r:
		return true
	case <-c.ctx.Done():
		return false
	}
}

// -----------------------------------------------------------------------------
// writePump - sends replies and keeps the connection alive
// -----------------------------------------------------------------------------

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case reply := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(reply); err != nil {
				c.hub.Logger.Info("Write error: %v", err)
				c.cancel()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				return
			}

		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
