package network

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/avidal-games/complot/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The game server sits behind same-origin deployments; cross-origin
	// clients are allowed for local development builds.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Client represents one active WebSocket connection.
type Client struct {
	hub            *Hub
	conn           *websocket.Conn
	send           chan []byte
	lastActionTime time.Time
}

// NewClient wraps an upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, hub.opts.SendBuffer),
	}
}

// ServeWS upgrades an HTTP request and starts the client pumps.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Error("WebSocket upgrade failed: " + err.Error())
		metrics.Get().RecordWSError()
		return
	}
	client := NewClient(hub, conn)
	client.Register()
	go client.WritePump()
	go client.ReadPump()
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump pumps action frames from the websocket connection to the session.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
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
				c.hub.logger.Warn("WebSocket read error: " + err.Error())
				metrics.Get().RecordWSError()
			}
			break
		}
		metrics.Get().RecordWSMessage(true)

		var frame ActionFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			c.hub.logger.Error("Failed to parse action frame: " + err.Error())
			continue
		}
		c.handleActionFrame(frame)
	}
}

// handleActionFrame throttles, validates and dispatches one player action.
// Rejections go back to this client only; applied results reach everyone via
// the hub's session observer.
func (c *Client) handleActionFrame(frame ActionFrame) {
	if min := c.hub.opts.MinActionInterval; min > 0 && time.Since(c.lastActionTime) < min {
		c.hub.logger.Warn("Rate limit exceeded for action " + frame.Type)
		return
	}
	c.lastActionTime = time.Now()

	act, ok := frame.toAction()
	if !ok {
		c.hub.logger.Warn("Refused action frame type: " + frame.Type)
		c.sendFrame(ServerFrame{Type: FrameRejected, Action: frame.Type})
		return
	}

	res := c.hub.session.Dispatch(act)
	if res.Rejected {
		c.sendFrame(ServerFrame{Type: FrameRejected, Action: string(act.Type)})
	}
}

// sendFrame queues a frame for this client only. Dropped when the client's
// queue is full; the hub will disconnect it on the next broadcast anyway.
func (c *Client) sendFrame(f ServerFrame) {
	payload, err := json.Marshal(f)
	if err != nil {
		c.hub.logger.Error("Failed to serialize frame: " + err.Error())
		return
	}
	select {
	case c.send <- payload:
		metrics.Get().RecordWSMessage(false)
	default:
	}
}

// WritePump pumps queued frames from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
