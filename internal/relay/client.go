package relay

import (
	"errors"
	"sync"
	"time"

	"chatrelay/internal/config"
	"chatrelay/pkg/logger"

	"github.com/gorilla/websocket"
)

// Client adapts a gorilla websocket connection to the relay's Session
// interface. Outbound events are buffered in send and drained by the write
// pump; a full buffer means the peer is not keeping up.
type Client struct {
	ws    *websocket.Conn
	relay *Relay
	cfg   config.RelayConfig

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

func NewClient(rl *Relay, ws *websocket.Conn, cfg config.RelayConfig) *Client {
	return &Client{
		ws:    ws,
		relay: rl,
		cfg:   cfg,
		send:  make(chan []byte, cfg.SendBufferSize),
	}
}

// Deliver queues an event for the write pump without blocking.
func (c *Client) Deliver(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("session closed")
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

// Close shuts the outbound channel once; the write pump then sends the
// websocket close frame and exits.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// ReadPump processes inbound events in receipt order until the transport
// errors out, then runs the connection's disconnect cleanup.
func (c *Client) ReadPump(conn *Conn) {
	defer func() {
		c.relay.Disconnect(conn.ID)
		c.ws.Close()
	}()

	c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
		return nil
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket error: %v", err)
			}
			break
		}
		c.relay.HandleEvent(conn, message)
	}
}

// WritePump drains the send buffer to the socket and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Error("Write error: %v", err)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
