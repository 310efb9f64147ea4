package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	sendBuffer   = 16
)

// Client is one live feed subscriber. The feed is one-way; anything the client sends is discarded.
type Client struct {
	id           uint64
	ws           *websocket.Conn
	send         chan []byte
	done         chan struct{}
	once         sync.Once
	logger       *zap.Logger
	writeTimeout time.Duration
	onClose      func(id uint64)
}

func NewClient(id uint64, ws *websocket.Conn, writeTimeout time.Duration, logger *zap.Logger, onClose func(uint64)) *Client {
	return &Client{
		id:           id,
		ws:           ws,
		send:         make(chan []byte, sendBuffer),
		done:         make(chan struct{}),
		logger:       logger,
		writeTimeout: writeTimeout,
		onClose:      onClose,
	}
}

func (c *Client) ID() uint64 {
	return c.id
}

// Start runs the pumps until the peer goes away or ctx is cancelled.
func (c *Client) Start(ctx context.Context) {
	go c.writePump(ctx)
	c.readPump()
}

func (c *Client) readPump() {
	defer c.Close()
	c.ws.SetReadLimit(4096)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			c.logger.Debug("feed client read closed", zap.Uint64("client_id", c.id), zap.Error(err))
			return
		}
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			c.Close()
			return
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

// Send enqueues msg. Slow clients lose messages instead of blocking the broadcaster.
func (c *Client) Send(msg []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- msg:
	default:
		c.logger.Warn("dropping feed message, buffer full", zap.Uint64("client_id", c.id))
	}
}

func (c *Client) write(messageType int, data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteMessage(messageType, data)
}

// Close is safe to call more than once.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
		if c.onClose != nil {
			c.onClose(c.id)
		}
	})
}
