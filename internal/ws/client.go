package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"drawguess/internal/game"
	"drawguess/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 30 * time.Second
	pingPeriod  = 25 * time.Second
	readLimit   = 64 * 1024
	sendBuffer  = 256
	sendTimeout = 500 * time.Millisecond
)

// Client is one websocket connection of an authenticated login. It
// implements game.Conn.
type Client struct {
	id      string
	login   string
	conn    *websocket.Conn
	send    chan []byte
	router  *Router
	limiter *rate.Limiter

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(login string, conn *websocket.Conn, router *Router, limiter *rate.Limiter) *Client {
	return &Client{
		id:      uuid.NewString(),
		login:   login,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		router:  router,
		limiter: limiter,
		done:    make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) Login() string {
	return c.login
}

// Send queues msg for the write pump. A slow or closed client loses the message.
func (c *Client) Send(msg game.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("ws marshal failed", "type", msg.Type, "error", err)
		return
	}

	select {
	case <-c.done:
		logger.Debug("ws send to closed client", "login", c.login, "type", msg.Type)
	case c.send <- data:
	case <-time.After(sendTimeout):
		logger.Warn("ws send timeout", "login", c.login, "conn_id", c.id, "type", msg.Type)
	}
}

// Run serves the connection until the peer goes away, then tells the
// router so the login's game can be cleaned up.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()

	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	c.router.Disconnect(ctx, c)
}

func (c *Client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws read error", "login", c.login, "error", err)
			}
			return
		}

		if c.limiter != nil && !c.limiter.Allow() {
			wsEventsDropped.Inc()
			logger.Warn("ws event rate exceeded, dropping", "login", c.login, "conn_id", c.id)
			continue
		}

		if err := c.router.Handle(context.Background(), c, raw); err != nil {
			logger.Debug("ws event rejected", "login", c.login, "error", err)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Warn("ws write error", "login", c.login, "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
