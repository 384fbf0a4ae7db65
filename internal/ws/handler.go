package ws

import (
	"net/http"

	"drawguess/internal/logger"
	"drawguess/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

type Options struct {
	AllowedOrigin string
	EventsPerSec  float64
	EventBurst    int
}

// HandleWS authenticates the ?token= query, upgrades the request and
// serves the connection with router.
func HandleWS(router *Router, opts Options) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if opts.AllowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == opts.AllowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		login, err := service.ParseJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "login", login, "error", err)
			return
		}

		var limiter *rate.Limiter
		if opts.EventsPerSec > 0 {
			limiter = rate.NewLimiter(rate.Limit(opts.EventsPerSec), opts.EventBurst)
		}

		client := NewClient(login, conn, router, limiter)
		logger.Info("ws connected", "login", login, "conn_id", client.ID())

		go func() {
			wsConnections.Inc()
			defer wsConnections.Dec()

			client.Run()
			logger.Info("ws disconnected", "login", login, "conn_id", client.ID())
		}()
	}
}
