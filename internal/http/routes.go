package http

import (
	"drawguess/internal/config"
	"drawguess/internal/http/handlers"
	"drawguess/internal/http/middleware"
	"drawguess/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Handler *handlers.Handler
	Health  *handlers.HealthHandler
	Router  *ws.Router
}

func RegisterRoutes(r *gin.Engine, d Deps, cfg *config.Config) {
	r.Use(cors.New(corsConfig(cfg.AllowedOrigin)))

	// Health checks (no rate limiting)
	r.GET("/health", d.Health.Health)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	authRL := middleware.RedisRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow)
	api.POST("/register", authRL, d.Handler.Register)
	api.POST("/login", authRL, d.Handler.Login)

	api.GET("/me", middleware.JWT(), d.Handler.Me)
	api.POST("/change", middleware.JWT(), middleware.LoginRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow), d.Handler.Change)
	api.GET("/best", d.Handler.Best)

	r.GET("/ws", ws.HandleWS(d.Router, ws.Options{
		AllowedOrigin: cfg.AllowedOrigin,
		EventsPerSec:  cfg.WSEventsPerSec,
		EventBurst:    cfg.WSEventBurst,
	}))
}

func corsConfig(allowedOrigin string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	c.AllowCredentials = true
	if allowedOrigin == "" {
		c.AllowOriginFunc = func(string) bool { return true }
	} else {
		c.AllowOrigins = []string{allowedOrigin}
	}
	return c
}
