package handlers

import (
	"context"
	"net/http"
	"time"

	"drawguess/internal/logger"

	"github.com/gin-gonic/gin"
)

const pingTimeout = 3 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db       Pinger
	version  string
	started  time.Time
	sessions func() int
}

// NewHealthHandler builds the probe handlers. sessions reports the number of
// live game sessions and may be nil.
func NewHealthHandler(db Pinger, version string, sessions func() int) *HealthHandler {
	return &HealthHandler{
		db:       db,
		version:  version,
		started:  time.Now(),
		sessions: sessions,
	}
}

type ReadinessResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Uptime       string `json:"uptime"`
	Database     string `json:"database"`
	GameSessions *int   `json:"game_sessions,omitempty"`
}

// Liveness answers as long as the process serves HTTP.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness reports whether the database answers, with the number of live games.
func (h *HealthHandler) Readiness(c *gin.Context) {
	resp := ReadinessResponse{
		Status:   "ready",
		Version:  h.version,
		Uptime:   time.Since(h.started).Round(time.Second).String(),
		Database: "up",
	}
	if h.sessions != nil {
		n := h.sessions()
		resp.GameSessions = &n
	}

	code := http.StatusOK
	if err := h.ping(c.Request.Context()); err != nil {
		resp.Status = "not ready"
		resp.Database = "down"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

// Health is the short form of Readiness.
func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

func (h *HealthHandler) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := h.db.Ping(ctx)
	if err != nil {
		logger.Warn("database ping failed", "error", err)
	}
	return err
}
