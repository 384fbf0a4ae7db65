package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"drawguess/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

const redisTimeout = 2 * time.Second

var redisClient *redis.Client

// InitRedisRateLimiter initializes the shared Redis client used by the limiters.
// With an empty addr or an unreachable server the limiters fail open.
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		logger.Info("redis rate limiter disabled")
		return
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, rate limiting disabled", "addr", addr, "error", err)
		_ = client.Close()
		return
	}
	redisClient = client
}

// CloseRedisRateLimiter releases the shared client.
func CloseRedisRateLimiter() {
	if redisClient != nil {
		_ = redisClient.Close()
		redisClient = nil
	}
}

// RedisRateLimit is a fixed-window limiter keyed by client IP.
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return fixedWindow(maxRequests, window, func(c *gin.Context) (string, bool) {
		return "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP(), true
	})
}

// LoginRateLimit is a fixed-window limiter keyed by the authenticated login.
// JWT must run before it.
func LoginRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return fixedWindow(maxRequests, window, func(c *gin.Context) (string, bool) {
		login := c.GetString(loginKey)
		if login == "" {
			return "", false
		}
		return "rl_login:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + login, true
	})
}

func fixedWindow(maxRequests int, window time.Duration, key func(*gin.Context) (string, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		k, ok := key(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), redisTimeout)
		defer cancel()

		val, err := redisClient.Incr(ctx, k).Result()
		if err != nil {
			logger.Warn("rate limiter redis error", "error", err)
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}
		if val == 1 {
			redisClient.Expire(ctx, k, window)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
