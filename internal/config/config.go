package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"drawguess/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	DatabaseURL   string
	JWTSecret     string
	AllowedOrigin string
	LogLevel      string
	LogJSON       bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limits
	AuthRateLimit  int
	AuthRateWindow time.Duration
	WSEventsPerSec float64
	WSEventBurst   int

	// Game rules
	SingleplayerTimeLimit time.Duration
	SingleplayerScore     int
	MultiplayerTimeLimit  time.Duration
	MultiplayerScore      int
	MultiplayerMinPlayers int
	MultiplayerMaxPlayers int
	TimerTick             time.Duration

	RunMigrations bool
}

// Load reads the .env file (if any) and the environment. Missing required
// values are fatal.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// FromEnv builds a Config from the current environment without touching .env files.
func FromEnv() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	cfg := &Config{
		AppPort:       port,
		DatabaseURL:   dbURL,
		JWTSecret:     jwtSecret,
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
		LogLevel:      logLevel,
		LogJSON:       os.Getenv("LOG_JSON") == "true",

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       intEnv("REDIS_DB", 0),

		AuthRateLimit:  intEnv("AUTH_RATE_LIMIT", 5),
		AuthRateWindow: secondsEnv("AUTH_RATE_WINDOW_SECONDS", time.Minute),
		WSEventsPerSec: floatEnv("WS_EVENTS_PER_SECOND", 20),
		WSEventBurst:   intEnv("WS_EVENT_BURST", 40),

		SingleplayerTimeLimit: secondsEnv("SP_TIME_LIMIT_SECONDS", 60*time.Second),
		SingleplayerScore:     intEnv("SP_SCORE", 1),
		MultiplayerTimeLimit:  secondsEnv("MP_TIME_LIMIT_SECONDS", 120*time.Second),
		MultiplayerScore:      intEnv("MP_SCORE", 3),
		MultiplayerMinPlayers: intEnv("MP_MIN_PLAYERS", 2),
		MultiplayerMaxPlayers: intEnv("MP_MAX_PLAYERS", 6),
		TimerTick:             secondsEnv("TIMER_TICK_SECONDS", 5*time.Second),

		RunMigrations: os.Getenv("RUN_MIGRATIONS") != "false",
	}

	if cfg.MultiplayerMinPlayers < 2 {
		return nil, errors.New("MP_MIN_PLAYERS must be at least 2")
	}
	if cfg.MultiplayerMaxPlayers < cfg.MultiplayerMinPlayers {
		return nil, errors.New("MP_MAX_PLAYERS must not be lower than MP_MIN_PLAYERS")
	}

	return cfg, nil
}

func intEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func floatEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// secondsEnv parses a positive number of seconds.
func secondsEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
