package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drawguess/internal/config"
	"drawguess/internal/db"
	"drawguess/internal/domain"
	"drawguess/internal/game"
	httpServer "drawguess/internal/http"
	"drawguess/internal/http/handlers"
	"drawguess/internal/http/middleware"
	"drawguess/internal/logger"
	"drawguess/internal/migrations"
	"drawguess/internal/repository"
	"drawguess/internal/service"
	"drawguess/internal/ws"

	"github.com/gin-gonic/gin"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	if cfg.RunMigrations {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err := migrations.Up(ctx, dbPool); err != nil {
			cancel()
			logger.Fatal("migrations failed", "error", err)
		}
		cancel()
	}

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer middleware.CloseRedisRateLimiter()

	accountRepo := repository.NewAccountRepository(dbPool)
	store := repository.NewStore(accountRepo, repository.NewGameRepository(dbPool))
	puzzles := service.NewPuzzleService(repository.NewDashesRepository(dbPool))

	coord := game.NewCoordinator(store, puzzles, game.Rules{
		SingleplayerTimeLimit: cfg.SingleplayerTimeLimit,
		SingleplayerScore:     cfg.SingleplayerScore,
		MultiplayerTimeLimit:  cfg.MultiplayerTimeLimit,
		MultiplayerScore:      cfg.MultiplayerScore,
		MinPlayers:            cfg.MultiplayerMinPlayers,
		MaxPlayers:            cfg.MultiplayerMaxPlayers,
		TimerTick:             cfg.TimerTick,
	})
	defer coord.Close()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	httpServer.RegisterRoutes(r, httpServer.Deps{
		Handler: handlers.NewHandler(service.NewAccountService(accountRepo)),
		Health: handlers.NewHealthHandler(dbPool, version, func() int {
			return coord.Registry(domain.KindSingleplayer).Len() + coord.Registry(domain.KindMultiplayer).Len()
		}),
		Router: ws.NewRouter(coord),
	}, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
