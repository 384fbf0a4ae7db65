package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"drawguess/internal/db"
	"drawguess/internal/domain"
	"drawguess/internal/game"
	"drawguess/internal/logger"
	"drawguess/internal/repository"
	"drawguess/internal/service"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

// ws_smoke plays one multiplayer round against a running server: a guesser
// and a painter queue up, the painter draws a stroke and the guesser answers
// with the word the painter was shown.
func main() {
	logger.Init("debug", false)
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET not set")
	}
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	ctx := context.Background()
	accounts := service.NewAccountService(repository.NewAccountRepository(pool))
	service.InitJWT(jwtSecret)

	tokenA := smokeToken(ctx, accounts, "smokeA")
	tokenB := smokeToken(ctx, accounts, "smokeB")

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	connA := dial(port, tokenA)
	defer connA.Close()
	connB := dial(port, tokenB)
	defer connB.Close()

	send(connA, game.MsgStartMultiplayer, game.QueueContent{Role: game.RoleGuesser})
	send(connB, game.MsgStartMultiplayer, game.QueueContent{Role: game.RolePainter})

	waitFor(connA, game.MsgStartMultiplayer)
	start := waitFor(connB, game.MsgStartMultiplayer)

	var st struct {
		Word string `json:"word"`
	}
	if err := json.Unmarshal(start, &st); err != nil || st.Word == "" {
		logger.Fatal("painter did not receive the word", "content", string(start))
	}

	send(connB, game.MsgNewPoint, domain.Point{X: 0.1, Y: 0.2, Down: true})
	waitFor(connA, game.MsgNewPoint)

	send(connA, game.MsgCheckAnswer, game.AnswerContent{Answer: st.Word})

	logger.Info("guesser result", "content", string(waitFor(connA, game.MsgStopGame)))
	logger.Info("painter result", "content", string(waitFor(connB, game.MsgStopGame)))
	logger.Info("smoke test finished")
}

func smokeToken(ctx context.Context, accounts *service.AccountService, login string) string {
	if _, err := accounts.Register(ctx, login, login, ""); err != nil && !errors.Is(err, domain.ErrLoginTaken) {
		logger.Fatal("create account", "login", login, "error", err)
	}
	token, err := service.GenerateJWT(login)
	if err != nil {
		logger.Fatal("generate token", "login", login, "error", err)
	}
	return token
}

func dial(port, token string) *websocket.Conn {
	url := fmt.Sprintf("ws://127.0.0.1:%s/ws?token=%s", port, token)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		logger.Fatal("dial", "error", err)
	}
	return conn
}

func send(conn *websocket.Conn, typ string, content any) {
	if err := conn.WriteJSON(game.Message{Type: typ, Content: content}); err != nil {
		logger.Fatal("write", "type", typ, "error", err)
	}
}

// waitFor drains messages until one of the given type arrives and returns its content.
func waitFor(conn *websocket.Conn, typ string) json.RawMessage {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		var msg game.InboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			logger.Fatal("read", "waiting_for", typ, "error", err)
		}
		if msg.Type == typ {
			return msg.Content
		}
		logger.Debug("skipping message", "type", msg.Type)
	}
	logger.Fatal("timed out", "waiting_for", typ)
	return nil
}
