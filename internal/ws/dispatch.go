package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"drawguess/internal/domain"
	"drawguess/internal/game"
	"drawguess/internal/logger"
)

// GameService is the part of the game coordinator reachable from clients.
type GameService interface {
	StartSingleplayerGame(ctx context.Context, conn game.Conn) (float64, error)
	QueueForMultiplayer(ctx context.Context, conn game.Conn, role game.Role) error
	CheckAnswer(ctx context.Context, login, answer string) error
	AddPoint(login string, p domain.Point) error
	AddVote(login string, v domain.Vote) error
	SendGameState(login string) error
	ExitGame(ctx context.Context, login string) error
	Disconnect(ctx context.Context, conn game.Conn) error
}

// HandlerFunc serves one inbound event type.
type HandlerFunc func(ctx context.Context, conn game.Conn, content json.RawMessage) error

// Router routes inbound envelopes to handlers by their type tag.
type Router struct {
	games    GameService
	handlers map[string]HandlerFunc
}

func NewRouter(games GameService) *Router {
	r := &Router{
		games:    games,
		handlers: make(map[string]HandlerFunc),
	}
	r.registerGameHandlers()
	return r
}

// On registers h for the given event type, replacing any previous handler.
func (r *Router) On(eventType string, h HandlerFunc) {
	r.handlers[eventType] = h
}

// Handle decodes one raw envelope and runs its handler. Handler failures
// are reported back to the sender as an ERROR event.
func (r *Router) Handle(ctx context.Context, conn game.Conn, raw []byte) error {
	var in game.InboundMessage
	if err := json.Unmarshal(raw, &in); err != nil {
		wsEvents.WithLabelValues("invalid").Inc()
		r.reply(conn, fmt.Errorf("malformed message: %w", err))
		return err
	}

	h, ok := r.handlers[in.Type]
	if !ok {
		wsEvents.WithLabelValues("unknown").Inc()
		logger.Warn("unknown ws event", "type", in.Type, "login", conn.Login())
		return fmt.Errorf("%w: %q", game.ErrUnknownEvent, in.Type)
	}
	wsEvents.WithLabelValues(in.Type).Inc()

	if err := h(ctx, conn, in.Content); err != nil {
		r.reply(conn, err)
		return err
	}
	return nil
}

func (r *Router) Disconnect(ctx context.Context, conn game.Conn) {
	if err := r.games.Disconnect(ctx, conn); err != nil {
		logger.Error("disconnect cleanup failed", "login", conn.Login(), "conn_id", conn.ID(), "error", err)
	}
}

func (r *Router) reply(conn game.Conn, err error) {
	msg := err.Error()
	if !isClientError(err) {
		logger.Error("ws event failed", "login", conn.Login(), "error", err)
		msg = "internal error"
	}
	conn.Send(game.Message{Type: game.MsgError, Content: game.ErrorContent{Message: msg}})
}

var clientErrors = []error{
	game.ErrNoActiveGame,
	game.ErrWrongGameKind,
	game.ErrPainterAnswer,
	game.ErrNotPainter,
	game.ErrAlreadyPlaying,
	game.ErrInvalidVote,
	errBadContent,
}

func isClientError(err error) bool {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	var syntax *json.SyntaxError
	return errors.As(err, &syntax)
}
