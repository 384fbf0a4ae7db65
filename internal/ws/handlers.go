package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"drawguess/internal/domain"
	"drawguess/internal/game"
)

var errBadContent = errors.New("bad event content")

func decode(content json.RawMessage, v any) error {
	if len(content) == 0 {
		return fmt.Errorf("%w: empty", errBadContent)
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("%w: %v", errBadContent, err)
	}
	return nil
}

func (r *Router) registerGameHandlers() {
	r.On(game.MsgStartSingleplayer, r.startSingleplayer)
	r.On(game.MsgStartMultiplayer, r.startMultiplayer)
	r.On(game.MsgCheckAnswer, r.checkAnswer)
	r.On(game.MsgNewPoint, r.newPoint)
	r.On(game.MsgVoteAnswer, r.voteAnswer)
	r.On(game.MsgGetState, r.getState)
	r.On(game.MsgExit, r.exit)
}

func (r *Router) startSingleplayer(ctx context.Context, conn game.Conn, _ json.RawMessage) error {
	_, err := r.games.StartSingleplayerGame(ctx, conn)
	return err
}

// startMultiplayer queues the sender. Content is optional; the default role is anyone.
func (r *Router) startMultiplayer(ctx context.Context, conn game.Conn, content json.RawMessage) error {
	var qc game.QueueContent
	if len(content) > 0 {
		if err := decode(content, &qc); err != nil {
			return err
		}
	}
	return r.games.QueueForMultiplayer(ctx, conn, qc.Role)
}

func (r *Router) checkAnswer(ctx context.Context, conn game.Conn, content json.RawMessage) error {
	var ac game.AnswerContent
	if err := decode(content, &ac); err != nil {
		return err
	}
	return r.games.CheckAnswer(ctx, conn.Login(), ac.Answer)
}

func (r *Router) newPoint(_ context.Context, conn game.Conn, content json.RawMessage) error {
	var p domain.Point
	if err := decode(content, &p); err != nil {
		return err
	}
	return r.games.AddPoint(conn.Login(), p)
}

func (r *Router) voteAnswer(_ context.Context, conn game.Conn, content json.RawMessage) error {
	var v domain.Vote
	if err := decode(content, &v); err != nil {
		return err
	}
	return r.games.AddVote(conn.Login(), v)
}

func (r *Router) getState(_ context.Context, conn game.Conn, _ json.RawMessage) error {
	return r.games.SendGameState(conn.Login())
}

func (r *Router) exit(ctx context.Context, conn game.Conn, _ json.RawMessage) error {
	return r.games.ExitGame(ctx, conn.Login())
}
