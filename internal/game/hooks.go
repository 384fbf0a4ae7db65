package game

import (
	"context"
	"time"

	"drawguess/internal/domain"
)

// kindHooks holds the behavior that differs between game kinds.
type kindHooks struct {
	joinType  string
	timeLimit func(r Rules) time.Duration
	winScore  func(r Rules) int
	state     func(c *Coordinator, s *Session, login string) any
	afterWin  func(c *Coordinator, ctx context.Context, s *Session, winner string) error
	ticker    bool
}

var hooks = map[domain.GameKind]kindHooks{
	domain.KindSingleplayer: {
		joinType:  MsgStartSingleplayer,
		timeLimit: func(r Rules) time.Duration { return r.SingleplayerTimeLimit },
		winScore:  func(r Rules) int { return r.SingleplayerScore },
		state:     singleplayerState,
		afterWin: func(c *Coordinator, ctx context.Context, s *Session, winner string) error {
			return c.puzzles.MarkUsed(ctx, winner, s.Game().Single.Dashes.ID)
		},
	},
	domain.KindMultiplayer: {
		joinType:  MsgStartMultiplayer,
		timeLimit: func(r Rules) time.Duration { return r.MultiplayerTimeLimit },
		winScore:  func(r Rules) int { return r.MultiplayerScore },
		state:     multiplayerState,
		ticker:    true,
	},
}

func singleplayerState(c *Coordinator, s *Session, login string) any {
	return SingleplayerState{
		Type:      domain.KindSingleplayer,
		TimeLeft:  wireSeconds(s.TimeLeft()),
		TimeLimit: c.rules.SingleplayerTimeLimit.Seconds(),
		Points:    s.Game().Single.Dashes.Points,
	}
}

// multiplayerState hides the word from everyone but the painter.
func multiplayerState(c *Coordinator, s *Session, login string) any {
	rels := c.relations.GameRelations(s)
	players := make([]PlayerInfo, 0, len(rels))
	role := RoleAnyone
	for _, rel := range rels {
		players = append(players, rel.PlayerInfo())
		if rel.Login == login {
			role = rel.Role
		}
	}

	st := MultiplayerState{
		Type:      domain.KindMultiplayer,
		TimeLeft:  wireSeconds(s.TimeLeft()),
		TimeLimit: c.rules.MultiplayerTimeLimit.Seconds(),
		Role:      role,
		Players:   players,
		Points:    s.Points(),
	}
	if role == RolePainter {
		st.Word = s.Game().Word
	}
	return st
}

func (c *Coordinator) finishTime(kind domain.GameKind) time.Duration {
	return hooks[kind].timeLimit(c.rules)
}

func (c *Coordinator) winScore(kind domain.GameKind) int {
	return hooks[kind].winScore(c.rules)
}

// GameStateMessage is the STATE snapshot of s as seen by login.
func (c *Coordinator) GameStateMessage(s *Session, login string) Message {
	return Message{Type: MsgState, Content: hooks[s.Kind()].state(c, s, login)}
}

// JoinGameMessage is the snapshot sent when the round starts.
func (c *Coordinator) JoinGameMessage(s *Session, login string) Message {
	h := hooks[s.Kind()]
	return Message{Type: h.joinType, Content: h.state(c, s, login)}
}
