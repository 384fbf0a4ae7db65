package game

import (
	"encoding/json"
	"math"

	"drawguess/internal/domain"
)

// Event type tags, shared by inbound and outbound envelopes.
const (
	MsgState             = "STATE"
	MsgGetState          = "GET_STATE"
	MsgNewPoint          = "NEW_POINT"
	MsgStartSingleplayer = "START_SP_GAME"
	MsgStartMultiplayer  = "START_MP_GAME"
	MsgCheckAnswer       = "GET_ANSWER"
	MsgStopGame          = "STOP_GAME"
	MsgTimerState        = "TIMER_STATE"
	MsgExit              = "EXIT"
	MsgPlayerDisconnect  = "PLAYER_DISCONNECT"
	MsgVoteAnswer        = "VOTE_ANSWER"
	MsgNewVote           = "NEW_VOTE"
	MsgError             = "ERROR"
)

// Message is the envelope exchanged with clients.
type Message struct {
	Type    string `json:"type"`
	Content any    `json:"content,omitempty"`
}

// InboundMessage keeps the content raw until a handler decodes it.
type InboundMessage struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content,omitempty"`
}

type GameResult int

const (
	ResultLost GameResult = 0
	ResultWon  GameResult = 1
)

func (r GameResult) String() string {
	if r == ResultWon {
		return "won"
	}
	return "lost"
}

type PlayerInfo struct {
	Login string `json:"login"`
	Seat  int    `json:"color"`
}

type SingleplayerState struct {
	Type      domain.GameKind `json:"type"`
	TimeLeft  float64         `json:"current_time"`
	TimeLimit float64         `json:"timer"`
	Points    json.RawMessage `json:"points,omitempty"`
}

type MultiplayerState struct {
	Type      domain.GameKind `json:"type"`
	TimeLeft  float64         `json:"current_time"`
	TimeLimit float64         `json:"timer"`
	Role      Role            `json:"role"`
	Players   []PlayerInfo    `json:"players"`
	Points    []domain.Point  `json:"points"`
	Word      string          `json:"word,omitempty"`
}

type FinishContent struct {
	Result GameResult `json:"result"`
	Score  int        `json:"score"`
	Winner *string    `json:"winner,omitempty"`
	Word   string     `json:"word"`
}

type AnswerResult struct {
	Right  bool       `json:"right"`
	Player PlayerInfo `json:"player"`
}

type TimerContent struct {
	TimeLeft  float64 `json:"current_time"`
	TimeLimit float64 `json:"timer"`
}

type VoteContent struct {
	ID     int         `json:"id"`
	Vote   bool        `json:"vote"`
	Player *PlayerInfo `json:"player,omitempty"`
}

type DisconnectContent struct {
	Player PlayerInfo `json:"player"`
}

type ErrorContent struct {
	Message string `json:"message"`
}

// AnswerContent is sent by clients with GET_ANSWER.
type AnswerContent struct {
	Answer string `json:"answer"`
}

// QueueContent is sent by clients with START_MP_GAME.
type QueueContent struct {
	Role Role `json:"role"`
}

// wireSeconds keeps +Inf out of JSON, which cannot encode it.
func wireSeconds(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return math.Round(v*1000) / 1000
}
