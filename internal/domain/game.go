package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// GameKind tags the variant of a Game.
type GameKind int

const (
	KindSingleplayer GameKind = iota + 1
	KindMultiplayer
)

func (k GameKind) String() string {
	switch k {
	case KindSingleplayer:
		return "sp"
	case KindMultiplayer:
		return "mp"
	default:
		return "unknown"
	}
}

func (k GameKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Dashes is a puzzle: a word and the drawing that depicts it.
type Dashes struct {
	ID     int64           `db:"id" json:"id"`
	Word   string          `db:"word" json:"-"`
	Points json.RawMessage `db:"points" json:"points"`
}

// SingleplayerData is the payload of a single-player game.
type SingleplayerData struct {
	Owner  string
	Dashes Dashes
}

// MultiplayerData is the payload of a multi-player game.
type MultiplayerData struct {
	Painter string
}

// Game is one round. Word and Logins never change after creation.
// Exactly one of Single and Multi is set, matching Kind.
type Game struct {
	ID        int64
	Kind      GameKind
	Word      string
	Logins    []string
	CreatedAt time.Time

	Single *SingleplayerData
	Multi  *MultiplayerData
}

func NewSingleplayerGame(id int64, owner string, dashes Dashes) *Game {
	return &Game{
		ID:     id,
		Kind:   KindSingleplayer,
		Word:   dashes.Word,
		Logins: []string{owner},
		Single: &SingleplayerData{Owner: owner, Dashes: dashes},
	}
}

// NewMultiplayerGame expects the painter to be one of logins.
func NewMultiplayerGame(id int64, word string, logins []string, painter string) *Game {
	return &Game{
		ID:     id,
		Kind:   KindMultiplayer,
		Word:   word,
		Logins: append([]string(nil), logins...),
		Multi:  &MultiplayerData{Painter: painter},
	}
}

// IsCorrectAnswer compares case-insensitively.
func (g *Game) IsCorrectAnswer(answer string) bool {
	answer = strings.TrimSpace(answer)
	return answer != "" && strings.EqualFold(g.Word, answer)
}

func (g *Game) HasParticipant(login string) bool {
	for _, l := range g.Logins {
		if l == login {
			return true
		}
	}
	return false
}

// Participants returns a copy of the ordered participant list.
func (g *Game) Participants() []string {
	return append([]string(nil), g.Logins...)
}

// Point is one stroke event of a drawing.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Down  bool    `json:"down"`
	Color string  `json:"color,omitempty"`
}

// Vote is a participant's opinion about the answer of the player seated at ID.
type Vote struct {
	ID   int  `json:"id"`
	Vote bool `json:"vote"`
}
