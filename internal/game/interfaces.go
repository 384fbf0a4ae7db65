package game

import (
	"context"

	"drawguess/internal/domain"
)

// Conn is one client connection as seen by the coordinator.
type Conn interface {
	ID() string
	Login() string
	// Send is best effort: transport failures are logged by the
	// implementation and never reported back.
	Send(msg Message)
}

// Storage persists game rows and ratings. Implementations report missing rows
// and zero-row writes as errors wrapping domain.ErrNotFound or
// domain.ErrNoRowsAffected.
type Storage interface {
	CreateSingleplayerGame(ctx context.Context, login string, dashes domain.Dashes) (*domain.Game, error)
	// CreateMultiplayerGame stores the painter as the last login.
	CreateMultiplayerGame(ctx context.Context, word string, logins []string) (*domain.Game, error)
	DeleteGame(ctx context.Context, kind domain.GameKind, id int64) error
	UpdateRating(ctx context.Context, login string, delta int) error
}

// Puzzles hands out words and drawings without repeating them per login.
type Puzzles interface {
	NextDashes(ctx context.Context, login string) (domain.Dashes, error)
	MarkUsed(ctx context.Context, login string, dashesID int64) error
}
