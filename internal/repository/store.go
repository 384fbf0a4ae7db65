package repository

import (
	"context"

	"drawguess/internal/domain"
)

// Store is the persistence the game coordinator works against.
type Store struct {
	accounts *AccountRepository
	games    *GameRepository
}

func NewStore(accounts *AccountRepository, games *GameRepository) *Store {
	return &Store{accounts: accounts, games: games}
}

func (s *Store) CreateSingleplayerGame(ctx context.Context, login string, dashes domain.Dashes) (*domain.Game, error) {
	return s.games.CreateSingleplayer(ctx, login, dashes)
}

func (s *Store) CreateMultiplayerGame(ctx context.Context, word string, logins []string) (*domain.Game, error) {
	return s.games.CreateMultiplayer(ctx, word, logins)
}

func (s *Store) DeleteGame(ctx context.Context, kind domain.GameKind, id int64) error {
	return s.games.Delete(ctx, kind, id)
}

func (s *Store) UpdateRating(ctx context.Context, login string, delta int) error {
	return s.accounts.UpdateRating(ctx, login, delta)
}
