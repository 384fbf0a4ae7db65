package service

import (
	"context"
	"fmt"
	"math/rand"

	"drawguess/internal/domain"
	"drawguess/internal/logger"
)

// DashesStore is the part of the dashes repository the puzzle service needs.
type DashesStore interface {
	ListUnused(ctx context.Context, login string) ([]domain.Dashes, error)
	CountUnused(ctx context.Context, login string) (int, error)
	ClearUsed(ctx context.Context, login string) error
	MarkUsed(ctx context.Context, login string, dashesID int64) error
}

// PuzzleService hands out puzzles a login has not seen yet. Once every
// puzzle was used the history of that login starts over.
type PuzzleService struct {
	repo DashesStore
	rand func(n int) int
}

func NewPuzzleService(repo DashesStore) *PuzzleService {
	return &PuzzleService{repo: repo, rand: rand.Intn}
}

func (s *PuzzleService) NextDashes(ctx context.Context, login string) (domain.Dashes, error) {
	n, err := s.repo.CountUnused(ctx, login)
	if err != nil {
		return domain.Dashes{}, fmt.Errorf("count unused dashes: %w", err)
	}

	if n == 0 {
		logger.Debug("puzzle history exhausted, recycling", "login", login)
		if err := s.repo.ClearUsed(ctx, login); err != nil {
			return domain.Dashes{}, fmt.Errorf("clear used dashes: %w", err)
		}
	}

	list, err := s.repo.ListUnused(ctx, login)
	if err != nil {
		return domain.Dashes{}, fmt.Errorf("list unused dashes: %w", err)
	}
	if len(list) == 0 {
		return domain.Dashes{}, fmt.Errorf("no puzzles: %w", domain.ErrNotFound)
	}

	return list[s.rand(len(list))], nil
}

func (s *PuzzleService) MarkUsed(ctx context.Context, login string, dashesID int64) error {
	return s.repo.MarkUsed(ctx, login, dashesID)
}
