package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drawguess/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GameRepository struct {
	db *pgxpool.Pool
}

func NewGameRepository(db *pgxpool.Pool) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) CreateSingleplayer(ctx context.Context, login string, dashes domain.Dashes) (*domain.Game, error) {
	g := domain.NewSingleplayerGame(0, login, dashes)
	err := r.db.QueryRow(ctx,
		`INSERT INTO single_game (login, dashes_id)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		login,
		dashes.ID,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// CreateMultiplayer stores a round. The last login is the painter.
func (r *GameRepository) CreateMultiplayer(ctx context.Context, word string, logins []string) (*domain.Game, error) {
	if len(logins) == 0 {
		return nil, errors.New("multiplayer game needs at least one login")
	}

	g := domain.NewMultiplayerGame(0, word, logins, logins[len(logins)-1])
	err := r.db.QueryRow(ctx,
		`INSERT INTO multi_game (word, users)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		word,
		logins,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GameRepository) GetSingleplayer(ctx context.Context, id int64) (*domain.Game, error) {
	row := r.db.QueryRow(ctx,
		`SELECT g.id, g.login, g.created_at, d.id, d.word, d.points
		 FROM single_game g
		 JOIN dashes d ON d.id = g.dashes_id
		 WHERE g.id = $1`,
		id,
	)

	var (
		gameID    int64
		login     string
		createdAt time.Time
		dashes    domain.Dashes
	)
	if err := row.Scan(&gameID, &login, &createdAt, &dashes.ID, &dashes.Word, &dashes.Points); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("singleplayer game %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}

	g := domain.NewSingleplayerGame(gameID, login, dashes)
	g.CreatedAt = createdAt
	return g, nil
}

func (r *GameRepository) GetMultiplayer(ctx context.Context, id int64) (*domain.Game, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, word, users, created_at
		 FROM multi_game
		 WHERE id = $1`,
		id,
	)

	var (
		g      domain.Game
		logins []string
	)
	if err := row.Scan(&g.ID, &g.Word, &logins, &g.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("multiplayer game %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}

	var painter string
	if len(logins) > 0 {
		painter = logins[len(logins)-1]
	}
	out := domain.NewMultiplayerGame(g.ID, g.Word, logins, painter)
	out.CreatedAt = g.CreatedAt
	return out, nil
}

// Delete removes the stored row of a game. A missing row is reported as
// domain.ErrNoRowsAffected.
func (r *GameRepository) Delete(ctx context.Context, kind domain.GameKind, id int64) error {
	var query string
	switch kind {
	case domain.KindSingleplayer:
		query = `DELETE FROM single_game WHERE id = $1`
	case domain.KindMultiplayer:
		query = `DELETE FROM multi_game WHERE id = $1`
	default:
		return fmt.Errorf("delete game: unknown kind %d", kind)
	}

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete %s game %d: %w", kind, id, domain.ErrNoRowsAffected)
	}
	return nil
}
