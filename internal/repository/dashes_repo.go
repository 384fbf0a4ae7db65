package repository

import (
	"context"
	"errors"
	"fmt"

	"drawguess/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DashesRepository stores puzzles and the per-account history of used ones.
type DashesRepository struct {
	db *pgxpool.Pool
}

func NewDashesRepository(db *pgxpool.Pool) *DashesRepository {
	return &DashesRepository{db: db}
}

const unusedDashesFilter = `
	FROM dashes d
	WHERE d.id NOT IN (
		SELECT ad.dashes_id
		FROM account_dashes ad
		JOIN account a ON a.id = ad.account_id
		WHERE a.login = $1
	)`

func (r *DashesRepository) ListUnused(ctx context.Context, login string) ([]domain.Dashes, error) {
	rows, err := r.db.Query(ctx, `SELECT d.id, d.word, d.points`+unusedDashesFilter+` ORDER BY d.id`, login)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Dashes
	for rows.Next() {
		var d domain.Dashes
		if err := rows.Scan(&d.ID, &d.Word, &d.Points); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

func (r *DashesRepository) CountUnused(ctx context.Context, login string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+unusedDashesFilter, login).Scan(&n)
	return n, err
}

// ClearUsed forgets every puzzle the account has seen.
func (r *DashesRepository) ClearUsed(ctx context.Context, login string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM account_dashes
		 WHERE account_id = (SELECT id FROM account WHERE login = $1)`,
		login,
	)
	return err
}

// MarkUsed records that login has seen the puzzle. Exactly one row must be written.
func (r *DashesRepository) MarkUsed(ctx context.Context, login string, dashesID int64) error {
	result, err := r.db.Exec(ctx,
		`INSERT INTO account_dashes (account_id, dashes_id)
		 SELECT id, $2 FROM account WHERE login = $1
		 ON CONFLICT DO NOTHING`,
		login, dashesID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() != 1 {
		return fmt.Errorf("mark dashes %d used by %q: %w", dashesID, login, domain.ErrNoRowsAffected)
	}
	return nil
}

func (r *DashesRepository) GetByID(ctx context.Context, id int64) (*domain.Dashes, error) {
	var d domain.Dashes
	err := r.db.QueryRow(ctx, `SELECT id, word, points FROM dashes WHERE id = $1`, id).
		Scan(&d.ID, &d.Word, &d.Points)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("dashes %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &d, nil
}

// Create inserts a puzzle. Used by seeding and tests.
func (r *DashesRepository) Create(ctx context.Context, d *domain.Dashes) error {
	points := d.Points
	if len(points) == 0 {
		points = []byte("[]")
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO dashes (word, points) VALUES ($1, $2) RETURNING id`,
		d.Word, string(points),
	).Scan(&d.ID)
}
