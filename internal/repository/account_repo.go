package repository

import (
	"context"
	"errors"
	"fmt"

	"drawguess/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO account (login, passhash, email)
		 VALUES ($1, $2, $3)
		 RETURNING id, rating, created_at`,
		a.Login,
		a.PassHash,
		a.Email,
	).Scan(&a.ID, &a.Rating, &a.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrLoginTaken
	}
	return err
}

func (r *AccountRepository) GetByLogin(ctx context.Context, login string) (*domain.Account, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, login, passhash, email, rating, created_at
		 FROM account
		 WHERE login = $1`,
		login,
	)

	var a domain.Account
	if err := row.Scan(
		&a.ID,
		&a.Login,
		&a.PassHash,
		&a.Email,
		&a.Rating,
		&a.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account %q: %w", login, domain.ErrNotFound)
		}
		return nil, err
	}
	return &a, nil
}

// Update changes login, password hash and email of the account identified by
// login. Empty fields keep their stored value.
func (r *AccountRepository) Update(ctx context.Context, login string, upd domain.AccountUpdate) (*domain.Account, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE account
		 SET login    = COALESCE(NULLIF($1, ''), login),
		     passhash = COALESCE(NULLIF($2, ''), passhash),
		     email    = COALESCE(NULLIF($3, ''), email)
		 WHERE login = $4
		 RETURNING id, login, passhash, email, rating, created_at`,
		upd.Login,
		upd.PassHash,
		upd.Email,
		login,
	)

	var a domain.Account
	err := row.Scan(&a.ID, &a.Login, &a.PassHash, &a.Email, &a.Rating, &a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, fmt.Errorf("account %q: %w", login, domain.ErrNotFound)
		case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
			return nil, domain.ErrLoginTaken
		}
		return nil, err
	}
	return &a, nil
}

// UpdateRating adds delta to the rating of login.
func (r *AccountRepository) UpdateRating(ctx context.Context, login string, delta int) error {
	result, err := r.db.Exec(ctx,
		`UPDATE account SET rating = rating + $1 WHERE login = $2`,
		delta, login,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("rating of %q: %w", login, domain.ErrNoRowsAffected)
	}
	return nil
}

// GetBest returns the leaderboard, best rating first.
func (r *AccountRepository) GetBest(ctx context.Context, limit int) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, login, email, rating, created_at
		 FROM account
		 ORDER BY rating DESC, login ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.Login, &a.Email, &a.Rating, &a.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}
