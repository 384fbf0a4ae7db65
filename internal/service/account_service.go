package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"drawguess/internal/domain"
	"drawguess/internal/logger"
)

const maxBestLimit = 100

// AccountStore is the part of the account repository the service needs.
type AccountStore interface {
	Create(ctx context.Context, a *domain.Account) error
	GetByLogin(ctx context.Context, login string) (*domain.Account, error)
	Update(ctx context.Context, login string, upd domain.AccountUpdate) (*domain.Account, error)
	GetBest(ctx context.Context, limit int) ([]domain.Account, error)
}

type AccountService struct {
	repo AccountStore
}

func NewAccountService(repo AccountStore) *AccountService {
	return &AccountService{repo: repo}
}

func (s *AccountService) Register(ctx context.Context, login, password, email string) (*domain.Account, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := &domain.Account{Login: login, PassHash: hash, Email: strings.TrimSpace(email)}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	logger.Info("account registered", "login", a.Login)
	return a, nil
}

// Authenticate returns the account when the password matches.
func (s *AccountService) Authenticate(ctx context.Context, login, password string) (*domain.Account, error) {
	a, err := s.repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := CheckPassword(password, a.PassHash)
	if err != nil {
		return nil, fmt.Errorf("check password: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	return a, nil
}

func (s *AccountService) Get(ctx context.Context, login string) (*domain.Account, error) {
	return s.repo.GetByLogin(ctx, login)
}

// Change updates the non-empty fields of the account.
func (s *AccountService) Change(ctx context.Context, login, newLogin, password, email string) (*domain.Account, error) {
	upd := domain.AccountUpdate{
		Login: strings.TrimSpace(newLogin),
		Email: strings.TrimSpace(email),
	}
	if password != "" {
		hash, err := HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		upd.PassHash = hash
	}
	return s.repo.Update(ctx, login, upd)
}

func (s *AccountService) Best(ctx context.Context, limit int) ([]domain.Account, error) {
	if limit <= 0 || limit > maxBestLimit {
		limit = maxBestLimit
	}
	return s.repo.GetBest(ctx, limit)
}
