package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrNoRowsAffected     = errors.New("no rows affected")
	ErrLoginTaken         = errors.New("login is already taken")
	ErrInvalidCredentials = errors.New("invalid login or password")
)
