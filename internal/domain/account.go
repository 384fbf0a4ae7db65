package domain

import "time"

type Account struct {
	ID        int64     `db:"id" json:"id"`
	Login     string    `db:"login" json:"login"`
	PassHash  string    `db:"passhash" json:"-"`
	Email     string    `db:"email" json:"email"`
	Rating    int       `db:"rating" json:"rating"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AccountUpdate carries the fields a user may change. Empty strings mean "keep".
type AccountUpdate struct {
	Login    string
	PassHash string
	Email    string
}
