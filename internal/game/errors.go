package game

import "errors"

var (
	ErrNoActiveGame   = errors.New("no active game for login")
	ErrWrongGameKind  = errors.New("operation is not supported for this game kind")
	ErrPainterAnswer  = errors.New("painter cannot answer")
	ErrNotPainter     = errors.New("only the painter can draw")
	ErrAlreadyPlaying = errors.New("login already has an active game")
	ErrInvalidVote    = errors.New("vote for unknown seat")
	ErrUnknownEvent   = errors.New("unknown event type")
)
