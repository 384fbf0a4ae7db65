package game

import (
	"sync"

	"drawguess/internal/domain"
)

// Registry owns the live sessions of one game kind, keyed by game id.
type Registry struct {
	kind  domain.GameKind
	sched Scheduler

	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewRegistry(kind domain.GameKind, sched Scheduler) *Registry {
	return &Registry{
		kind:     kind,
		sched:    sched,
		sessions: make(map[int64]*Session),
	}
}

func (r *Registry) Kind() domain.GameKind {
	return r.kind
}

// CreateScheduledGame wraps g in a Session and stores it under g.ID.
func (r *Registry) CreateScheduledGame(g *domain.Game) *Session {
	s := newSession(g, r.sched)

	r.mu.Lock()
	r.sessions[g.ID] = s
	r.mu.Unlock()

	sessionsActive.WithLabelValues(r.kind.String()).Inc()
	return s
}

// GetScheduledGame returns nil, false for games that already ended or never existed.
func (r *Registry) GetScheduledGame(id int64) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	return s, ok
}

// RemoveScheduledGame deletes the entry and reports whether it was present.
func (r *Registry) RemoveScheduledGame(id int64) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if ok {
		sessionsActive.WithLabelValues(r.kind.String()).Dec()
	}
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sessions returns a snapshot of every live session.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}
