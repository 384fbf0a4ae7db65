package game

import (
	"context"
	"fmt"
	"sync"

	"drawguess/internal/domain"
	"drawguess/internal/logger"
)

type queueEntry struct {
	conn Conn
	role Role
}

func (e queueEntry) canPaint() bool {
	return e.role == RolePainter || e.role == RoleAnyone
}

func (e queueEntry) canGuess() bool {
	return e.role == RoleGuesser || e.role == RoleAnyone
}

// Match is one multiplayer lobby taken out of the queue.
type Match struct {
	Painter  Conn
	Guessers []Conn

	entries []queueEntry
}

// Queue holds the players waiting for a multiplayer game, in arrival order.
type Queue struct {
	mu      sync.Mutex
	entries []queueEntry
}

func NewQueue() *Queue {
	return &Queue{}
}

// Add enqueues conn with its preferred role. A login that is already
// waiting is re-queued at the back with the new connection and role.
func (q *Queue) Add(conn Conn, role Role) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.removeLocked(func(e queueEntry) bool { return e.conn.Login() == conn.Login() })
	q.entries = append(q.entries, queueEntry{conn: conn, role: role})
}

// Remove drops login from the queue and reports whether it was waiting.
func (q *Queue) Remove(login string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.removeLocked(func(e queueEntry) bool { return e.conn.Login() == login })
}

// RemoveConn drops login only while it waits on the given connection.
func (q *Queue) RemoveConn(login, connID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.removeLocked(func(e queueEntry) bool {
		return e.conn.Login() == login && e.conn.ID() == connID
	})
}

func (q *Queue) Contains(login string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.entries {
		if e.conn.Login() == login {
			return true
		}
	}
	return false
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Take removes a lobby of one painter and between minPlayers-1 and
// maxPlayers-1 guessers, oldest first. It reports false when the waiting
// players cannot form a lobby yet.
func (q *Queue) Take(minPlayers, maxPlayers int) (*Match, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	painter := -1
	for i, e := range q.entries {
		if e.canPaint() {
			painter = i
			break
		}
	}
	if painter < 0 {
		return nil, false
	}

	var guessers []int
	for i, e := range q.entries {
		if i == painter || !e.canGuess() {
			continue
		}
		guessers = append(guessers, i)
		if len(guessers) == maxPlayers-1 {
			break
		}
	}
	if len(guessers) < minPlayers-1 {
		return nil, false
	}

	m := &Match{Painter: q.entries[painter].conn}
	taken := make(map[int]bool, len(guessers)+1)
	taken[painter] = true
	for _, i := range guessers {
		m.Guessers = append(m.Guessers, q.entries[i].conn)
		taken[i] = true
	}

	rest := q.entries[:0]
	for i, e := range q.entries {
		if taken[i] {
			m.entries = append(m.entries, e)
			continue
		}
		rest = append(rest, e)
	}
	q.entries = rest
	return m, true
}

// Logins lists every player of the match, painter last.
func (m *Match) Logins() []string {
	out := make([]string, 0, len(m.Guessers)+1)
	for _, g := range m.Guessers {
		out = append(out, g.Login())
	}
	return append(out, m.Painter.Login())
}

// Restore puts the players of a failed match back at the front of the queue.
func (q *Queue) Restore(m *Match) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = append(append([]queueEntry(nil), m.entries...), q.entries...)
}

func (q *Queue) removeLocked(match func(queueEntry) bool) bool {
	removed := false
	rest := q.entries[:0]
	for _, e := range q.entries {
		if match(e) {
			removed = true
			continue
		}
		rest = append(rest, e)
	}
	q.entries = rest
	return removed
}

// QueueForMultiplayer puts conn in the lobby queue and starts every game
// the queue can form.
func (c *Coordinator) QueueForMultiplayer(ctx context.Context, conn Conn, role Role) error {
	c.admitMu.Lock()
	if c.busyLocked(conn.Login()) {
		c.admitMu.Unlock()
		return ErrAlreadyPlaying
	}
	c.queue.Add(conn, role)
	c.admitMu.Unlock()

	logger.Debug("queued for multiplayer", "login", conn.Login(), "role", role.String())
	return c.matchQueue(ctx)
}

// LeaveQueue removes login from the lobby queue.
func (c *Coordinator) LeaveQueue(login string) bool {
	return c.queue.Remove(login)
}

func (c *Coordinator) matchQueue(ctx context.Context) error {
	c.matchMu.Lock()
	defer c.matchMu.Unlock()

	for {
		m, ok := c.takeMatch()
		if !ok {
			return nil
		}

		_, err := c.createMultiplayerGame(ctx, m.Painter, m.Guessers)

		c.admitMu.Lock()
		if err != nil {
			c.queue.Restore(m)
		}
		for _, l := range m.Logins() {
			delete(c.pending, l)
		}
		c.admitMu.Unlock()

		if err != nil {
			return err
		}
	}
}

// takeMatch moves a lobby out of the queue and marks its logins pending in
// one step, so none of them can be admitted elsewhere meanwhile.
func (c *Coordinator) takeMatch() (*Match, bool) {
	c.admitMu.Lock()
	defer c.admitMu.Unlock()

	m, ok := c.queue.Take(c.rules.MinPlayers, c.rules.MaxPlayers)
	if !ok {
		return nil, false
	}
	for _, l := range m.Logins() {
		c.pending[l] = struct{}{}
	}
	return m, true
}

// CreateMultiplayerGame persists a game for the given lobby, seats the
// guessers first and the painter last, and starts the countdown. Every
// login must be free: not queued, not playing.
func (c *Coordinator) CreateMultiplayerGame(ctx context.Context, painter Conn, guessers []Conn) (*Session, error) {
	m := &Match{Painter: painter, Guessers: guessers}
	logins := m.Logins()

	c.admitMu.Lock()
	for _, l := range logins {
		if c.busyLocked(l) || c.queue.Contains(l) {
			c.admitMu.Unlock()
			return nil, fmt.Errorf("%s: %w", l, ErrAlreadyPlaying)
		}
	}
	for _, l := range logins {
		c.pending[l] = struct{}{}
	}
	c.admitMu.Unlock()
	defer c.release(logins...)

	return c.createMultiplayerGame(ctx, painter, guessers)
}

func (c *Coordinator) createMultiplayerGame(ctx context.Context, painter Conn, guessers []Conn) (*Session, error) {
	dashes, err := c.puzzles.NextDashes(ctx, painter.Login())
	if err != nil {
		return nil, fmt.Errorf("pick puzzle: %w", err)
	}

	logins := (&Match{Painter: painter, Guessers: guessers}).Logins()

	g, err := c.storage.CreateMultiplayerGame(ctx, dashes.Word, logins)
	if err != nil {
		return nil, fmt.Errorf("create multiplayer game: %w", err)
	}

	if err := c.puzzles.MarkUsed(ctx, painter.Login(), dashes.ID); err != nil {
		logger.Warn("failed to mark puzzle used", "login", painter.Login(), "dashes_id", dashes.ID, "error", err)
	}

	s := c.registries[domain.KindMultiplayer].CreateScheduledGame(g)
	for i, conn := range guessers {
		c.relations.AddRelation(conn, s, RoleGuesser, i+1)
	}
	c.relations.AddRelation(painter, s, RolePainter, len(guessers)+1)

	logger.Info("multiplayer game created", "game_id", g.ID, "painter", painter.Login(), "players", len(logins))

	if _, err := c.StartTimer(g.ID, domain.KindMultiplayer); err != nil {
		return nil, err
	}
	return s, nil
}
