package game

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"drawguess/internal/domain"
)

type fakeTimer struct {
	s       *fakeScheduler
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fakeScheduler only moves when Advance is called; due callbacks run on the caller's goroutine.
type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (s *fakeScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &fakeTimer{s: s, at: s.now.Add(d), f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		var due []*fakeTimer
		for _, t := range s.timers {
			if !t.stopped && !t.fired && !t.at.After(target) {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			s.now = target
			s.mu.Unlock()
			return
		}
		sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
		next := due[0]
		next.fired = true
		s.now = next.at
		s.mu.Unlock()

		next.f()
	}
}

// Skip moves the clock without running anything that became due, as if
// the timer goroutines had not been scheduled yet.
func (s *fakeScheduler) Skip(d time.Duration) {
	s.mu.Lock()
	s.now = s.now.Add(d)
	s.mu.Unlock()
}

type fakeConn struct {
	id    string
	login string

	mu   sync.Mutex
	msgs []Message
}

func newFakeConn(login string) *fakeConn {
	return &fakeConn{id: "conn-" + login, login: login}
}

func (c *fakeConn) ID() string    { return c.id }
func (c *fakeConn) Login() string { return c.login }

func (c *fakeConn) Send(msg Message) {
	c.mu.Lock()
	c.msgs = append(c.msgs, msg)
	c.mu.Unlock()
}

func (c *fakeConn) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.msgs...)
}

func (c *fakeConn) OfType(typ string) []Message {
	var out []Message
	for _, m := range c.Messages() {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

func (c *fakeConn) Last() Message {
	msgs := c.Messages()
	if len(msgs) == 0 {
		return Message{}
	}
	return msgs[len(msgs)-1]
}

type fakeStorage struct {
	mu        sync.Mutex
	nextID    int64
	games     map[int64]*domain.Game
	ratings   map[string]int
	deletes   int
	deleteErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		nextID:  100,
		games:   make(map[int64]*domain.Game),
		ratings: make(map[string]int),
	}
}

func (s *fakeStorage) CreateSingleplayerGame(_ context.Context, login string, dashes domain.Dashes) (*domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	g := domain.NewSingleplayerGame(s.nextID, login, dashes)
	s.games[g.ID] = g
	return g, nil
}

func (s *fakeStorage) CreateMultiplayerGame(_ context.Context, word string, logins []string) (*domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	g := domain.NewMultiplayerGame(s.nextID, word, logins, logins[len(logins)-1])
	s.games[g.ID] = g
	return g, nil
}

func (s *fakeStorage) DeleteGame(_ context.Context, _ domain.GameKind, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deletes++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.games[id]; !ok {
		return domain.ErrNoRowsAffected
	}
	delete(s.games, id)
	return nil
}

func (s *fakeStorage) UpdateRating(_ context.Context, login string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings[login] += delta
	return nil
}

func (s *fakeStorage) setDeleteErr(err error) {
	s.mu.Lock()
	s.deleteErr = err
	s.mu.Unlock()
}

func (s *fakeStorage) gameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

func (s *fakeStorage) rating(login string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ratings[login]
}

func (s *fakeStorage) deleteCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deletes
}

type fakePuzzles struct {
	mu   sync.Mutex
	word string
	used map[string][]int64
	err  error
}

func newFakePuzzles(word string) *fakePuzzles {
	return &fakePuzzles{word: word, used: make(map[string][]int64)}
}

func (p *fakePuzzles) NextDashes(context.Context, string) (domain.Dashes, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return domain.Dashes{}, p.err
	}
	return domain.Dashes{ID: 7, Word: p.word, Points: []byte(`[{"x":1,"y":2,"down":true}]`)}, nil
}

func (p *fakePuzzles) MarkUsed(_ context.Context, login string, id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.used[login] = append(p.used[login], id)
	return nil
}

func (p *fakePuzzles) usedBy(login string) []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int64(nil), p.used[login]...)
}

var errStorageDown = errors.New("storage down")

type testEnv struct {
	sched   *fakeScheduler
	storage *fakeStorage
	puzzles *fakePuzzles
	coord   *Coordinator
}

func newTestEnv(word string) *testEnv {
	env := &testEnv{
		sched:   newFakeScheduler(),
		storage: newFakeStorage(),
		puzzles: newFakePuzzles(word),
	}
	env.coord = NewCoordinator(env.storage, env.puzzles, DefaultRules(), WithScheduler(env.sched))
	return env
}
