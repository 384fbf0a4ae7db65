package game

import (
	"math"
	"sync"
	"time"

	"drawguess/internal/domain"
)

// reopenRetryDelay spaces out new attempts to resolve an expired session
// whose previous resolution failed.
const reopenRetryDelay = time.Second

type timerState int

const (
	timerIdle timerState = iota
	timerArmed
	timerPaused
	timerFired
	timerStopped
)

func (t timerState) String() string {
	switch t {
	case timerIdle:
		return "idle"
	case timerArmed:
		return "armed"
	case timerPaused:
		return "paused"
	case timerFired:
		return "fired"
	default:
		return "stopped"
	}
}

// Session owns one live game together with its shutdown countdown, an
// optional repeating tick and the drawing log.
//
// The countdown is a small state machine guarded by mu:
//
//	idle -> armed -> fired
//	armed <-> paused
//	any -> stopped (CancelAll / Finish)
//
// Every arm bumps gen; a timer callback whose generation is stale does nothing.
type Session struct {
	game  *domain.Game
	sched Scheduler

	// answerMu serializes answer checks on this session.
	answerMu sync.Mutex

	mu        sync.Mutex
	state     timerState
	deadline  time.Time
	timeLeft  time.Duration
	task      func()
	timer     Timer
	gen       uint64
	finished  bool
	prevState timerState

	repeatTask   func()
	repeatPeriod time.Duration
	repeatTimer  Timer
	repeatGen    uint64

	points []domain.Point
}

func newSession(g *domain.Game, sched Scheduler) *Session {
	if sched == nil {
		sched = SystemScheduler
	}
	return &Session{game: g, sched: sched}
}

func (s *Session) Game() *domain.Game {
	return s.game
}

func (s *Session) ID() int64 {
	return s.game.ID
}

func (s *Session) Kind() domain.GameKind {
	return s.game.Kind
}

// Reschedule drops any pending shutdown and arms task to run after delay.
// Only the latest call is honored. A finished session ignores it.
func (s *Session) Reschedule(task func(), delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return
	}
	s.stopShutdownLocked()
	s.task = task
	s.armLocked(delay)
}

// CancelShutdown pauses an armed countdown that still has time left and
// remembers the remainder. It reports false when the countdown already
// fired, is already paused or stopped, or has reached its deadline.
func (s *Session) CancelShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != timerArmed {
		return false
	}

	left := s.deadline.Sub(s.sched.Now())
	if left <= 0 {
		return false
	}

	s.stopShutdownLocked()
	s.timeLeft = left
	s.state = timerPaused
	return true
}

// ResumeShutdown re-arms a paused countdown for exactly the remaining time.
func (s *Session) ResumeShutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != timerPaused || s.timeLeft <= 0 {
		return
	}
	s.armLocked(s.timeLeft)
}

// SetRepeatable runs task every period until the session is cancelled.
func (s *Session) SetRepeatable(task func(), period time.Duration) {
	if period <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return
	}
	s.stopRepeatLocked()
	s.repeatTask = task
	s.repeatPeriod = period
	s.armRepeatLocked()
}

// CancelAll stops the countdown and the repeating tick. Safe to call many times.
func (s *Session) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelAllLocked()
}

// Finish claims the session for resolution. Exactly one caller ever gets
// true; every later call (and every stale timer) is a no-op.
func (s *Session) Finish() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return false
	}
	s.finished = true
	s.prevState = s.state
	s.cancelAllLocked()
	return true
}

// Reopen undoes a Finish whose resolution could not be completed, putting
// the countdown back where it was. A countdown whose deadline passed while
// the session was claimed stays expired and its task runs again after
// reopenRetryDelay.
func (s *Session) Reopen() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.finished {
		return
	}
	s.finished = false

	switch s.prevState {
	case timerArmed:
		if s.timeLeft > 0 {
			s.armLocked(s.timeLeft)
		} else {
			s.expireLocked()
		}
	case timerPaused:
		s.state = timerPaused
	case timerFired:
		// the countdown already went off and its task lost the claim
		s.expireLocked()
	default:
		s.state = s.prevState
	}
	if s.repeatTask != nil {
		s.armRepeatLocked()
	}
}

// Finished reports whether the session has been claimed for resolution.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// TimeLeft returns the remaining seconds: the captured remainder while
// paused, the live remainder while armed and +Inf once the countdown is
// over or was never started.
func (s *Session) TimeLeft() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case timerPaused:
		return s.timeLeft.Seconds()
	case timerArmed:
		left := s.deadline.Sub(s.sched.Now())
		if left < 0 {
			left = 0
		}
		return left.Seconds()
	default:
		return math.Inf(1)
	}
}

func (s *Session) AddPoint(p domain.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = append(s.points, p)
}

// Points returns a copy of the drawing log.
func (s *Session) Points() []domain.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Point(nil), s.points...)
}

func (s *Session) armLocked(delay time.Duration) {
	s.gen++
	gen := s.gen
	s.deadline = s.sched.Now().Add(delay)
	s.timeLeft = delay
	s.state = timerArmed
	s.timer = s.sched.AfterFunc(delay, func() { s.fire(gen) })
}

func (s *Session) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.state != timerArmed {
		s.mu.Unlock()
		return
	}
	s.state = timerFired
	s.timeLeft = 0
	task := s.task
	s.mu.Unlock()

	if task != nil {
		task()
	}
}

// expireLocked marks the countdown as gone off and schedules its task again.
func (s *Session) expireLocked() {
	s.stopShutdownLocked()
	s.state = timerFired
	s.timeLeft = 0
	gen := s.gen
	s.timer = s.sched.AfterFunc(reopenRetryDelay, func() { s.refire(gen) })
}

func (s *Session) refire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.state != timerFired || s.finished {
		s.mu.Unlock()
		return
	}
	task := s.task
	s.mu.Unlock()

	if task != nil {
		task()
	}
}

func (s *Session) stopShutdownLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

func (s *Session) armRepeatLocked() {
	s.repeatGen++
	gen := s.repeatGen
	s.repeatTimer = s.sched.AfterFunc(s.repeatPeriod, func() { s.tick(gen) })
}

func (s *Session) tick(gen uint64) {
	s.mu.Lock()
	if gen != s.repeatGen || s.finished {
		s.mu.Unlock()
		return
	}
	task := s.repeatTask
	s.armRepeatLocked()
	s.mu.Unlock()

	if task != nil {
		task()
	}
}

func (s *Session) stopRepeatLocked() {
	if s.repeatTimer != nil {
		s.repeatTimer.Stop()
		s.repeatTimer = nil
	}
	s.repeatGen++
}

func (s *Session) cancelAllLocked() {
	if s.state == timerArmed {
		if left := s.deadline.Sub(s.sched.Now()); left > 0 {
			s.timeLeft = left
		} else {
			s.timeLeft = 0
		}
	}
	s.stopShutdownLocked()
	s.stopRepeatLocked()
	s.state = timerStopped
}
