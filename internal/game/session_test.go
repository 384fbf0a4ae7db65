package game

import (
	"math"
	"sync/atomic"
	"testing"
	"time"

	"drawguess/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(sched Scheduler) *Session {
	return newSession(domain.NewSingleplayerGame(1, "alice", domain.Dashes{ID: 1, Word: "cat"}), sched)
}

func TestSessionFiresOnce(t *testing.T) {
	sched := newFakeScheduler()
	s := newTestSession(sched)

	var fired atomic.Int32
	s.Reschedule(func() { fired.Add(1) }, 10*time.Second)

	sched.Advance(9 * time.Second)
	assert.EqualValues(t, 0, fired.Load())
	assert.InDelta(t, 1.0, s.TimeLeft(), 0.001)

	sched.Advance(time.Second)
	assert.EqualValues(t, 1, fired.Load())

	sched.Advance(time.Minute)
	assert.EqualValues(t, 1, fired.Load())
	assert.True(t, math.IsInf(s.TimeLeft(), 1))
}

func TestSessionRescheduleKeepsLatest(t *testing.T) {
	sched := newFakeScheduler()
	s := newTestSession(sched)

	var first, second atomic.Int32
	s.Reschedule(func() { first.Add(1) }, 5*time.Second)
	s.Reschedule(func() { second.Add(1) }, 8*time.Second)

	sched.Advance(10 * time.Second)
	assert.EqualValues(t, 0, first.Load())
	assert.EqualValues(t, 1, second.Load())
}

func TestSessionCancelAndResumePreservesDeadline(t *testing.T) {
	sched := newFakeScheduler()
	s := newTestSession(sched)

	var fired atomic.Int32
	s.Reschedule(func() { fired.Add(1) }, 60*time.Second)

	sched.Advance(20 * time.Second)
	require.True(t, s.CancelShutdown())
	assert.InDelta(t, 40.0, s.TimeLeft(), 0.001)

	// a paused countdown does not move
	sched.Advance(time.Hour)
	assert.EqualValues(t, 0, fired.Load())
	assert.InDelta(t, 40.0, s.TimeLeft(), 0.001)
	assert.False(t, s.CancelShutdown())

	s.ResumeShutdown()
	sched.Advance(39 * time.Second)
	assert.EqualValues(t, 0, fired.Load())
	sched.Advance(time.Second)
	assert.EqualValues(t, 1, fired.Load())
}

func TestSessionCancelAfterFire(t *testing.T) {
	sched := newFakeScheduler()
	s := newTestSession(sched)

	s.Reschedule(func() {}, time.Second)
	sched.Advance(time.Second)

	assert.False(t, s.CancelShutdown())
}

func TestSessionCancelBeforeStart(t *testing.T) {
	s := newTestSession(newFakeScheduler())

	assert.False(t, s.CancelShutdown())
	assert.True(t, math.IsInf(s.TimeLeft(), 1))
}

func TestSessionFinishIsExclusive(t *testing.T) {
	sched := newFakeScheduler()
	s := newTestSession(sched)

	var fired atomic.Int32
	s.Reschedule(func() { fired.Add(1) }, time.Second)

	assert.True(t, s.Finish())
	assert.False(t, s.Finish())
	assert.True(t, s.Finished())

	sched.Advance(time.Minute)
	assert.EqualValues(t, 0, fired.Load())

	s.Reschedule(func() { fired.Add(1) }, time.Second)
	sched.Advance(time.Minute)
	assert.EqualValues(t, 0, fired.Load())
}

func TestSessionReopenRestoresCountdown(t *testing.T) {
	sched := newFakeScheduler()
	s := newTestSession(sched)

	var fired atomic.Int32
	s.Reschedule(func() { fired.Add(1) }, 30*time.Second)
	sched.Advance(10 * time.Second)

	require.True(t, s.Finish())
	sched.Advance(time.Minute)
	s.Reopen()

	assert.False(t, s.Finished())
	assert.InDelta(t, 20.0, s.TimeLeft(), 0.001)

	sched.Advance(20 * time.Second)
	assert.EqualValues(t, 1, fired.Load())
}

func TestSessionReopenPaused(t *testing.T) {
	sched := newFakeScheduler()
	s := newTestSession(sched)

	s.Reschedule(func() {}, 30*time.Second)
	sched.Advance(5 * time.Second)
	require.True(t, s.CancelShutdown())

	require.True(t, s.Finish())
	s.Reopen()

	assert.InDelta(t, 25.0, s.TimeLeft(), 0.001)
	assert.False(t, s.CancelShutdown())
}

func TestSessionReopenAfterDeadlineRunsTaskAgain(t *testing.T) {
	sched := newFakeScheduler()
	s := newTestSession(sched)

	var fired atomic.Int32
	s.Reschedule(func() { fired.Add(1) }, time.Second)

	// the deadline passes but the timer callback has not run when the claim happens
	sched.Skip(time.Second)
	require.True(t, s.Finish())
	s.Reopen()

	assert.False(t, s.Finished())
	assert.False(t, s.CancelShutdown())
	assert.True(t, math.IsInf(s.TimeLeft(), 1))

	sched.Advance(reopenRetryDelay)
	assert.EqualValues(t, 1, fired.Load())

	sched.Advance(time.Minute)
	assert.EqualValues(t, 1, fired.Load())
}

func TestSessionReopenAfterFireRunsTaskAgain(t *testing.T) {
	sched := newFakeScheduler()
	s := newTestSession(sched)

	var fired atomic.Int32
	s.Reschedule(func() { fired.Add(1) }, time.Second)
	sched.Advance(time.Second)
	require.EqualValues(t, 1, fired.Load())

	require.True(t, s.Finish())
	s.Reopen()
	sched.Advance(reopenRetryDelay)
	assert.EqualValues(t, 2, fired.Load())

	// a new claim cancels the pending retry
	s.Reopen()
	require.True(t, s.Finish())
	s.Reopen()
	require.True(t, s.Finish())
	sched.Advance(time.Minute)
	assert.EqualValues(t, 2, fired.Load())
}

func TestSessionRepeatable(t *testing.T) {
	sched := newFakeScheduler()
	s := newTestSession(sched)

	var ticks atomic.Int32
	s.SetRepeatable(func() { ticks.Add(1) }, 5*time.Second)

	sched.Advance(16 * time.Second)
	assert.EqualValues(t, 3, ticks.Load())

	s.CancelAll()
	sched.Advance(time.Minute)
	assert.EqualValues(t, 3, ticks.Load())
}

func TestSessionPointsCopy(t *testing.T) {
	s := newTestSession(newFakeScheduler())

	s.AddPoint(domain.Point{X: 1, Y: 1, Down: true})
	pts := s.Points()
	pts[0].X = 99

	assert.Equal(t, 1.0, s.Points()[0].X)
}

func TestSessionWithSystemScheduler(t *testing.T) {
	s := newTestSession(SystemScheduler)

	done := make(chan struct{})
	s.Reschedule(func() { close(done) }, 10*time.Millisecond)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown task did not run")
	}
}
