package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"drawguess/internal/domain"
	"drawguess/internal/logger"
)

const defaultPersistTimeout = 5 * time.Second

// Rules are the tunable constants of both game kinds.
type Rules struct {
	SingleplayerTimeLimit time.Duration
	SingleplayerScore     int
	MultiplayerTimeLimit  time.Duration
	MultiplayerScore      int
	MinPlayers            int
	MaxPlayers            int
	TimerTick             time.Duration
}

func DefaultRules() Rules {
	return Rules{
		SingleplayerTimeLimit: 60 * time.Second,
		SingleplayerScore:     1,
		MultiplayerTimeLimit:  120 * time.Second,
		MultiplayerScore:      3,
		MinPlayers:            2,
		MaxPlayers:            6,
		TimerTick:             5 * time.Second,
	}
}

type Option func(*Coordinator)

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s Scheduler) Option {
	return func(c *Coordinator) {
		c.sched = s
	}
}

// WithPersistTimeout bounds storage calls made from timer callbacks.
func WithPersistTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		c.persistTimeout = d
	}
}

// Coordinator runs every live game: creation, countdowns, answers,
// exits and the single terminal resolution of each session.
type Coordinator struct {
	rules          Rules
	storage        Storage
	puzzles        Puzzles
	sched          Scheduler
	persistTimeout time.Duration

	registries map[domain.GameKind]*Registry
	relations  *Directory
	queue      *Queue
	matchMu    sync.Mutex

	// admitMu guards admission: a login is either free, queued, pending
	// (its game is being created) or related to exactly one live game.
	admitMu sync.Mutex
	pending map[string]struct{}
}

func NewCoordinator(storage Storage, puzzles Puzzles, rules Rules, opts ...Option) *Coordinator {
	c := &Coordinator{
		rules:          rules,
		storage:        storage,
		puzzles:        puzzles,
		sched:          SystemScheduler,
		persistTimeout: defaultPersistTimeout,
		relations:      NewDirectory(),
		queue:          NewQueue(),
		pending:        make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.registries = map[domain.GameKind]*Registry{
		domain.KindSingleplayer: NewRegistry(domain.KindSingleplayer, c.sched),
		domain.KindMultiplayer:  NewRegistry(domain.KindMultiplayer, c.sched),
	}
	return c
}

func (c *Coordinator) Registry(kind domain.GameKind) *Registry {
	return c.registries[kind]
}

func (c *Coordinator) Relations() *Directory {
	return c.relations
}

func (c *Coordinator) Queue() *Queue {
	return c.queue
}

// CreateSingleplayerGame picks a puzzle for the login behind conn, persists
// the game and registers its session. The countdown is not started.
func (c *Coordinator) CreateSingleplayerGame(ctx context.Context, conn Conn) (*Session, error) {
	login := conn.Login()
	if err := c.reserve(login); err != nil {
		return nil, err
	}
	defer c.release(login)

	dashes, err := c.puzzles.NextDashes(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("pick puzzle: %w", err)
	}

	g, err := c.storage.CreateSingleplayerGame(ctx, login, dashes)
	if err != nil {
		return nil, fmt.Errorf("create singleplayer game: %w", err)
	}

	s := c.registries[domain.KindSingleplayer].CreateScheduledGame(g)
	c.relations.AddRelation(conn, s, RoleGuesser, 1)

	logger.Info("singleplayer game created", "game_id", g.ID, "login", login, "dashes_id", dashes.ID)
	return s, nil
}

// StartSingleplayerGame creates a game and starts its countdown.
func (c *Coordinator) StartSingleplayerGame(ctx context.Context, conn Conn) (float64, error) {
	s, err := c.CreateSingleplayerGame(ctx, conn)
	if err != nil {
		return 0, err
	}
	return c.StartTimer(s.ID(), domain.KindSingleplayer)
}

// StartTimer (re)arms the loss countdown of a game, sends every participant
// its start snapshot and returns the remaining seconds.
func (c *Coordinator) StartTimer(gameID int64, kind domain.GameKind) (float64, error) {
	reg, ok := c.registries[kind]
	if !ok {
		return 0, ErrWrongGameKind
	}
	s, ok := reg.GetScheduledGame(gameID)
	if !ok {
		return 0, ErrNoActiveGame
	}

	s.Reschedule(c.loseTask(kind, gameID), c.finishTime(kind))
	if hooks[kind].ticker {
		s.SetRepeatable(c.timerTask(kind, gameID), c.rules.TimerTick)
	}
	gamesStarted.WithLabelValues(kind.String()).Inc()

	for _, rel := range c.relations.GameRelations(s) {
		rel.Conn.Send(c.JoinGameMessage(s, rel.Login))
	}

	logger.Info("game timer started", "game_id", gameID, "kind", kind.String(), "limit", c.finishTime(kind).String())
	return s.TimeLeft(), nil
}

// CheckAnswer evaluates an answer from login. An answer that loses the race
// against the countdown is dropped silently.
func (c *Coordinator) CheckAnswer(ctx context.Context, login, answer string) error {
	rel, ok := c.relations.GetRelation(login)
	if !ok {
		return ErrNoActiveGame
	}
	s, ok := c.registries[rel.Kind].GetScheduledGame(rel.GameID)
	if !ok {
		return ErrNoActiveGame
	}
	if rel.Role == RolePainter {
		return ErrPainterAnswer
	}

	s.answerMu.Lock()
	defer s.answerMu.Unlock()

	if !s.CancelShutdown() {
		logger.Debug("late answer discarded", "game_id", rel.GameID, "login", login)
		return nil
	}

	correct := s.Game().IsCorrectAnswer(answer)
	answersChecked.WithLabelValues(fmt.Sprint(correct)).Inc()

	if !correct {
		rel.Conn.Send(answerMessage(rel, false))
		s.ResumeShutdown()
		return nil
	}

	if err := c.runWinTask(ctx, s, rel); err != nil {
		s.ResumeShutdown()
		return err
	}
	return nil
}

// ClearUserGame ends the game of login early without a result broadcast
// and without rating changes. Calling it again is a no-op.
func (c *Coordinator) ClearUserGame(ctx context.Context, login string) error {
	rel, ok := c.relations.GetRelation(login)
	if !ok {
		return nil
	}

	reg := c.registries[rel.Kind]
	s, ok := reg.GetScheduledGame(rel.GameID)
	if !ok {
		c.relations.RemoveGameRelation(login, rel.Kind, rel.GameID)
		return nil
	}

	// no answer may be in flight while the game is torn down
	s.answerMu.Lock()
	defer s.answerMu.Unlock()

	if !s.Finish() {
		// already resolving on another path
		c.relations.RemoveGameRelation(login, rel.Kind, rel.GameID)
		return nil
	}

	if err := c.deleteClaimed(ctx, s.Game()); err != nil {
		s.Reopen()
		return err
	}

	rels := c.retire(s)
	for _, r := range rels {
		c.relations.RemoveGameRelation(r.Login, r.Kind, r.GameID)
	}

	leaver := rel.PlayerInfo()
	for _, r := range rels {
		if r.Login == login {
			continue
		}
		r.Conn.Send(Message{Type: MsgPlayerDisconnect, Content: DisconnectContent{Player: leaver}})
	}

	gamesFinished.WithLabelValues(rel.Kind.String(), "aborted").Inc()
	logger.Info("game cleared", "game_id", rel.GameID, "kind", rel.Kind.String(), "login", login)
	return nil
}

// ExitGame is an explicit request to leave the current game.
func (c *Coordinator) ExitGame(ctx context.Context, login string) error {
	c.queue.Remove(login)
	return c.ClearUserGame(ctx, login)
}

// Disconnect cleans up after a closed connection. A relation bound to a
// different connection of the same login is left alone.
func (c *Coordinator) Disconnect(ctx context.Context, conn Conn) error {
	login := conn.Login()
	c.queue.RemoveConn(login, conn.ID())

	rel, ok := c.relations.GetRelation(login)
	if !ok || rel.Conn.ID() != conn.ID() {
		return nil
	}
	return c.ClearUserGame(ctx, login)
}

// SendGameState sends login its current STATE snapshot.
func (c *Coordinator) SendGameState(login string) error {
	rel, s, err := c.userSession(login)
	if err != nil {
		return err
	}
	rel.Conn.Send(c.GameStateMessage(s, login))
	return nil
}

// AddPoint appends a stroke of the painter and forwards it to the other participants.
func (c *Coordinator) AddPoint(login string, p domain.Point) error {
	rel, s, err := c.userSession(login)
	if err != nil {
		return err
	}
	if rel.Kind != domain.KindMultiplayer {
		return ErrWrongGameKind
	}
	if rel.Role != RolePainter {
		return ErrNotPainter
	}

	s.AddPoint(p)
	c.broadcastExcept(s, login, Message{Type: MsgNewPoint, Content: p})
	return nil
}

// AddVote forwards a vote on the answer of the player at seat v.ID.
func (c *Coordinator) AddVote(login string, v domain.Vote) error {
	rel, s, err := c.userSession(login)
	if err != nil {
		return err
	}
	if rel.Kind != domain.KindMultiplayer {
		return ErrWrongGameKind
	}
	if v.ID < 1 || v.ID > len(s.Game().Logins) {
		return ErrInvalidVote
	}

	voter := rel.PlayerInfo()
	c.broadcastExcept(s, login, Message{
		Type:    MsgNewVote,
		Content: VoteContent{ID: v.ID, Vote: v.Vote, Player: &voter},
	})
	return nil
}

func answerMessage(rel Relation, right bool) Message {
	return Message{
		Type:    MsgCheckAnswer,
		Content: AnswerResult{Right: right, Player: rel.PlayerInfo()},
	}
}

// reserve admits login into a game that is about to be created. A login
// that is queued, pending or already playing is refused.
func (c *Coordinator) reserve(login string) error {
	c.admitMu.Lock()
	defer c.admitMu.Unlock()

	if c.busyLocked(login) || c.queue.Contains(login) {
		return ErrAlreadyPlaying
	}
	c.pending[login] = struct{}{}
	return nil
}

func (c *Coordinator) release(logins ...string) {
	c.admitMu.Lock()
	defer c.admitMu.Unlock()

	for _, l := range logins {
		delete(c.pending, l)
	}
}

func (c *Coordinator) busyLocked(login string) bool {
	if _, ok := c.pending[login]; ok {
		return true
	}
	_, ok := c.relations.GetRelation(login)
	return ok
}

// Close stops every countdown. Used on server shutdown.
func (c *Coordinator) Close() {
	for _, reg := range c.registries {
		for _, s := range reg.Sessions() {
			s.CancelAll()
		}
	}
}

func (c *Coordinator) userSession(login string) (Relation, *Session, error) {
	rel, ok := c.relations.GetRelation(login)
	if !ok {
		return Relation{}, nil, ErrNoActiveGame
	}
	s, ok := c.registries[rel.Kind].GetScheduledGame(rel.GameID)
	if !ok {
		return Relation{}, nil, ErrNoActiveGame
	}
	return rel, s, nil
}

func (c *Coordinator) broadcastExcept(s *Session, login string, msg Message) {
	for _, rel := range c.relations.GameRelations(s) {
		if rel.Login == login {
			continue
		}
		rel.Conn.Send(msg)
	}
}

// retire drops a claimed session from its registry and returns the relations
// it had, which finish still needs for the broadcast.
func (c *Coordinator) retire(s *Session) []Relation {
	rels := c.relations.GameRelations(s)
	c.registries[s.Kind()].RemoveScheduledGame(s.ID())
	return rels
}

// deleteClaimed removes the stored row of a claimed game. A row that is
// already gone counts as deleted.
func (c *Coordinator) deleteClaimed(ctx context.Context, g *domain.Game) error {
	err := c.storage.DeleteGame(ctx, g.Kind, g.ID)
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNoRowsAffected) {
		logger.Warn("game row already gone", "game_id", g.ID, "kind", g.Kind.String())
		return nil
	}
	return fmt.Errorf("delete game %d: %w", g.ID, err)
}

func (c *Coordinator) loseTask(kind domain.GameKind, gameID int64) func() {
	return func() {
		s, ok := c.registries[kind].GetScheduledGame(gameID)
		if !ok {
			return
		}
		c.runLoseTask(s)
	}
}

func (c *Coordinator) timerTask(kind domain.GameKind, gameID int64) func() {
	return func() {
		s, ok := c.registries[kind].GetScheduledGame(gameID)
		if !ok {
			return
		}
		msg := Message{
			Type: MsgTimerState,
			Content: TimerContent{
				TimeLeft:  wireSeconds(s.TimeLeft()),
				TimeLimit: c.finishTime(kind).Seconds(),
			},
		}
		for _, conn := range c.relations.GetGameSessions(s) {
			conn.Send(msg)
		}
	}
}

// runWinTask resolves s in favor of the answering participant. The stored
// row is deleted before anything in memory changes; when that fails the
// session is reopened and the game goes on. Rating failures after a
// successful delete are reported but do not stop the resolution.
func (c *Coordinator) runWinTask(ctx context.Context, s *Session, winnerRel Relation) error {
	if !s.Finish() {
		logger.Debug("win lost the claim", "game_id", s.ID(), "login", winnerRel.Login)
		return nil
	}

	g := s.Game()
	winner := winnerRel.Login
	if err := c.deleteClaimed(ctx, g); err != nil {
		s.Reopen()
		logger.Error("game win persistence failed", "game_id", g.ID, "winner", winner, "error", err)
		return err
	}

	score := c.winScore(g.Kind)
	var errs []error
	if err := c.storage.UpdateRating(ctx, winner, score); err != nil {
		errs = append(errs, fmt.Errorf("update rating of %s: %w", winner, err))
	}
	if after := hooks[g.Kind].afterWin; after != nil {
		if err := after(c, ctx, s, winner); err != nil {
			errs = append(errs, fmt.Errorf("after win: %w", err))
		}
	}

	rels := c.retire(s)
	winnerRel.Conn.Send(answerMessage(winnerRel, true))
	c.finish(s, rels, ResultWon, winner, score)

	err := errors.Join(errs...)
	if err != nil {
		logger.Error("game win rating update failed", "game_id", g.ID, "winner", winner, "error", err)
	}
	return err
}

// runLoseTask ends the game without a winner. A failed delete reopens the
// session, which retries the loss later.
func (c *Coordinator) runLoseTask(s *Session) {
	if !s.Finish() {
		return
	}

	g := s.Game()

	ctx, cancel := context.WithTimeout(context.Background(), c.persistTimeout)
	defer cancel()

	if err := c.deleteClaimed(ctx, g); err != nil {
		s.Reopen()
		logger.Error("game loss persistence failed", "game_id", g.ID, "error", err)
		return
	}

	c.finish(s, c.retire(s), ResultLost, "", 0)
}

// finish drops the relations of a claimed game and sends STOP_GAME to every participant.
func (c *Coordinator) finish(s *Session, rels []Relation, result GameResult, winner string, score int) {
	g := s.Game()

	var winnerPtr *string
	if result == ResultWon {
		winnerPtr = &winner
	}

	for _, rel := range rels {
		c.relations.RemoveGameRelation(rel.Login, rel.Kind, rel.GameID)
	}

	for _, rel := range rels {
		content := FinishContent{Result: ResultLost, Winner: winnerPtr, Word: g.Word}
		if result == ResultWon && rel.Login == winner {
			content.Result = ResultWon
			content.Score = score
		}
		rel.Conn.Send(Message{Type: MsgStopGame, Content: content})
	}

	gamesFinished.WithLabelValues(g.Kind.String(), result.String()).Inc()
	logger.Info("game finished", "game_id", g.ID, "kind", g.Kind.String(), "result", result.String(), "winner", winner)
}
