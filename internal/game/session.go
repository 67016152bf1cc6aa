// Package game owns the state of one game: the authoritative position, the
// selected square, the move history and the dispatch of bot moves.
package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/engine"
	"github.com/hailam/chessbot/internal/storage"
	"github.com/hailam/chessbot/internal/tree"
)

// treeDepth is the depth of the tree kept for the current position. Two plies
// confirm the legality of every move and classify the position it leads to.
const treeDepth = 2

var (
	// ErrGameOver is returned for clicks after the game has ended.
	ErrGameOver = errors.New("game is over")
	// ErrBotThinking is returned for clicks while the bot is to move.
	ErrBotThinking = errors.New("bot is to move")
)

// Recorder stores finished games.
type Recorder interface {
	RecordGame(rec storage.GameRecord) error
}

// Option configures a Session.
type Option func(*Session)

// WithBot sets the bot used for bot-controlled sides.
func WithBot(bot *engine.Bot) Option {
	return func(s *Session) {
		s.bot = bot
	}
}

// WithBotColors hands the given sides to the bot.
func WithBotColors(colors ...board.Color) Option {
	return func(s *Session) {
		for _, c := range colors {
			s.botColors[c] = true
		}
	}
}

// WithRecorder sets where finished games are stored.
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		s.recorder = r
	}
}

// WithPosition starts the session from a given position instead of the
// standard starting position. NewGame still resets to the standard start.
func WithPosition(pos *board.Position) Option {
	return func(s *Session) {
		s.start = pos
	}
}

// WithContext sets the parent context for bot computations.
func WithContext(ctx context.Context) Option {
	return func(s *Session) {
		s.ctx = ctx
	}
}

// Session is one game between any mix of humans and the bot.
// All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	id       string
	pos      *board.Position
	tree     *tree.Tree
	selected board.Square
	lastMove board.Move
	history  []string // notation of each ply, then the result token
	moves    []string // long algebraic notation of each ply
	result   string
	started  time.Time

	botColors   [2]bool
	bot         *engine.Bot
	thinking    bool
	generation  uint64 // bumped on every change of position; stale bot results are dropped
	cancelBot   context.CancelFunc
	evaluations []engine.Evaluation

	ctx      context.Context
	stop     context.CancelFunc
	wg       sync.WaitGroup
	start    *board.Position
	recorder Recorder

	listeners map[int]func(Snapshot)
	nextID    int
	version   uint64 // bumped on every notified change

	deliverMu sync.Mutex // serializes listener calls
	delivered uint64     // version of the last snapshot handed to listeners
}

// NewSession creates a session at the starting position. If the bot plays
// white it starts thinking right away.
func NewSession(opts ...Option) *Session {
	s := &Session{
		ctx:       context.Background(),
		listeners: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bot == nil {
		s.bot = engine.NewBot()
	}
	s.ctx, s.stop = context.WithCancel(s.ctx)

	pos := s.start
	if pos == nil {
		pos = board.NewPosition()
	}
	s.mu.Lock()
	s.resetLocked(pos.Copy())
	s.startBotLocked()
	s.mu.Unlock()
	return s
}

// resetLocked starts a new game from pos.
func (s *Session) resetLocked(pos *board.Position) {
	if s.cancelBot != nil {
		s.cancelBot()
		s.cancelBot = nil
	}
	s.generation++
	s.thinking = false

	s.id = uuid.New().String()
	s.pos = pos
	s.tree = tree.Grow(pos.Copy(), treeDepth)
	s.selected = board.NoSquare
	s.lastMove = board.NoMove
	s.history = nil
	s.moves = nil
	s.result = ""
	s.evaluations = nil
	s.started = time.Now()
	if s.tree.Status.GameOver() {
		s.result = board.ResultToken(s.tree.Status == tree.Checkmate, pos.SideToMove)
	}
}

// ID returns the id of the current game. It changes on NewGame.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// ProcessClick handles a click on a square. With nothing selected, clicking
// a piece of the side to move selects it. With a square selected, the click
// plays the legal move from the selected square to sq if there is one; the
// selection is cleared either way. It reports whether a move was played.
func (s *Session) ProcessClick(sq board.Square) (bool, error) {
	if !sq.IsValid() {
		return false, fmt.Errorf("square %d out of range", sq)
	}

	s.mu.Lock()
	if err := s.humanTurnLocked(); err != nil {
		s.mu.Unlock()
		return false, err
	}

	if s.selected == board.NoSquare {
		if !s.pos.PieceAt(sq).IsActive(s.pos.SideToMove) {
			s.mu.Unlock()
			return false, nil
		}
		s.selected = sq
		s.notifyAndUnlock(nil)
		return false, nil
	}

	from := s.selected
	s.selected = board.NoSquare
	b, ok := s.tree.Find(from, sq)
	if !ok {
		s.notifyAndUnlock(nil)
		return false, nil
	}

	rec := s.applyLocked(b)
	s.startBotLocked()
	s.notifyAndUnlock(rec)
	return true, nil
}

// Play plays a move given in long algebraic notation (e.g. "e2e4"), as if
// its two squares had been clicked.
func (s *Session) Play(uci string) error {
	s.mu.Lock()
	if err := s.humanTurnLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	m, err := board.ParseMove(uci, s.tree.LegalMoves())
	if err != nil {
		s.mu.Unlock()
		return err
	}
	b, _ := s.tree.Find(m.From, m.To)
	rec := s.applyLocked(b)
	s.startBotLocked()
	s.notifyAndUnlock(rec)
	return nil
}

func (s *Session) humanTurnLocked() error {
	if s.result != "" {
		return ErrGameOver
	}
	if s.thinking || s.botColors[s.pos.SideToMove] {
		return ErrBotThinking
	}
	return nil
}

// applyLocked plays a legal branch of the current tree. It returns the game
// record if the move ended the game.
func (s *Session) applyLocked(b tree.Branch) *storage.GameRecord {
	mover := s.pos.SideToMove
	s.pos = s.pos.NextPosition(b.Move)
	s.tree = tree.Grow(s.pos.Copy(), treeDepth)
	s.generation++
	s.selected = board.NoSquare
	s.lastMove = b.Move
	s.history = append(s.history, b.Notation)
	s.moves = append(s.moves, b.Move.UCI())

	log.Printf("[MOVE] %d. %s %s (%s)", len(s.moves), mover, b.Notation, s.tree.Status)

	if !s.tree.Status.GameOver() {
		return nil
	}
	s.result = board.ResultToken(s.tree.Status == tree.Checkmate, s.pos.SideToMove)
	s.history = append(s.history, s.result)
	log.Printf("[SESSION] game %s over: %s", s.id, s.result)

	return &storage.GameRecord{
		ID:       s.id,
		White:    s.playerLocked(board.White),
		Black:    s.playerLocked(board.Black),
		Moves:    slices.Clone(s.moves),
		History:  slices.Clone(s.history),
		Result:   s.result,
		FinalFEN: s.pos.FEN(),
		Started:  s.started,
		Finished: time.Now(),
	}
}

func (s *Session) playerLocked(c board.Color) string {
	if s.botColors[c] {
		return storage.PlayerBot
	}
	return storage.PlayerHuman
}

// StartBot starts a bot computation if the bot is to move and none is
// running. It reports whether one was started. The computation is cancelled
// when ctx is done, by NewGame or by Close.
func (s *Session) StartBot(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startBotWithLocked(ctx)
}

func (s *Session) startBotLocked() bool {
	return s.startBotWithLocked(s.ctx)
}

func (s *Session) startBotWithLocked(parent context.Context) bool {
	if s.thinking || s.result != "" || !s.botColors[s.pos.SideToMove] {
		return false
	}

	ctx, cancel := context.WithCancel(parent)
	// Close must also stop computations started with an outside context.
	stop := context.AfterFunc(s.ctx, cancel)

	s.thinking = true
	s.cancelBot = cancel
	gen := s.generation
	pos := s.pos.Copy()

	log.Printf("[BOT] thinking for %s", pos.SideToMove)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer stop()
		defer cancel()
		d, err := s.bot.Choose(ctx, pos)
		s.finishBot(gen, d, err)
	}()
	return true
}

// finishBot applies a bot decision unless the game moved on while the bot
// was thinking.
func (s *Session) finishBot(gen uint64, d engine.Decision, err error) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		log.Printf("[BOT] dropping stale result")
		return
	}
	s.thinking = false
	s.cancelBot = nil

	if err != nil {
		s.mu.Unlock()
		if !errors.Is(err, context.Canceled) {
			log.Printf("[BOT] no move: %v", err)
		}
		return
	}

	b, ok := s.tree.Find(d.Move().From, d.Move().To)
	if !ok {
		s.mu.Unlock()
		panic(fmt.Sprintf("game: bot chose %s, which is not legal in %s", d.Move(), s.pos.FEN()))
	}
	s.evaluations = d.Evaluations
	rec := s.applyLocked(b)
	s.startBotLocked()
	s.notifyAndUnlock(rec)
}

// NewGame abandons the current game, including any bot computation, and
// starts over from the standard starting position.
func (s *Session) NewGame() {
	s.mu.Lock()
	s.resetLocked(board.NewPosition())
	log.Printf("[SESSION] new game %s", s.id)
	s.startBotLocked()
	s.notifyAndUnlock(nil)
}

// SetBotColors chooses which sides the bot plays. If the bot is now to move
// it starts thinking; if it no longer is, its computation is abandoned.
func (s *Session) SetBotColors(white, black bool) {
	s.mu.Lock()
	s.botColors = [2]bool{white, black}
	if s.thinking && !s.botColors[s.pos.SideToMove] {
		s.cancelBot()
		s.cancelBot = nil
		s.thinking = false
		s.generation++
	}
	s.startBotLocked()
	s.notifyAndUnlock(nil)
}

// Thinking reports whether a bot computation is in flight.
func (s *Session) Thinking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thinking
}

// Wait blocks until no bot computation is running.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels any bot computation and waits for it to finish.
func (s *Session) Close() {
	s.stop()
	s.wg.Wait()
}

// Subscribe registers fn to receive a snapshot after every change. fn is
// called without the session lock held, from whichever goroutine made the
// change, one call at a time. Snapshots arrive in version order; one that
// is older than a snapshot already delivered is skipped. fn may read the
// session but must not change it. The returned function unregisters it.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// notifyAndUnlock releases the lock, then stores rec (if any) and tells the
// listeners about the new state unless a newer one has already gone out.
func (s *Session) notifyAndUnlock(rec *storage.GameRecord) {
	s.version++
	snap := s.snapshotLocked()
	listeners := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	recorder := s.recorder
	s.mu.Unlock()

	if rec != nil && recorder != nil {
		if err := recorder.RecordGame(*rec); err != nil {
			log.Printf("Warning: Failed to record game: %v", err)
		}
	}

	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if snap.Version <= s.delivered {
		return
	}
	s.delivered = snap.Version
	for _, fn := range listeners {
		fn(snap)
	}
}
