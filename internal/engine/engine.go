// Package engine implements the computer player: a shallow minimax over a
// fully grown game tree, scored by material and a static exchange estimate,
// with a random pick among the near-best moves.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/tree"
)

// Default search settings.
const (
	DefaultDepth     = 3
	DefaultThreshold = 1
)

// ErrNoLegalMoves is returned when the bot is asked to move in a finished game.
var ErrNoLegalMoves = errors.New("no legal moves")

// Evaluation is the score of one root move.
type Evaluation struct {
	Move     board.Move
	Notation string
	Score    int
}

// String formats the evaluation for logs and the history panel.
func (e Evaluation) String() string {
	return e.Notation + "=" + ScoreToString(e.Score)
}

// Decision is the outcome of one bot turn.
type Decision struct {
	Branch      tree.Branch
	Score       int          // best score among the root moves
	Evaluations []Evaluation // in root branch order
	Candidates  int          // moves within the threshold of the best
	Nodes       int
	Time        time.Duration
}

// Move returns the chosen move.
func (d Decision) Move() board.Move {
	return d.Branch.Move
}

// Bot is the computer player.
type Bot struct {
	depth     int
	threshold int

	mu  sync.Mutex // guards rng
	rng *rand.Rand

	// Callbacks
	OnEvaluation func(Evaluation)
}

// Option configures a Bot.
type Option func(*Bot)

// WithDepth sets the tree depth. Values below 1 are raised to 1.
func WithDepth(depth int) Option {
	return func(b *Bot) {
		b.depth = max(depth, 1)
	}
}

// WithThreshold sets how far below the best score a move may be and still
// be picked. Zero always picks among the best moves.
func WithThreshold(threshold int) Option {
	return func(b *Bot) {
		b.threshold = max(threshold, 0)
	}
}

// WithRand sets the random source, for reproducible play.
func WithRand(rng *rand.Rand) Option {
	return func(b *Bot) {
		b.rng = rng
	}
}

// NewBot creates a bot with the default depth and threshold.
func NewBot(opts ...Option) *Bot {
	b := &Bot{
		depth:     DefaultDepth,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return b
}

// Depth returns the tree depth the bot searches.
func (b *Bot) Depth() int {
	return b.depth
}

// Threshold returns the selection threshold.
func (b *Bot) Threshold() int {
	return b.threshold
}

// Choose grows a tree from a copy of pos, scores every legal move and picks
// one at random among those within the threshold of the best score.
//
// It returns ErrNoLegalMoves when the game is already over, and ctx.Err()
// when the context is cancelled between root moves.
func (b *Bot) Choose(ctx context.Context, pos *board.Position) (Decision, error) {
	start := time.Now()

	root := tree.Grow(pos.Copy(), b.depth)
	if root.Status.GameOver() || root.Status == tree.Illegal {
		return Decision{}, fmt.Errorf("%w: position is %s", ErrNoLegalMoves, root.Status)
	}

	white := root.Position.SideToMove == board.White
	d := Decision{
		Score:       badEvaluation(white),
		Evaluations: make([]Evaluation, 0, len(root.Branches)),
	}

	for _, br := range root.Branches {
		if err := ctx.Err(); err != nil {
			return Decision{}, err
		}
		ev := Evaluation{Move: br.Move, Notation: br.Notation, Score: evaluate(br.Tree)}
		d.Score = best(d.Score, ev.Score, white)
		d.Evaluations = append(d.Evaluations, ev)
		if b.OnEvaluation != nil {
			b.OnEvaluation(ev)
		}
	}

	var options []int
	for i, ev := range d.Evaluations {
		if abs(d.Score-ev.Score) <= b.threshold {
			options = append(options, i)
		}
	}
	if len(options) == 0 {
		// A live position has at least one branch, and the best one is always in range.
		panic(fmt.Sprintf("engine: no candidate moves in %s position %s", root.Status, root.Position.FEN()))
	}

	d.Branch = root.Branches[options[b.intn(len(options))]]
	d.Candidates = len(options)
	d.Nodes = root.Size()
	d.Time = time.Since(start)

	log.Printf("[BOT] %s plays %s (score %s, %d/%d candidates, %d nodes, %v)",
		root.Position.SideToMove, d.Branch.Notation, ScoreToString(d.Score),
		d.Candidates, len(d.Evaluations), d.Nodes, d.Time.Round(time.Millisecond))
	return d, nil
}

func (b *Bot) intn(n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rng.Intn(n)
}

// Perft counts the legal move sequences of the given length from pos.
func Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	var nodes uint64
	for _, m := range pos.GenerateMoves() {
		child := pos.NextPosition(m)
		if depth == 1 {
			child.GenerateMoves()
			if child.Valid() {
				nodes++
			}
			continue
		}
		nodes += Perft(child, depth-1)
	}
	return nodes
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	switch {
	case score >= board.King.Weight():
		return "Mate"
	case score <= -board.King.Weight():
		return "-Mate"
	case score > 0:
		return fmt.Sprintf("+%d", score)
	default:
		return fmt.Sprintf("%d", score)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
