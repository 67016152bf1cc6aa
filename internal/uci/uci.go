// Package uci drives the bot through the Universal Chess Interface protocol.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/engine"
	"github.com/hailam/chessbot/internal/tree"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	depth     int
	threshold int
	seed      *int64 // fixed random seed, for reproducible games

	position *board.Position

	in  io.Reader
	out io.Writer
	mu  sync.Mutex // guards out

	// Search state
	searching  bool
	cancel     context.CancelFunc
	searchDone chan struct{}
}

// New creates a protocol handler reading commands from in and writing
// responses to out.
func New(in io.Reader, out io.Writer) *UCI {
	return &UCI{
		depth:     engine.DefaultDepth,
		threshold: engine.DefaultThreshold,
		position:  board.NewPosition(),
		in:        in,
		out:       out,
	}
}

// SetSeed makes the bot's choice among equal moves reproducible.
func (u *UCI) SetSeed(seed int64) {
	u.seed = &seed
}

// Run processes commands until "quit" or the end of input. At the end of
// input it waits for a running search to report its move.
func (u *UCI) Run() error {
	scanner := bufio.NewScanner(u.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			return nil
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.println(u.position.String())
		case "perft":
			u.handlePerft(args)
		default:
			u.printf("info string Unknown command: %s\n", cmd)
		}
	}

	u.waitSearch()
	return scanner.Err()
}

func (u *UCI) println(s string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintln(u.out, s)
}

func (u *UCI) printf(format string, args ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.println("id name ChessBot")
	u.println("id author ChessBot Team")
	u.println("")
	u.printf("option name Depth type spin default %d min 1 max 6\n", engine.DefaultDepth)
	u.printf("option name Threshold type spin default %d min 0 max 100\n", engine.DefaultThreshold)
	u.println("uciok")
}

// handleNewGame resets the position.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.position = board.NewPosition()
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
//
// On any error the previous position is kept.
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var pos *board.Position
	switch args[0] {
	case "startpos":
		pos = board.NewPosition()
	case "fen":
		var err error
		pos, err = board.ParseFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			u.printf("info string Invalid FEN: %v\n", err)
			return
		}
	default:
		u.printf("info string Invalid position: %s\n", args[0])
		return
	}

	if movesAt < len(args) {
		for _, moveStr := range args[movesAt+1:] {
			move, err := board.ParseMove(moveStr, legalMoves(pos))
			if err != nil {
				u.printf("info string Invalid move: %s\n", moveStr)
				return
			}
			pos.PlayMove(move)
		}
	}

	u.handleStop()
	u.position = pos
}

// legalMoves filters the pseudo-legal moves of pos by playing each one.
func legalMoves(pos *board.Position) []board.Move {
	return tree.Grow(pos.Copy(), 1).LegalMoves()
}

// GoOptions holds parsed "go" command options.
// Time controls are accepted and ignored: the bot always searches its fixed depth.
type GoOptions struct {
	Depth int
}

// parseGoOptions parses "go" command arguments.
func parseGoOptions(args []string) GoOptions {
	opts := GoOptions{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "wtime", "btime", "winc", "binc", "movestogo", "movetime", "nodes", "mate":
			i++
		}
	}
	return opts
}

// handleGo starts a search in the background.
func (u *UCI) handleGo(args []string) {
	u.handleStop()
	opts := parseGoOptions(args)

	depth := u.depth
	if opts.Depth > 0 {
		depth = opts.Depth
	}
	bot := u.newBot(depth)
	bot.OnEvaluation = u.sendInfo

	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel
	u.searching = true
	u.searchDone = make(chan struct{})

	pos := u.position.Copy()

	go func() {
		defer close(u.searchDone)
		defer cancel()

		d, err := bot.Choose(ctx, pos)
		switch {
		case err == nil:
			u.printf("bestmove %s\n", d.Move().UCI())
		case errors.Is(err, engine.ErrNoLegalMoves):
			u.println("bestmove 0000")
		default:
			// Stopped early: any legal move will do.
			if moves := legalMoves(pos); len(moves) > 0 {
				u.printf("bestmove %s\n", moves[0].UCI())
			} else {
				u.println("bestmove 0000")
			}
		}
	}()
}

func (u *UCI) newBot(depth int) *engine.Bot {
	opts := []engine.Option{engine.WithDepth(depth), engine.WithThreshold(u.threshold)}
	if u.seed != nil {
		opts = append(opts, engine.WithRand(rand.New(rand.NewSource(*u.seed))))
	}
	return engine.NewBot(opts...)
}

// sendInfo reports one scored root move. Scores are in pawns, so they are
// scaled to centipawns; a king capture shows up as a very large score.
func (u *UCI) sendInfo(ev engine.Evaluation) {
	u.printf("info currmove %s score cp %d string %s\n", ev.Move.UCI(), ev.Score*100, ev)
}

// handleStop cancels the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	if u.searching {
		u.cancel()
		u.waitSearch()
	}
}

func (u *UCI) waitSearch() {
	if u.searching {
		<-u.searchDone
		u.searching = false
	}
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "name":
			if i+1 < len(args) {
				name = args[i+1]
				i++
			}
		case "value":
			if i+1 < len(args) {
				value = args[i+1]
				i++
			}
		}
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		u.printf("info string Invalid value for %s: %q\n", name, value)
		return
	}
	switch strings.ToLower(name) {
	case "depth":
		u.depth = max(n, 1)
	case "threshold":
		u.threshold = max(n, 0)
	default:
		u.printf("info string Unknown option: %s\n", name)
	}
}

// handlePerft runs a perft test, with a per-move breakdown.
func (u *UCI) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			depth = n
		}
	}

	start := time.Now()
	var nodes uint64
	for _, m := range legalMoves(u.position) {
		n := engine.Perft(u.position.NextPosition(m), depth-1)
		u.printf("%s: %d\n", m.UCI(), n)
		nodes += n
	}
	elapsed := time.Since(start)

	u.printf("Nodes: %d\n", nodes)
	u.printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		u.printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}
