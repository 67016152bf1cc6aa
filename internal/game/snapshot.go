package game

import (
	"golang.org/x/exp/slices"

	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/engine"
	"github.com/hailam/chessbot/internal/tree"
)

// Snapshot is a copy of the session state for drawing. It shares nothing
// with the session.
type Snapshot struct {
	ID          string
	Version     uint64 // increases with every change of the session
	Board       [64]board.Piece
	SideToMove  board.Color
	MoveNumber  int
	Status      tree.Status
	Selected    board.Square   // NoSquare when nothing is selected
	Targets     []board.Square // legal destinations of the selected piece
	LastMove    board.Move     // NoMove before the first move
	CheckSquare board.Square   // king in check, or NoSquare
	History     []string
	Result      string // empty while the game is running
	Thinking    bool
	BotColors   [2]bool
	Evaluations []engine.Evaluation // from the latest bot decision
	FEN         string
}

// GameOver reports whether the game has ended.
func (s Snapshot) GameOver() bool {
	return s.Result != ""
}

// IsTarget reports whether sq is a legal destination of the selected piece.
func (s Snapshot) IsTarget(sq board.Square) bool {
	return slices.Contains(s.Targets, sq)
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:          s.id,
		Version:     s.version,
		Board:       s.pos.Board,
		SideToMove:  s.pos.SideToMove,
		MoveNumber:  s.pos.FullMoveNumber,
		Status:      s.tree.Status,
		Selected:    s.selected,
		LastMove:    s.lastMove,
		CheckSquare: board.NoSquare,
		History:     slices.Clone(s.history),
		Result:      s.result,
		Thinking:    s.thinking,
		BotColors:   s.botColors,
		Evaluations: slices.Clone(s.evaluations),
		FEN:         s.pos.FEN(),
	}
	if s.tree.Status == tree.Check || s.tree.Status == tree.Checkmate {
		snap.CheckSquare = s.pos.KingSquare[s.pos.SideToMove]
	}
	if s.selected != board.NoSquare {
		for _, m := range s.tree.LegalMoves() {
			if m.From == s.selected {
				snap.Targets = append(snap.Targets, m.To)
			}
		}
	}
	return snap
}
