package engine

import (
	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/tree"
)

// mateScore is the score of a checkmate, from white's point of view.
var mateScore = board.King.Weight()

// evaluate scores the root of a tree. Positive scores favor white.
//
// Stalemate scores 0 and checkmate scores as a loss for the side to move.
// Leaves score material plus the best capture sequence available to the side
// to move. Inner nodes take the best child for the side to move.
func evaluate(t *tree.Tree) int {
	if t.Status == tree.Stalemate {
		return 0
	}
	white := t.Position.SideToMove == board.White
	bad := badEvaluation(white)
	if t.Status == tree.Checkmate {
		return bad
	}

	if t.Depth == 0 {
		return t.Position.Material + BestGrab(t.Position)
	}

	score := bad
	for _, br := range t.Branches {
		score = best(score, evaluate(br.Tree), white)
	}
	return score
}

// badEvaluation is the worst possible score for the given side.
func badEvaluation(white bool) int {
	if white {
		return -mateScore
	}
	return mateScore
}

// best returns the score preferred by the given side: white maximizes and
// black minimizes.
func best(a, b int, white bool) int {
	if white {
		return max(a, b)
	}
	return min(a, b)
}
