// Package tree grows trees of future positions and classifies each node as
// normal, check, checkmate, stalemate or illegal.
package tree

import "github.com/hailam/chessbot/internal/board"

// Status is the classification of a position within a tree.
type Status uint8

const (
	Normal Status = iota
	Check
	Checkmate
	Stalemate
	Illegal
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Normal:
		return "Normal"
	case Check:
		return "Check"
	case Checkmate:
		return "Checkmate"
	case Stalemate:
		return "Stalemate"
	case Illegal:
		return "Illegal"
	default:
		return "Unknown"
	}
}

// GameOver reports whether the status ends the game.
func (s Status) GameOver() bool {
	return s == Checkmate || s == Stalemate
}

// Tree is a position together with the legal futures branching from it.
// Trees are built once by Grow and not modified afterwards.
type Tree struct {
	Position *board.Position
	Status   Status
	Depth    int
	Branches []Branch // nil at the deepest layer
}

// Branch is one legal move out of a tree node and the subtree it leads to.
type Branch struct {
	Move     board.Move
	Notation string
	Tree     *Tree
}

// Grow builds a tree rooted at pos, expanded to the given depth. The tree
// takes ownership of pos.
//
// Moves are confirmed legal one ply down: a child whose position fails
// validation is marked Illegal and dropped. Checkmate and stalemate need at
// least one layer of children, so at depth 0 only Check and Normal are
// reported; a depth of 2 classifies every move made now.
func Grow(pos *board.Position, depth int) *Tree {
	t := &Tree{Position: pos, Depth: depth}

	moves := pos.GenerateMoves()
	if !pos.Valid() {
		// The position should not be reachable.
		t.Status = Illegal
		return t
	}

	if depth == 0 {
		if pos.InCheck() {
			t.Status = Check
		} else {
			t.Status = Normal
		}
		return t
	}

	t.Branches = make([]Branch, 0, len(moves))
	for _, m := range moves {
		child := Grow(pos.NextPosition(m), depth-1)
		if child.Status == Illegal {
			continue
		}
		t.Branches = append(t.Branches, Branch{Move: m, Tree: child})
	}
	t.notate()

	inCheck := pos.InCheck()
	switch {
	case inCheck && len(t.Branches) == 0:
		t.Status = Checkmate
	case inCheck:
		t.Status = Check
	case len(t.Branches) == 0:
		t.Status = Stalemate
	default:
		t.Status = Normal
	}
	return t
}

// notate fills in the final notation of every branch once the legal
// siblings and the child statuses are known.
func (t *Tree) notate() {
	legal := t.LegalMoves()
	for i := range t.Branches {
		b := &t.Branches[i]
		n := board.NewNotation(b.Move).Disambiguate(legal)
		switch b.Tree.Status {
		case Check:
			n = n.WithCheck()
		case Checkmate:
			n = n.WithCheckmate()
		}
		b.Notation = n.String()
	}
}

// LegalMoves returns the legal moves of the root position.
// The tree must have been grown to at least depth 1.
func (t *Tree) LegalMoves() []board.Move {
	moves := make([]board.Move, len(t.Branches))
	for i, b := range t.Branches {
		moves[i] = b.Move
	}
	return moves
}

// Find returns the branch moving from one square to another.
func (t *Tree) Find(from, to board.Square) (Branch, bool) {
	for _, b := range t.Branches {
		if b.Move.Matches(from, to) {
			return b, true
		}
	}
	return Branch{}, false
}

// Size returns the number of nodes in the tree.
func (t *Tree) Size() int {
	n := 1
	for _, b := range t.Branches {
		n += b.Tree.Size()
	}
	return n
}
