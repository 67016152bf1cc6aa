package board

import "testing"

// legalMoves filters the generated moves down to those whose resulting
// position passes validation.
func legalMoves(p *Position) []Move {
	var legal []Move
	for _, m := range p.GenerateMoves() {
		child := p.NextPosition(m)
		child.GenerateMoves()
		if child.Valid() {
			legal = append(legal, m)
		}
	}
	return legal
}

func mustParseFEN(t *testing.T, fen string) *Position {
	t.Helper()
	pos, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("Failed to parse FEN %q: %v", fen, err)
	}
	return pos
}

// play applies a sequence of UCI moves, failing the test on an illegal one.
func play(t *testing.T, pos *Position, moves ...string) *Position {
	t.Helper()
	for _, s := range moves {
		m, err := ParseMove(s, legalMoves(pos))
		if err != nil {
			t.Fatalf("move %s: %v\n%s", s, err, pos)
		}
		pos = pos.NextPosition(m)
	}
	return pos
}
