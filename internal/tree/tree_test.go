package tree

import (
	"testing"

	"github.com/hailam/chessbot/internal/board"
)

func grow(t *testing.T, fen string, depth int) *Tree {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("Failed to parse FEN %q: %v", fen, err)
	}
	return Grow(pos, depth)
}

func notations(tr *Tree) map[string]bool {
	set := make(map[string]bool, len(tr.Branches))
	for _, b := range tr.Branches {
		set[b.Notation] = true
	}
	return set
}

func TestGrowStartingPosition(t *testing.T) {
	tr := Grow(board.NewPosition(), 2)

	if tr.Status != Normal {
		t.Errorf("status = %v, want Normal", tr.Status)
	}
	if len(tr.Branches) != 20 {
		t.Errorf("branches = %d, want 20", len(tr.Branches))
	}
	// 1 root + 20 + 400
	if got := tr.Size(); got != 421 {
		t.Errorf("size = %d, want 421", got)
	}
	for _, b := range tr.Branches {
		if b.Tree.Depth != 1 {
			t.Errorf("%s: child depth = %d, want 1", b.Notation, b.Tree.Depth)
		}
		for _, bb := range b.Tree.Branches {
			if bb.Tree.Branches != nil {
				t.Errorf("%s %s: leaf has branches", b.Notation, bb.Notation)
			}
		}
	}
}

func TestGrowStatuses(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want Status
	}{
		{"start", board.StartFEN, Normal},
		{"check", "4k3/8/8/8/8/5n2/8/4K3 w - - 0 1", Check},
		{"back rank mate", "R6k/6pp/8/8/8/8/8/K7 b - - 0 1", Checkmate},
		{"stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", Stalemate},
		{"king capturable", "4k3/8/8/8/8/8/8/4RK2 w - - 0 1", Illegal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := grow(t, tc.fen, 2)
			if tr.Status != tc.want {
				t.Errorf("status = %v, want %v", tr.Status, tc.want)
			}
			if tr.Status.GameOver() != (tc.want == Checkmate || tc.want == Stalemate) {
				t.Errorf("GameOver() = %v", tr.Status.GameOver())
			}
		})
	}
}

func TestGrowDepthZero(t *testing.T) {
	// Without children only check can be detected.
	tr := grow(t, "R6k/6pp/8/8/8/8/8/K7 b - - 0 1", 0)
	if tr.Status != Check {
		t.Errorf("status = %v, want Check", tr.Status)
	}
	if tr.Branches != nil {
		t.Errorf("depth 0 tree has %d branches", len(tr.Branches))
	}
}

func TestFoolsMate(t *testing.T) {
	pos := board.NewPosition()
	for _, s := range []string{"f2f3", "e7e5", "g2g4"} {
		tr := Grow(pos, 2)
		b := find(t, tr, s)
		pos = b.Tree.Position
	}

	tr := Grow(pos, 2)
	b := find(t, tr, "d8h4")
	if b.Notation != "Qh4#" {
		t.Errorf("notation = %q, want Qh4#", b.Notation)
	}
	if b.Tree.Status != Checkmate {
		t.Errorf("status after Qh4 = %v, want Checkmate", b.Tree.Status)
	}
}

func TestCheckNotation(t *testing.T) {
	// 1.e4 e5 2.Nf3 d6 opens the e8-a4 diagonal.
	pos := board.NewPosition()
	for _, s := range []string{"e2e4", "e7e5", "g1f3", "d7d6"} {
		pos = find(t, Grow(pos, 2), s).Tree.Position
	}

	set := notations(Grow(pos, 2))
	for _, want := range []string{"Bb5+", "Bc4", "Nxe5", "Qe2"} {
		if !set[want] {
			t.Errorf("missing %s in %v", want, set)
		}
	}
	if set["O-O"] {
		t.Error("O-O offered with the bishop still on f1")
	}
}

func TestIllegalMovesExcluded(t *testing.T) {
	// The e2 knight is pinned against the king by the e8 rook.
	tr := grow(t, "4r1k1/8/8/8/8/8/4N3/4K3 w - - 0 1", 2)
	for _, b := range tr.Branches {
		if b.Move.From == board.E2 {
			t.Errorf("pinned knight move %s kept", b.Notation)
		}
	}
	if _, ok := tr.Find(board.E2, board.C3); ok {
		t.Error("Find returned a pinned knight move")
	}
	if _, ok := tr.Find(board.E1, board.D1); !ok {
		t.Error("Find did not return Kd1")
	}
}

func TestDisambiguationUsesLegalSiblingsOnly(t *testing.T) {
	// Both knights reach d2, but the b3 knight is pinned to the c2 king.
	tr := grow(t, "4k3/8/8/8/b7/1N6/2K5/5N2 w - - 0 1", 2)
	b, ok := tr.Find(board.F1, board.D2)
	if !ok {
		t.Fatal("Nd2 not found")
	}
	if b.Notation != "Nd2" {
		t.Errorf("notation = %q, want Nd2", b.Notation)
	}
}

func TestStatusString(t *testing.T) {
	for s, want := range map[Status]string{
		Normal: "Normal", Check: "Check", Checkmate: "Checkmate",
		Stalemate: "Stalemate", Illegal: "Illegal", Status(99): "Unknown",
	} {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", s, got, want)
		}
	}
}

func find(t *testing.T, tr *Tree, uci string) Branch {
	t.Helper()
	m, err := board.ParseMove(uci, tr.LegalMoves())
	if err != nil {
		t.Fatalf("%s: %v", uci, err)
	}
	b, _ := tr.Find(m.From, m.To)
	return b
}
