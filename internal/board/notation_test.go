package board

import (
	"sort"
	"strings"
	"testing"

	"github.com/notnil/chess"
)

func TestNotationBase(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		move string
		want string
	}{
		{"pawn push", StartFEN, "e2e4", "e4"},
		{"knight", StartFEN, "g1f3", "Nf3"},
		{"kingside castle", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1g1", "O-O"},
		{"queenside castle", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "e8c8", "O-O-O"},
		{"pawn capture", "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1", "e4d5", "exd5"},
		{"piece capture", "4k3/8/8/3p4/8/8/8/3QK3 w - - 0 1", "d1d5", "Qxd5"},
		{"en passant", "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1", "e5d6", "exd6"},
		{"promotion", "k7/4P3/8/8/8/8/8/4K3 w - - 0 1", "e7e8q", "e8=Q"},
		{"capture promotion", "k2r4/4P3/8/8/8/8/8/4K3 w - - 0 1", "e7d8q", "exd8=Q"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustParseFEN(t, tc.fen)
			m, err := ParseMove(tc.move, legalMoves(pos))
			if err != nil {
				t.Fatal(err)
			}
			if got := NewNotation(m).String(); got != tc.want {
				t.Errorf("notation = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNotationDisambiguation(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		move string
		want string
	}{
		{"by file", "4k3/8/8/8/8/8/8/1N2KN2 w - - 0 1", "b1d2", "Nbd2"},
		{"by file other knight", "4k3/8/8/8/8/8/8/1N2KN2 w - - 0 1", "f1d2", "Nfd2"},
		{"by rank", "4k3/8/8/R7/8/8/8/R3K3 w - - 0 1", "a5a3", "R5a3"},
		{"by rank lower rook", "4k3/8/8/R7/8/8/8/R3K3 w - - 0 1", "a1a3", "R1a3"},
		{"by square", "1k6/8/8/8/Q2Q4/8/7K/Q7 w - - 0 1", "a4d1", "Qa4d1"},
		{"rank beats square", "1k6/8/8/8/Q2Q4/8/7K/Q7 w - - 0 1", "a1d1", "Q1d1"},
		{"unambiguous", "4k3/8/8/8/8/8/8/1N2KN2 w - - 0 1", "b1c3", "Nc3"},
		{"pawn captures", "4k3/8/8/3p4/2P1P3/8/8/4K3 w - - 0 1", "c4d5", "cxd5"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustParseFEN(t, tc.fen)
			legal := legalMoves(pos)
			m, err := ParseMove(tc.move, legal)
			if err != nil {
				t.Fatal(err)
			}
			if got := NewNotation(m).Disambiguate(legal).String(); got != tc.want {
				t.Errorf("notation = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNotationSuffixes(t *testing.T) {
	n := NewNotation(Move{From: D1, To: H5, Piece: WhiteQueen, Captured: NoPiece})
	if got := n.WithCheck().String(); got != "Qh5+" {
		t.Errorf("WithCheck = %q", got)
	}
	if got := n.WithCheckmate().String(); got != "Qh5#" {
		t.Errorf("WithCheckmate = %q", got)
	}
	if got := n.String(); got != "Qh5" {
		t.Errorf("original notation modified: %q", got)
	}
	if got := n.Base(); got != "Qh5" {
		t.Errorf("Base = %q", got)
	}
}

func TestResultToken(t *testing.T) {
	tests := []struct {
		mated bool
		loser Color
		want  string
	}{
		{true, White, BlackWins},
		{true, Black, WhiteWins},
		{false, White, Drawn},
		{false, Black, Drawn},
	}
	for _, tc := range tests {
		if got := ResultToken(tc.mated, tc.loser); got != tc.want {
			t.Errorf("ResultToken(%v, %v) = %q, want %q", tc.mated, tc.loser, got, tc.want)
		}
	}
}

// referenceMoves returns the legal moves and their algebraic notation
// (without check marks) according to notnil/chess. Under-promotions are dropped.
func referenceMoves(t *testing.T, fen string) map[string]string {
	t.Helper()
	opt, err := chess.FEN(fen)
	if err != nil {
		t.Fatalf("reference FEN %q: %v", fen, err)
	}
	game := chess.NewGame(opt)

	moves := make(map[string]string)
	for _, m := range game.ValidMoves() {
		if m.Promo() != chess.NoPieceType && m.Promo() != chess.Queen {
			continue
		}
		san := chess.AlgebraicNotation{}.Encode(game.Position(), m)
		moves[m.String()] = strings.TrimRight(san, "+#")
	}
	return moves
}

func TestMovesMatchReference(t *testing.T) {
	fens := []string{
		StartFEN,
		"rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
		"n1n5/PPPk4/8/8/8/8/4Kppp/5N1N b - - 0 1",
		"1k6/8/8/8/Q2Q4/8/7K/Q7 w - - 0 1",
		"r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1",
		"4kr2/8/8/8/8/8/8/R3K2R w KQ - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	}

	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			want := referenceMoves(t, fen)
			pos := mustParseFEN(t, fen)
			legal := legalMoves(pos)

			got := make(map[string]string, len(legal))
			for _, m := range legal {
				got[m.UCI()] = NewNotation(m).Disambiguate(legal).String()
			}

			for uci, san := range want {
				if g, ok := got[uci]; !ok {
					t.Errorf("missing move %s (%s)", uci, san)
				} else if g != san {
					t.Errorf("move %s: notation %q, want %q", uci, g, san)
				}
			}
			for uci := range got {
				if _, ok := want[uci]; !ok {
					t.Errorf("extra move %s", uci)
				}
			}
			if t.Failed() {
				keys := make([]string, 0, len(got))
				for k := range got {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				t.Logf("generated: %v\n%s", keys, pos)
			}
		})
	}
}
