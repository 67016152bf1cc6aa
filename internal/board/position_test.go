package board

import (
	"math/rand"
	"strings"
	"testing"
)

func TestNewPosition(t *testing.T) {
	pos := NewPosition()

	if pos.SideToMove != White {
		t.Errorf("side to move = %v, want White", pos.SideToMove)
	}
	if pos.Material != 0 {
		t.Errorf("material = %d, want 0", pos.Material)
	}
	if pos.KingSquare != [2]Square{E1, E8} {
		t.Errorf("king squares = %v, want [e1 e8]", pos.KingSquare)
	}
	if got := pos.FEN(); got != StartFEN {
		t.Errorf("FEN = %q, want %q", got, StartFEN)
	}
	if got := len(legalMoves(pos)); got != 20 {
		t.Errorf("legal moves = %d, want 20", got)
	}
}

func TestNextPositionLeavesReceiverUntouched(t *testing.T) {
	pos := NewPosition()
	before := pos.FEN()

	next := play(t, pos, "e2e4")

	if pos.FEN() != before {
		t.Errorf("receiver changed: %s", pos.FEN())
	}
	if next.PieceAt(E4) != WhitePawn || !next.IsEmpty(E2) {
		t.Errorf("pawn not moved:\n%s", next)
	}
	if next.SideToMove != Black {
		t.Errorf("side to move = %v, want Black", next.SideToMove)
	}
}

func TestMaterialTracksRandomGames(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for game := 0; game < 20; game++ {
		pos := NewPosition()
		for ply := 0; ply < 120; ply++ {
			moves := legalMoves(pos)
			if len(moves) == 0 {
				break
			}
			pos = pos.NextPosition(moves[rng.Intn(len(moves))])
			if pos.Material != pos.RecomputeMaterial() {
				t.Fatalf("game %d ply %d: material %d, board sums to %d\n%s",
					game, ply, pos.Material, pos.RecomputeMaterial(), pos)
			}
			if err := pos.Validate(); err != nil {
				t.Fatalf("game %d ply %d: %v\n%s", game, ply, err, pos)
			}
		}
	}
}

func TestFullMoveNumber(t *testing.T) {
	pos := play(t, NewPosition(), "e2e4", "e7e5", "g1f3")
	if pos.FullMoveNumber != 2 {
		t.Errorf("full move number = %d, want 2", pos.FullMoveNumber)
	}
}

func TestEnPassant(t *testing.T) {
	pos := play(t, NewPosition(), "e2e4", "a7a6", "e4e5", "d7d5")
	if pos.EnPassantFile != 3 {
		t.Fatalf("en passant file = %d, want 3 (d)", pos.EnPassantFile)
	}

	m, err := ParseMove("e5d6", legalMoves(pos))
	if err != nil {
		t.Fatalf("en passant not generated: %v", err)
	}
	if m.Type != EnPassant || !m.IsCapture() {
		t.Errorf("move type = %v, want EnPassant capture", m.Type)
	}

	after := pos.NextPosition(m)
	if !after.IsEmpty(D5) {
		t.Errorf("captured pawn still on d5:\n%s", after)
	}
	if after.PieceAt(D6) != WhitePawn {
		t.Errorf("capturing pawn not on d6:\n%s", after)
	}
	if after.Material != 1 {
		t.Errorf("material = %d, want 1", after.Material)
	}
	if after.EnPassantFile != NoFile {
		t.Errorf("en passant file = %d, want cleared", after.EnPassantFile)
	}
}

func TestEnPassantExpires(t *testing.T) {
	pos := play(t, NewPosition(), "e2e4", "a7a6", "e4e5", "d7d5", "a2a3", "a6a5")
	if _, err := ParseMove("e5d6", legalMoves(pos)); err == nil {
		t.Error("en passant still available a move later")
	}
}

func TestCastling(t *testing.T) {
	tests := []struct {
		name      string
		fen       string
		kingside  bool
		queenside bool
	}{
		{"both available", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", true, true},
		{"through attacked f1", "4kr2/8/8/8/8/8/8/R3K2R w KQ - 0 1", false, true},
		{"out of check", "4r1k1/8/8/8/8/8/8/R3K2R w KQ - 0 1", false, false},
		{"into attacked g1", "4k1r1/8/8/8/8/8/8/R3K2R w KQ - 0 1", false, true},
		{"b1 attacked is fine", "1r2k3/8/8/8/8/8/8/R3K2R w KQ - 0 1", true, true},
		{"path blocked", "4k3/8/8/8/8/8/8/RN2K1NR w KQ - 0 1", false, false},
		{"rights lost", "4k3/8/8/8/8/8/8/R3K2R w Q - 0 1", false, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustParseFEN(t, tc.fen)
			var kingside, queenside bool
			for _, m := range legalMoves(pos) {
				if !m.IsCastling() {
					continue
				}
				if m.To == G1 {
					kingside = true
				}
				if m.To == C1 {
					queenside = true
				}
			}
			if kingside != tc.kingside {
				t.Errorf("kingside castle = %v, want %v", kingside, tc.kingside)
			}
			if queenside != tc.queenside {
				t.Errorf("queenside castle = %v, want %v", queenside, tc.queenside)
			}
		})
	}
}

func TestCastlingMovesRook(t *testing.T) {
	pos := play(t, mustParseFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1"), "e1g1", "e8c8")

	want := map[Square]Piece{G1: WhiteKing, F1: WhiteRook, C8: BlackKing, D8: BlackRook}
	for sq, piece := range want {
		if pos.PieceAt(sq) != piece {
			t.Errorf("%s = %v, want %v", sq, pos.PieceAt(sq), piece)
		}
	}
	for _, sq := range []Square{E1, H1, E8, A8} {
		if !pos.IsEmpty(sq) {
			t.Errorf("%s not empty", sq)
		}
	}
	if !pos.KingMoved[White] || !pos.KingMoved[Black] {
		t.Error("king moved flags not set")
	}
	if pos.JustCastled != true {
		t.Error("JustCastled not set after castling")
	}
	if got := pos.FEN(); got != "2kr3r/8/8/8/8/8/8/R4RK1 w - - 0 2" {
		t.Errorf("FEN = %q", got)
	}
}

func TestRookCaptureClearsCastling(t *testing.T) {
	pos := play(t, mustParseFEN(t, "r3k2r/8/8/8/8/8/1B6/R3K2R w KQkq - 0 1"), "b2h8")

	if !pos.HRookMoved[Black] {
		t.Error("captured h8 rook still counts as unmoved")
	}
	if pos.ARookMoved[Black] {
		t.Error("a8 rook marked as moved")
	}
	if got := pos.castlingString(); got != "KQq" {
		t.Errorf("castling = %q, want KQq", got)
	}
}

func TestPromotion(t *testing.T) {
	pos := mustParseFEN(t, "k7/4P3/8/8/8/8/8/4K3 w - - 0 1")
	before := pos.Material

	pos = play(t, pos, "e7e8q")

	if pos.PieceAt(E8) != WhiteQueen {
		t.Errorf("e8 = %v, want Q", pos.PieceAt(E8))
	}
	if pos.Material != before+8 {
		t.Errorf("material = %d, want %d", pos.Material, before+8)
	}
}

func TestAttackers(t *testing.T) {
	pos := NewPosition()
	pos.GenerateMoves()

	tests := []struct {
		sq   Square
		want int
	}{
		{F3, 3}, // e2 and g2 pawns, g1 knight
		{E4, 0},
		{D2, 4}, // c1, d1, e1, b1
		{F6, 3},
	}
	for _, tc := range tests {
		if got := len(pos.Attackers(tc.sq)); got != tc.want {
			t.Errorf("attackers of %s = %d (%v), want %d", tc.sq, got, pos.Attackers(tc.sq), tc.want)
		}
	}
	if !pos.AttackedBy(F6, Black) || pos.AttackedBy(F6, White) {
		t.Error("f6 should be attacked by black only")
	}
}

func TestInCheck(t *testing.T) {
	tests := []struct {
		fen  string
		want bool
	}{
		{StartFEN, false},
		{"R6k/6pp/8/8/8/8/8/K7 b - - 0 1", true},
		{"4k3/8/8/8/8/8/3n4/4K3 w - - 0 1", false},
		{"4k3/8/8/8/8/5n2/8/4K3 w - - 0 1", true},
		{"4k3/8/8/8/8/8/5p2/4K3 w - - 0 1", true},
	}

	for _, tc := range tests {
		t.Run(tc.fen, func(t *testing.T) {
			pos := mustParseFEN(t, tc.fen)
			if got := pos.InCheck(); got != tc.want {
				t.Errorf("InCheck() = %v, want %v\n%s", got, tc.want, pos)
			}
		})
	}
}

func TestCheckmateHasNoLegalMoves(t *testing.T) {
	// Back rank mate: black king boxed in by its own pawns.
	pos := mustParseFEN(t, "R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if moves := legalMoves(pos); len(moves) != 0 {
		t.Errorf("expected no legal moves, got %v", moves)
	}

	// The king can take the checking rook or step to h7.
	pos = mustParseFEN(t, "6Rk/8/8/8/8/8/8/K7 b - - 0 1")
	if moves := legalMoves(pos); len(moves) != 2 {
		t.Errorf("expected Kxg8 and Kh7, got %v", moves)
	}
}

func TestInvalidPositionYieldsNoMoves(t *testing.T) {
	// White to move while the black king is already in check.
	pos := mustParseFEN(t, "4k3/8/8/8/8/8/8/4RK2 w - - 0 1")
	if moves := pos.GenerateMoves(); moves != nil || pos.Valid() {
		t.Errorf("invalid position generated %d moves", len(moves))
	}
	if !pos.Generated() {
		t.Error("Generated() = false after GenerateMoves")
	}
}

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"4k3/8/8/8/8/8/8/R3K2R b Q - 0 40",
	}

	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			pos := mustParseFEN(t, fen)
			if got := pos.FEN(); got != fen {
				t.Errorf("FEN() = %q, want %q", got, fen)
			}
		})
	}
}

func TestParseFENErrors(t *testing.T) {
	bad := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNX w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQ1BNR w kq - 0 1",
		"P3k3/8/8/8/8/8/8/4K3 w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq z9 0 1",
	}

	for _, fen := range bad {
		if _, err := ParseFEN(fen); err == nil {
			t.Errorf("ParseFEN(%q) succeeded, want error", fen)
		}
	}
}

func TestGlyph(t *testing.T) {
	tests := []struct {
		piece Piece
		want  string
	}{
		{WhiteKing, "♔"},
		{WhiteQueen, "♕"},
		{WhitePawn, "♙"},
		{BlackKnight, "♞"},
		{BlackRook, "♜"},
		{BlackPawn, "♟"},
		{NoPiece, ""},
	}
	for _, tc := range tests {
		if got := tc.piece.Glyph(); got != tc.want {
			t.Errorf("%v.Glyph() = %q, want %q", tc.piece, got, tc.want)
		}
	}
}

func TestStringDiagram(t *testing.T) {
	s := play(t, NewPosition(), "e2e4").String()

	for _, want := range []string{
		"8  ♜ ♞ ♝ ♛ ♚ ♝ ♞ ♜ \n",
		"4  . . . . ♙ . . . \n",
		"2  ♙ ♙ ♙ ♙ . ♙ ♙ ♙ \n",
		"1  ♖ ♘ ♗ ♕ ♔ ♗ ♘ ♖ \n",
		"Side to move: Black\n",
		"FEN: rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1\n",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %q in:\n%s", want, s)
		}
	}
}
