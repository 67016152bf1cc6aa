package board

import "fmt"

// MoveType distinguishes moves whose side effects go beyond relocating one piece.
type MoveType uint8

const (
	Normal MoveType = iota
	Castle
	Promotion
	EnPassant
	TwoSquarePawn
)

// String returns the move type name.
func (t MoveType) String() string {
	switch t {
	case Normal:
		return "Normal"
	case Castle:
		return "Castle"
	case Promotion:
		return "Promotion"
	case EnPassant:
		return "EnPassant"
	case TwoSquarePawn:
		return "TwoSquarePawn"
	default:
		return "Unknown"
	}
}

// Move is a single move of a piece. It records the moving piece and the
// prior occupant of the target square so notation can be built without the position.
// Moves are comparable values and can be used as map keys.
type Move struct {
	From     Square
	To       Square
	Type     MoveType
	Piece    Piece // the piece leaving From
	Captured Piece // the prior occupant of To (NoPiece for en passant)
}

// NoMove represents an invalid or null move.
var NoMove = Move{From: NoSquare, To: NoSquare, Piece: NoPiece, Captured: NoPiece}

// IsCapture returns true if this move captures a piece.
func (m Move) IsCapture() bool {
	return m.Type == EnPassant || !m.Captured.IsEmpty()
}

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool {
	return m.Type == Castle
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Type == Promotion
}

// Matches reports whether the move goes from one square to another.
func (m Move) Matches(from, to Square) bool {
	return m.From == from && m.To == to
}

// UCI returns the long algebraic form of the move (e.g., "e2e4", "e7e8q").
func (m Move) UCI() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if m.IsPromotion() {
		s += "q"
	}
	return s
}

// String returns the UCI form of the move.
func (m Move) String() string {
	return m.UCI()
}

// ParseMove resolves a UCI move string against a list of moves.
// Promotion suffixes other than 'q' are rejected since only queen promotion exists.
func ParseMove(s string, moves []Move) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}
	if len(s) == 5 && s[4] != 'q' {
		return NoMove, fmt.Errorf("unsupported promotion piece: %c", s[4])
	}

	for _, m := range moves {
		if m.Matches(from, to) {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("no legal move %s", s)
}
