package board

import "strings"

// Notation builds the algebraic notation of a move in stages: the base form
// is known when the move is generated, disambiguation needs the sibling legal
// moves, and the check or checkmate suffix needs a look at the resulting
// position. Each stage returns a new value.
type Notation struct {
	base     string
	pieceLen int // length of the piece letter prefix; disambiguation goes after it
	from     Square
	disambig string
	suffix   string
}

// NewNotation returns the base notation of a move.
func NewNotation(m Move) Notation {
	n := Notation{from: m.From}

	if m.IsCastling() {
		if m.To.File() > m.From.File() {
			n.base = "O-O" // Kingside
		} else {
			n.base = "O-O-O" // Queenside
		}
		return n
	}

	var sb strings.Builder
	pt := m.Piece.Type()

	// Piece letter (not for pawns)
	sb.WriteString(pt.Letter())
	n.pieceLen = sb.Len()

	// Capture marker; pawn captures include the file of origin
	if m.IsCapture() {
		if pt == Pawn {
			sb.WriteByte('a' + byte(m.From.File()))
		}
		sb.WriteByte('x')
	}

	// Destination square
	sb.WriteString(m.To.String())

	if m.IsPromotion() {
		sb.WriteString("=Q")
	}

	n.base = sb.String()
	return n
}

// Base returns the notation without disambiguation or suffix.
func (n Notation) Base() string {
	return n.base
}

// Disambiguate returns the notation with the minimal source fragment needed
// to tell the move apart from siblings sharing the same base notation:
// the source file if that is unique, else the source rank, else both.
func (n Notation) Disambiguate(siblings []Move) Notation {
	var colliding []Square
	for _, m := range siblings {
		if m.From == n.from {
			continue // the move itself, or another move of the same piece
		}
		if NewNotation(m).base == n.base {
			colliding = append(colliding, m.From)
		}
	}

	// No ambiguity
	if len(colliding) == 0 {
		n.disambig = ""
		return n
	}

	sameFile := false
	sameRank := false
	for _, sq := range colliding {
		if sq.File() == n.from.File() {
			sameFile = true
		}
		if sq.Rank() == n.from.Rank() {
			sameRank = true
		}
	}

	switch {
	case !sameFile:
		n.disambig = string(rune('a' + n.from.File()))
	case !sameRank:
		n.disambig = string(rune('1' + n.from.Rank()))
	default:
		n.disambig = n.from.String()
	}
	return n
}

// WithCheck returns the notation marked as giving check.
func (n Notation) WithCheck() Notation {
	n.suffix = "+"
	return n
}

// WithCheckmate returns the notation marked as giving checkmate.
func (n Notation) WithCheckmate() Notation {
	n.suffix = "#"
	return n
}

// String returns the final notation.
func (n Notation) String() string {
	return n.base[:n.pieceLen] + n.disambig + n.base[n.pieceLen:] + n.suffix
}

// Result tokens appended to a game history once the game ends.
const (
	WhiteWins = "1-0"
	BlackWins = "0-1"
	Drawn     = "0.5-0.5"
)

// ResultToken returns the history token for a finished game.
// mated reports checkmate (as opposed to stalemate) and loser is the side to move.
func ResultToken(mated bool, loser Color) string {
	if !mated {
		return Drawn
	}
	if loser == White {
		return BlackWins
	}
	return WhiteWins
}
