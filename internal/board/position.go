package board

import (
	"errors"
	"fmt"
	"strings"
)

// Position represents a complete chess position.
//
// The piece grid and the scalar state are plain values, so a struct copy is a
// deep copy. The move and attacker caches are rebuilt by GenerateMoves and are
// reset by Copy and PlayMove.
type Position struct {
	// Piece grid indexed by Square (rank*8 + file, rank 0 is white's first rank).
	Board [64]Piece

	SideToMove     Color
	FullMoveNumber int

	// Material balance: positive favors white. Maintained incrementally by PlayMove.
	Material int

	// Castling bookkeeping, indexed by Color.
	KingMoved  [2]bool
	ARookMoved [2]bool
	HRookMoved [2]bool

	// EnPassantFile is the file of a pawn that just advanced two squares, or NoFile.
	EnPassantFile int

	// JustCastled is true only for the position immediately after a castling move.
	JustCastled bool

	// King positions (cached, must agree with Board).
	KingSquare [2]Square

	// Derived by GenerateMoves.
	generated bool
	valid     bool
	attackers [64]AttackerList
}

// AttackerList holds the pieces that attack or defend one square.
// A square has at most 16 attackers: one per ray plus the eight knight squares.
type AttackerList struct {
	pieces [16]Piece
	n      uint8
}

// Len returns the number of attackers.
func (al *AttackerList) Len() int {
	return int(al.n)
}

// Get returns the attacker at index i.
func (al *AttackerList) Get(i int) Piece {
	return al.pieces[i]
}

// Slice returns the attackers as a slice.
func (al *AttackerList) Slice() []Piece {
	return al.pieces[:al.n]
}

func (al *AttackerList) add(p Piece) {
	al.pieces[al.n] = p
	al.n++
}

var initialRanks = [2]string{"RNBQKBNR", "rnbqkbnr"}

// NewPosition creates the starting position.
func NewPosition() *Position {
	p := &Position{
		SideToMove:     White,
		FullMoveNumber: 1,
		EnPassantFile:  NoFile,
		KingSquare:     [2]Square{E1, E8},
	}
	for sq := range p.Board {
		p.Board[sq] = NoPiece
	}
	for file := 0; file < 8; file++ {
		p.Board[NewSquare(file, 0)] = PieceFromChar(initialRanks[White][file])
		p.Board[NewSquare(file, 1)] = WhitePawn
		p.Board[NewSquare(file, 6)] = BlackPawn
		p.Board[NewSquare(file, 7)] = PieceFromChar(initialRanks[Black][file])
	}
	// The white and black pieces are even, so material starts at zero.
	return p
}

// Copy creates a deep copy of the position.
// Generated moves and attackers are not carried over.
func (p *Position) Copy() *Position {
	newPos := *p
	newPos.resetDerived()
	return &newPos
}

func (p *Position) resetDerived() {
	p.generated = false
	p.valid = false
	p.attackers = [64]AttackerList{}
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	return p.Board[sq]
}

// SetPiece places a piece (or NoPiece) on a square without any bookkeeping.
func (p *Position) SetPiece(sq Square, piece Piece) {
	p.Board[sq] = piece
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.Board[sq].IsEmpty()
}

// PlayMove applies a move in place.
func (p *Position) PlayMove(m Move) {
	us := p.SideToMove
	piece := p.Board[m.From]

	// Special cases first: castling, promotion and en passant.
	switch m.Type {
	case Castle:
		kingside := m.To.File() > m.From.File()
		rookFrom, rookTo := NewSquare(0, m.From.Rank()), NewSquare(3, m.From.Rank())
		if kingside {
			rookFrom, rookTo = NewSquare(7, m.From.Rank()), NewSquare(5, m.From.Rank())
		}
		p.Board[rookTo] = p.Board[rookFrom]
		p.Board[rookFrom] = NoPiece
	case Promotion:
		queen := piece.Promoted()
		p.Material += queen.Value() - piece.Value()
		piece = queen
	case EnPassant:
		victim := NewSquare(p.EnPassantFile, m.From.Rank())
		p.Material -= p.Board[victim].Value()
		p.Board[victim] = NoPiece
	}

	// Generic move. The capture uses the target's contents before overwriting.
	captured := p.Board[m.To]
	p.Material -= captured.Value()
	p.Board[m.To] = piece
	p.Board[m.From] = NoPiece

	if m.Type == TwoSquarePawn {
		p.EnPassantFile = m.To.File()
	} else {
		p.EnPassantFile = NoFile
	}
	p.JustCastled = m.Type == Castle

	switch piece.Type() {
	case King:
		p.KingMoved[us] = true
		p.KingSquare[us] = m.To
	case Rook:
		switch m.From.File() {
		case 0:
			p.ARookMoved[us] = true
		case 7:
			p.HRookMoved[us] = true
		}
	}

	// A rook captured on its corner can never castle.
	if captured.Type() == Rook {
		them := us.Other()
		backRank := 0
		if them == Black {
			backRank = 7
		}
		if m.To == NewSquare(0, backRank) {
			p.ARookMoved[them] = true
		} else if m.To == NewSquare(7, backRank) {
			p.HRookMoved[them] = true
		}
	}

	p.SideToMove = us.Other()
	if p.SideToMove == White {
		p.FullMoveNumber++
	}
	p.resetDerived()
}

// NextPosition returns the position after playing the move, leaving p untouched.
func (p *Position) NextPosition(m Move) *Position {
	next := p.Copy()
	next.PlayMove(m)
	return next
}

// RecomputeMaterial sums piece values over the whole board.
func (p *Position) RecomputeMaterial() int {
	total := 0
	for _, piece := range p.Board {
		total += piece.Value()
	}
	return total
}

// findKings locates and caches the king positions.
func (p *Position) findKings() {
	p.KingSquare = [2]Square{NoSquare, NoSquare}
	for sq, piece := range p.Board {
		if piece.Type() == King {
			p.KingSquare[piece.Color()] = Square(sq)
		}
	}
}

// Validate checks that a loaded position is playable.
func (p *Position) Validate() error {
	var kings [2]int
	for sq, piece := range p.Board {
		if piece.Type() == King {
			kings[piece.Color()]++
		}
		if piece.Type() == Pawn {
			rank := Square(sq).Rank()
			if rank == 0 || rank == 7 {
				return errors.New("pawns cannot be on rank 1 or 8")
			}
		}
	}
	if kings[White] != 1 {
		return errors.New("white must have exactly one king")
	}
	if kings[Black] != 1 {
		return errors.New("black must have exactly one king")
	}
	if p.Material != p.RecomputeMaterial() {
		return fmt.Errorf("material %d does not match board (%d)", p.Material, p.RecomputeMaterial())
	}
	return nil
}

// String returns a diagram of the position drawn with chess glyphs,
// followed by the side to move, the material balance and the FEN.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.Board[NewSquare(file, rank)]
			if piece == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.Glyph() + " ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Material: %d\n", p.Material)
	fmt.Fprintf(&sb, "FEN: %s\n", p.FEN())
	return sb.String()
}
