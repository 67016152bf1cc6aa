package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string and returns a Position.
// Castling rights map onto the moved flags: a missing right marks the
// corresponding rook as moved. The half-move clock is accepted and ignored.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("invalid FEN: need at least 4 fields, got %d", len(parts))
	}

	pos := &Position{
		EnPassantFile:  NoFile,
		FullMoveNumber: 1,
	}

	// Parse piece placement (field 0)
	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	// Parse side to move (field 1)
	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, fmt.Errorf("invalid side to move: %s", parts[1])
	}

	// Parse castling rights (field 2)
	if err := parseCastlingRights(pos, parts[2]); err != nil {
		return nil, err
	}

	// Parse en passant square (field 3)
	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid en passant square: %w", err)
		}
		pos.EnPassantFile = sq.File()
	}

	// Parse full-move number (field 5, optional)
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil {
			return nil, fmt.Errorf("invalid full-move number: %s", parts[5])
		}
		pos.FullMoveNumber = fmn
	}

	// Update derived state
	pos.findKings()
	pos.Material = pos.RecomputeMaterial()

	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("invalid FEN %q: %w", fen, err)
	}
	return pos, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(pos *Position, placement string) error {
	for sq := range pos.Board {
		pos.Board[sq] = NoPiece
	}

	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("invalid piece placement: need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("too many squares in rank %d", rank+1)
			}

			if c >= '1' && c <= '8' {
				// Skip empty squares
				file += int(c - '0')
			} else {
				// Place a piece
				piece := PieceFromChar(byte(c))
				if piece == NoPiece {
					return fmt.Errorf("invalid piece character: %c", c)
				}
				pos.Board[NewSquare(file, rank)] = piece
				file++
			}
		}

		if file != 8 {
			return fmt.Errorf("invalid number of squares in rank %d: got %d", rank+1, file)
		}
	}

	return nil
}

// parseCastlingRights parses the castling rights section of a FEN string.
func parseCastlingRights(pos *Position, castling string) error {
	pos.ARookMoved = [2]bool{true, true}
	pos.HRookMoved = [2]bool{true, true}

	if castling != "-" {
		for _, c := range castling {
			switch c {
			case 'K':
				pos.HRookMoved[White] = false
			case 'Q':
				pos.ARookMoved[White] = false
			case 'k':
				pos.HRookMoved[Black] = false
			case 'q':
				pos.ARookMoved[Black] = false
			default:
				return fmt.Errorf("invalid castling character: %c", c)
			}
		}
	}

	// A king with no castling right left is treated as having moved.
	for _, c := range []Color{White, Black} {
		pos.KingMoved[c] = pos.ARookMoved[c] && pos.HRookMoved[c]
	}
	return nil
}

// castlingString returns the FEN castling field.
func (p *Position) castlingString() string {
	s := ""
	for _, c := range []Color{White, Black} {
		if p.KingMoved[c] {
			continue
		}
		k, q := "K", "Q"
		if c == Black {
			k, q = "k", "q"
		}
		if !p.HRookMoved[c] {
			s += k
		}
		if !p.ARookMoved[c] {
			s += q
		}
	}
	if s == "" {
		return "-"
	}
	return s
}

// FEN returns the FEN representation of the position.
// The half-move clock is not tracked and is always written as 0.
func (p *Position) FEN() string {
	var sb strings.Builder

	// Piece placement
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.Board[NewSquare(file, rank)]
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	// Side to move
	if p.SideToMove == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}

	// Castling rights
	sb.WriteString(p.castlingString())

	// En passant
	sb.WriteByte(' ')
	if p.EnPassantFile == NoFile {
		sb.WriteByte('-')
	} else {
		rank := 5
		if p.SideToMove == Black {
			rank = 2
		}
		sb.WriteString(NewSquare(p.EnPassantFile, rank).String())
	}

	fmt.Fprintf(&sb, " 0 %d", p.FullMoveNumber)
	return sb.String()
}
