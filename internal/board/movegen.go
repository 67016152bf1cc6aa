package board

// GenerateMoves computes, in a single pass over the board:
//   - the pseudo-legal moves of the side to move (checks are ignored), and
//   - the attacker list of every square, for both colors.
//
// It also validates the position itself. A position is invalid when the side
// that just moved left its king capturable, or castled out of or through an
// attacked square. Callers learn whether a candidate move was legal by playing
// it and calling GenerateMoves on the resulting position; an invalid position
// yields no moves. This lets one generation pass serve as both the move list
// of the position and the legality check of the move that produced it.
func (p *Position) GenerateMoves() []Move {
	p.attackers = [64]AttackerList{}
	moves := make([]Move, 0, 48)

	for i := range p.Board {
		sq := Square(i)
		piece := p.Board[sq]
		switch piece.Type() {
		case King:
			moves = p.shortRangeMoves(moves, royaltyDirections, sq, piece)
		case Queen:
			moves = p.longRangeMoves(moves, royaltyDirections, sq, piece)
		case Rook:
			moves = p.longRangeMoves(moves, rookDirections, sq, piece)
		case Bishop:
			moves = p.longRangeMoves(moves, bishopDirections, sq, piece)
		case Knight:
			moves = p.shortRangeMoves(moves, knightDirections, sq, piece)
		case Pawn:
			moves = p.pawnMoves(moves, sq, piece)
		}
	}
	moves = p.castlingMoves(moves)

	p.generated = true
	p.valid = p.validate()
	if !p.valid {
		return nil
	}
	return moves
}

// shortRangeMoves generates single-step moves and attackers (kings and knights).
func (p *Position) shortRangeMoves(moves []Move, dirs []Direction, from Square, piece Piece) []Move {
	active := piece.IsActive(p.SideToMove)
	for _, d := range dirs {
		to, ok := from.Step(d, 1)
		if !ok {
			continue
		}
		p.attackers[to].add(piece)
		if active && !p.Board[to].IsActive(p.SideToMove) {
			moves = append(moves, p.newMove(from, to, Normal))
		}
	}
	return moves
}

// longRangeMoves generates sliding moves and attackers (queens, rooks and bishops).
// Each ray stops after the first occupied square.
func (p *Position) longRangeMoves(moves []Move, dirs []Direction, from Square, piece Piece) []Move {
	active := piece.IsActive(p.SideToMove)
	for _, d := range dirs {
		for n := 1; ; n++ {
			to, ok := from.Step(d, n)
			if !ok {
				break
			}
			p.attackers[to].add(piece)
			target := p.Board[to]
			if active && !target.IsActive(p.SideToMove) {
				moves = append(moves, p.newMove(from, to, Normal))
			}
			if !target.IsEmpty() {
				break
			}
		}
	}
	return moves
}

// pawnMoves generates pushes, captures, en passant and promotions, and
// records the diagonal attacks of the pawn.
func (p *Position) pawnMoves(moves []Move, from Square, pawn Piece) []Move {
	forward, captures, homeRank, epRank, lastRank := north, [2]Direction{nw, ne}, 1, 5, 7
	if pawn.Color() == Black {
		forward, captures, homeRank, epRank, lastRank = south, [2]Direction{sw, se}, 6, 2, 0
	}
	active := pawn.IsActive(p.SideToMove)

	pushType := Normal
	if from.Rank()+forward.Rank == lastRank {
		pushType = Promotion
	}

	if active {
		if to, ok := from.Step(forward, 1); ok && p.IsEmpty(to) {
			moves = append(moves, p.newMove(from, to, pushType))
			if from.Rank() == homeRank {
				if to2, ok := from.Step(forward, 2); ok && p.IsEmpty(to2) {
					moves = append(moves, p.newMove(from, to2, TwoSquarePawn))
				}
			}
		}
	}

	for _, d := range captures {
		to, ok := from.Step(d, 1)
		if !ok {
			continue
		}
		p.attackers[to].add(pawn)
		if !active {
			continue
		}
		if p.Board[to].IsOpposing(p.SideToMove) {
			moves = append(moves, p.newMove(from, to, pushType))
		}
		if p.EnPassantFile != NoFile && to.Rank() == epRank && to.File() == p.EnPassantFile {
			moves = append(moves, p.newMove(from, to, EnPassant))
		}
	}
	return moves
}

// castlingMoves adds castling moves whose path between king and rook is empty.
// Attacked squares on the king's path are not checked here; the resulting
// position fails validation instead.
func (p *Position) castlingMoves(moves []Move) []Move {
	us := p.SideToMove
	if p.KingMoved[us] {
		return moves
	}
	if !p.ARookMoved[us] {
		moves = p.addCastle(moves, false)
	}
	if !p.HRookMoved[us] {
		moves = p.addCastle(moves, true)
	}
	return moves
}

func (p *Position) addCastle(moves []Move, kingside bool) []Move {
	us := p.SideToMove
	backRank := 0
	if us == Black {
		backRank = 7
	}
	king := p.KingSquare[us]
	if king != NewSquare(4, backRank) || p.Board[king] != NewPiece(King, us) {
		return moves
	}

	rookFile, firstFile, lastFile, targetFile := 0, 1, 3, 2
	if kingside {
		rookFile, firstFile, lastFile, targetFile = 7, 5, 6, 6
	}
	if p.Board[NewSquare(rookFile, backRank)] != NewPiece(Rook, us) {
		return moves
	}
	for file := firstFile; file <= lastFile; file++ {
		if !p.IsEmpty(NewSquare(file, backRank)) {
			return moves
		}
	}
	return append(moves, p.newMove(king, NewSquare(targetFile, backRank), Castle))
}

func (p *Position) newMove(from, to Square, t MoveType) Move {
	captured := p.Board[to]
	if t == Castle {
		captured = NoPiece
	}
	return Move{From: from, To: to, Type: t, Piece: p.Board[from], Captured: captured}
}

// validate reports whether the position could have been reached legally.
// It assumes attackers have been computed.
func (p *Position) validate() bool {
	them := p.SideToMove.Other()
	king := p.KingSquare[them]

	// The side that just castled must not have castled out of or through check.
	if p.JustCastled {
		rank := king.Rank()
		start := NewSquare(4, rank)
		passed := NewSquare((4+king.File())/2, rank)
		if p.AttackedBy(start, p.SideToMove) || p.AttackedBy(passed, p.SideToMove) {
			return false
		}
	}

	// The opposing king must not be capturable.
	return !p.AttackedBy(king, p.SideToMove)
}

// Valid reports whether the position passed validation.
// It is meaningful only after GenerateMoves has run.
func (p *Position) Valid() bool {
	return p.valid
}

// Generated reports whether GenerateMoves has run since the last change.
func (p *Position) Generated() bool {
	return p.generated
}

// Attackers returns the pieces attacking or defending a square.
// It is meaningful only after GenerateMoves has run.
func (p *Position) Attackers(sq Square) []Piece {
	return p.attackers[sq].Slice()
}

// AttackedBy reports whether any piece of color c attacks the square.
// It assumes attackers have been computed.
func (p *Position) AttackedBy(sq Square, c Color) bool {
	al := &p.attackers[sq]
	for i := 0; i < al.Len(); i++ {
		if al.Get(i).Color() == c {
			return true
		}
	}
	return false
}

// InCheck returns true if the side to move is in check.
// It plays a null move on a copy (passing the turn) and tests whether the
// opponent could then capture the king.
func (p *Position) InCheck() bool {
	null := p.Copy()
	null.SideToMove = p.SideToMove.Other()
	null.JustCastled = false
	null.EnPassantFile = NoFile
	null.GenerateMoves()
	return !null.valid
}
