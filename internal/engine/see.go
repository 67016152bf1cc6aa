package engine

import (
	"golang.org/x/exp/slices"

	"github.com/hailam/chessbot/internal/board"
)

// BestGrab estimates the material the side to move can win on the single most
// profitable square, assuming both sides trade optimally there and capture
// with their least valuable piece first. Positive scores favor white. It
// returns 0 when nothing is worth taking.
//
// Attacker lists are computed first if the position has not been generated.
func BestGrab(pos *board.Position) int {
	if !pos.Generated() {
		pos.GenerateMoves()
	}
	us := pos.SideToMove
	white := us == board.White

	grab := 0
	for i := range pos.Board {
		sq := board.Square(i)
		target := pos.PieceAt(sq)
		if !target.IsOpposing(us) {
			continue
		}

		var attackers, defenders []int
		for _, p := range pos.Attackers(sq) {
			if p.Color() == us {
				attackers = append(attackers, p.Value())
			} else {
				defenders = append(defenders, p.Value())
			}
		}
		if len(attackers) == 0 {
			continue
		}

		gain := -target.Value()
		if len(defenders) > 0 {
			gain = exchange(gain, attackers, defenders, white)
		}
		grab = best(grab, gain, white)
	}
	return grab
}

// exchange plays out the capture sequence on one square and returns the
// score at the point where the side to decide prefers to stop.
//
// attackers and defenders hold signed piece values and are consumed. The
// first capture gains capture; every recapture removes the cheapest piece of
// the side that captured last.
func exchange(capture int, attackers, defenders []int, white bool) int {
	// Cheapest first: ascending magnitude is ascending for white values and
	// descending for black values.
	slices.Sort(attackers)
	slices.Sort(defenders)
	if white {
		reverse(defenders)
	} else {
		reverse(attackers)
	}

	trades := []int{0, capture}
	score := capture
	attackerToMove := true
	for len(attackers) > 0 && len(defenders) > 0 {
		attackerToMove = !attackerToMove
		if attackerToMove {
			score -= defenders[0]
			defenders = defenders[1:]
		} else {
			score -= attackers[0]
			attackers = attackers[1:]
		}
		trades = append(trades, score)
	}

	// Walk back from the end of the sequence: each side only captures if the
	// result beats stopping.
	result := trades[len(trades)-1]
	for i := len(trades) - 2; i >= 0; i-- {
		result = best(result, trades[i], white == attackerToMove)
		attackerToMove = !attackerToMove
	}
	return result
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
