package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/game"
)

// Theme defines the color scheme for the board.
type Theme struct {
	LightSquare    color.RGBA
	DarkSquare     color.RGBA
	SelectedSquare color.RGBA
	LegalMoveColor color.RGBA
	LastMoveColor  color.RGBA
	CheckColor     color.RGBA
	Background     color.RGBA
}

// DefaultTheme returns the default color theme.
func DefaultTheme() *Theme {
	return &Theme{
		LightSquare:    color.RGBA{240, 217, 181, 255},
		DarkSquare:     color.RGBA{181, 136, 99, 255},
		SelectedSquare: color.RGBA{247, 247, 105, 180},
		LegalMoveColor: color.RGBA{130, 151, 105, 200},
		LastMoveColor:  color.RGBA{180, 190, 100, 90},
		CheckColor:     color.RGBA{255, 100, 100, 180},
		Background:     color.RGBA{40, 44, 52, 255},
	}
}

// Renderer draws the board and pieces.
type Renderer struct {
	sprites    *SpriteManager
	theme      *Theme
	boardSize  int
	squareSize int
	flipped    bool // black at the bottom
}

// NewRenderer creates a new renderer.
func NewRenderer(boardSize, squareSize int) *Renderer {
	return &Renderer{
		sprites:    NewSpriteManager(squareSize),
		theme:      DefaultTheme(),
		boardSize:  boardSize,
		squareSize: squareSize,
	}
}

// SetFlipped puts black at the bottom of the board.
func (r *Renderer) SetFlipped(flipped bool) {
	r.flipped = flipped
}

// Flipped reports whether black is at the bottom.
func (r *Renderer) Flipped() bool {
	return r.flipped
}

// DrawBoard draws the squares and the file and rank labels.
func (r *Renderer) DrawBoard(screen *ebiten.Image) {
	size := float32(r.squareSize)
	for sq := board.A1; sq <= board.H8; sq++ {
		c := r.theme.LightSquare
		if (sq.File()+sq.Rank())%2 == 0 {
			c = r.theme.DarkSquare
		}
		x, y := r.SquareToScreen(sq)
		vector.DrawFilledRect(screen, float32(x), float32(y), size, size, c, false)
	}
	r.drawCoordinates(screen)
}

// drawCoordinates labels the files along the bottom edge and the ranks
// along the left edge, in the color of the opposite square.
func (r *Renderer) drawCoordinates(screen *ebiten.Image) {
	bottomRank, leftFile := 0, 0
	if r.flipped {
		bottomRank, leftFile = 7, 7
	}
	for i := 0; i < 8; i++ {
		sq := board.NewSquare(i, bottomRank)
		x, y := r.SquareToScreen(sq)
		drawText(screen, string(rune('a'+i)), smallFace,
			float64(x+r.squareSize-10), float64(y+r.squareSize-15), r.labelColor(sq))

		sq = board.NewSquare(leftFile, i)
		x, y = r.SquareToScreen(sq)
		drawText(screen, string(rune('1'+i)), smallFace, float64(x+3), float64(y+2), r.labelColor(sq))
	}
}

func (r *Renderer) labelColor(sq board.Square) color.RGBA {
	if (sq.File()+sq.Rank())%2 == 0 {
		return r.theme.LightSquare
	}
	return r.theme.DarkSquare
}

// DrawHighlights marks the last move, the king in check, the selected
// square and the legal targets of the selection.
func (r *Renderer) DrawHighlights(screen *ebiten.Image, snap game.Snapshot) {
	if snap.LastMove != board.NoMove {
		r.highlightSquare(screen, snap.LastMove.From, r.theme.LastMoveColor)
		r.highlightSquare(screen, snap.LastMove.To, r.theme.LastMoveColor)
	}
	r.highlightSquare(screen, snap.CheckSquare, r.theme.CheckColor)
	r.highlightSquare(screen, snap.Selected, r.theme.SelectedSquare)

	for _, sq := range snap.Targets {
		r.drawTargetIndicator(screen, sq, !snap.Board[sq].IsEmpty())
	}
}

// highlightSquare draws a colored overlay on a square.
func (r *Renderer) highlightSquare(screen *ebiten.Image, sq board.Square, c color.RGBA) {
	if sq == board.NoSquare {
		return
	}
	x, y := r.SquareToScreen(sq)
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(r.squareSize), float32(r.squareSize), c, false)
}

// drawTargetIndicator draws a dot on an empty target and a ring around a capture.
func (r *Renderer) drawTargetIndicator(screen *ebiten.Image, sq board.Square, capture bool) {
	x, y := r.SquareToScreen(sq)
	half := float32(r.squareSize) / 2
	cx, cy := float32(x)+half, float32(y)+half
	if capture {
		vector.StrokeCircle(screen, cx, cy, half-4, 5, r.theme.LegalMoveColor, true)
		return
	}
	vector.DrawFilledCircle(screen, cx, cy, float32(r.squareSize)*0.15, r.theme.LegalMoveColor, true)
}

// DrawPieces draws every piece of the snapshot, offset by any running shake.
func (r *Renderer) DrawPieces(screen *ebiten.Image, snap game.Snapshot, anims *AnimationManager) {
	for sq := board.A1; sq <= board.H8; sq++ {
		piece := snap.Board[sq]
		if piece.IsEmpty() {
			continue
		}
		x, y := r.SquareToScreen(sq)
		dx := 0.0
		if anims != nil {
			dx = anims.ShakeOffset(sq)
		}
		r.sprites.DrawPieceAt(screen, piece, float64(x)+dx, float64(y))
	}
}

// SquareToScreen returns the top-left pixel of a square.
func (r *Renderer) SquareToScreen(sq board.Square) (int, int) {
	file, rank := sq.File(), sq.Rank()
	if r.flipped {
		return (7 - file) * r.squareSize, rank * r.squareSize
	}
	return file * r.squareSize, (7 - rank) * r.squareSize
}

// ScreenToSquare converts a pixel to the square under it, or NoSquare
// outside the board.
func (r *Renderer) ScreenToSquare(x, y int) board.Square {
	if x < 0 || x >= r.boardSize || y < 0 || y >= r.boardSize {
		return board.NoSquare
	}
	file, rank := x/r.squareSize, 7-y/r.squareSize
	if r.flipped {
		file, rank = 7-file, 7-rank
	}
	return board.NewSquare(file, rank)
}

// SquareSize returns the size of one square in pixels.
func (r *Renderer) SquareSize() int {
	return r.squareSize
}

// Theme returns the current theme.
func (r *Renderer) Theme() *Theme {
	return r.theme
}
