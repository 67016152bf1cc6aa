// Package ui is the desktop front end: an Ebitengine window that draws a
// game session and forwards board clicks to it.
package ui

import (
	"bytes"
	"embed"
	"image"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/hailam/chessbot/internal/board"
)

//go:embed assets/pieces/*.svg
var pieceAssets embed.FS

// renderScale oversamples the SVGs so they stay sharp when scaled down.
const renderScale = 2.0

// SpriteManager holds one rasterized image per piece.
type SpriteManager struct {
	pieces map[board.Piece]*ebiten.Image
	size   int
}

// NewSpriteManager rasterizes the embedded piece art at the given size.
func NewSpriteManager(size int) *SpriteManager {
	sm := &SpriteManager{
		pieces: make(map[board.Piece]*ebiten.Image),
		size:   size,
	}
	for _, c := range []board.Color{board.White, board.Black} {
		for pt := board.Pawn; pt <= board.King; pt++ {
			p := board.NewPiece(pt, c)
			if img, err := sm.rasterize(pieceAsset(p)); err != nil {
				log.Printf("Warning: Failed to load sprite for %s %s: %v", c, pt, err)
			} else {
				sm.pieces[p] = img
			}
		}
	}
	return sm
}

// pieceAsset returns the asset path of a piece, e.g. "assets/pieces/wN.svg".
func pieceAsset(p board.Piece) string {
	prefix := "w"
	if p.Color() == board.Black {
		prefix = "b"
	}
	return "assets/pieces/" + prefix + strings.ToUpper(p.String()) + ".svg"
}

func (sm *SpriteManager) rasterize(path string) (*ebiten.Image, error) {
	data, err := pieceAssets.ReadFile(path)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	size := int(float64(sm.size) * renderScale)
	icon.SetTarget(0, 0, float64(size), float64(size))
	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)
	return ebiten.NewImageFromImage(rgba), nil
}

// DrawPieceAt draws a piece with its top-left corner at (x, y).
func (sm *SpriteManager) DrawPieceAt(screen *ebiten.Image, p board.Piece, x, y float64) {
	sprite := sm.pieces[p]
	if sprite == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(1/renderScale, 1/renderScale)
	op.GeoM.Translate(x, y)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(sprite, op)
}
