package ui

import (
	"bytes"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	regularFace *text.GoTextFace
	boldFace    *text.GoTextFace
	monoFace    *text.GoTextFace // move list columns
	smallFace   *text.GoTextFace // board coordinates
)

const (
	defaultFontSize = 14.0
	titleFontSize   = 16.0
	smallFontSize   = 11.0
)

func init() {
	regularFace = loadFace("regular", goregular.TTF, defaultFontSize)
	boldFace = loadFace("bold", gobold.TTF, titleFontSize)
	monoFace = loadFace("mono", gomono.TTF, defaultFontSize)
	if regularFace != nil {
		smallFace = &text.GoTextFace{Source: regularFace.Source, Size: smallFontSize}
	}
}

func loadFace(name string, ttf []byte, size float64) *text.GoTextFace {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttf))
	if err != nil {
		log.Printf("Failed to load %s font: %v", name, err)
		return nil
	}
	return &text.GoTextFace{Source: source, Size: size}
}

// MeasureText returns the width and height of the given text.
func MeasureText(s string, face *text.GoTextFace) (width, height float64) {
	if face == nil {
		return 0, 0
	}
	return text.Measure(s, face, 0)
}

// drawText draws s with its top-left corner at (x, y).
func drawText(screen *ebiten.Image, s string, face *text.GoTextFace, x, y float64, c color.Color) {
	if face == nil {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, face, op)
}

// drawTextCentered draws s centered on (cx, cy).
func drawTextCentered(screen *ebiten.Image, s string, face *text.GoTextFace, cx, cy float64, c color.Color) {
	w, h := MeasureText(s, face)
	drawText(screen, s, face, cx-w/2, cy-h/2, c)
}
