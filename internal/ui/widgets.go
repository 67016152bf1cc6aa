package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Widget colors
var (
	widgetBg      = color.RGBA{48, 52, 58, 255}
	widgetBorder  = color.RGBA{68, 72, 78, 255}
	widgetHoverBg = color.RGBA{65, 70, 78, 255}
	checkboxCheck = color.RGBA{76, 175, 120, 255}
)

// Button is a clickable rectangle with a label. Primary buttons are drawn
// in the accent color; active ones stay highlighted like a selected tab.
type Button struct {
	X, Y, W, H int
	Label      string
	Primary    bool
	OnClick    func()
	hovered    bool
	pressed    bool
	active     bool
}

// NewButton creates a new button.
func NewButton(x, y, w, h int, label string, primary bool, onClick func()) *Button {
	return &Button{X: x, Y: y, W: w, H: h, Label: label, Primary: primary, OnClick: onClick}
}

// IsHovered returns true if the button is hovered.
func (b *Button) IsHovered() bool {
	return b.hovered
}

// Update handles button input and reports whether it was clicked.
func (b *Button) Update(input *InputHandler) bool {
	b.hovered = input.IsInBounds(b.X, b.Y, b.W, b.H)
	b.pressed = b.hovered && input.IsLeftPressed()
	if b.hovered && input.IsLeftJustPressed() {
		if b.OnClick != nil {
			b.OnClick()
		}
		return true
	}
	return false
}

// Draw renders the button.
func (b *Button) Draw(screen *ebiten.Image) {
	bg, border := buttonBg, buttonBorder
	switch {
	case b.Primary && b.pressed:
		bg, border = accentPressed, accentPressed
	case b.Primary && b.hovered:
		bg, border = accentHover, accentHover
	case b.Primary:
		bg, border = accentColor, accentPressed
	case b.active:
		bg, border = buttonActiveBg, buttonActiveBg
	case b.pressed:
		bg = buttonPressedBg
	case b.hovered:
		bg, border = buttonHoverBg, accentColor
	}

	vector.DrawFilledRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), bg, false)
	vector.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), 1, border, false)

	fg := textPrimary
	if !b.Primary && !b.active && !b.hovered {
		fg = textSecondary
	}
	drawTextCentered(screen, b.Label, regularFace, float64(b.X)+float64(b.W)/2, float64(b.Y)+float64(b.H)/2, fg)
}

// ButtonGroup is a horizontal group of toggle buttons.
type ButtonGroup struct {
	X, Y     int
	Options  []string
	Selected int
	ButtonW  int
	ButtonH  int
	hovered  int
}

// NewButtonGroup creates a new button group.
func NewButtonGroup(x, y int, options []string, selected int, buttonW, buttonH int) *ButtonGroup {
	return &ButtonGroup{
		X:        x,
		Y:        y,
		Options:  options,
		Selected: selected,
		ButtonW:  buttonW,
		ButtonH:  buttonH,
		hovered:  -1,
	}
}

// Update handles button group input and reports whether the selection changed.
func (bg *ButtonGroup) Update(input *InputHandler) bool {
	bg.hovered = -1
	for i := range bg.Options {
		if !input.IsInBounds(bg.X+i*bg.ButtonW, bg.Y, bg.ButtonW, bg.ButtonH) {
			continue
		}
		bg.hovered = i
		if input.IsLeftJustPressed() && bg.Selected != i {
			bg.Selected = i
			return true
		}
	}
	return false
}

// Draw renders the button group.
func (bg *ButtonGroup) Draw(screen *ebiten.Image) {
	for i, label := range bg.Options {
		x := float32(bg.X + i*bg.ButtonW)
		y, w, h := float32(bg.Y), float32(bg.ButtonW), float32(bg.ButtonH)

		fill, border, fg := tabInactiveBg, buttonBorder, textSecondary
		switch {
		case i == bg.Selected:
			fill, border, fg = tabActiveBg, tabActiveBg, textPrimary
		case i == bg.hovered:
			fill, border = tabHoverBg, accentColor
		}
		vector.DrawFilledRect(screen, x, y, w, h, fill, false)
		vector.StrokeRect(screen, x, y, w, h, 1, border, false)
		drawTextCentered(screen, label, regularFace, float64(x+w/2), float64(y+h/2), fg)
	}
}

// Checkbox is a labelled toggle.
type Checkbox struct {
	X, Y    int
	Label   string
	Checked bool
	hovered bool
}

// NewCheckbox creates a new checkbox.
func NewCheckbox(x, y int, label string, checked bool) *Checkbox {
	return &Checkbox{X: x, Y: y, Label: label, Checked: checked}
}

// Update handles checkbox input and reports whether it was toggled.
func (cb *Checkbox) Update(input *InputHandler) bool {
	cb.hovered = input.IsInBounds(cb.X, cb.Y, 200, 24)
	if input.IsLeftJustPressed() && cb.hovered {
		cb.Checked = !cb.Checked
		return true
	}
	return false
}

// Draw renders the checkbox.
func (cb *Checkbox) Draw(screen *ebiten.Image) {
	x, y := float32(cb.X), float32(cb.Y)
	const size = 20

	bg, border := widgetBg, widgetBorder
	if cb.hovered {
		bg, border = widgetHoverBg, accentColor
	} else if cb.Checked {
		border = checkboxCheck
	}
	vector.DrawFilledRect(screen, x, y, size, size, bg, false)
	vector.StrokeRect(screen, x, y, size, size, 2, border, false)
	if cb.Checked {
		vector.StrokeLine(screen, x+4, y+10, x+8, y+14, 2, checkboxCheck, false)
		vector.StrokeLine(screen, x+8, y+14, x+16, y+6, 2, checkboxCheck, false)
	}

	fg := textSecondary
	if cb.Checked {
		fg = textPrimary
	}
	_, h := MeasureText(cb.Label, regularFace)
	drawText(screen, cb.Label, regularFace, float64(cb.X+30), float64(cb.Y+10)-h/2, fg)
}

// DrawDivider draws a horizontal divider line.
func DrawDivider(screen *ebiten.Image, x, y, w int) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), 1, dividerColor, false)
}

// DrawSectionHeader draws a muted section label.
func DrawSectionHeader(screen *ebiten.Image, label string, x, y int) {
	drawText(screen, label, regularFace, float64(x), float64(y), textMuted)
}
