package ui

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/engine"
	"github.com/hailam/chessbot/internal/game"
	"github.com/hailam/chessbot/internal/storage"
)

// Panel dimensions
const (
	PanelPadding  = 20
	ButtonHeight  = 40
	TabHeight     = 34
	SectionLabelH = 20
	rowHeight     = 20
	maxEvalRows   = 6
)

// Panel colors
var (
	panelBg         = color.RGBA{38, 40, 45, 255}
	tabActiveBg     = color.RGBA{76, 132, 96, 255}
	tabInactiveBg   = color.RGBA{50, 54, 60, 255}
	tabHoverBg      = color.RGBA{65, 70, 78, 255}
	buttonBg        = color.RGBA{50, 54, 60, 255}
	buttonHoverBg   = color.RGBA{65, 70, 78, 255}
	buttonPressedBg = color.RGBA{40, 44, 50, 255}
	buttonBorder    = color.RGBA{70, 75, 82, 255}
	buttonActiveBg  = color.RGBA{76, 132, 96, 255}
	accentColor     = color.RGBA{76, 175, 120, 255}
	accentHover     = color.RGBA{96, 195, 140, 255}
	accentPressed   = color.RGBA{56, 155, 100, 255}
	textPrimary     = color.RGBA{240, 240, 245, 255}
	textSecondary   = color.RGBA{160, 165, 175, 255}
	textMuted       = color.RGBA{120, 125, 135, 255}
	dividerColor    = color.RGBA{60, 65, 72, 255}
	moveRowAlt      = color.RGBA{44, 48, 54, 255}
	statusThinking  = color.RGBA{100, 180, 255, 255}
	statusGameOver  = color.RGBA{255, 200, 80, 255}
)

// Panel is the side panel with controls, the move history and the bot's
// latest evaluations.
type Panel struct {
	game *Game

	newGameBtn  *Button
	settingsBtn *Button
	modeTabs    []*Button // vs Human, vs Bot, Bot vs Bot
	colorTabs   []*Button // play as White, play as Black

	historyY   int // top of the move list
	evalY      int // top of the evaluation list
	scrollY    int
	maxScrollY int
}

// NewPanel creates the panel for the given game.
func NewPanel(g *Game) *Panel {
	p := &Panel{game: g}

	x := BoardSize + PanelPadding
	w := PanelWidth - PanelPadding*2

	y := PanelPadding
	p.newGameBtn = NewButton(x, y, w, ButtonHeight, "New Game", true, g.NewGameAction)
	y += ButtonHeight + 8
	p.settingsBtn = NewButton(x, y, w, ButtonHeight-6, "Settings", false, g.ShowSettings)
	y += ButtonHeight - 6 + 12 + SectionLabelH

	modes := []struct {
		label string
		mode  storage.GameMode
	}{
		{"vs Human", storage.ModeHumanVsHuman},
		{"vs Bot", storage.ModeHumanVsBot},
		{"Bot vs Bot", storage.ModeBotVsBot},
	}
	tabW := w / len(modes)
	for i, m := range modes {
		mode := m.mode
		p.modeTabs = append(p.modeTabs, NewButton(x+i*tabW, y, tabW, TabHeight, m.label, false,
			func() { g.SetMode(mode) }))
	}
	y += TabHeight + 12 + SectionLabelH

	tabW = w / 2
	for i, c := range []board.Color{board.White, board.Black} {
		c := c
		p.colorTabs = append(p.colorTabs, NewButton(x+i*tabW, y, tabW, TabHeight, c.String(), false,
			func() { g.SetPlayerColor(c) }))
	}
	y += TabHeight + 12 + SectionLabelH

	p.historyY = y
	p.evalY = ScreenHeight - 80 - maxEvalRows*rowHeight
	return p
}

func (p *Panel) buttons() []*Button {
	buttons := []*Button{p.newGameBtn, p.settingsBtn}
	buttons = append(buttons, p.modeTabs...)
	if p.game.Mode() == storage.ModeHumanVsBot {
		buttons = append(buttons, p.colorTabs...)
	}
	return buttons
}

// HandleInput processes clicks and scrolling over the panel. It reports
// whether the panel consumed the input.
func (p *Panel) HandleInput(input *InputHandler) bool {
	mx, my := input.MousePosition()

	for i, tab := range p.modeTabs {
		tab.active = p.game.Mode() == storage.GameMode(i)
	}
	for i, tab := range p.colorTabs {
		tab.active = p.game.PlayerColor() == board.Color(i)
	}

	for _, b := range p.buttons() {
		if b.Update(input) {
			return true
		}
	}

	if mx >= BoardSize && my >= p.historyY && my < p.historyEnd() {
		if _, dy := ebiten.Wheel(); dy != 0 {
			p.scrollY = max(0, min(p.maxScrollY, p.scrollY-int(dy*rowHeight)))
			return true
		}
	}
	return mx >= BoardSize && input.IsLeftJustPressed()
}

// AnyButtonHovered reports whether the cursor is over a panel button.
func (p *Panel) AnyButtonHovered() bool {
	for _, b := range p.buttons() {
		if b.IsHovered() {
			return true
		}
	}
	return false
}

func (p *Panel) historyEnd() int {
	if p.game.ShowScores() {
		return p.evalY - SectionLabelH - 12
	}
	return ScreenHeight - 80
}

// Draw renders the panel from a snapshot.
func (p *Panel) Draw(screen *ebiten.Image, snap game.Snapshot) {
	vector.DrawFilledRect(screen, BoardSize, 0, PanelWidth, ScreenHeight, panelBg, false)

	x := BoardSize + PanelPadding
	for _, b := range p.buttons() {
		b.Draw(screen)
	}
	DrawSectionHeader(screen, "Mode", x, p.modeTabs[0].Y-SectionLabelH)
	if p.game.Mode() == storage.ModeHumanVsBot {
		DrawSectionHeader(screen, "Play as", x, p.colorTabs[0].Y-SectionLabelH)
	}

	DrawSectionHeader(screen, "Moves", x, p.historyY-SectionLabelH)
	p.drawMoveHistory(screen, snap)

	if p.game.ShowScores() {
		DrawSectionHeader(screen, "Bot evaluations", x, p.evalY-SectionLabelH)
		p.drawEvaluations(screen, snap)
	}
	p.drawStatusBar(screen, snap)
}

// moveRows pairs the plies of a history into numbered rows. A trailing
// result token gets a row of its own.
func moveRows(history []string, result string) []string {
	plies := history
	if result != "" && len(plies) > 0 && plies[len(plies)-1] == result {
		plies = plies[:len(plies)-1]
	}
	var rows []string
	for i := 0; i < len(plies); i += 2 {
		row := fmt.Sprintf("%3d. %-8s", i/2+1, plies[i])
		if i+1 < len(plies) {
			row += " " + plies[i+1]
		}
		rows = append(rows, row)
	}
	if result != "" {
		rows = append(rows, "     "+result)
	}
	return rows
}

func (p *Panel) drawMoveHistory(screen *ebiten.Image, snap game.Snapshot) {
	x := BoardSize + PanelPadding
	top, bottom := p.historyY, p.historyEnd()

	rows := moveRows(snap.History, snap.Result)
	if len(rows) == 0 {
		drawText(screen, "No moves yet", regularFace, float64(x), float64(top+4), textMuted)
		return
	}

	visible := (bottom - top) / rowHeight
	p.maxScrollY = max(0, (len(rows)-visible)*rowHeight)
	p.scrollY = min(p.scrollY, p.maxScrollY)

	first := p.scrollY / rowHeight
	for i := first; i < len(rows) && i < first+visible; i++ {
		y := top + (i-first)*rowHeight
		if i%2 == 1 {
			vector.DrawFilledRect(screen, float32(x-4), float32(y-2), float32(PanelWidth-PanelPadding*2+8), rowHeight, moveRowAlt, false)
		}
		c := textPrimary
		if snap.Result != "" && i == len(rows)-1 {
			c = statusGameOver
		}
		drawText(screen, rows[i], monoFace, float64(x), float64(y), c)
	}

	if p.maxScrollY > 0 {
		h := float32(bottom-top) * float32(visible) / float32(len(rows))
		y := float32(top) + float32(p.scrollY)/float32(p.maxScrollY)*(float32(bottom-top)-h)
		vector.DrawFilledRect(screen, BoardSize+PanelWidth-8, y, 4, h, textMuted, false)
	}
}

// rankEvaluations orders evaluations best first for the side that chose among them.
func rankEvaluations(evs []engine.Evaluation, mover board.Color) []engine.Evaluation {
	ranked := append([]engine.Evaluation(nil), evs...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if mover == board.White {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Score < ranked[j].Score
	})
	return ranked
}

func (p *Panel) drawEvaluations(screen *ebiten.Image, snap game.Snapshot) {
	x := BoardSize + PanelPadding
	if len(snap.Evaluations) == 0 {
		drawText(screen, "None yet", regularFace, float64(x), float64(p.evalY+4), textMuted)
		return
	}

	// The evaluations belong to the side whose pieces they move.
	mover := snap.Evaluations[0].Move.Piece.Color()
	ranked := rankEvaluations(snap.Evaluations, mover)
	for i, ev := range ranked[:min(len(ranked), maxEvalRows)] {
		c := textSecondary
		if ev.Move == snap.LastMove {
			c = accentColor
		}
		row := fmt.Sprintf("%-8s %6s", ev.Notation, engine.ScoreToString(ev.Score))
		drawText(screen, row, monoFace, float64(x), float64(p.evalY+i*rowHeight), c)
	}
	if len(ranked) > maxEvalRows {
		drawText(screen, fmt.Sprintf("+%d more", len(ranked)-maxEvalRows), smallFace,
			float64(x+180), float64(p.evalY), textMuted)
	}
}

func (p *Panel) drawStatusBar(screen *ebiten.Image, snap game.Snapshot) {
	statusY := ScreenHeight - 60
	x := BoardSize + PanelPadding
	DrawDivider(screen, x, statusY-10, PanelWidth-PanelPadding*2)

	var status string
	var c color.RGBA
	switch {
	case snap.GameOver():
		status, c = resultText(snap), statusGameOver
	case snap.Thinking:
		status, c = "Bot thinking...", statusThinking
	default:
		status, c = snap.SideToMove.String()+" to move", textPrimary
	}
	drawText(screen, status, regularFace, float64(x), float64(statusY), c)
	drawText(screen, fmt.Sprintf("Move %d", snap.MoveNumber), regularFace, float64(x), float64(statusY+22), textMuted)
}

func resultText(snap game.Snapshot) string {
	switch snap.Result {
	case board.WhiteWins:
		return "White wins by checkmate"
	case board.BlackWins:
		return "Black wins by checkmate"
	default:
		return "Draw by stalemate"
	}
}
