package ui

import (
	"image/color"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/chessbot/internal/storage"
)

// Settings modal dimensions
const (
	SettingsWidth  = 380
	SettingsHeight = 330
	SettingsPadX   = 24
	SettingsPadY   = 20
)

// Settings modal colors
var (
	modalOverlay = color.RGBA{0, 0, 0, 180}
	modalBg      = color.RGBA{38, 40, 45, 255}
	modalHeader  = color.RGBA{48, 52, 58, 255}
	modalBorder  = color.RGBA{58, 62, 68, 255}
)

// Choices offered for the bot settings.
var (
	depthChoices     = []int{1, 2, 3, 4}
	thresholdChoices = []int{0, 1, 2, 3}
)

// SettingsModal edits the bot strength and the evaluation display.
type SettingsModal struct {
	visible bool
	x, y    int

	depthBtns     *ButtonGroup
	thresholdBtns *ButtonGroup
	scoresBox     *Checkbox
	saveBtn       *Button
	cancelBtn     *Button

	prefs  storage.UserPreferences
	onSave func(storage.UserPreferences)
}

// NewSettingsModal creates a hidden settings modal centered on screen.
func NewSettingsModal() *SettingsModal {
	sm := &SettingsModal{
		x: (ScreenWidth - SettingsWidth) / 2,
		y: (ScreenHeight - SettingsHeight) / 2,
	}

	contentX := sm.x + SettingsPadX
	contentW := SettingsWidth - SettingsPadX*2

	sm.depthBtns = NewButtonGroup(contentX, sm.y+80, choiceLabels(depthChoices), 0, contentW/len(depthChoices), 34)
	sm.thresholdBtns = NewButtonGroup(contentX, sm.y+160, choiceLabels(thresholdChoices), 0, contentW/len(thresholdChoices), 34)
	sm.scoresBox = NewCheckbox(contentX, sm.y+220, "Show bot evaluations", true)

	const btnW, btnH, spacing = 100, 38, 12
	btnY := sm.y + SettingsHeight - SettingsPadY - btnH
	sm.cancelBtn = NewButton(sm.x+SettingsWidth-SettingsPadX-btnW*2-spacing, btnY, btnW, btnH, "Cancel", false, sm.Hide)
	sm.saveBtn = NewButton(sm.x+SettingsWidth-SettingsPadX-btnW, btnY, btnW, btnH, "Save", true, sm.handleSave)
	return sm
}

func choiceLabels(choices []int) []string {
	labels := make([]string, len(choices))
	for i, c := range choices {
		labels[i] = strconv.Itoa(c)
	}
	return labels
}

// choiceIndex returns the index of v in choices, or of the closest choice.
func choiceIndex(choices []int, v int) int {
	best := 0
	for i, c := range choices {
		if abs(c-v) < abs(choices[best]-v) {
			best = i
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Show opens the modal on a copy of prefs. onSave receives the edited copy.
func (sm *SettingsModal) Show(prefs *storage.UserPreferences, onSave func(storage.UserPreferences)) {
	sm.visible = true
	sm.prefs = *prefs
	sm.onSave = onSave

	sm.depthBtns.Selected = choiceIndex(depthChoices, prefs.Depth)
	sm.thresholdBtns.Selected = choiceIndex(thresholdChoices, prefs.Threshold)
	sm.scoresBox.Checked = prefs.ShowScores
}

// Hide closes the modal without saving.
func (sm *SettingsModal) Hide() {
	sm.visible = false
}

// IsVisible returns true if the modal is visible.
func (sm *SettingsModal) IsVisible() bool {
	return sm.visible
}

func (sm *SettingsModal) handleSave() {
	sm.prefs.Depth = depthChoices[sm.depthBtns.Selected]
	sm.prefs.Threshold = thresholdChoices[sm.thresholdBtns.Selected]
	sm.prefs.ShowScores = sm.scoresBox.Checked
	if sm.onSave != nil {
		sm.onSave(sm.prefs)
	}
	sm.Hide()
}

// Update handles input for the modal. It consumes all input while visible.
func (sm *SettingsModal) Update(input *InputHandler) bool {
	if !sm.visible {
		return false
	}

	switch {
	case IsKeyJustPressed(ebiten.KeyEscape):
		sm.Hide()
		return true
	case IsKeyJustPressed(ebiten.KeyEnter):
		sm.handleSave()
		return true
	}

	sm.depthBtns.Update(input)
	sm.thresholdBtns.Update(input)
	sm.scoresBox.Update(input)
	sm.saveBtn.Update(input)
	sm.cancelBtn.Update(input)
	return true
}

// AnyButtonHovered returns true if any control in the modal is hovered.
func (sm *SettingsModal) AnyButtonHovered() bool {
	if !sm.visible {
		return false
	}
	return sm.saveBtn.IsHovered() || sm.cancelBtn.IsHovered() ||
		sm.depthBtns.hovered >= 0 || sm.thresholdBtns.hovered >= 0 || sm.scoresBox.hovered
}

// Draw renders the modal over a dimmed screen.
func (sm *SettingsModal) Draw(screen *ebiten.Image) {
	if !sm.visible {
		return
	}

	vector.DrawFilledRect(screen, 0, 0, ScreenWidth, ScreenHeight, modalOverlay, false)

	x, y := float32(sm.x), float32(sm.y)
	vector.DrawFilledRect(screen, x, y, SettingsWidth, SettingsHeight, modalBg, false)
	vector.StrokeRect(screen, x, y, SettingsWidth, SettingsHeight, 2, modalBorder, false)
	vector.DrawFilledRect(screen, x, y, SettingsWidth, 44, modalHeader, false)
	drawTextCentered(screen, "Settings", boldFace, float64(sm.x)+SettingsWidth/2, float64(sm.y)+22, textPrimary)

	contentX := sm.x + SettingsPadX
	DrawSectionHeader(screen, "Search depth (plies)", contentX, sm.depthBtns.Y-26)
	DrawSectionHeader(screen, "Randomness (points below best)", contentX, sm.thresholdBtns.Y-26)
	drawText(screen, "Takes effect in the next game", smallFace,
		float64(contentX), float64(sm.thresholdBtns.Y+sm.thresholdBtns.ButtonH+6), textMuted)

	sm.depthBtns.Draw(screen)
	sm.thresholdBtns.Draw(screen)
	sm.scoresBox.Draw(screen)
	sm.saveBtn.Draw(screen)
	sm.cancelBtn.Draw(screen)
}
