package ui

import (
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/game"
	"github.com/hailam/chessbot/internal/tree"
)

// ToastType represents the type of toast notification.
type ToastType int

const (
	ToastInfo ToastType = iota
	ToastWarning
	ToastSuccess
)

// Toast represents a notification message.
type Toast struct {
	Message   string
	Type      ToastType
	StartTime time.Time
	Duration  time.Duration
}

// ToastManager manages toast notifications.
type ToastManager struct {
	toasts   []*Toast
	maxStack int
}

// NewToastManager creates a new toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{maxStack: 3}
}

// Show displays a new toast notification.
func (tm *ToastManager) Show(message string, toastType ToastType, duration time.Duration) {
	tm.toasts = append(tm.toasts, &Toast{
		Message:   message,
		Type:      toastType,
		StartTime: time.Now(),
		Duration:  duration,
	})
	if len(tm.toasts) > tm.maxStack {
		tm.toasts = tm.toasts[1:]
	}
}

// Update removes expired toasts.
func (tm *ToastManager) Update() {
	now := time.Now()
	active := tm.toasts[:0]
	for _, t := range tm.toasts {
		if now.Sub(t.StartTime) < t.Duration {
			active = append(active, t)
		}
	}
	tm.toasts = active
}

// Draw renders all active toasts, stacked from the top of the board.
func (tm *ToastManager) Draw(screen *ebiten.Image) {
	y := 50.0
	for _, t := range tm.toasts {
		elapsed := time.Since(t.StartTime).Seconds()
		duration := t.Duration.Seconds()

		// Fade in and out
		alpha := 1.0
		const fadeTime = 0.2
		if elapsed < fadeTime {
			alpha = elapsed / fadeTime
		} else if elapsed > duration-fadeTime {
			alpha = (duration - elapsed) / fadeTime
		}
		alpha = math.Max(0, math.Min(1, alpha))

		var bg color.RGBA
		fg := color.RGBA{255, 255, 255, uint8(255 * alpha)}
		switch t.Type {
		case ToastWarning:
			bg = color.RGBA{180, 140, 20, uint8(220 * alpha)}
			fg = color.RGBA{40, 30, 0, uint8(255 * alpha)}
		case ToastSuccess:
			bg = color.RGBA{50, 150, 50, uint8(220 * alpha)}
		default:
			bg = color.RGBA{50, 100, 150, uint8(220 * alpha)}
		}

		w, h := MeasureText(t.Message, regularFace)
		const padding = 12.0
		boxW, boxH := w+padding*2, h+padding*2
		x := float64(BoardSize)/2 - boxW/2

		vector.DrawFilledRect(screen, float32(x), float32(y), float32(boxW), float32(boxH), bg, false)
		drawText(screen, t.Message, regularFace, x+padding, y+padding, fg)
		y += boxH + 8
	}
}

// ShakeAnimation represents a piece shake effect.
type ShakeAnimation struct {
	Square    board.Square
	StartTime time.Time
	Duration  time.Duration
	Intensity float64
}

// AnimationManager manages visual animations.
type AnimationManager struct {
	shakes []*ShakeAnimation
}

// NewAnimationManager creates a new animation manager.
func NewAnimationManager() *AnimationManager {
	return &AnimationManager{}
}

// StartShake begins a shake animation on a square.
func (am *AnimationManager) StartShake(sq board.Square) {
	am.shakes = append(am.shakes, &ShakeAnimation{
		Square:    sq,
		StartTime: time.Now(),
		Duration:  300 * time.Millisecond,
		Intensity: 8.0,
	})
}

// Update removes expired animations.
func (am *AnimationManager) Update() {
	now := time.Now()
	active := am.shakes[:0]
	for _, s := range am.shakes {
		if now.Sub(s.StartTime) < s.Duration {
			active = append(active, s)
		}
	}
	am.shakes = active
}

// ShakeOffset returns the current horizontal shake offset for a square.
func (am *AnimationManager) ShakeOffset(sq board.Square) float64 {
	for _, s := range am.shakes {
		if s.Square != sq {
			continue
		}
		progress := time.Since(s.StartTime).Seconds() / s.Duration.Seconds()
		if progress >= 1.0 {
			return 0
		}
		// Damped sine
		return s.Intensity * math.Exp(-5*progress) * math.Sin(40*progress)
	}
	return 0
}

// FeedbackManager turns session changes and rejected input into toasts
// and animations.
type FeedbackManager struct {
	toasts     *ToastManager
	animations *AnimationManager
}

// NewFeedbackManager creates a new feedback manager.
func NewFeedbackManager() *FeedbackManager {
	return &FeedbackManager{
		toasts:     NewToastManager(),
		animations: NewAnimationManager(),
	}
}

// Update updates all feedback systems.
func (fm *FeedbackManager) Update() {
	fm.toasts.Update()
	fm.animations.Update()
}

// Draw renders the toasts.
func (fm *FeedbackManager) Draw(screen *ebiten.Image) {
	fm.toasts.Draw(screen)
}

// Animations returns the animation manager for the renderer.
func (fm *FeedbackManager) Animations() *AnimationManager {
	return fm.animations
}

// OnRejectedMove shakes the piece whose move was refused.
func (fm *FeedbackManager) OnRejectedMove(from board.Square) {
	fm.animations.StartShake(from)
}

// OnMessage shows a short notice.
func (fm *FeedbackManager) OnMessage(message string) {
	fm.toasts.Show(message, ToastWarning, 2*time.Second)
}

// OnChange announces check and the end of the game when a new move appears.
func (fm *FeedbackManager) OnChange(prev, next game.Snapshot) {
	if next.ID != prev.ID || len(next.History) <= len(prev.History) {
		return
	}
	switch next.Status {
	case tree.Check:
		fm.toasts.Show("Check!", ToastWarning, 2*time.Second)
	case tree.Checkmate:
		fm.toasts.Show("Checkmate! "+next.SideToMove.Other().String()+" wins", ToastSuccess, 5*time.Second)
	case tree.Stalemate:
		fm.toasts.Show("Stalemate - draw", ToastInfo, 5*time.Second)
	}
}
