package ui

import (
	"errors"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/engine"
	"github.com/hailam/chessbot/internal/game"
	"github.com/hailam/chessbot/internal/storage"
)

// UI Constants
const (
	ScreenWidth  = 960
	ScreenHeight = 640
	BoardSize    = 640
	SquareSize   = BoardSize / 8
	PanelWidth   = ScreenWidth - BoardSize
)

// Config configures the desktop game.
type Config struct {
	// Depth and Threshold override the stored preferences when positive
	// (Threshold when non-negative).
	Depth     int
	Threshold int
	// Store keeps preferences and finished games. It may be nil.
	Store *storage.Storage
}

// Game implements ebiten.Game on top of a game session.
type Game struct {
	session *game.Session
	snap    game.Snapshot

	renderer *Renderer
	input    *InputHandler
	panel    *Panel
	feedback *FeedbackManager
	settings *SettingsModal

	store *storage.Storage
	prefs *storage.UserPreferences
}

// NewGame creates the game window state and starts a session using the
// stored preferences.
func NewGame(cfg Config) *Game {
	g := &Game{
		renderer: NewRenderer(BoardSize, SquareSize),
		input:    NewInputHandler(),
		feedback: NewFeedbackManager(),
		settings: NewSettingsModal(),
		store:    cfg.Store,
	}
	g.loadPreferences()
	if cfg.Depth > 0 {
		g.prefs.Depth = cfg.Depth
	}
	if cfg.Threshold >= 0 {
		g.prefs.Threshold = cfg.Threshold
	}

	g.panel = NewPanel(g)
	g.renderer.SetFlipped(g.prefs.GameMode == storage.ModeHumanVsBot && g.prefs.PlayerColor == storage.ColorBlack)
	g.startSession()
	return g
}

// loadPreferences loads user preferences from storage.
func (g *Game) loadPreferences() {
	if g.store == nil {
		g.prefs = storage.DefaultPreferences()
		return
	}

	prefs, err := g.store.LoadPreferences()
	if err != nil {
		log.Printf("Warning: Failed to load preferences: %v", err)
		prefs = storage.DefaultPreferences()
	}
	g.prefs = prefs
}

// savePreferences saves current preferences to storage.
func (g *Game) savePreferences() {
	if g.store == nil {
		return
	}
	g.prefs.LastPlayed = time.Now()
	if err := g.store.SavePreferences(g.prefs); err != nil {
		log.Printf("Warning: Failed to save preferences: %v", err)
	}
}

// botSides returns which sides the bot plays under the current preferences.
func (g *Game) botSides() (white, black bool) {
	switch g.prefs.GameMode {
	case storage.ModeBotVsBot:
		return true, true
	case storage.ModeHumanVsBot:
		if g.prefs.PlayerColor == storage.ColorBlack {
			return true, false
		}
		return false, true
	default:
		return false, false
	}
}

// startSession replaces the current session with a fresh one built from the
// preferences. Bot settings only change this way.
func (g *Game) startSession() {
	if g.session != nil {
		g.session.Close()
	}

	bot := engine.NewBot(engine.WithDepth(g.prefs.Depth), engine.WithThreshold(g.prefs.Threshold))
	var colors []board.Color
	white, black := g.botSides()
	if white {
		colors = append(colors, board.White)
	}
	if black {
		colors = append(colors, board.Black)
	}

	opts := []game.Option{game.WithBot(bot), game.WithBotColors(colors...)}
	if g.store != nil {
		opts = append(opts, game.WithRecorder(g.store))
	}
	g.session = game.NewSession(opts...)
	g.snap = g.session.Snapshot()
	log.Printf("[SESSION] Started %s (depth %d, threshold %d)", g.snap.ID, g.prefs.Depth, g.prefs.Threshold)
}

// Update handles input and picks up changes made by the bot.
func (g *Game) Update() error {
	g.input.Update()
	g.feedback.Update()

	switch {
	case g.settings.IsVisible():
		g.settings.Update(g.input)
	case IsKeyJustPressed(ebiten.KeyN):
		g.NewGameAction()
	case IsKeyJustPressed(ebiten.KeyF):
		g.renderer.SetFlipped(!g.renderer.Flipped())
	case g.panel.HandleInput(g.input):
	default:
		g.handleBoardInput()
	}

	g.refresh()
	g.updateCursor()
	return nil
}

// refresh takes a new snapshot and reports what changed.
func (g *Game) refresh() {
	next := g.session.Snapshot()
	g.feedback.OnChange(g.snap, next)
	g.snap = next
}

// handleBoardInput forwards clicks on the board to the session.
func (g *Game) handleBoardInput() {
	if !g.input.IsLeftJustPressed() {
		return
	}
	mx, my := g.input.MousePosition()
	sq := g.renderer.ScreenToSquare(mx, my)
	if sq == board.NoSquare {
		return
	}

	selected := g.snap.Selected
	moved, err := g.session.ProcessClick(sq)
	switch {
	case errors.Is(err, game.ErrBotThinking):
		g.feedback.OnMessage("Wait for the bot to move")
	case errors.Is(err, game.ErrGameOver):
		g.feedback.OnMessage("Game over - start a new game")
	case err != nil:
		log.Printf("[MOVE] Click on %s failed: %v", sq, err)
	case !moved && selected != board.NoSquare && selected != sq && !g.snap.IsTarget(sq) &&
		!g.snap.Board[sq].IsActive(g.snap.SideToMove):
		g.feedback.OnRejectedMove(selected)
	}
}

func (g *Game) updateCursor() {
	var hovered bool
	if g.settings.IsVisible() {
		hovered = g.settings.AnyButtonHovered()
	} else {
		hovered = g.panel.AnyButtonHovered()
	}

	if hovered {
		ebiten.SetCursorShape(ebiten.CursorShapePointer)
	} else {
		ebiten.SetCursorShape(ebiten.CursorShapeDefault)
	}
}

// Draw renders the game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.renderer.Theme().Background)

	g.renderer.DrawBoard(screen)
	g.renderer.DrawHighlights(screen, g.snap)
	g.renderer.DrawPieces(screen, g.snap, g.feedback.Animations())

	g.panel.Draw(screen, g.snap)
	g.feedback.Draw(screen)
	g.settings.Draw(screen)
}

// Layout returns the game's screen dimensions.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// NewGameAction resets the board, keeping the current players.
func (g *Game) NewGameAction() {
	g.session.NewGame()
	g.refresh()
	log.Printf("[SESSION] New game %s", g.snap.ID)
}

// Mode returns who controls each side.
func (g *Game) Mode() storage.GameMode {
	return g.prefs.GameMode
}

// SetMode changes who controls each side. The current game continues.
func (g *Game) SetMode(mode storage.GameMode) {
	if mode == g.prefs.GameMode {
		return
	}
	g.prefs.GameMode = mode
	g.savePreferences()
	g.session.SetBotColors(g.botSides())
}

// PlayerColor returns the side the human plays against the bot.
func (g *Game) PlayerColor() board.Color {
	if g.prefs.PlayerColor == storage.ColorBlack {
		return board.Black
	}
	return board.White
}

// SetPlayerColor hands the other side to the bot and turns the board.
func (g *Game) SetPlayerColor(c board.Color) {
	if c == g.PlayerColor() {
		return
	}
	g.prefs.PlayerColor = storage.ColorWhite
	if c == board.Black {
		g.prefs.PlayerColor = storage.ColorBlack
	}
	g.savePreferences()
	g.session.SetBotColors(g.botSides())
	g.renderer.SetFlipped(c == board.Black)
}

// ShowScores reports whether the bot's evaluations are listed.
func (g *Game) ShowScores() bool {
	return g.prefs.ShowScores
}

// ShowSettings opens the settings modal. Saved bot settings start a new game.
func (g *Game) ShowSettings() {
	g.settings.Show(g.prefs, func(p storage.UserPreferences) {
		botChanged := p.Depth != g.prefs.Depth || p.Threshold != g.prefs.Threshold
		*g.prefs = p
		g.savePreferences()
		if botChanged {
			g.startSession()
			g.feedback.OnMessage("New bot settings: new game started")
		}
	})
}

// Close stops the session and releases the store.
func (g *Game) Close() {
	g.session.Close()
	if g.store != nil {
		if err := g.store.Close(); err != nil {
			log.Printf("Warning: Failed to close storage: %v", err)
		}
	}
}
