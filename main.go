// ChessBot - a chess game against a shallow bot, built with Ebitengine
package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/hailam/chessbot/internal/storage"
	"github.com/hailam/chessbot/internal/ui"
)

var (
	depth     = flag.Int("depth", 0, "bot search depth in plies (default: saved preference)")
	threshold = flag.Int("threshold", -1, "bot randomness in points (default: saved preference)")
	dbDir     = flag.String("db", "", "database directory (default: platform data directory)")
)

func main() {
	flag.Parse()

	cfg := ui.Config{Depth: *depth, Threshold: *threshold}
	store, err := openStore(*dbDir)
	if err != nil {
		log.Printf("Warning: Failed to initialize storage: %v", err)
	} else {
		cfg.Store = store
	}

	game := ui.NewGame(cfg)
	defer game.Close()

	ebiten.SetWindowSize(ui.ScreenWidth, ui.ScreenHeight)
	ebiten.SetWindowTitle("ChessBot")

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}

func openStore(dir string) (*storage.Storage, error) {
	if dir == "" {
		return storage.NewStorage()
	}
	return storage.Open(dir)
}
