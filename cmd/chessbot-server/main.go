// Command chessbot-server serves games against the bot over HTTP and websockets.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hailam/chessbot/internal/engine"
	"github.com/hailam/chessbot/internal/server"
	"github.com/hailam/chessbot/internal/storage"
)

var (
	addr      = flag.String("addr", ":3000", "listen address")
	depth     = flag.Int("depth", engine.DefaultDepth, "bot search depth in plies")
	threshold = flag.Int("threshold", engine.DefaultThreshold, "bot randomness: candidates within this many points of the best")
	origins   = flag.String("origins", "*", "allowed CORS origins")
	dbDir     = flag.String("db", "", "database directory for finished games (default: platform data directory)")
	noHistory = flag.Bool("no-history", false, "do not record finished games")
)

func main() {
	flag.Parse()

	cfg := server.Config{
		Depth:        *depth,
		Threshold:    *threshold,
		AllowOrigins: *origins,
	}

	if !*noHistory {
		store, err := openStore(*dbDir)
		if err != nil {
			log.Printf("Warning: Failed to open storage: %v (games will not be recorded)", err)
		} else {
			defer store.Close()
			cfg.Store = store
		}
	}

	srv := server.New(cfg)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Printf("[HTTP] shutting down")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Warning: Failed to shut down: %v", err)
		}
	}()

	if err := srv.Listen(*addr); err != nil {
		log.Fatal(err)
	}
}

func openStore(dir string) (*storage.Storage, error) {
	if dir == "" {
		return storage.NewStorage()
	}
	return storage.Open(dir)
}
