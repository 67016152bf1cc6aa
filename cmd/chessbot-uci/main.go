// Command chessbot-uci speaks the UCI protocol on stdin and stdout.
package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/hailam/chessbot/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	seed       = flag.Int64("seed", 0, "seed for the bot's random choices (0: time based)")
)

func main() {
	flag.Parse()

	// UCI owns stdout; diagnostics go to stderr.
	log.SetOutput(os.Stderr)

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	protocol := uci.New(os.Stdin, os.Stdout)
	if *seed != 0 {
		protocol.SetSeed(*seed)
	}
	if err := protocol.Run(); err != nil {
		log.Printf("Warning: UCI loop stopped: %v", err)
	}
}
