// Package storage provides persistent storage for user preferences, game
// statistics and finished games.
package storage

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "chessbot"

// DataDirEnv overrides the platform data directory when set.
const DataDirEnv = "CHESSBOT_DATA_DIR"

// GetDataDir returns the data directory of the application, creating it if
// needed. CHESSBOT_DATA_DIR wins over the platform default:
//   - macOS: ~/Library/Application Support/chessbot/
//   - Linux: $XDG_DATA_HOME/chessbot/ or ~/.local/share/chessbot/
//   - Windows: %APPDATA%/chessbot/
func GetDataDir() (string, error) {
	dir := os.Getenv(DataDirEnv)
	if dir == "" {
		home, _ := os.UserHomeDir()
		base, err := platformDataHome(runtime.GOOS, os.Getenv, home)
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, appName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dir, nil
}

// platformDataHome returns the directory under which applications keep their
// data on the given OS.
func platformDataHome(goos string, getenv func(string) string, home string) (string, error) {
	var env string
	var fallback []string
	switch goos {
	case "darwin":
		fallback = []string{"Library", "Application Support"}
	case "windows":
		env, fallback = "APPDATA", []string{"AppData", "Roaming"}
	default:
		env, fallback = "XDG_DATA_HOME", []string{".local", "share"}
	}

	if env != "" {
		if dir := getenv(env); dir != "" {
			return dir, nil
		}
	}
	if home == "" {
		return "", errors.New("no home directory to place application data in")
	}
	return filepath.Join(append([]string{home}, fallback...)...), nil
}

// GetDatabaseDir returns the directory for storing the BadgerDB database.
func GetDatabaseDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}

	dbDir := filepath.Join(dataDir, "db")
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return "", fmt.Errorf("create database directory: %w", err)
	}
	log.Printf("[STORAGE] database directory: %s", dbDir)
	return dbDir, nil
}
