package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	prefixGame     = "game/"
)

// ErrGameNotFound is returned when no record exists for a game id.
var ErrGameNotFound = errors.New("game not found")

// GameMode represents who controls each side.
type GameMode int

const (
	ModeHumanVsHuman GameMode = iota
	ModeHumanVsBot
	ModeBotVsBot
)

// PlayerColor represents which color the human plays against the bot.
type PlayerColor int

const (
	ColorWhite PlayerColor = iota
	ColorBlack
)

// Player kinds recorded for each side of a game.
const (
	PlayerHuman = "human"
	PlayerBot   = "bot"
)

// UserPreferences stores user settings
type UserPreferences struct {
	Username    string      `json:"username"`
	GameMode    GameMode    `json:"game_mode"`
	PlayerColor PlayerColor `json:"player_color"`
	Depth       int         `json:"depth"`
	Threshold   int         `json:"threshold"`
	ShowScores  bool        `json:"show_scores"`
	LastPlayed  time.Time   `json:"last_played"`
}

// DefaultPreferences returns default user preferences
func DefaultPreferences() *UserPreferences {
	return &UserPreferences{
		Username:    "Player",
		GameMode:    ModeHumanVsBot,
		PlayerColor: ColorWhite,
		Depth:       3,
		Threshold:   1,
		ShowScores:  true,
		LastPlayed:  time.Now(),
	}
}

// GameStats stores game statistics
type GameStats struct {
	GamesPlayed    int           `json:"games_played"`
	WhiteWins      int           `json:"white_wins"`
	BlackWins      int           `json:"black_wins"`
	Draws          int           `json:"draws"`
	Wins           int           `json:"wins"`   // human wins against the bot
	Losses         int           `json:"losses"` // human losses against the bot
	TotalPlayTime  time.Duration `json:"total_play_time"`
	LongestWinStrk int           `json:"longest_win_streak"`
	CurrentStreak  int           `json:"current_streak"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{}
}

// GetWinRate returns the human win rate against the bot as a percentage (0-100)
func (s *GameStats) GetWinRate() float64 {
	played := s.Wins + s.Losses
	if played == 0 {
		return 0
	}
	return float64(s.Wins) / float64(played) * 100
}

// GameRecord is a finished game.
type GameRecord struct {
	ID       string    `json:"id"`
	White    string    `json:"white"` // PlayerHuman or PlayerBot
	Black    string    `json:"black"`
	Moves    []string  `json:"moves"`   // long algebraic, e.g. "e2e4"
	History  []string  `json:"history"` // final notation, ending with the result token
	Result   string    `json:"result"`  // "1-0", "0-1" or "0.5-0.5"
	FinalFEN string    `json:"final_fen"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
}

// humanOutcome reports how the game went for a lone human playing the bot.
// ok is false unless exactly one side was human.
func (r *GameRecord) humanOutcome() (won, lost, ok bool) {
	var human string
	switch {
	case r.White == PlayerHuman && r.Black == PlayerBot:
		human = "1-0"
	case r.White == PlayerBot && r.Black == PlayerHuman:
		human = "0-1"
	default:
		return false, false, false
	}
	switch r.Result {
	case human:
		return true, false, true
	case "1-0", "0-1":
		return false, true, true
	}
	return false, false, true
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens (creating if needed) the database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dir, err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SavePreferences saves user preferences
func (s *Storage) SavePreferences(prefs *UserPreferences) error {
	prefs.LastPlayed = time.Now()
	return s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, keyPreferences, prefs)
	})
}

// LoadPreferences loads user preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*UserPreferences, error) {
	prefs := DefaultPreferences()
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := getJSON(txn, keyPreferences, prefs)
		return err
	})
	return prefs, err
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := getJSON(txn, keyStats, stats)
		return err
	})
	return stats, err
}

// RecordGame stores a finished game and updates statistics in one transaction.
// A record without an id is given a new one.
func (s *Storage) RecordGame(rec GameRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Finished.IsZero() {
		rec.Finished = time.Now()
	}

	return s.db.Update(func(txn *badger.Txn) error {
		stats := NewGameStats()
		if _, err := getJSON(txn, keyStats, stats); err != nil {
			return err
		}

		stats.GamesPlayed++
		if !rec.Started.IsZero() {
			stats.TotalPlayTime += rec.Finished.Sub(rec.Started)
		}

		switch rec.Result {
		case "1-0":
			stats.WhiteWins++
		case "0-1":
			stats.BlackWins++
		default:
			stats.Draws++
		}

		if won, lost, ok := rec.humanOutcome(); ok {
			switch {
			case won:
				stats.Wins++
				stats.CurrentStreak++
				if stats.CurrentStreak > stats.LongestWinStrk {
					stats.LongestWinStrk = stats.CurrentStreak
				}
			case lost:
				stats.Losses++
				stats.CurrentStreak = 0
			default:
				stats.CurrentStreak = 0
			}
		}

		if err := setJSON(txn, prefixGame+rec.ID, rec); err != nil {
			return err
		}
		return setJSON(txn, keyStats, stats)
	})
}

// GetGame loads one finished game.
func (s *Storage) GetGame(id string) (*GameRecord, error) {
	rec := &GameRecord{}
	err := s.db.View(func(txn *badger.Txn) error {
		found, err := getJSON(txn, prefixGame+id, rec)
		if err == nil && !found {
			return fmt.Errorf("%w: %s", ErrGameNotFound, id)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListGames returns up to limit finished games, most recent first.
// A limit of 0 returns all games.
func (s *Storage) ListGames(limit int) ([]GameRecord, error) {
	var games []GameRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixGame)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var rec GameRecord
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", strings.TrimPrefix(string(item.Key()), prefixGame), err)
			}
			games = append(games, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(games, func(i, j int) bool {
		return games[i].Finished.After(games[j].Finished)
	})
	if limit > 0 && len(games) > limit {
		games = games[:limit]
	}
	return games, nil
}

func setJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

// getJSON decodes the value at key into v. found is false, with no error,
// when the key does not exist.
func getJSON(txn *badger.Txn, key string, v any) (found bool, err error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}
