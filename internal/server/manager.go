package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/engine"
	"github.com/hailam/chessbot/internal/game"
)

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// entry is one registered session and the websocket connections watching it.
type entry struct {
	session     *game.Session // immutable after registration
	unsubscribe func()

	mu    sync.Mutex
	conns map[*websocket.Conn]*sync.Mutex // per connection write lock
}

// SessionManager owns every session served over HTTP.
type SessionManager struct {
	sessions map[string]*entry
	mu       sync.RWMutex

	depth     int
	threshold int
	recorder  game.Recorder

	// Bot computations of every session stop when ctx is cancelled.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSessionManager creates an empty registry. Bots are created with the
// given depth and threshold; finished games go to recorder if it is not nil.
func NewSessionManager(depth, threshold int, recorder game.Recorder) *SessionManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionManager{
		sessions:  make(map[string]*entry),
		depth:     depth,
		threshold: threshold,
		recorder:  recorder,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Create starts a session with the bot playing the given colors and
// returns its id.
func (m *SessionManager) Create(botColors ...board.Color) string {
	id := uuid.New().String()
	e := &entry{conns: make(map[*websocket.Conn]*sync.Mutex)}

	opts := []game.Option{
		game.WithBot(engine.NewBot(engine.WithDepth(m.depth), engine.WithThreshold(m.threshold))),
		game.WithBotColors(botColors...),
		game.WithContext(m.ctx),
	}
	if m.recorder != nil {
		opts = append(opts, game.WithRecorder(m.recorder))
	}

	e.session = game.NewSession(opts...)
	e.unsubscribe = e.session.Subscribe(func(snap game.Snapshot) {
		e.broadcast(NewGameState(id, snap))
	})

	m.mu.Lock()
	m.sessions[id] = e
	m.mu.Unlock()

	log.Printf("[SESSION] created %s (bot: %v)", id, botColors)
	return id
}

// Get returns the session registered under id.
func (m *SessionManager) Get(id string) (*game.Session, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	return e.session, nil
}

func (m *SessionManager) entry(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return e, nil
}

// Remove stops and forgets a session.
func (m *SessionManager) Remove(id string) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	e.close()
	return nil
}

// IDs returns the ids of all sessions, sorted.
func (m *SessionManager) IDs() []string {
	m.mu.RLock()
	ids := maps.Keys(m.sessions)
	m.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// Close stops every session. Running bot computations are cancelled
// together before the sessions are closed one by one.
func (m *SessionManager) Close() {
	m.cancel()
	m.mu.Lock()
	entries := maps.Values(m.sessions)
	m.sessions = make(map[string]*entry)
	m.mu.Unlock()

	for _, e := range entries {
		e.close()
	}
}

// RegisterConnection adds a websocket connection to the session's watchers.
func (m *SessionManager) RegisterConnection(id string, conn *websocket.Conn) error {
	e, err := m.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.conns[conn] = &sync.Mutex{}
	return nil
}

// UnregisterConnection removes a websocket connection.
func (m *SessionManager) UnregisterConnection(id string, conn *websocket.Conn) {
	e, err := m.entry(id)
	if err != nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.conns, conn)
}

// Send writes one message to one connection of the session.
func (m *SessionManager) Send(id string, conn *websocket.Conn, msg Message) error {
	e, err := m.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	lock, ok := e.conns[conn]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("connection not registered with %s", id)
	}
	lock.Lock()
	defer lock.Unlock()
	return conn.WriteJSON(msg)
}

// broadcast pushes a state to every watcher.
func (e *entry) broadcast(st GameState) {
	msg, err := stateMessage(st)
	if err != nil {
		log.Printf("Warning: Failed to encode state: %v", err)
		return
	}

	e.mu.Lock()
	conns := maps.Clone(e.conns)
	e.mu.Unlock()

	for conn, lock := range conns {
		lock.Lock()
		err := conn.WriteJSON(msg)
		lock.Unlock()
		if err != nil {
			log.Printf("Warning: websocket write failed: %v", err)
		}
	}
}

func (e *entry) close() {
	e.unsubscribe()
	e.session.Close()
}
