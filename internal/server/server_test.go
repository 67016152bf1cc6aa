package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hailam/chessbot/internal/storage"
)

func newTestServer(t *testing.T, store *storage.Storage) *Server {
	t.Helper()
	s := New(Config{Depth: 1, Store: store})
	t.Cleanup(func() { s.Sessions().Close() })
	return s
}

func do(t *testing.T, s *Server, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func createGame(t *testing.T, s *Server, bot string) GameState {
	t.Helper()
	code, data := do(t, s, http.MethodPost, "/api/game?bot="+bot, "")
	if code != http.StatusCreated {
		t.Fatalf("create: status %d: %s", code, data)
	}
	return decode[GameState](t, data)
}

func clickSquare(t *testing.T, s *Server, id, square string) ClickResponse {
	t.Helper()
	code, data := do(t, s, http.MethodPost, "/api/game/"+id+"/click", `{"square":"`+square+`"}`)
	if code != http.StatusOK {
		t.Fatalf("click %s: status %d: %s", square, code, data)
	}
	return decode[ClickResponse](t, data)
}

func TestCreateGame(t *testing.T) {
	s := newTestServer(t, nil)
	st := createGame(t, s, "none")

	if st.ID == "" || st.GameID == "" {
		t.Fatalf("missing ids: %+v", st)
	}
	if st.Board[0] != "rnbqkbnr" || st.Board[4] != "........" || st.Board[7] != "RNBQKBNR" {
		t.Errorf("board = %v", st.Board)
	}
	if st.SideToMove != "White" || st.Status != "Normal" || st.MoveNumber != 1 {
		t.Errorf("state = %+v", st)
	}
	if len(st.Bot) != 0 || len(st.History) != 0 {
		t.Errorf("bot %v history %v, want both empty", st.Bot, st.History)
	}

	code, _ := do(t, s, http.MethodPost, "/api/game?bot=green", "")
	if code != http.StatusBadRequest {
		t.Errorf("bad bot color: status %d, want 400", code)
	}
}

func TestGetGameState(t *testing.T) {
	s := newTestServer(t, nil)
	st := createGame(t, s, "none")

	code, data := do(t, s, http.MethodGet, "/api/game/"+st.ID, "")
	if code != http.StatusOK {
		t.Fatalf("status %d: %s", code, data)
	}
	if got := decode[GameState](t, data); got.FEN != st.FEN {
		t.Errorf("fen = %s, want %s", got.FEN, st.FEN)
	}

	code, _ = do(t, s, http.MethodGet, "/api/game/missing", "")
	if code != http.StatusNotFound {
		t.Errorf("unknown session: status %d, want 404", code)
	}
}

func TestClick(t *testing.T) {
	s := newTestServer(t, nil)
	id := createGame(t, s, "none").ID

	resp := clickSquare(t, s, id, "e2")
	if resp.Moved || resp.State.Selected != "e2" {
		t.Fatalf("select: %+v", resp)
	}
	if len(resp.State.Targets) != 2 {
		t.Errorf("targets = %v, want e3 and e4", resp.State.Targets)
	}

	resp = clickSquare(t, s, id, "e4")
	if !resp.Moved {
		t.Fatal("e2-e4 not played")
	}
	if resp.State.LastMove != "e2e4" || resp.State.SideToMove != "Black" {
		t.Errorf("state = %+v", resp.State)
	}
	if len(resp.State.History) != 1 || resp.State.History[0] != "e4" {
		t.Errorf("history = %v", resp.State.History)
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad square", `{"square":"z9"}`, http.StatusBadRequest},
		{"bad body", `{"square":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := do(t, s, http.MethodPost, "/api/game/"+id+"/click", tt.body)
			if code != tt.want {
				t.Errorf("status %d, want %d", code, tt.want)
			}
		})
	}
}

func TestClickAfterGameOver(t *testing.T) {
	s := newTestServer(t, nil)
	id := createGame(t, s, "none").ID

	var resp ClickResponse
	for _, sq := range []string{"f2", "f3", "e7", "e5", "g2", "g4", "d8", "h4"} {
		resp = clickSquare(t, s, id, sq)
	}
	if resp.State.Result != "0-1" || resp.State.Status != "Checkmate" {
		t.Fatalf("state = %+v", resp.State)
	}
	if resp.State.Check != "e1" {
		t.Errorf("check = %q, want e1", resp.State.Check)
	}

	code, _ := do(t, s, http.MethodPost, "/api/game/"+id+"/click", `{"square":"a2"}`)
	if code != http.StatusConflict {
		t.Errorf("click after mate: status %d, want 409", code)
	}
}

func TestBotReplies(t *testing.T) {
	s := newTestServer(t, nil)
	st := createGame(t, s, "black")
	if len(st.Bot) != 1 || st.Bot[0] != "Black" {
		t.Fatalf("bot = %v", st.Bot)
	}

	clickSquare(t, s, st.ID, "d2")
	clickSquare(t, s, st.ID, "d4")

	session, err := s.Sessions().Get(st.ID)
	if err != nil {
		t.Fatal(err)
	}
	session.Wait()

	code, data := do(t, s, http.MethodGet, "/api/game/"+st.ID, "")
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	got := decode[GameState](t, data)
	if len(got.History) != 2 || got.SideToMove != "White" {
		t.Errorf("history = %v, side = %s", got.History, got.SideToMove)
	}
	if len(got.Evaluations) != 20 {
		t.Errorf("evaluations = %d, want 20", len(got.Evaluations))
	}
}

func TestNewGameAndDelete(t *testing.T) {
	s := newTestServer(t, nil)
	st := createGame(t, s, "none")
	clickSquare(t, s, st.ID, "e2")
	clickSquare(t, s, st.ID, "e4")

	code, data := do(t, s, http.MethodPost, "/api/game/"+st.ID+"/new", "")
	if code != http.StatusOK {
		t.Fatalf("new: status %d", code)
	}
	got := decode[GameState](t, data)
	if got.ID != st.ID || got.GameID == st.GameID {
		t.Errorf("new game kept game id or lost session id: %+v", got)
	}
	if len(got.History) != 0 || got.Board[6] != "PPPPPPPP" {
		t.Errorf("not reset: %+v", got)
	}

	code, data = do(t, s, http.MethodGet, "/api/game", "")
	if code != http.StatusOK {
		t.Fatalf("list: status %d", code)
	}
	list := decode[map[string][]string](t, data)
	if len(list["sessions"]) != 1 || list["sessions"][0] != st.ID {
		t.Errorf("sessions = %v", list["sessions"])
	}

	if code, _ = do(t, s, http.MethodDelete, "/api/game/"+st.ID, ""); code != http.StatusNoContent {
		t.Errorf("delete: status %d", code)
	}
	if code, _ = do(t, s, http.MethodGet, "/api/game/"+st.ID, ""); code != http.StatusNotFound {
		t.Errorf("after delete: status %d, want 404", code)
	}
}

func TestGameHistory(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		s := newTestServer(t, nil)
		if code, _ := do(t, s, http.MethodGet, "/api/games", ""); code != http.StatusNotFound {
			t.Errorf("status %d, want 404", code)
		}
	})

	t.Run("Recorded", func(t *testing.T) {
		store, err := storage.Open(filepath.Join(t.TempDir(), "db"))
		if err != nil {
			t.Fatal(err)
		}
		defer store.Close()

		s := newTestServer(t, store)
		id := createGame(t, s, "none").ID
		for _, sq := range []string{"f2", "f3", "e7", "e5", "g2", "g4", "d8", "h4"} {
			clickSquare(t, s, id, sq)
		}

		code, data := do(t, s, http.MethodGet, "/api/games", "")
		if code != http.StatusOK {
			t.Fatalf("status %d: %s", code, data)
		}
		var list struct {
			Games []storage.GameRecord `json:"games"`
			Stats storage.GameStats    `json:"stats"`
		}
		if err := json.Unmarshal(data, &list); err != nil {
			t.Fatal(err)
		}
		if len(list.Games) != 1 || list.Games[0].Result != "0-1" {
			t.Fatalf("games = %+v", list.Games)
		}
		if list.Stats.GamesPlayed != 1 || list.Stats.BlackWins != 1 {
			t.Errorf("stats = %+v", list.Stats)
		}

		code, data = do(t, s, http.MethodGet, "/api/games/"+list.Games[0].ID, "")
		if code != http.StatusOK {
			t.Fatalf("get game: status %d", code)
		}
		rec := decode[storage.GameRecord](t, data)
		if strings.Join(rec.History, " ") != "f3 e5 g4 Qh4# 0-1" {
			t.Errorf("history = %v", rec.History)
		}

		if code, _ = do(t, s, http.MethodGet, "/api/games/nope", ""); code != http.StatusNotFound {
			t.Errorf("unknown record: status %d, want 404", code)
		}
		if code, _ = do(t, s, http.MethodGet, "/api/games?limit=0", ""); code != http.StatusBadRequest {
			t.Errorf("bad limit: status %d, want 400", code)
		}
	})
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	s := newTestServer(t, nil)
	id := createGame(t, s, "none").ID

	if code, _ := do(t, s, http.MethodGet, "/ws/game/"+id, ""); code != http.StatusUpgradeRequired {
		t.Errorf("status %d, want 426", code)
	}
}

func TestHandleMessage(t *testing.T) {
	s := newTestServer(t, nil)
	id := createGame(t, s, "none").ID
	wsc := NewWebSocketController(s.Sessions())
	session, _ := s.Sessions().Get(id)

	msg := func(typ MessageType, payload string) Message {
		return Message{Type: typ, Payload: json.RawMessage(payload)}
	}

	for _, sq := range []string{"g1", "f3"} {
		if err := wsc.handleMessage(id, msg(MessageTypeClick, `{"square":"`+sq+`"}`)); err != nil {
			t.Fatalf("click %s: %v", sq, err)
		}
	}
	if h := session.Snapshot().History; len(h) != 1 || h[0] != "Nf3" {
		t.Fatalf("history = %v", h)
	}

	if err := wsc.handleMessage(id, msg(MessageTypeClick, `{"square":"i1"}`)); err == nil {
		t.Error("invalid square accepted")
	}
	if err := wsc.handleMessage(id, msg("resign", `{}`)); err == nil {
		t.Error("unknown message type accepted")
	}
	if err := wsc.handleMessage("missing", msg(MessageTypeNewGame, "")); err == nil {
		t.Error("unknown session accepted")
	}

	if err := wsc.handleMessage(id, msg(MessageTypeNewGame, "")); err != nil {
		t.Fatal(err)
	}
	if h := session.Snapshot().History; len(h) != 0 {
		t.Errorf("history after new game = %v", h)
	}
}

func TestStateMessage(t *testing.T) {
	s := newTestServer(t, nil)
	id := createGame(t, s, "none").ID
	session, _ := s.Sessions().Get(id)

	msg, err := stateMessage(NewGameState(id, session.Snapshot()))
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), `{"type":"state","payload":{"id":"`+id+`"`) {
		t.Errorf("message = %s", data)
	}
}
