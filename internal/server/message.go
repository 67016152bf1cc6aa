package server

import (
	"encoding/json"

	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/engine"
	"github.com/hailam/chessbot/internal/game"
)

// MessageType represents the different kinds of websocket messages.
type MessageType string

const (
	MessageTypeState   MessageType = "state"
	MessageTypeClick   MessageType = "click"
	MessageTypeNewGame MessageType = "new"
	MessageTypeError   MessageType = "error"
)

// Message is the websocket envelope.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ClickRequest is the body of a click, over HTTP or websocket.
type ClickRequest struct {
	Square string `json:"square"`
}

// ClickResponse reports the outcome of a click.
type ClickResponse struct {
	Moved bool      `json:"moved"`
	State GameState `json:"state"`
}

// EvaluationDTO is one scored bot candidate.
type EvaluationDTO struct {
	Move     string `json:"move"`
	Notation string `json:"notation"`
	Score    int    `json:"score"`
}

// GameState is the JSON form of a session snapshot.
type GameState struct {
	ID          string          `json:"id"`
	GameID      string          `json:"game_id"`
	Version     uint64          `json:"version"` // states with a lower version are stale
	FEN         string          `json:"fen"`
	Board       [8]string       `json:"board"` // ranks 8 to 1, FEN letters, '.' for empty
	SideToMove  string          `json:"side_to_move"`
	MoveNumber  int             `json:"move_number"`
	Status      string          `json:"status"`
	Selected    string          `json:"selected,omitempty"`
	Targets     []string        `json:"targets"`
	LastMove    string          `json:"last_move,omitempty"`
	Check       string          `json:"check,omitempty"`
	History     []string        `json:"history"`
	Result      string          `json:"result,omitempty"`
	Thinking    bool            `json:"thinking"`
	Bot         []string        `json:"bot"`
	Evaluations []EvaluationDTO `json:"evaluations"`
}

// NewGameState converts a snapshot for the session registered under id.
func NewGameState(id string, snap game.Snapshot) GameState {
	st := GameState{
		ID:          id,
		GameID:      snap.ID,
		Version:     snap.Version,
		FEN:         snap.FEN,
		SideToMove:  snap.SideToMove.String(),
		MoveNumber:  snap.MoveNumber,
		Status:      snap.Status.String(),
		Targets:     make([]string, 0, len(snap.Targets)),
		History:     snap.History,
		Result:      snap.Result,
		Thinking:    snap.Thinking,
		Bot:         []string{},
		Evaluations: make([]EvaluationDTO, 0, len(snap.Evaluations)),
	}
	if st.History == nil {
		st.History = []string{}
	}

	for rank := 7; rank >= 0; rank-- {
		row := make([]byte, 8)
		for file := 0; file < 8; file++ {
			p := snap.Board[board.NewSquare(file, rank)]
			if p.IsEmpty() {
				row[file] = '.'
			} else {
				row[file] = p.String()[0]
			}
		}
		st.Board[7-rank] = string(row)
	}

	if snap.Selected != board.NoSquare {
		st.Selected = snap.Selected.String()
	}
	for _, sq := range snap.Targets {
		st.Targets = append(st.Targets, sq.String())
	}
	if snap.LastMove != board.NoMove {
		st.LastMove = snap.LastMove.UCI()
	}
	if snap.CheckSquare != board.NoSquare {
		st.Check = snap.CheckSquare.String()
	}
	for _, c := range []board.Color{board.White, board.Black} {
		if snap.BotColors[c] {
			st.Bot = append(st.Bot, c.String())
		}
	}
	for _, ev := range snap.Evaluations {
		st.Evaluations = append(st.Evaluations, evaluationDTO(ev))
	}
	return st
}

func evaluationDTO(ev engine.Evaluation) EvaluationDTO {
	return EvaluationDTO{Move: ev.Move.UCI(), Notation: ev.Notation, Score: ev.Score}
}

func stateMessage(st GameState) (Message, error) {
	payload, err := json.Marshal(st)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: MessageTypeState, Payload: payload}, nil
}

func errorMessage(text string) Message {
	payload, _ := json.Marshal(map[string]string{"error": text})
	return Message{Type: MessageTypeError, Payload: payload}
}
