package server

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketController pushes session state to websocket clients and
// accepts clicks from them.
type WebSocketController struct {
	manager *SessionManager
}

// NewWebSocketController creates a controller over the given registry.
func NewWebSocketController(manager *SessionManager) *WebSocketController {
	return &WebSocketController{manager: manager}
}

// Upgrade rejects plain HTTP requests and unknown sessions before the
// websocket handshake.
func (wsc *WebSocketController) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if _, err := wsc.manager.Get(c.Params("gameId")); err != nil {
		return sessionError(c, err)
	}
	return c.Next()
}

// HandleConnection runs for the lifetime of one websocket connection.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")

	if err := wsc.manager.RegisterConnection(gameID, c); err != nil {
		log.Printf("Failed to register connection: %v", err)
		c.Close()
		return
	}
	defer wsc.manager.UnregisterConnection(gameID, c)

	// The client gets the current state right away.
	if err := wsc.sendState(gameID, c); err != nil {
		log.Printf("Warning: Failed to send initial state: %v", err)
		return
	}

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] read error: %v", err)
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.send(gameID, c, errorMessage("malformed message"))
			continue
		}
		if err := wsc.handleMessage(gameID, msg); err != nil {
			wsc.send(gameID, c, errorMessage(err.Error()))
			continue
		}
		// Rejected clicks change nothing, so nothing is broadcast for them.
		// Accepted ones are pushed by the session subscription.
	}
}

// handleMessage applies one client message to the session.
func (wsc *WebSocketController) handleMessage(gameID string, msg Message) error {
	session, err := wsc.manager.Get(gameID)
	if err != nil {
		return err
	}

	switch msg.Type {
	case MessageTypeClick:
		var req ClickRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return fmt.Errorf("invalid click: %w", err)
		}
		_, err := click(session, req)
		return err
	case MessageTypeNewGame:
		session.NewGame()
		return nil
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (wsc *WebSocketController) sendState(gameID string, c *websocket.Conn) error {
	session, err := wsc.manager.Get(gameID)
	if err != nil {
		return err
	}
	msg, err := stateMessage(NewGameState(gameID, session.Snapshot()))
	if err != nil {
		return err
	}
	return wsc.manager.Send(gameID, c, msg)
}

func (wsc *WebSocketController) send(gameID string, c *websocket.Conn, msg Message) {
	if err := wsc.manager.Send(gameID, c, msg); err != nil {
		log.Printf("Warning: Failed to send %s message: %v", msg.Type, err)
	}
}
