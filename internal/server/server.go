// Package server exposes game sessions over HTTP and websockets.
package server

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/hailam/chessbot/internal/engine"
	"github.com/hailam/chessbot/internal/game"
	"github.com/hailam/chessbot/internal/storage"
)

// Config holds the server settings.
type Config struct {
	Depth        int
	Threshold    int
	AllowOrigins string           // CORS origins, "*" when empty
	Store        *storage.Storage // finished games are recorded here when set
}

// Server wires the fiber app to the session registry.
type Server struct {
	app     *fiber.App
	manager *SessionManager
}

// New builds the app and its routes.
func New(cfg Config) *Server {
	if cfg.Depth < 1 {
		cfg.Depth = engine.DefaultDepth
	}
	if cfg.Threshold < 0 {
		cfg.Threshold = engine.DefaultThreshold
	}
	if cfg.AllowOrigins == "" {
		cfg.AllowOrigins = "*"
	}

	var recorder game.Recorder
	if cfg.Store != nil {
		recorder = cfg.Store
	}
	manager := NewSessionManager(cfg.Depth, cfg.Threshold, recorder)

	app := fiber.New(fiber.Config{
		AppName:               "chessbot",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))
	app.Use(requestLogger())

	gameController := NewGameController(manager, cfg.Store)
	wsController := NewWebSocketController(manager)

	app.Get("/ws/game/:gameId", wsController.Upgrade, websocket.New(wsController.HandleConnection, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}))

	api := app.Group("/api")
	api.Get("/games", gameController.ListGames)
	api.Get("/games/:recordId", gameController.GetGame)

	api.Get("/game", gameController.ListSessions)
	api.Post("/game", gameController.CreateGame)

	gameRoutes := api.Group("/game")
	gameRoutes.Get("/:gameId", gameController.GetGameState)
	gameRoutes.Delete("/:gameId", gameController.DeleteGame)
	gameRoutes.Post("/:gameId/click", gameController.Click)
	gameRoutes.Post("/:gameId/new", gameController.NewGame)

	return &Server{app: app, manager: manager}
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Sessions returns the session registry.
func (s *Server) Sessions() *SessionManager {
	return s.manager
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	log.Printf("[HTTP] listening on %s", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting requests and stops every session.
func (s *Server) Shutdown() error {
	err := s.app.Shutdown()
	s.manager.Close()
	return err
}

// requestLogger logs one line per request.
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Printf("[HTTP] %s %s %d %v", c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start))
		return err
	}
}
