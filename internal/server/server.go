package server

import (
	"net/http"

	"uno-server/internal/config"
	"uno-server/internal/game"

	"gorm.io/gorm"
)

type Server struct {
	conn     *gorm.DB
	cfg      config.Config
	engine   *game.Engine
	sessions *sessionStore
	ws       *wsHub
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	return &Server{
		conn:     conn,
		cfg:      cfg,
		engine:   game.New(conn, cfg),
		sessions: newSessionStore(conn, cfg),
		ws:       newWSHub(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("GET /api/rooms", s.handleListRooms)
	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("POST /api/rooms/{id}/join", s.handleJoinRoom)
	mux.HandleFunc("POST /api/rooms/{id}/leave", s.handleLeaveRoom)
	mux.HandleFunc("POST /api/rooms/{id}/start", s.handleStartGame)
	mux.HandleFunc("POST /api/rooms/{id}/draw", s.handleDrawCard)
	mux.HandleFunc("POST /api/rooms/{id}/play", s.handlePlayCard)
	mux.HandleFunc("GET /api/rooms/{id}/state", s.handleGameState)
	mux.HandleFunc("GET /api/rooms/{id}/history", s.handleGameHistory)
	mux.HandleFunc("GET /ws/rooms/{id}", s.handleWebsocket)
	return mux
}
