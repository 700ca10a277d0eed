package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"uno-server/internal/db"

	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsHub struct {
	mu    sync.Mutex
	rooms map[uint]map[*websocket.Conn]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{
		rooms: make(map[uint]map[*websocket.Conn]struct{}),
	}
}

func (h *wsHub) Add(roomID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.rooms[roomID]
	if group == nil {
		group = make(map[*websocket.Conn]struct{})
		h.rooms[roomID] = group
	}
	group[conn] = struct{}{}
}

func (h *wsHub) Remove(roomID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if group := h.rooms[roomID]; group != nil {
		delete(group, conn)
		if len(group) == 0 {
			delete(h.rooms, roomID)
		}
	}
	_ = conn.Close()
}

// Broadcast sends the payload to every connection in the room. Dead
// connections are dropped on write failure.
func (h *wsHub) Broadcast(roomID uint, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.rooms[roomID] {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(h.rooms[roomID], conn)
			_ = conn.Close()
		}
	}
}

func (s *Server) broadcastState(roomID uint) {
	state, err := s.sharedState(roomID)
	if err != nil {
		log.Printf("broadcast state for room %d: %v", roomID, err)
		return
	}
	s.ws.Broadcast(roomID, map[string]any{
		"type":  "state",
		"state": state,
	})
}

func (s *Server) broadcastGameOver(roomID uint, result any) {
	s.ws.Broadcast(roomID, map[string]any{
		"type":   "game_over",
		"result": result,
	})
}

type wsInbound struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// handleWebsocket attaches an authenticated room member to the room's
// broadcast channel and accepts chat messages from them. Game actions
// go over the HTTP API; the socket only pushes state.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.sessions.UserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	roomID, ok := roomIDFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	var me db.GameRoomPlayer
	err := s.conn.Where("game_room_id = ? AND user_id = ?", roomID, userID).First(&me).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusForbidden, "you are not in this room")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	var user db.User
	if err := s.conn.First(&user, userID).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.ws.Add(roomID, conn)
	defer s.ws.Remove(roomID, conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg wsInbound
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type != "chat" {
			continue
		}
		text := strings.TrimSpace(msg.Message)
		if text == "" || len(text) > 512 {
			continue
		}
		record := db.ChatMessage{
			GameRoomID: roomID,
			UserID:     userID,
			Message:    text,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.conn.Create(&record).Error; err != nil {
			log.Printf("store chat message for room %d: %v", roomID, err)
			continue
		}
		s.ws.Broadcast(roomID, map[string]any{
			"type":     "chat",
			"userId":   userID,
			"username": user.Username,
			"message":  text,
		})
	}
}
