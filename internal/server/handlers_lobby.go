package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"uno-server/internal/db"

	"gorm.io/gorm"
)

func roomIDFromPath(r *http.Request) (uint, bool) {
	raw := r.PathValue("id")
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}

type createRoomRequest struct {
	Title      string `json:"title"`
	MaxPlayers int    `json:"maxPlayers"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req createRoomRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	maxPlayers := req.MaxPlayers
	if maxPlayers <= 1 {
		maxPlayers = s.cfg.DefaultMaxPlayers
	}
	now := time.Now().UTC()
	room := db.GameRoom{
		Title:         strings.TrimSpace(req.Title),
		MaxPlayers:    maxPlayers,
		Status:        db.StatusWaiting,
		CreatedBy:     userID,
		TurnDirection: 1,
		CreatedAt:     now,
	}
	err := s.conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		host := db.GameRoomPlayer{
			UserID:     userID,
			GameRoomID: room.ID,
			IsHost:     true,
			JoinedAt:   now,
		}
		return tx.Create(&host).Error
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":         room.ID,
		"title":      room.Title,
		"maxPlayers": room.MaxPlayers,
		"status":     room.Status,
	})
}

type roomSummary struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	MaxPlayers  int    `json:"maxPlayers"`
	PlayerCount int    `json:"playerCount"`
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	var rooms []roomSummary
	err := s.conn.Table("game_rooms").
		Select("game_rooms.id, game_rooms.title, game_rooms.status, game_rooms.max_players, COUNT(game_room_players.id) AS player_count").
		Joins("LEFT JOIN game_room_players ON game_room_players.game_room_id = game_rooms.id").
		Where("game_rooms.status <> ?", db.StatusFinished).
		Group("game_rooms.id, game_rooms.title, game_rooms.status, game_rooms.max_players").
		Order("game_rooms.id DESC").
		Scan(&rooms).Error
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	roomID, ok := roomIDFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	var room db.GameRoom
	if err := s.conn.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Rejoining a room you are already in is a no-op.
	var existing db.GameRoomPlayer
	err := s.conn.Where("game_room_id = ? AND user_id = ?", roomID, userID).First(&existing).Error
	if err == nil {
		writeJSON(w, http.StatusOK, map[string]any{"id": existing.ID, "roomId": roomID})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if room.Status != db.StatusWaiting {
		writeError(w, http.StatusConflict, "game already started")
		return
	}
	var count int64
	if err := s.conn.Model(&db.GameRoomPlayer{}).Where("game_room_id = ?", roomID).Count(&count).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if room.MaxPlayers > 0 && int(count) >= room.MaxPlayers {
		writeError(w, http.StatusConflict, "room is full")
		return
	}

	member := db.GameRoomPlayer{
		UserID:     userID,
		GameRoomID: roomID,
		JoinedAt:   time.Now().UTC(),
	}
	if err := s.conn.Create(&member).Error; err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusOK, map[string]any{"roomId": roomID})
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.persistEvent(roomID, &member.ID, "player_joined", eventPayload{UserID: userID})
	s.broadcastState(roomID)
	writeJSON(w, http.StatusCreated, map[string]any{"id": member.ID, "roomId": roomID})
}

func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	roomID, ok := roomIDFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	var room db.GameRoom
	if err := s.conn.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if room.Status != db.StatusWaiting {
		writeError(w, http.StatusConflict, "cannot leave a game in progress")
		return
	}
	result := s.conn.Where("game_room_id = ? AND user_id = ?", roomID, userID).Delete(&db.GameRoomPlayer{})
	if result.Error != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if result.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "you are not in this room")
		return
	}
	s.persistEvent(roomID, nil, "player_left", eventPayload{UserID: userID})
	s.broadcastState(roomID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
