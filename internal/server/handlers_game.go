package server

import (
	"errors"
	"net/http"

	"uno-server/internal/db"

	"gorm.io/gorm"
)

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
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
	if !me.IsHost {
		writeError(w, http.StatusForbidden, "only the host can start the game")
		return
	}

	if err := s.engine.Start(roomID); err != nil {
		writeEngineError(w, err)
		return
	}
	s.persistEvent(roomID, &me.ID, "game_started", eventPayload{UserID: userID})
	s.broadcastState(roomID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

func (s *Server) handleDrawCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	roomID, ok := roomIDFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	drawn, err := s.engine.Draw(roomID, userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	s.persistEvent(roomID, nil, "card_drawn", eventPayload{UserID: userID})
	s.broadcastState(roomID)
	writeJSON(w, http.StatusOK, drawn)
}

type playCardRequest struct {
	DeckCardID  uint   `json:"deckCardId"`
	ChosenColor string `json:"chosenColor"`
}

func (s *Server) handlePlayCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	roomID, ok := roomIDFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	var req playCardRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DeckCardID == 0 {
		writeError(w, http.StatusBadRequest, "deckCardId is required")
		return
	}

	played, err := s.engine.Play(roomID, userID, req.DeckCardID, req.ChosenColor)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	s.persistEvent(roomID, nil, "card_played", eventPayload{
		UserID: userID,
		Card:   played.Color + " " + played.Value,
		Color:  played.ActiveColor,
	})
	if played.WinnerID != nil {
		s.persistEvent(roomID, nil, "game_over", eventPayload{UserID: *played.WinnerID})
		s.broadcastGameOver(roomID, played)
	} else {
		s.broadcastState(roomID)
	}
	writeJSON(w, http.StatusOK, played)
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	roomID, ok := roomIDFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	state, err := s.gameState(roomID, userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleGameHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	roomID, ok := roomIDFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	history, err := s.engine.History(roomID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"turns": history})
}
