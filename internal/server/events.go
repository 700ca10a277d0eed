package server

import (
	"encoding/json"
	"log"
	"time"

	"uno-server/internal/db"

	"gorm.io/datatypes"
)

type eventPayload struct {
	UserID uint   `json:"user_id,omitempty"`
	Card   string `json:"card,omitempty"`
	Color  string `json:"color,omitempty"`
	Text   string `json:"text,omitempty"`
}

// persistEvent journals one transport-level event. Journal failures
// are logged and dropped; they never fail the request that caused them.
func (s *Server) persistEvent(roomID uint, playerID *uint, eventType string, payload eventPayload) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	event := db.GameEvent{
		GameRoomID: roomID,
		PlayerID:   playerID,
		Type:       eventType,
		Payload:    datatypes.JSON(data),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.conn.Create(&event).Error; err != nil {
		log.Printf("persist event %s for room %d: %v", eventType, roomID, err)
	}
}
