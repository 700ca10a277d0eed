package db

import (
	"time"

	"gorm.io/datatypes"
)

// GameEvent is an audit journal written by the transport layer after
// engine calls succeed; it powers history views and never feeds back
// into turn sequencing.
type GameEvent struct {
	ID         uint           `gorm:"primaryKey"`
	GameRoomID uint           `gorm:"index;not null"`
	PlayerID   *uint          `gorm:"index"`
	Type       string         `gorm:"size:64;not null"`
	Payload    datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time      `gorm:"not null"`
}
