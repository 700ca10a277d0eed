package db

import "time"

type ChatMessage struct {
	ID         uint      `gorm:"primaryKey"`
	GameRoomID uint      `gorm:"index;not null"`
	UserID     uint      `gorm:"not null"`
	Message    string    `gorm:"size:512;not null"`
	CreatedAt  time.Time `gorm:"not null"`
}
