package db

import "time"

const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
)

type GameRoom struct {
	ID            uint      `gorm:"primaryKey"`
	Title         string    `gorm:"size:128"`
	MaxPlayers    int       `gorm:"not null;default:4"`
	Status        string    `gorm:"size:16;not null;default:'waiting'"`
	CreatedBy     uint      `gorm:"index;not null"`
	TurnDirection int       `gorm:"not null;default:1"`
	CurrentColor  *string   `gorm:"size:8"`
	CreatedAt     time.Time `gorm:"not null"`
	StartedAt     *time.Time
	EndedAt       *time.Time
}
