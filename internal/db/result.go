package db

import "time"

type GameResult struct {
	ID         uint  `gorm:"primaryKey"`
	GameRoomID uint  `gorm:"uniqueIndex;not null"`
	WinnerID   *uint `gorm:""`
	TotalTurns *int  `gorm:""`
	CreatedAt  time.Time `gorm:"not null"`
}

type GameResultPlayer struct {
	ID           uint `gorm:"primaryKey"`
	GameResultID uint `gorm:"index;not null"`
	UserID       uint `gorm:"not null"`
	Rank         int  `gorm:"not null"`
	CardsLeft    int  `gorm:"not null;default:0"`
}
