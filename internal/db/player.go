package db

import "time"

type GameRoomPlayer struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_room_players_room_user"`
	GameRoomID  uint      `gorm:"index;not null;uniqueIndex:idx_room_players_room_user"`
	IsHost      bool      `gorm:"not null;default:false"`
	PlayerOrder *int      `gorm:"index"`
	CardsInHand int       `gorm:"not null;default:0"`
	JoinedAt    time.Time `gorm:"not null"`
}
