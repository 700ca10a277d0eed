package db

import "time"

const (
	ActionPlay    = "play"
	ActionDraw    = "draw"
	ActionSkip    = "skip"
	ActionReverse = "reverse"
	ActionDrawTwo = "draw_two"
	ActionWild    = "wild"
)

// GameTurn is an append-only log entry. The turn sequencer derives
// "whose turn is it" entirely from the latest entry; synthetic skip
// entries are what advance the turn past skipped players.
type GameTurn struct {
	ID           uint  `gorm:"primaryKey"`
	GameRoomID   uint  `gorm:"index;not null"`
	PlayerID     uint  `gorm:"not null"`
	CardPlayedID *uint `gorm:""`
	ActionType   string    `gorm:"size:16;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}
