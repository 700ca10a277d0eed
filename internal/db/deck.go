package db

const (
	LocationDeck       = "deck"
	LocationDiscard    = "discard"
	LocationPlayerHand = "player_hand"
)

// GameRoomDeck is one physical card instance in one room. Location
// plus position index fully determine where the card sits: ascending
// position is draw order in the deck and recency in the discard pile.
// HeldByPlayerID is set iff the card is in a player's hand.
type GameRoomDeck struct {
	ID             uint   `gorm:"primaryKey"`
	GameRoomID     uint   `gorm:"not null;index:idx_room_decks_room_location"`
	CardID         uint   `gorm:"not null"`
	Location       string `gorm:"size:16;not null;index:idx_room_decks_room_location"`
	HeldByPlayerID *uint  `gorm:"index"`
	PositionIndex  int    `gorm:"not null;default:0"`
}
