package game

import (
	"errors"
	"fmt"

	"uno-server/internal/db"

	"gorm.io/gorm"
)

// PlayerInfo is one room member with their turn-order metadata and
// denormalized hand count, as the transport layer wants to display it.
type PlayerInfo struct {
	ID          uint   `json:"id"`
	UserID      uint   `json:"userId"`
	Username    string `json:"username"`
	IsHost      bool   `json:"isHost"`
	PlayerOrder int    `json:"playerOrder"`
	CardsInHand int    `json:"cardsInHand"`
}

// roomPlayers returns the room's members ordered by turn-order index.
// Members of rooms that have not started yet sort by join order.
func roomPlayers(tx *gorm.DB, roomID uint) ([]PlayerInfo, error) {
	var players []PlayerInfo
	err := tx.Table("game_room_players").
		Select("game_room_players.id, game_room_players.user_id, users.username, game_room_players.is_host, COALESCE(game_room_players.player_order, 0) AS player_order, game_room_players.cards_in_hand").
		Joins("JOIN users ON users.id = game_room_players.user_id").
		Where("game_room_players.game_room_id = ?", roomID).
		Order("player_order ASC, game_room_players.id ASC").
		Scan(&players).Error
	if err != nil {
		return nil, err
	}
	return players, nil
}

// membership resolves one user's membership in a room.
func membership(tx *gorm.DB, roomID, userID uint) (*db.GameRoomPlayer, error) {
	var player db.GameRoomPlayer
	err := tx.Where("game_room_id = ? AND user_id = ?", roomID, userID).First(&player).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: you are not in this room", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &player, nil
}

func playerIndex(players []PlayerInfo, playerID uint) int {
	for i := range players {
		if players[i].ID == playerID {
			return i
		}
	}
	return -1
}
