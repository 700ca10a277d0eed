package game

import (
	"errors"
	"fmt"
	"time"

	"uno-server/internal/db"

	"gorm.io/gorm"
)

// Turn order is derived purely from the turn log: the current player
// is the one after the latest entry's actor, stepping by the room's
// direction through the turn-order permutation. Skips have no counter;
// a synthetic skip entry for the skipped player is what moves the turn
// past them.

// currentTurnPlayer computes whose turn it is. With an empty log the
// player at turn-order index 0 opens the game.
func currentTurnPlayer(tx *gorm.DB, room *db.GameRoom, players []PlayerInfo) (*PlayerInfo, error) {
	if len(players) == 0 {
		return nil, nil
	}
	var last db.GameTurn
	err := tx.Where("game_room_id = ?", room.ID).Order("id DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &players[0], nil
	}
	if err != nil {
		return nil, err
	}
	index := playerIndex(players, last.PlayerID)
	if index < 0 {
		return nil, fmt.Errorf("%w: last turn actor is no longer in the room", ErrNotFound)
	}
	// Drawing does not end the turn: the drawer stays current until
	// they play. Everything else hands the turn to the next player.
	if last.ActionType == db.ActionDraw {
		return &players[index], nil
	}
	next := stepIndex(index, room.TurnDirection, len(players))
	return &players[next], nil
}

// nextAfter returns the player one step past the given player in the
// current direction; used to resolve special-effect targets.
func nextAfter(room *db.GameRoom, players []PlayerInfo, playerID uint) (*PlayerInfo, error) {
	index := playerIndex(players, playerID)
	if index < 0 {
		return nil, fmt.Errorf("%w: player %d", ErrNotFound, playerID)
	}
	next := stepIndex(index, room.TurnDirection, len(players))
	return &players[next], nil
}

func stepIndex(index, direction, count int) int {
	if direction == 0 {
		direction = 1
	}
	return ((index+direction)%count + count) % count
}

// appendTurn writes one turn-log entry. Every accepted draw or play
// appends exactly one entry for the actor; effects append additional
// synthetic entries for their targets.
func appendTurn(tx *gorm.DB, roomID, playerID uint, cardID *uint, action string) error {
	entry := db.GameTurn{
		GameRoomID:   roomID,
		PlayerID:     playerID,
		CardPlayedID: cardID,
		ActionType:   action,
		CreatedAt:    time.Now().UTC(),
	}
	return tx.Create(&entry).Error
}

// TurnEntry is one row of the game history as shown to players.
type TurnEntry struct {
	ID         uint   `json:"id"`
	PlayerID   uint   `json:"playerId"`
	Username   string `json:"username"`
	ActionType string `json:"actionType"`
	CardID     *uint  `json:"cardId,omitempty"`
}

// History returns a room's turn log in the order it was written.
func (e *Engine) History(roomID uint) ([]TurnEntry, error) {
	var entries []TurnEntry
	err := e.conn.Table("game_turns").
		Select("game_turns.id, game_turns.player_id, users.username, game_turns.action_type, game_turns.card_played_id AS card_id").
		Joins("JOIN game_room_players ON game_room_players.id = game_turns.player_id").
		Joins("JOIN users ON users.id = game_room_players.user_id").
		Where("game_turns.game_room_id = ?", roomID).
		Order("game_turns.id ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
