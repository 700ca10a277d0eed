package server

import (
	"errors"
	"fmt"

	"uno-server/internal/db"
	"uno-server/internal/game"

	"gorm.io/gorm"
)

type cardView struct {
	ID       uint   `json:"id"`
	Color    string `json:"color"`
	Value    string `json:"value"`
	Position int    `json:"position"`
}

// sharedState is the view of a room that every participant may see:
// no hands beyond their counts.
func (s *Server) sharedState(roomID uint) (map[string]any, error) {
	var room db.GameRoom
	if err := s.conn.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: room %d", game.ErrNotFound, roomID)
		}
		return nil, err
	}
	players, err := s.engine.Players(roomID)
	if err != nil {
		return nil, err
	}

	state := map[string]any{
		"roomId":        room.ID,
		"title":         room.Title,
		"status":        room.Status,
		"turnDirection": room.TurnDirection,
		"players":       players,
	}
	if room.CurrentColor != nil {
		state["activeColor"] = *room.CurrentColor
	}

	if room.Status == db.StatusInProgress || room.Status == db.StatusFinished {
		var top cardView
		err := s.conn.Table("game_room_decks").
			Select("game_room_decks.id, uno_cards.color, uno_cards.value, game_room_decks.position_index AS position").
			Joins("JOIN uno_cards ON uno_cards.id = game_room_decks.card_id").
			Where("game_room_decks.game_room_id = ? AND game_room_decks.location = ?", roomID, db.LocationDiscard).
			Order("game_room_decks.position_index DESC").
			Limit(1).
			Scan(&top).Error
		if err != nil {
			return nil, err
		}
		if top.ID != 0 {
			state["topDiscard"] = top
		}

		var deckCount int64
		if err := s.conn.Model(&db.GameRoomDeck{}).
			Where("game_room_id = ? AND location = ?", roomID, db.LocationDeck).
			Count(&deckCount).Error; err != nil {
			return nil, err
		}
		state["deckCount"] = deckCount

		current, err := s.engine.CurrentPlayer(roomID)
		if err != nil {
			return nil, err
		}
		if current != nil {
			state["currentPlayer"] = current
		}
	}

	if room.Status == db.StatusFinished {
		result, err := s.engine.Result(roomID)
		if err != nil {
			return nil, err
		}
		if result != nil {
			state["result"] = result
		}
	}
	return state, nil
}

// gameState is the shared state plus the viewer's private hand.
func (s *Server) gameState(roomID, userID uint) (map[string]any, error) {
	state, err := s.sharedState(roomID)
	if err != nil {
		return nil, err
	}
	var me db.GameRoomPlayer
	err = s.conn.Where("game_room_id = ? AND user_id = ?", roomID, userID).First(&me).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: you are not in this room", game.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var hand []cardView
	err = s.conn.Table("game_room_decks").
		Select("game_room_decks.id, uno_cards.color, uno_cards.value, game_room_decks.position_index AS position").
		Joins("JOIN uno_cards ON uno_cards.id = game_room_decks.card_id").
		Where("game_room_decks.game_room_id = ? AND game_room_decks.location = ? AND game_room_decks.held_by_player_id = ?",
			roomID, db.LocationPlayerHand, me.ID).
		Order("game_room_decks.position_index ASC").
		Scan(&hand).Error
	if err != nil {
		return nil, err
	}
	state["hand"] = hand
	state["playerId"] = me.ID
	return state, nil
}
