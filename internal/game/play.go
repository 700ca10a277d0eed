package game

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"uno-server/internal/db"

	"gorm.io/gorm"
)

// RankingEntry is one player's final standing.
type RankingEntry struct {
	UserID    uint   `json:"userId"`
	Username  string `json:"username"`
	Rank      int    `json:"rank"`
	CardsLeft int    `json:"cardsLeft"`
}

// PlayResult reports a resolved play. WinnerID and Rankings are set
// only when the play emptied the caller's hand and ended the game.
type PlayResult struct {
	WinnerID    *uint          `json:"winnerId,omitempty"`
	Rankings    []RankingEntry `json:"rankings,omitempty"`
	ActiveColor string         `json:"activeColor"`
	CardID      uint           `json:"cardId"`
	Color       string         `json:"color"`
	Value       string         `json:"value"`
}

func normalizeColor(raw string) (string, bool) {
	color := strings.ToLower(strings.TrimSpace(raw))
	switch color {
	case db.ColorRed, db.ColorGreen, db.ColorYellow, db.ColorBlue:
		return color, true
	}
	return "", false
}

// Play validates and applies one card play for the current player:
// legality check against the room's active color and top discard,
// relocation to the discard top, win detection, then special-card
// effect resolution. The whole sequence is one transaction.
func (e *Engine) Play(roomID, userID, deckCardID uint, chosenColor string) (*PlayResult, error) {
	var result PlayResult
	err := e.conn.Transaction(func(tx *gorm.DB) error {
		room, err := lockRoom(tx, roomID)
		if err != nil {
			return err
		}
		if room.Status != db.StatusInProgress {
			return fmt.Errorf("%w: game is not in progress", ErrPrecondition)
		}
		me, err := membership(tx, roomID, userID)
		if err != nil {
			return err
		}
		players, err := roomPlayers(tx, roomID)
		if err != nil {
			return err
		}
		current, err := currentTurnPlayer(tx, room, players)
		if err != nil {
			return err
		}
		if current == nil || current.ID != me.ID {
			return ErrOutOfTurn
		}

		var card db.GameRoomDeck
		if err := tx.Where("id = ? AND game_room_id = ?", deckCardID, roomID).First(&card).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: card not found", ErrNotFound)
			}
			return err
		}
		if card.Location != db.LocationPlayerHand || card.HeldByPlayerID == nil || *card.HeldByPlayerID != me.ID {
			return fmt.Errorf("%w: not your card", ErrIllegalMove)
		}
		def, err := cardDef(tx, card.CardID)
		if err != nil {
			return err
		}

		// Wilds require a chosen color; everything else must match the
		// room's active color or the top discard's value. The active
		// color, not the top card's printed color, is the authority: a
		// wild on top carries whatever color its player chose.
		var effective string
		if db.IsWildValue(def.Value) {
			color, ok := normalizeColor(chosenColor)
			if !ok {
				return fmt.Errorf("%w: must choose a color", ErrIllegalMove)
			}
			effective = color
		} else {
			effective = def.Color
			top, err := topOfDiscard(tx, roomID)
			if err != nil {
				return err
			}
			if top != nil {
				topDef, err := cardDef(tx, top.CardID)
				if err != nil {
					return err
				}
				matchesColor := room.CurrentColor != nil && def.Color == *room.CurrentColor
				if !matchesColor && def.Value != topDef.Value {
					return fmt.Errorf("%w: card does not match color or value", ErrIllegalMove)
				}
			}
		}

		size, err := discardSize(tx, roomID)
		if err != nil {
			return err
		}
		if err := moveToDiscard(tx, &card, me.ID, size); err != nil {
			return err
		}
		if err := tx.Model(&db.GameRoom{}).Where("id = ?", roomID).
			UpdateColumn("current_color", effective).Error; err != nil {
			return err
		}

		result = PlayResult{
			ActiveColor: effective,
			CardID:      card.ID,
			Color:       def.Color,
			Value:       def.Value,
		}

		if me.CardsInHand-1 == 0 {
			defID := def.ID
			if err := appendTurn(tx, roomID, me.ID, &defID, db.ActionPlay); err != nil {
				return err
			}
			return e.finishGame(tx, room, me, &result)
		}
		return e.applyEffect(tx, room, me, players, def, &result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// applyEffect resolves the played card's special effect by appending
// the actor's log entry plus any synthetic entries that encode forced
// skips. Numerals append a single play entry.
func (e *Engine) applyEffect(tx *gorm.DB, room *db.GameRoom, me *db.GameRoomPlayer, players []PlayerInfo, def *db.UnoCard, result *PlayResult) error {
	defID := def.ID
	switch def.Value {
	case db.ValueDrawTwo:
		target, err := nextAfter(room, players, me.ID)
		if err != nil {
			return err
		}
		if err := forceDraw(tx, room.ID, target.ID, 2); err != nil {
			return err
		}
		if err := appendTurn(tx, room.ID, me.ID, &defID, db.ActionDrawTwo); err != nil {
			return err
		}
		return appendTurn(tx, room.ID, target.ID, nil, db.ActionSkip)

	case db.ValueWildDrawFour:
		target, err := nextAfter(room, players, me.ID)
		if err != nil {
			return err
		}
		if err := forceDraw(tx, room.ID, target.ID, 4); err != nil {
			return err
		}
		if err := appendTurn(tx, room.ID, me.ID, &defID, db.ActionWild); err != nil {
			return err
		}
		return appendTurn(tx, room.ID, target.ID, nil, db.ActionSkip)

	case db.ValueReverse:
		direction := -room.TurnDirection
		if direction == 0 {
			direction = -1
		}
		if err := tx.Model(&db.GameRoom{}).Where("id = ?", room.ID).
			UpdateColumn("turn_direction", direction).Error; err != nil {
			return err
		}
		if err := appendTurn(tx, room.ID, me.ID, &defID, db.ActionReverse); err != nil {
			return err
		}
		// With two players a reverse behaves as a skip: the opponent's
		// synthetic entry hands the turn straight back.
		if len(players) == 2 {
			other, err := nextAfter(room, players, me.ID)
			if err != nil {
				return err
			}
			return appendTurn(tx, room.ID, other.ID, nil, db.ActionSkip)
		}
		return nil

	case db.ValueSkip:
		target, err := nextAfter(room, players, me.ID)
		if err != nil {
			return err
		}
		if err := appendTurn(tx, room.ID, me.ID, &defID, db.ActionPlay); err != nil {
			return err
		}
		return appendTurn(tx, room.ID, target.ID, nil, db.ActionSkip)

	case db.ValueWild:
		return appendTurn(tx, room.ID, me.ID, &defID, db.ActionWild)

	default:
		return appendTurn(tx, room.ID, me.ID, &defID, db.ActionPlay)
	}
}

// finishGame records the game result exactly once: the winner plus a
// ranking of every member by ascending cards remaining, ties broken by
// turn order.
func (e *Engine) finishGame(tx *gorm.DB, room *db.GameRoom, winner *db.GameRoomPlayer, result *PlayResult) error {
	standings, err := roomPlayers(tx, room.ID)
	if err != nil {
		return err
	}
	// roomPlayers orders by turn-order index, so an insertion sort on
	// hand count keeps that as the stable tiebreak.
	for i := 1; i < len(standings); i++ {
		for j := i; j > 0 && standings[j].CardsInHand < standings[j-1].CardsInHand; j-- {
			standings[j], standings[j-1] = standings[j-1], standings[j]
		}
	}

	var totalTurns int64
	if err := tx.Model(&db.GameTurn{}).Where("game_room_id = ?", room.ID).Count(&totalTurns).Error; err != nil {
		return err
	}

	turns := int(totalTurns)
	record := db.GameResult{
		GameRoomID: room.ID,
		WinnerID:   &winner.UserID,
		TotalTurns: &turns,
		CreatedAt:  time.Now().UTC(),
	}
	if err := tx.Create(&record).Error; err != nil {
		return err
	}

	rankings := make([]RankingEntry, 0, len(standings))
	for i, player := range standings {
		entry := db.GameResultPlayer{
			GameResultID: record.ID,
			UserID:       player.UserID,
			Rank:         i + 1,
			CardsLeft:    player.CardsInHand,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		rankings = append(rankings, RankingEntry{
			UserID:    player.UserID,
			Username:  player.Username,
			Rank:      i + 1,
			CardsLeft: player.CardsInHand,
		})
	}

	now := time.Now().UTC()
	if err := tx.Model(&db.GameRoom{}).Where("id = ?", room.ID).Updates(map[string]any{
		"status":   db.StatusFinished,
		"ended_at": now,
	}).Error; err != nil {
		return err
	}

	result.WinnerID = &winner.UserID
	result.Rankings = rankings
	return nil
}

// Result returns the persisted outcome of a finished room, or nil if
// the room has no result yet.
func (e *Engine) Result(roomID uint) (*PlayResult, error) {
	var record db.GameResult
	err := e.conn.Where("game_room_id = ?", roomID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rankings []RankingEntry
	err = e.conn.Table("game_result_players").
		Select("game_result_players.user_id, users.username, game_result_players.rank, game_result_players.cards_left").
		Joins("JOIN users ON users.id = game_result_players.user_id").
		Where("game_result_players.game_result_id = ?", record.ID).
		Order("game_result_players.rank ASC").
		Scan(&rankings).Error
	if err != nil {
		return nil, err
	}
	return &PlayResult{WinnerID: record.WinnerID, Rankings: rankings}, nil
}
