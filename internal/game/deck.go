package game

import (
	"errors"
	"fmt"

	"uno-server/internal/db"

	"gorm.io/gorm"
)

// The card & deck store tracks every physical card instance's location
// and position. All helpers run inside the caller's transaction so a
// relocation and its paired hand-count update commit together.

// topOfDeck returns the deck card with the smallest position index.
func topOfDeck(tx *gorm.DB, roomID uint) (*db.GameRoomDeck, error) {
	var card db.GameRoomDeck
	err := tx.Where("game_room_id = ? AND location = ?", roomID, db.LocationDeck).
		Order("position_index ASC").
		First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDeckEmpty
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// topOfDiscard returns the discard card with the largest position
// index, or nil when nothing has been discarded yet.
func topOfDiscard(tx *gorm.DB, roomID uint) (*db.GameRoomDeck, error) {
	var card db.GameRoomDeck
	err := tx.Where("game_room_id = ? AND location = ?", roomID, db.LocationDiscard).
		Order("position_index DESC").
		First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func discardSize(tx *gorm.DB, roomID uint) (int, error) {
	var count int64
	err := tx.Model(&db.GameRoomDeck{}).
		Where("game_room_id = ? AND location = ?", roomID, db.LocationDiscard).
		Count(&count).Error
	return int(count), err
}

// nextHandPosition is max(existing hand positions)+1, or 0 for an
// empty hand. Hand positions are cosmetic ordering only.
func nextHandPosition(tx *gorm.DB, roomID, playerID uint) (int, error) {
	var next int
	err := tx.Model(&db.GameRoomDeck{}).
		Where("game_room_id = ? AND location = ? AND held_by_player_id = ?", roomID, db.LocationPlayerHand, playerID).
		Select("COALESCE(MAX(position_index) + 1, 0)").
		Scan(&next).Error
	return next, err
}

// moveToHand relocates a card into a player's hand and increments the
// player's hand-count cache in the same transaction.
func moveToHand(tx *gorm.DB, card *db.GameRoomDeck, playerID uint, position int) error {
	err := tx.Model(&db.GameRoomDeck{}).Where("id = ?", card.ID).Updates(map[string]any{
		"location":          db.LocationPlayerHand,
		"held_by_player_id": playerID,
		"position_index":    position,
	}).Error
	if err != nil {
		return err
	}
	return tx.Model(&db.GameRoomPlayer{}).Where("id = ?", playerID).
		UpdateColumn("cards_in_hand", gorm.Expr("cards_in_hand + 1")).Error
}

// moveToDiscard relocates a card from a player's hand to the top of the
// discard pile, clearing the holder and decrementing the hand count.
func moveToDiscard(tx *gorm.DB, card *db.GameRoomDeck, playerID uint, position int) error {
	err := tx.Model(&db.GameRoomDeck{}).Where("id = ?", card.ID).Updates(map[string]any{
		"location":          db.LocationDiscard,
		"held_by_player_id": nil,
		"position_index":    position,
	}).Error
	if err != nil {
		return err
	}
	return tx.Model(&db.GameRoomPlayer{}).Where("id = ?", playerID).
		UpdateColumn("cards_in_hand", gorm.Expr("cards_in_hand - 1")).Error
}

// cardDef resolves a deck card's catalog entry.
func cardDef(tx *gorm.DB, cardID uint) (*db.UnoCard, error) {
	var def db.UnoCard
	err := tx.First(&def, cardID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: card definition %d", ErrNotFound, cardID)
	}
	if err != nil {
		return nil, err
	}
	return &def, nil
}

// forceDraw moves count cards from the top of the deck into the
// target's hand. An exhausted deck aborts the whole transaction.
func forceDraw(tx *gorm.DB, roomID, playerID uint, count int) error {
	for i := 0; i < count; i++ {
		card, err := topOfDeck(tx, roomID)
		if err != nil {
			return err
		}
		position, err := nextHandPosition(tx, roomID, playerID)
		if err != nil {
			return err
		}
		if err := moveToHand(tx, card, playerID, position); err != nil {
			return err
		}
	}
	return nil
}
