package game

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"uno-server/internal/config"
	"uno-server/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Engine is the authoritative Uno game-state machine. It holds no game
// state in memory: every operation runs as one transaction against the
// store, re-reading whatever it needs, with a row lock on the room so
// concurrent calls for the same room are strictly ordered.
type Engine struct {
	conn     *gorm.DB
	handSize int

	rngMu sync.Mutex
	rng   *rand.Rand
}

func New(conn *gorm.DB, cfg config.Config) *Engine {
	return NewSeeded(conn, cfg, time.Now().UnixNano())
}

// NewSeeded fixes the shuffle/permutation seed; tests use it to build
// deterministic games.
func NewSeeded(conn *gorm.DB, cfg config.Config, seed int64) *Engine {
	handSize := cfg.StartingHandSize
	if handSize <= 0 {
		handSize = 7
	}
	return &Engine{
		conn:     conn,
		handSize: handSize,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// lockRoom loads the room record, taking a FOR UPDATE row lock on
// Postgres so a second call for the same room blocks until this
// transaction commits. SQLite has no row locks and serializes writers
// itself, so the clause is skipped there.
func lockRoom(tx *gorm.DB, roomID uint) (*db.GameRoom, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var room db.GameRoom
	if err := q.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: room %d", ErrNotFound, roomID)
		}
		return nil, err
	}
	return &room, nil
}

// Start deals a new game: assigns a random turn-order permutation,
// builds the room's shuffled 108-card deck, picks a numeral opening
// card, deals each player their starting hand and marks the room
// in progress.
func (e *Engine) Start(roomID uint) error {
	return e.conn.Transaction(func(tx *gorm.DB) error {
		room, err := lockRoom(tx, roomID)
		if err != nil {
			return err
		}
		if room.Status != db.StatusWaiting {
			return fmt.Errorf("%w: game already started", ErrPrecondition)
		}

		var players []db.GameRoomPlayer
		if err := tx.Where("game_room_id = ?", roomID).
			Order("joined_at ASC, id ASC").
			Find(&players).Error; err != nil {
			return err
		}
		if len(players) == 0 {
			return fmt.Errorf("%w: no players in room", ErrPrecondition)
		}

		e.rngMu.Lock()
		order := e.rng.Perm(len(players))
		e.rngMu.Unlock()
		for i := range players {
			position := order[i]
			if err := tx.Model(&db.GameRoomPlayer{}).Where("id = ?", players[i].ID).
				Updates(map[string]any{"player_order": position, "cards_in_hand": 0}).Error; err != nil {
				return err
			}
			players[i].PlayerOrder = &position
		}

		var catalog []db.UnoCard
		if err := tx.Order("id ASC").Find(&catalog).Error; err != nil {
			return err
		}
		if len(catalog) == 0 {
			return fmt.Errorf("%w: card catalog is empty", ErrNotFound)
		}
		sequence := make([]db.UnoCard, len(catalog))
		copy(sequence, catalog)
		e.rngMu.Lock()
		e.rng.Shuffle(len(sequence), func(i, j int) {
			sequence[i], sequence[j] = sequence[j], sequence[i]
		})
		e.rngMu.Unlock()

		// The opening discard must be a numeral; specials found at the
		// front rotate to the back, bounded so a pathological sequence
		// cannot spin forever.
		for i := 0; i < len(sequence)+5; i++ {
			if db.IsNumeralValue(sequence[0].Value) {
				break
			}
			sequence = append(sequence[1:], sequence[0])
		}
		initial := sequence[0]
		sequence = sequence[1:]

		// Deal in turn order from the front of the sequence.
		byOrder := make([]db.GameRoomPlayer, len(players))
		for _, player := range players {
			byOrder[*player.PlayerOrder] = player
		}
		for _, player := range byOrder {
			if len(sequence) < e.handSize {
				return fmt.Errorf("deck ran out while dealing room %d", roomID)
			}
			for position := 0; position < e.handSize; position++ {
				playerID := player.ID
				instance := db.GameRoomDeck{
					GameRoomID:     roomID,
					CardID:         sequence[position].ID,
					Location:       db.LocationPlayerHand,
					HeldByPlayerID: &playerID,
					PositionIndex:  position,
				}
				if err := tx.Create(&instance).Error; err != nil {
					return err
				}
			}
			sequence = sequence[e.handSize:]
			if err := tx.Model(&db.GameRoomPlayer{}).Where("id = ?", player.ID).
				UpdateColumn("cards_in_hand", e.handSize).Error; err != nil {
				return err
			}
		}

		// Remaining cards form the draw deck; position 0 is drawn first.
		for position, card := range sequence {
			instance := db.GameRoomDeck{
				GameRoomID:    roomID,
				CardID:        card.ID,
				Location:      db.LocationDeck,
				PositionIndex: position,
			}
			if err := tx.Create(&instance).Error; err != nil {
				return err
			}
		}

		opening := db.GameRoomDeck{
			GameRoomID:    roomID,
			CardID:        initial.ID,
			Location:      db.LocationDiscard,
			PositionIndex: 0,
		}
		if err := tx.Create(&opening).Error; err != nil {
			return err
		}

		color := initial.Color
		if color == db.ColorWild {
			color = db.ColorRed
			for _, card := range sequence {
				if db.IsNumeralValue(card.Value) {
					color = card.Color
					break
				}
			}
		}

		now := time.Now().UTC()
		return tx.Model(&db.GameRoom{}).Where("id = ?", roomID).Updates(map[string]any{
			"status":         db.StatusInProgress,
			"turn_direction": 1,
			"started_at":     now,
			"current_color":  color,
		}).Error
	})
}

// DrawResult reports the card a player drew.
type DrawResult struct {
	CardID   uint   `json:"cardId"`
	DefID    uint   `json:"defId"`
	Color    string `json:"color"`
	Value    string `json:"value"`
	Position int    `json:"position"`
}

// Draw moves the top of the deck into the current player's hand and
// logs a draw turn. Drawing does not end the turn; the drawer stays
// current until they play.
func (e *Engine) Draw(roomID, userID uint) (*DrawResult, error) {
	var result DrawResult
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

		card, err := topOfDeck(tx, roomID)
		if err != nil {
			return err
		}
		position, err := nextHandPosition(tx, roomID, me.ID)
		if err != nil {
			return err
		}
		if err := moveToHand(tx, card, me.ID, position); err != nil {
			return err
		}
		if err := appendTurn(tx, roomID, me.ID, nil, db.ActionDraw); err != nil {
			return err
		}

		def, err := cardDef(tx, card.CardID)
		if err != nil {
			return err
		}
		result = DrawResult{
			CardID:   card.ID,
			DefID:    def.ID,
			Color:    def.Color,
			Value:    def.Value,
			Position: position,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CurrentPlayer reports whose turn it is, or nil for rooms that have
// no members or have not started.
func (e *Engine) CurrentPlayer(roomID uint) (*PlayerInfo, error) {
	var room db.GameRoom
	if err := e.conn.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: room %d", ErrNotFound, roomID)
		}
		return nil, err
	}
	if room.Status != db.StatusInProgress {
		return nil, nil
	}
	players, err := roomPlayers(e.conn, roomID)
	if err != nil {
		return nil, err
	}
	return currentTurnPlayer(e.conn, &room, players)
}

// Players returns the room's members in turn order.
func (e *Engine) Players(roomID uint) ([]PlayerInfo, error) {
	return roomPlayers(e.conn, roomID)
}
