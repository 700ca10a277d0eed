package game

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"uno-server/internal/config"
	"uno-server/internal/db"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConn(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "uno_test.db")
	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	if err := db.SeedCards(conn); err != nil {
		t.Fatalf("seed card catalog: %v", err)
	}
	return conn
}

func testEngine(t *testing.T, conn *gorm.DB) *Engine {
	t.Helper()
	return NewSeeded(conn, config.Default(), 1)
}

// makeRoom creates a waiting room with the given number of joined
// users and returns the room plus its memberships in join order.
func makeRoom(t *testing.T, conn *gorm.DB, playerCount int) (*db.GameRoom, []db.GameRoomPlayer) {
	t.Helper()
	now := time.Now().UTC()
	users := make([]db.User, playerCount)
	for i := range users {
		users[i] = db.User{
			Username:     fmt.Sprintf("player%d", i+1),
			PasswordHash: "x",
			CreatedAt:    now,
		}
		if err := conn.Create(&users[i]).Error; err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	room := db.GameRoom{
		Title:         "test room",
		MaxPlayers:    4,
		Status:        db.StatusWaiting,
		CreatedBy:     users[0].ID,
		TurnDirection: 1,
		CreatedAt:     now,
	}
	if err := conn.Create(&room).Error; err != nil {
		t.Fatalf("create room: %v", err)
	}
	members := make([]db.GameRoomPlayer, playerCount)
	for i := range members {
		members[i] = db.GameRoomPlayer{
			UserID:     users[i].ID,
			GameRoomID: room.ID,
			IsHost:     i == 0,
			JoinedAt:   now.Add(time.Duration(i) * time.Second),
		}
		if err := conn.Create(&members[i]).Error; err != nil {
			t.Fatalf("create membership: %v", err)
		}
	}
	return &room, members
}

// makeGame creates a room already in progress with players assigned
// turn-order indices matching their join order. Hands, deck and
// discard start empty; tests place cards explicitly.
func makeGame(t *testing.T, conn *gorm.DB, playerCount int, activeColor string) (*db.GameRoom, []db.GameRoomPlayer) {
	t.Helper()
	room, members := makeRoom(t, conn, playerCount)
	now := time.Now().UTC()
	updates := map[string]any{
		"status":         db.StatusInProgress,
		"turn_direction": 1,
		"started_at":     now,
		"current_color":  activeColor,
	}
	if err := conn.Model(&db.GameRoom{}).Where("id = ?", room.ID).Updates(updates).Error; err != nil {
		t.Fatalf("mark room in progress: %v", err)
	}
	for i := range members {
		if err := conn.Model(&db.GameRoomPlayer{}).Where("id = ?", members[i].ID).
			Update("player_order", i).Error; err != nil {
			t.Fatalf("assign player order: %v", err)
		}
		order := i
		members[i].PlayerOrder = &order
	}
	if err := conn.First(room, room.ID).Error; err != nil {
		t.Fatalf("reload room: %v", err)
	}
	return room, members
}

func findDef(t *testing.T, conn *gorm.DB, color, value string) db.UnoCard {
	t.Helper()
	var def db.UnoCard
	if err := conn.Where("color = ? AND value = ?", color, value).First(&def).Error; err != nil {
		t.Fatalf("find card %s %s: %v", color, value, err)
	}
	return def
}

// giveCard puts a card instance into a player's hand and keeps the
// hand-count cache in sync.
func giveCard(t *testing.T, conn *gorm.DB, roomID uint, player *db.GameRoomPlayer, color, value string, position int) uint {
	t.Helper()
	def := findDef(t, conn, color, value)
	playerID := player.ID
	instance := db.GameRoomDeck{
		GameRoomID:     roomID,
		CardID:         def.ID,
		Location:       db.LocationPlayerHand,
		HeldByPlayerID: &playerID,
		PositionIndex:  position,
	}
	if err := conn.Create(&instance).Error; err != nil {
		t.Fatalf("place hand card: %v", err)
	}
	if err := conn.Model(&db.GameRoomPlayer{}).Where("id = ?", playerID).
		UpdateColumn("cards_in_hand", gorm.Expr("cards_in_hand + 1")).Error; err != nil {
		t.Fatalf("bump hand count: %v", err)
	}
	return instance.ID
}

func placeDeckCard(t *testing.T, conn *gorm.DB, roomID uint, color, value string, position int) uint {
	t.Helper()
	def := findDef(t, conn, color, value)
	instance := db.GameRoomDeck{
		GameRoomID:    roomID,
		CardID:        def.ID,
		Location:      db.LocationDeck,
		PositionIndex: position,
	}
	if err := conn.Create(&instance).Error; err != nil {
		t.Fatalf("place deck card: %v", err)
	}
	return instance.ID
}

func placeDiscard(t *testing.T, conn *gorm.DB, roomID uint, color, value string, position int) uint {
	t.Helper()
	def := findDef(t, conn, color, value)
	instance := db.GameRoomDeck{
		GameRoomID:    roomID,
		CardID:        def.ID,
		Location:      db.LocationDiscard,
		PositionIndex: position,
	}
	if err := conn.Create(&instance).Error; err != nil {
		t.Fatalf("place discard card: %v", err)
	}
	return instance.ID
}

func countInstances(t *testing.T, conn *gorm.DB, roomID uint, location string) int {
	t.Helper()
	var count int64
	err := conn.Model(&db.GameRoomDeck{}).
		Where("game_room_id = ? AND location = ?", roomID, location).
		Count(&count).Error
	if err != nil {
		t.Fatalf("count %s instances: %v", location, err)
	}
	return int(count)
}

// assertHandCountsSync checks the core invariant: every player's
// cached hand count equals the number of instances they actually hold.
func assertHandCountsSync(t *testing.T, conn *gorm.DB, roomID uint) {
	t.Helper()
	var players []db.GameRoomPlayer
	if err := conn.Where("game_room_id = ?", roomID).Find(&players).Error; err != nil {
		t.Fatalf("load players: %v", err)
	}
	for _, player := range players {
		var held int64
		err := conn.Model(&db.GameRoomDeck{}).
			Where("game_room_id = ? AND location = ? AND held_by_player_id = ?",
				roomID, db.LocationPlayerHand, player.ID).
			Count(&held).Error
		if err != nil {
			t.Fatalf("count held cards: %v", err)
		}
		if int(held) != player.CardsInHand {
			t.Fatalf("player %d hand cache %d != actual %d", player.ID, player.CardsInHand, held)
		}
	}
}

// assertConservation checks that no operation created or destroyed
// card instances.
func assertConservation(t *testing.T, conn *gorm.DB, roomID uint, want int) {
	t.Helper()
	var total int64
	if err := conn.Model(&db.GameRoomDeck{}).Where("game_room_id = ?", roomID).Count(&total).Error; err != nil {
		t.Fatalf("count instances: %v", err)
	}
	if int(total) != want {
		t.Fatalf("room %d has %d card instances, want %d", roomID, total, want)
	}
}

func turnEntries(t *testing.T, conn *gorm.DB, roomID uint) []db.GameTurn {
	t.Helper()
	var entries []db.GameTurn
	if err := conn.Where("game_room_id = ?", roomID).Order("id ASC").Find(&entries).Error; err != nil {
		t.Fatalf("load turn log: %v", err)
	}
	return entries
}
