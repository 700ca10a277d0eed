package db

const (
	ColorRed    = "red"
	ColorBlue   = "blue"
	ColorGreen  = "green"
	ColorYellow = "yellow"
	ColorWild   = "wild"
)

const (
	ValueSkip         = "skip"
	ValueReverse      = "reverse"
	ValueDrawTwo      = "draw_two"
	ValueWild         = "wild"
	ValueWildDrawFour = "wild_draw_four"
)

// UnoCard is one entry in the shared, read-only card catalog. Rooms
// reference catalog rows; they never get private copies.
type UnoCard struct {
	ID    uint   `gorm:"primaryKey"`
	Color string `gorm:"size:8;not null;index:idx_uno_cards_color_value"`
	Value string `gorm:"size:16;not null;index:idx_uno_cards_color_value"`
}
