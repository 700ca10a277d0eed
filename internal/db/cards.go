package db

import "gorm.io/gorm"

// CatalogSize is the number of cards in a physical Uno deck.
const CatalogSize = 108

// CardCatalog returns the full 108-card Uno catalog: one 0 per color,
// two of each 1-9 and action card per color, four wilds and four
// wild-draw-fours.
func CardCatalog() []UnoCard {
	colors := []string{ColorRed, ColorBlue, ColorGreen, ColorYellow}
	numbers := []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}
	actions := []string{ValueSkip, ValueReverse, ValueDrawTwo}

	cards := make([]UnoCard, 0, CatalogSize)
	for _, color := range colors {
		cards = append(cards, UnoCard{Color: color, Value: "0"})
		for _, value := range numbers {
			cards = append(cards, UnoCard{Color: color, Value: value})
			cards = append(cards, UnoCard{Color: color, Value: value})
		}
		for _, value := range actions {
			cards = append(cards, UnoCard{Color: color, Value: value})
			cards = append(cards, UnoCard{Color: color, Value: value})
		}
	}
	for i := 0; i < 4; i++ {
		cards = append(cards, UnoCard{Color: ColorWild, Value: ValueWild})
		cards = append(cards, UnoCard{Color: ColorWild, Value: ValueWildDrawFour})
	}
	return cards
}

// SeedCards inserts the card catalog once. Safe to call on every
// startup; a non-empty catalog is left untouched.
func SeedCards(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&UnoCard{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	cards := CardCatalog()
	return conn.CreateInBatches(&cards, len(cards)).Error
}

// IsWildValue reports whether a catalog value requires the player to
// choose a color when played.
func IsWildValue(value string) bool {
	return value == ValueWild || value == ValueWildDrawFour
}

// IsNumeralValue reports whether a catalog value is one of 0-9.
func IsNumeralValue(value string) bool {
	return len(value) == 1 && value[0] >= '0' && value[0] <= '9'
}
