package game

import "errors"

// Engine failures are classified by sentinel so the transport layer
// can match with errors.Is and pick a user-facing message.
var (
	// ErrNotFound covers missed room, player, card, and catalog lookups.
	ErrNotFound = errors.New("not found")

	// ErrOutOfTurn means the caller is not the current player.
	ErrOutOfTurn = errors.New("not your turn")

	// ErrIllegalMove covers plays that fail the color/value rule, plays
	// of cards the caller does not hold, and wilds without a chosen color.
	ErrIllegalMove = errors.New("illegal move")

	// ErrDeckEmpty is returned when a draw finds no deck cards left.
	// The discard pile is never reshuffled back into the deck.
	ErrDeckEmpty = errors.New("deck is empty")

	// ErrPrecondition covers starting an empty or already-started room
	// and acting on a finished game.
	ErrPrecondition = errors.New("precondition failed")
)
