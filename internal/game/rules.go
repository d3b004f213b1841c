// internal/game/rules.go
//
// The rule engine is pure and side-effect free. Both the authoritative server
// path and any offline practice mode call these functions; the rules are never
// forked into a second copy.
package game

import "github.com/parlorgames/uno-service/internal/models"

// CanPlay reports whether card may be played on top given the active color.
// It is an OR of independent match conditions with no precedence: an empty
// table, a wild/special card, a color match against the active color, a color
// match against the top card, or a value match against the top card.
func CanPlay(card models.Card, top *models.Card, currentColor models.Color) bool {
	if top == nil {
		return true
	}
	if card.IsWildLike() {
		return true
	}
	if card.Color == currentColor {
		return true
	}
	if card.Color == top.Color {
		return true
	}
	return card.Value == top.Value
}

// NextIndex advances a seat index by direction, wrapping around n seats.
func NextIndex(i, direction, n int) int {
	return (i + direction + n) % n
}

// Effect describes what a played card does to the room, computed before any
// state is touched. Resolution order matches the fixed priority: swap-hands,
// blank, wild/wild4, skip, reverse, draw2, seven-O, default advance.
type Effect struct {
	// NeedsColorChoice defers resolution to the color-selection sub-protocol
	// (wild, wild4, blank).
	NeedsColorChoice bool

	// DrawNext forces the next seat to draw this many cards.
	DrawNext int

	// SkipNext skips the next seat's turn entirely.
	SkipNext bool

	// Reverse flips the turn direction.
	Reverse bool

	// SwapRandom exchanges the acting player's hand with a uniformly random
	// other player's hand.
	SwapRandom bool

	// SwapNextSeat exchanges the acting player's hand with the next seat
	// (seven-O rule, value 7).
	SwapNextSeat bool
}

// EffectOf computes the effect of playing card in a room of playerCount seats
// under the given settings.
func EffectOf(card models.Card, settings GameSettings, playerCount int) Effect {
	switch card.Value {
	case models.ValueSwap:
		return Effect{SwapRandom: true}
	case models.ValueBlank:
		// Resolves as a colorless no-op number card once a color is chosen.
		return Effect{NeedsColorChoice: true}
	case models.ValueWild:
		return Effect{NeedsColorChoice: true}
	case models.ValueWild4:
		return Effect{NeedsColorChoice: true, DrawNext: 4, SkipNext: true}
	case models.ValueSkip:
		return Effect{SkipNext: true}
	case models.ValueReverse:
		if playerCount == 2 {
			// With two players reverse behaves as skip: the acting player
			// goes again.
			return Effect{SkipNext: true}
		}
		return Effect{Reverse: true}
	case models.ValueDraw2:
		return Effect{DrawNext: 2, SkipNext: true}
	}

	if settings.SevenORule && card.Value == "7" {
		return Effect{SwapNextSeat: true}
	}
	// Seven-O's "0 rotates all hands" is documented in the rules tooltip but
	// was never implemented on either the client or server path; a zero falls
	// through to the default advance.

	return Effect{}
}

// stacksOnto reports whether playing card is a legal answer to an outstanding
// stacked draw penalty started by pendingValue. Only draw2-on-draw2 stacks;
// a wild4 penalty always lands on the next seat no matter the settings.
func stacksOnto(card models.Card, pendingValue models.Value) bool {
	return card.Value == pendingValue && card.Value == models.ValueDraw2
}

// MostCommonColor returns the color appearing most often in hand, breaking
// ties by the color enumeration order. Hands with no colored cards default to
// red. This is the bot's wild-color heuristic.
func MostCommonColor(hand []models.Card) models.Color {
	counts := make(map[models.Color]int, len(models.Colors))
	for _, c := range hand {
		if !c.IsWildLike() {
			counts[c.Color]++
		}
	}
	best := models.ColorRed
	bestCount := 0
	for _, color := range models.Colors {
		if counts[color] > bestCount {
			best = color
			bestCount = counts[color]
		}
	}
	return best
}
