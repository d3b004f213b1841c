// internal/game/rules_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlorgames/uno-service/internal/models"
)

// allFaces is the full value domain for the legality cross product.
var allFaces = append(append([]models.Value{}, nonWildFaces...),
	models.ValueWild, models.ValueWild4, models.ValueSwap, models.ValueBlank)

func cardOf(id int, color models.Color, value models.Value) models.Card {
	return models.Card{ID: id, Color: color, Value: value, Type: models.TypeOf(value)}
}

// TestCanPlayCrossProduct exercises legality across the full color x value
// cross product: a play is legal iff the card is wild/special, or matches the
// active color, the top card's color, or the top card's value.
func TestCanPlayCrossProduct(t *testing.T) {
	id := 0
	for _, topColor := range models.Colors {
		for _, topValue := range nonWildFaces {
			top := cardOf(id, topColor, topValue)
			id++
			for _, activeColor := range models.Colors {
				for _, cardValue := range allFaces {
					cardColor := models.ColorWild
					if models.TypeOf(cardValue) == models.TypeNumber || models.TypeOf(cardValue) == models.TypeAction {
						cardColor = models.Colors[id%len(models.Colors)]
					}
					card := cardOf(id, cardColor, cardValue)
					id++

					want := card.IsWildLike() ||
						card.Color == activeColor ||
						card.Color == top.Color ||
						card.Value == top.Value

					got := CanPlay(card, &top, activeColor)
					require.Equal(t, want, got,
						"card %s/%s on top %s/%s with active color %s",
						card.Color, card.Value, top.Color, top.Value, activeColor)
				}
			}
		}
	}
}

func TestCanPlayEmptyTable(t *testing.T) {
	card := cardOf(1, models.ColorRed, "5")
	assert.True(t, CanPlay(card, nil, models.ColorBlue), "any card is playable on an empty table")
}

func TestNextIndexWraps(t *testing.T) {
	assert.Equal(t, 1, NextIndex(0, 1, 4))
	assert.Equal(t, 0, NextIndex(3, 1, 4))
	assert.Equal(t, 3, NextIndex(0, -1, 4))
	assert.Equal(t, 2, NextIndex(3, -1, 4))
	assert.Equal(t, 0, NextIndex(1, 1, 2))
	assert.Equal(t, 0, NextIndex(1, -1, 2))
}

func TestEffectOfPriority(t *testing.T) {
	settings := DefaultSettings()

	eff := EffectOf(cardOf(1, models.ColorWild, models.ValueSwap), settings, 4)
	assert.True(t, eff.SwapRandom)
	assert.False(t, eff.NeedsColorChoice)

	eff = EffectOf(cardOf(2, models.ColorWild, models.ValueBlank), settings, 4)
	assert.True(t, eff.NeedsColorChoice)
	assert.Zero(t, eff.DrawNext)

	eff = EffectOf(cardOf(3, models.ColorWild, models.ValueWild), settings, 4)
	assert.True(t, eff.NeedsColorChoice)
	assert.Zero(t, eff.DrawNext)
	assert.False(t, eff.SkipNext)

	eff = EffectOf(cardOf(4, models.ColorWild, models.ValueWild4), settings, 4)
	assert.True(t, eff.NeedsColorChoice)
	assert.Equal(t, 4, eff.DrawNext)
	assert.True(t, eff.SkipNext)

	eff = EffectOf(cardOf(5, models.ColorRed, models.ValueSkip), settings, 4)
	assert.True(t, eff.SkipNext)

	eff = EffectOf(cardOf(6, models.ColorRed, models.ValueDraw2), settings, 4)
	assert.Equal(t, 2, eff.DrawNext)
	assert.True(t, eff.SkipNext)

	eff = EffectOf(cardOf(7, models.ColorRed, "3"), settings, 4)
	assert.Equal(t, Effect{}, eff, "number cards advance one seat with no side effects")
}

func TestEffectOfReverse(t *testing.T) {
	settings := DefaultSettings()

	eff := EffectOf(cardOf(1, models.ColorBlue, models.ValueReverse), settings, 4)
	assert.True(t, eff.Reverse)
	assert.False(t, eff.SkipNext)

	// With exactly 2 players reverse behaves as skip.
	eff = EffectOf(cardOf(2, models.ColorBlue, models.ValueReverse), settings, 2)
	assert.False(t, eff.Reverse)
	assert.True(t, eff.SkipNext)
}

func TestEffectOfSevenO(t *testing.T) {
	settings := DefaultSettings()
	seven := cardOf(1, models.ColorGreen, "7")
	zero := cardOf(2, models.ColorGreen, "0")

	assert.Equal(t, Effect{}, EffectOf(seven, settings, 3), "seven is a plain number without the rule")

	settings.SevenORule = true
	eff := EffectOf(seven, settings, 3)
	assert.True(t, eff.SwapNextSeat)

	// Zero-rotation is documented but unimplemented; a zero stays a no-op.
	assert.Equal(t, Effect{}, EffectOf(zero, settings, 3))
}

func TestStacksOnto(t *testing.T) {
	draw2 := cardOf(1, models.ColorRed, models.ValueDraw2)
	wild4 := cardOf(2, models.ColorWild, models.ValueWild4)
	five := cardOf(3, models.ColorRed, "5")

	assert.True(t, stacksOnto(draw2, models.ValueDraw2))
	assert.False(t, stacksOnto(five, models.ValueDraw2))
	assert.False(t, stacksOnto(wild4, models.ValueWild4), "wild4 penalties never stack")
}

func TestMostCommonColor(t *testing.T) {
	hand := []models.Card{
		cardOf(1, models.ColorBlue, "1"),
		cardOf(2, models.ColorBlue, "2"),
		cardOf(3, models.ColorYellow, "3"),
		cardOf(4, models.ColorWild, models.ValueWild),
	}
	assert.Equal(t, models.ColorBlue, MostCommonColor(hand))

	// Ties break by enumeration order: red before blue.
	tied := []models.Card{
		cardOf(1, models.ColorBlue, "1"),
		cardOf(2, models.ColorRed, "2"),
	}
	assert.Equal(t, models.ColorRed, MostCommonColor(tied))

	// A hand with no colored cards defaults to red.
	wilds := []models.Card{cardOf(1, models.ColorWild, models.ValueWild4)}
	assert.Equal(t, models.ColorRed, MostCommonColor(wilds))
	assert.Equal(t, models.ColorRed, MostCommonColor(nil))
}
