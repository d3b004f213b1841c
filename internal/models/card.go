// internal/models/card.go
package models

// Color is the printed color of a card. Wild and special cards carry ColorWild
// until a color is selected for them, which lives on the game state, not the card.
type Color string

const (
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorWild   Color = "wild"
)

// Colors lists the four playable colors in enumeration order. Bot color
// selection breaks ties by this order.
var Colors = []Color{ColorRed, ColorBlue, ColorGreen, ColorYellow}

// Value is the face of a card: "0".."9", an action face, a wild face, or one
// of the optional special faces enabled by house rules.
type Value string

const (
	ValueSkip    Value = "skip"
	ValueReverse Value = "reverse"
	ValueDraw2   Value = "draw2"
	ValueWild    Value = "wild"
	ValueWild4   Value = "wild4"
	ValueSwap    Value = "swap"  // swap hands with a random player (house rule)
	ValueBlank   Value = "blank" // colorless no-op card (house rule)
)

// CardType groups faces by how the rule engine treats them.
type CardType string

const (
	TypeNumber  CardType = "number"
	TypeAction  CardType = "action"
	TypeWild    CardType = "wild"
	TypeSpecial CardType = "special"
)

// Card is an immutable value object. ID is only used for hand-membership
// lookups; face equality is always Color/Value.
type Card struct {
	ID    int      `json:"id"`
	Color Color    `json:"color"`
	Value Value    `json:"value"`
	Type  CardType `json:"type"`
}

// TypeOf derives the CardType from a face value.
func TypeOf(v Value) CardType {
	switch v {
	case ValueSkip, ValueReverse, ValueDraw2:
		return TypeAction
	case ValueWild, ValueWild4:
		return TypeWild
	case ValueSwap, ValueBlank:
		return TypeSpecial
	default:
		return TypeNumber
	}
}

// IsWildLike reports whether the card is colorless on its face, i.e. requires
// or implies a selected color. Invariant: Color == ColorWild iff IsWildLike.
func (c Card) IsWildLike() bool {
	return c.Type == TypeWild || c.Type == TypeSpecial
}
