// internal/game/deck.go
package game

import (
	"math/rand"
	"time"

	"github.com/parlorgames/uno-service/internal/models"
)

// virtualDeckSize is the counter value the deck starts at and refills to, as
// if a fresh double deck were shuffled in. The deck is virtual: cards are
// generated independently at random and the counter never gates a draw.
const virtualDeckSize = 108

// nonWildFaces are the 13 faces a colored card can carry.
var nonWildFaces = []models.Value{
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	models.ValueSkip, models.ValueReverse, models.ValueDraw2,
}

// Deck generates cards on demand and tracks a virtual cards-remaining counter.
// There is no finite shoe and no reshuffle-from-discard; see DESIGN.md.
type Deck struct {
	rng       *rand.Rand
	nextID    int
	Remaining int
}

// NewDeck returns a deck with a time-seeded random source.
func NewDeck() *Deck {
	return &Deck{
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		nextID:    1,
		Remaining: virtualDeckSize,
	}
}

// newDeckWithSeed is used by tests that need deterministic draws.
func newDeckWithSeed(seed int64) *Deck {
	d := NewDeck()
	d.rng = rand.New(rand.NewSource(seed))
	return d
}

// Draw generates one card under the given settings and decrements the
// virtual counter, refilling it when it runs out.
func (d *Deck) Draw(settings GameSettings) models.Card {
	card := d.generate(settings)
	d.Consume()
	return card
}

// Consume ticks the virtual counter down by one, refilling it when it runs
// out, as if the discard pile were reshuffled back in. Plays consume the
// counter too: a card leaving a hand for the pile leaves circulation.
func (d *Deck) Consume() {
	d.Remaining--
	if d.Remaining <= 0 {
		d.Remaining = virtualDeckSize
	}
}

// DealHand draws n independent cards.
func (d *Deck) DealHand(n int, settings GameSettings) []models.Card {
	hand := make([]models.Card, 0, n)
	for i := 0; i < n; i++ {
		hand = append(hand, d.Draw(settings))
	}
	return hand
}

// StartingCard draws the face-up opener, regenerating until it is a plain
// number card: the top card immediately after start must never be wild,
// action, or special.
func (d *Deck) StartingCard() models.Card {
	for {
		card := d.Draw(DefaultSettings())
		if card.Type == models.TypeNumber {
			return card
		}
	}
}

// generate implements the probabilistic distribution: with the corresponding
// house rule on, ~5% swap-hands and ~5% blank; then 20% wild (split evenly
// between wild and wild4); otherwise uniform color x uniform face.
func (d *Deck) generate(settings GameSettings) models.Card {
	id := d.nextID
	d.nextID++

	if settings.SpecialSwapHands && d.rng.Float64() < 0.05 {
		return d.card(id, models.ColorWild, models.ValueSwap)
	}
	if settings.BlankCards && d.rng.Float64() < 0.05 {
		return d.card(id, models.ColorWild, models.ValueBlank)
	}
	if d.rng.Float64() < 0.20 {
		if d.rng.Float64() < 0.5 {
			return d.card(id, models.ColorWild, models.ValueWild)
		}
		return d.card(id, models.ColorWild, models.ValueWild4)
	}

	color := models.Colors[d.rng.Intn(len(models.Colors))]
	face := nonWildFaces[d.rng.Intn(len(nonWildFaces))]
	return d.card(id, color, face)
}

func (d *Deck) card(id int, color models.Color, value models.Value) models.Card {
	return models.Card{ID: id, Color: color, Value: value, Type: models.TypeOf(value)}
}
