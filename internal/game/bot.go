// internal/game/bot.go
//
// The turn orchestrator: after every mutation the room checks whether the
// current seat is a bot and, if so, schedules a single pacing timer. The
// timer callback runs advanceUntilHumanTurn, an explicit loop bounded by the
// player count, instead of re-entering through the scheduler recursively.
package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/parlorgames/uno-service/internal/models"
)

// drawUntilMatchCap bounds a bot's drawUntilMatch streak so a pathological
// random sequence cannot hold the room lock indefinitely.
const drawUntilMatchCap = 24

// scheduleBotTurn arms the bot pacing timer when the current seat is a bot.
// Stale callbacks are discarded via turnSerial. Assumes lock is held.
func (r *UnoRoom) scheduleBotTurn() {
	if r.Phase != PhaseInProgress || len(r.Players) == 0 {
		return
	}
	if !r.Players[r.CurrentPlayerIndex].IsBot {
		return
	}
	if r.botTimer != nil {
		r.botTimer.Stop()
	}
	serial := r.turnSerial
	r.botTimer = time.AfterFunc(r.Settings.BotDelay(r.botBaseDelay), func() {
		r.Mu.Lock()
		defer r.Mu.Unlock()
		// Verify the game state the timer was armed for still holds.
		if r.Phase != PhaseInProgress || r.turnSerial != serial || len(r.Players) == 0 {
			return
		}
		if !r.Players[r.CurrentPlayerIndex].IsBot {
			return
		}
		r.advanceUntilHumanTurn()
	})
}

// TriggerBotTurn re-runs bot resolution for a stalled bot turn. Any
// participant may request it as a recovery mechanism. Assumes lock is held.
func (r *UnoRoom) TriggerBotTurn(by uuid.UUID) error {
	if r.Phase != PhaseInProgress {
		return ErrInvalidCard
	}
	if p, _ := r.playerByID(by); p == nil {
		return ErrNotYourTurn
	}
	if !r.Players[r.CurrentPlayerIndex].IsBot {
		return ErrNotYourTurn
	}
	r.advanceUntilHumanTurn()
	return nil
}

// advanceUntilHumanTurn resolves consecutive bot turns in a loop bounded by
// the player count. If the bound is hit while a bot still holds the turn
// (an all-bot table), a fresh timer is armed rather than looping on.
// Assumes lock is held.
func (r *UnoRoom) advanceUntilHumanTurn() {
	for i := 0; i < len(r.Players); i++ {
		if r.Phase != PhaseInProgress || len(r.Players) == 0 {
			return
		}
		if !r.Players[r.CurrentPlayerIndex].IsBot {
			return
		}
		r.takeBotTurn()
	}
	r.scheduleBotTurn()
}

// takeBotTurn resolves exactly one bot action: answer a stacked penalty, play
// the chosen card, or draw. Assumes lock is held.
func (r *UnoRoom) takeBotTurn() {
	bot := r.Players[r.CurrentPlayerIndex]

	if r.pendingDraw > 0 {
		for i, c := range bot.Hand {
			if stacksOnto(c, r.pendingDrawValue) {
				r.botCallUno(bot)
				r.playValidated(bot, i, c)
				return
			}
		}
		n := r.pendingDraw
		r.pendingDraw = 0
		r.pendingDrawValue = ""
		r.drawCards(bot, n)
		r.logLine("%s drew %d penalty cards", bot.Name, n)
		r.advanceTurn(1)
		r.broadcastState()
		return
	}

	if idx := r.chooseBotCard(bot); idx >= 0 {
		r.botCallUno(bot)
		r.playValidated(bot, idx, bot.Hand[idx])
		return
	}

	// Nothing playable: draw, honoring the same draw-flow rules as humans.
	card := r.Deck.Draw(r.Settings)
	bot.Hand = append(bot.Hand, card)
	bot.CalledUno = false
	r.logLine("%s drew a card", bot.Name)

	if r.Settings.DrawUntilMatch {
		for tries := 0; tries < drawUntilMatchCap && !CanPlay(card, r.TopCard, r.CurrentColor); tries++ {
			card = r.Deck.Draw(r.Settings)
			bot.Hand = append(bot.Hand, card)
			r.logLine("%s drew a card", bot.Name)
		}
	}

	if CanPlay(card, r.TopCard, r.CurrentColor) &&
		(r.Settings.PlayDrawnCard || r.Settings.ForcePlay || r.Settings.DrawUntilMatch) {
		idx := bot.HasCard(card.ID)
		r.botCallUno(bot)
		r.playValidated(bot, idx, card)
		return
	}

	r.advanceTurn(1)
	r.broadcastState()
}

// botCallUno announces UNO for a bot about to go down to one card. Bots never
// forget to call. Assumes lock is held.
func (r *UnoRoom) botCallUno(bot *models.Player) {
	if len(bot.Hand) != 2 || bot.CalledUno {
		return
	}
	bot.CalledUno = true
	var pid = bot.ID
	r.fireEvent(GameEvent{Type: EventUnoCalled, PlayerID: &pid, PlayerName: bot.Name})
	r.logLine("%s called UNO!", bot.Name)
}

// chooseBotCard picks a playable hand index by difficulty tier, or -1 to
// draw. Easy is uniform random; medium prefers action/wild cards 70% of the
// time; hard prefers the bot's most common hand color, then wilds, then
// uniform random. Assumes lock is held.
func (r *UnoRoom) chooseBotCard(bot *models.Player) int {
	var playable []int
	for i, c := range bot.Hand {
		if CanPlay(c, r.TopCard, r.CurrentColor) {
			playable = append(playable, i)
		}
	}
	if len(playable) == 0 {
		return -1
	}

	switch bot.Difficulty {
	case models.BotMedium:
		if r.rng.Float64() < 0.7 {
			var aggressive []int
			for _, i := range playable {
				if bot.Hand[i].Type != models.TypeNumber {
					aggressive = append(aggressive, i)
				}
			}
			if len(aggressive) > 0 {
				return aggressive[r.rng.Intn(len(aggressive))]
			}
		}
	case models.BotHard:
		want := MostCommonColor(bot.Hand)
		var colorMatch, wilds []int
		for _, i := range playable {
			switch {
			case bot.Hand[i].Color == want:
				colorMatch = append(colorMatch, i)
			case bot.Hand[i].IsWildLike():
				wilds = append(wilds, i)
			}
		}
		if len(colorMatch) > 0 {
			return colorMatch[r.rng.Intn(len(colorMatch))]
		}
		if len(wilds) > 0 {
			return wilds[r.rng.Intn(len(wilds))]
		}
	}
	return playable[r.rng.Intn(len(playable))]
}
