// internal/game/game.go
package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/parlorgames/uno-service/internal/models"
)

// Phase is the lifecycle state of a room.
type Phase string

const (
	PhaseLobby      Phase = "LOBBY"       // accepting joins, no turns
	PhaseInProgress Phase = "IN_PROGRESS" // turns proceed
	PhaseRoundOver  Phase = "ROUND_OVER"  // winner determined, awaiting play_again or reset
)

// openingHandSize is the number of cards dealt to every player at round start.
const openingHandSize = 7

// pendingColorState tracks an outstanding color-selection sub-protocol for a
// played wild, wild4, or blank card.
type pendingColorState struct {
	Active   bool
	PlayerID uuid.UUID
	Card     models.Card
	Effect   Effect
}

// UnoRoom holds the entire authoritative state for a single room in memory.
//
// Concurrency discipline: all mutation of a room happens under Mu. The
// transport read loop holds the lock for the duration of each intent, so no
// two mutations of the same room ever interleave; exported intent methods
// assume the lock is held by the caller. Timer callbacks acquire the lock
// themselves.
type UnoRoom struct {
	Code string

	Phase              Phase
	Players            []*models.Player
	Deck               *Deck
	TopCard            *models.Card
	CurrentColor       models.Color
	CurrentPlayerIndex int
	Direction          int
	Settings           GameSettings
	Scores             map[string]int

	pendingColor pendingColorState

	// pendingDraw accumulates a stacked draw penalty (stacking rule); the
	// seat that cannot answer draws the whole pile and loses its turn.
	pendingDraw      int
	pendingDrawValue models.Value

	Mu sync.Mutex

	// BroadcastToPlayerFn sends an event to a single player's connection.
	// Bots and disconnected players are skipped by the transport layer.
	// If nil, no broadcast is done.
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)

	// OnEmpty is called once the last human leaves so the store can delete
	// the room.
	OnEmpty func(roomCode string)

	logger *logrus.Entry
	rng    *rand.Rand

	botTimer     *time.Timer
	botBaseDelay time.Duration

	// turnSerial increments on every turn change and guards stale bot timers.
	turnSerial int
}

// NewUnoRoom builds an empty room in the lobby phase.
func NewUnoRoom(code string, logger *logrus.Logger) *UnoRoom {
	return &UnoRoom{
		Code:         code,
		Phase:        PhaseLobby,
		Deck:         NewDeck(),
		Direction:    1,
		Settings:     DefaultSettings(),
		Scores:       make(map[string]int),
		logger:       logger.WithField("room", code),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		botBaseDelay: 1200 * time.Millisecond,
	}
}

// SetBotDelay overrides the base bot pacing delay (used by config and tests).
func (r *UnoRoom) SetBotDelay(d time.Duration) {
	r.botBaseDelay = d
}

// AddHuman seats a new human player. The first player to join becomes host.
// Assumes lock is held.
func (r *UnoRoom) AddHuman(name string, conn *websocket.Conn) (*models.Player, error) {
	if r.Phase != PhaseLobby {
		return nil, ErrGameAlreadyStarted
	}
	p := &models.Player{
		ID:          uuid.New(),
		Name:        name,
		IsHuman:     true,
		IsHost:      len(r.Players) == 0,
		Connected:   true,
		Conn:        conn,
		DrawnCardID: -1,
	}
	r.Players = append(r.Players, p)
	r.logLine("%s joined the room", p.Name)
	r.broadcastState()
	return p, nil
}

// AddBot seats a bot. Host-only; bot ids are uuids like session ids but are
// distinguishable via IsBot. Assumes lock is held.
func (r *UnoRoom) AddBot(by uuid.UUID, difficulty models.BotDifficulty) (*models.Player, error) {
	if err := r.requireHost(by); err != nil {
		return nil, err
	}
	if r.Phase == PhaseInProgress {
		return nil, ErrGameAlreadyStarted
	}
	switch difficulty {
	case models.BotEasy, models.BotMedium, models.BotHard:
	default:
		difficulty = models.BotMedium
	}
	p := &models.Player{
		ID:          uuid.New(),
		Name:        fmt.Sprintf("Bot %d", len(r.Players)+1),
		IsBot:       true,
		Connected:   true,
		Difficulty:  difficulty,
		DrawnCardID: -1,
	}
	r.Players = append(r.Players, p)
	r.logLine("%s (%s) was added", p.Name, difficulty)
	r.broadcastState()
	return p, nil
}

// RemoveBot removes a bot seat. Host-only. Assumes lock is held.
func (r *UnoRoom) RemoveBot(by uuid.UUID, botID uuid.UUID) error {
	if err := r.requireHost(by); err != nil {
		return err
	}
	for i, p := range r.Players {
		if p.ID == botID && p.IsBot {
			r.removePlayerAt(i)
			r.logLine("%s was removed", p.Name)
			r.broadcastState()
			return nil
		}
	}
	return ErrInvalidCard
}

// UpdateSettings merges a partial settings map. Host-only; no cross-setting
// validation. Assumes lock is held.
func (r *UnoRoom) UpdateSettings(by uuid.UUID, partial map[string]interface{}) error {
	if err := r.requireHost(by); err != nil {
		return err
	}
	if err := r.Settings.Update(partial); err != nil {
		return err
	}
	r.logLine("game settings updated")
	r.broadcastState()
	return nil
}

// StartGame deals opening hands and begins the turn cycle. Host-only.
// Assumes lock is held.
func (r *UnoRoom) StartGame(by uuid.UUID) error {
	if err := r.requireHost(by); err != nil {
		return err
	}
	if r.Phase == PhaseInProgress {
		return ErrGameAlreadyStarted
	}
	if len(r.Players) < 2 {
		return fmt.Errorf("need at least 2 players to start")
	}
	r.startRound()
	r.logLine("game started")
	return nil
}

// PlayAgain reshuffles and starts the next round, preserving players and
// scores. Host-only, valid only once a winner has been determined.
// Assumes lock is held.
func (r *UnoRoom) PlayAgain(by uuid.UUID) error {
	if err := r.requireHost(by); err != nil {
		return err
	}
	if r.Phase != PhaseRoundOver {
		return fmt.Errorf("round is not over")
	}
	r.startRound()
	r.logLine("rematch started")
	return nil
}

// startRound resets per-round state and deals fresh hands.
// Assumes lock is held.
func (r *UnoRoom) startRound() {
	r.Deck = NewDeck()
	for _, p := range r.Players {
		p.Hand = r.Deck.DealHand(openingHandSize, r.Settings)
		p.CalledUno = false
		p.HasDrawn = false
		p.DrawnCardID = -1
	}
	top := r.Deck.StartingCard()
	r.TopCard = &top
	r.CurrentColor = top.Color
	r.CurrentPlayerIndex = 0
	r.Direction = 1
	r.pendingColor = pendingColorState{}
	r.pendingDraw = 0
	r.pendingDrawValue = ""
	r.turnSerial++
	r.Phase = PhaseInProgress
	r.broadcastState()
	r.scheduleBotTurn()
}

// PlayCard validates and plays a card from the sender's hand. Out-of-turn
// plays are rejected unless the jump-in rule applies. Assumes lock is held.
func (r *UnoRoom) PlayCard(playerID uuid.UUID, cardID int) error {
	if r.Phase != PhaseInProgress {
		return fmt.Errorf("game is not in progress")
	}
	if r.pendingColor.Active {
		if r.pendingColor.PlayerID == playerID {
			return fmt.Errorf("select a color first")
		}
		return ErrNotYourTurn
	}
	p, idx := r.playerByID(playerID)
	if p == nil {
		return ErrNotYourTurn
	}
	handIdx := p.HasCard(cardID)
	if handIdx < 0 {
		return ErrInvalidCard
	}
	card := p.Hand[handIdx]

	if idx != r.CurrentPlayerIndex {
		// Jump-in: an exact color+value duplicate of the top card steals the
		// turn when the house rule is on.
		if !r.Settings.JumpIn || r.TopCard == nil || card.IsWildLike() ||
			card.Color != r.TopCard.Color || card.Value != r.TopCard.Value {
			return ErrNotYourTurn
		}
		r.CurrentPlayerIndex = idx
		r.turnSerial++
		r.logLine("%s jumped in", p.Name)
	}

	if r.pendingDraw > 0 && !stacksOnto(card, r.pendingDrawValue) {
		return ErrInvalidCard
	}
	if !CanPlay(card, r.TopCard, r.CurrentColor) {
		return ErrInvalidCard
	}

	r.playValidated(p, handIdx, card)
	return nil
}

// playValidated applies a play that already passed legality checks. Effect
// resolution is total: it always completes for validated inputs.
// Assumes lock is held.
func (r *UnoRoom) playValidated(p *models.Player, handIdx int, card models.Card) {
	p.Hand = append(p.Hand[:handIdx], p.Hand[handIdx+1:]...)
	p.HasDrawn = false
	p.DrawnCardID = -1
	r.TopCard = &card
	r.CurrentColor = card.Color
	r.Deck.Consume()
	r.logLine("%s played %s %s", p.Name, card.Color, card.Value)

	// Win check fires the moment a hand empties; no further turn processing.
	if len(p.Hand) == 0 {
		r.endRound(p)
		return
	}

	eff := EffectOf(card, r.Settings, len(r.Players))
	if eff.NeedsColorChoice {
		if p.IsBot {
			r.applyChosenColor(p, card, eff, MostCommonColor(p.Hand))
			return
		}
		r.pendingColor = pendingColorState{Active: true, PlayerID: p.ID, Card: card, Effect: eff}
		r.fireEventToPlayer(p.ID, GameEvent{Type: EventSelectColor, Card: &card})
		r.broadcastState()
		return
	}
	r.resolveEffect(p, card, eff)
}

// SelectColor resolves an outstanding wild/blank color choice.
// Assumes lock is held.
func (r *UnoRoom) SelectColor(playerID uuid.UUID, cardID int, color models.Color) error {
	if !r.pendingColor.Active || r.pendingColor.PlayerID != playerID {
		return ErrNotYourTurn
	}
	if cardID != 0 && cardID != r.pendingColor.Card.ID {
		return ErrInvalidCard
	}
	valid := false
	for _, c := range models.Colors {
		if color == c {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidCard
	}
	p, _ := r.playerByID(playerID)
	if p == nil {
		return ErrNotYourTurn
	}
	pending := r.pendingColor
	r.pendingColor = pendingColorState{}
	r.applyChosenColor(p, pending.Card, pending.Effect, color)
	return nil
}

// applyChosenColor finishes a color-deferred effect. Assumes lock is held.
func (r *UnoRoom) applyChosenColor(p *models.Player, card models.Card, eff Effect, color models.Color) {
	r.CurrentColor = color
	r.logLine("%s chose %s", p.Name, color)
	eff.NeedsColorChoice = false
	r.resolveEffect(p, card, eff)
}

// resolveEffect mutates the room per the card's effect and advances the turn.
// Assumes lock is held.
func (r *UnoRoom) resolveEffect(p *models.Player, card models.Card, eff Effect) {
	actorIdx := r.indexOf(p.ID)

	switch {
	case eff.SwapRandom && len(r.Players) > 1:
		other := r.randomOtherPlayer(actorIdx)
		p.Hand, other.Hand = other.Hand, p.Hand
		r.resetUnoFlags(p, other)
		r.logLine("%s swapped hands with %s", p.Name, other.Name)
	case eff.SwapNextSeat && len(r.Players) > 1:
		next := r.Players[NextIndex(actorIdx, r.Direction, len(r.Players))]
		p.Hand, next.Hand = next.Hand, p.Hand
		r.resetUnoFlags(p, next)
		r.logLine("%s swapped hands with %s", p.Name, next.Name)
	}

	if eff.Reverse {
		r.Direction = -r.Direction
		r.logLine("direction reversed")
	}

	if eff.DrawNext > 0 {
		if r.Settings.Stacking && card.Value == models.ValueDraw2 {
			// Hand the penalty to the next seat, who may stack a matching
			// card or draw the accumulated pile.
			r.pendingDraw += eff.DrawNext
			r.pendingDrawValue = card.Value
			r.advanceTurn(1)
			r.logLine("draw penalty stacked to %d", r.pendingDraw)
			r.broadcastState()
			r.scheduleBotTurn()
			return
		}
		victim := r.Players[NextIndex(actorIdx, r.Direction, len(r.Players))]
		r.drawCards(victim, eff.DrawNext)
		r.logLine("%s drew %d cards", victim.Name, eff.DrawNext)
		r.advanceTurn(2)
		r.broadcastState()
		r.scheduleBotTurn()
		return
	}

	if eff.SkipNext {
		skipped := r.Players[NextIndex(actorIdx, r.Direction, len(r.Players))]
		r.logLine("%s was skipped", skipped.Name)
		r.advanceTurn(2)
	} else {
		r.advanceTurn(1)
	}
	r.broadcastState()
	r.scheduleBotTurn()
}

// DrawCard draws for the current player. With a stacked penalty outstanding
// the whole pile is drawn and the turn is lost. Assumes lock is held.
func (r *UnoRoom) DrawCard(playerID uuid.UUID) error {
	if r.Phase != PhaseInProgress {
		return fmt.Errorf("game is not in progress")
	}
	if r.pendingColor.Active {
		return fmt.Errorf("select a color first")
	}
	p, idx := r.playerByID(playerID)
	if p == nil || idx != r.CurrentPlayerIndex {
		return ErrNotYourTurn
	}

	if r.pendingDraw > 0 {
		n := r.pendingDraw
		r.pendingDraw = 0
		r.pendingDrawValue = ""
		r.drawCards(p, n)
		r.logLine("%s drew %d penalty cards", p.Name, n)
		r.advanceTurn(1)
		r.broadcastState()
		r.scheduleBotTurn()
		return nil
	}

	card := r.Deck.Draw(r.Settings)
	p.Hand = append(p.Hand, card)
	p.CalledUno = false
	p.HasDrawn = true
	p.DrawnCardID = card.ID
	r.logLine("%s drew a card", p.Name)

	if CanPlay(card, r.TopCard, r.CurrentColor) {
		if r.Settings.ForcePlay {
			handIdx := p.HasCard(card.ID)
			r.playValidated(p, handIdx, card)
			return nil
		}
		if r.Settings.PlayDrawnCard {
			// Offer the play; the player answers with play_card or end_turn.
			r.fireEventToPlayer(p.ID, GameEvent{Type: EventCanPlayDrawnCard, Card: &card})
			r.broadcastState()
			return nil
		}
	} else if r.Settings.DrawUntilMatch {
		// Keep the turn; the player issues draw_card again.
		r.fireEventToPlayer(p.ID, GameEvent{Type: EventDrawAgain, Card: &card})
		r.broadcastState()
		return nil
	}

	r.advanceTurn(1)
	r.broadcastState()
	r.scheduleBotTurn()
	return nil
}

// EndTurn passes after a non-played draw. Assumes lock is held.
func (r *UnoRoom) EndTurn(playerID uuid.UUID) error {
	if r.Phase != PhaseInProgress {
		return fmt.Errorf("game is not in progress")
	}
	p, idx := r.playerByID(playerID)
	if p == nil || idx != r.CurrentPlayerIndex {
		return ErrNotYourTurn
	}
	if !p.HasDrawn {
		return fmt.Errorf("draw a card before ending your turn")
	}
	r.advanceTurn(1)
	r.broadcastState()
	r.scheduleBotTurn()
	return nil
}

// CallUno marks the caller as having announced UNO. Calls with more than two
// cards in hand are silently ignored. Assumes lock is held.
func (r *UnoRoom) CallUno(playerID uuid.UUID) error {
	p, _ := r.playerByID(playerID)
	if p == nil {
		return nil
	}
	if len(p.Hand) > 2 || p.CalledUno {
		return nil
	}
	p.CalledUno = true
	var pid = p.ID
	r.fireEvent(GameEvent{Type: EventUnoCalled, PlayerID: &pid, PlayerName: p.Name})
	r.logLine("%s called UNO!", p.Name)
	r.broadcastState()
	return nil
}

// CallUnoOnPlayer catches a player who failed to call UNO. A valid catch
// penalizes the target two cards; an invalid one penalizes the caller one.
// Assumes lock is held.
func (r *UnoRoom) CallUnoOnPlayer(callerID, targetID uuid.UUID) error {
	caller, _ := r.playerByID(callerID)
	target, _ := r.playerByID(targetID)
	if caller == nil || target == nil {
		return ErrInvalidUnoCall
	}
	if len(target.Hand) == 1 && !target.CalledUno {
		r.drawCards(target, 2)
		r.logLine("%s caught %s without UNO, +2 cards", caller.Name, target.Name)
		r.broadcastState()
		return nil
	}
	r.drawCards(caller, 1)
	r.logLine("%s made a bad UNO call, +1 card", caller.Name)
	r.broadcastState()
	return ErrInvalidUnoCall
}

// Chat relays a room-scoped chat message. Assumes lock is held.
func (r *UnoRoom) Chat(playerID uuid.UUID, message string) {
	p, _ := r.playerByID(playerID)
	if p == nil || message == "" {
		return
	}
	var pid = p.ID
	r.fireEvent(GameEvent{Type: EventChatMessage, PlayerID: &pid, PlayerName: p.Name, Message: message})
}

// Emoji relays a room-scoped emoji reaction. Assumes lock is held.
func (r *UnoRoom) Emoji(playerID uuid.UUID, emoji string) {
	p, _ := r.playerByID(playerID)
	if p == nil || emoji == "" {
		return
	}
	var pid = p.ID
	r.fireEvent(GameEvent{Type: EventEmojiReaction, PlayerID: &pid, PlayerName: p.Name, Emoji: emoji})
}

// HandleLeave removes a player (leave intent or disconnect). If they held the
// turn the pointer advances immediately; the host role moves to the next
// human seat; a lone remaining player mid-game is auto-declared winner; a
// room with no humans left is torn down. Assumes lock is held.
func (r *UnoRoom) HandleLeave(playerID uuid.UUID) {
	idx := r.indexOf(playerID)
	if idx < 0 {
		return
	}
	leaving := r.Players[idx]
	wasCurrent := idx == r.CurrentPlayerIndex
	r.removePlayerAt(idx)
	r.logLine("%s left the room", leaving.Name)

	if r.countHumans() == 0 {
		r.teardown()
		return
	}

	if leaving.IsHost {
		r.reassignHost()
	}

	if r.Phase == PhaseInProgress {
		if len(r.Players) == 1 {
			// Last one standing wins the round.
			r.endRound(r.Players[0])
			return
		}
		if wasCurrent {
			// The removal already shifted the pointer onto the next seat;
			// reset its per-turn state and wake a bot if needed.
			r.turnSerial++
			cur := r.Players[r.CurrentPlayerIndex]
			cur.HasDrawn = false
			cur.DrawnCardID = -1
			if r.pendingColor.Active && r.pendingColor.PlayerID == playerID {
				r.pendingColor = pendingColorState{}
			}
		}
	}
	r.broadcastState()
	r.scheduleBotTurn()
}

// endRound records the winner and freezes the room until play_again or reset.
// Assumes lock is held.
func (r *UnoRoom) endRound(winner *models.Player) {
	r.Phase = PhaseRoundOver
	r.Scores[winner.Name]++
	r.pendingColor = pendingColorState{}
	r.pendingDraw = 0
	r.pendingDrawValue = ""
	r.turnSerial++
	if r.botTimer != nil {
		r.botTimer.Stop()
		r.botTimer = nil
	}
	var pid = winner.ID
	r.fireEvent(GameEvent{Type: EventGameWinner, PlayerID: &pid, PlayerName: winner.Name})
	r.logLine("%s wins the round!", winner.Name)
	r.broadcastState()
}

// teardown stops timers and signals the store to delete the room.
// Assumes lock is held.
func (r *UnoRoom) teardown() {
	if r.botTimer != nil {
		r.botTimer.Stop()
		r.botTimer = nil
	}
	r.Phase = PhaseLobby
	r.Players = nil
	if r.OnEmpty != nil {
		r.OnEmpty(r.Code)
	}
}

// advanceTurn moves the turn pointer by the given number of seats in the
// current direction (2 seats realizes a skip). Assumes lock is held.
func (r *UnoRoom) advanceTurn(seats int) {
	if len(r.Players) == 0 {
		return
	}
	for i := 0; i < seats; i++ {
		r.CurrentPlayerIndex = NextIndex(r.CurrentPlayerIndex, r.Direction, len(r.Players))
	}
	r.turnSerial++
	cur := r.Players[r.CurrentPlayerIndex]
	cur.HasDrawn = false
	cur.DrawnCardID = -1
}

// drawCards deals n generated cards into a hand. Growing a hand always clears
// the UNO announcement. Assumes lock is held.
func (r *UnoRoom) drawCards(p *models.Player, n int) {
	for i := 0; i < n; i++ {
		p.Hand = append(p.Hand, r.Deck.Draw(r.Settings))
	}
	if n > 0 {
		p.CalledUno = false
	}
}

// --- helpers, all assume lock is held ---

func (r *UnoRoom) requireHost(playerID uuid.UUID) error {
	p, _ := r.playerByID(playerID)
	if p == nil || !p.IsHost {
		return ErrNotHost
	}
	return nil
}

func (r *UnoRoom) playerByID(id uuid.UUID) (*models.Player, int) {
	for i, p := range r.Players {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

func (r *UnoRoom) indexOf(id uuid.UUID) int {
	_, i := r.playerByID(id)
	return i
}

// removePlayerAt drops a seat and keeps the turn pointer on the same player
// where possible. Assumes lock is held.
func (r *UnoRoom) removePlayerAt(idx int) {
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)
	if len(r.Players) == 0 {
		r.CurrentPlayerIndex = 0
		return
	}
	if idx < r.CurrentPlayerIndex {
		r.CurrentPlayerIndex--
	}
	if r.CurrentPlayerIndex >= len(r.Players) {
		r.CurrentPlayerIndex = 0
	}
}

func (r *UnoRoom) reassignHost() {
	for _, p := range r.Players {
		if p.IsHuman {
			p.IsHost = true
			r.logLine("%s is now the host", p.Name)
			return
		}
	}
}

func (r *UnoRoom) countHumans() int {
	n := 0
	for _, p := range r.Players {
		if p.IsHuman {
			n++
		}
	}
	return n
}

func (r *UnoRoom) randomOtherPlayer(actorIdx int) *models.Player {
	other := r.rng.Intn(len(r.Players) - 1)
	if other >= actorIdx {
		other++
	}
	return r.Players[other]
}

func (r *UnoRoom) resetUnoFlags(players ...*models.Player) {
	for _, p := range players {
		if len(p.Hand) != 1 {
			p.CalledUno = false
		}
	}
}

// fireEvent broadcasts an event to every seat. Assumes lock is held.
func (r *UnoRoom) fireEvent(ev GameEvent) {
	if r.BroadcastToPlayerFn == nil {
		return
	}
	for _, p := range r.Players {
		r.BroadcastToPlayerFn(p.ID, ev)
	}
}

// fireEventToPlayer sends an event to a single seat. Assumes lock is held.
func (r *UnoRoom) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if r.BroadcastToPlayerFn == nil {
		return
	}
	r.BroadcastToPlayerFn(playerID, ev)
}

// broadcastState sends each player their own view of the room. Assumes lock
// is held.
func (r *UnoRoom) broadcastState() {
	if r.BroadcastToPlayerFn == nil {
		return
	}
	for _, p := range r.Players {
		snap := r.snapshotFor(p.ID)
		r.BroadcastToPlayerFn(p.ID, GameEvent{Type: EventGameStateUpdate, State: &snap})
	}
}

// logLine emits a human-readable action line to the server log and to every
// client as a game_log event. Assumes lock is held.
func (r *UnoRoom) logLine(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.logger.Info(msg)
	r.fireEvent(GameEvent{Type: EventGameLog, Message: msg})
}
