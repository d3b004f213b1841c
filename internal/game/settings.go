// internal/game/settings.go
package game

import (
	"fmt"
	"time"
)

// GameSpeed only affects bot pacing, never rule resolution.
type GameSpeed string

const (
	SpeedSlow   GameSpeed = "slow"
	SpeedNormal GameSpeed = "normal"
	SpeedFast   GameSpeed = "fast"
)

// GameSettings holds the optional house rules for a room. Each field toggles
// an independent branch in the rule engine. Settings are fixed by the host
// before start and may be changed between rounds.
type GameSettings struct {
	Stacking         bool      `json:"stacking"`         // draw2 penalties may be stacked onto the next seat
	JumpIn           bool      `json:"jumpIn"`           // exact color+value duplicates may be played out of turn
	DrawUntilMatch   bool      `json:"drawUntilMatch"`   // keep drawing until a playable card arrives
	ForcePlay        bool      `json:"forcePlay"`        // a playable drawn card is played automatically
	SevenORule       bool      `json:"sevenORule"`       // sevens swap hands with the next seat
	BlankCards       bool      `json:"blankCards"`       // colorless blank cards enter the draw distribution
	ChallengeRule    bool      `json:"challengeRule"`    // accepted and broadcast; not enforced by the engine
	PlayDrawnCard    bool      `json:"playDrawnCard"`    // offer to play a freshly drawn playable card
	SpecialSwapHands bool      `json:"specialSwapHands"` // swap-hands cards enter the draw distribution
	GameSpeed        GameSpeed `json:"gameSpeed"`
}

// DefaultSettings returns the standard rule set with all house rules off.
func DefaultSettings() GameSettings {
	return GameSettings{
		PlayDrawnCard: true,
		GameSpeed:     SpeedNormal,
	}
}

// Update merges a partial settings map into the receiver. Fields absent from
// the map keep their previous value. No cross-setting consistency is enforced.
func (s *GameSettings) Update(newSettings map[string]interface{}) error {
	var ok bool

	assignBool := func(field *bool, key string) error {
		if val, exists := newSettings[key]; exists && val != nil {
			*field, ok = val.(bool)
			if !ok {
				return fmt.Errorf("invalid type for %s", key)
			}
		}
		return nil
	}

	if err := assignBool(&s.Stacking, "stacking"); err != nil {
		return err
	}
	if err := assignBool(&s.JumpIn, "jumpIn"); err != nil {
		return err
	}
	if err := assignBool(&s.DrawUntilMatch, "drawUntilMatch"); err != nil {
		return err
	}
	if err := assignBool(&s.ForcePlay, "forcePlay"); err != nil {
		return err
	}
	if err := assignBool(&s.SevenORule, "sevenORule"); err != nil {
		return err
	}
	if err := assignBool(&s.BlankCards, "blankCards"); err != nil {
		return err
	}
	if err := assignBool(&s.ChallengeRule, "challengeRule"); err != nil {
		return err
	}
	if err := assignBool(&s.PlayDrawnCard, "playDrawnCard"); err != nil {
		return err
	}
	if err := assignBool(&s.SpecialSwapHands, "specialSwapHands"); err != nil {
		return err
	}

	if val, exists := newSettings["gameSpeed"]; exists && val != nil {
		str, ok := val.(string)
		if !ok {
			return fmt.Errorf("invalid type for gameSpeed")
		}
		switch GameSpeed(str) {
		case SpeedSlow, SpeedNormal, SpeedFast:
			s.GameSpeed = GameSpeed(str)
		default:
			return fmt.Errorf("invalid gameSpeed %q", str)
		}
	}

	return nil
}

// BotDelay returns the pacing delay applied before a bot turn resolves.
func (s GameSettings) BotDelay(base time.Duration) time.Duration {
	switch s.GameSpeed {
	case SpeedSlow:
		return base * 2
	case SpeedFast:
		return base / 2
	default:
		return base
	}
}
