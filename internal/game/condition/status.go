// Package condition models the persistent status conditions a combatant can
// carry through a battle and the rules each one imposes.
package condition

import (
	"strings"

	"github.com/cory-johannsen/battlesim/internal/game/ruleset"
)

// Status is a persistent status condition. The zero value is None.
type Status int

const (
	None Status = iota
	Paralysis
	Poison
	Burn
)

// String returns the canonical lower-case status name.
// Postcondition: returns "none", "paralysis", "poison", or "burn".
func (s Status) String() string {
	switch s {
	case Paralysis:
		return "paralysis"
	case Poison:
		return "poison"
	case Burn:
		return "burn"
	default:
		return "none"
	}
}

// Parse maps a status name to a Status. Common abbreviations ("par", "psn",
// "brn") are accepted; anything unrecognised, including the empty string, is None.
//
// Postcondition: never fails.
func Parse(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paralysis", "paralyzed", "par":
		return Paralysis
	case "poison", "poisoned", "psn":
		return Poison
	case "burn", "burned", "brn":
		return Burn
	default:
		return None
	}
}

// SpeedFactor returns the multiplier applied to a bearer's speed stat.
//
// Postcondition: returns m.ParalysisSpeedFactor for Paralysis and 1 otherwise.
func SpeedFactor(s Status, m ruleset.Mechanics) float64 {
	if s == Paralysis {
		return m.ParalysisSpeedFactor
	}
	return 1
}

// SkipChance returns the probability that a bearer loses its action this turn.
func SkipChance(s Status, m ruleset.Mechanics) float64 {
	if s == Paralysis {
		return m.ParalysisSkipChance
	}
	return 0
}

// DamageFactor returns the multiplier applied to damage dealt by a bearer
// using a move of the given category.
func DamageFactor(s Status, category ruleset.Category, m ruleset.Mechanics) float64 {
	if s == Burn && category == ruleset.Physical {
		return m.BurnPhysicalFactor
	}
	return 1
}

// HasResidual reports whether s deals damage to its bearer at end of turn.
func HasResidual(s Status) bool {
	return s == Poison || s == Burn
}

// ResidualDamage returns the end-of-turn damage s deals to a bearer with maxHP.
//
// Precondition: maxHP >= 0.
// Postcondition: returns 0 when HasResidual(s) is false; otherwise
// max(1, floor(maxHP / m.ResidualDivisor)).
func ResidualDamage(s Status, maxHP int, m ruleset.Mechanics) int {
	if !HasResidual(s) {
		return 0
	}
	dmg := maxHP / m.ResidualDivisor
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}
