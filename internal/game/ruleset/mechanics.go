package ruleset

import (
	"fmt"
	"strings"
)

// Mechanics holds the numeric battle constants of a rule table.
//
// Invariant: a Mechanics value held by Rules has passed Validate.
type Mechanics struct {
	// CriticalChance is the per-hit probability of a critical hit.
	CriticalChance float64 `yaml:"critical_chance"`
	// CriticalMultiplier scales damage on a critical hit.
	CriticalMultiplier float64 `yaml:"critical_multiplier"`
	// STABMultiplier scales damage when the move type matches one of the attacker's types.
	STABMultiplier float64 `yaml:"stab_multiplier"`
	// HPScale converts base HP into battle max HP.
	HPScale float64 `yaml:"hp_scale"`
	// DamageCap is the maximum damage a single hit may deal.
	DamageCap int `yaml:"damage_cap"`
	// ResidualDivisor sets poison/burn end-of-turn damage to max_hp / ResidualDivisor (min 1).
	ResidualDivisor int `yaml:"residual_divisor"`
	// ParalysisSpeedFactor scales the speed of a paralyzed combatant.
	ParalysisSpeedFactor float64 `yaml:"paralysis_speed_factor"`
	// ParalysisSkipChance is the per-turn probability that a paralyzed combatant cannot act.
	ParalysisSkipChance float64 `yaml:"paralysis_skip_chance"`
	// BurnPhysicalFactor scales physical damage dealt by a burned attacker.
	BurnPhysicalFactor float64 `yaml:"burn_physical_factor"`
	// MaxTurns is the turn ceiling; the battle is decided on HP when it is reached.
	MaxTurns int `yaml:"max_turns"`
	// SpeedTieThreshold is the largest effective-speed difference settled by a coin flip.
	SpeedTieThreshold float64 `yaml:"speed_tie_threshold"`
	// RandomFactorMin and RandomFactorMax bound the per-hit damage variance.
	RandomFactorMin float64 `yaml:"random_factor_min"`
	RandomFactorMax float64 `yaml:"random_factor_max"`
	// ExplorationChance is the probability the action selector ignores its ranking
	// and picks uniformly among the candidate moves.
	ExplorationChance float64 `yaml:"exploration_chance"`
	// HealDivisor sets recovery moves to restore max_hp / HealDivisor.
	HealDivisor int `yaml:"heal_divisor"`
}

// DefaultMechanics returns the stock battle constants.
//
// Postcondition: The returned value passes Validate.
func DefaultMechanics() Mechanics {
	return Mechanics{
		CriticalChance:       0.0625,
		CriticalMultiplier:   2,
		STABMultiplier:       1.5,
		HPScale:              2,
		DamageCap:            35,
		ResidualDivisor:      16,
		ParalysisSpeedFactor: 0.5,
		ParalysisSkipChance:  0.25,
		BurnPhysicalFactor:   0.5,
		MaxTurns:             100,
		SpeedTieThreshold:    5,
		RandomFactorMin:      0.85,
		RandomFactorMax:      1.0,
		ExplorationChance:    0.2,
		HealDivisor:          2,
	}
}

// Validate checks all mechanics invariants.
//
// Postcondition: Returns nil if valid, or an error describing all violations.
func (m Mechanics) Validate() error {
	var errs []string
	probability := func(name string, v float64) {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Sprintf("%s must be in [0, 1], got %v", name, v))
		}
	}
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be > 0, got %v", name, v))
		}
	}

	probability("critical_chance", m.CriticalChance)
	probability("paralysis_skip_chance", m.ParalysisSkipChance)
	probability("exploration_chance", m.ExplorationChance)
	positive("critical_multiplier", m.CriticalMultiplier)
	positive("stab_multiplier", m.STABMultiplier)
	positive("hp_scale", m.HPScale)
	positive("paralysis_speed_factor", m.ParalysisSpeedFactor)
	positive("burn_physical_factor", m.BurnPhysicalFactor)
	if m.DamageCap < 1 {
		errs = append(errs, fmt.Sprintf("damage_cap must be >= 1, got %d", m.DamageCap))
	}
	if m.ResidualDivisor < 1 {
		errs = append(errs, fmt.Sprintf("residual_divisor must be >= 1, got %d", m.ResidualDivisor))
	}
	if m.HealDivisor < 1 {
		errs = append(errs, fmt.Sprintf("heal_divisor must be >= 1, got %d", m.HealDivisor))
	}
	if m.MaxTurns < 1 {
		errs = append(errs, fmt.Sprintf("max_turns must be >= 1, got %d", m.MaxTurns))
	}
	if m.SpeedTieThreshold < 0 {
		errs = append(errs, fmt.Sprintf("speed_tie_threshold must be >= 0, got %v", m.SpeedTieThreshold))
	}
	if m.RandomFactorMin <= 0 || m.RandomFactorMin > m.RandomFactorMax {
		errs = append(errs, fmt.Sprintf("random factor range must satisfy 0 < min <= max, got [%v, %v]", m.RandomFactorMin, m.RandomFactorMax))
	}

	if len(errs) > 0 {
		return fmt.Errorf("mechanics: %s", strings.Join(errs, "; "))
	}
	return nil
}
