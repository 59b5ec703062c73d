package combat

import (
	"math"

	"github.com/cory-johannsen/battlesim/internal/game/condition"
	"github.com/cory-johannsen/battlesim/internal/game/dice"
	"github.com/cory-johannsen/battlesim/internal/game/ruleset"
)

// DamageResult holds the outcome of one damage resolution.
type DamageResult struct {
	// Damage is the HP the hit removes, after the per-hit cap.
	Damage int
	// Critical is true when the critical multiplier was applied.
	Critical bool
	// Effectiveness is the product of the type multipliers against the defender.
	Effectiveness float64
	// STAB is true when the move type matches one of the attacker's types.
	STAB bool
}

// DamageFormula evaluates
//
//	floor((((2*level/5 + 2) * power * attack/defense) / 50 + 2) * modifier)
//
// in floating point, raises the result to 1 when power > 0, and caps it at cap.
// A non-positive defense is treated as 1 and a negative attack as 0.
//
// Postcondition: 0 <= result <= cap; result >= 1 when power > 0 and cap >= 1.
func DamageFormula(level, power, attack, defense int, modifier float64, cap int) int {
	if defense <= 0 {
		defense = 1
	}
	if attack < 0 {
		attack = 0
	}
	base := ((2*float64(level)/5+2)*float64(power)*float64(attack)/float64(defense))/50 + 2
	// Clamp in float64 so out-of-range levels saturate at the cap.
	dmg := math.Floor(base * modifier)
	if power > 0 && dmg < 1 {
		dmg = 1
	}
	if dmg < 0 {
		dmg = 0
	}
	if dmg > float64(cap) {
		dmg = float64(cap)
	}
	return int(dmg)
}

// ResolveDamage computes the damage attacker deals to defender with move.
// Moves with zero power bypass the formula and draw nothing from src.
// Otherwise the critical check is drawn first, then the random factor.
// A burned attacker's physical damage is scaled before the cap.
//
// Precondition: rules, attacker, defender, and src must be non-nil.
// Postcondition: Damage >= 0 and Damage <= rules.Mechanics().DamageCap.
func ResolveDamage(rules *ruleset.Rules, attacker, defender *Combatant, move ruleset.Move, src dice.Source) DamageResult {
	m := rules.Mechanics()
	res := DamageResult{
		Effectiveness: rules.EffectivenessAgainst(move.Type, defender.Types()),
		STAB:          attacker.HasType(move.Type),
	}
	if move.Power == 0 {
		return res
	}

	stab := 1.0
	if res.STAB {
		stab = m.STABMultiplier
	}
	res.Critical = dice.Chance(src, m.CriticalChance)
	crit := 1.0
	if res.Critical {
		crit = m.CriticalMultiplier
	}
	randomFactor := dice.Uniform(src, m.RandomFactorMin, m.RandomFactorMax)
	burn := condition.DamageFactor(attacker.Status, move.Category, m)

	modifier := stab * res.Effectiveness * crit * randomFactor * burn
	res.Damage = DamageFormula(
		attacker.Level,
		move.Power,
		attacker.offense(move.Category),
		defender.defense(move.Category),
		modifier,
		m.DamageCap,
	)
	return res
}

// DamageDescription renders the announcer text for a hit.
//
// Postcondition: Returns "" for a neutral non-critical hit.
func DamageDescription(effectiveness float64, critical bool) string {
	var parts []string
	if critical {
		parts = append(parts, "A critical hit!")
	}
	switch {
	case effectiveness > 1:
		parts = append(parts, "It's super effective!")
	case effectiveness > 0 && effectiveness < 1:
		parts = append(parts, "It's not very effective...")
	case effectiveness == 0:
		parts = append(parts, "It has no effect...")
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}
