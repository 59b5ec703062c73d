// Package combat implements the battle resolution engine: combatant state, the
// damage calculator, the action selector and the turn/state machine that drives
// a one-on-one battle to completion.
package combat

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/cory-johannsen/battlesim/internal/game/condition"
	"github.com/cory-johannsen/battlesim/internal/game/ruleset"
)

// Stats is a combatant's base stat block. Absent stats are zero.
type Stats struct {
	HP             int `yaml:"hp" json:"hp"`
	Attack         int `yaml:"attack" json:"attack"`
	Defense        int `yaml:"defense" json:"defense"`
	Speed          int `yaml:"speed" json:"speed"`
	SpecialAttack  int `yaml:"special_attack" json:"special_attack"`
	SpecialDefense int `yaml:"special_defense" json:"special_defense"`
}

// Template is the externally supplied description of a combatant. The engine
// never mutates a Template; each battle works on its own copy.
type Template struct {
	Name  string   `yaml:"name" json:"name"`
	Types []string `yaml:"types" json:"types"`
	Stats Stats    `yaml:"stats" json:"stats"`
	// Moves holds move catalog keys, normally exactly four.
	Moves []string `yaml:"moves" json:"moves"`
	// Status is the condition the combatant enters the battle with; unknown
	// values are treated as none.
	Status string `yaml:"status" json:"status,omitempty"`
}

// Clone returns a deep copy of t.
//
// Postcondition: the returned Template shares no slices with t.
func (t Template) Clone() Template {
	cp := t
	cp.Types = slices.Clone(t.Types)
	cp.Moves = slices.Clone(t.Moves)
	return cp
}

// Side identifies one of the two combatants in a battle.
type Side int

const (
	SideA Side = iota
	SideB
	// NoSide marks a draw.
	NoSide Side = -1
)

// String returns "a", "b", or "none".
func (s Side) String() string {
	switch s {
	case SideA:
		return "a"
	case SideB:
		return "b"
	default:
		return "none"
	}
}

// MarshalText renders the side for JSON output.
func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText parses the output of MarshalText.
func (s *Side) UnmarshalText(text []byte) error {
	switch string(text) {
	case "a":
		*s = SideA
	case "b":
		*s = SideB
	case "none":
		*s = NoSide
	default:
		return fmt.Errorf("combat: unknown side %q", text)
	}
	return nil
}

// Other returns the opposing side.
// Precondition: s is SideA or SideB.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// Combatant is the live battle state of one side.
//
// Invariant: 0 <= CurrentHP <= MaxHP; MaxHP >= 1; len(Types) >= 1.
type Combatant struct {
	Side      Side
	Template  Template
	Level     int
	MaxHP     int
	CurrentHP int
	Status    condition.Status
	// Moves holds the normalised move keys this combatant may choose from.
	Moves []string
}

// MaxHPLimit bounds a combatant's max HP.
const MaxHPLimit = math.MaxInt32

// NewCombatant builds battle state for t at the given level. Type names and
// move keys are normalised, an empty type list becomes ["normal"], negative
// stats are treated as zero and max HP is floor(hp * m.HPScale) clamped to [1, MaxHPLimit].
//
// Postcondition: CurrentHP == MaxHP >= 1; the combatant holds its own copy of t.
func NewCombatant(side Side, t Template, level int, m ruleset.Mechanics) *Combatant {
	tmpl := t.Clone()

	types := make([]string, 0, len(tmpl.Types))
	for _, typ := range tmpl.Types {
		if n := ruleset.NormalizeType(typ); n != "" {
			types = append(types, n)
		}
	}
	if len(types) == 0 {
		types = []string{"normal"}
	}
	tmpl.Types = types

	moves := make([]string, 0, len(tmpl.Moves))
	for _, mv := range tmpl.Moves {
		if k := ruleset.NormalizeKey(mv); k != "" {
			moves = append(moves, k)
		}
	}

	tmpl.Stats = clampStats(tmpl.Stats)
	scaled := math.Floor(float64(tmpl.Stats.HP) * m.HPScale)
	maxHP := MaxHPLimit
	if scaled < float64(MaxHPLimit) {
		maxHP = max(int(scaled), 1)
	}

	return &Combatant{
		Side:      side,
		Template:  tmpl,
		Level:     level,
		MaxHP:     maxHP,
		CurrentHP: maxHP,
		Status:    condition.Parse(tmpl.Status),
		Moves:     moves,
	}
}

func clampStats(s Stats) Stats {
	fields := []*int{&s.HP, &s.Attack, &s.Defense, &s.Speed, &s.SpecialAttack, &s.SpecialDefense}
	for _, f := range fields {
		if *f < 0 {
			*f = 0
		}
	}
	return s
}

// Name returns the combatant's display name.
func (c *Combatant) Name() string { return c.Template.Name }

// Types returns the combatant's normalised types.
func (c *Combatant) Types() []string { return c.Template.Types }

// HasType reports whether typ is one of the combatant's types.
func (c *Combatant) HasType(typ string) bool {
	return slices.Contains(c.Template.Types, ruleset.NormalizeType(typ))
}

// IsFainted reports whether the combatant has no HP left.
// Postcondition: Returns true iff CurrentHP == 0.
func (c *Combatant) IsFainted() bool { return c.CurrentHP <= 0 }

// ApplyDamage reduces CurrentHP by amount, flooring at zero, and returns the
// HP actually removed.
// Precondition: amount must be >= 0.
// Postcondition: CurrentHP >= 0; the return value is in [0, amount].
func (c *Combatant) ApplyDamage(amount int) int {
	before := c.CurrentHP
	c.CurrentHP -= amount
	if c.CurrentHP < 0 {
		c.CurrentHP = 0
	}
	return before - c.CurrentHP
}

// Heal restores up to amount HP, clamped at MaxHP, and returns the HP actually restored.
// Precondition: amount must be >= 0.
// Postcondition: CurrentHP <= MaxHP; the return value is >= 0.
func (c *Combatant) Heal(amount int) int {
	before := c.CurrentHP
	c.CurrentHP += amount
	if c.CurrentHP > c.MaxHP {
		c.CurrentHP = c.MaxHP
	}
	return c.CurrentHP - before
}

// EffectiveSpeed returns the speed stat after status modifiers.
func (c *Combatant) EffectiveSpeed(m ruleset.Mechanics) float64 {
	return float64(c.Template.Stats.Speed) * condition.SpeedFactor(c.Status, m)
}

// offense returns the attacking stat used for a move of the given category.
func (c *Combatant) offense(cat ruleset.Category) int {
	if cat == ruleset.Special {
		return c.Template.Stats.SpecialAttack
	}
	return c.Template.Stats.Attack
}

// defense returns the defending stat used against a move of the given category.
func (c *Combatant) defense(cat ruleset.Category) int {
	if cat == ruleset.Special {
		return c.Template.Stats.SpecialDefense
	}
	return c.Template.Stats.Defense
}

// moveNames renders the combatant's move keys as display names.
func (c *Combatant) moveNames(rules *ruleset.Rules) []string {
	names := make([]string, 0, len(c.Moves))
	for _, k := range c.Moves {
		names = append(names, rules.Move(k).Name)
	}
	return names
}

// sameType reports whether typ appears in types, ignoring case.
func sameType(types []string, typ string) bool {
	for _, t := range types {
		if strings.EqualFold(strings.TrimSpace(t), typ) {
			return true
		}
	}
	return false
}
