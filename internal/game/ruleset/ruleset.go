// Package ruleset holds the battle rule table: the type-effectiveness chart,
// the move catalog and the mechanics constants. A Rules value is immutable once
// built and is shared read-only by the damage calculator and the action selector.
package ruleset

import (
	"fmt"
	"sort"
)

// defaultMove is returned for catalog misses so that lookups never fail.
var defaultMove = Move{Power: 50, Type: "normal", Accuracy: 100, Category: Physical}

var validMultipliers = map[float64]bool{0: true, 0.5: true, 1: true, 2: true}

// Definition is the serialised form of a rule table.
type Definition struct {
	Mechanics    Mechanics                     `yaml:"mechanics"`
	FallbackMove string                        `yaml:"fallback_move"`
	Types        map[string]map[string]float64 `yaml:"types"`
	Moves        map[string]Move               `yaml:"moves"`
}

// Rules is an immutable rule table.
//
// Invariant: every chart multiplier is one of {0, 0.5, 1, 2}; every move passes
// Validate; the fallback move is present in the catalog.
type Rules struct {
	chart     map[string]map[string]float64
	moves     map[string]Move
	mechanics Mechanics
	fallback  string
}

// New builds a Rules value from def. Type names and move keys are normalised;
// the maps in def are copied so later mutation of def does not affect the result.
//
// Postcondition: Returns a valid *Rules or an error naming the first violation.
func New(def Definition) (*Rules, error) {
	if err := def.Mechanics.Validate(); err != nil {
		return nil, err
	}

	chart := make(map[string]map[string]float64, len(def.Types))
	for atk, row := range def.Types {
		a := NormalizeType(atk)
		if a == "" {
			return nil, fmt.Errorf("type chart: attacking type must not be empty")
		}
		out := make(map[string]float64, len(row))
		for dfn, mult := range row {
			if !validMultipliers[mult] {
				return nil, fmt.Errorf("type chart: %s vs %s: multiplier must be one of [0, 0.5, 1, 2], got %v", atk, dfn, mult)
			}
			out[NormalizeType(dfn)] = mult
		}
		chart[a] = out
	}

	if len(def.Moves) == 0 {
		return nil, fmt.Errorf("move catalog must not be empty")
	}
	moves := make(map[string]Move, len(def.Moves))
	for key, m := range def.Moves {
		m.Key = NormalizeKey(key)
		m.Type = NormalizeType(m.Type)
		if m.Name == "" {
			m.Name = DisplayName(m.Key)
		}
		if err := m.Validate(); err != nil {
			return nil, err
		}
		moves[m.Key] = m
	}

	fallback := NormalizeKey(def.FallbackMove)
	if _, ok := moves[fallback]; !ok {
		return nil, fmt.Errorf("fallback_move %q is not in the move catalog", def.FallbackMove)
	}

	return &Rules{chart: chart, moves: moves, mechanics: def.Mechanics, fallback: fallback}, nil
}

// WithMechanics returns a copy of r using m in place of its mechanics.
//
// Postcondition: r is unchanged; returns an error if m is invalid.
func (r *Rules) WithMechanics(m Mechanics) (*Rules, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	cp := *r
	cp.mechanics = m
	return &cp, nil
}

// Mechanics returns the battle constants.
func (r *Rules) Mechanics() Mechanics { return r.mechanics }

// FallbackMove returns the key the action selector uses when no candidate resolves.
func (r *Rules) FallbackMove() string { return r.fallback }

// Effectiveness returns the multiplier of attackType against a single defending type.
// Unlisted pairs and unknown types are neutral.
//
// Postcondition: Returns one of {0, 0.5, 1, 2}.
func (r *Rules) Effectiveness(attackType, defendType string) float64 {
	row, ok := r.chart[NormalizeType(attackType)]
	if !ok {
		return 1
	}
	if mult, ok := row[NormalizeType(defendType)]; ok {
		return mult
	}
	return 1
}

// EffectivenessAgainst multiplies the single-type multipliers of attackType
// against every defending type. An empty defender type list is neutral.
//
// Postcondition: For one or two defending types, returns one of
// {0, 0.25, 0.5, 1, 2, 4}; any zero factor makes the product zero.
func (r *Rules) EffectivenessAgainst(attackType string, defendTypes []string) float64 {
	mult := 1.0
	for _, t := range defendTypes {
		mult *= r.Effectiveness(attackType, t)
	}
	return mult
}

// LookupMove returns the catalog entry for key.
//
// Postcondition: Returns (move, true) if key resolves, or (zero, false).
func (r *Rules) LookupMove(key string) (Move, bool) {
	m, ok := r.moves[NormalizeKey(key)]
	return m, ok
}

// Move returns the catalog entry for key, or a low-power neutral physical move
// named after key when the catalog has no such entry.
//
// Postcondition: The returned Move always passes Validate.
func (r *Rules) Move(key string) Move {
	if m, ok := r.LookupMove(key); ok {
		return m
	}
	m := defaultMove
	m.Key = NormalizeKey(key)
	m.Name = DisplayName(key)
	return m
}

// MoveKeys returns the sorted catalog keys.
func (r *Rules) MoveKeys() []string {
	keys := make([]string, 0, len(r.moves))
	for k := range r.moves {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Types returns the sorted attacking types present in the chart.
func (r *Rules) Types() []string {
	types := make([]string, 0, len(r.chart))
	for t := range r.chart {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
