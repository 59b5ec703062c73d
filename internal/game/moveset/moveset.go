// Package moveset maps a combatant's raw data to the four-move set the battle
// engine expects.
package moveset

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlesim/internal/game/combat"
	"github.com/cory-johannsen/battlesim/internal/game/ruleset"
)

// Size is the number of moves in a resolved move set.
const Size = 4

//go:embed content/movesets.yaml
var defaultTableYAML []byte

// Table is the YAML form of the resolution rules.
type Table struct {
	Overrides        map[string][]string `yaml:"overrides"`
	TypePriority     map[string][]string `yaml:"type_priority"`
	PrimaryLimit     int                 `yaml:"primary_limit"`
	SecondaryLimit   int                 `yaml:"secondary_limit"`
	SpecialCoverage  []string            `yaml:"special_coverage"`
	PhysicalCoverage []string            `yaml:"physical_coverage"`
	Filler           string              `yaml:"filler"`
}

// Resolver builds move sets from a Table checked against a move catalog.
//
// Invariant: every key the Resolver holds resolves in the catalog it was built with.
type Resolver struct {
	rules *ruleset.Rules
	tbl   Table
}

// New validates tbl against the catalog in rules and returns a Resolver.
// Keys and type names are normalised.
//
// Precondition: rules must be non-nil.
// Postcondition: Returns a Resolver or an error naming the first unknown move.
func New(tbl Table, rules *ruleset.Rules) (*Resolver, error) {
	if rules == nil {
		panic("moveset.New: rules must not be nil")
	}
	if tbl.PrimaryLimit < 0 || tbl.SecondaryLimit < 0 {
		return nil, fmt.Errorf("move-set table: limits must be >= 0")
	}

	check := func(where string, keys []string) ([]string, error) {
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			mv, ok := rules.LookupMove(k)
			if !ok {
				return nil, fmt.Errorf("move-set table: %s: unknown move %q", where, k)
			}
			out = append(out, mv.Key)
		}
		return out, nil
	}

	norm := Table{
		Overrides:      make(map[string][]string, len(tbl.Overrides)),
		TypePriority:   make(map[string][]string, len(tbl.TypePriority)),
		PrimaryLimit:   tbl.PrimaryLimit,
		SecondaryLimit: tbl.SecondaryLimit,
	}
	for name, keys := range tbl.Overrides {
		if len(keys) != Size {
			return nil, fmt.Errorf("move-set table: override %q must list %d moves, got %d", name, Size, len(keys))
		}
		ks, err := check("override "+name, keys)
		if err != nil {
			return nil, err
		}
		norm.Overrides[ruleset.NormalizeKey(name)] = ks
	}
	for typ, keys := range tbl.TypePriority {
		ks, err := check("type "+typ, keys)
		if err != nil {
			return nil, err
		}
		norm.TypePriority[ruleset.NormalizeType(typ)] = ks
	}
	var err error
	if norm.SpecialCoverage, err = check("special coverage", tbl.SpecialCoverage); err != nil {
		return nil, err
	}
	if norm.PhysicalCoverage, err = check("physical coverage", tbl.PhysicalCoverage); err != nil {
		return nil, err
	}
	filler, ok := rules.LookupMove(tbl.Filler)
	if !ok {
		return nil, fmt.Errorf("move-set table: unknown filler move %q", tbl.Filler)
	}
	norm.Filler = filler.Key

	return &Resolver{rules: rules, tbl: norm}, nil
}

// Parse decodes a Table from YAML and builds a Resolver from it.
func Parse(data []byte, rules *ruleset.Rules) (*Resolver, error) {
	var tbl Table
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tbl); err != nil {
		return nil, fmt.Errorf("parsing move-set table: %w", err)
	}
	return New(tbl, rules)
}

// LoadFile reads a move-set table from path.
func LoadFile(path string, rules *ruleset.Rules) (*Resolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	r, err := Parse(data, rules)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return r, nil
}

// Default builds a Resolver from the built-in table.
//
// Postcondition: Returns an error only if rules lacks a move the built-in table names.
func Default(rules *ruleset.Rules) (*Resolver, error) {
	return Parse(defaultTableYAML, rules)
}

// Resolve derives a move set from t's name, types and stats, ignoring t.Moves.
// A named override wins outright. Otherwise the primary type's priority moves
// come first, then the secondary type's, then coverage picked by whichever of
// special attack and attack is higher (ties go physical), padded with the filler.
//
// Postcondition: Returns exactly Size catalog keys.
func (r *Resolver) Resolve(t combat.Template) []string {
	if keys, ok := r.tbl.Overrides[ruleset.NormalizeKey(t.Name)]; ok {
		return slices.Clone(keys)
	}

	types := make([]string, 0, len(t.Types))
	for _, typ := range t.Types {
		if n := ruleset.NormalizeType(typ); n != "" {
			types = append(types, n)
		}
	}
	if len(types) == 0 {
		types = []string{"normal"}
	}

	moves := make([]string, 0, Size+1)
	moves = append(moves, limit(r.tbl.TypePriority[types[0]], r.tbl.PrimaryLimit)...)
	if len(types) > 1 {
		for _, k := range limit(r.tbl.TypePriority[types[1]], r.tbl.SecondaryLimit) {
			if !slices.Contains(moves, k) {
				moves = append(moves, k)
			}
		}
	}

	coverage := r.tbl.PhysicalCoverage
	if t.Stats.SpecialAttack > t.Stats.Attack {
		coverage = r.tbl.SpecialCoverage
	}
	for _, k := range coverage {
		if len(moves) >= Size {
			break
		}
		if !slices.Contains(moves, k) {
			moves = append(moves, k)
		}
	}
	return pad(moves, r.tbl.Filler)
}

// Fill returns a copy of t whose Moves is a full move set. Listed moves that
// resolve in the catalog are kept in order, duplicates and unknown keys are
// dropped, and the remaining slots come from Resolve.
//
// Postcondition: len(result.Moves) == Size and every entry resolves in the catalog.
func (r *Resolver) Fill(t combat.Template) combat.Template {
	out := t.Clone()
	moves := make([]string, 0, Size)
	for _, raw := range t.Moves {
		mv, ok := r.rules.LookupMove(raw)
		if !ok || slices.Contains(moves, mv.Key) {
			continue
		}
		moves = append(moves, mv.Key)
		if len(moves) == Size {
			break
		}
	}
	if len(moves) < Size {
		for _, k := range r.Resolve(t) {
			if len(moves) == Size {
				break
			}
			if !slices.Contains(moves, k) {
				moves = append(moves, k)
			}
		}
	}
	out.Moves = pad(moves, r.tbl.Filler)
	return out
}

func limit(keys []string, n int) []string {
	if len(keys) > n {
		return keys[:n]
	}
	return keys
}

// pad fills moves with filler up to Size and truncates anything beyond.
func pad(moves []string, filler string) []string {
	for len(moves) < Size {
		moves = append(moves, filler)
	}
	return moves[:Size]
}
