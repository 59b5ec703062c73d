package combat

import (
	"sort"

	"github.com/cory-johannsen/battlesim/internal/game/dice"
	"github.com/cory-johannsen/battlesim/internal/game/ruleset"
)

// ScoredMove is a candidate move with its heuristic score.
type ScoredMove struct {
	Key   string
	Score float64
}

// Selector chooses which move a combatant uses each turn.
//
// Invariant: rules and src are non-nil.
type Selector struct {
	rules *ruleset.Rules
	src   dice.Source
}

// NewSelector constructs a Selector.
//
// Precondition: rules and src must be non-nil.
func NewSelector(rules *ruleset.Rules, src dice.Source) *Selector {
	if rules == nil {
		panic("combat.NewSelector: rules must not be nil")
	}
	if src == nil {
		panic("combat.NewSelector: src must not be nil")
	}
	return &Selector{rules: rules, src: src}
}

// Rank scores every move in moves that resolves in the catalog as
// power * effectiveness * (STAB multiplier if the move type is one of
// actorTypes), sorted by descending score. Ties keep move-set order.
//
// Postcondition: every returned Key is a catalog key; unresolvable moves are dropped.
func (s *Selector) Rank(moves, actorTypes, defenderTypes []string) []ScoredMove {
	stab := s.rules.Mechanics().STABMultiplier
	ranked := make([]ScoredMove, 0, len(moves))
	for _, key := range moves {
		mv, ok := s.rules.LookupMove(key)
		if !ok {
			continue
		}
		score := float64(mv.Power) * s.rules.EffectivenessAgainst(mv.Type, defenderTypes)
		if sameType(actorTypes, mv.Type) {
			score *= stab
		}
		ranked = append(ranked, ScoredMove{Key: mv.Key, Score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked
}

// Choose returns the move key to use this turn. With the exploration chance
// a candidate is picked uniformly; otherwise the top-ranked move is used. If
// no candidate resolves, the rule table's fallback move is returned without
// drawing from the source.
//
// Postcondition: never fails; the result is always a key LookupMove resolves.
func (s *Selector) Choose(moves, actorTypes, defenderTypes []string) string {
	ranked := s.Rank(moves, actorTypes, defenderTypes)
	if len(ranked) == 0 {
		return s.rules.FallbackMove()
	}
	if dice.Chance(s.src, s.rules.Mechanics().ExplorationChance) {
		return ranked[dice.Pick(s.src, len(ranked))].Key
	}
	return ranked[0].Key
}
