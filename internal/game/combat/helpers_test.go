package combat_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battlesim/internal/game/combat"
	"github.com/cory-johannsen/battlesim/internal/game/dice"
	"github.com/cory-johannsen/battlesim/internal/game/ruleset"
)

// maxSrc returns n-1 for every draw: no critical hits, no exploration, no
// paralysis skip, a random factor of 1.0, and speed ties go to side B.
type maxSrc struct{}

func (maxSrc) Intn(n int) int { return n - 1 }

// scriptSrc replays vals in order (clamped into [0, n)) and records every
// requested bound. Once vals is exhausted it behaves like maxSrc.
type scriptSrc struct {
	mu    sync.Mutex
	vals  []int
	calls []int
}

func (s *scriptSrc) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, n)
	if len(s.vals) == 0 {
		return n - 1
	}
	v := s.vals[0]
	s.vals = s.vals[1:]
	if v >= n {
		v = n - 1
	}
	return v
}

func newSeededSrc(seed uint64) dice.Source { return dice.NewSeededSource(seed) }

// noDrawSrc fails the test if any draw is made.
type noDrawSrc struct{ t *testing.T }

func (s noDrawSrc) Intn(n int) int {
	s.t.Helper()
	s.t.Fatalf("unexpected draw with n=%d", n)
	return 0
}

func withCap(t *testing.T, cap int) *ruleset.Rules {
	t.Helper()
	m := ruleset.DefaultMechanics()
	m.DamageCap = cap
	r, err := ruleset.Default().WithMechanics(m)
	require.NoError(t, err)
	return r
}

func template(name string, types []string, s combat.Stats, moves ...string) combat.Template {
	return combat.Template{Name: name, Types: types, Stats: s, Moves: moves}
}
