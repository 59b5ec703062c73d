package roster_test

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battlesim/internal/game/combat"
	"github.com/cory-johannsen/battlesim/internal/game/moveset"
	"github.com/cory-johannsen/battlesim/internal/game/roster"
	"github.com/cory-johannsen/battlesim/internal/game/ruleset"
)

func resolver(t *testing.T) *moveset.Resolver {
	t.Helper()
	r, err := moveset.Default(ruleset.Default())
	require.NoError(t, err)
	return r
}

func TestDefault_Loads(t *testing.T) {
	rules := ruleset.Default()
	r, err := roster.Default(rules)
	require.NoError(t, err)
	assert.Equal(t, 28, r.Len())

	names := r.Names()
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "Pikachu")

	for _, name := range names {
		tmpl, err := r.Lookup(name)
		require.NoError(t, err)
		require.Len(t, tmpl.Moves, moveset.Size, name)
		for _, k := range tmpl.Moves {
			_, ok := rules.LookupMove(k)
			assert.True(t, ok, "%s: unknown move %q", name, k)
		}
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	r, err := roster.Default(ruleset.Default())
	require.NoError(t, err)

	p, err := r.Lookup("  PIKACHU ")
	require.NoError(t, err)
	assert.Equal(t, "Pikachu", p.Name)
	assert.Equal(t, []string{"electric"}, p.Types)
	assert.Equal(t, combat.Stats{HP: 35, Attack: 55, Defense: 40, Speed: 90, SpecialAttack: 50, SpecialDefense: 50}, p.Stats)
	assert.Equal(t, []string{"thunderbolt", "thunder_shock", "thunder", "tackle"}, p.Moves)
}

func TestLookup_ListedMovesKept(t *testing.T) {
	r, err := roster.Default(ruleset.Default())
	require.NoError(t, err)

	eevee, err := r.Lookup("eevee")
	require.NoError(t, err)
	assert.Equal(t, []string{"body_slam", "tackle", "hyper_beam", "brick_break"}, eevee.Moves)

	onix, err := r.Lookup("onix")
	require.NoError(t, err)
	assert.Equal(t, []string{"rock_slide", "stone_edge", "body_slam", "tackle"}, onix.Moves)
}

func TestLookup_NotFound(t *testing.T) {
	r, err := roster.Default(ruleset.Default())
	require.NoError(t, err)
	_, err = r.Lookup("Agumon")
	require.Error(t, err)
	assert.ErrorIs(t, err, roster.ErrNotFound)
	assert.Contains(t, err.Error(), "Agumon")
}

func TestLookup_ReturnsCopy(t *testing.T) {
	r, err := roster.Default(ruleset.Default())
	require.NoError(t, err)
	first, err := r.Lookup("mew")
	require.NoError(t, err)
	first.Moves[0] = "splash"
	first.Types[0] = "dark"

	second, err := r.Lookup("mew")
	require.NoError(t, err)
	assert.Equal(t, "psychic", second.Moves[0])
	assert.Equal(t, "psychic", second.Types[0])
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(`
name: Vulpix
types: [fire]
stats: {hp: 38, attack: 41, defense: 40, special_attack: 50, special_defense: 65, speed: 65}
status: burn
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))

	r, err := roster.LoadDir(dir, resolver(t))
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())

	v, err := r.Lookup("vulpix")
	require.NoError(t, err)
	assert.Equal(t, "burn", v.Status)
	assert.Equal(t, []string{"flamethrower", "fire_blast", "ember", "psychic"}, v.Moves)
}

func TestLoadFS_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		want string
	}{
		{"too many types", "name: Chimera\ntypes: [fire, water, grass]\n", "1 or 2 types"},
		{"no name", "types: [fire]\n", "name must not be empty"},
		{"negative stat", "name: X\ntypes: [fire]\nstats: {speed: -1}\n", "speed"},
		{"unknown field", "name: X\ntypes: [fire]\nability: blaze\n", "ability"},
		{"duplicate", "name: Mew\ntypes: [psychic]\n---\nname: mew\ntypes: [psychic]\n", "duplicate"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fsys := fstest.MapFS{"roster/bad.yaml": {Data: []byte(tc.file)}}
			_, err := roster.LoadFS(fsys, "roster", resolver(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadDir_Missing(t *testing.T) {
	_, err := roster.LoadDir(filepath.Join(t.TempDir(), "absent"), resolver(t))
	assert.Error(t, err)
}

func TestRoster_ImplementsProvider(t *testing.T) {
	r, err := roster.New(nil, resolver(t))
	require.NoError(t, err)
	var p roster.Provider = r
	_, err = p.Lookup("anyone")
	assert.ErrorIs(t, err, roster.ErrNotFound)
}
