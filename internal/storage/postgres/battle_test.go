package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battlesim/internal/game/combat"
	"github.com/cory-johannsen/battlesim/internal/game/dice"
	"github.com/cory-johannsen/battlesim/internal/game/roster"
	"github.com/cory-johannsen/battlesim/internal/game/ruleset"
	"github.com/cory-johannsen/battlesim/internal/storage/postgres"
	"github.com/cory-johannsen/battlesim/internal/testutil"
)

func simulate(t *testing.T, a, b string) combat.Result {
	t.Helper()
	rules := ruleset.Default()
	r, err := roster.Default(rules)
	require.NoError(t, err)
	ta, err := r.Lookup(a)
	require.NoError(t, err)
	tb, err := r.Lookup(b)
	require.NoError(t, err)
	return combat.NewEngine(rules, dice.NewCryptoSource(), nil).Simulate(ta, tb, 50, 50)
}

func TestBattleRepository_SaveAndGet(t *testing.T) {
	repo := testutil.NewArchive(t)
	ctx := context.Background()

	res := simulate(t, "Pikachu", "Squirtle")
	require.NoError(t, repo.Save(ctx, res))

	got, err := repo.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res, got)

	assert.ErrorIs(t, repo.Save(ctx, res), postgres.ErrBattleExists)
}

func TestBattleRepository_GetNotFound(t *testing.T) {
	repo := testutil.NewArchive(t)
	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, postgres.ErrBattleNotFound)
}

func TestBattleRepository_SaveRejectsNilID(t *testing.T) {
	repo := testutil.NewArchive(t)
	res := simulate(t, "Mew", "Onix")
	res.ID = uuid.Nil
	assert.Error(t, repo.Save(context.Background(), res))
}

func TestBattleRepository_ListRecentAndTally(t *testing.T) {
	repo := testutil.NewArchive(t)
	ctx := context.Background()

	var want combat.Tally
	for i := 0; i < 5; i++ {
		res := simulate(t, "Charmander", "Bulbasaur")
		require.NoError(t, repo.Save(ctx, res))
		want.Add(res)
	}
	require.NoError(t, repo.Save(ctx, simulate(t, "Bulbasaur", "Charmander")))

	recent, err := repo.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	for i := 1; i < len(recent); i++ {
		assert.False(t, recent[i].CreatedAt.After(recent[i-1].CreatedAt))
	}

	tally, err := repo.TallyMatchup(ctx, "charmander", " BULBASAUR ")
	require.NoError(t, err)
	assert.Equal(t, want, tally)

	empty, err := repo.TallyMatchup(ctx, "Mew", "Mewtwo")
	require.NoError(t, err)
	assert.Zero(t, empty.Battles)

	_, err = repo.ListRecent(ctx, 0)
	assert.Error(t, err)
}
