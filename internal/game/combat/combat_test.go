package combat_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battlesim/internal/game/combat"
	"github.com/cory-johannsen/battlesim/internal/game/condition"
	"github.com/cory-johannsen/battlesim/internal/game/ruleset"
)

func TestNewCombatant_Defaults(t *testing.T) {
	m := ruleset.DefaultMechanics()
	tmpl := combat.Template{
		Name:   "Pikachu",
		Types:  []string{" Electric "},
		Stats:  combat.Stats{HP: 35, Attack: 55, Defense: 40, Speed: 90},
		Moves:  []string{"Thunder Shock", "quick-attack", ""},
		Status: "PAR",
	}
	c := combat.NewCombatant(combat.SideA, tmpl, 50, m)

	assert.Equal(t, combat.SideA, c.Side)
	assert.Equal(t, 50, c.Level)
	assert.Equal(t, 70, c.MaxHP)
	assert.Equal(t, c.MaxHP, c.CurrentHP)
	assert.Equal(t, []string{"electric"}, c.Types())
	assert.Equal(t, []string{"thunder_shock", "quick_attack"}, c.Moves)
	assert.Equal(t, condition.Paralysis, c.Status)
	assert.True(t, c.HasType("ELECTRIC"))
	assert.False(t, c.HasType("water"))
}

func TestNewCombatant_MissingFields(t *testing.T) {
	c := combat.NewCombatant(combat.SideB, combat.Template{Name: "Ditto"}, 10, ruleset.DefaultMechanics())
	assert.Equal(t, []string{"normal"}, c.Types(), "empty type list defaults to normal")
	assert.Equal(t, 1, c.MaxHP, "absent hp still yields a living combatant")
	assert.Equal(t, condition.None, c.Status)
	assert.Empty(t, c.Moves)
}

func TestNewCombatant_NegativeStatsClamped(t *testing.T) {
	tmpl := combat.Template{Name: "X", Stats: combat.Stats{HP: -10, Attack: -1, Speed: -3}}
	c := combat.NewCombatant(combat.SideA, tmpl, 1, ruleset.DefaultMechanics())
	assert.Equal(t, 1, c.MaxHP)
	assert.Equal(t, 0, c.Template.Stats.Attack)
	assert.Equal(t, 0, c.Template.Stats.Speed)
}

func TestNewCombatant_DoesNotAliasTemplate(t *testing.T) {
	tmpl := template("Eevee", []string{"normal"}, combat.Stats{HP: 55}, "tackle")
	c := combat.NewCombatant(combat.SideA, tmpl, 50, ruleset.DefaultMechanics())
	c.Moves[0] = "hyper_beam"
	c.Template.Types[0] = "fire"
	assert.Equal(t, []string{"tackle"}, tmpl.Moves)
	assert.Equal(t, []string{"normal"}, tmpl.Types)
}

func TestCombatant_ApplyDamageAndHeal(t *testing.T) {
	c := combat.NewCombatant(combat.SideA, combat.Template{Stats: combat.Stats{HP: 50}}, 50, ruleset.DefaultMechanics())
	require.Equal(t, 100, c.MaxHP)

	assert.Equal(t, 30, c.ApplyDamage(30))
	assert.Equal(t, 70, c.CurrentHP)
	assert.Equal(t, 20, c.Heal(20))
	assert.Equal(t, 90, c.CurrentHP)
	assert.Equal(t, 10, c.Heal(50), "heal clamps at max HP")
	assert.Equal(t, 100, c.CurrentHP)

	assert.Equal(t, 100, c.ApplyDamage(500), "only the remaining HP is removed")
	assert.Equal(t, 0, c.CurrentHP)
	assert.True(t, c.IsFainted())
	assert.Equal(t, 0, c.ApplyDamage(10))
}

func TestNewCombatant_MaxHPSaturates(t *testing.T) {
	m := ruleset.DefaultMechanics()
	huge := combat.NewCombatant(combat.SideA, combat.Template{Stats: combat.Stats{HP: 1 << 62}}, 50, m)
	assert.Equal(t, combat.MaxHPLimit, huge.MaxHP)
	assert.Equal(t, combat.MaxHPLimit, huge.CurrentHP)

	tiny := combat.NewCombatant(combat.SideB, combat.Template{Stats: combat.Stats{HP: 0}}, 50, m)
	assert.Equal(t, 1, tiny.MaxHP)
}

func TestCombatant_EffectiveSpeed(t *testing.T) {
	m := ruleset.DefaultMechanics()
	tmpl := combat.Template{Stats: combat.Stats{HP: 1, Speed: 90}}
	assert.Equal(t, 90.0, combat.NewCombatant(combat.SideA, tmpl, 1, m).EffectiveSpeed(m))

	tmpl.Status = "paralysis"
	assert.Equal(t, 45.0, combat.NewCombatant(combat.SideA, tmpl, 1, m).EffectiveSpeed(m))
}

func TestSide(t *testing.T) {
	assert.Equal(t, "a", combat.SideA.String())
	assert.Equal(t, "b", combat.SideB.String())
	assert.Equal(t, "none", combat.NoSide.String())
	assert.Equal(t, combat.SideB, combat.SideA.Other())
	assert.Equal(t, combat.SideA, combat.SideB.Other())

	out, err := json.Marshal(struct{ W combat.Side }{combat.NoSide})
	require.NoError(t, err)
	assert.JSONEq(t, `{"W":"none"}`, string(out))
}

func TestTemplate_Clone(t *testing.T) {
	orig := template("Onix", []string{"rock", "ground"}, combat.Stats{HP: 35}, "rock_slide")
	cp := orig.Clone()
	cp.Types[0] = "water"
	cp.Moves = append(cp.Moves, "tackle")
	assert.Equal(t, []string{"rock", "ground"}, orig.Types)
	assert.Equal(t, []string{"rock_slide"}, orig.Moves)
}
