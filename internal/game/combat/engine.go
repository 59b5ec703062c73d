package combat

import (
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/game/condition"
	"github.com/cory-johannsen/battlesim/internal/game/dice"
	"github.com/cory-johannsen/battlesim/internal/game/ruleset"
)

// SideResult is the end-of-battle summary of one combatant.
type SideResult struct {
	Name    string `json:"name"`
	Level   int    `json:"level"`
	MaxHP   int    `json:"max_hp"`
	FinalHP int    `json:"final_hp"`
	// Moves holds the display names of the move set used.
	Moves  []string `json:"moves"`
	Status string   `json:"status"`
}

// Result is the immutable outcome of one battle.
//
// Invariant: 1 <= Turns <= the turn ceiling; Winner is NoSide iff the battle is a draw.
type Result struct {
	ID     uuid.UUID     `json:"id"`
	Winner Side          `json:"winner"`
	Turns  int           `json:"turns"`
	Log    []LogEntry    `json:"log"`
	Sides  [2]SideResult `json:"sides"`
}

// Draw reports whether the battle ended without a winner.
func (r Result) Draw() bool { return r.Winner == NoSide }

// WinnerName returns the winning combatant's name, or "draw".
func (r Result) WinnerName() string {
	if r.Draw() {
		return "draw"
	}
	return r.Sides[r.Winner].Name
}

// Engine runs battles against an immutable rule table.
// Engine holds no per-battle state, so concurrent Simulate calls are safe
// provided the Source is safe for concurrent use.
type Engine struct {
	rules    *ruleset.Rules
	src      dice.Source
	logger   *zap.Logger
	selector *Selector
}

// NewEngine constructs an Engine. A nil src uses the crypto-backed source and
// a nil logger discards output.
//
// Precondition: rules must be non-nil.
func NewEngine(rules *ruleset.Rules, src dice.Source, logger *zap.Logger) *Engine {
	if rules == nil {
		panic("combat.NewEngine: rules must not be nil")
	}
	if src == nil {
		src = dice.NewCryptoSource()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		rules:    rules,
		src:      src,
		logger:   logger,
		selector: NewSelector(rules, src),
	}
}

// Rules returns the rule table the engine resolves against.
func (e *Engine) Rules() *ruleset.Rules { return e.rules }

// Simulate fights a (side A, at levelA) against b (side B, at levelB) until one
// faints or the turn ceiling is reached. Levels are not range checked.
// Identical inputs may produce different logs; all randomness comes from the
// engine's Source.
//
// Postcondition: never fails; both final HPs lie in [0, max HP].
func (e *Engine) Simulate(a, b Template, levelA, levelB int) Result {
	m := e.rules.Mechanics()
	bt := &battle{
		engine: e,
		m:      m,
		fighters: [2]*Combatant{
			NewCombatant(SideA, a, levelA, m),
			NewCombatant(SideB, b, levelB, m),
		},
	}
	id := uuid.New()
	e.logger.Debug("battle started",
		zap.Stringer("battle_id", id),
		zap.String("a", bt.fighters[SideA].Name()),
		zap.String("b", bt.fighters[SideB].Name()),
		zap.Int("level_a", levelA),
		zap.Int("level_b", levelB),
	)

	turn := 0
	for !bt.over() && turn < m.MaxTurns {
		turn++
		bt.playTurn(turn)
	}

	res := Result{
		ID:     id,
		Winner: bt.winner(),
		Turns:  turn,
		Log:    bt.log,
	}
	for _, c := range bt.fighters {
		res.Sides[c.Side] = SideResult{
			Name:    c.Name(),
			Level:   c.Level,
			MaxHP:   c.MaxHP,
			FinalHP: c.CurrentHP,
			Moves:   c.moveNames(e.rules),
			Status:  c.Status.String(),
		}
	}
	e.logger.Debug("battle finished",
		zap.Stringer("battle_id", id),
		zap.String("winner", res.WinnerName()),
		zap.Int("turns", turn),
		zap.Int("log_entries", len(res.Log)),
	)
	return res
}

// battle is the private state of one Simulate call.
type battle struct {
	engine   *Engine
	m        ruleset.Mechanics
	fighters [2]*Combatant
	log      []LogEntry
}

func (bt *battle) over() bool {
	return bt.fighters[SideA].IsFainted() || bt.fighters[SideB].IsFainted()
}

// order returns the sides in acting order for this turn. Speeds within the
// tie threshold are settled by a coin flip, heads meaning side A first.
func (bt *battle) order() [2]Side {
	sa := bt.fighters[SideA].EffectiveSpeed(bt.m)
	sb := bt.fighters[SideB].EffectiveSpeed(bt.m)
	if math.Abs(sa-sb) <= bt.m.SpeedTieThreshold {
		if dice.CoinFlip(bt.engine.src) {
			return [2]Side{SideA, SideB}
		}
		return [2]Side{SideB, SideA}
	}
	if sa > sb {
		return [2]Side{SideA, SideB}
	}
	return [2]Side{SideB, SideA}
}

func (bt *battle) playTurn(turn int) {
	for _, side := range bt.order() {
		if bt.over() {
			break
		}
		bt.act(turn, bt.fighters[side], bt.fighters[side.Other()])
	}
	for _, c := range bt.fighters {
		bt.applyResidual(turn, c)
	}
}

// act resolves one combatant's action against target.
func (bt *battle) act(turn int, actor, target *Combatant) {
	src := bt.engine.src
	rules := bt.engine.rules

	if dice.Chance(src, condition.SkipChance(actor.Status, bt.m)) {
		bt.append(LogEntry{
			Turn:          turn,
			Action:        ActionParalyzed,
			Move:          MoveParalyzed,
			Effectiveness: 1,
		}, actor, target)
		return
	}

	key := bt.engine.selector.Choose(actor.Moves, actor.Types(), target.Types())
	move := rules.Move(key)
	entry := LogEntry{
		Turn:          turn,
		Move:          move.Name,
		MoveType:      move.Type,
		Power:         move.Power,
		Category:      string(move.Category),
		Effectiveness: 1,
	}

	if dice.Percent(src) > move.Accuracy {
		entry.Action = ActionMiss
		bt.append(entry, actor, target)
		return
	}

	if move.Heals {
		restored := actor.Heal(actor.MaxHP / bt.m.HealDivisor)
		entry.Action = ActionHeal
		entry.Damage = -restored
		bt.append(entry, actor, actor)
		return
	}

	dmg := ResolveDamage(rules, actor, target, move, src)
	entry.Action = ActionAttack
	entry.Damage = target.ApplyDamage(dmg.Damage)
	entry.Effectiveness = dmg.Effectiveness
	entry.Critical = dmg.Critical
	entry.STAB = dmg.STAB
	bt.append(entry, actor, target)
}

func (bt *battle) applyResidual(turn int, c *Combatant) {
	if c.IsFainted() || !condition.HasResidual(c.Status) {
		return
	}
	dmg := condition.ResidualDamage(c.Status, c.MaxHP, bt.m)
	entry := LogEntry{
		Turn:          turn,
		Action:        ActionPoisonDamage,
		Move:          MovePoison,
		Damage:        c.ApplyDamage(dmg),
		Effectiveness: 1,
	}
	if c.Status == condition.Burn {
		entry.Action = ActionBurnDamage
		entry.Move = MoveBurn
	}
	bt.append(entry, c, c)
}

// append fills the actor and affected fields of e and records it.
func (bt *battle) append(e LogEntry, actor, affected *Combatant) {
	e.Actor = actor.Name()
	e.ActorSide = actor.Side
	e.Affected = affected.Name()
	e.AffectedSide = affected.Side
	e.AffectedHP = affected.CurrentHP
	e.Narrative = narrate(e)
	bt.log = append(bt.log, e)
}

// winner applies the outcome rules: a sole survivor wins; otherwise equal HP
// is a draw and higher HP wins.
func (bt *battle) winner() Side {
	a, b := bt.fighters[SideA].CurrentHP, bt.fighters[SideB].CurrentHP
	switch {
	case a > 0 && b == 0:
		return SideA
	case b > 0 && a == 0:
		return SideB
	case a == b:
		return NoSide
	case a > b:
		return SideA
	default:
		return SideB
	}
}
