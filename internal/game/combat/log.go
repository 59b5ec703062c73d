package combat

import "fmt"

// ActionKind classifies a log entry.
type ActionKind int

const (
	ActionAttack ActionKind = iota
	ActionMiss
	ActionParalyzed
	ActionHeal
	ActionPoisonDamage
	ActionBurnDamage
)

// Sentinel move names for entries that are not caused by a move.
const (
	MoveParalyzed = "(paralyzed)"
	MovePoison    = "(Poison)"
	MoveBurn      = "(Burn)"
)

// String returns the wire name of the action kind.
func (k ActionKind) String() string {
	switch k {
	case ActionAttack:
		return "attack"
	case ActionMiss:
		return "miss"
	case ActionParalyzed:
		return "paralyzed"
	case ActionHeal:
		return "heal"
	case ActionPoisonDamage:
		return "poison_damage"
	case ActionBurnDamage:
		return "burn_damage"
	default:
		return "unknown"
	}
}

// MarshalText renders the action kind for JSON output.
func (k ActionKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText parses the output of MarshalText.
func (k *ActionKind) UnmarshalText(text []byte) error {
	for c := ActionAttack; c <= ActionBurnDamage; c++ {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("combat: unknown action %q", text)
}

// LogEntry records one event of a battle. Damage is signed: healing is negative.
// AffectedHP is the HP of the Affected combatant after the event, so the log
// alone reconstructs both HP trajectories.
type LogEntry struct {
	Turn          int        `json:"turn"`
	Actor         string     `json:"actor"`
	ActorSide     Side       `json:"actor_side"`
	Action        ActionKind `json:"action"`
	Move          string     `json:"move"`
	MoveType      string     `json:"move_type,omitempty"`
	Power         int        `json:"power,omitempty"`
	Category      string     `json:"category,omitempty"`
	Damage        int        `json:"damage"`
	Affected      string     `json:"affected"`
	AffectedSide  Side       `json:"affected_side"`
	AffectedHP    int        `json:"affected_hp"`
	Effectiveness float64    `json:"effectiveness"`
	Critical      bool       `json:"critical"`
	STAB          bool       `json:"stab"`
	Narrative     string     `json:"narrative"`
}

func narrate(e LogEntry) string {
	switch e.Action {
	case ActionAttack:
		s := fmt.Sprintf("%s used %s!", e.Actor, e.Move)
		if e.Power == 0 {
			return s + " But nothing happened."
		}
		if d := DamageDescription(e.Effectiveness, e.Critical); d != "" {
			s += " " + d
		}
		return s
	case ActionMiss:
		return fmt.Sprintf("%s used %s, but it missed!", e.Actor, e.Move)
	case ActionParalyzed:
		return fmt.Sprintf("%s is paralyzed! It can't move!", e.Actor)
	case ActionHeal:
		return fmt.Sprintf("%s used %s and restored %d HP.", e.Actor, e.Move, -e.Damage)
	case ActionPoisonDamage:
		return fmt.Sprintf("%s is hurt by poison!", e.Actor)
	case ActionBurnDamage:
		return fmt.Sprintf("%s is hurt by its burn!", e.Actor)
	default:
		return ""
	}
}
