package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/battlesim/internal/game/combat"
)

// ErrBattleNotFound is returned when a battle lookup yields no results.
var ErrBattleNotFound = errors.New("battle not found")

// ErrBattleExists is returned when saving a result whose ID is already archived.
var ErrBattleExists = errors.New("battle already archived")

// BattleSummary is one archived battle without its log.
type BattleSummary struct {
	ID         uuid.UUID   `json:"id"`
	CombatantA string      `json:"combatant_a"`
	CombatantB string      `json:"combatant_b"`
	LevelA     int         `json:"level_a"`
	LevelB     int         `json:"level_b"`
	Winner     combat.Side `json:"winner"`
	Turns      int         `json:"turns"`
	FinalHPA   int         `json:"final_hp_a"`
	FinalHPB   int         `json:"final_hp_b"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Summarize derives the summary columns stored alongside a result.
func Summarize(res combat.Result) BattleSummary {
	return BattleSummary{
		ID:         res.ID,
		CombatantA: res.Sides[combat.SideA].Name,
		CombatantB: res.Sides[combat.SideB].Name,
		LevelA:     res.Sides[combat.SideA].Level,
		LevelB:     res.Sides[combat.SideB].Level,
		Winner:     res.Winner,
		Turns:      res.Turns,
		FinalHPA:   res.Sides[combat.SideA].FinalHP,
		FinalHPB:   res.Sides[combat.SideB].FinalHP,
	}
}

// BattleRepository provides battle archive operations.
type BattleRepository struct {
	db *pgxpool.Pool
}

// NewBattleRepository creates a BattleRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewBattleRepository(db *pgxpool.Pool) *BattleRepository {
	return &BattleRepository{db: db}
}

// Save archives res, including its full log as JSONB.
//
// Precondition: res.ID must be non-zero and res.Turns >= 1.
// Postcondition: Returns nil once the row is committed, or ErrBattleExists if
// res.ID was archived before.
func (r *BattleRepository) Save(ctx context.Context, res combat.Result) error {
	if res.ID == uuid.Nil {
		return errors.New("saving battle: result has no id")
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding battle %s: %w", res.ID, err)
	}
	s := Summarize(res)
	_, err = r.db.Exec(ctx, `
		INSERT INTO battles
			(id, combatant_a, combatant_b, level_a, level_b, winner, turns,
			 final_hp_a, final_hp_b, result)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		s.ID, s.CombatantA, s.CombatantB, s.LevelA, s.LevelB, s.Winner.String(), s.Turns,
		s.FinalHPA, s.FinalHPB, payload,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrBattleExists
		}
		return fmt.Errorf("inserting battle: %w", err)
	}
	return nil
}

// Get returns the archived result with the given ID.
//
// Postcondition: Returns the decoded result or ErrBattleNotFound.
func (r *BattleRepository) Get(ctx context.Context, id uuid.UUID) (combat.Result, error) {
	var payload []byte
	err := r.db.QueryRow(ctx, `SELECT result FROM battles WHERE id = $1`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return combat.Result{}, ErrBattleNotFound
		}
		return combat.Result{}, fmt.Errorf("querying battle: %w", err)
	}
	var res combat.Result
	if err := json.Unmarshal(payload, &res); err != nil {
		return combat.Result{}, fmt.Errorf("decoding battle %s: %w", id, err)
	}
	return res, nil
}

// ListRecent returns up to limit summaries, newest first.
//
// Precondition: limit must be > 0.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *BattleRepository) ListRecent(ctx context.Context, limit int) ([]BattleSummary, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("listing battles: limit must be > 0, got %d", limit)
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, combatant_a, combatant_b, level_a, level_b, winner, turns,
		       final_hp_a, final_hp_b, created_at
		FROM battles ORDER BY created_at DESC, id LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing battles: %w", err)
	}
	defer rows.Close()

	var out []BattleSummary
	for rows.Next() {
		var s BattleSummary
		var winner string
		if err := rows.Scan(
			&s.ID, &s.CombatantA, &s.CombatantB, &s.LevelA, &s.LevelB, &winner, &s.Turns,
			&s.FinalHPA, &s.FinalHPB, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning battle: %w", err)
		}
		if err := s.Winner.UnmarshalText([]byte(winner)); err != nil {
			return nil, fmt.Errorf("scanning battle %s: %w", s.ID, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating battles: %w", err)
	}
	return out, nil
}

// TallyMatchup aggregates every archived battle between a (side A) and b
// (side B). Names match case-insensitively; the reverse pairing is not counted.
//
// Postcondition: Returns a zero Tally when nothing matches.
func (r *BattleRepository) TallyMatchup(ctx context.Context, a, b string) (combat.Tally, error) {
	rows, err := r.db.Query(ctx, `
		SELECT winner, COUNT(*), COALESCE(SUM(turns), 0)
		FROM battles
		WHERE lower(combatant_a) = $1 AND lower(combatant_b) = $2
		GROUP BY winner`,
		strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b)),
	)
	if err != nil {
		return combat.Tally{}, fmt.Errorf("tallying matchup: %w", err)
	}
	defer rows.Close()

	var t combat.Tally
	for rows.Next() {
		var (
			winner     string
			count, sum int64
		)
		if err := rows.Scan(&winner, &count, &sum); err != nil {
			return combat.Tally{}, fmt.Errorf("scanning tally: %w", err)
		}
		if err := addWinnerCount(&t, winner, int(count), int(sum)); err != nil {
			return combat.Tally{}, err
		}
	}
	if err := rows.Err(); err != nil {
		return combat.Tally{}, fmt.Errorf("iterating tally: %w", err)
	}
	return t, nil
}

func addWinnerCount(t *combat.Tally, winner string, count, turns int) error {
	var side combat.Side
	if err := side.UnmarshalText([]byte(winner)); err != nil {
		return fmt.Errorf("tallying matchup: %w", err)
	}
	t.Battles += count
	t.TotalTurns += turns
	if side == combat.NoSide {
		t.Draws += count
		return nil
	}
	t.Wins[side] += count
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
