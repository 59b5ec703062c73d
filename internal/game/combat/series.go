package combat

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Matchup names the two templates and levels of a repeated battle.
type Matchup struct {
	A      Template
	B      Template
	LevelA int
	LevelB int
}

// Tally aggregates the outcomes of a series.
type Tally struct {
	Battles    int    `json:"battles"`
	Wins       [2]int `json:"wins"`
	Draws      int    `json:"draws"`
	TotalTurns int    `json:"total_turns"`
}

// Add records one result.
func (t *Tally) Add(r Result) {
	t.Battles++
	t.TotalTurns += r.Turns
	if r.Draw() {
		t.Draws++
		return
	}
	t.Wins[r.Winner]++
}

// WinRate returns the fraction of battles won by side.
// Postcondition: Returns 0 when no battles were recorded.
func (t Tally) WinRate(side Side) float64 {
	if t.Battles == 0 || (side != SideA && side != SideB) {
		return 0
	}
	return float64(t.Wins[side]) / float64(t.Battles)
}

// MeanTurns returns the average battle length.
func (t Tally) MeanTurns() float64 {
	if t.Battles == 0 {
		return 0
	}
	return float64(t.TotalTurns) / float64(t.Battles)
}

// RunSeries simulates m n times on at most workers goroutines. observe, when
// non-nil, is called with every result; calls are serialised. The first error
// returned by observe, or cancellation of ctx, stops the series and is
// returned along with the tally of the battles completed so far.
//
// Precondition: n >= 0; workers >= 1.
func (e *Engine) RunSeries(ctx context.Context, m Matchup, n, workers int, observe func(Result) error) (Tally, error) {
	if n < 0 {
		return Tally{}, fmt.Errorf("combat: series length must be >= 0, got %d", n)
	}
	if workers < 1 {
		return Tally{}, fmt.Errorf("combat: series workers must be >= 1, got %d", workers)
	}

	var (
		mu    sync.Mutex
		tally Tally
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := e.Simulate(m.A, m.B, m.LevelA, m.LevelB)
			mu.Lock()
			defer mu.Unlock()
			tally.Add(res)
			if observe != nil {
				return observe(res)
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	e.logger.Debug("series finished",
		zap.Int("requested", n),
		zap.Int("battles", tally.Battles),
		zap.Int("wins_a", tally.Wins[SideA]),
		zap.Int("wins_b", tally.Wins[SideB]),
		zap.Int("draws", tally.Draws),
		zap.Error(err),
	)
	if err != nil {
		return tally, fmt.Errorf("running series: %w", err)
	}
	return tally, nil
}
