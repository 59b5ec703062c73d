// Package main provides the battle simulator CLI: one battle with its
// narrative, or a series of battles with aggregate statistics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/config"
	"github.com/cory-johannsen/battlesim/internal/game/combat"
	"github.com/cory-johannsen/battlesim/internal/game/dice"
	"github.com/cory-johannsen/battlesim/internal/game/moveset"
	"github.com/cory-johannsen/battlesim/internal/game/roster"
	"github.com/cory-johannsen/battlesim/internal/game/ruleset"
	"github.com/cory-johannsen/battlesim/internal/observability"
	"github.com/cory-johannsen/battlesim/internal/storage/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("simulate: %v", err)
	}
}

type options struct {
	configPath string
	a, b       string
	levelA     int
	levelB     int
	runs       int
	seed       uint64
	asJSON     bool
	archive    bool
	list       bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "path to configuration file (empty uses defaults and BATTLESIM_* env)")
	fs.StringVar(&o.a, "a", "", "combatant on side A")
	fs.StringVar(&o.b, "b", "", "combatant on side B")
	fs.IntVar(&o.levelA, "level-a", 0, "level of side A (0 = battle.level_a)")
	fs.IntVar(&o.levelB, "level-b", 0, "level of side B (0 = battle.level_b)")
	fs.IntVar(&o.runs, "runs", 1, "number of battles; more than one prints a tally")
	fs.Uint64Var(&o.seed, "seed", 0, "seed for reproducible battles (0 = crypto/rand)")
	fs.BoolVar(&o.asJSON, "json", false, "print JSON instead of text")
	fs.BoolVar(&o.archive, "archive", false, "store results in the database (also enabled by archive.enabled)")
	fs.BoolVar(&o.list, "list", false, "list the roster and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if o.list {
		return o, nil
	}
	if o.a == "" || o.b == "" {
		return options{}, errors.New("both -a and -b are required")
	}
	if o.runs < 1 {
		return options{}, fmt.Errorf("-runs must be >= 1, got %d", o.runs)
	}
	if o.levelA < 0 || o.levelB < 0 {
		return options{}, errors.New("levels must not be negative")
	}
	return o, nil
}

// run is the whole CLI behind main, writing results to stdout.
//
// Postcondition: Returns an error wrapping roster.ErrNotFound when either
// combatant is unknown.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	start := time.Now()

	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.archive {
		cfg.Archive.Enabled = true
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	rules, err := loadRules(cfg.Battle)
	if err != nil {
		return err
	}
	provider, err := loadRoster(cfg.Battle, rules)
	if err != nil {
		return err
	}
	logger.Debug("content loaded",
		zap.Int("moves", len(rules.MoveKeys())),
		zap.Int("combatants", provider.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)

	if opts.list {
		for _, name := range provider.Names() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	}

	m, err := matchup(provider, opts, cfg.Battle)
	if err != nil {
		return err
	}

	src := dice.NewCryptoSource()
	if opts.seed != 0 {
		src = dice.NewSeededSource(opts.seed)
	}
	if cfg.Battle.LogDraws {
		src = dice.NewLoggedSource(src, logger)
	}
	engine := combat.NewEngine(rules, src, logger)

	observe, closeArchive, err := archiver(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeArchive()

	if opts.runs == 1 {
		res := engine.Simulate(m.A, m.B, m.LevelA, m.LevelB)
		if observe != nil {
			if err := observe(res); err != nil {
				return err
			}
		}
		return printResult(stdout, res, opts.asJSON)
	}

	tally, err := engine.RunSeries(ctx, m, opts.runs, cfg.Battle.SeriesWorkers, observe)
	if err != nil {
		return err
	}
	return printTally(stdout, m, tally, opts.asJSON)
}

func loadRules(b config.BattleConfig) (*ruleset.Rules, error) {
	rules := ruleset.Default()
	if b.RulesFile != "" {
		var err error
		if rules, err = ruleset.LoadFile(b.RulesFile); err != nil {
			return nil, err
		}
	}

	m := rules.Mechanics()
	if b.MaxTurns > 0 {
		m.MaxTurns = b.MaxTurns
	}
	if b.DamageCap > 0 {
		m.DamageCap = b.DamageCap
	}
	if b.SpeedTieThreshold >= 0 {
		m.SpeedTieThreshold = b.SpeedTieThreshold
	}
	rules, err := rules.WithMechanics(m)
	if err != nil {
		return nil, fmt.Errorf("applying battle config: %w", err)
	}
	return rules, nil
}

func loadRoster(b config.BattleConfig, rules *ruleset.Rules) (*roster.Roster, error) {
	var (
		resolver *moveset.Resolver
		err      error
	)
	if b.MovesetFile != "" {
		resolver, err = moveset.LoadFile(b.MovesetFile, rules)
	} else {
		resolver, err = moveset.Default(rules)
	}
	if err != nil {
		return nil, err
	}
	if b.RosterDir != "" {
		return roster.LoadDir(b.RosterDir, resolver)
	}
	return roster.Builtin(resolver)
}

func matchup(p roster.Provider, opts options, b config.BattleConfig) (combat.Matchup, error) {
	a, err := p.Lookup(opts.a)
	if err != nil {
		return combat.Matchup{}, err
	}
	other, err := p.Lookup(opts.b)
	if err != nil {
		return combat.Matchup{}, err
	}
	m := combat.Matchup{A: a, B: other, LevelA: b.LevelA, LevelB: b.LevelB}
	if opts.levelA > 0 {
		m.LevelA = opts.levelA
	}
	if opts.levelB > 0 {
		m.LevelB = opts.levelB
	}
	return m, nil
}

// archiver returns the result observer for the configured archive, or nil
// when archiving is disabled. The returned close func is always safe to call.
func archiver(ctx context.Context, cfg config.Config, logger *zap.Logger) (func(combat.Result) error, func(), error) {
	if !cfg.Archive.Enabled {
		return nil, func() {}, nil
	}
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to archive: %w", err)
	}
	logger.Info("archive connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)
	repo := pool.Battles()
	observe := func(res combat.Result) error {
		if err := repo.Save(ctx, res); err != nil {
			return fmt.Errorf("archiving battle %s: %w", res.ID, err)
		}
		return nil
	}
	return observe, pool.Close, nil
}

func printResult(w io.Writer, res combat.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	a, b := res.Sides[combat.SideA], res.Sides[combat.SideB]
	fmt.Fprintf(w, "%s (Lv %d, %d HP) vs %s (Lv %d, %d HP)\n", a.Name, a.Level, a.MaxHP, b.Name, b.Level, b.MaxHP)
	fmt.Fprintf(w, "%s moves: %s\n", a.Name, strings.Join(a.Moves, ", "))
	fmt.Fprintf(w, "%s moves: %s\n", b.Name, strings.Join(b.Moves, ", "))
	turn := 0
	for _, e := range res.Log {
		if e.Turn != turn {
			turn = e.Turn
			fmt.Fprintf(w, "\n-- Turn %d --\n", turn)
		}
		fmt.Fprintln(w, e.Narrative)
	}
	fmt.Fprintln(w)
	if res.Draw() {
		fmt.Fprintf(w, "Draw after %d turns (%d/%d vs %d/%d HP)\n", res.Turns, a.FinalHP, a.MaxHP, b.FinalHP, b.MaxHP)
		return nil
	}
	fmt.Fprintf(w, "%s wins after %d turns (%d/%d vs %d/%d HP)\n", res.WinnerName(), res.Turns, a.FinalHP, a.MaxHP, b.FinalHP, b.MaxHP)
	return nil
}

type seriesReport struct {
	A         string       `json:"a"`
	B         string       `json:"b"`
	LevelA    int          `json:"level_a"`
	LevelB    int          `json:"level_b"`
	Tally     combat.Tally `json:"tally"`
	MeanTurns float64      `json:"mean_turns"`
}

func printTally(w io.Writer, m combat.Matchup, t combat.Tally, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(seriesReport{
			A: m.A.Name, B: m.B.Name, LevelA: m.LevelA, LevelB: m.LevelB,
			Tally: t, MeanTurns: t.MeanTurns(),
		})
	}
	fmt.Fprintf(w, "%s (Lv %d) vs %s (Lv %d): %d battles\n", m.A.Name, m.LevelA, m.B.Name, m.LevelB, t.Battles)
	fmt.Fprintf(w, "  %-12s %4d wins (%.1f%%)\n", m.A.Name, t.Wins[combat.SideA], 100*t.WinRate(combat.SideA))
	fmt.Fprintf(w, "  %-12s %4d wins (%.1f%%)\n", m.B.Name, t.Wins[combat.SideB], 100*t.WinRate(combat.SideB))
	fmt.Fprintf(w, "  %-12s %4d\n", "draws", t.Draws)
	fmt.Fprintf(w, "  mean turns %.2f\n", t.MeanTurns())
	return nil
}
