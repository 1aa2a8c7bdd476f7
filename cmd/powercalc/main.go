package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/powerlevel/internal/config"
	"github.com/udisondev/powerlevel/internal/db"
	"github.com/udisondev/powerlevel/internal/energy"
	"github.com/udisondev/powerlevel/internal/engine"
	"github.com/udisondev/powerlevel/internal/formula"
	"github.com/udisondev/powerlevel/internal/history"
)

const ConfigPath = "config/powercalc.yaml"

type options struct {
	profiles   []string
	turns      int
	baseDamage float64
	slider     float64
	mode       energy.AttackMode
	reset      bool
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfgPath := ConfigPath
	if p := os.Getenv("POWERLEVEL_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadCalculator(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("powercalc starting", "log_level", cfg.LogLevel, "storage", cfg.Storage.Driver, "profiles", len(opts.profiles))

	st, closeStore, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()

	for _, def := range cfg.CustomTypes {
		if def.ID == "" {
			def.ID = energy.NormalizeID(def.Name)
		}
		if err := st.SaveCustomType(ctx, def); err != nil {
			return fmt.Errorf("seeding custom type %q: %w", def.ID, err)
		}
	}

	ev := formula.NewLuaEvaluator()
	engOpts := engine.Options{Evaluator: ev, PrimaryType: cfg.PrimaryType, Caps: cfg.AttackCaps}

	logs := make([]*history.Log, len(opts.profiles))
	g, gctx := errgroup.WithContext(ctx)
	for i, profile := range opts.profiles {
		g.Go(func() error {
			log, err := runProfile(gctx, st, ev, engOpts, cfg, opts, profile)
			if err != nil {
				return fmt.Errorf("profile %q: %w", profile, err)
			}
			logs[i] = log
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	all := history.NewLog()
	for _, l := range logs {
		all.Merge(l)
	}
	if cfg.HistoryPath != "" && all.Len() > 0 {
		if err := all.WriteFile(cfg.HistoryPath); err != nil {
			return err
		}
		slog.Info("history exported", "path", cfg.HistoryPath, "entries", all.Len())
	}
	return nil
}

// runProfile loads or creates the profile's engine, runs the configured
// number of calculations and saves the result.
func runProfile(ctx context.Context, st store, ev formula.Evaluator, engOpts engine.Options,
	cfg config.Calculator, opts options, profile string) (*history.Log, error) {
	key := db.ProfileKey(profile)
	registry := energy.LoadRegistry(ctx, st, ev)
	eng := engine.New(registry, engOpts)

	snap, err := st.Load(ctx, key)
	switch {
	case err == nil && !opts.reset:
		warnings, err := eng.Apply(snap)
		if err != nil {
			return nil, err
		}
		logWarnings(profile, warnings)
		for _, def := range registry.Custom() {
			if _, ok := eng.Registry().Get(def.ID); !ok {
				if err := eng.AddCustomType(def); err != nil {
					slog.Warn("stored custom type skipped", "profile", profile, "type", def.ID, "error", err)
				}
			}
		}
	case err == nil || errors.Is(err, db.ErrNotFound):
		if err := eng.SetStats(cfg.Stats); err != nil {
			return nil, err
		}
		for _, p := range eng.Pools() {
			if err := eng.SetRegenPercent(p.TypeID, cfg.DefaultRegenPercent); err != nil {
				return nil, err
			}
		}
	default:
		return nil, err
	}

	for _, p := range eng.Pools() {
		if err := eng.SetSlider(p.TypeID, opts.slider); err != nil {
			return nil, err
		}
		if err := eng.SetAttackMode(p.TypeID, opts.mode); err != nil {
			return nil, err
		}
	}
	eng.SetBaseDamage(opts.baseDamage)
	logWarnings(profile, eng.Refresh())

	log := history.NewLog()
	for turn := 1; turn <= opts.turns; turn++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := eng.Calculate()
		logWarnings(profile, res.Warnings)
		log.Record(profile, eng.Statistics().AttackCount, res)
		slog.Info("attack",
			"profile", profile,
			"turn", turn,
			"damage", res.Damage,
			"energy_used", res.EnergyUsed,
			"health", res.Health)
	}

	out, err := eng.Gather()
	if err != nil {
		return nil, err
	}
	if err := st.Save(ctx, key, out); err != nil {
		return nil, err
	}
	return log, nil
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("powercalc", flag.ContinueOnError)
	profiles := fs.String("profiles", "default", "comma-separated profile names")
	turns := fs.Int("turns", 1, "calculations to run per profile")
	baseDamage := fs.Float64("base-damage", 0, "base damage of the action")
	slider := fs.Float64("slider", 0, "energy slider percent applied to every pool")
	mode := fs.String("mode", "none", "attack mode: none, super or ultimate")
	reset := fs.Bool("reset", false, "ignore saved snapshots")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	m, err := energy.ParseAttackMode(*mode)
	if err != nil {
		return options{}, err
	}
	if *turns < 0 {
		return options{}, fmt.Errorf("turns must not be negative")
	}

	var names []string
	for _, p := range strings.Split(*profiles, ",") {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	if len(names) == 0 {
		return options{}, fmt.Errorf("at least one profile is required")
	}

	return options{
		profiles:   names,
		turns:      *turns,
		baseDamage: *baseDamage,
		slider:     *slider,
		mode:       m,
		reset:      *reset,
	}, nil
}

func logWarnings(profile string, warnings []error) {
	for _, w := range warnings {
		slog.Warn("calculation warning", "profile", profile, "error", w)
	}
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
