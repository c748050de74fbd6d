package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bazaarsync/internal/api"
	"bazaarsync/internal/config"
	"bazaarsync/internal/engine"
	"bazaarsync/internal/ratelimit"
	"bazaarsync/internal/scheduler"
	"bazaarsync/internal/snapshot"
	"bazaarsync/internal/store"
	"bazaarsync/internal/version"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: bazaarsync <command> [options]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  sync       Run one sync cycle\n")
	fmt.Fprintf(os.Stderr, "  watch      Sync continuously on an interval\n")
	fmt.Fprintf(os.Stderr, "  resync     Force a full re-upload, then sync\n")
	fmt.Fprintf(os.Stderr, "  status     Show local snapshot summary\n")
	fmt.Fprintf(os.Stderr, "  changes    Show recent change records\n")
	fmt.Fprintf(os.Stderr, "  owner      Show held orders for an owner or claim name\n")
	fmt.Fprintf(os.Stderr, "  cleanup    Delete remote change rows past the retention window\n")
	fmt.Fprintf(os.Stderr, "  reset      Delete the local snapshot and clear remote tables\n")
	fmt.Fprintf(os.Stderr, "  version    Print version\n")
	fmt.Fprintf(os.Stderr, "\nCommon options:\n")
	fmt.Fprintf(os.Stderr, "  -config PATH   config file (default bazaarsync.yaml)\n")
	fmt.Fprintf(os.Stderr, "\n")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	if cmd == "version" {
		fmt.Printf("bazaarsync %s\n", version.String())
		return
	}

	// Secrets for ${VAR} expansion in the config file.
	_ = godotenv.Load()

	var err error
	switch cmd {
	case "sync":
		err = cmdSync(args)
	case "watch":
		err = cmdWatch(args)
	case "resync":
		err = cmdResync(args)
	case "status":
		err = cmdStatus(args)
	case "changes":
		err = cmdChanges(args)
	case "owner":
		err = cmdOwner(args)
	case "cleanup":
		err = cmdCleanup(args)
	case "reset":
		err = cmdReset(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "bazaarsync %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

// app bundles everything a command needs after config is loaded.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	files  *snapshot.Store
	market *api.Client
	remote *store.Client
}

func setup(fs *flag.FlagSet, args []string) (*app, error) {
	configPath := fs.String("config", "bazaarsync.yaml", "path to config file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	market := api.NewClient(cfg.API.BaseURL, cfg.API.Region,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryBackoff),
		api.WithSummaryBatchSize(cfg.API.SummaryBatch),
		api.WithPacer(ratelimit.Interval(cfg.API.BatchDelay)),
	)

	remote := store.New(cfg.Store.URL, cfg.Store.APIKey,
		store.WithLogger(logger),
		store.WithBatchSize(cfg.Store.BatchSize),
		store.WithPacer(ratelimit.Interval(cfg.Store.BatchDelay)),
	)

	return &app{
		cfg:    cfg,
		logger: logger,
		files:  snapshot.NewStore(cfg.Snapshot.Path, logger),
		market: market,
		remote: remote,
	}, nil
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func (a *app) newEngine() (*engine.Engine, error) {
	return engine.New(a.market, a.files, a.remote, engine.Config{
		Mode:             engine.Mode(a.cfg.Sync.Mode),
		DetailBudget:     a.cfg.Sync.DetailBudget,
		SequentialBudget: a.cfg.Sync.SequentialBudget,
		ChangeLogMax:     a.cfg.Sync.ChangeLogMax,
	}, a.logger)
}

func (a *app) schedulerConfig() scheduler.Config {
	return scheduler.Config{
		Interval:        a.cfg.Sync.Interval,
		CleanupInterval: a.cfg.Sync.CleanupInterval,
		RetentionWindow: a.cfg.Sync.RetentionWindow,
	}
}

// signalContext cancels on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()
	return ctx, cancel
}

func parseMode(s string) (engine.Mode, error) {
	switch s {
	case "", "bulk":
		return engine.ModeBulk, nil
	case "seq", "sequential":
		return engine.ModeSequential, nil
	default:
		return "", fmt.Errorf("invalid mode %q (want bulk or seq)", s)
	}
}

func cmdSync(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	modeFlag := fs.String("mode", "", "fetch strategy: bulk or seq (default from config)")
	budget := fs.Int("budget", 0, "max detail fetches this cycle (default from config)")

	a, err := setup(fs, args)
	if err != nil {
		return err
	}
	mode := engine.Mode("")
	if *modeFlag != "" {
		if mode, err = parseMode(*modeFlag); err != nil {
			return err
		}
	}

	eng, err := a.newEngine()
	if err != nil {
		return err
	}
	sched := scheduler.New(a.schedulerConfig(), eng, a.remote,
		engine.Options{Mode: mode, DetailBudget: *budget}, a.logger)

	ctx, cancel := signalContext()
	defer cancel()

	_, err = sched.RunOnce(ctx)
	return err
}

func cmdWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	interval := fs.Duration("interval", 0, "sync interval (default from config)")

	a, err := setup(fs, args)
	if err != nil {
		return err
	}
	eng, err := a.newEngine()
	if err != nil {
		return err
	}

	schedCfg := a.schedulerConfig()
	if *interval > 0 {
		schedCfg.Interval = *interval
	}

	sched := scheduler.New(schedCfg, eng, a.remote, engine.Options{}, a.logger)

	ctx, cancel := signalContext()
	defer cancel()
	return sched.Run(ctx)
}

func cmdResync(args []string) error {
	fs := flag.NewFlagSet("resync", flag.ExitOnError)
	a, err := setup(fs, args)
	if err != nil {
		return err
	}
	eng, err := a.newEngine()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	_, err = eng.ForceResync(ctx)
	return err
}

func cmdStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	a, err := setup(fs, args)
	if err != nil {
		return err
	}

	snap, err := a.files.Load()
	if err != nil {
		return err
	}
	sum := snap.Summarize()

	fmt.Printf("snapshot:        %s\n", a.files.Path())
	fmt.Printf("items:           %d (%d with order detail)\n", sum.Items, sum.Details)
	fmt.Printf("open orders:     %d sell / %d buy\n", sum.SellOrders, sum.BuyOrders)
	fmt.Printf("change log:      %d entries (seq %d)\n", sum.ChangeEntries, sum.ChangeSeq)
	fmt.Printf("cycles run:      %d\n", sum.Cycles)
	if !sum.UpdatedAt.IsZero() {
		fmt.Printf("last updated:    %s (%s ago)\n",
			sum.UpdatedAt.Format(time.RFC3339), time.Since(sum.UpdatedAt).Round(time.Second))
	}
	fmt.Printf("remote store:    configured=%v\n", a.remote.Configured())
	return nil
}

func cmdChanges(args []string) error {
	fs := flag.NewFlagSet("changes", flag.ExitOnError)
	n := fs.Int("n", 20, "number of recent changes to show")
	a, err := setup(fs, args)
	if err != nil {
		return err
	}

	snap, err := a.files.Load()
	if err != nil {
		return err
	}

	recent := snap.RecentChanges(*n)
	if len(recent) == 0 {
		fmt.Println("no recorded changes")
		return nil
	}
	for _, rec := range recent {
		line := fmt.Sprintf("#%d %s %s %q (id %d)",
			rec.Seq, rec.RecordedAt.Format(time.RFC3339), rec.Type, rec.Name, rec.ItemID)
		if rec.Delta != nil {
			line += fmt.Sprintf(" sell%+d buy%+d", rec.Delta.Sell, rec.Delta.Buy)
		}
		if rec.DetailMissing {
			line += " [detail pending]"
		}
		fmt.Println(line)
	}
	return nil
}

func cmdOwner(args []string) error {
	fs := flag.NewFlagSet("owner", flag.ExitOnError)
	a, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: bazaarsync owner NAME")
	}
	name := fs.Arg(0)

	snap, err := a.files.Load()
	if err != nil {
		return err
	}

	orders := snap.OrdersByOwner(name)
	if len(orders) == 0 {
		fmt.Printf("no held orders matching %q\n", name)
		return nil
	}
	for itemID, recs := range orders {
		item := snap.Catalog[itemID]
		fmt.Printf("%s (id %d):\n", item.Name, itemID)
		for _, o := range recs {
			fmt.Printf("  %-4s %6d x %d  claim=%s owner=%s\n",
				o.Side, o.Price, o.Quantity, o.ClaimName, o.OwnerName)
		}
	}
	return nil
}

func cmdCleanup(args []string) error {
	fs := flag.NewFlagSet("cleanup", flag.ExitOnError)
	a, err := setup(fs, args)
	if err != nil {
		return err
	}
	if !a.remote.Configured() {
		return fmt.Errorf("remote store not configured")
	}

	ctx, cancel := signalContext()
	defer cancel()

	cutoff := time.Now().UTC().Add(-a.cfg.Sync.RetentionWindow)
	if err := a.remote.DeleteChangesBefore(ctx, cutoff); err != nil {
		return err
	}
	a.logger.Info("remote change cleanup complete", "cutoff", cutoff)
	return nil
}

func cmdReset(args []string) error {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	yes := fs.Bool("yes", false, "skip confirmation")
	a, err := setup(fs, args)
	if err != nil {
		return err
	}

	if !*yes {
		fmt.Print("this deletes the local snapshot and clears the remote tables; continue? [y/N] ")
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("aborted")
			return nil
		}
	}

	if err := a.files.Remove(); err != nil {
		return err
	}
	a.logger.Info("local snapshot removed", "path", a.files.Path())

	if a.remote.Configured() {
		ctx, cancel := signalContext()
		defer cancel()
		if err := a.remote.ResetTables(ctx); err != nil {
			return err
		}
		a.logger.Info("remote tables cleared")
	} else {
		a.logger.Info("remote store not configured, skipping remote reset")
	}
	return nil
}
