// Command trdeg sweeps the Tenhou dan ladder model and prints level and tier
// expectations, or inspects a single dan.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/xtding233/trdeg/internal/config"
	"github.com/xtding233/trdeg/internal/logging"
	"github.com/xtding233/trdeg/internal/sweep"
)

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseFloats(s string) ([]float64, error) {
	var out []float64
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid efficiency %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}

func main() {
	_ = godotenv.Load()

	var (
		confDir      = flag.String("conf", getenv("TRDEG_CONF", "configs"), "config base directory")
		ladderName   = flag.String("ladder", getenv("TRDEG_LADDER", "tenhou"), "ladder config name")
		sweepName    = flag.String("sweep", "", "optional sweep config name")
		debug        = flag.Bool("debug", false, "debug logging")
		header       = flag.Bool("header", true, "print column headers")
		verify       = flag.Int("verify", 0, "Monte Carlo trials per level (0 disables)")
		seed         = flag.Uint64("seed", 1, "Monte Carlo seed")
		workers      = flag.Int("workers", 0, "parallel combos (0 uses config)")
		efficiencies = flag.String("efficiencies", "", "comma-separated efficiencies overriding the config")
		kinds        = flag.String("kinds", "", "comma-separated table kinds overriding the config")
		ceilingRatio = flag.Float64("ceiling-ratio", 0, "ceiling return ratio (0 uses config)")
		dan          = flag.Int("dan", 0, "inspect one dan instead of sweeping")
		efficiency   = flag.Float64("efficiency", 6.0, "efficiency for -dan")
	)
	flag.Parse()

	logger, err := logging.New(*debug, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logging.Install(logger)

	var o config.Overrides
	if *efficiencies != "" {
		es, err := parseFloats(*efficiencies)
		if err != nil {
			logger.Fatal("bad flag", zap.Error(err))
		}
		o.Efficiencies = &es
	}
	if *kinds != "" {
		ks := strings.Split(*kinds, ",")
		o.Kinds = &ks
	}
	if *workers > 0 {
		o.Workers = workers
	}
	if *ceilingRatio > 0 {
		o.CeilingRatio = ceilingRatio
	}

	loader := config.NewLoader(*confDir)
	_, params, err := loader.Resolve(*ladderName, *sweepName, o)
	if err != nil {
		logger.Fatal("load config", zap.String("ladder", *ladderName), zap.String("sweep", *sweepName), zap.Error(err))
	}
	logger.Debug("config resolved",
		zap.Strings("files", loader.Paths(*ladderName, *sweepName)),
		zap.Int("levels", len(params.Levels)),
		zap.Int("tiers", len(params.Tiers)),
		zap.Int("workers", params.Workers),
	)

	m := sweep.NewModel(params)
	m.VerifyTrials = *verify
	m.Seed = *seed

	if *dan > 0 {
		if err := sweep.Inspect(os.Stdout, m, *dan, *efficiency); err != nil {
			logger.Fatal("inspect", zap.Int("dan", *dan), zap.Float64("efficiency", *efficiency), zap.Error(err))
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := sweep.Run(ctx, m)
	if err != nil {
		logger.Fatal("sweep", zap.Error(err))
	}
	if err := sweep.WriteLevels(os.Stdout, report.Levels, *header); err != nil {
		logger.Fatal("write levels", zap.Error(err))
	}
	if _, err := fmt.Fprintln(os.Stdout); err != nil {
		logger.Fatal("write", zap.Error(err))
	}
	if err := sweep.WriteTiers(os.Stdout, report.Tiers, *header); err != nil {
		logger.Fatal("write tiers", zap.Error(err))
	}
}
