package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/resilience-sim/sim/evaluation"
	"github.com/inference-sim/resilience-sim/sim/trace"
)

var (
	configPath        string  // Path to the YAML evaluation config
	outDir            string  // Directory for result files; empty prints the comparison to stdout
	logLevel          string  // Log verbosity level
	traceLevel        string  // Decision trace level for single runs
	budget            int     // Removal budget (dismantle) or attack budget (construct)
	edgeBudget        int     // Edge budget for construct baselines
	collapseThreshold float64 // LCC ratio at which a network is considered collapsed
	randomRuns        int     // Runs averaged for the Random strategy
	randomSeed        int64   // Base seed of the Random runs
	workers           int     // Concurrent runs; 0 means GOMAXPROCS
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "resilience-sim",
	Short: "Network resilience simulator for dismantling and construction strategies",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s", traceLevel)
		}
	},
}

// dismantleCmd runs the configured attack strategies against one graph
var dismantleCmd = &cobra.Command{
	Use:   "dismantle",
	Short: "Run node-removal strategies and compare their resilience curves",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig(cmd, evaluation.TaskDismantle)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := runDismantle(ctx, cfg, outputOptions{Dir: outDir, Stdout: os.Stdout, TraceLevel: trace.TraceLevel(traceLevel)}); err != nil {
			logrus.Fatalf("dismantle failed: %v", err)
		}
	},
}

// constructCmd scores edge additions against the construct baselines
var constructCmd = &cobra.Command{
	Use:   "construct",
	Short: "Score edge additions by the resilience gain they give under fixed attacks",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig(cmd, evaluation.TaskConstruct)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := runConstruct(ctx, cfg, outputOptions{Dir: outDir, Stdout: os.Stdout}); err != nil {
			logrus.Fatalf("construct failed: %v", err)
		}
	},
}

// mustLoadConfig loads --config, applies flag overrides and defaults, and
// validates the result. Any problem is fatal.
func mustLoadConfig(cmd *cobra.Command, task evaluation.TaskType) *evaluation.Config {
	if configPath == "" {
		logrus.Fatalf("--config is required")
	}
	cfg, err := evaluation.LoadConfig(configPath)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	if cfg.Task == "" {
		cfg.Task = task
	}
	if cfg.Task != task {
		logrus.Fatalf("config %s describes a %q task, not %q", configPath, cfg.Task, task)
	}
	applyFlagOverrides(cmd, cfg)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid config %s: %v", configPath, err)
	}
	return cfg
}

// applyFlagOverrides copies explicitly set flags over config values.
func applyFlagOverrides(cmd *cobra.Command, cfg *evaluation.Config) {
	flags := cmd.Flags()
	if flags.Changed("budget") {
		if cfg.Task == evaluation.TaskConstruct {
			cfg.AttackBudget = budget
		} else {
			cfg.Budget = budget
		}
	}
	if flags.Changed("edge-budget") {
		cfg.EdgeBudget = edgeBudget
	}
	if flags.Changed("threshold") {
		cfg.CollapseThreshold = collapseThreshold
	}
	if flags.Changed("runs") {
		cfg.RandomRuns = randomRuns
	}
	if flags.Changed("seed") {
		seed := randomSeed
		cfg.RandomSeed = &seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML evaluation config")
	rootCmd.PersistentFlags().StringVar(&outDir, "out", "", "Directory for result JSON, summary.json and comparison.csv (default: print comparison to stdout)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&traceLevel, "trace-level", "none", "Decision trace level for single runs (none, steps)")

	rootCmd.PersistentFlags().IntVar(&budget, "budget", 0, "Removal budget (dismantle) or attack budget (construct); 0 means 30% of nodes")
	rootCmd.PersistentFlags().Float64Var(&collapseThreshold, "threshold", 0.2, "LCC ratio at which the network counts as collapsed")
	rootCmd.PersistentFlags().IntVar(&randomRuns, "runs", evaluation.DefaultRandomRuns, "Number of Random runs averaged")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "seed", evaluation.DefaultRandomSeed, "Base seed of the Random runs")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Concurrent runs (0 = GOMAXPROCS)")

	constructCmd.Flags().IntVar(&edgeBudget, "edge-budget", 0, "Edges added by the construct baselines; 0 means 10% of edges")

	rootCmd.AddCommand(dismantleCmd)
	rootCmd.AddCommand(constructCmd)
}
