package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/tabloom/internal/assoc"
	cfgpkg "github.com/KaramelBytes/tabloom/internal/config"
	"github.com/KaramelBytes/tabloom/internal/correct"
	"github.com/KaramelBytes/tabloom/internal/logging"
)

var (
	// Global flags
	cfgFile      string
	debug        bool
	flagSeed     int64
	flagLogLevel string

	// Loaded configuration and logger, set before every command runs
	cfg    *cfgpkg.Global
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "tabloom",
	Short: "tabloom: type-correct tabular data and map column associations",
	Long: `tabloom loads CSV/TSV/XLSX/JSON tables, repairs columns whose storage type
misrepresents their content, and builds association matrices (Pearson, Spearman,
Kendall, Cramér's V, Theil's U, Phi, correlation ratio) across columns.`,
	SilenceUsage:      true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return loadConfig() },
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tabloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "sampling seed for type correction (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
}

func loadConfig() error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so commands still run
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("seed") {
		cfg.Seed = flagSeed
	}
	if f.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	l, err := logging.New(cfg.LogLevel, debug)
	if err != nil {
		return err
	}
	logger = l
	logger.Debug("config loaded",
		zap.String("file", cfgFile),
		zap.Int64("seed", cfg.Seed),
		zap.String("default_method", cfg.DefaultMethod))
	return nil
}

func correctorConfig() correct.Config {
	return correct.Config{
		Seed:              cfg.Seed,
		SampleFraction:    cfg.SampleFraction,
		DateTimeThreshold: cfg.DateTimeThreshold,
	}
}

// resolveMethod returns the flag value if set, else the configured default.
func resolveMethod(flag string) (assoc.Method, error) {
	if flag == "" {
		flag = cfg.DefaultMethod
	}
	return assoc.ParseMethod(flag)
}
