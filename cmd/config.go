package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom/internal/assoc"
	cfgpkg "github.com/KaramelBytes/tabloom/internal/config"
	"github.com/KaramelBytes/tabloom/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set tabloom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "seed: %d\n", cfg.Seed)
		fmt.Fprintf(out, "sample_fraction: %.3f\n", cfg.SampleFraction)
		fmt.Fprintf(out, "datetime_threshold: %.3f\n", cfg.DateTimeThreshold)
		fmt.Fprintf(out, "default_method: %s\n", cfg.DefaultMethod)
		fmt.Fprintf(out, "max_rows: %d\n", cfg.MaxRows)
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "output_format: %s\n", cfg.OutputFormat)
		fmt.Fprintf(out, "batch_jobs: %d\n", cfg.BatchJobs)
		fmt.Fprintf(out, "methods: %s\n", methodList())
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		next := *cfg
		switch key {
		case "seed":
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid int for seed: %w", err)
			}
			next.Seed = i
		case "sample_fraction":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for sample_fraction: %w", err)
			}
			next.SampleFraction = f
		case "datetime_threshold":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for datetime_threshold: %w", err)
			}
			next.DateTimeThreshold = f
		case "default_method":
			m, err := assoc.ParseMethod(val)
			if err != nil {
				return fmt.Errorf("invalid default_method: %s (use %s)", val, methodList())
			}
			next.DefaultMethod = string(m)
		case "max_rows":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for max_rows: %w", err)
			}
			next.MaxRows = i
		case "delimiter":
			switch val {
			case ",", ";", "tab", "":
				next.Delimiter = val
			default:
				return fmt.Errorf("invalid delimiter: %q (use ',' | ';' | 'tab')", val)
			}
		case "log_level":
			if _, err := logging.ParseLevel(val); err != nil {
				return err
			}
			next.LogLevel = strings.ToLower(val)
		case "output_format":
			next.OutputFormat = strings.ToLower(val)
		case "batch_jobs":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for batch_jobs: %w", err)
			}
			next.BatchJobs = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		*cfg = next
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func methodList() string {
	ms := assoc.Methods()
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
