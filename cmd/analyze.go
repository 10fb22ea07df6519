package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom/internal/utils"
)

var (
	anaOutputPath string
	anaMethod     string
	anaColumns    []string
	anaFormat     string
	anaLoad       loadFlags
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Correct column types, summarize, and build an association matrix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := anaLoad.options()
		if err != nil {
			return err
		}
		m, err := resolveMethod(anaMethod)
		if err != nil {
			return err
		}
		format := anaFormat
		if format == "" {
			format = cfg.OutputFormat
		}

		a, err := analyze(args[0], opt, m, anaColumns)
		if err != nil {
			return err
		}

		var out []byte
		switch format {
		case "markdown", "md":
			out = []byte(a.Markdown())
		case "csv":
			var buf bytes.Buffer
			if err := a.Matrix.WriteCSV(&buf); err != nil {
				return err
			}
			out = buf.Bytes()
		default:
			return fmt.Errorf("unsupported --format: %s (use markdown|csv)", format)
		}

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
	analyzeCmd.Flags().StringVarP(&anaMethod, "method", "m", "", "association method (default from config)")
	analyzeCmd.Flags().StringSliceVar(&anaColumns, "columns", nil, "comma-separated columns for the matrix, in order")
	analyzeCmd.Flags().StringVar(&anaFormat, "format", "", "output format: markdown|csv (default from config)")
	anaLoad.register(analyzeCmd)
}
