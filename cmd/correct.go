package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabloom/internal/loader"
	"github.com/KaramelBytes/tabloom/internal/utils"
)

var (
	corOutputPath string
	corYAML       bool
	corLoad       loadFlags
)

var correctCmd = &cobra.Command{
	Use:   "correct <file>",
	Short: "Repair column storage types and report what changed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := corLoad.options()
		if err != nil {
			return err
		}
		_, tb, changes, err := loadAndCorrect(args[0], opt)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if corYAML {
			b, err := yaml.Marshal(map[string]any{"file": args[0], "changes": changes})
			if err != nil {
				return fmt.Errorf("marshal yaml: %w", err)
			}
			fmt.Fprint(out, string(b))
		} else if len(changes) == 0 {
			fmt.Fprintln(out, "No type corrections needed")
		} else {
			for _, c := range changes {
				fmt.Fprintf(out, "%s: %s → %s (%s)\n", c.Column, c.FromStorage, c.ToStorage, c.Rule)
			}
		}

		if corOutputPath != "" {
			var buf bytes.Buffer
			if err := loader.WriteCSV(&buf, tb); err != nil {
				return err
			}
			if err := utils.SafeWriteFile(corOutputPath, buf.Bytes()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			if !corYAML {
				fmt.Fprintf(out, "✓ Wrote corrected table to %s\n", corOutputPath)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(correctCmd)
	correctCmd.Flags().StringVarP(&corOutputPath, "output", "o", "", "write the corrected table as CSV")
	correctCmd.Flags().BoolVar(&corYAML, "yaml", false, "print the change log as YAML")
	corLoad.register(correctCmd)
}
