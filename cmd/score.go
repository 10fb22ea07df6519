package cmd

import (
	"errors"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom/internal/assoc"
)

var (
	scMethod string
	scLoad   loadFlags
)

var scoreCmd = &cobra.Command{
	Use:   "score <file> <column-a> <column-b>",
	Short: "Score the association between two columns",
	Long: `Score the association between two columns after type correction.
For theils_u the value is U(a|b): how much knowing b reduces uncertainty about a.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := scLoad.options()
		if err != nil {
			return err
		}
		m, err := resolveMethod(scMethod)
		if err != nil {
			return err
		}
		_, tb, _, err := loadAndCorrect(args[0], opt)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		d, err := assoc.Evaluate(tb, args[1], args[2], m)
		switch {
		case errors.Is(err, assoc.ErrUnknownColumn):
			return err
		case err != nil:
			fmt.Fprintf(out, "%s(%s, %s): undefined: %v\n", m, args[1], args[2], errors.Unwrap(err))
			return nil
		}
		fmt.Fprintf(out, "%s(%s, %s) = %.2f\n", m, args[1], args[2], d.Value)
		if !math.IsNaN(d.Statistic) {
			fmt.Fprintf(out, "statistic: %.4f\n", d.Statistic)
		}
		if !math.IsNaN(d.PValue) {
			fmt.Fprintf(out, "p-value: %.4g\n", d.PValue)
		}
		fmt.Fprintf(out, "n: %d\n", d.N)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringVarP(&scMethod, "method", "m", "", "association method (default from config)")
	scLoad.register(scoreCmd)
}
