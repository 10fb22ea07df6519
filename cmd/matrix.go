package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom/internal/assoc"
	"github.com/KaramelBytes/tabloom/internal/matrix"
	"github.com/KaramelBytes/tabloom/internal/utils"
)

var (
	mxOutputPath string
	mxMethods    []string
	mxColumns    []string
	mxTop        int
	mxLoad       loadFlags
)

var matrixCmd = &cobra.Command{
	Use:   "matrix <file>",
	Short: "Write association matrices of a table as CSV",
	Long: `Write the association matrix of a table as CSV. --method accepts several
methods; with --output each one is written to <output>.<method>.csv.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := mxLoad.options()
		if err != nil {
			return err
		}
		methods, err := resolveMethods(mxMethods)
		if err != nil {
			return err
		}
		_, tb, _, err := loadAndCorrect(args[0], opt)
		if err != nil {
			return err
		}

		cache := matrix.NewCache(matrix.WithLogger(logger))
		w := cmd.OutOrStdout()
		for _, m := range methods {
			mx := cache.Build(tb, m, mxColumns...)
			if err := mx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := mx.WriteCSV(&buf); err != nil {
				return err
			}
			switch {
			case mxOutputPath != "":
				path := matrixOutputPath(mxOutputPath, m, len(methods) > 1)
				if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				fmt.Fprintf(w, "✓ Wrote %dx%d %s matrix to %s\n", mx.Size(), mx.Size(), m, path)
			case len(methods) > 1:
				fmt.Fprintf(w, "# %s\n%s", m, buf.String())
			default:
				fmt.Fprint(w, buf.String())
			}

			if mxTop > 0 {
				fmt.Fprintln(w, "Strongest pairs:")
				for _, p := range mx.TopPairs(mxTop) {
					fmt.Fprintf(w, "- %s ~ %s: %s\n", p.A, p.B, matrix.FormatScore(p.Value))
				}
			}
		}
		return nil
	},
}

// resolveMethods parses the requested methods in order, dropping repeats. An
// empty list means the configured default.
func resolveMethods(names []string) ([]assoc.Method, error) {
	if len(names) == 0 {
		m, err := resolveMethod("")
		if err != nil {
			return nil, err
		}
		return []assoc.Method{m}, nil
	}
	var out []assoc.Method
	seen := map[assoc.Method]bool{}
	for _, n := range names {
		m, err := assoc.ParseMethod(n)
		if err != nil {
			return nil, err
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out, nil
}

// matrixOutputPath inserts the method before the extension when several
// matrices share one --output.
func matrixOutputPath(path string, m assoc.Method, multi bool) string {
	if !multi {
		return path
	}
	ext := filepath.Ext(path)
	if ext == "" {
		ext = ".csv"
	}
	return fmt.Sprintf("%s.%s%s", strings.TrimSuffix(path, filepath.Ext(path)), m, ext)
}

func init() {
	rootCmd.AddCommand(matrixCmd)
	matrixCmd.Flags().StringVarP(&mxOutputPath, "output", "o", "", "write the CSV here instead of stdout")
	matrixCmd.Flags().StringSliceVarP(&mxMethods, "method", "m", nil, "comma-separated association methods (default from config)")
	matrixCmd.Flags().StringSliceVar(&mxColumns, "columns", nil, "comma-separated columns, in order")
	matrixCmd.Flags().IntVar(&mxTop, "top", 0, "also list the N strongest pairs")
	mxLoad.register(matrixCmd)
}
