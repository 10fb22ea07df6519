package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/tabloom/internal/assoc"
	"github.com/KaramelBytes/tabloom/internal/loader"
	"github.com/KaramelBytes/tabloom/internal/utils"
)

var (
	abMethod  string
	abColumns []string
	abOutDir  string
	abJobs    int
	abQuiet   bool
	abLoad    loadFlags
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV/XLSX/JSON files concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		opt, err := abLoad.options()
		if err != nil {
			return err
		}
		m, err := resolveMethod(abMethod)
		if err != nil {
			return err
		}
		jobs := abJobs
		if jobs <= 0 {
			jobs = cfg.BatchJobs
		}
		if abOutDir != "" {
			if err := os.MkdirAll(abOutDir, 0o755); err != nil {
				return fmt.Errorf("mkdir out dir: %w", err)
			}
		}

		results, err := runBatch(cmd.Context(), files, opt, m, jobs)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		bases := utils.UniqueStems(files)
		total := len(files)
		for i, a := range results {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] %s: %d rows, %d columns, %d corrections\n",
					i+1, total, filepath.Base(a.Path), a.Table.Rows(), a.Table.Width(), len(a.Changes))
			}
			if abOutDir == "" {
				if !abQuiet {
					fmt.Fprintln(out, a.Markdown())
				}
				continue
			}
			if err := writeBatchOutputs(abOutDir, bases[i], m, a); err != nil {
				return err
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ Wrote %s.summary.md\n", bases[i])
			}
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist, drops
// duplicates and sorts the result.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// runBatch analyzes files with at most jobs in flight. Results keep input
// order; the first failure cancels the remaining work.
func runBatch(ctx context.Context, files []string, opt loader.Options, m assoc.Method, jobs int) ([]*analysis, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]*analysis, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, err := analyze(path, opt, m, abColumns)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			logger.Debug("batch item done", zap.String("path", path), zap.Int("index", i))
			results[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func writeBatchOutputs(dir, base string, m assoc.Method, a *analysis) error {
	md := filepath.Join(dir, base+".summary.md")
	if err := utils.SafeWriteFile(md, []byte(a.Markdown())); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if a.Matrix.Err() != nil {
		return nil
	}
	var buf bytes.Buffer
	if err := a.Matrix.WriteCSV(&buf); err != nil {
		return fmt.Errorf("write matrix csv: %w", err)
	}
	return utils.SafeWriteFile(filepath.Join(dir, fmt.Sprintf("%s.%s.csv", base, m)), buf.Bytes())
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVarP(&abMethod, "method", "m", "", "association method (default from config)")
	analyzeBatchCmd.Flags().StringSliceVar(&abColumns, "columns", nil, "comma-separated columns for each matrix, in order")
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "write <name>.summary.md and <name>.<method>.csv here instead of printing")
	analyzeBatchCmd.Flags().IntVarP(&abJobs, "jobs", "j", 0, "files analyzed concurrently (default from config)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
	abLoad.register(analyzeBatchCmd)
}
