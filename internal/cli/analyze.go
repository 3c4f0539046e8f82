package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tanglestat/pkg/errors"
	"github.com/matzehuels/tanglestat/pkg/pipeline"
	"github.com/matzehuels/tanglestat/pkg/report"
)

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	format    string // text, json or table
	precision int    // decimals for averages; -1 means config default
	refresh   bool   // recompute even when cached
	watch     bool   // re-analyze files when they change
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	opts := analyzeOpts{format: errors.FormatText, precision: -1}

	cmd := &cobra.Command{
		Use:   "analyze [file...]",
		Short: "Report statistics for tangle files",
		Long: `Report statistics for one or more tangle files.

Each file starts with the number of transactions, followed by one line per
transaction holding its left parent, right parent and timestamp. Parents are
1-based; 1 is the origin. Use "-" to read from standard input.

Reports are cached by input hash, so analyzing an unchanged file again is
instant. With --watch, files are analyzed again whenever they change until
the command is interrupted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateFormat(opts.format); err != nil {
				return err
			}
			if opts.watch && slices.Contains(args, "-") {
				return errors.New(errors.ErrCodeInvalidInput, "--watch cannot read from stdin")
			}
			if opts.precision < 0 {
				opts.precision = c.Config.Report.Precision
			}
			return c.runAnalyze(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: text (default), json, table")
	cmd.Flags().IntVarP(&opts.precision, "precision", "p", opts.precision, "decimals for averages (default from config)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute and overwrite cached reports")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-analyze files when they change")

	return cmd
}

// runAnalyze analyzes every input in order and stops at the first failure.
// In watch mode it then blocks, re-analyzing changed files until ctx is done.
func (c *CLI) runAnalyze(ctx context.Context, stdin io.Reader, w io.Writer, paths []string, opts analyzeOpts) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	for i, path := range paths {
		if i > 0 && opts.format != errors.FormatJSON {
			fmt.Fprintln(w)
		}
		if err := c.analyzeOne(ctx, runner, stdin, w, path, opts); err != nil {
			return err
		}
	}
	if !opts.watch {
		return nil
	}

	fw, err := newFileWatcher(paths, c.Logger)
	if err != nil {
		return err
	}
	c.Logger.Info("Watching for changes", "files", len(paths))
	return fw.run(ctx, func(path string) {
		if opts.format != errors.FormatJSON {
			fmt.Fprintln(w)
		}
		if err := c.analyzeOne(ctx, runner, stdin, w, path, opts); err != nil {
			c.Logger.Error(errors.UserMessage(err), "source", sourceName(path))
		}
	})
}

func (c *CLI) analyzeOne(ctx context.Context, runner *pipeline.Runner, stdin io.Reader, w io.Writer, path string, opts analyzeOpts) error {
	prog := newProgress(c.Logger)
	data, err := readInput(path, stdin)
	if err != nil {
		return err
	}
	res, err := runner.Analyze(ctx, sourceName(path), data, pipeline.Options{Refresh: opts.refresh})
	if err != nil {
		return fmt.Errorf("analyze %s: %w", sourceName(path), err)
	}
	prog.done("Analyzed", "source", sourceName(path), "cache", cacheLabel(res.CacheHit))
	return writeReport(w, res.Report, opts.format, opts.precision)
}

func writeReport(w io.Writer, r *report.Report, format string, precision int) error {
	switch format {
	case errors.FormatJSON:
		return report.WriteJSON(w, r)
	case errors.FormatTable:
		_, err := fmt.Fprintln(w, reportTable(r, precision))
		return err
	default:
		return report.WriteText(w, r, precision)
	}
}

// reportTable renders r as a two-column lipgloss table titled with its source.
func reportTable(r *report.Report, precision int) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(colorGray)

	var rows [][]string
	for _, f := range r.Fields(precision) {
		rows = append(rows, []string{f.Label, f.Value})
	}
	rows = append(rows, []string{"Level widths", joinInts(r.LevelWidths)})

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Statistic", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case col == 0:
				return labelStyle.Padding(0, 1)
			default:
				return StyleValue.Padding(0, 1)
			}
		})

	return StyleTitle.Render(r.Source) + "\n" + t.Render()
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}

func cacheLabel(hit bool) string {
	if hit {
		return iconCached
	}
	return iconFresh
}
