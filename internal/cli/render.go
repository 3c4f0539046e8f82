package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tanglestat/pkg/errors"
	"github.com/matzehuels/tanglestat/pkg/pipeline"
	"github.com/matzehuels/tanglestat/pkg/render"
)

const (
	formatSVG = "svg"
	formatDOT = "dot"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path; derived from the input when empty
	format   string // svg or dot
	detailed bool   // show timestamp and depth in labels
	rank     bool   // align transactions of equal depth
}

// renderCommand creates the render command for drawing a tangle.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Draw a tangle as an SVG or DOT diagram",
		Long: `Draw a tangle as a node-link diagram.

The origin is drawn as a double circle and tips are shaded. By default the
SVG is written next to the input (ledger.txt -> ledger.svg); use -o - to
write to standard output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatSVG && opts.format != formatDOT {
				return errors.New(errors.ErrCodeInvalidInput, "invalid format %q (valid: svg, dot)", opts.format)
			}
			return c.runRender(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, or - for stdout")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show timestamp and depth in labels")
	cmd.Flags().BoolVar(&opts.rank, "rank", false, "align transactions of equal depth on one row")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, stdin io.Reader, stdout io.Writer, input string, opts renderOpts) error {
	data, err := readInput(input, stdin)
	if err != nil {
		return err
	}
	t, err := pipeline.NewRunner(nil, nil, c.Logger).Load(ctx, sourceName(input), data)
	if err != nil {
		return err
	}

	out := []byte(render.ToDOT(t, render.Options{Detailed: opts.detailed, RankByDepth: opts.rank}))
	if opts.format == formatSVG {
		dot := string(out)
		err = withSpinner(ctx, c.status.w, "Rendering...", func() (err error) {
			out, err = render.RenderSVG(ctx, dot)
			return err
		})
		if err != nil {
			c.status.failure("Rendering failed")
			return fmt.Errorf("render %s: %w", sourceName(input), err)
		}
	}

	path := outputPath(input, opts.output, opts.format)
	if path == stdinName {
		_, err := stdout.Write(out)
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	c.status.success("Rendered %d transactions", t.Len())
	c.status.file(path)
	return nil
}

// outputPath resolves the destination: an explicit -o wins, stdin input goes
// to stdout, otherwise the input's extension is replaced.
func outputPath(input, output, format string) string {
	if output != "" {
		return output
	}
	if input == stdinName {
		return stdinName
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}
