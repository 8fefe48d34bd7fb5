package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowboard/pkg/pipeline"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output   string   // output file, base path for several formats, or "-" for stdout
	formats  []string // dot, json, svg, png, pdf
	detailed bool     // add positions to node labels
	format   bool     // tidy the diagram before exporting
	noCache  bool
	refresh  bool
}

// graphCommand creates the graph command for exporting the workspace graph.
func (c *CLI) graphCommand() *cobra.Command {
	var formatsStr string
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph [script.toml]",
		Short: "Export a diagram's flow graph",
		Long: `Export a diagram's flow graph.

Every line is split at the points attached to it, and each piece becomes a
pair of opposite edges between graph nodes. The graph is written as DOT or
JSON, or laid out by Graphviz as SVG, PNG or PDF. Laid out artifacts are
cached by graph content.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			if opts.output == "-" && len(opts.formats) > 1 {
				return fmt.Errorf("stdout output needs exactly one format")
			}
			return c.runGraph(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format), base path (multiple), or - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json, png, pdf (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "add positions to node labels")
	cmd.Flags().BoolVar(&opts.format, "tidy", false, "tidy the diagram before exporting")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, script string, opts graphOpts) error {
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	popts := c.pipelineOptions(script)
	popts.Formats = opts.formats
	popts.Format = opts.format
	popts.Refresh = opts.refresh
	popts.Detailed = popts.Detailed || opts.detailed

	var spinner *Spinner
	if needsLayout(opts.formats) && opts.output != "-" {
		spinner = newSpinnerWithContext(ctx, "Laying out graph...")
		spinner.Start()
	}
	res, err := runner.Execute(ctx, popts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	if opts.output == "-" {
		_, err := os.Stdout.Write(res.Artifacts[opts.formats[0]])
		return err
	}

	paths, err := writeArtifacts(res.Artifacts, opts.formats, opts.output, script)
	if err != nil {
		return err
	}

	printSuccess("Exported %s", script)
	printStats(res.Stats.Surfaces, res.Stats.Lines, res.Stats.Nodes, res.Stats.Edges, res.CacheInfo.RenderHit)
	for _, p := range paths {
		printFile(p)
	}
	printNewline()
	printNextStep("Play it", appName+" play "+script)
	return nil
}

// needsLayout reports whether any format goes through Graphviz.
func needsLayout(formats []string) bool {
	for _, f := range formats {
		if f != pipeline.FormatDOT && f != pipeline.FormatJSON {
			return true
		}
	}
	return false
}

// writeArtifacts writes one file per format and returns the paths written.
// A single format is written to output verbatim when it is set.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	paths := make([]string, 0, len(formats))
	base := basePath(output, input)
	for _, f := range formats {
		path := base + "." + f
		if len(formats) == 1 && output != "" {
			path = output
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .dot, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
