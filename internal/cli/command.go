package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/pflag"

	"github.com/ossobv/dutree/internal/integration"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// Options configures a dutree invocation.
type Options struct {
	// Path is the directory to scan.
	Path string
	// Blocks bases significance on allocated blocks instead of
	// apparent size.
	Blocks bool
	// Summary computes only the grand totals, without the tree.
	Summary bool
	// Output represents output format (table or json).
	Output string
	// Debug indicates whether debug output is enabled.
	Debug bool
	// Version indicates whether to show version and exit.
	Version bool
	// Integration indicates whether to output the shell integration
	// script.
	Integration bool
}

func help() {
	//nolint:forbidigo // Help output to console
	fmt.Println(heredoc.Doc(`
		dutree reports disk usage as the small set of paths that each hold a
		significant share (at least 5% of the total) of the space under a
		directory. Everything else is folded into per-directory '*' leftover
		lines.

		Usage:

			dutree [flags] [path]

		Positional Arguments:
		  path                   Directory to scan. Defaults to current directory if not specified.

		Notes:
		  Directories report the size of their contents, excluding themselves;
		  the entry a directory occupies in its parent counts towards the
		  parent's leftovers. This matches 'du -sb' totals.

		Flags:
	`))
	pflag.PrintDefaults()
}

// Execute runs the CLI with the provided arguments.
func (c CLI) Execute() error {
	var options Options

	allowedOutputs := []string{"table", "json"}

	pflag.BoolVarP(&options.Blocks, "blocks", "b", false, "Base significance on allocated blocks instead of apparent size")
	pflag.BoolVarP(&options.Summary, "summary", "s", false, "Only compute grand totals, using a parallel walk")
	pflag.StringVarP(&options.Output, "output", "o", "table", "Output format: json or table")
	pflag.BoolVar(&options.Debug, "debug", false, "Enable debug output")
	pflag.BoolVarP(&options.Version, "version", "v", false, "Show version and exit")
	pflag.BoolVarP(&options.Integration, "init", "i", false, "Output init script for shell usage")

	pflag.CommandLine.SortFlags = false
	pflag.Usage = help
	pflag.Parse()

	if options.Version {
		//nolint:forbidigo // Version output to console
		fmt.Println(c.version)

		return nil
	}

	if options.Integration {
		rendered, err := integration.Render()
		if err != nil {
			return fmt.Errorf("rendering integration script: %w", err)
		}

		//nolint:forbidigo // Integration script output to console
		fmt.Println(rendered)

		return nil
	}

	if !slices.Contains(allowedOutputs, options.Output) {
		return fmt.Errorf("invalid output format %q: must be one of %v", options.Output, allowedOutputs)
	}

	if pflag.NArg() > 1 {
		return errors.New("at most one path may be given")
	}

	if pflag.NArg() == 0 {
		options.Path = "."
	} else {
		options.Path = pflag.Args()[0]
	}

	return logic(options)
}
