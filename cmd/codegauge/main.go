package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codegauge/internal/analysis"
	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
	"github.com/standardbeagle/codegauge/internal/report"
	"github.com/standardbeagle/codegauge/internal/version"
)

// Exit codes
const (
	exitOK    = 0
	exitUsage = 1
	exitFatal = 2
)

var Version = version.Version

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:                   "codegauge",
		Usage:                  "Sandboxed static analysis: complexity, dependencies, coupling and file metrics",
		Version:                Version,
		UseShortOptionHandling: true,
		Writer:                 stdout,
		ErrWriter:              stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Analysis root; nothing outside it is ever read (default: current directory)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (default: <root>/.codegauge.kdl when present)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, yaml (default: text on a terminal, json otherwise)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Only analyze files matching glob patterns (e.g., --include 'src/**/*.ts')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Skip files matching glob patterns (e.g., --exclude '**/testdata/**')",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Debug logging on stderr",
			},
			&cli.StringFlag{
				Name:  "max-file-size",
				Usage: "Skip files larger than this (e.g., 512KB, 2MB)",
			},
			&cli.StringFlag{
				Name:  "max-total-size",
				Usage: "Stop reading once this many bytes were consumed (e.g., 50MB)",
			},
			&cli.DurationFlag{
				Name:  "file-timeout",
				Usage: "Per-file parse time limit",
			},
			&cli.DurationFlag{
				Name:  "run-timeout",
				Usage: "Whole-run time limit; an expired run reports partial results",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Parallel parse workers (1 = sequential)",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Re-run the analysis whenever a source file changes",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "complexity",
				Aliases:   []string{"cx"},
				Usage:     "Cyclomatic complexity per function",
				ArgsUsage: "[target]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "threshold", Aliases: []string{"t"}, Usage: "Flag functions above this complexity"},
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "List every function in text output"},
				},
				Action: analyzeCommand(analysis.KindComplexity),
			},
			{
				Name:      "deps",
				Aliases:   []string{"d"},
				Usage:     "Dependency graph, cycles and orphans",
				ArgsUsage: "[target]",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "entry", Aliases: []string{"e"}, Usage: "Entry point globs never reported as orphans"},
					&cli.IntFlag{Name: "max-cycles", Usage: "Stop enumerating cycles after this many"},
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "List every module in text output"},
				},
				Action: analyzeCommand(analysis.KindDependencies),
			},
			{
				Name:      "coupling",
				Aliases:   []string{"cp"},
				Usage:     "Fan-in and fan-out per module",
				ArgsUsage: "[target]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "threshold", Aliases: []string{"t"}, Usage: "Flag modules whose fan-in plus fan-out exceeds this"},
					&cli.IntFlag{Name: "top", Usage: "How many of the most coupled modules to summarize"},
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "List every module in text output"},
				},
				Action: analyzeCommand(analysis.KindCoupling),
			},
			{
				Name:      "metrics",
				Aliases:   []string{"m"},
				Usage:     "Line counts and structure per file",
				ArgsUsage: "[target]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "budget", Aliases: []string{"b"}, Usage: "Flag files with more lines than this"},
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "List every file in text output"},
				},
				Action: analyzeCommand(analysis.KindMetrics),
			},
			{
				Name:   "mcp",
				Usage:  "Serve the analyzers as MCP tools over stdio",
				Action: mcpCommand,
			},
			{
				Name:  "config",
				Usage: "Configuration management",
				Subcommands: []*cli.Command{
					{
						Name:    "show",
						Aliases: []string{"s"},
						Usage:   "Show the effective configuration after defaults, file and flags",
						Action:  configShowCommand,
					},
				},
			},
		},
	}
}

// run executes the CLI and maps the outcome to an exit code. Fatal errors
// are written to stdout as a single JSON object.
func run(args []string, stdout, stderr io.Writer) int {
	err := newApp(stdout, stderr).Run(args)
	if err == nil {
		return exitOK
	}
	if cgerrors.IsFatal(err) {
		if werr := report.WriteFatal(stdout, err); werr != nil {
			fmt.Fprintf(stderr, "Fatal error: %v\n", err)
		}
		return exitFatal
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitUsage
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}
