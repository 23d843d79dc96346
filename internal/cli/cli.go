// Package cli implements the ordiview command-line interface.
//
// # Commands
//
//   - make: render a plot bundle from coordinates and a mapping file
//   - check: load and reconcile the inputs without writing anything
//   - completion: generate shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// reports every pipeline stage.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ordiview/pkg/buildinfo"
	"github.com/matzehuels/ordiview/pkg/observability"
	"github.com/matzehuels/ordiview/pkg/pipeline"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Out    io.Writer
}

// New creates a CLI logging to w at level and printing results to out.
func New(w, out io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), Out: out}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ordiview",
		Short: "Ordiview turns PCoA results into interactive 3D plots",
		Long: `Ordiview reads principal coordinates (PCoA) results and a sample mapping
file and writes a self-contained HTML plot with biplots, jackknifed
ellipsoids, custom axes, vectors and comparison plots.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.makeCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.completionCommand())
	return root
}

// newRunner creates a pipeline runner reporting stages to the CLI logger.
func (c *CLI) newRunner() *pipeline.Runner {
	r := pipeline.NewRunner(c.Logger)
	r.Hooks = observability.LogHooks{Logger: c.Logger}
	return r
}
