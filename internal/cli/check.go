package cli

import (
	"context"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ordiview/pkg/pipeline"
)

// checkCommand creates the check command, which runs the pipeline without
// writing anything.
func (c *CLI) checkCommand() *cobra.Command {
	opts := newMakeOptions()

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate inputs without writing a plot",
		Long: `Load the coordinates and mapping file, reconcile their samples and run
every preprocessing step, then report what a make run would draw.`,
		Example: `  ordiview check -i unweighted_unifrac_pc.txt -m mapping.txt
  ordiview check --config run.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			return c.runCheck(cmd.Context(), pipelineOptions(cfg))
		},
	}

	opts.bind(cmd.Flags())
	return cmd
}

func (c *CLI) runCheck(ctx context.Context, opts pipeline.Options) error {
	opts.Logger = c.Logger
	res, err := c.newRunner().Execute(ctx, opts)
	if err != nil {
		return err
	}

	kind := res.Input.String()
	if res.Input == pipeline.InputReplicated && opts.ComparePlots {
		kind = "comparison"
	}
	printSuccess(c.Out, "Inputs are consistent")
	printKeyValue(c.Out, "Input", kind)
	printKeyValue(c.Out, "Samples", strconv.Itoa(res.Stats.Samples))
	printKeyValue(c.Out, "Axes", strconv.Itoa(res.Axes))
	if res.Input == pipeline.InputReplicated {
		printKeyValue(c.Out, "Replicates", strconv.Itoa(res.Stats.Replicates))
	}
	if res.Stats.Taxa > 0 {
		printKeyValue(c.Out, "Taxa", strconv.Itoa(res.Stats.Taxa))
	}
	c.printResult(res)
	return nil
}

// sortedArtifacts returns artifact names in lexical order.
func sortedArtifacts(artifacts map[string][]byte) []string {
	names := make([]string, 0, len(artifacts))
	for name := range artifacts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
