package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/ordiview/pkg/config"
	"github.com/matzehuels/ordiview/pkg/errors"
	"github.com/matzehuels/ordiview/pkg/format"
	"github.com/matzehuels/ordiview/pkg/pipeline"
)

// makeOptions holds the flags of the make and check commands. Settings are
// bound to a config.Config so a file and the command line share one shape.
type makeOptions struct {
	cfg        config.Config
	configPath string
	saveConfig string
}

func newMakeOptions() *makeOptions {
	return &makeOptions{cfg: *config.Default()}
}

// makeCommand creates the make command for rendering a plot bundle.
func (c *CLI) makeCommand() *cobra.Command {
	opts := newMakeOptions()

	cmd := &cobra.Command{
		Use:   "make",
		Short: "Render an interactive plot from PCoA results",
		Long: `Render an interactive plot from PCoA results and a sample mapping file.

The input is either one coordinates file or a directory of coordinates
files. A directory is jackknifed into ellipsoids unless --compare-plots is
given, in which case every file is drawn and matching samples are joined.

Settings may also come from a TOML or YAML file given with --config; flags
on the command line take precedence.`,
		Example: `  ordiview make -i unweighted_unifrac_pc.txt -m mapping.txt -o plot
  ordiview make -i jackknifed_pcoa/ -m mapping.txt -o plot --ellipsoid-method sdev
  ordiview make -i pc.txt -m mapping.txt -o plot --custom-axes DOB --missing-custom-axes-values DOB:20060000
  ordiview make --config run.toml -o plot2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			return c.runMake(cmd.Context(), cfg, opts.saveConfig)
		},
	}

	opts.bind(cmd.Flags())
	return cmd
}

// bind registers the run-configuration flags.
func (o *makeOptions) bind(fs *pflag.FlagSet) {
	cfg := &o.cfg
	fs.StringVarP(&cfg.Input, "input", "i", "", "coordinates file or directory of coordinates files")
	fs.StringVarP(&cfg.Mapping, "mapping", "m", "", "sample mapping file")
	fs.StringVarP(&cfg.Output, "output", "o", "", "output directory")
	fs.StringVar(&cfg.Master, "master", "", "coordinates file used as master for a directory input")
	fs.StringVarP(&cfg.Taxa, "taxa", "t", "", "taxon count table for biplots")
	fs.StringVar(&cfg.Resources, "resources", "", "directory of front-end assets to copy next to the page")
	fs.StringSliceVarP(&cfg.CustomAxes, "custom-axes", "a", nil, "numeric mapping columns drawn as leading axes")
	fs.StringSliceVar(&cfg.MissingCustomAxesValues, "missing-custom-axes-values", nil, "fill values for custom axes as column:value")
	fs.StringSliceVarP(&cfg.ColorBy, "color-by", "b", nil, "mapping columns offered for coloring (default all)")
	fs.BoolVar(&cfg.AddUniqueColumns, "add-unique-columns", false, "keep columns whose values are all different")
	fs.BoolVar(&cfg.IgnoreMissingSamples, "ignore-missing-samples", false, "drop coordinate samples absent from the mapping file")
	fs.StringVarP(&cfg.EllipsoidMethod, "ellipsoid-method", "e", cfg.EllipsoidMethod, "jackknife dispersion: IQR, ideal_fourths or sdev")
	fs.IntVar(&cfg.NumberOfAxes, "number-of-axes", cfg.NumberOfAxes, "number of axes to display (at least 3)")
	fs.IntVar(&cfg.NumberOfSegments, "number-of-segments", cfg.NumberOfSegments, "sphere and ellipsoid resolution (4 to 14)")
	fs.StringVar(&cfg.Title, "title", "", "page title")
	fs.IntVar(&cfg.NTaxa, "n-taxa", cfg.NTaxa, "number of taxa drawn in biplots (0 keeps all)")
	fs.BoolVar(&cfg.BiplotCoords, "biplot-coords", false, "also write the biplot scores")
	fs.StringSliceVar(&cfg.AddVectors, "add-vectors", nil, "connect samples by a column, optionally sorted by a second column")
	fs.BoolVar(&cfg.ComparePlots, "compare-plots", false, "draw every coordinates file of a directory and join matching samples")
	fs.BoolVar(&cfg.SerialComparison, "serial-comparison", false, "join comparison files in sequence instead of to the master")
	fs.StringVarP(&o.configPath, "config", "c", "", "run configuration file (.toml, .yaml)")
	fs.StringVar(&o.saveConfig, "save-config", "", "write the effective configuration to a file")
}

// flagSetters copies one flag's value between configurations.
var flagSetters = map[string]func(dst, src *config.Config){
	"input":                      func(d, s *config.Config) { d.Input = s.Input },
	"mapping":                    func(d, s *config.Config) { d.Mapping = s.Mapping },
	"output":                     func(d, s *config.Config) { d.Output = s.Output },
	"master":                     func(d, s *config.Config) { d.Master = s.Master },
	"taxa":                       func(d, s *config.Config) { d.Taxa = s.Taxa },
	"resources":                  func(d, s *config.Config) { d.Resources = s.Resources },
	"custom-axes":                func(d, s *config.Config) { d.CustomAxes = s.CustomAxes },
	"missing-custom-axes-values": func(d, s *config.Config) { d.MissingCustomAxesValues = s.MissingCustomAxesValues },
	"color-by":                   func(d, s *config.Config) { d.ColorBy = s.ColorBy },
	"add-unique-columns":         func(d, s *config.Config) { d.AddUniqueColumns = s.AddUniqueColumns },
	"ignore-missing-samples":     func(d, s *config.Config) { d.IgnoreMissingSamples = s.IgnoreMissingSamples },
	"ellipsoid-method":           func(d, s *config.Config) { d.EllipsoidMethod = s.EllipsoidMethod },
	"number-of-axes":             func(d, s *config.Config) { d.NumberOfAxes = s.NumberOfAxes },
	"number-of-segments":         func(d, s *config.Config) { d.NumberOfSegments = s.NumberOfSegments },
	"title":                      func(d, s *config.Config) { d.Title = s.Title },
	"n-taxa":                     func(d, s *config.Config) { d.NTaxa = s.NTaxa },
	"biplot-coords":              func(d, s *config.Config) { d.BiplotCoords = s.BiplotCoords },
	"add-vectors":                func(d, s *config.Config) { d.AddVectors = s.AddVectors },
	"compare-plots":              func(d, s *config.Config) { d.ComparePlots = s.ComparePlots },
	"serial-comparison":          func(d, s *config.Config) { d.SerialComparison = s.SerialComparison },
}

// resolve returns the effective configuration: the file named by --config
// (or the defaults) overlaid with every flag set on the command line.
func (o *makeOptions) resolve(fs *pflag.FlagSet) (*config.Config, error) {
	if o.configPath == "" {
		cfg := o.cfg
		return &cfg, nil
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	fs.Visit(func(f *pflag.Flag) {
		if set, ok := flagSetters[f.Name]; ok {
			set(cfg, &o.cfg)
		}
	})
	return cfg, nil
}

// pipelineOptions converts a run configuration.
func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		Coordinates:             cfg.Input,
		Mapping:                 cfg.Mapping,
		Taxa:                    cfg.Taxa,
		Master:                  cfg.Master,
		CustomAxes:              cfg.CustomAxes,
		MissingCustomAxesValues: cfg.MissingCustomAxesValues,
		ColorBy:                 cfg.ColorBy,
		AddUniqueColumns:        cfg.AddUniqueColumns,
		IgnoreMissingSamples:    cfg.IgnoreMissingSamples,
		EllipsoidMethod:         cfg.EllipsoidMethod,
		NumberOfAxes:            cfg.NumberOfAxes,
		NumberOfSegments:        cfg.NumberOfSegments,
		Title:                   cfg.Title,
		NTaxa:                   cfg.NTaxa,
		BiplotCoords:            cfg.BiplotCoords,
		AddVectors:              cfg.AddVectors,
		ComparePlots:            cfg.ComparePlots,
		SerialComparison:        cfg.SerialComparison,
	}
}

func (c *CLI) runMake(ctx context.Context, cfg *config.Config, saveConfig string) error {
	if cfg.Output == "" {
		return errors.New(errors.ErrCodeConfiguration, "output directory is required (--output)")
	}
	if saveConfig != "" {
		if err := config.Save(cfg, saveConfig); err != nil {
			return err
		}
		c.Logger.Debug("saved configuration", "path", saveConfig)
	}

	opts := pipelineOptions(cfg)
	opts.Logger = c.Logger
	runner := c.newRunner()

	spinner := newSpinner(ctx, c.Out, "Rendering plot...")
	spinner.Start()
	res, err := runner.Execute(ctx, opts)
	spinner.Stop()
	if err != nil {
		return err
	}

	if err := runner.Write(ctx, cfg.Output, res, cfg.Resources); err != nil {
		return err
	}

	c.printResult(res)
	printSuccess(c.Out, "Plot written to %s", cfg.Output)
	for _, name := range sortedArtifacts(res.Artifacts) {
		printFile(c.Out, filepath.Join(cfg.Output, name))
	}
	if cfg.Resources != "" {
		printFile(c.Out, filepath.Join(cfg.Output, format.DefaultResourcesPath))
	}
	if saveConfig != "" {
		printInfo(c.Out, "Configuration saved to %s", saveConfig)
	}
	printNextStep(c.Out, "Open", filepath.Join(cfg.Output, pipeline.ArtifactPage))
	return nil
}

// printResult prints sample counts and warnings shared by make and check.
func (c *CLI) printResult(res *pipeline.Result) {
	printStats(c.Out,
		errors.Plural(res.Stats.Samples, "sample", "samples"),
		errors.Plural(res.Axes, "axis", "axes"),
		errors.Plural(res.Stats.Replicates, "replicate", "replicates"),
		errors.Plural(res.Stats.Taxa, "taxon", "taxa"))
	if len(res.Missing) > 0 {
		printWarning(c.Out, "%s missing from the mapping file: %s",
			errors.Plural(len(res.Missing), "sample", "samples"), sampleList(res.Missing))
	}
	if len(res.Dropped) > 0 {
		printWarning(c.Out, "%s without a custom axis value: %s",
			errors.Plural(len(res.Dropped), "sample", "samples"), sampleList(res.Dropped))
	}
}
