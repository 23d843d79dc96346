package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ordiview/pkg/errors"
	"github.com/matzehuels/ordiview/pkg/format"
	oio "github.com/matzehuels/ordiview/pkg/io"
	"github.com/matzehuels/ordiview/pkg/metadata"
	"github.com/matzehuels/ordiview/pkg/observability"
	"github.com/matzehuels/ordiview/pkg/taxa"
)

// Runner executes the pipeline. It holds no run state, so one Runner can
// serve several runs.
type Runner struct {
	Logger *log.Logger
	Hooks  observability.PipelineHooks
}

// NewRunner creates a runner reporting to the registered hooks.
// If logger is nil, log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger, Hooks: observability.Pipeline()}
}

// Execute loads the inputs named in opts and runs the pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	src, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	loadTime := time.Since(start)

	res, err := r.Run(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	res.Stats.LoadTime = loadTime
	return res, nil
}

// Load reads the coordinates, mapping file and optional taxa table.
func (r *Runner) Load(ctx context.Context, opts Options) (*Sources, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	hooks := r.hooks()
	src := &Sources{}

	hooks.OnLoadStart(ctx, "coordinates", opts.Coordinates)
	start := time.Now()
	coords, err := oio.LoadCoordinates(opts.Coordinates, oio.CoordinateOptions{
		Master:     opts.Master,
		Comparison: opts.ComparePlots,
	})
	samples := 0
	if err == nil {
		samples = coords.Results[0].Samples()
	}
	hooks.OnLoadComplete(ctx, "coordinates", opts.Coordinates, samples, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if coords.Replicated {
		src.Coordinates = Replicated(coords.Results)
	} else {
		src.Coordinates = Single(coords.Results[0])
	}
	r.Logger.Info("loaded coordinates",
		"files", len(coords.Paths),
		"samples", samples,
		"axes", coords.Results[0].Axes(),
		"duration", time.Since(start))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks.OnLoadStart(ctx, "mapping", opts.Mapping)
	start = time.Now()
	src.Metadata, err = oio.LoadMetadata(opts.Mapping, metadata.DefaultParseOptions())
	samples = 0
	if err == nil {
		samples = len(src.Metadata.Rows)
	}
	hooks.OnLoadComplete(ctx, "mapping", opts.Mapping, samples, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("loaded mapping file",
		"samples", samples,
		"columns", len(src.Metadata.Headers))

	if opts.Taxa == "" {
		return src, nil
	}
	hooks.OnLoadStart(ctx, "taxa", opts.Taxa)
	start = time.Now()
	src.Taxa, err = oio.LoadTaxa(opts.Taxa, taxa.ParseOptions{RemoveEmptyRows: true})
	samples = 0
	if err == nil {
		samples = len(src.Taxa.SampleIDs)
	}
	hooks.OnLoadComplete(ctx, "taxa", opts.Taxa, samples, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("loaded taxa table",
		"features", src.Taxa.Features(),
		"samples", samples)
	return src, nil
}

// Write stores the artifacts in dir. A non-empty resources directory is
// copied next to them under format.DefaultResourcesPath.
func (r *Runner) Write(ctx context.Context, dir string, res *Result, resources string) error {
	if err := errors.ValidateOutputPath(dir); err != nil {
		return err
	}
	n, err := oio.WriteBundle(dir, res.Artifacts)
	if err == nil && resources != "" {
		err = oio.CopyResources(resources, filepath.Join(dir, format.DefaultResourcesPath))
	}
	r.hooks().OnWrite(ctx, dir, len(res.Artifacts), n, err)
	if err != nil {
		return err
	}
	r.Logger.Info("wrote plot", "dir", dir, "files", len(res.Artifacts), "bytes", n)
	return nil
}

// stage runs fn between the stage hooks.
func (r *Runner) stage(ctx context.Context, name string, fn func() error) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	hooks := r.hooks()
	hooks.OnStageStart(ctx, name)
	start := time.Now()
	err := fn()
	d := time.Since(start)
	hooks.OnStageComplete(ctx, name, d, err)
	return d, err
}

func (r *Runner) hooks() observability.PipelineHooks {
	if r.Hooks == nil {
		return observability.NoopPipelineHooks{}
	}
	return r.Hooks
}
