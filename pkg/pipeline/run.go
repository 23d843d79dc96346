package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/ordiview/pkg/align"
	"github.com/matzehuels/ordiview/pkg/biplot"
	"github.com/matzehuels/ordiview/pkg/buildinfo"
	"github.com/matzehuels/ordiview/pkg/errors"
	"github.com/matzehuels/ordiview/pkg/format"
	"github.com/matzehuels/ordiview/pkg/jackknife"
	"github.com/matzehuels/ordiview/pkg/metadata"
	"github.com/matzehuels/ordiview/pkg/ordination"
	"github.com/matzehuels/ordiview/pkg/transform"
)

// run carries the intermediate values of one Run.
type run struct {
	opts Options
	src  *Sources

	replicates []*ordination.Result
	table      *metadata.Table // mapping rows of the plotted samples
	clones     int

	res     *ordination.Result
	summary *jackknife.Summary
	biplot  *biplot.Result
	axes    int

	missing, dropped []string
}

// Run processes parsed sources into plot artifacts.
func (r *Runner) Run(ctx context.Context, src *Sources, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if src == nil || src.Metadata == nil || src.Coordinates.Master() == nil {
		return nil, errors.New(errors.ErrCodeInternal, "incomplete pipeline sources")
	}
	if err := checkSources(src, &opts); err != nil {
		return nil, err
	}

	st := &run{opts: opts, src: src, replicates: src.Coordinates.Results()}
	if opts.ComparePlots {
		st.clones = len(st.replicates)
	}
	result := &Result{Artifacts: make(map[string][]byte)}

	alignStart := time.Now()
	if _, err := r.stage(ctx, "align", st.align); err != nil {
		return nil, err
	}
	if len(st.missing) > 0 {
		r.Logger.Warn("ignoring samples missing from the mapping file",
			"count", len(st.missing), "samples", st.missing)
	}

	if _, err := r.stage(ctx, "custom-axes", st.customAxes); err != nil {
		return nil, err
	}
	if len(st.dropped) > 0 {
		r.Logger.Warn("dropping samples without custom axis values",
			"count", len(st.dropped), "samples", st.dropped)
	}

	d, err := r.stage(ctx, "combine", st.combine)
	if err != nil {
		return nil, err
	}
	if st.summary != nil {
		r.Logger.Info("summarized replicates",
			"replicates", st.summary.Replicates,
			"method", opts.method,
			"duration", d)
	}
	result.Stats.AlignTime = time.Since(alignStart)

	if src.Taxa != nil {
		d, err := r.stage(ctx, "biplot", st.computeBiplot)
		if err != nil {
			return nil, err
		}
		r.Logger.Info("computed biplot", "taxa", len(st.biplot.Entries), "duration", d)
		result.Stats.Taxa = len(st.biplot.Entries)
	}

	renderStart := time.Now()
	if _, err := r.stage(ctx, "serialize", func() error {
		return st.serialize(result.Artifacts)
	}); err != nil {
		return nil, err
	}
	result.Stats.RenderTime = time.Since(renderStart)

	result.Ordination = st.res
	result.Summary = st.summary
	result.Input = src.Coordinates.Kind()
	result.Axes = st.axes
	result.Missing = st.missing
	result.Dropped = st.dropped
	result.Stats.Samples = len(st.replicates[0].SampleIDs)
	result.Stats.Replicates = len(st.replicates)

	r.Logger.Info("rendered plot",
		"samples", result.Stats.Samples,
		"axes", st.axes,
		"input", src.Coordinates.Kind(),
		"duration", result.Stats.RenderTime)
	return result, nil
}

func checkSources(src *Sources, opts *Options) error {
	replicated := src.Coordinates.Kind() == InputReplicated
	if opts.ComparePlots && !replicated {
		return errors.New(errors.ErrCodeConfiguration, "compare plots needs a directory of coordinate files")
	}
	if opts.ComparePlots && src.Taxa != nil {
		return errors.New(errors.ErrCodeConfiguration, "biplots cannot be combined with compare plots")
	}
	if opts.BiplotCoords && src.Taxa == nil {
		return errors.New(errors.ErrCodeConfiguration, "biplot coordinates need a taxa table")
	}
	n := 1
	if replicated {
		n = len(src.Coordinates.results)
	}
	return transform.CheckCustomAxes(n, opts.CustomAxes)
}

// align reconciles the replicates with the mapping file and restricts the
// mapping rows to the shared samples.
func (st *run) align() error {
	rec, err := align.Reconcile(st.replicates, st.src.Metadata.SampleIDs(), st.opts.IgnoreMissingSamples)
	if err != nil {
		return err
	}
	st.replicates = rec.Replicates
	st.missing = rec.Missing
	st.table = metadata.FilterRows(st.src.Metadata, rec.Shared, false)
	return nil
}

// customAxes fills missing values, injects the custom columns into every
// replicate and drops samples still lacking a value.
func (st *run) customAxes() error {
	names := st.opts.CustomAxes
	if len(names) == 0 {
		return nil
	}
	var err error
	for _, f := range st.opts.fills {
		if st.table, err = metadata.FillMissing(st.table, f.column, f.value); err != nil {
			return err
		}
	}

	for i, rep := range st.replicates {
		injected, err := transform.InjectCustomAxes(st.table, rep, names)
		if err != nil {
			return err
		}
		kept, dropped, err := transform.RemoveMissing(injected)
		if err != nil {
			return err
		}
		st.replicates[i] = kept
		if i == 0 {
			st.dropped = dropped
		}
	}
	if len(st.dropped) > 0 {
		st.table = metadata.FilterRows(st.table, st.dropped, true)
	}
	return nil
}

// combine turns the replicates into the ordination to plot and rescales the
// custom axes.
func (st *run) combine() error {
	var err error
	switch {
	case st.src.Coordinates.Kind() == InputSingle:
		st.res = st.replicates[0]
	case st.opts.ComparePlots:
		st.res, err = transform.CloneForComparison(st.replicates)
	default:
		st.summary, err = jackknife.Summarize(st.replicates, st.opts.method)
		if err == nil {
			st.res = st.summary.Result()
		}
	}
	if err != nil {
		return err
	}

	if st.res, err = transform.RescaleCustomAxes(st.res, len(st.opts.CustomAxes)); err != nil {
		return err
	}
	st.axes, err = st.opts.Format.EffectiveAxes(st.res.Percentages(), st.opts.NumberOfAxes,
		st.res.Axes(), len(st.res.CustomAxes))
	return err
}

func (st *run) computeBiplot() error {
	var err error
	st.biplot, err = biplot.Compute(st.src.Taxa, st.res, st.opts.NTaxa)
	return err
}

// serialize renders the data block and the page into artifacts.
func (st *run) serialize(artifacts map[string][]byte) error {
	opts := st.opts
	fopts := opts.Format

	// Comparison ids carry a "_<file>" suffix; the mapping rows follow suit.
	rows := st.table
	if st.clones > 0 {
		rows = metadata.Clone(rows, st.clones)
	}

	display, err := metadata.Preprocess(st.table, metadata.PreprocessOptions{
		Columns:      opts.ColorBy,
		DropUnique:   len(opts.ColorBy) == 0 && !opts.AddUniqueColumns,
		DropConstant: len(opts.ColorBy) == 0,
		Clones:       st.clones,
	})
	if err != nil {
		return err
	}
	mapping, err := format.Metadata(display, opts.ColorBy)
	if err != nil {
		return err
	}

	var ext format.Extents
	if st.summary != nil {
		ext = st.summary
	}
	pcoa, err := format.PCoA(st.res, ext, st.axes, fopts)
	if err != nil {
		return err
	}

	var entries []biplot.Entry
	if st.biplot != nil {
		entries = st.biplot.Entries
	}
	taxa := format.Taxa(entries, format.SphereRadius(st.res, fopts), fopts)

	vectors := "var g_vectorPositions = new Array();\n"
	if connect, sortBy := opts.VectorColumns(); connect != "" {
		if vectors, err = format.Vectors(rows, st.res, connect, sortBy, fopts); err != nil {
			return err
		}
	}

	comparison, err := format.Comparison(st.res, st.clones, opts.SerialComparison, fopts)
	if err != nil {
		return err
	}

	data := format.DataBlock(mapping, pcoa, taxa, vectors, comparison)
	page, err := format.Page(format.PageData{
		Title:         opts.Title,
		Generator:     buildinfo.Banner(),
		Data:          data,
		HasBiplots:    st.biplot != nil,
		HasEllipsoids: st.summary != nil,
		HasVectors:    len(opts.AddVectors) > 0,
		HasComparison: st.clones > 0,
	})
	if err != nil {
		return err
	}

	artifacts[ArtifactPage] = page
	artifacts[ArtifactData] = []byte(data)
	if opts.BiplotCoords {
		artifacts[ArtifactBiplot] = biplot.ScoresText(st.biplot, fopts.CoordDecimals)
	}
	return nil
}
