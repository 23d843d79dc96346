// Package pipeline runs the ordiview preprocessing pipeline.
//
// A run takes one coordinates input (a single ordination or several
// replicates), a mapping file and optionally a taxon count table, and
// produces the artifacts of a plot: the HTML page, the bare data block and,
// on request, the biplot scores.
//
// # Stages
//
//  1. Align: reconcile coordinate and mapping sample ids
//  2. Custom axes: inject metadata columns as leading axes
//  3. Combine: jackknife summary or comparison set for replicated input
//  4. Biplot: project taxa into the ordination
//  5. Serialize: emit the data block and page
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{
//	    Coordinates: "unweighted_unifrac_pc.txt",
//	    Mapping:     "mapping.txt",
//	    CustomAxes:  []string{"DOB"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	page := result.Artifacts[pipeline.ArtifactPage]
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ordiview/pkg/errors"
	"github.com/matzehuels/ordiview/pkg/format"
	"github.com/matzehuels/ordiview/pkg/jackknife"
	"github.com/matzehuels/ordiview/pkg/metadata"
	"github.com/matzehuels/ordiview/pkg/ordination"
	"github.com/matzehuels/ordiview/pkg/taxa"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	DefaultNumberOfAxes     = format.DefaultAxes
	DefaultNumberOfSegments = format.DefaultSegments
	DefaultTitle            = "Ordiview"
)

// DefaultEllipsoidMethod is the jackknife dispersion used for ellipsoids.
const DefaultEllipsoidMethod = jackknife.DefaultMethod

// Artifact names.
const (
	ArtifactPage   = "index.html"
	ArtifactData   = "data.js"
	ArtifactBiplot = "biplot_coords.txt"
)

// =============================================================================
// Input
// =============================================================================

// InputKind tells single and replicated coordinates apart.
type InputKind int

const (
	InputSingle InputKind = iota
	InputReplicated
)

func (k InputKind) String() string {
	if k == InputReplicated {
		return "replicated"
	}
	return "single"
}

// Input is either one ordination or several replicates, master first.
type Input struct {
	kind    InputKind
	results []*ordination.Result
}

// Single wraps one ordination.
func Single(res *ordination.Result) Input {
	return Input{kind: InputSingle, results: []*ordination.Result{res}}
}

// Replicated wraps replicate ordinations; results[0] is the master.
func Replicated(results []*ordination.Result) Input {
	return Input{kind: InputReplicated, results: append([]*ordination.Result(nil), results...)}
}

// Kind reports the variant.
func (in Input) Kind() InputKind { return in.kind }

// Results returns the ordinations, master first.
func (in Input) Results() []*ordination.Result {
	return append([]*ordination.Result(nil), in.results...)
}

// Master returns the first ordination, or nil for an empty input.
func (in Input) Master() *ordination.Result {
	if len(in.results) == 0 {
		return nil
	}
	return in.results[0]
}

// Sources are the parsed inputs of a run.
type Sources struct {
	Coordinates Input
	Metadata    *metadata.Table
	Taxa        *taxa.Table // nil without a biplot
}

// =============================================================================
// Options
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Input paths, used by Load and Execute.
	Coordinates string `json:"coordinates,omitempty"`
	Mapping     string `json:"mapping,omitempty"`
	Taxa        string `json:"taxa,omitempty"`
	Master      string `json:"master,omitempty"`

	// Metadata
	CustomAxes              []string `json:"custom_axes,omitempty"`
	MissingCustomAxesValues []string `json:"missing_custom_axes_values,omitempty"` // "column:value"
	ColorBy                 []string `json:"color_by,omitempty"`
	AddUniqueColumns        bool     `json:"add_unique_columns,omitempty"`
	IgnoreMissingSamples    bool     `json:"ignore_missing_samples,omitempty"`

	// Scene
	EllipsoidMethod  string `json:"ellipsoid_method,omitempty"`
	NumberOfAxes     int    `json:"number_of_axes,omitempty"`
	NumberOfSegments int    `json:"number_of_segments,omitempty"`
	Title            string `json:"title,omitempty"`

	// Biplot
	NTaxa        int  `json:"n_taxa,omitempty"` // 0 keeps every taxon
	BiplotCoords bool `json:"biplot_coords,omitempty"`

	// Vectors and comparison
	AddVectors       []string `json:"add_vectors,omitempty"` // connect column, optional sort column
	ComparePlots     bool     `json:"compare_plots,omitempty"`
	SerialComparison bool     `json:"serial_comparison,omitempty"`

	// Runtime options (not serialized)
	Format format.Options `json:"-"`
	Logger *log.Logger    `json:"-"`

	method    jackknife.Method
	fills     []fill
	validated bool
}

type fill struct {
	column, value string
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Artifacts contains the rendered files keyed by name.
	Artifacts map[string][]byte

	// Ordination is the serialized ordination: the master, the jackknife
	// mean or the stacked comparison set.
	Ordination *ordination.Result

	// Summary is set for jackknifed input.
	Summary *jackknife.Summary

	// Input is the kind of coordinates input.
	Input InputKind

	// Axes is the number of displayed axes.
	Axes int

	// Missing lists coordinate samples absent from the mapping file that
	// were dropped; Dropped lists samples lacking a custom axis value.
	Missing []string
	Dropped []string

	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Samples    int
	Replicates int
	Taxa       int
	LoadTime   time.Duration
	AlignTime  time.Duration
	RenderTime time.Duration
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks option values and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.validateScene(); err != nil {
		return err
	}
	if err := o.validateMetadata(); err != nil {
		return err
	}
	if o.SerialComparison && !o.ComparePlots {
		return errors.New(errors.ErrCodeConfiguration, "serial comparison requires compare plots")
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks the input paths Load needs.
func (o *Options) ValidateForLoad() error {
	if o.Coordinates == "" {
		return errors.New(errors.ErrCodeConfiguration, "coordinates path is required")
	}
	if o.Mapping == "" {
		return errors.New(errors.ErrCodeConfiguration, "mapping file path is required")
	}
	if o.BiplotCoords && o.Taxa == "" {
		return errors.New(errors.ErrCodeConfiguration, "biplot coordinates need a taxa table")
	}
	return nil
}

// SetDefaults fills zero values.
func (o *Options) SetDefaults() {
	if o.EllipsoidMethod == "" {
		o.EllipsoidMethod = string(DefaultEllipsoidMethod)
	}
	if o.NumberOfAxes == 0 {
		o.NumberOfAxes = DefaultNumberOfAxes
	}
	if o.NumberOfSegments == 0 {
		o.NumberOfSegments = DefaultNumberOfSegments
	}
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Format == (format.Options{}) {
		o.Format = format.DefaultOptions()
	}
	o.Format.Segments = o.NumberOfSegments
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

func (o *Options) validateScene() error {
	if err := errors.ValidateAxisCount(o.NumberOfAxes); err != nil {
		return err
	}
	if err := errors.ValidateSegments(o.NumberOfSegments); err != nil {
		return err
	}
	if err := errors.ValidateTaxaCount(o.NTaxa); err != nil {
		return err
	}
	m, err := jackknife.ParseMethod(o.EllipsoidMethod)
	if err != nil {
		return err
	}
	o.method = m
	return nil
}

func (o *Options) validateMetadata() error {
	for _, names := range [][]string{o.CustomAxes, o.ColorBy, o.AddVectors} {
		if err := errors.ValidateCategoryNames(names); err != nil {
			return err
		}
	}
	if n := len(o.AddVectors); n > 2 {
		return errors.New(errors.ErrCodeConfiguration,
			"vectors take a connecting column and an optional sorting column, got %d columns", n)
	}

	o.fills = o.fills[:0]
	for _, v := range o.MissingCustomAxesValues {
		column, value, ok := strings.Cut(v, ":")
		if !ok || column == "" {
			return errors.New(errors.ErrCodeConfiguration,
				"missing custom axis value %q must look like column:value", v)
		}
		if !contains(o.CustomAxes, column) {
			return errors.New(errors.ErrCodeConfiguration,
				"missing value given for %q, which is not a custom axis", column)
		}
		if _, ok := metadata.ParseFloat(value); !ok {
			return errors.New(errors.ErrCodeConfiguration,
				"missing value for custom axis %q must be numeric, got %q", column, value)
		}
		o.fills = append(o.fills, fill{column: column, value: value})
	}
	return nil
}

// Method returns the parsed ellipsoid method. Valid after
// ValidateAndSetDefaults.
func (o *Options) Method() jackknife.Method { return o.method }

// VectorColumns returns the connecting and sorting columns; both are empty
// without vectors.
func (o *Options) VectorColumns() (connect, sortBy string) {
	if len(o.AddVectors) > 0 {
		connect = o.AddVectors[0]
	}
	if len(o.AddVectors) > 1 {
		sortBy = o.AddVectors[1]
	}
	return connect, sortBy
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
