// Package format serializes processed ordination data into the JavaScript
// declarations read by the ordiview front-end, and builds the HTML page that
// embeds them.
//
// Every function is a pure function of its inputs and [Options]: the same
// data always yields the same bytes. Records are emitted in sample order and
// never in map iteration order.
//
// # Declarations
//
//   - [PCoA]: g_spherePositions, g_ellipsesDimensions, scene bounds and labels
//   - [Metadata]: g_mappingFileHeaders, g_mappingFileData, g_animatableMappingFileHeaders
//   - [Taxa]: g_taxaPositions
//   - [Vectors]: g_vectorPositions
//   - [Comparison]: g_comparisonPositions, g_isSerialComparisonPlot
//
// # Numbers
//
// Coordinates use [Options.CoordDecimals] places, the rounded percentages
// use [Options.PercentDecimals] and axis labels [Options.LabelDecimals].
package format

import (
	"strconv"

	"github.com/matzehuels/ordiview/pkg/errors"
)

const (
	DefaultCoordDecimals    = 6
	DefaultPercentDecimals  = 2
	DefaultLabelDecimals    = 0
	DefaultSegments         = 8
	DefaultRadiusFraction   = 0.012
	DefaultMinTaxonRadius   = 0.5
	DefaultMaxTaxonRadius   = 5.0
	DefaultThresholdPercent = 0.51
	DefaultAxes             = 10
)

// Options controls numeric formatting and scene parameters.
type Options struct {
	CoordDecimals   int
	PercentDecimals int
	LabelDecimals   int

	Segments       int     // sphere segments and rings
	RadiusFraction float64 // sphere radius as a fraction of the x range

	MinTaxonRadius float64
	MaxTaxonRadius float64

	// ThresholdPercent is the variance explained an axis needs to be shown.
	ThresholdPercent float64
	DefaultAxes      int
}

// DefaultOptions returns the formatting used by the front-end.
func DefaultOptions() Options {
	return Options{
		CoordDecimals:    DefaultCoordDecimals,
		PercentDecimals:  DefaultPercentDecimals,
		LabelDecimals:    DefaultLabelDecimals,
		Segments:         DefaultSegments,
		RadiusFraction:   DefaultRadiusFraction,
		MinTaxonRadius:   DefaultMinTaxonRadius,
		MaxTaxonRadius:   DefaultMaxTaxonRadius,
		ThresholdPercent: DefaultThresholdPercent,
		DefaultAxes:      DefaultAxes,
	}
}

// EffectiveAxes is Options.EffectiveAxes with the default threshold.
func EffectiveAxes(percents []float64, requested, columns, custom int) (int, error) {
	return DefaultOptions().EffectiveAxes(percents, requested, columns, custom)
}

// EffectiveAxes returns how many axes can be displayed. The requested count
// (DefaultAxes when <= 0) is clamped to the number of columns, then to the
// custom axes plus the axes explaining more than ThresholdPercent. Fewer than
// three axes is a LOGIC_ERROR.
func (o Options) EffectiveAxes(percents []float64, requested, columns, custom int) (int, error) {
	n := requested
	if n <= 0 {
		n = o.DefaultAxes
	}
	n = min(n, columns)

	valid := custom
	for i := custom; i < len(percents); i++ {
		if percents[i] > o.ThresholdPercent {
			valid++
		}
	}
	n = min(n, valid)

	if n < errors.MinAxes {
		return n, errors.New(errors.ErrCodeLogic,
			"cannot generate a plot with %s; at least %d are needed",
			errors.Plural(n, "displayable axis", "displayable axes"), errors.MinAxes)
	}
	return n, nil
}

func (o Options) coord(v float64) string {
	return strconv.FormatFloat(v, 'f', o.CoordDecimals, 64)
}

func (o Options) percent(v float64) string {
	return strconv.FormatFloat(v, 'f', o.PercentDecimals, 64)
}

func (o Options) label(v float64) string {
	return strconv.FormatFloat(v, 'f', o.LabelDecimals, 64)
}
