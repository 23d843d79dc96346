// Package io locates and loads ordiview inputs and writes the output bundle.
//
// # Coordinates
//
// [LoadCoordinates] accepts either a single ordination file or a directory of
// replicate ordinations (jackknife replicates or files to compare). Directory
// entries are read in name order, hidden files and subdirectories skipped.
// In comparison mode the files are ordered by their "_q<N>.txt" suffix
// instead (see [SortComparisonFilenames]). The master ordination is always
// the first result.
//
// # Output
//
// [WriteBundle] writes the rendered artifacts into an output directory, and
// [CopyResources] copies the static front-end assets next to them. Every
// file is opened, written and closed before the next one; any failure is an
// IO_ERROR.
package io
