// Package pkg provides the core libraries for ordiview plots.
//
// # Overview
//
// Ordiview turns principal coordinates analysis (PCoA) results into an
// interactive 3D scatter plot. The libraries read the ordination and the
// sample mapping file, reconcile the two, reshape the coordinates and emit
// the JavaScript data block the viewer consumes.
//
// # Architecture
//
// The typical data flow:
//
//	coordinates file(s) + mapping file (+ taxa table)
//	         ↓
//	    [io] (load and check paths)
//	         ↓
//	    [align] (reconcile sample ids)
//	         ↓
//	    [transform] (custom axes, comparison clones)
//	         ↓
//	    [jackknife] (replicate summary and ellipsoids)
//	         ↓
//	    [biplot] (taxa projected into the ordination)
//	         ↓
//	    [format] (data block and HTML page)
//
// [pipeline] runs these steps in order and is what the CLI calls.
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/ordiview/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil)
//	res, err := runner.Execute(context.Background(), pipeline.Options{
//	    Coordinates: "jackknifed_pcoa",
//	    Mapping:     "mapping.txt",
//	})
//	if err != nil {
//	    return err
//	}
//	err = runner.Write(context.Background(), "plot", res, "")
//
// # Main Packages
//
// ## Inputs
//
// [ordination] - Ordination results: sample ids, a coordinates matrix,
// eigenvalues and proportions explained. Parses the sectioned and legacy
// coordinates formats.
//
// [metadata] - The tab-separated sample mapping file and its preprocessing
// (filtering rows, dropping constant or unique columns, cloning for
// comparison plots).
//
// [taxa] - Taxon count tables used for biplots.
//
// [io] - Filesystem access: coordinates directories, master selection,
// comparison file ordering, bundle writes and resource copies.
//
// ## Processing
//
// [align] - Sample reconciliation between coordinates and metadata.
//
// [transform] - Custom metadata axes, missing-value removal, rescaling and
// comparison cloning.
//
// [jackknife] - Sign alignment of replicates against the master and the
// dispersion summaries (IQR, ideal fourths, standard deviation).
//
// [biplot] - Weighted taxon positions and prevalence.
//
// ## Output
//
// [format] - JavaScript declarations for the viewer and the HTML page.
//
// ## Infrastructure
//
// [pipeline] - The complete run (load → align → custom axes → combine →
// biplot → serialize) used by the CLI.
//
// [config] - TOML and YAML run configuration files.
//
// [errors] - Coded errors and shared validation.
//
// [observability] - Hooks reporting loads, stages and writes.
//
// [buildinfo] - Version information set at build time.
//
// # Testing
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/jackknife/...    # Specific package
//
// [io]: https://pkg.go.dev/github.com/matzehuels/ordiview/pkg/io
// [align]: https://pkg.go.dev/github.com/matzehuels/ordiview/pkg/align
// [transform]: https://pkg.go.dev/github.com/matzehuels/ordiview/pkg/transform
// [jackknife]: https://pkg.go.dev/github.com/matzehuels/ordiview/pkg/jackknife
// [biplot]: https://pkg.go.dev/github.com/matzehuels/ordiview/pkg/biplot
// [format]: https://pkg.go.dev/github.com/matzehuels/ordiview/pkg/format
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/ordiview/pkg/pipeline
// [ordination]: https://pkg.go.dev/github.com/matzehuels/ordiview/pkg/ordination
// [metadata]: https://pkg.go.dev/github.com/matzehuels/ordiview/pkg/metadata
// [taxa]: https://pkg.go.dev/github.com/matzehuels/ordiview/pkg/taxa
// [config]: https://pkg.go.dev/github.com/matzehuels/ordiview/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/ordiview/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/ordiview/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/ordiview/pkg/buildinfo
package pkg
