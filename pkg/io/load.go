package io

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/ordiview/pkg/errors"
	"github.com/matzehuels/ordiview/pkg/metadata"
	"github.com/matzehuels/ordiview/pkg/ordination"
	"github.com/matzehuels/ordiview/pkg/taxa"
)

// CoordinateOptions controls how a coordinates path is read.
type CoordinateOptions struct {
	// Master names the master ordination. A base name matching a directory
	// entry moves that entry first; any other value is read as a separate
	// file and prepended. Empty keeps the first file.
	Master string

	// Comparison orders directory entries by their "_q<N>.txt" suffix.
	Comparison bool
}

// Coordinates are the ordinations read from a coordinates path.
type Coordinates struct {
	Results []*ordination.Result
	Paths   []string

	// Replicated is true when the path was a directory.
	Replicated bool
}

// LoadCoordinates reads a single ordination file or a directory of them.
func LoadCoordinates(path string, opts CoordinateOptions) (*Coordinates, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "coordinates %s", path)
	}
	if !info.IsDir() {
		if opts.Master != "" {
			return nil, errors.New(errors.ErrCodeConfiguration,
				"a master ordination can only be given with a directory of coordinates")
		}
		res, err := ordination.ParseFile(path)
		if err != nil {
			return nil, err
		}
		return &Coordinates{Results: []*ordination.Result{res}, Paths: []string{path}}, nil
	}

	paths, err := listCoordinateFiles(path, opts)
	if err != nil {
		return nil, err
	}
	out := &Coordinates{Replicated: true, Paths: paths}
	for _, p := range paths {
		res, err := ordination.ParseFile(p)
		if err != nil {
			return nil, err
		}
		out.Results = append(out.Results, res)
	}
	return out, nil
}

func listCoordinateFiles(dir string, opts CoordinateOptions) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", dir)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return nil, errors.New(errors.ErrCodeConfiguration, "no coordinate files in %s", dir)
	}
	sort.Strings(names)
	if opts.Comparison {
		names = SortComparisonFilenames(names)
	}

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	if opts.Master == "" {
		return paths, nil
	}

	master := filepath.Base(opts.Master)
	for i, n := range names {
		if n == master {
			return append([]string{paths[i]}, append(paths[:i:i], paths[i+1:]...)...), nil
		}
	}
	if _, err := os.Stat(opts.Master); err != nil {
		return nil, errors.New(errors.ErrCodeConfiguration,
			"master ordination %q is neither in %s nor a readable file", opts.Master, dir)
	}
	return append([]string{opts.Master}, paths...), nil
}

var comparisonSuffix = regexp.MustCompile(`\w+_q([0-9]+)\.txt$`)

// SortComparisonFilenames orders names by the number in their "_q<N>.txt"
// suffix. Names without the suffix keep their relative order at the end.
func SortComparisonFilenames(names []string) []string {
	key := func(name string) (int, bool) {
		m := comparisonSuffix.FindStringSubmatch(name)
		if m == nil {
			return 0, false
		}
		n, err := strconv.Atoi(m[1])
		return n, err == nil
	}

	out := append([]string(nil), names...)
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := key(out[i])
		b, bok := key(out[j])
		switch {
		case aok && bok:
			return a < b
		default:
			return aok && !bok
		}
	})
	return out
}

// LoadMetadata reads a mapping file.
func LoadMetadata(path string, opts metadata.ParseOptions) (*metadata.Table, error) {
	if err := checkFile(path, "mapping file"); err != nil {
		return nil, err
	}
	return metadata.ParseFile(path, opts)
}

// LoadTaxa reads a taxon count table.
func LoadTaxa(path string, opts taxa.ParseOptions) (*taxa.Table, error) {
	if err := checkFile(path, "taxa table"); err != nil {
		return nil, err
	}
	return taxa.ParseFile(path, opts)
}

func checkFile(path, what string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "%s %s", what, path)
	}
	if info.IsDir() {
		return errors.New(errors.ErrCodeConfiguration, "%s %s is a directory", what, path)
	}
	return nil
}
