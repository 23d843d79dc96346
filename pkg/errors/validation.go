package errors

import (
	"strings"
	"unicode"
)

// Bounds for the user-facing numeric options.
const (
	MinAxes     = 3
	MinSegments = 4
	MaxSegments = 14
)

// ValidateAxisCount checks the requested number of displayable axes.
// Fewer than three axes cannot be drawn in a 3D scene.
func ValidateAxisCount(n int) error {
	if n < MinAxes {
		return New(ErrCodeConfiguration, "number of axes must be at least %d, got %d", MinAxes, n)
	}
	return nil
}

// ValidateSegments checks the sphere tessellation count.
func ValidateSegments(n int) error {
	if n < MinSegments || n > MaxSegments {
		return New(ErrCodeConfiguration, "number of segments must be between %d and %d, got %d", MinSegments, MaxSegments, n)
	}
	return nil
}

// ValidateTaxaCount checks the number of taxa to keep in a biplot.
// Zero means keep all of them.
func ValidateTaxaCount(n int) error {
	if n < 0 {
		return New(ErrCodeConfiguration, "number of taxa to keep cannot be negative, got %d", n)
	}
	return nil
}

// ValidateCategoryName validates a metadata column name given on the command line.
//
// Validation rules:
//   - Name cannot be empty
//   - No tabs, newlines or other control characters (they would break the
//     tab-delimited mapping file and the emitted JavaScript)
func ValidateCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeConfiguration, "category name cannot be empty")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeConfiguration, "category name %q contains control characters", name)
		}
	}
	return nil
}

// ValidateCategoryNames runs ValidateCategoryName over every name.
func ValidateCategoryNames(names []string) error {
	for _, name := range names {
		if err := ValidateCategoryName(name); err != nil {
			return err
		}
	}
	return nil
}

// ValidateOutputPath validates the output directory path.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeConfiguration, "output directory cannot be empty")
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeConfiguration, "output directory contains invalid characters")
		}
	}
	return nil
}
