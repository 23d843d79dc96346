// Package config reads and writes ordiview run-configuration files.
//
// A run configuration holds the same settings as the make command flags, so
// a plot can be regenerated without retyping them. Files ending in .toml are
// TOML; .yaml and .yml are YAML. Flags given on the command line take
// precedence over the file.
//
//	input = "jackknifed_pcoa"
//	mapping = "mapping.txt"
//	output = "plot"
//	ellipsoid_method = "sdev"
//	custom_axes = ["DOB"]
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/ordiview/pkg/errors"
)

// Config is a run configuration.
type Config struct {
	Input     string `toml:"input" yaml:"input"`
	Mapping   string `toml:"mapping" yaml:"mapping"`
	Output    string `toml:"output" yaml:"output"`
	Master    string `toml:"master,omitempty" yaml:"master,omitempty"`
	Taxa      string `toml:"taxa,omitempty" yaml:"taxa,omitempty"`
	Resources string `toml:"resources,omitempty" yaml:"resources,omitempty"`

	CustomAxes              []string `toml:"custom_axes,omitempty" yaml:"custom_axes,omitempty"`
	MissingCustomAxesValues []string `toml:"missing_custom_axes_values,omitempty" yaml:"missing_custom_axes_values,omitempty"`
	ColorBy                 []string `toml:"color_by,omitempty" yaml:"color_by,omitempty"`
	AddUniqueColumns        bool     `toml:"add_unique_columns" yaml:"add_unique_columns"`
	IgnoreMissingSamples    bool     `toml:"ignore_missing_samples" yaml:"ignore_missing_samples"`

	EllipsoidMethod  string `toml:"ellipsoid_method" yaml:"ellipsoid_method"`
	NumberOfAxes     int    `toml:"number_of_axes" yaml:"number_of_axes"`
	NumberOfSegments int    `toml:"number_of_segments" yaml:"number_of_segments"`
	Title            string `toml:"title,omitempty" yaml:"title,omitempty"`

	NTaxa        int  `toml:"n_taxa" yaml:"n_taxa"`
	BiplotCoords bool `toml:"biplot_coords" yaml:"biplot_coords"`

	AddVectors       []string `toml:"add_vectors,omitempty" yaml:"add_vectors,omitempty"`
	ComparePlots     bool     `toml:"compare_plots" yaml:"compare_plots"`
	SerialComparison bool     `toml:"serial_comparison" yaml:"serial_comparison"`
}

// Default returns the configuration used when neither a file nor flags set
// a value.
func Default() *Config {
	return &Config{
		EllipsoidMethod:  "IQR",
		NumberOfAxes:     10,
		NumberOfSegments: 8,
		NTaxa:            10,
	}
}

type format int

const (
	formatTOML format = iota
	formatYAML
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return formatTOML, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	default:
		return 0, errors.New(errors.ErrCodeConfiguration,
			"config file %s: unknown extension (use .toml, .yaml or .yml)", filepath.Base(path))
	}
}

// Load reads a configuration file on top of Default.
func Load(path string) (*Config, error) {
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read config %s", path)
	}

	cfg := Default()
	switch f {
	case formatTOML:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "parse config %s", filepath.Base(path))
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeConfiguration,
				"config %s: unknown key %q", filepath.Base(path), undecoded[0].String())
		}
	case formatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "parse config %s", filepath.Base(path))
		}
	}
	return cfg, nil
}

// Save writes cfg to path in the format its extension names.
func Save(cfg *Config, path string) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch f {
	case formatTOML:
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
		}
	case formatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
		}
		if err := enc.Close(); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write config %s", path)
	}
	return nil
}
