package metadata

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/ordiview/pkg/errors"
)

// ParseOptions controls field cleanup while reading a mapping file.
type ParseOptions struct {
	StripQuotes       bool // remove double quotes from every line
	SuppressStripping bool // keep leading and trailing whitespace of fields
}

// DefaultParseOptions strips quotes and whitespace.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{StripQuotes: true}
}

// ParseFile parses the mapping file at path.
func ParseFile(path string, opts ParseOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", filepath.Base(path))
	}
	defer f.Close()

	t, err := Parse(f, opts)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "%s", filepath.Base(path))
	}
	return t, nil
}

// Parse reads a tab-delimited mapping file.
func Parse(r io.Reader, opts ParseOptions) (*Table, error) {
	strip := strings.TrimSpace
	if opts.SuppressStripping {
		strip = func(s string) string { return s }
	}

	var (
		header   []string
		comments []string
		rows     []Row
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if opts.StripQuotes {
			line = strings.ReplaceAll(line, `"`, "")
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		line = strip(line)

		if strings.HasPrefix(line, "#") {
			line = line[1:]
			if header == nil {
				header = strings.Split(strings.TrimSpace(line), "\t")
			} else {
				comments = append(comments, line)
			}
			continue
		}
		if header == nil {
			return nil, errors.New(errors.ErrCodeParse, "mapping file has data before the '#' header line")
		}

		fields := strings.Split(line, "\t")
		for i := range fields {
			fields[i] = strip(fields[i])
		}
		// Trailing empty cells beyond the header come from editors padding rows.
		for len(fields) > len(header) && fields[len(fields)-1] == "" {
			fields = fields[:len(fields)-1]
		}
		rows = append(rows, Row{SampleID: fields[0], Values: fields})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "read mapping file")
	}

	if header == nil {
		return nil, errors.New(errors.ErrCodeParse, "no header line was found in mapping file")
	}
	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeParse, "no data found in mapping file")
	}
	return NewTable(header, rows, comments)
}
