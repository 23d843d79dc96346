package io

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/matzehuels/ordiview/pkg/errors"
)

// WriteBundle creates dir and writes each artifact into it, in name order.
// It returns the number of bytes written.
func WriteBundle(dir string, artifacts map[string][]byte) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, errors.Wrap(errors.ErrCodeIO, err, "create output directory %s", dir)
	}

	names := make([]string, 0, len(artifacts))
	for name := range artifacts {
		names = append(names, name)
	}
	sort.Strings(names)

	total := 0
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := writeFile(path, artifacts[name]); err != nil {
			return total, err
		}
		total += len(artifacts[name])
	}
	return total, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", filepath.Dir(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "close %s", path)
	}
	return nil
}

// CopyResources copies the directory tree src into dst, overwriting files
// that already exist.
func CopyResources(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "resources %s", src)
	}
	if !info.IsDir() {
		return errors.New(errors.ErrCodeConfiguration, "resources %s is not a directory", src)
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "walk %s", path)
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "relative path of %s", path)
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errors.Wrap(errors.ErrCodeIO, err, "create %s", target)
			}
			return nil
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "open %s", src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrap(errors.ErrCodeIO, err, "copy %s", src)
	}
	if err := out.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "close %s", dst)
	}
	return nil
}
