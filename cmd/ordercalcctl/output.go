package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/drstein77/ordercalc/internal/compress"
)

// writeOutput runs render against --out, or stdout when it is empty. A
// .zip or .tar suffix packs the rendered file into that archive.
func writeOutput(c *cli.Context, render func(io.Writer) error) error {
	path := c.String("out")
	if path == "" {
		return render(c.App.Writer)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var w io.WriteCloser
	name := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		if w, err = compress.NewZipWriter(f, strings.TrimSuffix(name, filepath.Ext(name)), time.Now()); err != nil {
			return err
		}
	case ".tar":
		w = compress.NewTarWriter(f, strings.TrimSuffix(name, filepath.Ext(name)), time.Now())
	}

	if w == nil {
		if err := render(f); err != nil {
			return err
		}
		return f.Close()
	}
	if err := render(w); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return f.Close()
}

// openInput opens path, unpacking the first ext file of a .zip or .tar.
func openInput(path, ext string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return compress.NewZipReader(f, ext)
	case ".tar":
		return compress.NewTarReader(f, ext)
	default:
		return f, nil
	}
}
