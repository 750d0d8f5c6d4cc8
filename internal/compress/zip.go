package compress

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"time"
)

// ZipReader is an io.ReadCloser over one file of a ZIP archive.
type ZipReader struct {
	io.ReadCloser
	Name string
}

// NewZipReader opens the first file in the archive read from r whose name
// ends in ext. r is always closed.
func NewZipReader(r io.ReadCloser, ext string) (*ZipReader, error) {
	data, err := drain(r)
	if err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("invalid zip archive: %w", err)
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !hasExt(f.Name, ext) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		return &ZipReader{ReadCloser: rc, Name: f.Name}, nil
	}

	return nil, fmt.Errorf("%w: no %s file in zip archive", ErrNoEntry, ext)
}

// ZipWriter stores everything written to it as a single deflated file.
type ZipWriter struct {
	archive *zip.Writer
	entry   io.Writer
}

func NewZipWriter(w io.Writer, fileName string, modTime time.Time) (*ZipWriter, error) {
	archive := zip.NewWriter(w)
	entry, err := archive.CreateHeader(&zip.FileHeader{
		Name:     fileName,
		Method:   zip.Deflate,
		Modified: modTime,
	})
	if err != nil {
		return nil, err
	}
	return &ZipWriter{archive: archive, entry: entry}, nil
}

func (z *ZipWriter) Write(p []byte) (int, error) {
	return z.entry.Write(p)
}

// Close writes the central directory. The underlying writer stays open.
func (z *ZipWriter) Close() error {
	return z.archive.Close()
}
