package compress

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"
)

// TarReader is an io.ReadCloser over one regular file of a TAR archive.
type TarReader struct {
	io.Reader
	Name string
}

// NewTarReader positions on the first regular file in the archive read from
// r whose name ends in ext. r is always closed.
func NewTarReader(r io.ReadCloser, ext string) (*TarReader, error) {
	data, err := drain(r)
	if err != nil {
		return nil, err
	}

	tr := tar.NewReader(bytes.NewReader(data))
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid tar archive: %w", err)
		}
		if header.Typeflag == tar.TypeReg && hasExt(header.Name, ext) {
			return &TarReader{Reader: tr, Name: header.Name}, nil
		}
	}

	return nil, fmt.Errorf("%w: no %s file in tar archive", ErrNoEntry, ext)
}

func (t *TarReader) Close() error {
	return nil
}

// TarWriter packs everything written to it into a single file of a TAR
// archive. The content is buffered because the header carries its size.
type TarWriter struct {
	w       io.Writer
	name    string
	modTime time.Time
	buf     bytes.Buffer
}

func NewTarWriter(w io.Writer, fileName string, modTime time.Time) *TarWriter {
	return &TarWriter{w: w, name: fileName, modTime: modTime}
}

func (t *TarWriter) Write(p []byte) (int, error) {
	return t.buf.Write(p)
}

// Close writes the header, the buffered content and the archive trailer.
func (t *TarWriter) Close() error {
	tw := tar.NewWriter(t.w)
	err := tw.WriteHeader(&tar.Header{
		Name:     t.name,
		Mode:     0o644,
		Size:     int64(t.buf.Len()),
		ModTime:  t.modTime,
		Typeflag: tar.TypeReg,
	})
	if err != nil {
		return err
	}
	if _, err := tw.Write(t.buf.Bytes()); err != nil {
		return err
	}
	return tw.Close()
}
