package compress

import (
	"bytes"
	"errors"
	"io"
	"strings"
)

// ErrNoEntry is returned when an archive has no file of the wanted kind.
var ErrNoEntry = errors.New("archive entry not found")

// drain reads r to the end and closes it. Both archive formats are parsed
// from memory.
func drain(r io.ReadCloser) ([]byte, error) {
	defer r.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func hasExt(name, ext string) bool {
	return strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext))
}
