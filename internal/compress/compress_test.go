package compress

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var modTime = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func TestZipRoundTrip(t *testing.T) {
	var archive bytes.Buffer
	zw, err := NewZipWriter(&archive, "backup.json", modTime)
	require.NoError(t, err)
	_, err = zw.Write([]byte(`{"products":[],"history":[]}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	zr, err := NewZipReader(io.NopCloser(&archive), ".JSON")
	require.NoError(t, err)
	defer zr.Close()
	assert.Equal(t, "backup.json", zr.Name)

	content, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, `{"products":[],"history":[]}`, string(content))
}

func TestZipReaderSkipsOtherFiles(t *testing.T) {
	var archive bytes.Buffer
	zw := zip.NewWriter(&archive)
	f, err := zw.Create("readme.txt")
	require.NoError(t, err)
	f.Write([]byte("hello"))
	require.NoError(t, zw.Close())

	_, err = NewZipReader(io.NopCloser(bytes.NewReader(archive.Bytes())), ".json")
	assert.ErrorIs(t, err, ErrNoEntry)
}

func TestTarRoundTrip(t *testing.T) {
	var archive bytes.Buffer
	tw := NewTarWriter(&archive, "History.csv", modTime)
	_, err := io.WriteString(tw, "Date,Total Amount\n")
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	tr, err := NewTarReader(io.NopCloser(bytes.NewReader(archive.Bytes())), ".csv")
	require.NoError(t, err)
	assert.Equal(t, "History.csv", tr.Name)

	content, err := io.ReadAll(tr)
	require.NoError(t, err)
	assert.Equal(t, "Date,Total Amount\n", string(content))
	require.NoError(t, tr.Close())

	_, err = NewTarReader(io.NopCloser(bytes.NewReader(archive.Bytes())), ".json")
	assert.ErrorIs(t, err, ErrNoEntry)
}

func TestReadersRejectGarbage(t *testing.T) {
	_, err := NewZipReader(io.NopCloser(bytes.NewReader([]byte("not a zip"))), ".json")
	assert.Error(t, err)
}
