package middleware

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/drstein77/ordercalc/internal/compress"
)

const (
	archiveZip = "zip"
	archiveTar = "tar"
)

var archiveContentTypes = map[string]string{
	archiveZip: "application/zip",
	archiveTar: "application/x-tar",
}

// ArchiveResponseMiddleware packs a successful response into a zip or tar
// archive when the archive query parameter asks for one. The file inside
// the archive keeps the name from Content-Disposition.
func ArchiveResponseMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		archiveType := r.URL.Query().Get("archive")
		if archiveType != archiveZip && archiveType != archiveTar {
			next.ServeHTTP(w, r)
			return
		}

		rec := newBufferedWriter()
		next.ServeHTTP(rec, r)

		if rec.status != http.StatusOK {
			rec.flushTo(w)
			return
		}

		fileName := attachmentName(rec.header.Get("Content-Disposition"))
		for key, values := range rec.header {
			switch key {
			case "Content-Type", "Content-Length", "Content-Disposition":
				continue
			}
			w.Header()[key] = values
		}
		w.Header().Set("Content-Type", archiveContentTypes[archiveType])
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
			"filename": fileName + "." + archiveType,
		}))

		var cw io.WriteCloser
		if archiveType == archiveTar {
			cw = compress.NewTarWriter(w, fileName, time.Now())
		} else {
			zw, err := compress.NewZipWriter(w, fileName, time.Now())
			if err != nil {
				http.Error(w, "Failed to create archive", http.StatusInternalServerError)
				return
			}
			cw = zw
		}
		defer cw.Close()

		cw.Write(rec.body.Bytes())
	})
}

// ArchiveRequestMiddleware unpacks a zip or tar request body, replacing it
// with the first archived file ending in ext. The archive kind comes from
// Content-Type or, as before, Content-Encoding.
func ArchiveRequestMiddleware(ext string) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				cr  io.ReadCloser
				err error
			)
			switch requestArchiveType(r) {
			case archiveZip:
				cr, err = compress.NewZipReader(r.Body, ext)
			case archiveTar:
				cr, err = compress.NewTarReader(r.Body, ext)
			default:
				h.ServeHTTP(w, r)
				return
			}
			if err != nil {
				http.Error(w, "Invalid archive: "+err.Error(), http.StatusBadRequest)
				return
			}
			defer cr.Close()

			r.Body = cr
			r.Header.Del("Content-Encoding")
			r.Header.Set("Content-Type", "application/json")
			h.ServeHTTP(w, r)
		})
	}
}

func requestArchiveType(r *http.Request) string {
	if enc := r.Header.Get("Content-Encoding"); enc == archiveZip || enc == archiveTar {
		return enc
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	for kind, contentType := range archiveContentTypes {
		if mediaType == contentType {
			return kind
		}
	}
	return ""
}

func attachmentName(disposition string) string {
	_, params, err := mime.ParseMediaType(disposition)
	if err == nil {
		if name := strings.TrimSpace(params["filename"]); name != "" {
			return name
		}
	}
	return "export"
}

// bufferedWriter holds a handler's response until the archive is built.
type bufferedWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedWriter() *bufferedWriter {
	return &bufferedWriter{header: http.Header{}, status: http.StatusOK}
}

func (b *bufferedWriter) Header() http.Header {
	return b.header
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

func (b *bufferedWriter) WriteHeader(status int) {
	b.status = status
}

func (b *bufferedWriter) flushTo(w http.ResponseWriter) {
	for key, values := range b.header {
		w.Header()[key] = values
	}
	w.WriteHeader(b.status)
	w.Write(b.body.Bytes())
}
