package middleware

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Lohit-Behera/canva/internal/api"
	"github.com/Lohit-Behera/canva/internal/apperr"
	"github.com/Lohit-Behera/canva/internal/logging"
	"github.com/Lohit-Behera/canva/internal/media"
)

// multipart overhead allowed on top of the file limit
const formSlack = 64 << 10

// UploadOptions configures SingleFile.
type UploadOptions struct {
	MaxBytes int64
	// Memory keeps the file in a buffer; otherwise it is spooled to Dir.
	Memory bool
	Dir    string
}

// SingleFile parses a multipart body and stores the file sent in field as a
// *media.File in the request context. A request without the file passes
// through untouched so the handler can report what is missing. Any temp
// file is removed once the handler returns.
func SingleFile(field string, opts UploadOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, opts.MaxBytes+formSlack)
			if err := r.ParseMultipartForm(opts.MaxBytes); err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					api.WriteError(w, r, apperr.Validation("File is too large."))
					return
				}
				api.WriteError(w, r, apperr.Validation("Invalid multipart form."))
				return
			}
			defer r.MultipartForm.RemoveAll()

			fh := firstFile(r.MultipartForm, field)
			if fh == nil {
				next.ServeHTTP(w, r)
				return
			}

			f, err := readFile(field, fh, opts)
			if err != nil {
				api.WriteError(w, r, err)
				return
			}
			defer func() {
				if err := f.Release(); err != nil {
					log.Warn().Err(err).Str(logging.OBJECT, f.Path).Msg("remove temp upload")
				}
			}()

			next.ServeHTTP(w, r.WithContext(media.WithFile(r.Context(), f)))
		})
	}
}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil || len(form.File[field]) == 0 {
		return nil
	}
	return form.File[field][0]
}

func readFile(field string, fh *multipart.FileHeader, opts UploadOptions) (*media.File, error) {
	if fh.Size > opts.MaxBytes {
		return nil, apperr.Validation("File is too large.")
	}
	contentType := strings.ToLower(fh.Header.Get("Content-Type"))
	ext, ok := media.Extension(contentType)
	if !ok {
		return nil, apperr.Validation("Only .jpg, .jpeg and .png files are allowed.")
	}

	src, err := fh.Open()
	if err != nil {
		return nil, apperr.Internal("Could not read upload.", err)
	}
	defer src.Close()

	f := &media.File{
		Field:       field,
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
	}

	if opts.Memory {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, src); err != nil {
			return nil, apperr.Internal("Could not read upload.", err)
		}
		f.Buffer = buf.Bytes()
		return f, nil
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, apperr.Internal("Could not store upload.", err)
	}
	path := filepath.Join(opts.Dir, uuid.NewString()+ext)
	dst, err := os.Create(path)
	if err != nil {
		return nil, apperr.Internal("Could not store upload.", err)
	}
	_, err = io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, apperr.Internal("Could not store upload.", err)
	}
	f.Path = path
	return f, nil
}

// ResizeImage shrinks the uploaded image to maxWidth before the handler
// sees it. Requests without a file are passed through.
func ResizeImage(maxWidth int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if f := media.FromContext(r.Context()); f != nil && maxWidth > 0 {
				if err := media.Resize(f, maxWidth); err != nil {
					api.WriteError(w, r, apperr.Validation("Could not process image."))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
