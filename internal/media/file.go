// Package media holds uploaded files between the multipart parser and the
// media host, and the image resize step that runs in between.
package media

import (
	"context"
	"os"
	"strings"
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
}

// Extension maps an accepted image content type to the file extension it is
// stored under. ok is false for anything that is not jpeg or png.
func Extension(contentType string) (ext string, ok bool) {
	ext, ok = extensions[strings.ToLower(contentType)]
	return ext, ok
}

// File is an uploaded file held either in memory (Buffer) or spooled to a
// temp file (Path), depending on the configured storage mode.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Size        int64
	Buffer      []byte
	Path        string
}

// Release drops the buffer and removes any temp file. Safe to call twice.
func (f *File) Release() error {
	if f == nil {
		return nil
	}
	f.Buffer = nil
	if f.Path == "" {
		return nil
	}
	err := os.Remove(f.Path)
	f.Path = ""
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Bytes returns the file contents from whichever backing it uses.
func (f *File) Bytes() ([]byte, error) {
	if f.Path != "" {
		return os.ReadFile(f.Path)
	}
	return f.Buffer, nil
}

// Uploader forwards files to the media host. UploadFile returns an empty
// url on any failure; callers treat that as an upload error.
type Uploader interface {
	UploadFile(ctx context.Context, f *File) (url, key string)
	DeleteFile(ctx context.Context, key string)
}

type fileKey struct{}

// WithFile stores the parsed upload in ctx.
func WithFile(ctx context.Context, f *File) context.Context {
	return context.WithValue(ctx, fileKey{}, f)
}

// FromContext returns the upload stored by the multipart middleware, or nil.
func FromContext(ctx context.Context) *File {
	f, _ := ctx.Value(fileKey{}).(*File)
	return f
}
