package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestResize_Buffer(t *testing.T) {
	f := &File{ContentType: "image/png", Buffer: pngBytes(t, 400, 200)}

	require.NoError(t, Resize(f, 100))

	img, err := png.Decode(bytes.NewReader(f.Buffer))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
	assert.Equal(t, int64(len(f.Buffer)), f.Size)
}

func TestResize_NarrowImageUntouched(t *testing.T) {
	orig := pngBytes(t, 80, 40)
	f := &File{ContentType: "image/png", Buffer: orig}

	require.NoError(t, Resize(f, 100))
	assert.Equal(t, orig, f.Buffer)
}

func TestResize_TempFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 300, 300), 0o600))
	f := &File{ContentType: "image/png", Path: path}

	require.NoError(t, Resize(f, 150))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 150, cfg.Width)
}

func TestResize_Unsupported(t *testing.T) {
	err := Resize(&File{ContentType: "image/gif", Buffer: []byte("GIF89a")}, 10)
	assert.Error(t, err)
}

func TestRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.bin")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	f := &File{Buffer: []byte("y"), Path: path}

	require.NoError(t, f.Release())
	assert.Nil(t, f.Buffer)
	assert.Empty(t, f.Path)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, f.Release())

	var nilFile *File
	assert.NoError(t, nilFile.Release())
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	f := &File{Filename: "a.png"}
	assert.Same(t, f, FromContext(WithFile(context.Background(), f)))
}

func TestExtension(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
		ok          bool
	}{
		{"image/jpeg", ".jpg", true},
		{"image/jpg", ".jpg", true},
		{"Image/PNG", ".png", true},
		{"text/html", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		ext, ok := Extension(tt.contentType)
		assert.Equal(t, tt.ok, ok, tt.contentType)
		assert.Equal(t, tt.want, ext, tt.contentType)
	}
}
