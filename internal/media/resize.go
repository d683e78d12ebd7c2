package media

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
)

// Resize shrinks the image in f to at most maxWidth pixels wide, keeping the
// aspect ratio. Narrower images are left untouched. The result is written
// back to the same backing (buffer or temp file) in the original format.
func Resize(f *File, maxWidth int) error {
	if maxWidth <= 0 {
		return nil
	}
	format, err := formatFor(f.ContentType)
	if err != nil {
		return err
	}
	data, err := f.Bytes()
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Dx() <= maxWidth {
		return nil
	}

	out := imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	return write(f, out, format)
}

func write(f *File, img image.Image, format imaging.Format) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return fmt.Errorf("encode image: %w", err)
	}
	f.Size = int64(buf.Len())
	if f.Path != "" {
		return os.WriteFile(f.Path, buf.Bytes(), 0o600)
	}
	f.Buffer = buf.Bytes()
	return nil
}

func formatFor(contentType string) (imaging.Format, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return imaging.JPEG, nil
	case "image/png":
		return imaging.PNG, nil
	}
	return 0, fmt.Errorf("unsupported image type %q", contentType)
}
