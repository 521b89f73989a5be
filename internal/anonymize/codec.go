package anonymize

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxPixels bounds the decoded canvas so a tiny compressed upload cannot
// allocate gigabytes.
const MaxPixels = 50_000_000

var ErrTooManyPixels = errors.New("image dimensions too large")

// Decode reads a JPEG, PNG, GIF, BMP, TIFF or WebP image and returns it with its format name.
func Decode(data []byte) (image.Image, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err == nil && int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, format, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// Try JPEG and PNG explicitly (image.Decode may not recognize some)
		if img, err = jpeg.Decode(bytes.NewReader(data)); err == nil {
			return img, "jpeg", nil
		}
		if img, err = png.Decode(bytes.NewReader(data)); err == nil {
			return img, "png", nil
		}
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return nil
}
