package anonymize

import (
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Options controls blur strength. Radii are Gaussian sigmas in pixels.
type Options struct {
	FaceBlurRadius  float64
	PlateBlurRadius float64
	PlateBandRatio  float64
}

func DefaultOptions() Options {
	return Options{
		FaceBlurRadius:  20,
		PlateBlurRadius: 15,
		PlateBandRatio:  0.15,
	}
}

// Result is the anonymized image and the number of face boxes blurred.
type Result struct {
	Image         *image.NRGBA
	FacesDetected int
}

type Anonymizer struct {
	opts Options
}

func New(opts Options) *Anonymizer {
	return &Anonymizer{opts: opts}
}

// Process forces img to opaque RGB, blurs the face boxes and then the plate band.
// The input image is not modified.
func (a *Anonymizer) Process(img image.Image) Result {
	rgb := ToRGB(img)
	b := rgb.Bounds()
	w, h := b.Dx(), b.Dy()

	faces := FaceRegions(w, h)
	for _, r := range faces {
		blurRegion(rgb, r, a.opts.FaceBlurRadius)
	}
	blurRegion(rgb, PlateRegion(w, h, a.opts.PlateBandRatio), a.opts.PlateBlurRadius)

	return Result{Image: rgb, FacesDetected: len(faces)}
}

// ToRGB copies img into a zero-origin NRGBA canvas and drops the alpha
// channel: color values are kept as they are and every pixel becomes opaque.
func ToRGB(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// blurRegion blurs the pixels of r in place, using only the pixels inside r.
func blurRegion(dst *image.NRGBA, r image.Rectangle, sigma float64) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() || sigma <= 0 {
		return
	}
	blurred := imaging.Blur(imaging.Crop(dst, r), sigma)
	draw.Draw(dst, r, blurred, image.Point{}, draw.Src)
}
