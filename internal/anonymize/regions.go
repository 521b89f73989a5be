package anonymize

import "image"

const (
	faceBoxHalf = 50
	// Images at least this large on both sides get the center box.
	centerMinSide = 200
	// Images at least this large on both sides also get the two top corner boxes.
	cornerMinSide = 400
)

// FaceRegions returns the placeholder "face" rectangles for a w×h image.
// They depend only on the dimensions, never on pixel content.
func FaceRegions(w, h int) []image.Rectangle {
	var regions []image.Rectangle

	if w >= centerMinSide && h >= centerMinSide {
		cx, cy := w/2, h/2
		regions = append(regions, image.Rect(cx-faceBoxHalf, cy-faceBoxHalf, cx+faceBoxHalf, cy+faceBoxHalf))
	}

	if w >= cornerMinSide && h >= cornerMinSide {
		regions = append(regions,
			image.Rect(50, 50, 150, 150),
			image.Rect(w-150, 50, w-50, 150),
		)
	}

	return regions
}

// PlateRegion returns the bottom band of the image, int(h*ratio) rows tall.
// An empty rectangle means there is nothing to blur.
func PlateRegion(w, h int, ratio float64) image.Rectangle {
	band := int(float64(h) * ratio)
	if band <= 0 || w <= 0 {
		return image.Rectangle{}
	}
	if band > h {
		band = h
	}
	return image.Rect(0, h-band, w, h)
}
