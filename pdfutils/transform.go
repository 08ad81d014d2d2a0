package pdfutils

import (
	"image"
	"math"
)

const (
	// BorderWidth is the context margin, in PDF points, added around an
	// annotation when extracting its surrounding image.
	BorderWidth = 30

	// ScaleUpFactor converts PDF points to output pixels. Page rasters fed
	// to the extractor must be rendered at this scale (72*ScaleUpFactor DPI).
	ScaleUpFactor = 2.0
)

// Markup selects the overlay painted onto an extracted subimage.
type Markup int

const (
	MarkupNone Markup = iota
	MarkupHighlight
	MarkupPopup
)

// Popups get twice the context border so the surrounding text the note
// refers to stays visible around the comment box.
var contextMultipliers = map[Markup]float64{
	MarkupNone:      1,
	MarkupHighlight: 1,
	MarkupPopup:     2,
}

// ContextMultiplier scales BorderWidth for this markup kind.
func (m Markup) ContextMultiplier() float64 {
	return contextMultipliers[m]
}

// round matches Java's Math.round: floor(v + 0.5). math.Round differs on
// negative half-values, and the transform was calibrated against the former.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// SubImageRect maps the union bounding box of all quads in quadPoints to a
// pixel rectangle on the page raster, padded with the markup's context
// border, clamped to the page and flipped from bottom-left PDF orientation
// to top-left image orientation. The flip happens after clamping and uses
// the clamped height.
func SubImageRect(quadPoints []float64, pageWidth, pageHeight int, markup Markup) image.Rectangle {
	minX := quadMinX(quadPoints)
	minY := quadMinY(quadPoints)

	scaledBorder := BorderWidth * markup.ContextMultiplier()

	x := round((float64(minX) - scaledBorder) * ScaleUpFactor)
	if x < 0 {
		x = 0
	}
	y := round((float64(minY) - scaledBorder) * ScaleUpFactor)
	if y < 0 {
		y = 0
	}

	width := round((float64(quadMaxX(quadPoints)-minX) + 2*scaledBorder) * ScaleUpFactor)
	if width > pageWidth-x {
		width = pageWidth - x
	}
	height := round((float64(quadMaxY(quadPoints)-minY) + 2*scaledBorder) * ScaleUpFactor)
	if height > pageHeight-y {
		height = pageHeight - y
	}

	y = pageHeight - y - height

	return image.Rect(x, y, x+width, y+height)
}

// AnnotationRect maps one quad to a pixel rectangle local to an extracted
// subimage, for overlay placement. No border is applied; the Y flip is
// against the full page height, not the subimage height. That asymmetry is
// deliberate: the subimage origin offset is folded into the same expression.
func AnnotationRect(oneQuad []float64, subImageRect image.Rectangle, pageHeight int) image.Rectangle {
	x := quadMinX(oneQuad)
	y := quadMinY(oneQuad)

	width := round(float64(quadMaxX(oneQuad)-x) * ScaleUpFactor)
	height := round(float64(quadMaxY(oneQuad)-y) * ScaleUpFactor)

	x = int(float64(x) * ScaleUpFactor)
	y = int(float64(y) * ScaleUpFactor)

	x -= subImageRect.Min.X
	y = pageHeight - y - subImageRect.Min.Y - height

	return image.Rect(x, y, x+width, y+height)
}
