package pdfutils

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/geo/r2"
	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"
)

// ErrNotEnoughQuadPoints signals that an annotation's geometry is too short
// to describe even one quadrilateral. Callers should treat it as "nothing to
// extract" rather than a failure.
var ErrNotEnoughQuadPoints = errors.New("quad point list shorter than one quad")

// DefaultHighlightColor is the translucent tint used for highlight fills and
// the popup fallback outline.
var DefaultHighlightColor = color.NRGBA{R: 234, G: 249, B: 35, A: 140}

// DebugSink receives every produced subimage when diagnostics are enabled.
// Sink errors are logged and swallowed; they never reach the caller.
type DebugSink func(img image.Image) error

// Extractor crops contextual images around PDF annotations from a rendered
// page raster and composites markup-specific overlays onto them. The zero
// value is not usable; construct with NewExtractor. An Extractor holds no
// per-call state, so one instance is safe for concurrent use.
type Extractor struct {
	highlightColor color.NRGBA
	debugSink      DebugSink
}

func NewExtractor(highlight color.NRGBA, sink DebugSink) *Extractor {
	return &Extractor{
		highlightColor: highlight,
		debugSink:      sink,
	}
}

// PlainSubImage extracts the area around rect with no overlay.
func (e *Extractor) PlainSubImage(page image.Image, rect r2.Rect) (image.Image, error) {
	return e.makeSubImage(page, RectToQuad(rect), MarkupNone, nil)
}

// HighlightSubImage extracts the area around a highlight annotation and
// fills each quad with the highlight tint. quadPoints may carry 8*n values,
// one quad per selected line of text.
func (e *Extractor) HighlightSubImage(page image.Image, quadPoints []float64) (image.Image, error) {
	return e.makeSubImage(page, quadPoints, MarkupHighlight, nil)
}

// PopupSubImage extracts the area around a popup note and composites
// commentBox, stretched to the note's bounds, onto it. A nil commentBox
// degrades to a stroked outline instead of failing.
func (e *Extractor) PopupSubImage(page image.Image, rect r2.Rect, commentBox image.Image) (image.Image, error) {
	return e.makeSubImage(page, RectToQuad(rect), MarkupPopup, commentBox)
}

func (e *Extractor) makeSubImage(page image.Image, quadPoints []float64, markup Markup, commentBox image.Image) (image.Image, error) {
	if len(quadPoints) < QuadSize {
		return nil, ErrNotEnoughQuadPoints
	}

	pageW := page.Bounds().Dx()
	pageH := page.Bounds().Dy()

	subRect := SubImageRect(quadPoints, pageW, pageH, markup)

	cropped, err := CropImage(page, subRect.Add(page.Bounds().Min))
	if err != nil {
		return nil, err
	}

	out := newDrawable(page, image.Rect(0, 0, subRect.Dx(), subRect.Dy()))
	draw.Draw(out, out.Bounds(), cropped, cropped.Bounds().Min, draw.Src)

	switch markup {
	case MarkupHighlight:
		for n := 0; n+QuadSize <= len(quadPoints); n += QuadSize {
			oneQuad := quadPoints[n : n+QuadSize]
			e.paintHighlight(out, AnnotationRect(oneQuad, subRect, pageH))
		}
	case MarkupPopup:
		// PopupSubImage always passes a single quad; anything beyond the
		// first only widened the outer crop above.
		e.paintCommentBox(out, AnnotationRect(quadPoints[:QuadSize], subRect, pageH), commentBox)
	}

	if e.debugSink != nil {
		if err := e.debugSink(out); err != nil {
			logrus.WithError(err).Warn("failed to emit debug subimage")
		}
	}

	return out, nil
}

func (e *Extractor) paintHighlight(dst draw.Image, rect image.Rectangle) {
	draw.Draw(dst, rect, image.NewUniform(e.highlightColor), image.Point{}, draw.Over)
}

func (e *Extractor) paintCommentBox(dst draw.Image, rect image.Rectangle, commentBox image.Image) {
	if commentBox != nil {
		xdraw.ApproxBiLinear.Scale(dst, rect, commentBox, commentBox.Bounds(), xdraw.Over, nil)
		return
	}

	e.strokeRect(dst, rect, round(2*ScaleUpFactor))
}

// strokeRect draws an unfilled outline just inside rect.
func (e *Extractor) strokeRect(dst draw.Image, rect image.Rectangle, strokeWidth int) {
	tint := image.NewUniform(e.highlightColor)

	edges := []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+strokeWidth),
		image.Rect(rect.Min.X, rect.Max.Y-strokeWidth, rect.Max.X, rect.Max.Y),
		image.Rect(rect.Min.X, rect.Min.Y+strokeWidth, rect.Min.X+strokeWidth, rect.Max.Y-strokeWidth),
		image.Rect(rect.Max.X-strokeWidth, rect.Min.Y+strokeWidth, rect.Max.X, rect.Max.Y-strokeWidth),
	}

	for _, edge := range edges {
		draw.Draw(dst, edge, tint, image.Point{}, draw.Over)
	}
}
