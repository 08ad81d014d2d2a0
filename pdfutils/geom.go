package pdfutils

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/mgmeyers/unipdf/v3/core"
	"github.com/mgmeyers/unipdf/v3/model"
)

// ApplyPageRotation rewrites a PDF-space rect (llx, lly, urx, ury) so it
// matches the page as rendered, honoring the page's /Rotate entry.
func ApplyPageRotation(page *model.PdfPage, rect []float64) []float64 {
	if page.Rotate == nil {
		return rect
	}

	angle := *page.Rotate
	if angle == 0 {
		return rect
	}

	width := page.MediaBox.Width()
	height := page.MediaBox.Height()

	if angle == 90 {
		return []float64{rect[1], width - rect[2], rect[3], width - rect[0]}
	}

	if angle == 270 {
		return []float64{height - rect[3], rect[0], height - rect[1], rect[2]}
	}

	// 180
	return []float64{width - rect[2], height - rect[3], width - rect[0], height - rect[1]}
}

// GetAnnotationQuadPoints returns an annotation's QuadPoints as a flat
// coordinate list, or nil if the annotation kind carries none.
func GetAnnotationQuadPoints(annotation *model.PdfAnnotation) []float64 {
	qp := GetQuadPoint(annotation)
	if qp == nil {
		return nil
	}

	coords, err := qp.GetAsFloat64Slice()
	if err != nil {
		return nil
	}

	return coords
}

// GetAnnotationRect returns the annotation's /Rect as an r2.Rect, rotated
// into rendered-page space.
func GetAnnotationRect(page *model.PdfPage, annotation *model.PdfAnnotation) (r2.Rect, bool) {
	objArr, ok := annotation.Rect.(*core.PdfObjectArray)
	if !ok {
		return r2.EmptyRect(), false
	}

	rect, err := objArr.ToFloat64Array()
	if err != nil || len(rect) < 4 {
		return r2.EmptyRect(), false
	}

	rect = ApplyPageRotation(page, rect)

	return r2.RectFromPoints(
		r2.Point{X: rect[0], Y: rect[1]},
		r2.Point{X: rect[2], Y: rect[3]},
	), true
}

func GetQuadPoint(annotation *model.PdfAnnotation) *core.PdfObjectArray {
	switch ctx := annotation.GetContext().(type) {
	case *model.PdfAnnotationHighlight:
		if qp, ok := ctx.QuadPoints.(*core.PdfObjectArray); ok {
			return qp
		}
	case *model.PdfAnnotationStrikeOut:
		if qp, ok := ctx.QuadPoints.(*core.PdfObjectArray); ok {
			return qp
		}
	case *model.PdfAnnotationUnderline:
		if qp, ok := ctx.QuadPoints.(*core.PdfObjectArray); ok {
			return qp
		}
	}

	return nil
}

// GetCoordinates reports the lower-left corner of the annotation's /Rect,
// rounded to two decimals, for stable IDs and sorting.
func GetCoordinates(annotation *model.PdfAnnotation) (float64, float64) {
	objArr, ok := annotation.Rect.(*core.PdfObjectArray)
	if !ok {
		return 0.0, 0.0
	}

	annotRect, err := objArr.ToFloat64Array()
	if err != nil || len(annotRect) < 4 {
		return 0.0, 0.0
	}

	x := math.Round(math.Min(annotRect[0], annotRect[2])*100) / 100
	y := math.Round(math.Min(annotRect[1], annotRect[3])*100) / 100

	return x, y
}
