package pdfutils

import (
	"math"

	"github.com/golang/geo/r2"
)

// Quad points describe the region an annotation covers as a flat list of
// 8*n coordinates, one axis-aligned quadrilateral per 8 values. X values sit
// on the even indices, Y values on the odd ones. Coordinates are PDF points
// with the origin at the bottom-left of the page.

// QuadSize is the number of coordinates describing one quadrilateral.
const QuadSize = 8

// RectToQuad expands a rectangle into a single quad in the order
// lower-left, lower-right, upper-left, upper-right.
func RectToQuad(r r2.Rect) []float64 {
	return []float64{
		r.X.Lo, r.Y.Lo,
		r.X.Hi, r.Y.Lo,
		r.X.Lo, r.Y.Hi,
		r.X.Hi, r.Y.Hi,
	}
}

// The min/max helpers truncate coordinates toward zero rather than round,
// biasing boxes toward the origin by up to one point. The max helpers start
// from 0, so a list that is entirely negative reports 0. Both behaviors are
// preserved from the original extraction tool; downstream offsets depend
// on them.

func quadMinX(quadPoints []float64) int {
	min := math.MaxInt32
	for i := 0; i < len(quadPoints); i += 2 {
		if quadPoints[i] < float64(min) {
			min = int(quadPoints[i])
		}
	}
	return min
}

func quadMinY(quadPoints []float64) int {
	min := math.MaxInt32
	for i := 1; i < len(quadPoints); i += 2 {
		if quadPoints[i] < float64(min) {
			min = int(quadPoints[i])
		}
	}
	return min
}

func quadMaxX(quadPoints []float64) int {
	max := 0
	for i := 0; i < len(quadPoints); i += 2 {
		if quadPoints[i] > float64(max) {
			max = int(quadPoints[i])
		}
	}
	return max
}

func quadMaxY(quadPoints []float64) int {
	max := 0
	for i := 1; i < len(quadPoints); i += 2 {
		if quadPoints[i] > float64(max) {
			max = int(quadPoints[i])
		}
	}
	return max
}
