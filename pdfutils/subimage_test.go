package pdfutils

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var (
	white       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	exampleRect = r2.RectFromPoints(r2.Point{X: 100, Y: 200}, r2.Point{X: 150, Y: 230})
)

func whitePage(w, h int) *image.NRGBA {
	page := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(page, page.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	return page
}

func TestPlainSubImageCropsWithoutOverlay(t *testing.T) {
	ext := NewExtractor(DefaultHighlightColor, nil)

	out, err := ext.PlainSubImage(whitePage(1200, 1600), exampleRect)
	require.NoError(t, err)

	// border 30, multiplier 1
	assert.Equal(t, 220, out.Bounds().Dx())
	assert.Equal(t, 180, out.Bounds().Dy())

	nrgba, ok := out.(*image.NRGBA)
	require.True(t, ok)

	for y := 0; y < nrgba.Bounds().Dy(); y++ {
		for x := 0; x < nrgba.Bounds().Dx(); x++ {
			require.Equal(t, white, nrgba.NRGBAAt(x, y), "pixel %d,%d", x, y)
		}
	}
}

func TestHighlightSubImageTintsEachQuad(t *testing.T) {
	ext := NewExtractor(DefaultHighlightColor, nil)

	out, err := ext.HighlightSubImage(whitePage(1200, 1600), exampleQuad)
	require.NoError(t, err)

	nrgba, ok := out.(*image.NRGBA)
	require.True(t, ok)

	sub := SubImageRect(exampleQuad, 1200, 1600, MarkupHighlight)
	quadRect := AnnotationRect(exampleQuad, sub, 1600)
	center := image.Point{
		X: quadRect.Min.X + quadRect.Dx()/2,
		Y: quadRect.Min.Y + quadRect.Dy()/2,
	}

	tinted := nrgba.NRGBAAt(center.X, center.Y)
	assert.NotEqual(t, white, tinted)
	// the default tint is yellow, so blue drops well below red and green
	assert.Less(t, tinted.B, tinted.R)
	assert.Less(t, tinted.B, tinted.G)
	assert.Equal(t, uint8(255), tinted.A)

	// context border outside the quad stays untouched
	assert.Equal(t, white, nrgba.NRGBAAt(2, 2))
}

func TestHighlightSubImageMultipleQuads(t *testing.T) {
	quads := []float64{
		100, 200, 150, 200, 100, 230, 150, 230,
		100, 160, 150, 160, 100, 190, 150, 190,
	}

	ext := NewExtractor(DefaultHighlightColor, nil)

	out, err := ext.HighlightSubImage(whitePage(1200, 1600), quads)
	require.NoError(t, err)

	nrgba := out.(*image.NRGBA)
	sub := SubImageRect(quads, 1200, 1600, MarkupHighlight)

	for n := 0; n+QuadSize <= len(quads); n += QuadSize {
		rect := AnnotationRect(quads[n:n+QuadSize], sub, 1600)
		got := nrgba.NRGBAAt(rect.Min.X+rect.Dx()/2, rect.Min.Y+rect.Dy()/2)
		assert.NotEqual(t, white, got, "quad %d not tinted", n/QuadSize)
	}
}

func TestShortQuadListYieldsNoImage(t *testing.T) {
	ext := NewExtractor(DefaultHighlightColor, nil)
	page := whitePage(1200, 1600)

	for _, quads := range [][]float64{nil, {}, {1, 2}, {1, 2, 3, 4, 5, 6, 7}} {
		out, err := ext.HighlightSubImage(page, quads)

		assert.Nil(t, out)
		assert.True(t, errors.Is(err, ErrNotEnoughQuadPoints))
	}
}

func TestPopupWithoutAssetStrokesOutline(t *testing.T) {
	ext := NewExtractor(DefaultHighlightColor, nil)

	out, err := ext.PopupSubImage(whitePage(1200, 1600), exampleRect, nil)
	require.NoError(t, err)

	nrgba := out.(*image.NRGBA)

	sub := SubImageRect(RectToQuad(exampleRect), 1200, 1600, MarkupPopup)
	rect := AnnotationRect(RectToQuad(exampleRect), sub, 1600)

	// edge is stroked, interior is not filled
	edge := nrgba.NRGBAAt(rect.Min.X+1, rect.Min.Y+1)
	assert.NotEqual(t, white, edge)

	center := nrgba.NRGBAAt(rect.Min.X+rect.Dx()/2, rect.Min.Y+rect.Dy()/2)
	assert.Equal(t, white, center)
}

func TestPopupStretchesCommentBox(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	box := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	draw.Draw(box, box.Bounds(), image.NewUniform(red), image.Point{}, draw.Src)

	ext := NewExtractor(DefaultHighlightColor, nil)

	out, err := ext.PopupSubImage(whitePage(1200, 1600), exampleRect, box)
	require.NoError(t, err)

	nrgba := out.(*image.NRGBA)

	sub := SubImageRect(RectToQuad(exampleRect), 1200, 1600, MarkupPopup)
	rect := AnnotationRect(RectToQuad(exampleRect), sub, 1600)

	center := nrgba.NRGBAAt(rect.Min.X+rect.Dx()/2, rect.Min.Y+rect.Dy()/2)
	assert.Greater(t, center.R, uint8(200))
	assert.Less(t, center.G, uint8(50))
	assert.Less(t, center.B, uint8(50))

	// the context border around the box is untouched
	assert.Equal(t, white, nrgba.NRGBAAt(2, 2))
}

func TestPixelFormatPreserved(t *testing.T) {
	ext := NewExtractor(DefaultHighlightColor, nil)

	nrgbaOut, err := ext.PlainSubImage(whitePage(1200, 1600), exampleRect)
	require.NoError(t, err)
	assert.IsType(t, &image.NRGBA{}, nrgbaOut)

	grayPage := image.NewGray(image.Rect(0, 0, 1200, 1600))
	grayOut, err := ext.PlainSubImage(grayPage, exampleRect)
	require.NoError(t, err)
	assert.IsType(t, &image.Gray{}, grayOut)

	rgbaPage := image.NewRGBA(image.Rect(0, 0, 1200, 1600))
	rgbaOut, err := ext.PlainSubImage(rgbaPage, exampleRect)
	require.NoError(t, err)
	assert.IsType(t, &image.RGBA{}, rgbaOut)
}

func TestDebugSinkReceivesEveryImage(t *testing.T) {
	received := []image.Image{}
	sink := func(img image.Image) error {
		received = append(received, img)
		return nil
	}

	ext := NewExtractor(DefaultHighlightColor, sink)
	page := whitePage(1200, 1600)

	_, err := ext.PlainSubImage(page, exampleRect)
	require.NoError(t, err)
	_, err = ext.HighlightSubImage(page, exampleQuad)
	require.NoError(t, err)

	require.Len(t, received, 2)
	assert.Equal(t, 220, received[0].Bounds().Dx())
}

func TestDebugSinkErrorsAreSwallowed(t *testing.T) {
	sink := func(img image.Image) error {
		return errors.New("disk full")
	}

	ext := NewExtractor(DefaultHighlightColor, sink)

	out, err := ext.HighlightSubImage(whitePage(1200, 1600), exampleQuad)

	assert.NoError(t, err)
	assert.NotNil(t, out)
}

func TestExtractorSafeForConcurrentUse(t *testing.T) {
	ext := NewExtractor(DefaultHighlightColor, nil)
	page := whitePage(1200, 1600)

	var group errgroup.Group
	group.SetLimit(8)

	for i := 0; i < 32; i++ {
		group.Go(func() error {
			out, err := ext.HighlightSubImage(page, exampleQuad)
			if err != nil {
				return err
			}
			if out.Bounds().Dx() != 220 || out.Bounds().Dy() != 180 {
				return fmt.Errorf("unexpected subimage size %v", out.Bounds())
			}
			return nil
		})
	}

	require.NoError(t, group.Wait())
}

func TestCustomHighlightColor(t *testing.T) {
	blue := color.NRGBA{B: 255, A: 140}
	ext := NewExtractor(blue, nil)

	out, err := ext.HighlightSubImage(whitePage(1200, 1600), exampleQuad)
	require.NoError(t, err)

	nrgba := out.(*image.NRGBA)
	sub := SubImageRect(exampleQuad, 1200, 1600, MarkupHighlight)
	rect := AnnotationRect(exampleQuad, sub, 1600)

	tinted := nrgba.NRGBAAt(rect.Min.X+rect.Dx()/2, rect.Min.Y+rect.Dy()/2)
	assert.Less(t, tinted.R, uint8(255))
	assert.Less(t, tinted.G, uint8(255))
	assert.Greater(t, tinted.B, tinted.R)
}
