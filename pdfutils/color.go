package pdfutils

import (
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/mgmeyers/unipdf/v3/core"
	"github.com/mgmeyers/unipdf/v3/model"
)

// ParseHighlightColor turns a hex string like "#eaf923" into the tint used
// for highlight fills, keeping the default translucency. An empty string
// selects the default tint.
func ParseHighlightColor(hex string) (color.NRGBA, error) {
	if hex == "" {
		return DefaultHighlightColor, nil
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, err
	}

	r, g, b := c.RGB255()

	return color.NRGBA{R: r, G: g, B: b, A: DefaultHighlightColor.A}, nil
}

func toHEXStr(i int) string {
	s := fmt.Sprintf("%x", i)

	if len(s) == 1 {
		return "0" + s
	}

	return s
}

func PDFObjToHex(c core.PdfObject) string {
	if c == nil {
		return ""
	}

	objArr, ok := c.(*core.PdfObjectArray)
	if !ok {
		return ""
	}

	clr, err := objArr.ToFloat64Array()
	if err != nil {
		return ""
	}

	if len(clr) < 3 {
		return ""
	}

	return "#" + toHEXStr(int(clr[0]*255)) + toHEXStr(int(clr[1]*255)) + toHEXStr(int(clr[2]*255))
}

func GetAnnotationColor(annotation *model.PdfAnnotation) string {
	obj := annotationColorObj(annotation)
	if obj == nil {
		return ""
	}

	return PDFObjToHex(obj)
}

func GetAnnotationColorCategory(annotation *model.PdfAnnotation) string {
	obj := annotationColorObj(annotation)
	if obj == nil {
		return ""
	}

	return PDFObjToColorCategory(obj)
}

func annotationColorObj(annotation *model.PdfAnnotation) core.PdfObject {
	if annotation == nil {
		return nil
	}

	switch ctx := annotation.GetContext().(type) {
	case *model.PdfAnnotationHighlight:
		return ctx.C
	case *model.PdfAnnotationStrikeOut:
		return ctx.C
	case *model.PdfAnnotationUnderline:
		return ctx.C
	case *model.PdfAnnotationSquare:
		return ctx.C
	case *model.PdfAnnotationText:
		return ctx.C
	}

	return nil
}

func PDFObjToColorCategory(c core.PdfObject) string {
	if c == nil {
		return ""
	}

	objArr, ok := c.(*core.PdfObjectArray)
	if !ok {
		return ""
	}

	clr, err := objArr.ToFloat64Array()
	if err != nil {
		return ""
	}

	if len(clr) < 3 {
		return ""
	}

	cc := colorful.Color{
		R: clr[0],
		G: clr[1],
		B: clr[2],
	}
	h, s, l := cc.Hsl()

	// define color category based on HSL
	if l < 0.12 {
		return "Black"
	}
	if l > 0.98 {
		return "White"
	}
	if s < 0.2 {
		return "Gray"
	}
	if h < 15 {
		return "Red"
	}
	if h < 45 {
		return "Orange"
	}
	if h < 65 {
		return "Yellow"
	}
	if h < 170 {
		return "Green"
	}
	if h < 190 {
		return "Cyan"
	}
	if h < 263 {
		return "Blue"
	}
	if h < 280 {
		return "Purple"
	}
	if h < 335 {
		return "Magenta"
	}
	return "Red"
}
