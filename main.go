package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"math/rand"
	"os"
	"runtime"
	"sort"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/alecthomas/kong"
	"github.com/gen2brain/go-fitz"
	"github.com/mgmeyers/unipdf/v3/model"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mgmeyers/pdfannots2image/pdfutils"
)

var args struct {
	NoWrite         bool   `short:"w" help:"Do not save annotation images to disk"`
	ImageOutputPath string `short:"o" type:"path" help:"Output path of annotation images"`
	ImageBaseName   string `short:"n" default:"annot" help:"Base name of saved images"`
	ImageFormat     string `short:"f" enum:"jpg,png" default:"jpg" help:"Image format. Supports png and jpg"`
	ImageQuality    int    `short:"q" default:"90" help:"Image quality. Only applies to jpg images"`

	HighlightColor string `help:"Hex color of the highlight tint composited onto extracted images"`
	CommentBox     string `type:"path" help:"Path to a comment box image composited onto popup annotations"`
	Debug          bool   `env:"DEBUG" help:"Additionally write every extracted image to a randomly named file"`

	AttemptOCR  bool   `help:"Attempt to OCR the extracted images"`
	TessPath    string `default:"tesseract" help:"Path to the tesseract executable"`
	OCRLang     string `default:"eng" help:"Languages to use for OCR, eg. eng+deu"`
	TessDataDir string `help:"Path to the tesseract data directory"`

	IgnoreBefore time.Time `short:"b" help:"Ignore annotations added before this date. Must be ISO 8601 formatted"`

	InputPDF string `arg:"" name:"input" help:"Path to input PDF" type:"path"`
}

func endIfErr(e error) {
	if e != nil {
		eLog := log.New(os.Stderr, "", 0)
		eLog.Fatalln(e)
	}
}

func logOutput(annots []*pdfutils.Annotation) {
	jsonAnnots, err := json.Marshal(annots)

	endIfErr(err)

	oLog := log.New(os.Stdout, "", 0)
	oLog.Println(string(jsonAnnots))
}

func debugFileSink(img image.Image) error {
	name := fmt.Sprintf("debug-%d.png", rand.Int())
	logrus.WithField("path", name).Info("saving debug subimage")
	return pdfutils.WriteImage(img, name, "png", 0)
}

func loadCommentBox(path string) image.Image {
	if path == "" {
		return nil
	}

	fd, err := os.Open(path)
	if err != nil {
		logrus.WithError(err).Warn("comment box image unavailable, popups fall back to outlines")
		return nil
	}

	defer fd.Close()

	img, _, err := image.Decode(fd)
	if err != nil {
		logrus.WithError(err).Warn("comment box image unreadable, popups fall back to outlines")
		return nil
	}

	return img
}

func main() {
	kong.Parse(&args)

	if args.AttemptOCR {
		if !pdfutils.CheckForTesseract(args.TessPath) {
			endIfErr(fmt.Errorf("tesseract not found at `%s`", args.TessPath))
		}
		if !pdfutils.ValidateLang(args.TessPath, args.OCRLang) {
			endIfErr(fmt.Errorf("tesseract language `%s` not installed", args.OCRLang))
		}
	}

	highlight, err := pdfutils.ParseHighlightColor(args.HighlightColor)
	endIfErr(err)

	var sink pdfutils.DebugSink
	if args.Debug {
		sink = debugFileSink
	}

	extractor := pdfutils.NewExtractor(highlight, sink)
	commentBox := loadCommentBox(args.CommentBox)

	if !args.NoWrite && args.ImageOutputPath != "" {
		endIfErr(os.MkdirAll(args.ImageOutputPath, os.ModePerm))
	}

	f, err := os.Open(args.InputPDF)
	endIfErr(err)

	defer f.Close()

	seeker := io.ReadSeeker(f)

	pdfReader, err := model.NewPdfReader(seeker)
	endIfErr(err)

	imgDoc, err := fitz.New(args.InputPDF)
	endIfErr(err)

	defer imgDoc.Close()

	numPages, err := pdfReader.GetNumPages()
	endIfErr(err)

	perPage := make([][]*pdfutils.Annotation, numPages)

	// the unipdf reader caches model objects in unsynchronized maps, so all
	// GetPage/GetAnnotations calls stay on this goroutine; only
	// rasterization and extraction fan out
	pages := make([]*model.PdfPage, numPages)
	pageAnnots := make([][]*model.PdfAnnotation, numPages)

	for i := 0; i < numPages; i++ {
		page, err := pdfReader.GetPage(i + 1)
		endIfErr(err)

		annotations, err := page.GetAnnotations()
		endIfErr(err)

		pages[i] = page
		pageAnnots[i] = annotations
	}

	var group errgroup.Group
	group.SetLimit(runtime.NumCPU())

	for i := 0; i < numPages; i++ {
		i := i

		group.Go(func() error {
			// raster scale matches the transform's PDF-point to pixel ratio
			pageImg, err := imgDoc.ImageDPI(i, 72*pdfutils.ScaleUpFactor)
			if err != nil {
				return err
			}

			perPage[i] = processAnnotations(extractor, commentBox, i, pages[i], pageImg, pageAnnots[i])
			return nil
		})
	}

	endIfErr(group.Wait())

	collected := []*pdfutils.Annotation{}
	for _, annots := range perPage {
		collected = append(collected, annots...)
	}

	sort.Sort(pdfutils.ByX(collected))
	sort.Stable(pdfutils.ByY(collected))
	sort.SliceStable(collected, func(i, j int) bool {
		return collected[i].Page < collected[j].Page
	})

	ids := map[string]bool{}
	for _, annot := range collected {
		annot.ID = pdfutils.GetAnnotationID(ids, annot.Page-1, annot.X, annot.Y, annot.Type)
	}

	logOutput(collected)
}

func processAnnotations(
	extractor *pdfutils.Extractor,
	commentBox image.Image,
	pageIndex int,
	page *model.PdfPage,
	pageImg image.Image,
	annotations []*model.PdfAnnotation,
) []*pdfutils.Annotation {
	annots := []*pdfutils.Annotation{}

	for _, annotation := range annotations {
		if annotation == nil {
			continue
		}

		annotType := pdfutils.GetAnnotationType(annotation.GetContext())
		if annotType == pdfutils.Unsupported {
			continue
		}

		date := pdfutils.GetAnnotationDate(annotation)
		if date != nil && date.Before(args.IgnoreBefore) {
			continue
		}

		x, y := pdfutils.GetCoordinates(annotation)

		subImg := extractAnnotationImage(extractor, commentBox, page, pageImg, annotation, annotType)

		comment := ""
		if annotation.Contents != nil {
			comment = pdfutils.RemoveNul(annotation.Contents.String())
		}

		builtAnnot := &pdfutils.Annotation{
			Color:         pdfutils.GetAnnotationColor(annotation),
			ColorCategory: pdfutils.GetAnnotationColorCategory(annotation),
			Comment:       comment,
			Type:          annotType,
			Page:          pageIndex + 1,
			X:             x,
			Y:             y,
		}

		if date != nil {
			builtAnnot.Date = date.Format(time.RFC3339)
		}

		if subImg != nil && !args.NoWrite && args.ImageOutputPath != "" {
			imagePath := fmt.Sprintf(
				"%s/%s-%d-x%d-y%d.%s",
				args.ImageOutputPath,
				args.ImageBaseName,
				pageIndex+1,
				int(x),
				int(y),
				args.ImageFormat,
			)

			if err := pdfutils.WriteImage(subImg, imagePath, args.ImageFormat, args.ImageQuality); err != nil {
				logrus.WithError(err).WithField("path", imagePath).Warn("failed to write annotation image")
			} else {
				builtAnnot.ImagePath = imagePath
			}
		}

		if subImg != nil && args.AttemptOCR {
			ocrText, err := pdfutils.OCRImage(subImg, args.TessPath, args.OCRLang, args.TessDataDir)
			if err != nil {
				logrus.WithError(err).Debug("OCR failed for annotation image")
			} else {
				builtAnnot.OCRText = ocrText
			}
		}

		annots = append(annots, builtAnnot)
	}

	return annots
}

func extractAnnotationImage(
	extractor *pdfutils.Extractor,
	commentBox image.Image,
	page *model.PdfPage,
	pageImg image.Image,
	annotation *model.PdfAnnotation,
	annotType string,
) image.Image {
	var subImg image.Image
	var err error

	switch annotType {
	case pdfutils.Highlight:
		subImg, err = extractor.HighlightSubImage(pageImg, pdfutils.GetAnnotationQuadPoints(annotation))
	case pdfutils.Text:
		rect, ok := pdfutils.GetAnnotationRect(page, annotation)
		if !ok {
			return nil
		}
		subImg, err = extractor.PopupSubImage(pageImg, rect, commentBox)
	default:
		// strike, underline and rectangle annotations get a plain context
		// crop of their bounds
		rect, ok := pdfutils.GetAnnotationRect(page, annotation)
		if !ok {
			return nil
		}
		subImg, err = extractor.PlainSubImage(pageImg, rect)
	}

	if errors.Is(err, pdfutils.ErrNotEnoughQuadPoints) {
		logrus.WithField("type", annotType).Debug("annotation geometry too short, skipping image")
		return nil
	}

	if err != nil {
		logrus.WithError(err).WithField("type", annotType).Warn("failed to extract annotation image")
		return nil
	}

	return subImg
}
