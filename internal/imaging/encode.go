package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"
)

// Format is an output format for a whole panel.
type Format string

const (
	// FormatPDF writes one document page per panel page.
	FormatPDF Format = "pdf"

	// FormatPNG writes only the first panel page. See EncodeFirstPageOnly.
	FormatPNG Format = "png"
)

// DefaultResolution is the resolution, in dots per inch, recorded for PDF pages.
const DefaultResolution = 100.0

// ParseFormat maps a format name such as "pdf" or "image/png" to a Format.
func ParseFormat(name string) (Format, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimPrefix(strings.TrimPrefix(n, "application/"), "image/")
	n = strings.TrimPrefix(n, ".")
	switch Format(n) {
	case FormatPDF:
		return FormatPDF, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", fmt.Errorf("%w: output format %q", ErrUnsupportedFormat, name)
}

// MimeType returns the MIME type of the encoded output.
func (f Format) MimeType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatPNG:
		return "image/png"
	}
	return "application/octet-stream"
}

// EncodeSingle encodes one page as a lossless PNG.
func EncodeSingle(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression)); err != nil {
		return nil, fmt.Errorf("failed to encode page: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeOptions tunes EncodeMulti.
type EncodeOptions struct {
	// Resolution is the DPI used to size PDF pages. Zero means DefaultResolution.
	Resolution float64

	// Title is written into the PDF metadata when not empty.
	Title string
}

// EncodeMulti encodes a whole panel in the requested format.
//
// Nothing is returned unless every page was encoded; an unsupported format
// fails with ErrUnsupportedFormat and an empty page list with ErrInvalidInput.
func EncodeMulti(pages []image.Image, format Format, opts EncodeOptions) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages to encode", ErrInvalidInput)
	}
	switch format {
	case FormatPDF:
		return EncodePDF(pages, opts)
	case FormatPNG:
		return EncodeFirstPageOnly(pages)
	}
	return nil, fmt.Errorf("%w: output format %q", ErrUnsupportedFormat, string(format))
}

// EncodeFirstPageOnly encodes the first page of a panel as PNG and ignores
// the rest. This is the whole-panel PNG export: it does not assemble the
// pages into one large raster.
func EncodeFirstPageOnly(pages []image.Image) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages to encode", ErrInvalidInput)
	}
	return EncodeSingle(pages[0])
}

// EncodePDF writes every page as one PDF page, in order.
//
// Pages are flattened onto white since PDF pages here carry no alpha.
// Each PDF page is sized so the image keeps its pixel size at the given
// resolution (pixels * 72 / dpi points).
func EncodePDF(pages []image.Image, opts EncodeOptions) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages to encode", ErrInvalidInput)
	}
	dpi := opts.Resolution
	if dpi <= 0 {
		dpi = DefaultResolution
	}

	first := pageSizePoints(pages[0], dpi)
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           first,
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCreator("image-panel-mcp", true)
	if opts.Title != "" {
		doc.SetTitle(opts.Title, true)
	}

	imgOpts := fpdf.ImageOptions{ImageType: "PNG"}
	for i, page := range pages {
		data, err := EncodeSingle(flatten(page))
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}

		size := pageSizePoints(page, dpi)
		doc.AddPageFormat("P", size)

		name := fmt.Sprintf("page_%d", i+1)
		doc.RegisterImageOptionsReader(name, imgOpts, bytes.NewReader(data))
		doc.ImageOptions(name, 0, 0, size.Wd, size.Ht, false, imgOpts, 0, "")
		if err := doc.Error(); err != nil {
			return nil, fmt.Errorf("page %d: failed to add to PDF: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func pageSizePoints(img image.Image, dpi float64) fpdf.SizeType {
	b := img.Bounds()
	return fpdf.SizeType{
		Wd: float64(b.Dx()) * 72 / dpi,
		Ht: float64(b.Dy()) * 72 / dpi,
	}
}

// flatten composites img over an opaque white background.
func flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
