package printing

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	bodyFontFamily = "body"
	coreFontFamily = "Helvetica"
)

// DefaultCreationDate is stamped into every document so identical input
// produces identical bytes.
var DefaultCreationDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// FontConfig points at optional TrueType faces for non Latin-1 text.
// When both paths are empty the core Helvetica font is used.
type FontConfig struct {
	RegularPath string
	BoldPath    string
}

// DocumentOptions configures a new PDF document
type DocumentOptions struct {
	Fonts        FontConfig
	Compress     bool
	CreationDate time.Time
	Title        string
	Author       string
}

func newFpdf(opts DocumentOptions) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(PageMargin, PageMargin, PageMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(opts.Compress)
	pdf.SetCatalogSort(true)

	created := opts.CreationDate
	if created.IsZero() {
		created = DefaultCreationDate
	}
	pdf.SetCreationDate(created)
	pdf.SetCreator("DMS Invoice Service", true)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	if opts.Author != "" {
		pdf.SetAuthor(opts.Author, true)
	}
	return pdf
}

// GofpdfCanvas draws onto a gofpdf document
type GofpdfCanvas struct {
	pdf       *gofpdf.Fpdf
	family    string
	translate func(string) string
	fontSize  float64
}

// NewGofpdfCanvas creates an empty A4 document in points and embeds the
// body font once.
func NewGofpdfCanvas(opts DocumentOptions) (*GofpdfCanvas, error) {
	pdf := newFpdf(opts)

	c := &GofpdfCanvas{pdf: pdf, family: coreFontFamily, fontSize: 10}
	if opts.Fonts.RegularPath != "" || opts.Fonts.BoldPath != "" {
		if opts.Fonts.RegularPath == "" || opts.Fonts.BoldPath == "" {
			return nil, NewRenderError(ErrCodeFontFailed, "both regular and bold font paths are required", nil)
		}
		pdf.AddUTF8Font(bodyFontFamily, string(FontRegular), opts.Fonts.RegularPath)
		pdf.AddUTF8Font(bodyFontFamily, string(FontBold), opts.Fonts.BoldPath)
		if pdf.Err() {
			return nil, NewRenderError(ErrCodeFontFailed, "failed to embed fonts", pdf.Error())
		}
		c.family = bodyFontFamily
		c.translate = func(s string) string { return s }
	} else {
		c.translate = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pdf.SetFont(c.family, string(FontRegular), c.fontSize)
	return c, nil
}

func (c *GofpdfCanvas) AddPage() { c.pdf.AddPage() }

func (c *GofpdfCanvas) SetPage(n int) { c.pdf.SetPage(n) }

func (c *GofpdfCanvas) PageCount() int { return c.pdf.PageCount() }

func (c *GofpdfCanvas) SetFont(style FontStyle, size float64) {
	c.fontSize = size
	c.pdf.SetFont(c.family, string(style), size)
}

func (c *GofpdfCanvas) SetFillColor(col Color) { c.pdf.SetFillColor(col.R, col.G, col.B) }

func (c *GofpdfCanvas) SetDrawColor(col Color) { c.pdf.SetDrawColor(col.R, col.G, col.B) }

func (c *GofpdfCanvas) SetTextColor(col Color) { c.pdf.SetTextColor(col.R, col.G, col.B) }

func (c *GofpdfCanvas) SetLineWidth(w float64) { c.pdf.SetLineWidth(w) }

func (c *GofpdfCanvas) SetDashed(dashed bool) {
	if dashed {
		c.pdf.SetDashPattern([]float64{1, 2}, 0)
		return
	}
	c.pdf.SetDashPattern([]float64{}, 0)
}

func (c *GofpdfCanvas) Rect(x, y, w, h float64, style RectStyle) {
	c.pdf.Rect(x, y, w, h, string(style))
}

func (c *GofpdfCanvas) Line(x1, y1, x2, y2 float64) { c.pdf.Line(x1, y1, x2, y2) }

func (c *GofpdfCanvas) Text(x, y float64, s string) { c.pdf.Text(x, y, c.translate(s)) }

func (c *GofpdfCanvas) TextWidth(s string) float64 { return c.pdf.GetStringWidth(c.translate(s)) }

// Image registers the encoded image under name and draws it scaled to fit
// inside maxW x maxH, keeping its aspect ratio.
func (c *GofpdfCanvas) Image(name string, data []byte, x, y, maxW, maxH float64) error {
	imageType, err := imageTypeOf(data)
	if err != nil {
		return err
	}
	opts := gofpdf.ImageOptions{ImageType: imageType}
	info := c.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if c.pdf.Err() {
		return c.pdf.Error()
	}

	wd, ht := info.Extent()
	if wd <= 0 || ht <= 0 {
		return fmt.Errorf("image %q has no extent", name)
	}
	scale := min(maxW/wd, maxH/ht)
	c.pdf.ImageOptions(name, x, y, wd*scale, ht*scale, false, opts, 0, "")
	return c.Err()
}

func (c *GofpdfCanvas) Err() error {
	if c.pdf.Err() {
		return c.pdf.Error()
	}
	return nil
}

func (c *GofpdfCanvas) Output(w io.Writer) error {
	return c.pdf.Output(w)
}

func imageTypeOf(data []byte) (string, error) {
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG", nil
	case "image/jpeg":
		return "JPG", nil
	case "image/gif":
		return "GIF", nil
	}
	return "", fmt.Errorf("unsupported image format %q", http.DetectContentType(data))
}

var _ Canvas = (*GofpdfCanvas)(nil)
