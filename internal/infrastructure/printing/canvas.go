package printing

import "io"

// Color is an RGB colour with 0-255 components
type Color struct {
	R, G, B int
}

// FontStyle selects the face of the body font
type FontStyle string

const (
	FontRegular FontStyle = ""
	FontBold    FontStyle = "B"
)

// RectStyle selects how a rectangle is painted
type RectStyle string

const (
	RectFill       RectStyle = "F"
	RectStroke     RectStyle = "D"
	RectFillStroke RectStyle = "FD"
)

// Align is the horizontal alignment of text inside a box
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Canvas is the drawing surface section renderers emit to. Coordinates are
// points from the top-left corner of the page; Text places its baseline at y.
type Canvas interface {
	AddPage()
	SetPage(n int)
	PageCount() int

	SetFont(style FontStyle, size float64)
	SetFillColor(c Color)
	SetDrawColor(c Color)
	SetTextColor(c Color)
	SetLineWidth(w float64)
	SetDashed(dashed bool)

	Rect(x, y, w, h float64, style RectStyle)
	Line(x1, y1, x2, y2 float64)
	Text(x, y float64, s string)
	TextWidth(s string) float64
	Image(name string, data []byte, x, y, maxW, maxH float64) error

	Err() error
	Output(w io.Writer) error
}

// drawText places s inside the horizontal span [x, x+w] using align
func drawText(c Canvas, x, y, w float64, s string, align Align) {
	switch align {
	case AlignRight:
		x = x + w - c.TextWidth(s)
	case AlignCenter:
		x = x + (w-c.TextWidth(s))/2
	}
	c.Text(x, y, s)
}

// fitText shortens s with an ellipsis until it fits within w
func fitText(c Canvas, s string, w float64) string {
	if c.TextWidth(s) <= w {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if c.TextWidth(candidate) <= w {
			return candidate
		}
	}
	return ""
}
