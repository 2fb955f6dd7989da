package printing

import (
	"fmt"
	"io"
	"strings"
)

type drawOp struct {
	page  int
	kind  string
	text  string
	style FontStyle
	x, y  float64
	w, h  float64
}

// recordingCanvas keeps every draw call so tests can assert on layout
type recordingCanvas struct {
	ops      []drawOp
	pages    int
	current  int
	style    FontStyle
	size     float64
	imageErr error
}

func newRecordingCanvas() *recordingCanvas {
	return &recordingCanvas{size: 10}
}

func (r *recordingCanvas) AddPage() {
	r.pages++
	r.current = r.pages
	r.ops = append(r.ops, drawOp{page: r.current, kind: "page"})
}

func (r *recordingCanvas) SetPage(n int) { r.current = n }

func (r *recordingCanvas) PageCount() int { return r.pages }

func (r *recordingCanvas) SetFont(style FontStyle, size float64) {
	r.style = style
	r.size = size
}

func (r *recordingCanvas) SetFillColor(Color)   {}
func (r *recordingCanvas) SetDrawColor(Color)   {}
func (r *recordingCanvas) SetTextColor(Color)   {}
func (r *recordingCanvas) SetLineWidth(float64) {}
func (r *recordingCanvas) SetDashed(bool)       {}

func (r *recordingCanvas) Rect(x, y, w, h float64, style RectStyle) {
	r.ops = append(r.ops, drawOp{page: r.current, kind: "rect", text: string(style), x: x, y: y, w: w, h: h})
}

func (r *recordingCanvas) Line(x1, y1, x2, y2 float64) {
	r.ops = append(r.ops, drawOp{page: r.current, kind: "line", x: x1, y: y1, w: x2 - x1, h: y2 - y1})
}

func (r *recordingCanvas) Text(x, y float64, s string) {
	r.ops = append(r.ops, drawOp{page: r.current, kind: "text", text: s, style: r.style, x: x, y: y})
}

func (r *recordingCanvas) TextWidth(s string) float64 {
	return float64(len([]rune(s))) * r.size * 0.5
}

func (r *recordingCanvas) Image(name string, data []byte, x, y, maxW, maxH float64) error {
	if r.imageErr != nil {
		return r.imageErr
	}
	r.ops = append(r.ops, drawOp{page: r.current, kind: "image", text: name, x: x, y: y, w: maxW, h: maxH})
	return nil
}

func (r *recordingCanvas) Err() error { return nil }

func (r *recordingCanvas) Output(w io.Writer) error {
	for _, op := range r.ops {
		if _, err := fmt.Fprintf(w, "%d %s %q\n", op.page, op.kind, op.text); err != nil {
			return err
		}
	}
	return nil
}

// texts returns text ops, optionally restricted to one page (0 = all)
func (r *recordingCanvas) texts(page int) []drawOp {
	var out []drawOp
	for _, op := range r.ops {
		if op.kind == "text" && (page == 0 || op.page == page) {
			out = append(out, op)
		}
	}
	return out
}

func (r *recordingCanvas) countText(s string) int {
	n := 0
	for _, op := range r.texts(0) {
		if op.text == s {
			n++
		}
	}
	return n
}

func (r *recordingCanvas) hasText(page int, substr string) bool {
	for _, op := range r.texts(page) {
		if strings.Contains(op.text, substr) {
			return true
		}
	}
	return false
}

// findText returns the first text op equal to s
func (r *recordingCanvas) findText(s string) (drawOp, bool) {
	for _, op := range r.texts(0) {
		if op.text == s {
			return op, true
		}
	}
	return drawOp{}, false
}

var _ Canvas = (*recordingCanvas)(nil)
