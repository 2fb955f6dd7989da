package printing

import "errors"

// A4 page in points
const (
	PageWidth     = 595.28
	PageHeight    = 841.89
	PageMargin    = 36.0
	FooterReserve = 30.0

	// MaxTableRowsPerPage caps line-item rows on a single page
	MaxTableRowsPerPage = 25

	rowBreakBuffer = 4.0
)

// ErrCursorClosed is returned when drawing continues after the document was closed
var ErrCursorClosed = errors.New("printing: document already closed")

// PageGeometry describes the printable area of a page
type PageGeometry struct {
	Width         float64
	Height        float64
	Margin        float64
	FooterReserve float64
}

// A4 returns the geometry used for every invoice page
func A4() PageGeometry {
	return PageGeometry{
		Width:         PageWidth,
		Height:        PageHeight,
		Margin:        PageMargin,
		FooterReserve: FooterReserve,
	}
}

func (g PageGeometry) Left() float64         { return g.Margin }
func (g PageGeometry) Right() float64        { return g.Width - g.Margin }
func (g PageGeometry) Top() float64          { return g.Margin }
func (g PageGeometry) ContentWidth() float64 { return g.Width - 2*g.Margin }

// ContentBottom is the lowest y body content may reach; the footer band
// sits below it.
func (g PageGeometry) ContentBottom() float64 { return g.Height - g.Margin - g.FooterReserve }

type cursorState int

const (
	cursorNoPage cursorState = iota
	cursorActive
	cursorClosed
)

// Cursor is the per-document render state: the current page, the vertical
// write position and the row bookkeeping of the line-item table. It is the
// only component that starts pages. Several cursors may share one canvas in
// sequence; page numbers are then relative to the cursor's first page.
type Cursor struct {
	canvas   Canvas
	geom     PageGeometry
	state    cursorState
	first    int
	y        float64
	rows     int
	rowQuota int
	shaded   bool
	onBreak  func()
}

// NewCursor creates a cursor in the initial no-page state
func NewCursor(canvas Canvas, geom PageGeometry) *Cursor {
	return &Cursor{
		canvas:   canvas,
		geom:     geom,
		rowQuota: MaxTableRowsPerPage,
	}
}

// NewPage starts a page, moves the cursor to the top margin and resets the
// per-page row counter. A registered continuation hook runs afterwards.
func (c *Cursor) NewPage() error {
	if c.state == cursorClosed {
		return ErrCursorClosed
	}
	c.canvas.AddPage()
	if c.state == cursorNoPage {
		c.first = c.canvas.PageCount()
	}
	c.state = cursorActive
	c.y = c.geom.Top()
	c.rows = 0
	if c.onBreak != nil {
		c.onBreak()
	}
	return nil
}

// Ensure starts a new page if less than h points remain, or if no page
// exists yet.
func (c *Cursor) Ensure(h float64) error {
	switch c.state {
	case cursorClosed:
		return ErrCursorClosed
	case cursorNoPage:
		return c.NewPage()
	}
	if c.Remaining() < h {
		return c.NewPage()
	}
	return nil
}

// NeedRowBreak reports whether a table row of height h must go on a new
// page, because space ran out or the row quota is used up.
func (c *Cursor) NeedRowBreak(h float64) bool {
	return c.NeedBlockBreak(h, 1)
}

// NeedBlockBreak is NeedRowBreak for n rows that must share a page
func (c *Cursor) NeedBlockBreak(h float64, n int) bool {
	if c.state != cursorActive {
		return c.state == cursorNoPage
	}
	return c.Remaining() < float64(n)*h+rowBreakBuffer || c.rows+n > c.rowQuota
}

// OnPageBreak registers fn to run at the top of every new page. Passing nil
// clears it.
func (c *Cursor) OnPageBreak(fn func()) {
	c.onBreak = fn
}

// CountRow records one table row on the current page
func (c *Cursor) CountRow() {
	c.rows++
}

// Rows returns the number of table rows on the current page
func (c *Cursor) Rows() int {
	return c.rows
}

// NextShade returns whether the next body row is shaded and flips the flag
func (c *Cursor) NextShade() bool {
	shaded := c.shaded
	c.shaded = !c.shaded
	return shaded
}

// ResetShade makes the next body row unshaded
func (c *Cursor) ResetShade() {
	c.shaded = false
}

// Y returns the current write position
func (c *Cursor) Y() float64 {
	return c.y
}

// Advance moves the write position down by h
func (c *Cursor) Advance(h float64) {
	c.y += h
}

// AdvanceTo moves the write position down to y; it never moves up
func (c *Cursor) AdvanceTo(y float64) {
	c.y = max(c.y, y)
}

// Remaining returns the vertical space left above the footer band
func (c *Cursor) Remaining() float64 {
	return c.geom.ContentBottom() - c.y
}

// Page returns the current page number of this document, 0 before the
// first page
func (c *Cursor) Page() int {
	if c.state == cursorNoPage {
		return 0
	}
	return c.canvas.PageCount() - c.first + 1
}

// FirstPage returns the canvas page this document starts on, 0 before the
// first page
func (c *Cursor) FirstPage() int {
	return c.first
}

// Geometry returns the page geometry
func (c *Cursor) Geometry() PageGeometry {
	return c.geom
}

// Close ends content rendering and returns the page count of this
// document. Further page operations fail with ErrCursorClosed.
func (c *Cursor) Close() (int, error) {
	if c.state == cursorClosed {
		return 0, ErrCursorClosed
	}
	if c.state == cursorNoPage {
		if err := c.NewPage(); err != nil {
			return 0, err
		}
	}
	c.state = cursorClosed
	c.onBreak = nil
	return c.canvas.PageCount() - c.first + 1, nil
}
