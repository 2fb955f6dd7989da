package printing

import (
	"github.com/dms/backend/internal/domain/invoice"
)

type tableColumn struct {
	title string
	frac  float64
	align Align
}

var lineItemColumns = []tableColumn{
	{title: "Description", frac: 0.46, align: AlignLeft},
	{title: "Qty", frac: 0.12, align: AlignRight},
	{title: "Unit Price", frac: 0.14, align: AlignRight},
	{title: "Disc %", frac: 0.12, align: AlignRight},
	{title: "Value", frac: 0.16, align: AlignRight},
}

type lineItemTable struct {
	canvas Canvas
	cursor *Cursor
	format *Formatter
	xs     []float64
	widths []float64
	width  float64
}

func newLineItemTable(canvas Canvas, cursor *Cursor, format *Formatter) *lineItemTable {
	geom := cursor.Geometry()
	t := &lineItemTable{
		canvas: canvas,
		cursor: cursor,
		format: format,
		width:  geom.ContentWidth(),
	}
	x := geom.Left()
	for _, col := range lineItemColumns {
		w := t.width * col.frac
		t.xs = append(t.xs, x)
		t.widths = append(t.widths, w)
		x += w
	}
	return t
}

// render draws the header, the booked lines and every return sub-section
// that has at least one line.
func (t *lineItemTable) render(inv *invoice.Invoice) error {
	if err := t.cursor.Ensure(tableHeaderHeight + tableRowHeight + rowBreakBuffer); err != nil {
		return err
	}
	t.drawHeader()
	t.cursor.OnPageBreak(t.drawHeader)
	defer t.cursor.OnPageBreak(nil)
	t.cursor.ResetShade()

	booked := inv.BookedItems()
	for _, line := range booked {
		cells := []string{
			line.Description(),
			t.format.Quantity(line.DisplayQty()),
			t.format.Amount(line.SellUnitPrice),
			t.format.Percent(line.DiscountPercentage),
			t.format.Amount(line.Value()),
		}
		if err := t.drawRow(cells); err != nil {
			return err
		}
	}

	sections := 0
	for _, category := range invoice.ReturnCategories() {
		lines := inv.ItemsIn(category)
		if len(lines) == 0 {
			continue
		}
		sections++
		if err := t.drawSectionTitle(category.Title()); err != nil {
			return err
		}
		for _, line := range lines {
			if err := t.drawRow(t.categoryCells(line, category)); err != nil {
				return err
			}
		}
	}

	if len(booked) == 0 && sections == 0 {
		return t.drawRow([]string{"No line items", missingValue, missingValue, missingValue, missingValue})
	}
	return nil
}

func (t *lineItemTable) categoryCells(line invoice.LineItem, category invoice.Category) []string {
	cells := []string{
		line.Description(),
		t.format.Quantity(line.CategoryQty(category)),
		missingValue,
		missingValue,
		missingValue,
	}
	if value, ok := line.CategoryValue(category); ok {
		cells[2] = t.format.Amount(line.SellUnitPrice)
		cells[4] = t.format.Amount(value)
	}
	return cells
}

func (t *lineItemTable) drawHeader() {
	y := t.cursor.Y()
	left := t.xs[0]

	t.canvas.SetFillColor(colorHeaderFill)
	t.canvas.Rect(left, y, t.width, tableHeaderHeight, RectFill)
	t.canvas.SetFont(FontBold, fontSizeBody)
	t.canvas.SetTextColor(colorPrimary)
	for i, col := range lineItemColumns {
		drawText(t.canvas, t.xs[i]+cellPadding, y+13, t.widths[i]-2*cellPadding, col.title, col.align)
	}
	t.cursor.Advance(tableHeaderHeight)
}

func (t *lineItemTable) breakIfNeeded() error {
	if t.cursor.NeedRowBreak(tableRowHeight) {
		return t.cursor.NewPage()
	}
	return nil
}

// drawSectionTitle keeps the title on the same page as the first row below it
func (t *lineItemTable) drawSectionTitle(title string) error {
	if t.cursor.NeedBlockBreak(tableRowHeight, 2) {
		if err := t.cursor.NewPage(); err != nil {
			return err
		}
	}
	y := t.cursor.Y()

	t.canvas.SetFillColor(colorSectionFill)
	t.canvas.Rect(t.xs[0], y, t.width, tableRowHeight, RectFill)
	t.canvas.SetFont(FontBold, fontSizeBody)
	t.canvas.SetTextColor(colorPrimary)
	t.canvas.Text(t.xs[0]+cellPadding, y+12, title)

	t.cursor.CountRow()
	t.cursor.Advance(tableRowHeight)
	t.cursor.ResetShade()
	return nil
}

func (t *lineItemTable) drawRow(cells []string) error {
	if err := t.breakIfNeeded(); err != nil {
		return err
	}
	y := t.cursor.Y()

	if t.cursor.NextShade() {
		t.canvas.SetFillColor(colorRowShade)
		t.canvas.Rect(t.xs[0], y, t.width, tableRowHeight, RectFill)
	}
	t.canvas.SetDrawColor(colorBorder)
	t.canvas.SetLineWidth(0.3)
	t.canvas.Line(t.xs[0], y+tableRowHeight, t.xs[0]+t.width, y+tableRowHeight)

	t.canvas.SetFont(FontRegular, fontSizeBody)
	t.canvas.SetTextColor(colorText)
	for i, col := range lineItemColumns {
		inner := t.widths[i] - 2*cellPadding
		drawText(t.canvas, t.xs[i]+cellPadding, y+12, inner, fitText(t.canvas, cells[i], inner), col.align)
	}

	t.cursor.CountRow()
	t.cursor.Advance(tableRowHeight)
	return nil
}
