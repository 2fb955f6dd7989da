package printing

import (
	"fmt"
	"strings"

	"github.com/dms/backend/internal/domain/invoice"
)

// CompanyProfile is the issuer printed in the header and footer
type CompanyProfile struct {
	Name         string
	AddressLines []string
	Contact      string
	Copyright    string
}

func (p CompanyProfile) footerAddress() string {
	return strings.Join(presentParts(p.AddressLines), ", ")
}

// renderHeader draws the first-page banner. logo may be nil.
func renderHeader(c Canvas, cur *Cursor, company CompanyProfile, logo []byte) error {
	if err := cur.Ensure(headerBandHeight); err != nil {
		return err
	}
	geom := cur.Geometry()

	c.SetFillColor(colorBand)
	c.Rect(0, 0, geom.Width, headerBandHeight, RectFill)
	stripeY := headerBandHeight
	for i, col := range stripeColors {
		h := 3.0 - float64(i)*0.75
		c.SetFillColor(col)
		c.Rect(0, stripeY, geom.Width, h, RectFill)
		stripeY += h
	}

	textX := geom.Left()
	if len(logo) > 0 {
		if err := c.Image("logo", logo, geom.Left(), geom.Top()-12, logoMaxWidth, logoMaxHeight); err != nil {
			return NewRenderError(ErrCodeAssetFetchFailed, "failed to embed logo", err)
		}
		textX += logoMaxWidth + 12
	}

	y := geom.Top() + 4
	c.SetTextColor(colorPrimary)
	c.SetFont(FontBold, fontSizeCompany)
	c.Text(textX, y, company.Name)

	c.SetFont(FontRegular, fontSizeBody)
	c.SetTextColor(colorMuted)
	for _, line := range presentParts(company.AddressLines) {
		y += 12
		c.Text(textX, y, line)
	}
	if invoice.Present(company.Contact) {
		y += 12
		c.Text(textX, y, company.Contact)
	}

	c.SetFont(FontBold, fontSizeTitle)
	c.SetTextColor(colorPrimary)
	drawText(c, geom.Left(), geom.Top()+30, geom.ContentWidth(), "INVOICE", AlignRight)

	cur.AdvanceTo(stripeY + headerGap)
	return nil
}

type infoRow struct {
	label string
	value string
}

// drawColumn prints label/value pairs starting at y and returns the number
// of lines used. Values containing newlines take one line each.
func drawColumn(c Canvas, x, y, labelWidth, width float64, rows []infoRow) int {
	lines := 0
	for _, row := range rows {
		c.SetFont(FontBold, fontSizeBody)
		c.SetTextColor(colorMuted)
		c.Text(x, y+float64(lines)*infoLineHeight, row.label)

		c.SetFont(FontRegular, fontSizeBody)
		c.SetTextColor(colorText)
		for _, part := range valueLines(row.value) {
			baseline := y + float64(lines)*infoLineHeight
			c.Text(x+labelWidth, baseline, fitText(c, part, width-labelWidth))
			lines++
		}
	}
	return lines
}

// valueLines splits a value on newlines, keeping at most maxInfoValueLines.
// The last kept line ends in "..." when lines were dropped.
func valueLines(value string) []string {
	parts := strings.Split(value, "\n")
	if len(parts) <= maxInfoValueLines {
		return parts
	}
	kept := append([]string(nil), parts[:maxInfoValueLines]...)
	kept[maxInfoValueLines-1] += "..."
	return kept
}

func columnLines(rows []infoRow) int {
	lines := 0
	for _, row := range rows {
		lines += len(valueLines(row.value))
	}
	return lines
}

// renderInfo draws the dealer and invoice columns side by side and moves
// the cursor below the taller one.
func renderInfo(c Canvas, cur *Cursor, fields ResolvedFields) error {
	left := []infoRow{
		{label: "Dealer Code", value: fields.DealerCode},
		{label: "Dealer Name", value: fields.DealerName},
		{label: "Outlet", value: fields.OutletName},
		{label: "Territory", value: fields.Territory},
		{label: "Address", value: fields.Address},
	}
	right := []infoRow{
		{label: "Invoice No", value: fields.InvoiceNumber},
		{label: "Invoice Date", value: fields.InvoiceDate},
		{label: "Order Date", value: fields.OrderDate},
	}

	height := float64(max(columnLines(left), columnLines(right))+1)*infoLineHeight + infoGap
	if err := cur.Ensure(height); err != nil {
		return err
	}
	geom := cur.Geometry()
	half := geom.ContentWidth() / 2
	y := cur.Y() + infoLineHeight - 3

	leftLines := drawColumn(c, geom.Left(), y, 70, half-10, left)
	rightLines := drawColumn(c, geom.Left()+half+10, y, 75, half-10, right)

	cur.Advance(float64(max(leftLines, rightLines))*infoLineHeight + infoGap)
	return nil
}

// renderSummary draws the totals box aligned to the right margin
func renderSummary(c Canvas, cur *Cursor, f *Formatter, summary invoice.Summary) error {
	if err := cur.Ensure(3*summaryRowHeight + infoGap); err != nil {
		return err
	}
	geom := cur.Geometry()
	width := geom.ContentWidth() * summaryWidthFrac
	x := geom.Right() - width
	y := cur.Y() + 8

	rows := []struct {
		label    string
		value    string
		emphasis bool
	}{
		{label: "Gross Value", value: f.Currency(summary.Gross)},
		{label: fmt.Sprintf("Bill Discount (%s)", f.Percent(summary.DiscountPercent)), value: f.Currency(summary.DiscountValue)},
		{label: "Invoice Value", value: f.Currency(summary.InvoiceValue), emphasis: true},
	}

	c.SetDrawColor(colorBorder)
	c.SetLineWidth(0.5)
	for i, row := range rows {
		rowY := y + float64(i)*summaryRowHeight
		style, size, fontStyle := RectStroke, fontSizeBody, FontRegular
		if row.emphasis {
			c.SetFillColor(colorHeaderFill)
			style, size, fontStyle = RectFillStroke, fontSizeEmphasis, FontBold
		}
		c.Rect(x, rowY, width, summaryRowHeight, style)

		c.SetFont(fontStyle, size)
		c.SetTextColor(colorText)
		c.Text(x+cellPadding+2, rowY+12.5, row.label)
		drawText(c, x, rowY+12.5, width-cellPadding-2, row.value, AlignRight)
	}

	cur.AdvanceTo(y + 3*summaryRowHeight + infoGap)
	return nil
}

// renderAcknowledgement draws the receipt text and the two signature lines
func renderAcknowledgement(c Canvas, cur *Cursor) error {
	if err := cur.Ensure(acknowledgementHeight); err != nil {
		return err
	}
	geom := cur.Geometry()
	y := cur.Y() + 10

	c.SetFont(FontRegular, fontSizeBody)
	c.SetTextColor(colorText)
	c.Text(geom.Left(), y, "Received the above goods in good order and condition.")
	c.Text(geom.Left(), y+12, "Payment to be settled as per the agreed credit terms.")

	lineY := y + 52
	c.SetDrawColor(colorMuted)
	c.SetLineWidth(0.6)
	c.SetDashed(true)
	c.Line(geom.Left(), lineY, geom.Left()+signatureLineWidth, lineY)
	c.Line(geom.Right()-signatureLineWidth, lineY, geom.Right(), lineY)
	c.SetDashed(false)

	c.SetFont(FontRegular, fontSizeSmall)
	c.SetTextColor(colorMuted)
	drawText(c, geom.Left(), lineY+10, signatureLineWidth, "Customer Signature", AlignCenter)
	drawText(c, geom.Right()-signatureLineWidth, lineY+10, signatureLineWidth, "Authorized Signature", AlignCenter)

	cur.AdvanceTo(cur.Y() + acknowledgementHeight)
	return nil
}

// renderFooters revisits the pages first..first+pages-1 once the page count
// is final and leaves the canvas on the last of them, so further pages are
// appended after it.
func renderFooters(c Canvas, geom PageGeometry, company CompanyProfile, first, pages int) {
	ruleY := geom.ContentBottom() + 6
	firstLine := geom.Height - geom.Margin - 12
	second := geom.Height - geom.Margin - 2
	address := company.footerAddress()

	for page := 1; page <= pages; page++ {
		c.SetPage(first + page - 1)

		c.SetDrawColor(colorBorder)
		c.SetLineWidth(0.5)
		c.Line(geom.Left(), ruleY, geom.Right(), ruleY)

		c.SetFont(FontRegular, fontSizeSmall)
		c.SetTextColor(colorMuted)
		if invoice.Present(company.Copyright) {
			drawText(c, geom.Left(), firstLine, geom.ContentWidth(), company.Copyright, AlignCenter)
		}
		if address != "" {
			drawText(c, geom.Left(), second, geom.ContentWidth(), address, AlignCenter)
		}
		drawText(c, geom.Left(), second, geom.ContentWidth(), fmt.Sprintf("Page %d of %d", page, pages), AlignRight)
	}
	c.SetPage(first + pages - 1)
}
