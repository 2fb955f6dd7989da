package invoice

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Summary holds the totals printed below the line items
type Summary struct {
	Gross           decimal.Decimal
	DiscountValue   decimal.Decimal
	DiscountPercent decimal.Decimal
	InvoiceValue    decimal.Decimal
}

// Summarize computes the invoice totals.
//
// Gross prefers the provided final value, then the booked value, and only
// then the sum of booked line values. The invoice value never goes negative.
func (inv *Invoice) Summarize() Summary {
	var gross decimal.Decimal
	switch {
	case inv.TotalBookFinalValue.Valid:
		gross = inv.TotalBookFinalValue.Decimal
	case inv.TotalBookValue.Valid:
		gross = inv.TotalBookValue.Decimal
	default:
		gross = inv.LineTotal()
	}

	discount := decimal.Zero
	if inv.TotalDiscountValue.Valid {
		discount = inv.TotalDiscountValue.Decimal
	}

	percent := decimal.Zero
	switch {
	case inv.DiscountPercentage.Valid:
		percent = inv.DiscountPercentage.Decimal
	case gross.IsPositive():
		percent = discount.Div(gross).Mul(hundred).Round(2)
	}

	return Summary{
		Gross:           gross,
		DiscountValue:   discount,
		DiscountPercent: percent,
		InvoiceValue:    decimal.Max(gross.Sub(discount), decimal.Zero),
	}
}

// LineTotal sums the values of the booked lines
func (inv *Invoice) LineTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range inv.BookedItems() {
		total = total.Add(line.Value())
	}
	return total
}
