package invoice

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInvoice_Summarize(t *testing.T) {
	lines := []LineItem{
		{TotalBookQty: dec("10"), TotalBookSellValue: dec("900")},
		{TotalBookQty: dec("1"), TotalBookSellValue: dec("100")},
		{TotalFreeQty: dec("4"), TotalBookSellValue: dec("999")},
	}

	t.Run("final value wins", func(t *testing.T) {
		inv := &Invoice{
			Lines:               lines,
			TotalBookFinalValue: decimal.NewNullDecimal(dec("950")),
			TotalBookValue:      decimal.NewNullDecimal(dec("1000")),
			TotalDiscountValue:  decimal.NewNullDecimal(dec("95")),
			DiscountPercentage:  decimal.NewNullDecimal(dec("10")),
		}
		s := inv.Summarize()
		assert.True(t, s.Gross.Equal(dec("950")))
		assert.True(t, s.DiscountPercent.Equal(dec("10")))
		assert.True(t, s.InvoiceValue.Equal(dec("855")))
	})

	t.Run("booked value when final absent", func(t *testing.T) {
		inv := &Invoice{Lines: lines, TotalBookValue: decimal.NewNullDecimal(dec("1000"))}
		s := inv.Summarize()
		assert.True(t, s.Gross.Equal(dec("1000")))
		assert.True(t, s.DiscountValue.IsZero())
		assert.True(t, s.InvoiceValue.Equal(dec("1000")))
	})

	t.Run("line total as last resort", func(t *testing.T) {
		inv := &Invoice{Lines: lines, TotalDiscountValue: decimal.NewNullDecimal(dec("100"))}
		s := inv.Summarize()
		assert.True(t, s.Gross.Equal(dec("1000")))
		assert.True(t, s.DiscountPercent.Equal(dec("10")))
		assert.True(t, s.InvoiceValue.Equal(dec("900")))
	})

	t.Run("discount above gross clamps to zero", func(t *testing.T) {
		inv := &Invoice{
			TotalBookValue:     decimal.NewNullDecimal(dec("50")),
			TotalDiscountValue: decimal.NewNullDecimal(dec("80")),
		}
		s := inv.Summarize()
		assert.True(t, s.InvoiceValue.IsZero())
	})

	t.Run("explicit zero final value is still preferred", func(t *testing.T) {
		inv := &Invoice{Lines: lines, TotalBookFinalValue: decimal.NewNullDecimal(decimal.Zero)}
		s := inv.Summarize()
		assert.True(t, s.Gross.IsZero())
		assert.True(t, s.DiscountPercent.IsZero())
	})
}

func TestInvoice_SummarizeNeverNegative(t *testing.T) {
	grosses := []string{"0", "10", "99.99", "1000"}
	discounts := []string{"0", "5", "99.99", "100", "5000"}
	for _, g := range grosses {
		for _, d := range discounts {
			inv := &Invoice{
				TotalBookValue:     decimal.NewNullDecimal(dec(g)),
				TotalDiscountValue: decimal.NewNullDecimal(dec(d)),
			}
			s := inv.Summarize()
			want := decimal.Max(dec(g).Sub(dec(d)), decimal.Zero)
			assert.True(t, s.InvoiceValue.Equal(want), "gross %s discount %s", g, d)
			assert.True(t, s.InvoiceValue.LessThanOrEqual(s.Gross))
		}
	}
}
