package printing

import (
	"strings"
	"time"

	"github.com/dms/backend/internal/domain/invoice"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	missingValue = "-"
	zeroDate     = "0001-01-01"
)

// FormatConfig controls how numbers and dates appear on the document
type FormatConfig struct {
	CurrencySymbol string
	Locale         string
	DateLayout     string
	DateTimeLayout string
}

// DefaultFormatConfig returns the formatting used when nothing is configured
func DefaultFormatConfig() FormatConfig {
	return FormatConfig{
		CurrencySymbol: "Rs.",
		Locale:         "en-US",
		DateLayout:     "02/01/2006",
		DateTimeLayout: "02/01/2006 03:04 PM",
	}
}

// Formatter renders amounts, quantities and dates for display
type Formatter struct {
	printer *message.Printer
	cfg     FormatConfig
}

// NewFormatter builds a formatter, filling unset fields from DefaultFormatConfig
func NewFormatter(cfg FormatConfig) *Formatter {
	def := DefaultFormatConfig()
	if cfg.Locale == "" {
		cfg.Locale = def.Locale
	}
	if cfg.DateLayout == "" {
		cfg.DateLayout = def.DateLayout
	}
	if cfg.DateTimeLayout == "" {
		cfg.DateTimeLayout = def.DateTimeLayout
	}

	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		tag = language.English
	}

	return &Formatter{
		printer: message.NewPrinter(tag),
		cfg:     cfg,
	}
}

// Amount formats a monetary value with two decimals and digit grouping
func (f *Formatter) Amount(d decimal.Decimal) string {
	rounded := d.Round(2)
	if rounded.IsZero() {
		rounded = decimal.Zero
	}
	return f.printer.Sprintf("%.2f", rounded.InexactFloat64())
}

// Currency formats an amount prefixed with the currency symbol
func (f *Formatter) Currency(d decimal.Decimal) string {
	if f.cfg.CurrencySymbol == "" {
		return f.Amount(d)
	}
	return f.cfg.CurrencySymbol + " " + f.Amount(d)
}

// Quantity formats a quantity as a whole number
func (f *Formatter) Quantity(d decimal.Decimal) string {
	return f.printer.Sprintf("%d", d.Truncate(0).IntPart())
}

// Percent formats a percentage such as "10%" or "12.5%"
func (f *Formatter) Percent(d decimal.Decimal) string {
	return d.Round(2).String() + "%"
}

type dateLayout struct {
	layout   string
	hasClock bool
}

var inputDateLayouts = []dateLayout{
	{time.RFC3339Nano, true},
	{"2006-01-02T15:04:05.999999999", true},
	{"2006-01-02 15:04:05", true},
	{"2006-01-02T15:04", true},
	{"2006-01-02", false},
}

// Date formats an API date. Empty values and the zero date render as "-",
// anything unparsable is returned unchanged.
func (f *Formatter) Date(raw string) string {
	raw = strings.TrimSpace(raw)
	if !invoice.Present(raw) || strings.HasPrefix(raw, zeroDate) {
		return missingValue
	}

	for _, l := range inputDateLayouts {
		t, err := time.Parse(l.layout, raw)
		if err != nil {
			continue
		}
		if l.hasClock && (t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0) {
			return t.Format(f.cfg.DateTimeLayout)
		}
		return t.Format(f.cfg.DateLayout)
	}
	return raw
}

// DateTime formats a date and appends a separately supplied clock time
func (f *Formatter) DateTime(raw, clock string) string {
	date := f.Date(raw)
	if date == missingValue || !invoice.Present(clock) {
		return date
	}
	return date + " " + strings.TrimSpace(clock)
}
