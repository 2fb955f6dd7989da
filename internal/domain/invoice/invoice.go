package invoice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ID is an invoice identifier. The upstream API emits it either as a JSON
// number or as a string; both decode to the same textual form.
type ID string

// UnmarshalJSON accepts a string, a number or null
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// String returns the identifier text
func (id ID) String() string {
	return string(id)
}

// Invoice is a booked sales invoice as returned by the distribution API.
// It is never mutated while rendering.
type Invoice struct {
	ID            ID     `json:"id"`
	InvoiceNumber string `json:"invoiceNumber"`
	DateBook      string `json:"dateBook"`
	DateActual    string `json:"dateActual"`
	InvoiceTime   string `json:"invoiceTime"`

	TerritoryID   string `json:"territoryId"`
	TerritoryName string `json:"territoryName"`
	OutletID      string `json:"outletId"`
	OutletName    string `json:"outletName"`
	AgentName     string `json:"agentName"`
	DealerName    string `json:"dealerName"`
	Address       string `json:"address"`

	Lines []LineItem `json:"invoiceDetails" binding:"dive"`

	TotalBookValue      decimal.NullDecimal `json:"totalBookValue"`
	TotalBookFinalValue decimal.NullDecimal `json:"totalBookFinalValue"`
	TotalDiscountValue  decimal.NullDecimal `json:"totalDiscountValue"`
	DiscountPercentage  decimal.NullDecimal `json:"discountPercentage"`
}

// Key identifies the invoice when matching extra details in a batch:
// the id when present, otherwise the invoice number.
func (inv *Invoice) Key() string {
	if id := strings.TrimSpace(inv.ID.String()); id != "" {
		return id
	}
	return strings.TrimSpace(inv.InvoiceNumber)
}

// Validate checks the few fields without which no document can be produced.
// Everything else is optional and resolved through display fallbacks.
func (inv *Invoice) Validate() error {
	if strings.TrimSpace(inv.InvoiceNumber) == "" && strings.TrimSpace(inv.ID.String()) == "" {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice must have an id or an invoice number")
	}
	for i, line := range inv.Lines {
		if line.TotalBookQty.IsNegative() || line.TotalCancelQty.IsNegative() {
			return shared.NewDomainError("INVALID_LINE_ITEM",
				fmt.Sprintf("Line %d has a negative booked or cancelled quantity", i+1))
		}
	}
	return nil
}

// BookedItems returns the lines that were booked, in input order
func (inv *Invoice) BookedItems() []LineItem {
	items := make([]LineItem, 0, len(inv.Lines))
	for _, line := range inv.Lines {
		if line.TotalBookQty.IsPositive() {
			items = append(items, line)
		}
	}
	return items
}

// ItemsIn returns the lines with a positive quantity in the category, in input order
func (inv *Invoice) ItemsIn(c Category) []LineItem {
	var items []LineItem
	for _, line := range inv.Lines {
		if line.CategoryQty(c).IsPositive() {
			items = append(items, line)
		}
	}
	return items
}

// HasCategory reports whether at least one line has a positive quantity in c
func (inv *Invoice) HasCategory(c Category) bool {
	for _, line := range inv.Lines {
		if line.CategoryQty(c).IsPositive() {
			return true
		}
	}
	return false
}

// LineItem is one product row of an invoice. Every numeric field is
// optional in the API payload and decodes to zero when absent or null.
type LineItem struct {
	ItemCode string `json:"itemCode"`
	ItemName string `json:"itemName"`

	TotalBookQty       decimal.Decimal `json:"totalBookQty" binding:"gte=0"`
	TotalCancelQty     decimal.Decimal `json:"totalCancelQty" binding:"gte=0"`
	SellUnitPrice      decimal.Decimal `json:"sellUnitPrice"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	TotalBookValue     decimal.Decimal `json:"totalBookValue"`
	TotalBookSellValue decimal.Decimal `json:"totalBookSellValue"`
	TotalFreeQty       decimal.Decimal `json:"totalFreeQty"`

	MarketReturnTotalQty     decimal.Decimal `json:"marketReturnTotalQty"`
	MarketReturnTotalVal     decimal.Decimal `json:"marketReturnTotalVal"`
	MarketReturnFreeIssueQty decimal.Decimal `json:"marketReturnFreeIssueQty"`

	GoodReturnTotalQty     decimal.Decimal `json:"goodReturnTotalQty"`
	GoodReturnTotalVal     decimal.Decimal `json:"goodReturnTotalVal"`
	GoodReturnFreeIssueQty decimal.Decimal `json:"goodReturnFreeIssueQty"`
}

// DisplayQty is the booked quantity net of cancellations, floored at zero
// and cut to a whole number.
func (l LineItem) DisplayQty() decimal.Decimal {
	return decimal.Max(l.TotalBookQty.Sub(l.TotalCancelQty), decimal.Zero).Truncate(0)
}

// Value is the line's sell value as booked
func (l LineItem) Value() decimal.Decimal {
	return l.TotalBookSellValue
}

// Description is the text shown in the description column
func (l LineItem) Description() string {
	name := strings.TrimSpace(l.ItemName)
	code := strings.TrimSpace(l.ItemCode)
	switch {
	case name != "" && code != "":
		return code + " - " + name
	case name != "":
		return name
	case code != "":
		return code
	default:
		return "-"
	}
}

// CategoryQty returns the quantity tracked for the category
func (l LineItem) CategoryQty(c Category) decimal.Decimal {
	switch c {
	case CategoryMarketReturn:
		return l.MarketReturnTotalQty
	case CategoryMarketReturnFreeIssue:
		return l.MarketReturnFreeIssueQty
	case CategoryGoodReturn:
		return l.GoodReturnTotalQty
	case CategoryGoodReturnFreeIssue:
		return l.GoodReturnFreeIssueQty
	case CategoryFreeIssue:
		return l.TotalFreeQty
	}
	return decimal.Zero
}

// CategoryValue returns the value tracked for the category. Free issue
// categories carry no value and report false.
func (l LineItem) CategoryValue(c Category) (decimal.Decimal, bool) {
	switch c {
	case CategoryMarketReturn:
		return l.MarketReturnTotalVal, true
	case CategoryGoodReturn:
		return l.GoodReturnTotalVal, true
	}
	return decimal.Zero, false
}
