package printing

import (
	"strings"

	"github.com/dms/backend/internal/domain/invoice"
)

// resolver yields one candidate value for a display field
type resolver func(inv *invoice.Invoice, extra *invoice.ExtraDetails) string

func fromExtra(get func(*invoice.ExtraDetails) string) resolver {
	return func(_ *invoice.Invoice, extra *invoice.ExtraDetails) string {
		if extra == nil {
			return ""
		}
		return get(extra)
	}
}

func fromInvoice(get func(*invoice.Invoice) string) resolver {
	return func(inv *invoice.Invoice, _ *invoice.ExtraDetails) string {
		return get(inv)
	}
}

// Resolution order per field. The first present value wins.
var (
	agentNameChain = []resolver{
		fromExtra(func(e *invoice.ExtraDetails) string { return e.AgentName }),
		fromInvoice(func(i *invoice.Invoice) string { return i.AgentName }),
		fromInvoice(func(i *invoice.Invoice) string { return i.DealerName }),
	}

	outletNameChain = []resolver{
		fromExtra(func(e *invoice.ExtraDetails) string { return e.OutletName }),
		fromInvoice(func(i *invoice.Invoice) string { return i.OutletName }),
		fromInvoice(func(i *invoice.Invoice) string { return i.DealerName }),
	}

	dealerCodeChain = []resolver{
		fromExtra(func(e *invoice.ExtraDetails) string { return e.DealerCode }),
		fromInvoice(func(i *invoice.Invoice) string { return i.OutletID }),
	}

	territoryChain = []resolver{
		fromExtra(func(e *invoice.ExtraDetails) string { return e.TerritoryName }),
		fromInvoice(func(i *invoice.Invoice) string { return i.TerritoryName }),
		fromInvoice(func(i *invoice.Invoice) string { return i.TerritoryID }),
	}

	invoiceNumberChain = []resolver{
		fromInvoice(func(i *invoice.Invoice) string { return i.InvoiceNumber }),
		fromInvoice(func(i *invoice.Invoice) string { return i.ID.String() }),
	}

	addressChain = []func(inv *invoice.Invoice, extra *invoice.ExtraDetails) []string{
		func(_ *invoice.Invoice, extra *invoice.ExtraDetails) []string { return extra.ShopAddress() },
		func(_ *invoice.Invoice, extra *invoice.ExtraDetails) []string { return extra.AgentAddress() },
		func(inv *invoice.Invoice, _ *invoice.ExtraDetails) []string { return strings.Split(inv.Address, ",") },
	}
)

func resolve(inv *invoice.Invoice, extra *invoice.ExtraDetails, chain []resolver) string {
	for _, r := range chain {
		if v := strings.TrimSpace(r(inv, extra)); invoice.Present(v) {
			return v
		}
	}
	return missingValue
}

// ResolveAgentName returns the dealer name shown on the invoice
func ResolveAgentName(inv *invoice.Invoice, extra *invoice.ExtraDetails) string {
	return resolve(inv, extra, agentNameChain)
}

// ResolveOutletName returns the outlet name shown on the invoice
func ResolveOutletName(inv *invoice.Invoice, extra *invoice.ExtraDetails) string {
	return resolve(inv, extra, outletNameChain)
}

// ResolveTerritory returns the territory shown on the invoice
func ResolveTerritory(inv *invoice.Invoice, extra *invoice.ExtraDetails) string {
	return resolve(inv, extra, territoryChain)
}

// ResolveDealerCode returns "territory/route/shop" when any of those codes
// is known, otherwise the dealer code or the outlet id.
func ResolveDealerCode(inv *invoice.Invoice, extra *invoice.ExtraDetails) string {
	if extra != nil {
		codes := []string{extra.TerritoryCode, extra.RouteCode, extra.ShopCode}
		known := false
		for i, code := range codes {
			codes[i] = strings.TrimSpace(code)
			if invoice.Present(codes[i]) {
				known = true
			} else {
				codes[i] = missingValue
			}
		}
		if known {
			return strings.Join(codes, "/")
		}
	}
	return resolve(inv, extra, dealerCodeChain)
}

// ResolveAddress returns the address as at most two lines separated by "\n"
func ResolveAddress(inv *invoice.Invoice, extra *invoice.ExtraDetails) string {
	for _, source := range addressChain {
		if parts := presentParts(source(inv, extra)); len(parts) > 0 {
			return formatAddress(parts)
		}
	}
	return missingValue
}

func presentParts(values []string) []string {
	var parts []string
	for _, v := range values {
		if v = strings.TrimSpace(v); invoice.Present(v) {
			parts = append(parts, v)
		}
	}
	return parts
}

func formatAddress(parts []string) string {
	head := parts[:min(2, len(parts))]
	tail := parts[len(head):]

	lines := make([]string, 0, 2)
	for _, group := range [][]string{head, tail} {
		if line := strings.Join(group, ", "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// ResolvedFields are the display strings of the info block
type ResolvedFields struct {
	DealerCode    string
	DealerName    string
	OutletName    string
	Territory     string
	Address       string
	InvoiceNumber string
	InvoiceDate   string
	OrderDate     string
}

// ResolveFields computes every info block value for an invoice
func ResolveFields(inv *invoice.Invoice, extra *invoice.ExtraDetails, f *Formatter) ResolvedFields {
	orderTime := ""
	if extra != nil {
		orderTime = extra.OrderTime
	}
	return ResolvedFields{
		DealerCode:    ResolveDealerCode(inv, extra),
		DealerName:    ResolveAgentName(inv, extra),
		OutletName:    ResolveOutletName(inv, extra),
		Territory:     ResolveTerritory(inv, extra),
		Address:       ResolveAddress(inv, extra),
		InvoiceNumber: resolve(inv, extra, invoiceNumberChain),
		InvoiceDate:   f.DateTime(inv.DateActual, inv.InvoiceTime),
		OrderDate:     f.DateTime(inv.DateBook, orderTime),
	}
}
