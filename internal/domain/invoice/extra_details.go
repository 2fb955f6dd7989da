package invoice

import "strings"

// ExtraDetails carries supplementary per-invoice fields that the invoice
// record itself lacks. Every member is optional; see Present.
type ExtraDetails struct {
	AgentName  string `json:"agentName"`
	OutletName string `json:"outletName"`

	ShopAddress1 string `json:"shopAddress1"`
	ShopAddress2 string `json:"shopAddress2"`
	ShopAddress3 string `json:"shopAddress3"`

	AgentAddress1 string `json:"agentAddress1"`
	AgentAddress2 string `json:"agentAddress2"`
	AgentAddress3 string `json:"agentAddress3"`

	TerritoryCode string `json:"territoryCode"`
	RouteCode     string `json:"routeCode"`
	ShopCode      string `json:"shopCode"`
	DealerCode    string `json:"dealerCode"`
	TerritoryName string `json:"territoryName"`

	OrderTime string `json:"orderTime"`
}

// ShopAddress returns the shop address lines in order
func (e *ExtraDetails) ShopAddress() []string {
	if e == nil {
		return nil
	}
	return []string{e.ShopAddress1, e.ShopAddress2, e.ShopAddress3}
}

// AgentAddress returns the agent address lines in order
func (e *ExtraDetails) AgentAddress() []string {
	if e == nil {
		return nil
	}
	return []string{e.AgentAddress1, e.AgentAddress2, e.AgentAddress3}
}

// Present reports whether a string field carries a value. Blank strings and
// the placeholder "-" count as absent.
func Present(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && s != "-"
}

// ExtraDetailsIndex looks up extra details by invoice key
type ExtraDetailsIndex map[string]ExtraDetails

// For returns the extra details recorded for the invoice, or nil
func (idx ExtraDetailsIndex) For(inv *Invoice) *ExtraDetails {
	if idx == nil {
		return nil
	}
	if extra, ok := idx[inv.Key()]; ok {
		return &extra
	}
	if number := strings.TrimSpace(inv.InvoiceNumber); number != "" {
		if extra, ok := idx[number]; ok {
			return &extra
		}
	}
	return nil
}
