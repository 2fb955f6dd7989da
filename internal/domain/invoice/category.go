package invoice

// Category is a stock movement printed as its own sub-section after the
// booked lines.
type Category string

const (
	CategoryMarketReturn          Category = "MARKET_RETURN"
	CategoryMarketReturnFreeIssue Category = "MARKET_RETURN_FREE_ISSUE"
	CategoryGoodReturn            Category = "GOOD_RETURN"
	CategoryGoodReturnFreeIssue   Category = "GOOD_RETURN_FREE_ISSUE"
	CategoryFreeIssue             Category = "FREE_ISSUE"
)

// ReturnCategories lists the sub-sections in print order
func ReturnCategories() []Category {
	return []Category{
		CategoryMarketReturn,
		CategoryMarketReturnFreeIssue,
		CategoryGoodReturn,
		CategoryGoodReturnFreeIssue,
		CategoryFreeIssue,
	}
}

// Title is the section heading printed above the category rows
func (c Category) Title() string {
	switch c {
	case CategoryMarketReturn:
		return "Market Return"
	case CategoryMarketReturnFreeIssue:
		return "Market Return Free Issues"
	case CategoryGoodReturn:
		return "Good Return"
	case CategoryGoodReturnFreeIssue:
		return "Good Return Free Issues"
	case CategoryFreeIssue:
		return "Free Issues"
	}
	return string(c)
}

// IsFree returns true for quantities given at no charge
func (c Category) IsFree() bool {
	return c == CategoryMarketReturnFreeIssue || c == CategoryGoodReturnFreeIssue || c == CategoryFreeIssue
}

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}
