package history

import "github.com/shopspring/decimal"

// FilterByAmount keeps the orders whose total lies within
// [minTotal, maxTotal].  A nil bound is open.  It runs on an already
// paginated page, so the result may be shorter than the page size while
// the reported total stays the count of the store query.
func FilterByAmount(items []OrderView, minTotal, maxTotal *decimal.Decimal) []OrderView {
	if minTotal == nil && maxTotal == nil {
		return items
	}
	out := make([]OrderView, 0, len(items))
	for _, it := range items {
		if minTotal != nil && it.Total.LessThan(*minTotal) {
			continue
		}
		if maxTotal != nil && it.Total.GreaterThan(*maxTotal) {
			continue
		}
		out = append(out, it)
	}
	return out
}
