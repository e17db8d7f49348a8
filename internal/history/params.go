package history

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Paging limits for history listings.
const (
	DefaultPageSize = 10
	MaxPageSize     = 50
	MaxPage         = 1_000_000
)

// ValidationError reports the first invalid parameter.
type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// Params are the filters of a history listing.  EndDate is inclusive.
type Params struct {
	Page      int
	PageSize  int
	Status    string
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// ParseParams reads page, pageSize, status, search, startDate, endDate,
// minAmount and maxAmount from a query string.  Dates are YYYY-MM-DD (UTC)
// or RFC 3339; a date-only endDate covers the whole day.
func ParseParams(q url.Values) (Params, error) {
	p := Params{
		Page:     1,
		PageSize: DefaultPageSize,
		Status:   strings.TrimSpace(q.Get("status")),
		Search:   strings.TrimSpace(q.Get("search")),
	}
	if s := q.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > MaxPage {
			return Params{}, invalid("page must be between 1 and 1000000")
		}
		p.Page = n
	}
	if s := q.Get("pageSize"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > MaxPageSize {
			return Params{}, invalid("pageSize must be between 1 and 50")
		}
		p.PageSize = n
	}
	var err error
	if p.StartDate, err = parseDate(q.Get("startDate"), false); err != nil {
		return Params{}, invalid("startDate must be YYYY-MM-DD or RFC 3339")
	}
	if p.EndDate, err = parseDate(q.Get("endDate"), true); err != nil {
		return Params{}, invalid("endDate must be YYYY-MM-DD or RFC 3339")
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return Params{}, invalid("endDate must not be before startDate")
	}
	if p.MinAmount, err = parseAmount(q.Get("minAmount")); err != nil {
		return Params{}, invalid("minAmount must be a non-negative number")
	}
	if p.MaxAmount, err = parseAmount(q.Get("maxAmount")); err != nil {
		return Params{}, invalid("maxAmount must be a non-negative number")
	}
	if p.MinAmount != nil && p.MaxAmount != nil && p.MinAmount.GreaterThan(*p.MaxAmount) {
		return Params{}, invalid("minAmount must not exceed maxAmount")
	}
	return p, nil
}

func parseDate(s string, endOfDay bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Microsecond)
		}
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

func parseAmount(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	if d.IsNegative() {
		return nil, invalid("negative amount")
	}
	return &d, nil
}
