package search

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// SalaryRange renders monthly salary bounds for display, e.g.
// "₹55,000 - ₹120,000/month". It returns "" when both bounds are absent.
func SalaryRange(currency string, min, max *int) string {
	switch {
	case min != nil && max != nil:
		return fmt.Sprintf("%s%s - %s%s/month", currency, humanize.Comma(int64(*min)), currency, humanize.Comma(int64(*max)))
	case min != nil:
		return fmt.Sprintf("%s%s+/month", currency, humanize.Comma(int64(*min)))
	case max != nil:
		return fmt.Sprintf("Up to %s%s/month", currency, humanize.Comma(int64(*max)))
	}
	return ""
}

// ExperienceRange renders experience bounds in years, e.g. "2-5 years".
func ExperienceRange(min, max *int) string {
	switch {
	case min != nil && max != nil:
		return fmt.Sprintf("%d-%d years", *min, *max)
	case min != nil:
		return fmt.Sprintf("%d+ years", *min)
	case max != nil:
		return fmt.Sprintf("0-%d years", *max)
	}
	return ""
}
