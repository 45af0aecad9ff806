// Package daterange resolves named range tokens into concrete date windows.
package daterange

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DefaultToken is used when a request names no range.
const DefaultToken = "last_14_days"

// Range is an inclusive calendar-date window.
type Range struct {
	From time.Time
	To   time.Time
}

func (r Range) FromDate() string { return r.From.Format(dateLayout) }
func (r Range) ToDate() string   { return r.To.Format(dateLayout) }

// Label is the human period string shown on an analysis result.
func (r Range) Label() string {
	days := int(r.To.Sub(r.From).Hours()/24) + 1
	if days <= 1 {
		return r.FromDate()
	}
	return fmt.Sprintf("Last %d days", days)
}

var ErrCustomBounds = errors.New("custom range requires start and end dates")

// Resolve turns a named token into a date window relative to now. Unknown
// or empty tokens fall back to last_14_days. The custom token requires both
// explicit bounds in YYYY-MM-DD form.
func Resolve(token, customStart, customEnd string, now time.Time) (Range, error) {
	today := truncate(now)
	switch token {
	case "today":
		return Range{From: today, To: today}, nil
	case "yesterday":
		y := today.AddDate(0, 0, -1)
		return Range{From: y, To: y}, nil
	case "last_7_days":
		return Range{From: today.AddDate(0, 0, -6), To: today}, nil
	case "", DefaultToken:
		return Range{From: today.AddDate(0, 0, -13), To: today}, nil
	case "last_30_days":
		return Range{From: today.AddDate(0, 0, -29), To: today}, nil
	case "this_month":
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return Range{From: first, To: today}, nil
	case "last_month":
		firstOfThis := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		first := firstOfThis.AddDate(0, -1, 0)
		return Range{From: first, To: firstOfThis.AddDate(0, 0, -1)}, nil
	case "custom":
		if customStart == "" || customEnd == "" {
			return Range{}, ErrCustomBounds
		}
		from, err := time.Parse(dateLayout, customStart)
		if err != nil {
			return Range{}, fmt.Errorf("bad custom start: %w", err)
		}
		to, err := time.Parse(dateLayout, customEnd)
		if err != nil {
			return Range{}, fmt.Errorf("bad custom end: %w", err)
		}
		if to.Before(from) {
			from, to = to, from
		}
		return Range{From: from, To: to}, nil
	default:
		return Range{From: today.AddDate(0, 0, -13), To: today}, nil
	}
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
