// Package period provides calendar-period value types and arithmetic used by
// the aggregate rollups, budget planning, and reporting services. All bucket
// boundaries are first-of-calendar-day dates in UTC; callers are expected to
// normalize incoming dates once at the boundary.
package period

import (
	"fmt"
	"time"
)

// Granularity is the bucket width of a rollup period.
type Granularity string

const (
	GranularityMonth    Granularity = "month"
	GranularityQuarter  Granularity = "quarter"
	GranularityHalfYear Granularity = "half_year"
	GranularityYear     Granularity = "year"
)

// Months returns the number of calendar months a bucket of this
// granularity spans.
func (g Granularity) Months() int {
	switch g {
	case GranularityMonth:
		return 1
	case GranularityQuarter:
		return 3
	case GranularityHalfYear:
		return 6
	case GranularityYear:
		return 12
	}
	return 0
}

// Valid reports whether g is one of the known granularities.
func (g Granularity) Valid() bool {
	return g.Months() != 0
}

// DateKind selects which of a posting's two dates places it into a period.
type DateKind string

const (
	DateKindBooking DateKind = "booking"
	DateKindValuta  DateKind = "valuta"
)

// Valid reports whether d is a known date kind.
func (d DateKind) Valid() bool {
	return d == DateKindBooking || d == DateKindValuta
}

// BucketStart returns the first calendar day of the bucket containing date
// at the given granularity, as a midnight UTC time.
func BucketStart(date time.Time, g Granularity) time.Time {
	y, m, _ := date.Date()
	switch g {
	case GranularityMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	case GranularityQuarter:
		first := time.Month((int(m)-1)/3*3 + 1)
		return time.Date(y, first, 1, 0, 0, 0, 0, time.UTC)
	case GranularityHalfYear:
		first := time.January
		if m >= time.July {
			first = time.July
		}
		return time.Date(y, first, 1, 0, 0, 0, 0, time.UTC)
	case GranularityYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Time{}
}

// Prev returns the start of the bucket immediately preceding start at the
// given granularity.
func Prev(start time.Time, g Granularity) time.Time {
	return start.AddDate(0, -g.Months(), 0)
}

// Next returns the start of the bucket immediately following start at the
// given granularity.
func Next(start time.Time, g Granularity) time.Time {
	return start.AddDate(0, g.Months(), 0)
}

// YearAgo returns the bucket start exactly one year before start.
func YearAgo(start time.Time) time.Time {
	return start.AddDate(-1, 0, 0)
}

// Key identifies one budget-planning period: a calendar (year, month) pair.
// Keys are totally ordered by (year, month).
type Key struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// KeyOf returns the Key of the month containing date.
func KeyOf(date time.Time) Key {
	return Key{Year: date.Year(), Month: int(date.Month())}
}

// Valid reports whether the key's month is in [1,12].
func (k Key) Valid() bool {
	return k.Month >= 1 && k.Month <= 12
}

// FirstDay returns the first calendar day of the period as midnight UTC.
func (k Key) FirstDay() time.Time {
	return time.Date(k.Year, time.Month(k.Month), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the key n months after k. Negative n moves backwards.
func (k Key) AddMonths(n int) Key {
	months := k.Year*12 + (k.Month - 1) + n
	y, m := months/12, months%12
	if m < 0 {
		y--
		m += 12
	}
	return Key{Year: y, Month: m + 1}
}

// Before reports whether k precedes other in calendar order.
func (k Key) Before(other Key) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// After reports whether k follows other in calendar order.
func (k Key) After(other Key) bool {
	return other.Before(k)
}

func (k Key) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, k.Month)
}

// MonthsBetween returns the number of whole calendar months from a to b,
// counting by (year, month) only. The result is negative when b precedes a.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
