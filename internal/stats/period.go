package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DayLayout is the wire format of a calendar day.
const DayLayout = "2006-01-02"

// MonthKeyLayout identifies a calendar month, e.g. 2024-03.
const MonthKeyLayout = "2006-01"

// Period is a reporting period preset, ending today.
type Period string

const (
	PeriodMonth    Period = "month"
	PeriodQuarter  Period = "3months"
	PeriodHalfYear Period = "6months"
	PeriodYear     Period = "year"
	DefaultPeriod         = PeriodMonth
)

// ParsePeriod validates a period name. An empty name selects DefaultPeriod.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return DefaultPeriod, nil
	case PeriodMonth, PeriodQuarter, PeriodHalfYear, PeriodYear:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// DateRange is a closed interval of calendar days.
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange normalizes both bounds to calendar days.
func NewDateRange(from, to time.Time) DateRange {
	return DateRange{From: Day(from), To: Day(to)}
}

// Valid reports whether From is not after To.
func (r DateRange) Valid() bool {
	return !r.From.After(r.To)
}

func (r DateRange) String() string {
	return r.From.Format(DayLayout) + ".." + r.To.Format(DayLayout)
}

// MarshalJSON renders the bounds as YYYY-MM-DD.
func (r DateRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		From string `json:"from"`
		To   string `json:"to"`
	}{r.From.Format(DayLayout), r.To.Format(DayLayout)})
}

// Day truncates t to its calendar day, expressed as midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD calendar day.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DayLayout, s)
}

// MonthRange returns the calendar month containing t.
func MonthRange(t time.Time) DateRange {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return DateRange{From: first, To: first.AddDate(0, 1, -1)}
}

// MonthKey returns the YYYY-MM key of t's month.
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// RangeFor returns the range of a period ending on now's day. Multi-month
// presets start on the first day of the earliest month they cover, so
// 3months in March starts on January 1.
func RangeFor(p Period, now time.Time) DateRange {
	today := Day(now)
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	switch p {
	case PeriodQuarter:
		first = first.AddDate(0, -2, 0)
	case PeriodHalfYear:
		first = first.AddDate(0, -5, 0)
	case PeriodYear:
		first = time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return DateRange{From: first, To: today}
}

var (
	// ErrIncompleteRange is returned when only one of from and to is given.
	ErrIncompleteRange = errors.New("from and to must be given together")
	// ErrInvertedRange is returned when from is after to.
	ErrInvertedRange = errors.New("from must not be after to")
)

// ResolveRange picks the reporting range from either a period preset or an
// explicit from/to pair of YYYY-MM-DD days. The pair takes precedence and
// must be complete.
func ResolveRange(period, from, to string, now time.Time) (DateRange, error) {
	if from == "" && to == "" {
		p, err := ParsePeriod(period)
		if err != nil {
			return DateRange{}, err
		}
		return RangeFor(p, now), nil
	}
	if from == "" || to == "" {
		return DateRange{}, ErrIncompleteRange
	}

	start, err := ParseDay(from)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid from %q: %w", from, err)
	}
	end, err := ParseDay(to)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid to %q: %w", to, err)
	}
	rng := NewDateRange(start, end)
	if !rng.Valid() {
		return DateRange{}, ErrInvertedRange
	}
	return rng, nil
}
