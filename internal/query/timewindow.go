// Package query filters, sorts, totals and groups transactions.
//
// Everything in this package is a pure function of its inputs. The reference
// instant is always passed in by the caller.
package query

import (
	"strings"
	"time"

	"spendlens/internal/core"
)

// TimeRange is a symbolic time-range selector.
type TimeRange string

const (
	RangeAll     TimeRange = "all"
	RangeToday   TimeRange = "today"
	RangeWeek    TimeRange = "week"
	RangeMonth   TimeRange = "month"
	RangeQuarter TimeRange = "quarter"
	RangeYear    TimeRange = "year"
	RangeCustom  TimeRange = "custom"
)

// Window is a half-open interval [Start, End) of calendar dates. A zero
// Start or End leaves that side open.
type Window struct {
	Start core.Date `json:"start"`
	End   core.Date `json:"end"`
}

// Unbounded reports whether the window places no constraint at all.
func (w Window) Unbounded() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Empty reports whether no date can fall inside the window.
func (w Window) Empty() bool {
	return !w.Start.IsZero() && !w.End.IsZero() && w.End.Compare(w.Start) <= 0
}

// Contains reports whether d falls in [Start, End).
func (w Window) Contains(d core.Date) bool {
	if !w.Start.IsZero() && d.Compare(w.Start) < 0 {
		return false
	}
	if !w.End.IsZero() && d.Compare(w.End) >= 0 {
		return false
	}
	return true
}

// ResolveTimeWindow converts a selector into a concrete window anchored at the
// start of today in now's location.
//
// week, month, quarter and year are rolling windows reaching back from today
// with no upper bound. Month arithmetic is calendar based and clamps the day
// of month. A custom range with either bound missing is unbounded, and an
// unparsable bound leaves that side open. The custom end date is inclusive.
func ResolveTimeWindow(sel TimeRange, customStart, customEnd string, now time.Time) (Window, error) {
	today := core.DateOf(now)

	switch TimeRange(strings.ToLower(strings.TrimSpace(string(sel)))) {
	case "", RangeAll:
		return Window{}, nil
	case RangeToday:
		return Window{Start: today, End: today.AddDays(1)}, nil
	case RangeWeek:
		return Window{Start: today.AddDays(-7)}, nil
	case RangeMonth:
		return Window{Start: today.AddMonths(-1)}, nil
	case RangeQuarter:
		return Window{Start: today.AddMonths(-3)}, nil
	case RangeYear:
		return Window{Start: today.AddMonths(-12)}, nil
	case RangeCustom:
		return customWindow(customStart, customEnd), nil
	default:
		return Window{}, core.NewConfigurationError("time range", string(sel))
	}
}

func customWindow(start, end string) Window {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return Window{}
	}
	var w Window
	if d, err := core.ParseDate(start); err == nil {
		w.Start = d
	}
	if d, err := core.ParseDate(end); err == nil {
		w.End = d.AddDays(1)
	}
	return w
}
