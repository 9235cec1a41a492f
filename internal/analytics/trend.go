package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/JustJay7/barangay-case-dashboard/internal/cases"
)

// Trend ranges accepted by StatusTrend.
const (
	Range7Days   = "7days"
	Range30Days  = "30days"
	RangeMonthly = "monthly"
	Range6Months = "6months"
	RangeYearly  = "yearly"

	DefaultRange = Range30Days
)

// Ranges lists every accepted range in display order.
var Ranges = []string{Range7Days, Range30Days, RangeMonthly, Range6Months, RangeYearly}

var ErrUnknownRange = errors.New("unknown trend range")

// TrendPoint is one bar of the status chart: cases filed in one day or
// month, split by their current status.
type TrendPoint struct {
	Date      string `json:"date"`
	Label     string `json:"label"`
	Pending   int    `json:"pending"`
	Ongoing   int    `json:"ongoing"`
	Resolved  int    `json:"resolved"`
	Dismissed int    `json:"dismissed"`
	Total     int    `json:"total"`
}

// StatusTrend buckets the cases filed between the start of rangeName and now.
// 7days, 30days and monthly use one point per day; 6months and yearly one
// point per month. Every bucket in the range is present, empty or not, in
// chronological order. An empty rangeName means DefaultRange.
func StatusTrend(all []cases.Case, rangeName string, now time.Time) ([]TrendPoint, error) {
	if rangeName == "" {
		rangeName = DefaultRange
	}

	today := calendarDay(now)
	var (
		start  time.Time
		daily  bool
		layout string
	)
	switch rangeName {
	case Range7Days:
		start, daily, layout = today.AddDate(0, 0, -7), true, "Jan 2"
	case Range30Days:
		start, daily, layout = today.AddDate(0, 0, -30), true, "Jan 2"
	case RangeMonthly:
		start, daily, layout = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC), true, "2"
	case Range6Months:
		start, layout = today.AddDate(0, -6, 0), "Jan 2006"
	case RangeYearly:
		start, layout = time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), "Jan"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRange, rangeName)
	}

	key := func(t time.Time) string {
		if daily {
			return t.Format(cases.DateLayout)
		}
		return t.Format("2006-01")
	}

	var points []TrendPoint
	index := make(map[string]int)
	if daily {
		for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
			index[key(d)] = len(points)
			points = append(points, TrendPoint{Date: key(d), Label: d.Format(layout)})
		}
	} else {
		last := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		for m := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); !m.After(last); m = m.AddDate(0, 1, 0) {
			index[key(m)] = len(points)
			points = append(points, TrendPoint{Date: key(m), Label: m.Format(layout)})
		}
	}

	for _, c := range all {
		filed, ok := parseDay(c.FiledDate)
		if !ok || filed.Before(start) || filed.After(today) {
			continue
		}
		i, ok := index[key(filed)]
		if !ok {
			continue
		}
		p := &points[i]
		switch c.Status {
		case cases.StatusPending:
			p.Pending++
		case cases.StatusOngoing:
			p.Ongoing++
		case cases.StatusResolved:
			p.Resolved++
		case cases.StatusDismissed:
			p.Dismissed++
		default:
			continue
		}
		p.Total++
	}
	return points, nil
}
