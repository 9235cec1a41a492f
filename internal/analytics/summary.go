package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/JustJay7/barangay-case-dashboard/internal/cases"
)

// Count is one bar or slice of a chart.
type Count struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Month holds the filed and resolved totals for one calendar month.
type Month struct {
	Name     string `json:"name"`
	Filed    int    `json:"filed"`
	Resolved int    `json:"resolved"`
}

// Summary feeds the dashboard and analytics charts.
type Summary struct {
	Total          int                  `json:"total"`
	ByStatus       map[cases.Status]int `json:"byStatus"`
	ByType         []Count              `json:"byType"`
	Monthly        []Month              `json:"monthly"`
	ResolutionRate float64              `json:"resolutionRate"`
	// SuccessRate is resolved cases as a whole percentage of closed ones
	// (resolved plus dismissed), or 0 when nothing is closed.
	SuccessRate int `json:"successRate"`
	// ResolvedThisMonth counts resolved cases whose resolved date falls
	// between the first of the current month and today.
	ResolvedThisMonth int `json:"resolvedThisMonth"`
	ResolvedLastMonth int `json:"resolvedLastMonth"`
	// ResolvedTrend is the percentage change from last month to this month.
	ResolvedTrend int `json:"resolvedTrend"`
}

// Summarize counts cases per status, per type and per month. Months are
// bucketed by calendar month regardless of year; unparseable dates are skipped.
// now anchors the month over month figures.
func Summarize(all []cases.Case, now time.Time) *Summary {
	s := &Summary{
		Total:    len(all),
		ByStatus: make(map[cases.Status]int, len(cases.Statuses)),
		ByType:   []Count{},
		Monthly:  make([]Month, 12),
	}
	for _, st := range cases.Statuses {
		s.ByStatus[st] = 0
	}
	for i := range s.Monthly {
		s.Monthly[i].Name = time.Month(i + 1).String()[:3]
	}

	today := calendarDay(now)
	thisMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonth := thisMonth.AddDate(0, -1, 0)

	typeCounts := make(map[cases.Type]int)
	for _, c := range all {
		s.ByStatus[c.Status]++
		typeCounts[c.Type]++

		if resolved, ok := parseDay(c.ResolvedDate); ok && c.Status == cases.StatusResolved {
			switch {
			case !resolved.Before(thisMonth) && !resolved.After(today):
				s.ResolvedThisMonth++
			case !resolved.Before(lastMonth) && resolved.Before(thisMonth):
				s.ResolvedLastMonth++
			}
		}

		if m, ok := month(c.FiledDate); ok {
			s.Monthly[m].Filed++
		}
		if m, ok := month(c.ResolvedDate); ok {
			s.Monthly[m].Resolved++
		}
	}

	for _, t := range cases.Types {
		if n := typeCounts[t]; n > 0 {
			s.ByType = append(s.ByType, Count{Name: string(t), Value: n})
		}
	}
	sort.SliceStable(s.ByType, func(i, j int) bool {
		return s.ByType[i].Value > s.ByType[j].Value
	})

	resolved := s.ByStatus[cases.StatusResolved]
	if s.Total > 0 {
		s.ResolutionRate = float64(resolved) / float64(s.Total)
	}
	if closed := resolved + s.ByStatus[cases.StatusDismissed]; closed > 0 {
		s.SuccessRate = percent(float64(resolved) / float64(closed))
	}
	s.ResolvedTrend = trend(s.ResolvedThisMonth, s.ResolvedLastMonth)
	return s
}

// trend is the whole percentage change from prev to cur. A month with
// nothing resolved followed by one with something counts as 100.
func trend(cur, prev int) int {
	switch {
	case prev == 0 && cur == 0:
		return 0
	case prev == 0:
		return 100
	default:
		return percent(float64(cur-prev) / float64(prev))
	}
}

// percent rounds half up, so -2.5 becomes -2.
func percent(ratio float64) int {
	return int(math.Floor(ratio*100 + 0.5))
}

// calendarDay drops the time of day, keeping now's local date.
func calendarDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func parseDay(date string) (time.Time, bool) {
	if date == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(cases.DateLayout, date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func month(date string) (int, bool) {
	t, ok := parseDay(date)
	if !ok {
		return 0, false
	}
	return int(t.Month()) - 1, true
}
