package analytics

import (
	"testing"

	"github.com/JustJay7/barangay-case-dashboard/internal/cases"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trendCases = []cases.Case{
	{Status: cases.StatusPending, FiledDate: "2025-04-01"},
	{Status: cases.StatusResolved, FiledDate: "2025-04-08"},
	{Status: cases.StatusOngoing, FiledDate: "2025-04-08"},
	{Status: cases.StatusDismissed, FiledDate: "2025-03-31"},
	{Status: cases.StatusPending, FiledDate: "2025-04-09"},
	{Status: cases.StatusDismissed, FiledDate: "2024-11-15"},
	{Status: cases.StatusPending, FiledDate: "2024-10-01"},
	{Status: cases.StatusPending, FiledDate: "garbage"},
}

func totals(points []TrendPoint) int {
	n := 0
	for _, p := range points {
		n += p.Total
	}
	return n
}

func TestStatusTrendDaily(t *testing.T) {
	points, err := StatusTrend(trendCases, Range7Days, summaryNow)
	require.NoError(t, err)

	require.Len(t, points, 8)
	assert.Equal(t, TrendPoint{Date: "2025-04-01", Label: "Apr 1", Pending: 1, Total: 1}, points[0])
	assert.Equal(t, TrendPoint{Date: "2025-04-08", Label: "Apr 8", Ongoing: 1, Resolved: 1, Total: 2}, points[7])
	assert.Equal(t, 3, totals(points), "cases filed after today are left out")

	points, err = StatusTrend(trendCases, Range30Days, summaryNow)
	require.NoError(t, err)
	require.Len(t, points, 31)
	assert.Equal(t, "2025-03-09", points[0].Date)
	assert.Equal(t, 4, totals(points))

	points, err = StatusTrend(trendCases, RangeMonthly, summaryNow)
	require.NoError(t, err)
	require.Len(t, points, 8)
	assert.Equal(t, "1", points[0].Label)
	assert.Equal(t, "8", points[7].Label)
	assert.Equal(t, 3, totals(points))
}

func TestStatusTrendMonthly(t *testing.T) {
	points, err := StatusTrend(trendCases, Range6Months, summaryNow)
	require.NoError(t, err)

	require.Len(t, points, 7)
	assert.Equal(t, TrendPoint{Date: "2024-10", Label: "Oct 2024"}, points[0], "cases before the range start are left out")
	assert.Equal(t, TrendPoint{Date: "2024-11", Label: "Nov 2024", Dismissed: 1, Total: 1}, points[1])
	assert.Equal(t, "Apr 2025", points[6].Label)
	assert.Equal(t, 3, points[6].Total)

	points, err = StatusTrend(trendCases, RangeYearly, summaryNow)
	require.NoError(t, err)
	labels := make([]string, 0, len(points))
	for _, p := range points {
		labels = append(labels, p.Label)
	}
	assert.Equal(t, []string{"Jan", "Feb", "Mar", "Apr"}, labels)
	assert.Equal(t, 1, points[2].Dismissed)
	assert.Equal(t, 4, totals(points))
}

func TestStatusTrendRanges(t *testing.T) {
	points, err := StatusTrend(nil, "", summaryNow)
	require.NoError(t, err)
	assert.Len(t, points, 31, "empty range means the last 30 days")

	_, err = StatusTrend(nil, "weekly", summaryNow)
	assert.ErrorIs(t, err, ErrUnknownRange)

	for _, r := range Ranges {
		_, err := StatusTrend(trendCases, r, summaryNow)
		assert.NoError(t, err, r)
	}
}
