package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name     string
		prev     int64
		curr     int64
		expected float64
	}{
		{name: "regular increase", prev: 100, curr: 150, expected: 50},
		{name: "regular decrease", prev: 200, curr: 100, expected: -50},
		{name: "from zero to something", prev: 0, curr: 20, expected: 100},
		{name: "from zero to zero", prev: 0, curr: 0, expected: 0},
		{name: "down to zero", prev: 50, curr: 0, expected: -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PercentChange(tt.prev, tt.curr))
		})
	}
}

func TestSeriesChange(t *testing.T) {
	series := []TimePoint{
		{Date: "2026-08-01", Clicks: 40, Visitors: 10},
		{Date: "2026-08-02", Clicks: 60, Visitors: 10},
		{Date: "2026-08-03", Clicks: 90, Visitors: 20},
		{Date: "2026-08-04", Clicks: 60, Visitors: 20},
	}

	clicksChange := seriesChange(series, func(p TimePoint) int64 { return p.Clicks })
	assert.Equal(t, 50.0, clicksChange) // 100 vs 150

	visitorsChange := seriesChange(series, func(p TimePoint) int64 { return p.Visitors })
	assert.Equal(t, 100.0, visitorsChange) // 20 vs 40
}

func TestSeriesChangeOddLength(t *testing.T) {
	// mid = 1, first half is day one only
	series := []TimePoint{
		{Date: "2026-08-01", Clicks: 10},
		{Date: "2026-08-02", Clicks: 5},
		{Date: "2026-08-03", Clicks: 10},
	}

	change := seriesChange(series, func(p TimePoint) int64 { return p.Clicks })
	assert.Equal(t, 50.0, change)
}

func TestSeriesChangeEmpty(t *testing.T) {
	change := seriesChange(nil, func(p TimePoint) int64 { return p.Clicks })
	assert.Equal(t, 0.0, change)
}
