package analytics

// PercentChange is the period-over-period delta convention used across the
// statistics payloads: prev > 0 yields the regular percentage, a period
// starting from zero reports 100 when anything happened and 0 otherwise.
func PercentChange(prev, curr int64) float64 {
	if prev > 0 {
		return float64(curr-prev) / float64(prev) * 100
	}
	if curr > 0 {
		return 100
	}
	return 0
}

// seriesChange splits a day series at its midpoint index and compares the
// two halves' totals for one field.
func seriesChange(series []TimePoint, field func(TimePoint) int64) float64 {
	mid := len(series) / 2
	var prev, curr int64
	for i, point := range series {
		if i < mid {
			prev += field(point)
		} else {
			curr += field(point)
		}
	}
	return PercentChange(prev, curr)
}
