package analytics

import (
	"fmt"

	"gorm.io/gorm"
)

// UnknownDimension is the bucket that absorbs NULL and empty dimension
// values in breakdowns.
const UnknownDimension = "Unknown"

// DimensionCount is one row of a categorical breakdown.
type DimensionCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// breakdownColumns lists the dimensions a breakdown may group by. Raw SQL
// interpolates the column name, so it must come from this fixed set.
var breakdownColumns = map[string]bool{
	"country":          true,
	"device":           true,
	"browser":          true,
	"operating_system": true,
	"referrer":         true,
	"utm_source":       true,
	"utm_medium":       true,
	"utm_campaign":     true,
}

// dimensionBreakdown groups qualifying events by one categorical column,
// descending by count. NULL and empty values fold into the "Unknown"
// bucket.
func dimensionBreakdown(db *gorm.DB, linkIDs []uint, opts QueryOptions, column string) ([]DimensionCount, error) {
	if !breakdownColumns[column] {
		return nil, fmt.Errorf("unsupported breakdown column: %s", column)
	}

	var results []DimensionCount
	q := opts.scope(db, linkIDs).
		Select(fmt.Sprintf("COALESCE(NULLIF(%s, ''), 'Unknown') AS name, COUNT(*) AS count", column)).
		Group("name").
		Order("count DESC")

	if err := q.Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("error fetching %s breakdown: %w", column, err)
	}
	if results == nil {
		results = []DimensionCount{}
	}
	return results, nil
}
