package analytics

import (
	"fmt"

	"gorm.io/gorm"
)

// TimePoint is one day of the clicks/visitors time series.
type TimePoint struct {
	Date     string `json:"date"`
	Clicks   int64  `json:"clicks"`
	Visitors int64  `json:"visitors"`
}

// clicksSeries returns the day-bucketed {date, clicks, visitors} series for
// a link set. Bucketing happens entirely in SQLite; only days with at least
// one qualifying event appear.
func clicksSeries(db *gorm.DB, linkIDs []uint, opts QueryOptions) ([]TimePoint, error) {
	var results []TimePoint

	q := opts.scope(db, linkIDs).
		Select(`strftime('%Y-%m-%d', clicked_at) AS date,
			COUNT(*) AS clicks,
			COUNT(DISTINCT NULLIF(fingerprint, '')) AS visitors`).
		Group("date").
		Order("date ASC")

	if err := q.Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("error fetching click series: %w", err)
	}
	if results == nil {
		results = []TimePoint{}
	}
	return results, nil
}

// totalClicks counts all qualifying events for a link set.
func totalClicks(db *gorm.DB, linkIDs []uint, opts QueryOptions) (int64, error) {
	var count int64
	if err := opts.scope(db, linkIDs).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("error counting clicks: %w", err)
	}
	return count, nil
}

// uniqueVisitors counts distinct non-empty fingerprints for a link set.
func uniqueVisitors(db *gorm.DB, linkIDs []uint, opts QueryOptions) (int64, error) {
	var count int64
	err := opts.scope(db, linkIDs).
		Select("COUNT(DISTINCT NULLIF(fingerprint, ''))").
		Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("error counting unique visitors: %w", err)
	}
	return count, nil
}
