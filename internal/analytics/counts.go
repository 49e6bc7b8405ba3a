package analytics

import (
	"fmt"

	"gorm.io/gorm"
)

// LinksClickCounts returns a click count per requested link ID. Every
// requested ID appears in the result, defaulting to 0, so callers never
// special-case a missing key.
func LinksClickCounts(db *gorm.DB, linkIDs []uint, includeBots bool) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(linkIDs))
	for _, id := range linkIDs {
		counts[id] = 0
	}
	if len(linkIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		LinkID uint
		Count  int64
	}
	opts := QueryOptions{IncludeBots: includeBots}
	err := opts.scope(db, linkIDs).
		Select("link_id, COUNT(*) AS count").
		Group("link_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching click counts: %w", err)
	}

	for _, row := range rows {
		counts[row.LinkID] = row.Count
	}
	return counts, nil
}
