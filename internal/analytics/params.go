package analytics

import (
	"time"

	"gorm.io/gorm"
)

// QueryOptions scopes a statistics query. Zero From/To means an unbounded
// window; bounds are inclusive on clicked_at.
type QueryOptions struct {
	From        time.Time
	To          time.Time
	IncludeBots bool
}

// scope applies the shared link-set, bot and window filters to a query
// against click_events.
func (o QueryOptions) scope(db *gorm.DB, linkIDs []uint) *gorm.DB {
	q := db.Table("click_events").Where("link_id IN ?", linkIDs)
	if !o.IncludeBots {
		q = q.Where("is_bot = ?", false)
	}
	if !o.From.IsZero() {
		q = q.Where("clicked_at >= ?", o.From.UTC())
	}
	if !o.To.IsZero() {
		q = q.Where("clicked_at <= ?", o.To.UTC())
	}
	return q
}
