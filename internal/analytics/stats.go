package analytics

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"linkdeck/internal/pkg/async"
)

// StatsPayload is the full statistics response for a link or a profile's
// whole link set.
type StatsPayload struct {
	TotalClicks    int64       `json:"total_clicks"`
	UniqueVisitors int64       `json:"unique_visitors"`
	Series         []TimePoint `json:"series"`

	Countries        []DimensionCount `json:"countries"`
	Devices          []DimensionCount `json:"devices"`
	Browsers         []DimensionCount `json:"browsers"`
	OperatingSystems []DimensionCount `json:"operating_systems"`
	Referrers        []DimensionCount `json:"referrers"`
	UTMSources       []DimensionCount `json:"utm_sources"`
	UTMMediums       []DimensionCount `json:"utm_mediums"`
	UTMCampaigns     []DimensionCount `json:"utm_campaigns"`

	Sessions SessionMetrics `json:"sessions"`

	ClicksChange   float64 `json:"clicks_change"`
	VisitorsChange float64 `json:"visitors_change"`
	// SessionsChange mirrors VisitorsChange; reconstructing the previous
	// period's sessions would need a second sampled pass, so the visitor
	// delta stands in for it. BounceRateChange and SessionDurationChange
	// are reported as 0 for the same reason.
	SessionsChange        float64 `json:"sessions_change"`
	BounceRateChange      float64 `json:"bounce_rate_change"`
	SessionDurationChange float64 `json:"session_duration_change"`
}

// LinkClickCount is one row of the top-links ranking.
type LinkClickCount struct {
	LinkID uint   `json:"link_id"`
	Title  string `json:"title"`
	Count  int64  `json:"count"`
}

// ProfileStatsPayload extends the link-set statistics with a top-links
// ranking across the profile.
type ProfileStatsPayload struct {
	StatsPayload
	TopLinks []LinkClickCount `json:"top_links"`
}

// emptyStats is the explicit zero payload for a link set with no members.
func emptyStats() StatsPayload {
	return StatsPayload{
		Series:           []TimePoint{},
		Countries:        []DimensionCount{},
		Devices:          []DimensionCount{},
		Browsers:         []DimensionCount{},
		OperatingSystems: []DimensionCount{},
		Referrers:        []DimensionCount{},
		UTMSources:       []DimensionCount{},
		UTMMediums:       []DimensionCount{},
		UTMCampaigns:     []DimensionCount{},
	}
}

// LinkStats produces the statistics payload for a single link.
func LinkStats(db *gorm.DB, linkID uint, opts QueryOptions) (*StatsPayload, error) {
	payload, err := statsForLinks(db, []uint{linkID}, opts)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// ProfileStats produces the statistics payload across a profile's link
// set. An empty set returns the explicit zero payload without touching
// the event table.
func ProfileStats(db *gorm.DB, linkIDs []uint, opts QueryOptions) (*ProfileStatsPayload, error) {
	if len(linkIDs) == 0 {
		return &ProfileStatsPayload{
			StatsPayload: emptyStats(),
			TopLinks:     []LinkClickCount{},
		}, nil
	}

	payload, err := statsForLinks(db, linkIDs, opts)
	if err != nil {
		return nil, err
	}

	topLinks, err := topLinksByClicks(db, linkIDs, opts, 10)
	if err != nil {
		return nil, err
	}

	return &ProfileStatsPayload{
		StatsPayload: *payload,
		TopLinks:     topLinks,
	}, nil
}

// statsForLinks fans out the independent queries across the worker pool
// and assembles the payload. The first failing branch fails the whole
// call; no partial payloads are synthesized.
func statsForLinks(db *gorm.DB, linkIDs []uint, opts QueryOptions) (*StatsPayload, error) {
	breakdownTask := func(name, column string) async.Task {
		return async.Task{
			Name: name,
			Execute: func() (any, error) {
				return dimensionBreakdown(db, linkIDs, opts, column)
			},
		}
	}

	tasks := []async.Task{
		{
			Name: "totalClicks",
			Execute: func() (any, error) {
				return totalClicks(db, linkIDs, opts)
			},
		},
		{
			Name: "uniqueVisitors",
			Execute: func() (any, error) {
				return uniqueVisitors(db, linkIDs, opts)
			},
		},
		{
			Name: "series",
			Execute: func() (any, error) {
				return clicksSeries(db, linkIDs, opts)
			},
		},
		{
			Name: "sessions",
			Execute: func() (any, error) {
				return sessionMetrics(db, linkIDs, opts)
			},
		},
		breakdownTask("countries", "country"),
		breakdownTask("devices", "device"),
		breakdownTask("browsers", "browser"),
		breakdownTask("operatingSystems", "operating_system"),
		breakdownTask("referrers", "referrer"),
		breakdownTask("utmSources", "utm_source"),
		breakdownTask("utmMediums", "utm_medium"),
		breakdownTask("utmCampaigns", "utm_campaign"),
	}

	pool := async.NewPool(6)
	results := pool.Execute(context.Background(), tasks)

	for name, result := range results {
		if result.Err != nil {
			return nil, fmt.Errorf("error fetching %s: %w", name, result.Err)
		}
	}

	series := results["series"].Data.([]TimePoint)

	payload := &StatsPayload{
		TotalClicks:      results["totalClicks"].Data.(int64),
		UniqueVisitors:   results["uniqueVisitors"].Data.(int64),
		Series:           series,
		Countries:        results["countries"].Data.([]DimensionCount),
		Devices:          results["devices"].Data.([]DimensionCount),
		Browsers:         results["browsers"].Data.([]DimensionCount),
		OperatingSystems: results["operatingSystems"].Data.([]DimensionCount),
		Referrers:        results["referrers"].Data.([]DimensionCount),
		UTMSources:       results["utmSources"].Data.([]DimensionCount),
		UTMMediums:       results["utmMediums"].Data.([]DimensionCount),
		UTMCampaigns:     results["utmCampaigns"].Data.([]DimensionCount),
		Sessions:         results["sessions"].Data.(SessionMetrics),
	}

	payload.ClicksChange = seriesChange(series, func(p TimePoint) int64 { return p.Clicks })
	payload.VisitorsChange = seriesChange(series, func(p TimePoint) int64 { return p.Visitors })
	payload.SessionsChange = payload.VisitorsChange

	return payload, nil
}

// topLinksByClicks ranks a link set by click count, descending, joined
// against the links table for titles.
func topLinksByClicks(db *gorm.DB, linkIDs []uint, opts QueryOptions, limit int) ([]LinkClickCount, error) {
	var results []LinkClickCount

	q := opts.scope(db, linkIDs).
		Select("click_events.link_id AS link_id, links.title AS title, COUNT(*) AS count").
		Joins("JOIN links ON links.id = click_events.link_id").
		Group("click_events.link_id, links.title").
		Order("count DESC, link_id ASC").
		Limit(limit)

	if err := q.Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("error fetching top links: %w", err)
	}
	if results == nil {
		results = []LinkClickCount{}
	}
	return results, nil
}
