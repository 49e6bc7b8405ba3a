package analytics

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
)

// sessionSampleLimit caps how many raw events feed session reconstruction.
// Grouping by fingerprint and measuring intra-group time spans cannot be
// expressed as a single GROUP BY, so it happens in application code over a
// bounded sample instead of an unbounded fetch.
const sessionSampleLimit = 10000

// SessionMetrics are the fingerprint-derived statistics of a link set.
type SessionMetrics struct {
	TotalSessions      int64   `json:"total_sessions"`
	BounceRate         float64 `json:"bounce_rate"`
	AvgSessionDuration float64 `json:"avg_session_duration"`
}

type sampledEvent struct {
	Fingerprint string
	ClickedAt   time.Time
}

// sessionMetrics reconstructs sessions from the most recent qualifying
// fingerprinted events. A session is the set of events sharing one
// fingerprint; bounce = single-event session; duration = max-min seconds.
func sessionMetrics(db *gorm.DB, linkIDs []uint, opts QueryOptions) (SessionMetrics, error) {
	var sample []sampledEvent

	// Most recent first so the cap keeps fresh sessions, then re-sorted
	// ascending for span measurement.
	err := opts.scope(db, linkIDs).
		Select("fingerprint, clicked_at").
		Where("fingerprint != ''").
		Order("clicked_at DESC").
		Limit(sessionSampleLimit).
		Scan(&sample).Error
	if err != nil {
		return SessionMetrics{}, fmt.Errorf("error fetching session sample: %w", err)
	}

	sort.Slice(sample, func(i, j int) bool {
		return sample[i].ClickedAt.Before(sample[j].ClickedAt)
	})

	return calcSessionMetrics(sample), nil
}

func calcSessionMetrics(sample []sampledEvent) SessionMetrics {
	type span struct {
		first time.Time
		last  time.Time
		count int
	}

	sessions := make(map[string]*span)
	for _, ev := range sample {
		if ev.Fingerprint == "" {
			continue
		}
		s, ok := sessions[ev.Fingerprint]
		if !ok {
			sessions[ev.Fingerprint] = &span{first: ev.ClickedAt, last: ev.ClickedAt, count: 1}
			continue
		}
		if ev.ClickedAt.Before(s.first) {
			s.first = ev.ClickedAt
		}
		if ev.ClickedAt.After(s.last) {
			s.last = ev.ClickedAt
		}
		s.count++
	}

	metrics := SessionMetrics{TotalSessions: int64(len(sessions))}
	if len(sessions) == 0 {
		return metrics
	}

	var bounced int64
	var durationSum float64
	var durationCount int64
	for _, s := range sessions {
		if s.count == 1 {
			bounced++
			continue
		}
		duration := s.last.Sub(s.first).Seconds()
		if duration > 0 {
			durationSum += duration
			durationCount++
		}
	}

	metrics.BounceRate = float64(bounced) / float64(len(sessions)) * 100
	if durationCount > 0 {
		metrics.AvgSessionDuration = durationSum / float64(durationCount)
	}
	return metrics
}
