package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalcSessionMetricsEmpty(t *testing.T) {
	metrics := calcSessionMetrics(nil)
	assert.Equal(t, int64(0), metrics.TotalSessions)
	assert.Equal(t, 0.0, metrics.BounceRate)
	assert.Equal(t, 0.0, metrics.AvgSessionDuration)
}

func TestCalcSessionMetricsSingleEventIsBounce(t *testing.T) {
	now := time.Now().UTC()
	metrics := calcSessionMetrics([]sampledEvent{
		{Fingerprint: "fp-1", ClickedAt: now},
	})

	assert.Equal(t, int64(1), metrics.TotalSessions)
	assert.Equal(t, 100.0, metrics.BounceRate)
	assert.Equal(t, 0.0, metrics.AvgSessionDuration)
}

func TestCalcSessionMetricsTwoEventSession(t *testing.T) {
	now := time.Now().UTC()
	metrics := calcSessionMetrics([]sampledEvent{
		{Fingerprint: "fp-1", ClickedAt: now},
		{Fingerprint: "fp-1", ClickedAt: now.Add(90 * time.Second)},
	})

	assert.Equal(t, int64(1), metrics.TotalSessions)
	assert.Equal(t, 0.0, metrics.BounceRate)
	assert.Equal(t, 90.0, metrics.AvgSessionDuration)
}

func TestCalcSessionMetricsMixedSessions(t *testing.T) {
	now := time.Now().UTC()
	metrics := calcSessionMetrics([]sampledEvent{
		// session one: 60 seconds across three events
		{Fingerprint: "fp-1", ClickedAt: now},
		{Fingerprint: "fp-1", ClickedAt: now.Add(30 * time.Second)},
		{Fingerprint: "fp-1", ClickedAt: now.Add(60 * time.Second)},
		// session two: 120 seconds
		{Fingerprint: "fp-2", ClickedAt: now},
		{Fingerprint: "fp-2", ClickedAt: now.Add(120 * time.Second)},
		// sessions three and four: bounces
		{Fingerprint: "fp-3", ClickedAt: now},
		{Fingerprint: "fp-4", ClickedAt: now},
	})

	assert.Equal(t, int64(4), metrics.TotalSessions)
	assert.Equal(t, 50.0, metrics.BounceRate)
	assert.Equal(t, 90.0, metrics.AvgSessionDuration)
}

func TestCalcSessionMetricsSkipsEmptyFingerprints(t *testing.T) {
	now := time.Now().UTC()
	metrics := calcSessionMetrics([]sampledEvent{
		{Fingerprint: "", ClickedAt: now},
		{Fingerprint: "fp-1", ClickedAt: now},
	})

	assert.Equal(t, int64(1), metrics.TotalSessions)
}
