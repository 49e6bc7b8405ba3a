package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkdeck/internal/analytics"
	"linkdeck/internal/testsupport"
)

func TestLinkStatsTotalsAndVisitors(t *testing.T) {
	conn := testsupport.SetupTestDB(t)
	user := testsupport.CreateTestUserForAuth(t, conn, "totals@example.com", "password123")
	profile := testsupport.CreateTestProfile(t, conn, user.ID, "totalsuser")
	link := testsupport.CreateTestLink(t, conn, profile.ID, "Link", "https://example.com", 0)

	now := time.Now().UTC()
	testsupport.CreateClickEvent(t, conn, link.ID, now, testsupport.ClickEventParams{Fingerprint: "fp-a"})
	testsupport.CreateClickEvent(t, conn, link.ID, now.Add(time.Minute), testsupport.ClickEventParams{Fingerprint: "fp-a"})
	testsupport.CreateClickEvent(t, conn, link.ID, now.Add(2*time.Minute), testsupport.ClickEventParams{Fingerprint: "fp-b"})
	// no fingerprint, still a click but not a visitor
	testsupport.CreateClickEvent(t, conn, link.ID, now.Add(3*time.Minute), testsupport.ClickEventParams{})
	// bots stay out unless asked for
	testsupport.CreateClickEvent(t, conn, link.ID, now.Add(4*time.Minute), testsupport.ClickEventParams{IsBot: true})

	payload, err := analytics.LinkStats(conn, link.ID, analytics.QueryOptions{})
	require.NoError(t, err)

	assert.Equal(t, int64(4), payload.TotalClicks)
	assert.Equal(t, int64(2), payload.UniqueVisitors)

	withBots, err := analytics.LinkStats(conn, link.ID, analytics.QueryOptions{IncludeBots: true})
	require.NoError(t, err)
	assert.Equal(t, int64(5), withBots.TotalClicks)
}

func TestLinkStatsInclusiveDateBounds(t *testing.T) {
	conn := testsupport.SetupTestDB(t)
	user := testsupport.CreateTestUserForAuth(t, conn, "bounds@example.com", "password123")
	profile := testsupport.CreateTestProfile(t, conn, user.ID, "boundsuser")
	link := testsupport.CreateTestLink(t, conn, profile.ID, "Link", "https://example.com", 0)

	from := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 12, 23, 59, 59, 0, time.UTC)

	testsupport.CreateClickEvent(t, conn, link.ID, from, testsupport.ClickEventParams{Fingerprint: "fp-1"})
	testsupport.CreateClickEvent(t, conn, link.ID, to, testsupport.ClickEventParams{Fingerprint: "fp-2"})
	testsupport.CreateClickEvent(t, conn, link.ID, from.Add(-time.Second), testsupport.ClickEventParams{Fingerprint: "fp-3"})
	testsupport.CreateClickEvent(t, conn, link.ID, to.Add(time.Second), testsupport.ClickEventParams{Fingerprint: "fp-4"})

	payload, err := analytics.LinkStats(conn, link.ID, analytics.QueryOptions{From: from, To: to})
	require.NoError(t, err)

	assert.Equal(t, int64(2), payload.TotalClicks)
	assert.Equal(t, int64(2), payload.UniqueVisitors)
}

func TestLinkStatsSeriesDayBuckets(t *testing.T) {
	conn := testsupport.SetupTestDB(t)
	user := testsupport.CreateTestUserForAuth(t, conn, "series@example.com", "password123")
	profile := testsupport.CreateTestProfile(t, conn, user.ID, "seriesuser")
	link := testsupport.CreateTestLink(t, conn, profile.ID, "Link", "https://example.com", 0)

	dayOne := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	dayTwo := time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)

	testsupport.CreateClickEvent(t, conn, link.ID, dayOne, testsupport.ClickEventParams{Fingerprint: "fp-1"})
	testsupport.CreateClickEvent(t, conn, link.ID, dayOne.Add(time.Hour), testsupport.ClickEventParams{Fingerprint: "fp-1"})
	testsupport.CreateClickEvent(t, conn, link.ID, dayTwo, testsupport.ClickEventParams{Fingerprint: "fp-2"})

	payload, err := analytics.LinkStats(conn, link.ID, analytics.QueryOptions{})
	require.NoError(t, err)

	require.Len(t, payload.Series, 2)
	assert.Equal(t, "2026-08-01", payload.Series[0].Date)
	assert.Equal(t, int64(2), payload.Series[0].Clicks)
	assert.Equal(t, int64(1), payload.Series[0].Visitors)
	assert.Equal(t, "2026-08-02", payload.Series[1].Date)
	assert.Equal(t, int64(1), payload.Series[1].Clicks)
}

func TestLinkStatsBreakdownsFoldUnknown(t *testing.T) {
	conn := testsupport.SetupTestDB(t)
	user := testsupport.CreateTestUserForAuth(t, conn, "breakdowns@example.com", "password123")
	profile := testsupport.CreateTestProfile(t, conn, user.ID, "breakdownsuser")
	link := testsupport.CreateTestLink(t, conn, profile.ID, "Link", "https://example.com", 0)

	now := time.Now().UTC()
	testsupport.CreateClickEvent(t, conn, link.ID, now, testsupport.ClickEventParams{Country: "us", Device: "smartphone"})
	testsupport.CreateClickEvent(t, conn, link.ID, now, testsupport.ClickEventParams{Country: "us", Device: "smartphone"})
	testsupport.CreateClickEvent(t, conn, link.ID, now, testsupport.ClickEventParams{Country: "de", Device: "desktop"})
	testsupport.CreateClickEvent(t, conn, link.ID, now, testsupport.ClickEventParams{})

	payload, err := analytics.LinkStats(conn, link.ID, analytics.QueryOptions{})
	require.NoError(t, err)

	require.Len(t, payload.Countries, 3)
	assert.Equal(t, "us", payload.Countries[0].Name)
	assert.Equal(t, int64(2), payload.Countries[0].Count)

	names := []string{payload.Countries[0].Name, payload.Countries[1].Name, payload.Countries[2].Name}
	assert.Contains(t, names, analytics.UnknownDimension)

	require.Len(t, payload.Devices, 3)
	assert.Equal(t, "smartphone", payload.Devices[0].Name)
}

func TestProfileStatsEmptyLinkSet(t *testing.T) {
	conn := testsupport.SetupTestDB(t)

	payload, err := analytics.ProfileStats(conn, nil, analytics.QueryOptions{})
	require.NoError(t, err)

	assert.Equal(t, int64(0), payload.TotalClicks)
	assert.Equal(t, int64(0), payload.UniqueVisitors)
	assert.Empty(t, payload.Series)
	assert.Empty(t, payload.Countries)
	assert.Empty(t, payload.TopLinks)
	assert.Equal(t, 0.0, payload.Sessions.BounceRate)
}

func TestProfileStatsTopLinks(t *testing.T) {
	conn := testsupport.SetupTestDB(t)
	user := testsupport.CreateTestUserForAuth(t, conn, "top@example.com", "password123")
	profile := testsupport.CreateTestProfile(t, conn, user.ID, "topuser")
	linkA := testsupport.CreateTestLink(t, conn, profile.ID, "Link A", "https://a.example.com", 0)
	linkB := testsupport.CreateTestLink(t, conn, profile.ID, "Link B", "https://b.example.com", 1)

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		testsupport.CreateClickEvent(t, conn, linkB.ID, now.Add(time.Duration(i)*time.Minute), testsupport.ClickEventParams{Fingerprint: "fp-1"})
	}
	testsupport.CreateClickEvent(t, conn, linkA.ID, now, testsupport.ClickEventParams{Fingerprint: "fp-2"})

	payload, err := analytics.ProfileStats(conn, []uint{linkA.ID, linkB.ID}, analytics.QueryOptions{})
	require.NoError(t, err)

	assert.Equal(t, int64(4), payload.TotalClicks)
	require.Len(t, payload.TopLinks, 2)
	assert.Equal(t, linkB.ID, payload.TopLinks[0].LinkID)
	assert.Equal(t, "Link B", payload.TopLinks[0].Title)
	assert.Equal(t, int64(3), payload.TopLinks[0].Count)
	assert.Equal(t, linkA.ID, payload.TopLinks[1].LinkID)
}

func TestLinksClickCountsGuaranteedKeys(t *testing.T) {
	conn := testsupport.SetupTestDB(t)
	user := testsupport.CreateTestUserForAuth(t, conn, "counts@example.com", "password123")
	profile := testsupport.CreateTestProfile(t, conn, user.ID, "countsuser")
	linkA := testsupport.CreateTestLink(t, conn, profile.ID, "Link A", "https://a.example.com", 0)
	linkB := testsupport.CreateTestLink(t, conn, profile.ID, "Link B", "https://b.example.com", 1)
	linkC := testsupport.CreateTestLink(t, conn, profile.ID, "Link C", "https://c.example.com", 2)

	now := time.Now().UTC()
	testsupport.CreateClickEvent(t, conn, linkA.ID, now, testsupport.ClickEventParams{Fingerprint: "fp-1"})
	testsupport.CreateClickEvent(t, conn, linkA.ID, now, testsupport.ClickEventParams{Fingerprint: "fp-2"})

	counts, err := analytics.LinksClickCounts(conn, []uint{linkA.ID, linkB.ID, linkC.ID}, false)
	require.NoError(t, err)

	require.Len(t, counts, 3)
	assert.Equal(t, int64(2), counts[linkA.ID])
	assert.Equal(t, int64(0), counts[linkB.ID])
	assert.Equal(t, int64(0), counts[linkC.ID])
}
