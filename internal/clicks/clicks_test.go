package clicks_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkdeck/internal/clicks"
	"linkdeck/internal/testsupport"
)

const desktopChromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

func TestRecordClickStoresEnrichedEvent(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	user := testsupport.CreateTestUserForAuth(t, db, "clicks@example.com", "password123")
	profile := testsupport.CreateTestProfile(t, db, user.ID, "clicksuser")
	link := testsupport.CreateTestLink(t, db, profile.ID, "Link", "https://example.com", 0)

	input := &clicks.RecordClickInput{
		LinkID:      link.ID,
		ProfileID:   profile.ID,
		IPAddress:   "203.0.113.10",
		UserAgent:   desktopChromeUA,
		ReferrerURL: "https://instagram.com/some/path",
		UTMSource:   "instagram",
		UTMCampaign: "launch",
		Timestamp:   time.Now().UTC(),
	}
	require.NoError(t, clicks.RecordClick(dbManager, logger, "test-salt", input))

	var event clicks.ClickEvent
	require.NoError(t, db.First(&event).Error)

	assert.Equal(t, link.ID, event.LinkID)
	assert.False(t, event.IsBot)
	assert.NotEmpty(t, event.Fingerprint)
	assert.Equal(t, "Chrome", event.Browser)
	assert.Equal(t, "desktop", event.Device)
	assert.Equal(t, "instagram.com", event.Referrer)
	assert.Equal(t, "instagram", event.UTMSource)
	assert.Equal(t, "launch", event.UTMCampaign)
}

func TestRecordClickBotHasNoFingerprint(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	user := testsupport.CreateTestUserForAuth(t, db, "bot@example.com", "password123")
	profile := testsupport.CreateTestProfile(t, db, user.ID, "botuser")
	link := testsupport.CreateTestLink(t, db, profile.ID, "Link", "https://example.com", 0)

	input := &clicks.RecordClickInput{
		LinkID:    link.ID,
		ProfileID: profile.ID,
		IPAddress: "203.0.113.10",
		UserAgent: "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
	}
	require.NoError(t, clicks.RecordClick(dbManager, logger, "test-salt", input))

	var event clicks.ClickEvent
	require.NoError(t, db.First(&event).Error)

	assert.True(t, event.IsBot)
	assert.Empty(t, event.Fingerprint)
}

func TestBuildFingerprint(t *testing.T) {
	a := clicks.BuildFingerprint(1, "203.0.113.10", desktopChromeUA, "salt")
	b := clicks.BuildFingerprint(1, "203.0.113.10", desktopChromeUA, "salt")
	assert.Equal(t, a, b, "same visitor must map to the same fingerprint")

	otherProfile := clicks.BuildFingerprint(2, "203.0.113.10", desktopChromeUA, "salt")
	assert.NotEqual(t, a, otherProfile, "fingerprints are scoped per profile")

	otherIP := clicks.BuildFingerprint(1, "203.0.113.99", desktopChromeUA, "salt")
	assert.NotEqual(t, a, otherIP)

	otherSalt := clicks.BuildFingerprint(1, "203.0.113.10", desktopChromeUA, "pepper")
	assert.NotEqual(t, a, otherSalt)

	assert.Len(t, a, 64, "hex-encoded sha256")
}
