package links_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkdeck/internal/links"
	"linkdeck/internal/testsupport"
)

func TestCreateLinkValidation(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	user := testsupport.CreateTestUserForAuth(t, db, "links@example.com", "password123")
	profile := testsupport.CreateTestProfile(t, db, user.ID, "linksuser")

	t.Run("valid input", func(t *testing.T) {
		link, err := links.CreateLink(db, profile.ID, links.CreateLinkInput{
			Title:    "My Site",
			URL:      "https://example.com",
			IsActive: true,
		})
		require.NoError(t, err)
		assert.NotZero(t, link.ID)
		assert.Equal(t, profile.ID, link.ProfileID)
	})

	t.Run("missing title", func(t *testing.T) {
		_, err := links.CreateLink(db, profile.ID, links.CreateLinkInput{
			URL: "https://example.com",
		})
		var validationErr *links.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Fields, "title")
	})

	t.Run("malformed url", func(t *testing.T) {
		_, err := links.CreateLink(db, profile.ID, links.CreateLinkInput{
			Title: "Broken",
			URL:   "not-a-url",
		})
		var validationErr *links.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Fields, "url")
	})

	t.Run("bad media type", func(t *testing.T) {
		_, err := links.CreateLink(db, profile.ID, links.CreateLinkInput{
			Title:     "Media",
			URL:       "https://example.com",
			MediaURL:  "https://example.com/clip",
			MediaType: "audio",
		})
		var validationErr *links.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Fields, "media_type")
	})
}

func TestListByProfileOrdering(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	user := testsupport.CreateTestUserForAuth(t, db, "order@example.com", "password123")
	profile := testsupport.CreateTestProfile(t, db, user.ID, "orderuser")

	// same position: insertion order breaks the tie
	first := testsupport.CreateTestLink(t, db, profile.ID, "First", "https://one.example.com", 0)
	second := testsupport.CreateTestLink(t, db, profile.ID, "Second", "https://two.example.com", 0)
	third := testsupport.CreateTestLink(t, db, profile.ID, "Third", "https://three.example.com", 1)

	listed, err := links.ListByProfile(db, profile.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, first.ID, listed[0].ID)
	assert.Equal(t, second.ID, listed[1].ID)
	assert.Equal(t, third.ID, listed[2].ID)
}

func TestUpdateLinkVanishedIsNoOp(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	user := testsupport.CreateTestUserForAuth(t, db, "vanished@example.com", "password123")
	profile := testsupport.CreateTestProfile(t, db, user.ID, "vanisheduser")

	err := links.UpdateLink(db, profile.ID, 424242, links.UpdateLinkInput{
		Title: "Ghost",
		URL:   "https://ghost.example.com",
	})
	assert.NoError(t, err)
}

func TestUpdateLinkScopedToProfile(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	user := testsupport.CreateTestUserForAuth(t, db, "scoped@example.com", "password123")
	mine := testsupport.CreateTestProfile(t, db, user.ID, "scopeduser")
	other := testsupport.CreateTestUserForAuth(t, db, "other@example.com", "password123")
	theirs := testsupport.CreateTestProfile(t, db, other.ID, "otheruser")
	theirLink := testsupport.CreateTestLink(t, db, theirs.ID, "Theirs", "https://theirs.example.com", 0)

	// updating someone else's link through my profile changes nothing
	err := links.UpdateLink(db, mine.ID, theirLink.ID, links.UpdateLinkInput{
		Title: "Hijacked",
		URL:   "https://evil.example.com",
	})
	require.NoError(t, err)

	reloaded, err := links.FindByID(db, theirLink.ID)
	require.NoError(t, err)
	assert.Equal(t, "Theirs", reloaded.Title)
}

func TestDeleteLinksSkipsMissing(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	user := testsupport.CreateTestUserForAuth(t, db, "delete@example.com", "password123")
	profile := testsupport.CreateTestProfile(t, db, user.ID, "deleteuser")
	link := testsupport.CreateTestLink(t, db, profile.ID, "Doomed", "https://doomed.example.com", 0)

	require.NoError(t, links.DeleteLinks(db, profile.ID, []uint{link.ID, 424242}))

	listed, err := links.ListByProfile(db, profile.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestReorderLinks(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	user := testsupport.CreateTestUserForAuth(t, db, "reorder@example.com", "password123")
	profile := testsupport.CreateTestProfile(t, db, user.ID, "reorderuser")

	a := testsupport.CreateTestLink(t, db, profile.ID, "A", "https://a.example.com", 0)
	b := testsupport.CreateTestLink(t, db, profile.ID, "B", "https://b.example.com", 1)
	c := testsupport.CreateTestLink(t, db, profile.ID, "C", "https://c.example.com", 2)

	require.NoError(t, links.ReorderLinks(db, profile.ID, []uint{c.ID, a.ID, b.ID}))

	listed, err := links.ListByProfile(db, profile.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, c.ID, listed[0].ID)
	assert.Equal(t, a.ID, listed[1].ID)
	assert.Equal(t, b.ID, listed[2].ID)
}

func TestSocialLinkValidation(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	user := testsupport.CreateTestUserForAuth(t, db, "social@example.com", "password123")
	profile := testsupport.CreateTestProfile(t, db, user.ID, "socialuser")

	_, err := links.CreateSocialLink(db, profile.ID, links.SocialLinkInput{
		Platform: "myspace",
		URL:      "https://myspace.com/demo",
	})
	var validationErr *links.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "platform")

	social, err := links.CreateSocialLink(db, profile.ID, links.SocialLinkInput{
		Platform: "instagram",
		URL:      "https://instagram.com/demo",
	})
	require.NoError(t, err)
	assert.NotZero(t, social.ID)
}
