package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkdeck/internal/editor"
	"linkdeck/internal/links"
	"linkdeck/internal/profiles"
	"linkdeck/internal/testsupport"
)

// Exercises the full save pipeline against a real database: snapshot,
// reconcile, edit, save, then verify the persisted rows.
func TestSaveFlowPersistsDraft(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	user := testsupport.CreateTestUserForAuth(t, db, "flow@example.com", "password123")
	profile := testsupport.CreateTestProfile(t, db, user.ID, "flowuser")
	first := testsupport.CreateTestLink(t, db, profile.ID, "First", "https://one.example.com", 0)
	second := testsupport.CreateTestLink(t, db, profile.ID, "Second", "https://two.example.com", 1)
	testsupport.CreateTestSocialLink(t, db, profile.ID, "instagram", "https://instagram.com/flow", 0)

	snapshot, err := serverSnapshot(db, profile)
	require.NoError(t, err)
	require.Len(t, snapshot.Links, 2)
	require.Len(t, snapshot.Socials, 1)

	store := editor.NewStore(editor.NewDBDraftStorage(db), profile.ID)
	require.NoError(t, store.Hydrate(snapshot))
	require.Equal(t, editor.StateClean, store.State())

	// rename the profile, drop the second link, add a new one up top
	draft := store.Draft()
	draft.DisplayName = "Flow Renamed"
	draft.Links = []editor.Link{
		{ID: "temp-1", Title: "Fresh", URL: "https://fresh.example.com", IsActive: true},
		draft.Links[0],
	}
	require.NoError(t, store.UpdateDraft(draft))
	require.Equal(t, editor.StateDirty, store.State())

	actions := &saveActions{db: db, profileID: profile.ID}
	require.NoError(t, store.Save(actions))
	assert.Equal(t, editor.StateClean, store.State())

	reloaded, err := profiles.FindByID(db, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "Flow Renamed", reloaded.DisplayName)

	listed, err := links.ListByProfile(db, profile.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Fresh", listed[0].Title)
	assert.Equal(t, first.ID, listed[1].ID)

	// the dropped link is gone
	_, err = links.FindByID(db, second.ID)
	assert.Error(t, err)

	// the saved draft carries the real ID the server assigned
	saved := store.Draft()
	assert.Equal(t, formatID(listed[0].ID), saved.Links[0].ID)

	// a fresh hydration sees a clean state and no leftover stored draft
	rehydrated := editor.NewStore(editor.NewDBDraftStorage(db), profile.ID)
	freshSnapshot, err := serverSnapshot(db, profile)
	require.NoError(t, err)
	require.NoError(t, rehydrated.Hydrate(freshSnapshot))
	assert.Equal(t, editor.StateClean, rehydrated.State())
}

func TestSaveFlowValidationSurfacesStep(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	user := testsupport.CreateTestUserForAuth(t, db, "invalid@example.com", "password123")
	profile := testsupport.CreateTestProfile(t, db, user.ID, "invaliduser")

	snapshot, err := serverSnapshot(db, profile)
	require.NoError(t, err)

	store := editor.NewStore(editor.NewDBDraftStorage(db), profile.ID)
	require.NoError(t, store.Hydrate(snapshot))

	draft := store.Draft()
	draft.Links = []editor.Link{
		{ID: "temp-1", Title: "", URL: "https://valid.example.com"},
	}
	require.NoError(t, store.UpdateDraft(draft))

	err = store.Save(&saveActions{db: db, profileID: profile.ID})
	var stepError *editor.StepError
	require.ErrorAs(t, err, &stepError)
	assert.Equal(t, "create link", stepError.Step)

	var validationError *links.ValidationError
	require.ErrorAs(t, stepError.Err, &validationError)
	assert.Contains(t, validationError.Fields, "title")

	// the store stays dirty and the draft survives for a retry
	assert.True(t, store.IsDirty())
}

func TestServerSnapshotIDsAreStrings(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	user := testsupport.CreateTestUserForAuth(t, db, "ids@example.com", "password123")
	profile := testsupport.CreateTestProfile(t, db, user.ID, "idsuser")
	link := testsupport.CreateTestLink(t, db, profile.ID, "Link", "https://example.com", 0)

	snapshot, err := serverSnapshot(db, profile)
	require.NoError(t, err)
	assert.Equal(t, formatID(profile.ID), snapshot.ProfileID)
	require.Len(t, snapshot.Links, 1)
	assert.Equal(t, formatID(link.ID), snapshot.Links[0].ID)
	assert.False(t, editor.IsTempID(snapshot.Links[0].ID))
}
