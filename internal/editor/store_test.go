package editor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkdeck/internal/editor"
)

func serverProfile() editor.Profile {
	return editor.Profile{
		ProfileID:   "1",
		DisplayName: "Demo",
		Bio:         "hello",
		Layout:      "stack",
		Theme:       "default",
		Links: []editor.Link{
			{ID: "10", Title: "First", URL: "https://one.example.com", IsActive: true},
			{ID: "11", Title: "Second", URL: "https://two.example.com", IsActive: true},
		},
		Socials: []editor.Social{
			{ID: "20", Platform: "instagram", URL: "https://instagram.com/demo"},
		},
	}
}

func TestHydrateWithoutDraftAdoptsServer(t *testing.T) {
	storage := editor.NewMemoryDraftStorage()
	store := editor.NewStore(storage, 1)

	require.NoError(t, store.Hydrate(serverProfile()))

	assert.Equal(t, editor.StateClean, store.State())
	assert.False(t, store.IsDirty())
	assert.Equal(t, "Demo", store.Draft().DisplayName)
	assert.Len(t, store.Draft().Links, 2)
}

func TestHydrateDiscardsDraftFromAnotherProfile(t *testing.T) {
	storage := editor.NewMemoryDraftStorage()
	foreign := serverProfile()
	foreign.ProfileID = "999"
	foreign.DisplayName = "Someone Else"
	require.NoError(t, storage.Save(1, &foreign))

	store := editor.NewStore(storage, 1)
	require.NoError(t, store.Hydrate(serverProfile()))

	assert.Equal(t, editor.StateClean, store.State())
	assert.Equal(t, "Demo", store.Draft().DisplayName)
}

func TestHydrateDiscardsDraftWithStalePermanentID(t *testing.T) {
	storage := editor.NewMemoryDraftStorage()
	draft := serverProfile()
	// link 99 never existed server-side under a permanent ID
	draft.Links = append(draft.Links, editor.Link{ID: "99", Title: "Ghost", URL: "https://ghost.example.com"})
	require.NoError(t, storage.Save(1, &draft))

	store := editor.NewStore(storage, 1)
	require.NoError(t, store.Hydrate(serverProfile()))

	assert.Equal(t, editor.StateClean, store.State())
	assert.Len(t, store.Draft().Links, 2)
}

func TestHydrateKeepsDraftWithDanglingTempID(t *testing.T) {
	storage := editor.NewMemoryDraftStorage()
	draft := serverProfile()
	draft.Links = append(draft.Links, editor.Link{ID: "temp-999", Title: "New", URL: "https://new.example.com"})
	require.NoError(t, storage.Save(1, &draft))

	store := editor.NewStore(storage, 1)
	require.NoError(t, store.Hydrate(serverProfile()))

	// local edits survive, surfaced as a conflict to resolve
	assert.Equal(t, editor.StateConflict, store.State())
	assert.True(t, store.IsDirty())
	assert.Len(t, store.Draft().Links, 3)
}

func TestHydrateCleanWhenDraftMatchesServer(t *testing.T) {
	storage := editor.NewMemoryDraftStorage()
	draft := serverProfile()
	require.NoError(t, storage.Save(1, &draft))

	store := editor.NewStore(storage, 1)
	require.NoError(t, store.Hydrate(serverProfile()))

	assert.Equal(t, editor.StateClean, store.State())
}

func TestConflictResolution(t *testing.T) {
	t.Run("keep promotes to dirty", func(t *testing.T) {
		storage := editor.NewMemoryDraftStorage()
		draft := serverProfile()
		draft.Bio = "edited"
		require.NoError(t, storage.Save(1, &draft))

		store := editor.NewStore(storage, 1)
		require.NoError(t, store.Hydrate(serverProfile()))
		require.Equal(t, editor.StateConflict, store.State())

		require.NoError(t, store.KeepDraft())
		assert.Equal(t, editor.StateDirty, store.State())
		assert.Equal(t, "edited", store.Draft().Bio)
	})

	t.Run("discard restores server copy", func(t *testing.T) {
		storage := editor.NewMemoryDraftStorage()
		draft := serverProfile()
		draft.Bio = "edited"
		require.NoError(t, storage.Save(1, &draft))

		store := editor.NewStore(storage, 1)
		require.NoError(t, store.Hydrate(serverProfile()))
		require.Equal(t, editor.StateConflict, store.State())

		require.NoError(t, store.DiscardChanges())
		assert.Equal(t, editor.StateClean, store.State())
		assert.Equal(t, "hello", store.Draft().Bio)

		persisted, err := storage.Load(1)
		require.NoError(t, err)
		assert.Nil(t, persisted)
	})
}

func TestUpdateDraftBeforeHydrationFails(t *testing.T) {
	store := editor.NewStore(editor.NewMemoryDraftStorage(), 1)
	err := store.UpdateDraft(serverProfile())
	assert.ErrorIs(t, err, editor.ErrNotHydrated)
}

func TestUpdateDraftTracksDirtiness(t *testing.T) {
	storage := editor.NewMemoryDraftStorage()
	store := editor.NewStore(storage, 1)
	require.NoError(t, store.Hydrate(serverProfile()))

	edited := serverProfile()
	edited.DisplayName = "Changed"
	require.NoError(t, store.UpdateDraft(edited))
	assert.Equal(t, editor.StateDirty, store.State())

	persisted, err := storage.Load(1)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "Changed", persisted.DisplayName)

	// reverting the edit goes back to clean and drops the stored draft
	require.NoError(t, store.UpdateDraft(serverProfile()))
	assert.Equal(t, editor.StateClean, store.State())

	persisted, err = storage.Load(1)
	require.NoError(t, err)
	assert.Nil(t, persisted)
}

func TestMarkAsSavedIsIdempotent(t *testing.T) {
	storage := editor.NewMemoryDraftStorage()
	store := editor.NewStore(storage, 1)
	require.NoError(t, store.Hydrate(serverProfile()))

	edited := serverProfile()
	edited.Bio = "fresh"
	require.NoError(t, store.UpdateDraft(edited))
	require.True(t, store.IsDirty())

	require.NoError(t, store.MarkAsSaved())
	assert.False(t, store.IsDirty())
	assert.Equal(t, "fresh", store.Original().Bio)

	require.NoError(t, store.MarkAsSaved())
	assert.False(t, store.IsDirty())
	assert.Equal(t, editor.StateClean, store.State())
}

func TestHydrateTwiceFails(t *testing.T) {
	store := editor.NewStore(editor.NewMemoryDraftStorage(), 1)
	require.NoError(t, store.Hydrate(serverProfile()))
	assert.ErrorIs(t, store.Hydrate(serverProfile()), editor.ErrAlreadyHydrated)
}
