package editor_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkdeck/internal/editor"
)

// fakeActions records every persistence call in order and hands out
// sequential IDs for creations.
type fakeActions struct {
	calls     []string
	nextID    int
	failOn    string
	profileCh *editor.ProfileChanges
}

func newFakeActions() *fakeActions {
	return &fakeActions{nextID: 100}
}

func (f *fakeActions) record(call string) error {
	f.calls = append(f.calls, call)
	if f.failOn != "" && call == f.failOn {
		return errors.New("boom")
	}
	return nil
}

func (f *fakeActions) UpdateProfile(changes editor.ProfileChanges) error {
	f.profileCh = &changes
	return f.record("update-profile")
}

func (f *fakeActions) CreateLink(link editor.Link) (string, error) {
	f.nextID++
	id := fmt.Sprintf("%d", f.nextID)
	if err := f.record("create-link:" + link.Title); err != nil {
		return "", err
	}
	return id, nil
}

func (f *fakeActions) UpdateLink(link editor.Link) error {
	return f.record("update-link:" + link.ID)
}

func (f *fakeActions) DeleteLink(id string) error {
	return f.record("delete-link:" + id)
}

func (f *fakeActions) ReorderLinks(orderedIDs []string) error {
	return f.record(fmt.Sprintf("reorder-links:%v", orderedIDs))
}

func (f *fakeActions) CreateSocial(social editor.Social) (string, error) {
	f.nextID++
	id := fmt.Sprintf("%d", f.nextID)
	if err := f.record("create-social:" + social.Platform); err != nil {
		return "", err
	}
	return id, nil
}

func (f *fakeActions) UpdateSocial(social editor.Social) error {
	return f.record("update-social:" + social.ID)
}

func (f *fakeActions) DeleteSocial(id string) error {
	return f.record("delete-social:" + id)
}

func (f *fakeActions) ReorderSocials(orderedIDs []string) error {
	return f.record(fmt.Sprintf("reorder-socials:%v", orderedIDs))
}

func hydratedStore(t *testing.T) *editor.Store {
	t.Helper()
	store := editor.NewStore(editor.NewMemoryDraftStorage(), 1)
	require.NoError(t, store.Hydrate(serverProfile()))
	return store
}

func TestSaveCleanStateIsNoOp(t *testing.T) {
	store := hydratedStore(t)
	actions := newFakeActions()

	require.NoError(t, store.Save(actions))
	assert.Empty(t, actions.calls)
}

func TestSaveCombinesProfileScalarChanges(t *testing.T) {
	store := hydratedStore(t)
	draft := serverProfile()
	draft.DisplayName = "Renamed"
	draft.Bio = "new bio"
	require.NoError(t, store.UpdateDraft(draft))

	actions := newFakeActions()
	require.NoError(t, store.Save(actions))

	assert.Equal(t, []string{"update-profile"}, actions.calls)
	require.NotNil(t, actions.profileCh)
	require.NotNil(t, actions.profileCh.DisplayName)
	assert.Equal(t, "Renamed", *actions.profileCh.DisplayName)
	require.NotNil(t, actions.profileCh.Bio)
	assert.Equal(t, "new bio", *actions.profileCh.Bio)
	assert.Nil(t, actions.profileCh.Theme)

	assert.Equal(t, editor.StateClean, store.State())
}

func TestSaveDeletesBeforeCreates(t *testing.T) {
	store := hydratedStore(t)
	draft := serverProfile()
	// drop link 11, add a new one in its place
	draft.Links = []editor.Link{
		draft.Links[0],
		{ID: "temp-1", Title: "Replacement", URL: "https://new.example.com", IsActive: true},
	}
	require.NoError(t, store.UpdateDraft(draft))

	actions := newFakeActions()
	require.NoError(t, store.Save(actions))

	deleteIdx, createIdx := -1, -1
	for i, call := range actions.calls {
		switch call {
		case "delete-link:11":
			deleteIdx = i
		case "create-link:Replacement":
			createIdx = i
		}
	}
	require.GreaterOrEqual(t, deleteIdx, 0)
	require.GreaterOrEqual(t, createIdx, 0)
	assert.Less(t, deleteIdx, createIdx)
}

func TestSaveSubstitutesServerIDsInPlace(t *testing.T) {
	store := hydratedStore(t)
	draft := serverProfile()
	draft.Links = append([]editor.Link{
		{ID: "temp-1", Title: "On Top", URL: "https://top.example.com", IsActive: true},
	}, draft.Links...)
	require.NoError(t, store.UpdateDraft(draft))

	actions := newFakeActions()
	require.NoError(t, store.Save(actions))

	saved := store.Draft()
	require.Len(t, saved.Links, 3)
	assert.Equal(t, "101", saved.Links[0].ID)
	assert.Equal(t, "10", saved.Links[1].ID)
	assert.Equal(t, "11", saved.Links[2].ID)

	// reorder carries the resolved IDs, position = array index
	assert.Contains(t, actions.calls, "reorder-links:[101 10 11]")
}

func TestSaveSkipsReorderWhenOrderUnchanged(t *testing.T) {
	store := hydratedStore(t)
	draft := serverProfile()
	draft.Links[0].Title = "Retitled"
	require.NoError(t, store.UpdateDraft(draft))

	actions := newFakeActions()
	require.NoError(t, store.Save(actions))

	assert.Equal(t, []string{"update-link:10"}, actions.calls)
}

func TestSaveReordersWhenSequenceDiffers(t *testing.T) {
	store := hydratedStore(t)
	draft := serverProfile()
	draft.Links[0], draft.Links[1] = draft.Links[1], draft.Links[0]
	require.NoError(t, store.UpdateDraft(draft))

	actions := newFakeActions()
	require.NoError(t, store.Save(actions))

	assert.Equal(t, []string{"reorder-links:[11 10]"}, actions.calls)
}

func TestSaveHandlesSocialsIndependently(t *testing.T) {
	store := hydratedStore(t)
	draft := serverProfile()
	draft.Socials = []editor.Social{
		{ID: "temp-5", Platform: "tiktok", URL: "https://tiktok.com/@demo"},
	}
	require.NoError(t, store.UpdateDraft(draft))

	actions := newFakeActions()
	require.NoError(t, store.Save(actions))

	deleteIdx, createIdx := -1, -1
	for i, call := range actions.calls {
		switch call {
		case "delete-social:20":
			deleteIdx = i
		case "create-social:tiktok":
			createIdx = i
		}
	}
	require.GreaterOrEqual(t, deleteIdx, 0)
	require.GreaterOrEqual(t, createIdx, 0)
	assert.Less(t, deleteIdx, createIdx)

	saved := store.Draft()
	require.Len(t, saved.Socials, 1)
	assert.NotEqual(t, "temp-5", saved.Socials[0].ID)
}

func TestSaveAbortsOnFirstFailure(t *testing.T) {
	store := hydratedStore(t)
	draft := serverProfile()
	draft.Links = []editor.Link{
		draft.Links[0],
		{ID: "temp-1", Title: "New", URL: "https://new.example.com", IsActive: true},
	}
	require.NoError(t, store.UpdateDraft(draft))

	actions := newFakeActions()
	actions.failOn = "delete-link:11"
	err := store.Save(actions)

	var stepError *editor.StepError
	require.ErrorAs(t, err, &stepError)
	assert.Equal(t, "delete link", stepError.Step)

	// nothing past the failing step ran, the store stays dirty
	assert.NotContains(t, actions.calls, "create-link:New")
	assert.True(t, store.IsDirty())
}

func TestSaveBeforeHydrationFails(t *testing.T) {
	store := editor.NewStore(editor.NewMemoryDraftStorage(), 1)
	assert.ErrorIs(t, store.Save(newFakeActions()), editor.ErrNotHydrated)
}
