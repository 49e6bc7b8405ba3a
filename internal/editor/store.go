package editor

import (
	"errors"
	"fmt"
)

// State is the editor lifecycle state.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateHydrating     State = "hydrating"
	StateClean         State = "clean"
	StateDirty         State = "dirty"
	StateConflict      State = "conflict"
)

var (
	ErrNotHydrated     = errors.New("editor: not hydrated yet")
	ErrAlreadyHydrated = errors.New("editor: already hydrated")
)

// Store runs the draft lifecycle for one profile: hydration with stale
// draft reconciliation, dirty tracking against the original snapshot, and
// draft persistence. It is built per request and is not safe for
// concurrent use.
type Store struct {
	storage   DraftStorage
	profileID uint

	state    State
	original Profile
	draft    Profile
}

func NewStore(storage DraftStorage, profileID uint) *Store {
	return &Store{
		storage:   storage,
		profileID: profileID,
		state:     StateUninitialized,
	}
}

func (s *Store) State() State { return s.state }

func (s *Store) IsDirty() bool {
	return s.state == StateDirty || s.state == StateConflict
}

func (s *Store) hydrated() bool {
	return s.state != StateUninitialized && s.state != StateHydrating
}

// Draft returns the current working copy.
func (s *Store) Draft() Profile { return s.draft.Clone() }

// Original returns the last adopted server snapshot.
func (s *Store) Original() Profile { return s.original.Clone() }

// Hydrate loads any persisted draft and reconciles it against the fresh
// server snapshot. The rules, in order:
//
//  1. No draft, or the draft belongs to a different profile: adopt the
//     server copy, Clean.
//  2. The draft references a permanent link or social ID the server no
//     longer has (a prior save partially committed, or another device
//     changed the data): the draft is stale, discard it, Clean. Dangling
//     temporary IDs are expected and do not count.
//  3. Otherwise keep the local edits, adopt the server snapshot as the
//     new original, and recompute dirtiness against it. A dirty result
//     is surfaced as Conflict so the caller can prompt keep-or-discard.
func (s *Store) Hydrate(server Profile) error {
	if s.hydrated() {
		return ErrAlreadyHydrated
	}
	s.state = StateHydrating
	s.original = server.Clone()

	draft, err := s.storage.Load(s.profileID)
	if err != nil {
		return fmt.Errorf("error loading draft: %w", err)
	}

	if draft == nil || draft.ProfileID != server.ProfileID {
		return s.adoptServer()
	}
	if s.draftIsStale(*draft, server) {
		return s.adoptServer()
	}

	s.draft = draft.Clone()
	if profilesEqual(s.draft, s.original) {
		s.state = StateClean
		return nil
	}
	s.state = StateConflict
	return nil
}

func (s *Store) adoptServer() error {
	s.draft = s.original.Clone()
	s.state = StateClean
	if err := s.storage.Clear(s.profileID); err != nil {
		return fmt.Errorf("error clearing draft: %w", err)
	}
	return nil
}

// draftIsStale reports whether the draft references a permanent ID that
// is no longer present server-side.
func (s *Store) draftIsStale(draft, server Profile) bool {
	serverLinks := make(map[string]bool, len(server.Links))
	for _, l := range server.Links {
		serverLinks[l.ID] = true
	}
	for _, l := range draft.Links {
		if !IsTempID(l.ID) && !serverLinks[l.ID] {
			return true
		}
	}

	serverSocials := make(map[string]bool, len(server.Socials))
	for _, sl := range server.Socials {
		serverSocials[sl.ID] = true
	}
	for _, sl := range draft.Socials {
		if !IsTempID(sl.ID) && !serverSocials[sl.ID] {
			return true
		}
	}
	return false
}

// UpdateDraft replaces the working copy and recomputes dirtiness. Illegal
// before hydration completes.
func (s *Store) UpdateDraft(draft Profile) error {
	if !s.hydrated() {
		return ErrNotHydrated
	}
	s.draft = draft.Clone()
	if profilesEqual(s.draft, s.original) {
		s.state = StateClean
		if err := s.storage.Clear(s.profileID); err != nil {
			return fmt.Errorf("error clearing draft: %w", err)
		}
		return nil
	}
	s.state = StateDirty
	if err := s.storage.Save(s.profileID, &s.draft); err != nil {
		return fmt.Errorf("error persisting draft: %w", err)
	}
	return nil
}

// MarkAsSaved promotes the draft to be the new original after a
// successful persist cycle. The draft must already carry server-assigned
// IDs in place of any temporary ones, otherwise the next hydration would
// misread live links as stale. Idempotent.
func (s *Store) MarkAsSaved() error {
	if !s.hydrated() {
		return ErrNotHydrated
	}
	s.original = s.draft.Clone()
	s.state = StateClean
	if err := s.storage.Clear(s.profileID); err != nil {
		return fmt.Errorf("error clearing draft: %w", err)
	}
	return nil
}

// DiscardChanges resets the draft to the current original. Also resolves
// a Conflict in favor of the server copy.
func (s *Store) DiscardChanges() error {
	if !s.hydrated() {
		return ErrNotHydrated
	}
	s.draft = s.original.Clone()
	s.state = StateClean
	if err := s.storage.Clear(s.profileID); err != nil {
		return fmt.Errorf("error clearing draft: %w", err)
	}
	return nil
}

// KeepDraft resolves a Conflict in favor of the local edits.
func (s *Store) KeepDraft() error {
	if !s.hydrated() {
		return ErrNotHydrated
	}
	if s.state == StateConflict {
		s.state = StateDirty
	}
	return nil
}
