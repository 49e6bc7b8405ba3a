package editor

import "fmt"

// ProfileChanges carries the top-level fields that differ between draft
// and original. Nil means unchanged. All changed fields travel in one
// combined update.
type ProfileChanges struct {
	DisplayName    *string
	Bio            *string
	AvatarURL      *string
	Layout         *string
	Theme          *string
	BgType         *string
	BgColor        *string
	BgGradientFrom *string
	BgGradientTo   *string
	BgWallpaper    *string
	BgImage        *string
	BgEffects      *string
	BgPattern      *string
	CardTexture    *string
	IsPublished    *bool
}

func (c ProfileChanges) IsEmpty() bool {
	return c == ProfileChanges{}
}

// Actions is the persistence boundary the save protocol drives. Create
// calls return the server-assigned permanent ID. Update and delete calls
// targeting an ID that no longer exists must report success, since the
// desired end state already holds.
type Actions interface {
	UpdateProfile(changes ProfileChanges) error
	CreateLink(link Link) (string, error)
	UpdateLink(link Link) error
	DeleteLink(id string) error
	ReorderLinks(orderedIDs []string) error
	CreateSocial(social Social) (string, error)
	UpdateSocial(social Social) error
	DeleteSocial(id string) error
	ReorderSocials(orderedIDs []string) error
}

// StepError names the save step that failed. Steps already applied are
// not rolled back; stale draft detection restores consistency on the
// next hydration.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("save step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

func stepErr(step string, err error) error {
	return &StepError{Step: step, Err: err}
}

// Save runs the ordered persistence protocol against the draft: one
// combined profile update if any scalar differs, then per collection
// deletions first, then updates and creations, then a reorder call if
// the final ID sequence differs from the original's. Social links repeat
// the same algorithm independently. The first failure aborts the
// remaining steps and leaves the store dirty.
func (s *Store) Save(actions Actions) error {
	if !s.hydrated() {
		return ErrNotHydrated
	}
	if s.state == StateClean {
		return nil
	}

	if changes := diffProfileScalars(s.original, s.draft); !changes.IsEmpty() {
		if err := actions.UpdateProfile(changes); err != nil {
			return stepErr("update profile", err)
		}
	}

	resolvedLinks, err := saveLinks(actions, s.original.Links, s.draft.Links)
	if err != nil {
		return err
	}
	resolvedSocials, err := saveSocials(actions, s.original.Socials, s.draft.Socials)
	if err != nil {
		return err
	}

	resolved := s.draft.Clone()
	resolved.Links = resolvedLinks
	resolved.Socials = resolvedSocials
	s.draft = resolved
	return s.MarkAsSaved()
}

func diffProfileScalars(original, draft Profile) ProfileChanges {
	var changes ProfileChanges
	strDiff := func(o, d string) *string {
		if o == d {
			return nil
		}
		return &d
	}
	changes.DisplayName = strDiff(original.DisplayName, draft.DisplayName)
	changes.Bio = strDiff(original.Bio, draft.Bio)
	changes.AvatarURL = strDiff(original.AvatarURL, draft.AvatarURL)
	changes.Layout = strDiff(original.Layout, draft.Layout)
	changes.Theme = strDiff(original.Theme, draft.Theme)
	changes.BgType = strDiff(original.BgType, draft.BgType)
	changes.BgColor = strDiff(original.BgColor, draft.BgColor)
	changes.BgGradientFrom = strDiff(original.BgGradientFrom, draft.BgGradientFrom)
	changes.BgGradientTo = strDiff(original.BgGradientTo, draft.BgGradientTo)
	changes.BgWallpaper = strDiff(original.BgWallpaper, draft.BgWallpaper)
	changes.BgImage = strDiff(original.BgImage, draft.BgImage)
	changes.BgEffects = strDiff(original.BgEffects, draft.BgEffects)
	changes.BgPattern = strDiff(original.BgPattern, draft.BgPattern)
	changes.CardTexture = strDiff(original.CardTexture, draft.CardTexture)
	if original.IsPublished != draft.IsPublished {
		published := draft.IsPublished
		changes.IsPublished = &published
	}
	return changes
}

// saveLinks issues deletions before creations so vacated positions are
// free for new rows, substitutes server-assigned IDs in place, and
// reorders only when the final sequence actually moved.
func saveLinks(actions Actions, original, draft []Link) ([]Link, error) {
	draftIDs := make(map[string]bool, len(draft))
	for _, l := range draft {
		draftIDs[l.ID] = true
	}
	originalByID := make(map[string]Link, len(original))
	for _, l := range original {
		originalByID[l.ID] = l
		if !draftIDs[l.ID] {
			if err := actions.DeleteLink(l.ID); err != nil {
				return nil, stepErr("delete link", err)
			}
		}
	}

	resolved := append([]Link(nil), draft...)
	for i, l := range resolved {
		if IsTempID(l.ID) {
			realID, err := actions.CreateLink(l)
			if err != nil {
				return nil, stepErr("create link", err)
			}
			resolved[i].ID = realID
			continue
		}
		if prev, ok := originalByID[l.ID]; ok && !linkContentEqual(prev, l) {
			if err := actions.UpdateLink(l); err != nil {
				return nil, stepErr("update link", err)
			}
		}
	}

	if orderChanged(linkIDs(original), linkIDs(resolved)) {
		if err := actions.ReorderLinks(linkIDs(resolved)); err != nil {
			return nil, stepErr("reorder links", err)
		}
	}
	return resolved, nil
}

func saveSocials(actions Actions, original, draft []Social) ([]Social, error) {
	draftIDs := make(map[string]bool, len(draft))
	for _, sl := range draft {
		draftIDs[sl.ID] = true
	}
	originalByID := make(map[string]Social, len(original))
	for _, sl := range original {
		originalByID[sl.ID] = sl
		if !draftIDs[sl.ID] {
			if err := actions.DeleteSocial(sl.ID); err != nil {
				return nil, stepErr("delete social link", err)
			}
		}
	}

	resolved := append([]Social(nil), draft...)
	for i, sl := range resolved {
		if IsTempID(sl.ID) {
			realID, err := actions.CreateSocial(sl)
			if err != nil {
				return nil, stepErr("create social link", err)
			}
			resolved[i].ID = realID
			continue
		}
		if prev, ok := originalByID[sl.ID]; ok && !socialContentEqual(prev, sl) {
			if err := actions.UpdateSocial(sl); err != nil {
				return nil, stepErr("update social link", err)
			}
		}
	}

	if orderChanged(socialIDs(original), socialIDs(resolved)) {
		if err := actions.ReorderSocials(socialIDs(resolved)); err != nil {
			return nil, stepErr("reorder social links", err)
		}
	}
	return resolved, nil
}

func linkIDs(links []Link) []string {
	ids := make([]string, len(links))
	for i, l := range links {
		ids[i] = l.ID
	}
	return ids
}

func socialIDs(socials []Social) []string {
	ids := make([]string, len(socials))
	for i, sl := range socials {
		ids[i] = sl.ID
	}
	return ids
}

func orderChanged(before, after []string) bool {
	if len(before) != len(after) {
		return true
	}
	for i := range before {
		if before[i] != after[i] {
			return true
		}
	}
	return false
}
