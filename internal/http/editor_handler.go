package http

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	"gorm.io/gorm"
	"log/slog"

	"linkdeck/internal/editor"
	"linkdeck/internal/links"
	"linkdeck/internal/profiles"
)

// serverSnapshot assembles the editor's view of a profile from the live
// tables. Entity IDs travel as strings so client-minted temporary IDs
// and server IDs share one representation.
func serverSnapshot(db *gorm.DB, profile *profiles.Profile) (editor.Profile, error) {
	profileLinks, err := links.ListByProfile(db, profile.ID)
	if err != nil {
		return editor.Profile{}, fmt.Errorf("error loading links: %w", err)
	}
	socials, err := links.ListSocialsByProfile(db, profile.ID)
	if err != nil {
		return editor.Profile{}, fmt.Errorf("error loading social links: %w", err)
	}

	snapshot := editor.Profile{
		ProfileID:      formatID(profile.ID),
		DisplayName:    profile.DisplayName,
		Bio:            profile.Bio,
		AvatarURL:      profile.AvatarURL,
		Layout:         profile.Layout,
		Theme:          profile.Theme,
		BgType:         profile.BgType,
		BgColor:        profile.BgColor,
		BgGradientFrom: profile.BgGradientFrom,
		BgGradientTo:   profile.BgGradientTo,
		BgWallpaper:    profile.BgWallpaper,
		BgImage:        profile.BgImage,
		BgEffects:      profile.BgEffects,
		BgPattern:      profile.BgPattern,
		CardTexture:    profile.CardTexture,
		IsPublished:    profile.IsPublished,
		Links:          make([]editor.Link, 0, len(profileLinks)),
		Socials:        make([]editor.Social, 0, len(socials)),
	}

	for _, l := range profileLinks {
		snapshot.Links = append(snapshot.Links, editor.Link{
			ID:          formatID(l.ID),
			Title:       l.Title,
			URL:         l.URL,
			Icon:        l.Icon,
			Description: l.Description,
			MediaURL:    l.MediaURL,
			MediaType:   l.MediaType,
			IsActive:    l.IsActive,
		})
	}
	for _, s := range socials {
		snapshot.Socials = append(snapshot.Socials, editor.Social{
			ID:       formatID(s.ID),
			Platform: s.Platform,
			URL:      s.URL,
		})
	}
	return snapshot, nil
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func parseID(id string) (uint, error) {
	parsed, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed entity id %q: %w", id, err)
	}
	return uint(parsed), nil
}

// hydratedStore loads the profile, builds the server snapshot and runs
// reconciliation against any persisted draft.
func hydratedStore(ctx *cartridge.Context, profile *profiles.Profile) (*editor.Store, error) {
	db := ctx.DB()
	snapshot, err := serverSnapshot(db, profile)
	if err != nil {
		return nil, err
	}
	store := editor.NewStore(editor.NewDBDraftStorage(db), profile.ID)
	if err := store.Hydrate(snapshot); err != nil {
		return nil, err
	}
	return store, nil
}

func editorStateJSON(store *editor.Store) fiber.Map {
	return fiber.Map{
		"state":    store.State(),
		"is_dirty": store.IsDirty(),
		"draft":    store.Draft(),
		"original": store.Original(),
	}
}

// EditorHydrateAction loads the server snapshot, reconciles the persisted
// draft against it and returns the resulting editor state. A conflict
// means the client should prompt keep-or-discard.
func EditorHydrateAction(ctx *cartridge.Context) error {
	profile, err := currentProfile(ctx)
	if err != nil {
		return err
	}
	store, err := hydratedStore(ctx, profile)
	if err != nil {
		ctx.Logger.Error("Editor hydration failed", slog.Any("error", err))
		return errorJSON(ctx, fiber.StatusInternalServerError, "failed to load editor state")
	}
	return ctx.JSON(editorStateJSON(store))
}

// EditorUpdateDraftAction replaces the working draft and persists it.
func EditorUpdateDraftAction(ctx *cartridge.Context) error {
	profile, err := currentProfile(ctx)
	if err != nil {
		return err
	}

	var draft editor.Profile
	if err := ctx.BodyParser(&draft); err != nil {
		return errorJSON(ctx, fiber.StatusBadRequest, "invalid draft payload")
	}
	if draft.ProfileID != formatID(profile.ID) {
		return errorJSON(ctx, fiber.StatusUnprocessableEntity, "draft belongs to a different profile")
	}

	store, err := hydratedStore(ctx, profile)
	if err != nil {
		ctx.Logger.Error("Editor hydration failed", slog.Any("error", err))
		return errorJSON(ctx, fiber.StatusInternalServerError, "failed to load editor state")
	}
	if err := store.UpdateDraft(draft); err != nil {
		ctx.Logger.Error("Draft update failed", slog.Any("error", err))
		return errorJSON(ctx, fiber.StatusInternalServerError, "failed to persist draft")
	}
	return ctx.JSON(editorStateJSON(store))
}

// EditorSaveAction runs the ordered save protocol for the current draft.
// The request body may carry a fresher draft, which is adopted before
// saving. A conflicted draft must be resolved first.
func EditorSaveAction(ctx *cartridge.Context) error {
	profile, err := currentProfile(ctx)
	if err != nil {
		return err
	}

	store, err := hydratedStore(ctx, profile)
	if err != nil {
		ctx.Logger.Error("Editor hydration failed", slog.Any("error", err))
		return errorJSON(ctx, fiber.StatusInternalServerError, "failed to load editor state")
	}

	if len(ctx.Body()) > 0 {
		var draft editor.Profile
		if err := ctx.BodyParser(&draft); err != nil {
			return errorJSON(ctx, fiber.StatusBadRequest, "invalid draft payload")
		}
		if draft.ProfileID != formatID(profile.ID) {
			return errorJSON(ctx, fiber.StatusUnprocessableEntity, "draft belongs to a different profile")
		}
		if err := store.UpdateDraft(draft); err != nil {
			ctx.Logger.Error("Draft update failed", slog.Any("error", err))
			return errorJSON(ctx, fiber.StatusInternalServerError, "failed to persist draft")
		}
	} else if store.State() == editor.StateConflict {
		return errorJSON(ctx, fiber.StatusConflict, "draft conflicts with server state, resolve it first")
	}

	actions := &saveActions{db: ctx.DB(), profileID: profile.ID}
	if err := store.Save(actions); err != nil {
		var stepError *editor.StepError
		if errors.As(err, &stepError) {
			var validationError *links.ValidationError
			if errors.As(stepError.Err, &validationError) {
				return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
					"error":  "validation failed",
					"step":   stepError.Step,
					"fields": validationError.Fields,
				})
			}
			ctx.Logger.Error("Save step failed",
				slog.String("step", stepError.Step),
				slog.Any("error", stepError.Err))
			return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "save failed",
				"step":  stepError.Step,
			})
		}
		ctx.Logger.Error("Save failed", slog.Any("error", err))
		return errorJSON(ctx, fiber.StatusInternalServerError, "save failed")
	}

	return ctx.JSON(editorStateJSON(store))
}

// EditorDiscardAction throws away the draft in favor of the server copy.
func EditorDiscardAction(ctx *cartridge.Context) error {
	profile, err := currentProfile(ctx)
	if err != nil {
		return err
	}
	store, err := hydratedStore(ctx, profile)
	if err != nil {
		ctx.Logger.Error("Editor hydration failed", slog.Any("error", err))
		return errorJSON(ctx, fiber.StatusInternalServerError, "failed to load editor state")
	}
	if err := store.DiscardChanges(); err != nil {
		ctx.Logger.Error("Draft discard failed", slog.Any("error", err))
		return errorJSON(ctx, fiber.StatusInternalServerError, "failed to discard draft")
	}
	return ctx.JSON(editorStateJSON(store))
}

// EditorKeepDraftAction resolves a conflict in favor of the local edits.
func EditorKeepDraftAction(ctx *cartridge.Context) error {
	profile, err := currentProfile(ctx)
	if err != nil {
		return err
	}
	store, err := hydratedStore(ctx, profile)
	if err != nil {
		ctx.Logger.Error("Editor hydration failed", slog.Any("error", err))
		return errorJSON(ctx, fiber.StatusInternalServerError, "failed to load editor state")
	}
	if err := store.KeepDraft(); err != nil {
		return errorJSON(ctx, fiber.StatusInternalServerError, "failed to keep draft")
	}
	return ctx.JSON(editorStateJSON(store))
}

// saveActions adapts the profile, link and social persistence functions
// to the save protocol. All operations stay scoped to one profile.
type saveActions struct {
	db        *gorm.DB
	profileID uint
}

func (a *saveActions) UpdateProfile(changes editor.ProfileChanges) error {
	update := profiles.ScalarUpdate{
		DisplayName:    changes.DisplayName,
		Bio:            changes.Bio,
		AvatarURL:      changes.AvatarURL,
		Layout:         changes.Layout,
		Theme:          changes.Theme,
		BgType:         changes.BgType,
		BgColor:        changes.BgColor,
		BgGradientFrom: changes.BgGradientFrom,
		BgGradientTo:   changes.BgGradientTo,
		BgWallpaper:    changes.BgWallpaper,
		BgImage:        changes.BgImage,
		BgEffects:      changes.BgEffects,
		BgPattern:      changes.BgPattern,
		CardTexture:    changes.CardTexture,
		IsPublished:    changes.IsPublished,
	}
	return profiles.UpdateScalars(a.db, a.profileID, update)
}

func (a *saveActions) CreateLink(link editor.Link) (string, error) {
	created, err := links.CreateLink(a.db, a.profileID, links.CreateLinkInput{
		Title:       link.Title,
		URL:         link.URL,
		Icon:        link.Icon,
		Description: link.Description,
		MediaURL:    link.MediaURL,
		MediaType:   link.MediaType,
		IsActive:    link.IsActive,
	})
	if err != nil {
		return "", err
	}
	return formatID(created.ID), nil
}

func (a *saveActions) UpdateLink(link editor.Link) error {
	id, err := parseID(link.ID)
	if err != nil {
		return err
	}
	return links.UpdateLink(a.db, a.profileID, id, links.UpdateLinkInput{
		Title:       link.Title,
		URL:         link.URL,
		Icon:        link.Icon,
		Description: link.Description,
		MediaURL:    link.MediaURL,
		MediaType:   link.MediaType,
		IsActive:    link.IsActive,
	})
}

func (a *saveActions) DeleteLink(id string) error {
	parsed, err := parseID(id)
	if err != nil {
		return err
	}
	return links.DeleteLinks(a.db, a.profileID, []uint{parsed})
}

func (a *saveActions) ReorderLinks(orderedIDs []string) error {
	ids, err := parseIDs(orderedIDs)
	if err != nil {
		return err
	}
	return links.ReorderLinks(a.db, a.profileID, ids)
}

func (a *saveActions) CreateSocial(social editor.Social) (string, error) {
	created, err := links.CreateSocialLink(a.db, a.profileID, links.SocialLinkInput{
		Platform: social.Platform,
		URL:      social.URL,
	})
	if err != nil {
		return "", err
	}
	return formatID(created.ID), nil
}

func (a *saveActions) UpdateSocial(social editor.Social) error {
	id, err := parseID(social.ID)
	if err != nil {
		return err
	}
	return links.UpdateSocialLink(a.db, a.profileID, id, links.SocialLinkInput{
		Platform: social.Platform,
		URL:      social.URL,
	})
}

func (a *saveActions) DeleteSocial(id string) error {
	parsed, err := parseID(id)
	if err != nil {
		return err
	}
	return links.DeleteSocialLinks(a.db, a.profileID, []uint{parsed})
}

func (a *saveActions) ReorderSocials(orderedIDs []string) error {
	ids, err := parseIDs(orderedIDs)
	if err != nil {
		return err
	}
	return links.ReorderSocialLinks(a.db, a.profileID, ids)
}

func parseIDs(ids []string) ([]uint, error) {
	parsed := make([]uint, len(ids))
	for i, id := range ids {
		p, err := parseID(id)
		if err != nil {
			return nil, err
		}
		parsed[i] = p
	}
	return parsed, nil
}
