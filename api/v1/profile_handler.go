package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/cache"
	"gorm.io/gorm"
	"log/slog"

	"linkdeck/internal/links"
	"linkdeck/internal/profiles"
)

// PublicLink is one visible link on a public profile page.
type PublicLink struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
	MediaURL    string `json:"media_url,omitempty"`
	MediaType   string `json:"media_type,omitempty"`
}

// PublicSocial is one social link on a public profile page.
type PublicSocial struct {
	ID       string `json:"id"`
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// PublicProfile is the payload served for a published profile.
type PublicProfile struct {
	Username       string         `json:"username"`
	DisplayName    string         `json:"display_name"`
	Bio            string         `json:"bio,omitempty"`
	AvatarURL      string         `json:"avatar_url,omitempty"`
	Layout         string         `json:"layout"`
	Theme          string         `json:"theme"`
	BgType         string         `json:"bg_type"`
	BgColor        string         `json:"bg_color,omitempty"`
	BgGradientFrom string         `json:"bg_gradient_from,omitempty"`
	BgGradientTo   string         `json:"bg_gradient_to,omitempty"`
	BgWallpaper    string         `json:"bg_wallpaper,omitempty"`
	BgImage        string         `json:"bg_image,omitempty"`
	BgEffects      json.RawMessage `json:"bg_effects,omitempty"`
	BgPattern      json.RawMessage `json:"bg_pattern,omitempty"`
	CardTexture    string         `json:"card_texture,omitempty"`
	Links          []PublicLink   `json:"links"`
	Socials        []PublicSocial `json:"socials"`
}

// ErrProfileNotPublic hides unpublished and missing profiles behind one
// answer.
var ErrProfileNotPublic = errors.New("profile not public")

// profileCache holds rendered public payloads for a minute. Edits become
// visible when the entry expires; the editor does not reach over to
// invalidate it.
var profileCache *cache.Cache[string, []byte]

func loadProfileCache(dbConn *gorm.DB, logger *slog.Logger) {
	fetchFunc := func(username string) ([]byte, error) {
		payload, err := buildPublicProfile(dbConn, username)
		if err != nil {
			return nil, err
		}
		return json.Marshal(payload)
	}
	profileCache = cache.NewCache[string, []byte](logger, time.Minute, fetchFunc)
}

// PurgeProfileCache drops all cached public payloads.
func PurgeProfileCache() {
	if profileCache != nil {
		profileCache.Clear()
	}
}

func buildPublicProfile(db *gorm.DB, username string) (*PublicProfile, error) {
	profile, err := profiles.FindPublishedByUsername(db, username)
	if err != nil {
		var notFound *profiles.ProfileNotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrProfileNotPublic
		}
		return nil, fmt.Errorf("error loading profile: %w", err)
	}

	activeLinks, err := links.ListActiveByProfile(db, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading links: %w", err)
	}
	socials, err := links.ListSocialsByProfile(db, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading social links: %w", err)
	}

	payload := &PublicProfile{
		Username:       profile.Username,
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
		CardTexture:    profile.CardTexture,
		Links:          make([]PublicLink, 0, len(activeLinks)),
		Socials:        make([]PublicSocial, 0, len(socials)),
	}
	if profile.BgEffects != "" {
		payload.BgEffects = json.RawMessage(profile.BgEffects)
	}
	if profile.BgPattern != "" {
		payload.BgPattern = json.RawMessage(profile.BgPattern)
	}

	for _, l := range activeLinks {
		payload.Links = append(payload.Links, PublicLink{
			ID:          strconv.FormatUint(uint64(l.ID), 10),
			Title:       l.Title,
			URL:         l.URL,
			Icon:        l.Icon,
			Description: l.Description,
			MediaURL:    l.MediaURL,
			MediaType:   l.MediaType,
		})
	}
	for _, s := range socials {
		payload.Socials = append(payload.Socials, PublicSocial{
			ID:       strconv.FormatUint(uint64(s.ID), 10),
			Platform: s.Platform,
			URL:      s.URL,
		})
	}
	return payload, nil
}

// GetPublicProfileHandler serves a published profile as JSON, cached and
// ETagged for cheap repeat loads.
func GetPublicProfileHandler(ctx *cartridge.Context) error {
	username := ctx.Ctx.Params("username")
	if username == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username required"})
	}

	if profileCache == nil {
		loadProfileCache(ctx.DB(), ctx.Logger)
	}

	payload, err := profileCache.Get(username)
	if err != nil {
		if errors.Is(err, ErrProfileNotPublic) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "profile not found"})
		}
		ctx.Logger.Error("Failed to build public profile",
			slog.String("username", username),
			slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	etag := generateETag(payload)
	if ctx.Get("If-None-Match") == etag {
		return ctx.SendStatus(fiber.StatusNotModified)
	}

	ctx.Ctx.Set("ETag", etag)
	ctx.Ctx.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Ctx.Set("Cache-Control", "public, max-age=60")
	return ctx.Ctx.Send(payload)
}
