package profiles

import (
	"fmt"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

// Background types
const (
	BgTypeColor     = "color"
	BgTypeGradient  = "gradient"
	BgTypeWallpaper = "wallpaper"
	BgTypeImage     = "image"
)

// Profile is the public page owned by a user. Background and layout
// settings are opaque to the server; BgEffects and BgPattern hold JSON
// documents the client renders.
type Profile struct {
	ID             uint   `gorm:"primaryKey"`
	UserID         uint   `gorm:"uniqueIndex"`
	Username       string `gorm:"uniqueIndex"`
	DisplayName    string
	Bio            string
	AvatarURL      string
	Layout         string
	Theme          string
	BgType         string
	BgColor        string
	BgGradientFrom string
	BgGradientTo   string
	BgWallpaper    string
	BgImage        string
	BgEffects      string `gorm:"type:text"`
	BgPattern      string `gorm:"type:text"`
	CardTexture    string
	IsPublished    bool
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// ProfileNotFoundError indicates that no profile matched the lookup.
type ProfileNotFoundError struct {
	Username string
	UserID   uint
}

func (e *ProfileNotFoundError) Error() string {
	if e.Username != "" {
		return fmt.Sprintf("profile not found: %s", e.Username)
	}
	return fmt.Sprintf("profile not found for user %d", e.UserID)
}

// FindByUsername retrieves a profile by its public username.
func FindByUsername(db *gorm.DB, username string) (*Profile, error) {
	var profile Profile
	if err := db.Where("username = ?", username).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &ProfileNotFoundError{Username: username}
		}
		return nil, err
	}
	return &profile, nil
}

// FindPublishedByUsername retrieves a published profile by username.
// Unpublished profiles are invisible on the public surface.
func FindPublishedByUsername(db *gorm.DB, username string) (*Profile, error) {
	var profile Profile
	err := db.Where("username = ? AND is_published = ?", username, true).First(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &ProfileNotFoundError{Username: username}
		}
		return nil, err
	}
	return &profile, nil
}

// FindByUserID retrieves the profile owned by a user.
func FindByUserID(db *gorm.DB, userID uint) (*Profile, error) {
	var profile Profile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &ProfileNotFoundError{UserID: userID}
		}
		return nil, err
	}
	return &profile, nil
}

// FindByID retrieves a profile by primary key.
func FindByID(db *gorm.DB, id uint) (*Profile, error) {
	var profile Profile
	if err := db.First(&profile, id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateProfile persists a new profile.
func CreateProfile(db *gorm.DB, profile *Profile) error {
	logger := slog.Default()
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(profile).Error
	})
}

// ScalarUpdate carries the profile-level field changes of one save cycle.
// Nil pointers mean "unchanged"; all set fields are written in a single
// combined update.
type ScalarUpdate struct {
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

// IsEmpty reports whether the update carries no changes.
func (u ScalarUpdate) IsEmpty() bool {
	return u.changes() == nil
}

func (u ScalarUpdate) changes() map[string]any {
	var m map[string]any
	set := func(col string, v any) {
		if m == nil {
			m = make(map[string]any)
		}
		m[col] = v
	}
	if u.DisplayName != nil {
		set("display_name", *u.DisplayName)
	}
	if u.Bio != nil {
		set("bio", *u.Bio)
	}
	if u.AvatarURL != nil {
		set("avatar_url", *u.AvatarURL)
	}
	if u.Layout != nil {
		set("layout", *u.Layout)
	}
	if u.Theme != nil {
		set("theme", *u.Theme)
	}
	if u.BgType != nil {
		set("bg_type", *u.BgType)
	}
	if u.BgColor != nil {
		set("bg_color", *u.BgColor)
	}
	if u.BgGradientFrom != nil {
		set("bg_gradient_from", *u.BgGradientFrom)
	}
	if u.BgGradientTo != nil {
		set("bg_gradient_to", *u.BgGradientTo)
	}
	if u.BgWallpaper != nil {
		set("bg_wallpaper", *u.BgWallpaper)
	}
	if u.BgImage != nil {
		set("bg_image", *u.BgImage)
	}
	if u.BgEffects != nil {
		set("bg_effects", *u.BgEffects)
	}
	if u.BgPattern != nil {
		set("bg_pattern", *u.BgPattern)
	}
	if u.CardTexture != nil {
		set("card_texture", *u.CardTexture)
	}
	if u.IsPublished != nil {
		set("is_published", *u.IsPublished)
	}
	return m
}

// UpdateScalars applies a combined field update to a profile. A profile
// that vanished between read and write reports ErrRecordNotFound.
func UpdateScalars(db *gorm.DB, profileID uint, update ScalarUpdate) error {
	changes := update.changes()
	if changes == nil {
		return nil
	}

	logger := slog.Default()
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		result := tx.Model(&Profile{}).Where("id = ?", profileID).Updates(changes)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
