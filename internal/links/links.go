package links

import (
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

// Media types a link can embed.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Link is one entry on a profile page. Ordering is by position with ID as
// the tie-break, so equal positions resolve in insertion order.
type Link struct {
	ID          uint `gorm:"primaryKey"`
	ProfileID   uint `gorm:"index"`
	Title       string
	URL         string
	Icon        string
	Description string
	MediaURL    string
	MediaType   string
	Position    int
	IsActive    bool
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// SocialLink is a platform icon shown on the profile header.
type SocialLink struct {
	ID        uint `gorm:"primaryKey"`
	ProfileID uint `gorm:"index"`
	Platform  string
	URL       string
	Position  int
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// ListByProfile returns all links of a profile in display order.
func ListByProfile(db *gorm.DB, profileID uint) ([]Link, error) {
	var items []Link
	err := db.Where("profile_id = ?", profileID).
		Order("position ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListActiveByProfile returns the publicly visible links of a profile in
// display order.
func ListActiveByProfile(db *gorm.DB, profileID uint) ([]Link, error) {
	var items []Link
	err := db.Where("profile_id = ? AND is_active = ?", profileID, true).
		Order("position ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListIDsByProfile returns the IDs of a profile's links.
func ListIDsByProfile(db *gorm.DB, profileID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&Link{}).
		Where("profile_id = ?", profileID).
		Order("position ASC, id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// FindByID retrieves a single link.
func FindByID(db *gorm.DB, id uint) (*Link, error) {
	var link Link
	if err := db.First(&link, id).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// CreateLink validates and persists a new link for a profile.
func CreateLink(db *gorm.DB, profileID uint, input CreateLinkInput) (*Link, error) {
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	link := Link{
		ProfileID:   profileID,
		Title:       input.Title,
		URL:         input.URL,
		Icon:        input.Icon,
		Description: input.Description,
		MediaURL:    input.MediaURL,
		MediaType:   input.MediaType,
		Position:    input.Position,
		IsActive:    input.IsActive,
	}

	logger := slog.Default()
	err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(&link).Error
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// UpdateLink validates and applies changes to an existing link. A link ID
// that no longer exists under this profile is a success no-op: the row is
// already gone, the desired end state cannot be restored by failing.
func UpdateLink(db *gorm.DB, profileID, linkID uint, input UpdateLinkInput) error {
	if err := ValidateInput(input); err != nil {
		return err
	}

	logger := slog.Default()
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Model(&Link{}).
			Where("id = ? AND profile_id = ?", linkID, profileID).
			Updates(map[string]any{
				"title":       input.Title,
				"url":         input.URL,
				"icon":        input.Icon,
				"description": input.Description,
				"media_url":   input.MediaURL,
				"media_type":  input.MediaType,
				"is_active":   input.IsActive,
			}).Error
	})
}

// DeleteLinks removes a set of links scoped to one profile. IDs that are
// already gone are silently skipped.
func DeleteLinks(db *gorm.DB, profileID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	logger := slog.Default()
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Where("profile_id = ? AND id IN ?", profileID, ids).
			Delete(&Link{}).Error
	})
}

// ReorderLinks rewrites the position column so it matches the given ID
// sequence (position = slice index). Runs in a single transaction; IDs not
// owned by the profile are ignored.
func ReorderLinks(db *gorm.DB, profileID uint, orderedIDs []uint) error {
	if len(orderedIDs) == 0 {
		return nil
	}
	logger := slog.Default()
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		for position, id := range orderedIDs {
			err := tx.Model(&Link{}).
				Where("id = ? AND profile_id = ?", id, profileID).
				Update("position", position).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ListSocialsByProfile returns a profile's social links in display order.
func ListSocialsByProfile(db *gorm.DB, profileID uint) ([]SocialLink, error) {
	var items []SocialLink
	err := db.Where("profile_id = ?", profileID).
		Order("position ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CreateSocialLink validates and persists a new social link.
func CreateSocialLink(db *gorm.DB, profileID uint, input SocialLinkInput) (*SocialLink, error) {
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	social := SocialLink{
		ProfileID: profileID,
		Platform:  input.Platform,
		URL:       input.URL,
		Position:  input.Position,
	}

	logger := slog.Default()
	err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(&social).Error
	})
	if err != nil {
		return nil, err
	}
	return &social, nil
}

// UpdateSocialLink applies changes to an existing social link. Vanished
// IDs are a success no-op, same as UpdateLink.
func UpdateSocialLink(db *gorm.DB, profileID, socialID uint, input SocialLinkInput) error {
	if err := ValidateInput(input); err != nil {
		return err
	}

	logger := slog.Default()
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Model(&SocialLink{}).
			Where("id = ? AND profile_id = ?", socialID, profileID).
			Updates(map[string]any{
				"platform": input.Platform,
				"url":      input.URL,
			}).Error
	})
}

// DeleteSocialLinks removes a set of social links scoped to one profile.
func DeleteSocialLinks(db *gorm.DB, profileID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	logger := slog.Default()
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Where("profile_id = ? AND id IN ?", profileID, ids).
			Delete(&SocialLink{}).Error
	})
}

// ReorderSocialLinks rewrites social link positions to match the given ID
// sequence.
func ReorderSocialLinks(db *gorm.DB, profileID uint, orderedIDs []uint) error {
	if len(orderedIDs) == 0 {
		return nil
	}
	logger := slog.Default()
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		for position, id := range orderedIDs {
			err := tx.Model(&SocialLink{}).
				Where("id = ? AND profile_id = ?", id, profileID).
				Update("position", position).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
