package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DraftStorage is the durable client-draft store. Load returns nil with
// no error when no draft exists for the profile.
type DraftStorage interface {
	Load(profileID uint) (*Profile, error)
	Save(profileID uint, draft *Profile) error
	Clear(profileID uint) error
}

// EditorDraft is the persisted draft row. Only the draft is stored; the
// original is always refetched from the live tables.
type EditorDraft struct {
	Key       string `gorm:"primaryKey"`
	Payload   string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func draftKey(profileID uint) string {
	return fmt.Sprintf("editor_draft:%d", profileID)
}

// DBDraftStorage persists drafts in the editor_drafts table.
type DBDraftStorage struct {
	db *gorm.DB
}

func NewDBDraftStorage(db *gorm.DB) *DBDraftStorage {
	return &DBDraftStorage{db: db}
}

func (s *DBDraftStorage) Load(profileID uint) (*Profile, error) {
	var row EditorDraft
	err := s.db.Where("key = ?", draftKey(profileID)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading editor draft: %w", err)
	}

	var draft Profile
	if err := json.Unmarshal([]byte(row.Payload), &draft); err != nil {
		// An undecodable draft is as good as no draft.
		return nil, nil
	}
	return &draft, nil
}

func (s *DBDraftStorage) Save(profileID uint, draft *Profile) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("error encoding editor draft: %w", err)
	}
	row := EditorDraft{Key: draftKey(profileID), Payload: string(payload)}
	return sqlite.PerformWrite(slog.Default(), s.db, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).Create(&row).Error
	})
}

func (s *DBDraftStorage) Clear(profileID uint) error {
	return sqlite.PerformWrite(slog.Default(), s.db, func(tx *gorm.DB) error {
		return tx.Where("key = ?", draftKey(profileID)).Delete(&EditorDraft{}).Error
	})
}

// MemoryDraftStorage keeps drafts in a map. Test use only.
type MemoryDraftStorage struct {
	drafts map[uint]Profile
}

func NewMemoryDraftStorage() *MemoryDraftStorage {
	return &MemoryDraftStorage{drafts: make(map[uint]Profile)}
}

func (s *MemoryDraftStorage) Load(profileID uint) (*Profile, error) {
	draft, ok := s.drafts[profileID]
	if !ok {
		return nil, nil
	}
	clone := draft.Clone()
	return &clone, nil
}

func (s *MemoryDraftStorage) Save(profileID uint, draft *Profile) error {
	s.drafts[profileID] = draft.Clone()
	return nil
}

func (s *MemoryDraftStorage) Clear(profileID uint) error {
	delete(s.drafts, profileID)
	return nil
}
