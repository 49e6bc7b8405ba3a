package jobs

import (
	"log/slog"
	"time"

	"linkdeck/internal/clicks"
	"linkdeck/internal/config"
	"linkdeck/internal/database"
	"linkdeck/internal/editor"
)

// draftRetentionDays bounds how long an abandoned editor draft survives.
const draftRetentionDays = 30

// CleanupJob removes click events past the retention window and editor
// drafts nobody touched in a month.
type CleanupJob struct {
	dbManager *database.DBManager
	logger    *slog.Logger
	cfg       *config.Config
}

func NewCleanupJob(dbManager *database.DBManager, logger *slog.Logger, cfg *config.Config) *CleanupJob {
	return &CleanupJob{
		dbManager: dbManager,
		logger:    logger,
		cfg:       cfg,
	}
}

func (j *CleanupJob) Run() error {
	if err := j.cleanupClickEvents(); err != nil {
		return err
	}
	return j.cleanupStaleDrafts()
}

// cleanupClickEvents deletes events older than the retention period.
// This helps with GDPR data minimization and reduces storage usage.
func (j *CleanupJob) cleanupClickEvents() error {
	retentionDays := j.cfg.ClickRetentionDays
	db := j.dbManager.GetConnection()
	cutoffDate := time.Now().AddDate(0, 0, -retentionDays)

	j.logger.Info("Starting cleanup of old click events",
		slog.Int("retention_days", retentionDays),
		slog.Time("cutoff_date", cutoffDate))

	var countToDelete int64
	if err := db.Model(&clicks.ClickEvent{}).
		Where("clicked_at < ?", cutoffDate).
		Count(&countToDelete).Error; err != nil {
		j.logger.Error("Failed to count old click events", slog.Any("error", err))
		return err
	}

	if countToDelete == 0 {
		j.logger.Debug("No old click events to clean up")
		return nil
	}

	// Delete in batches to avoid locking the database for too long
	batchSize := 1000
	totalDeleted := int64(0)

	for {
		result := db.Where("clicked_at < ?", cutoffDate).
			Limit(batchSize).
			Delete(&clicks.ClickEvent{})

		if result.Error != nil {
			j.logger.Error("Failed to delete old click events",
				slog.Any("error", result.Error),
				slog.Int64("deleted_so_far", totalDeleted))
			return result.Error
		}

		totalDeleted += result.RowsAffected

		if result.RowsAffected < int64(batchSize) {
			break
		}

		// Small delay between batches to prevent database lock contention
		time.Sleep(100 * time.Millisecond)
	}

	j.logger.Info("Cleaned up old click events",
		slog.Int64("deleted_count", totalDeleted),
		slog.Int("retention_days", retentionDays))

	return nil
}

func (j *CleanupJob) cleanupStaleDrafts() error {
	db := j.dbManager.GetConnection()
	cutoffDate := time.Now().AddDate(0, 0, -draftRetentionDays)

	result := db.Where("updated_at < ?", cutoffDate).Delete(&editor.EditorDraft{})
	if result.Error != nil {
		j.logger.Error("Failed to delete stale editor drafts", slog.Any("error", result.Error))
		return result.Error
	}

	if result.RowsAffected > 0 {
		j.logger.Info("Cleaned up stale editor drafts",
			slog.Int64("deleted_count", result.RowsAffected))
	}
	return nil
}
