package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lottoworks/storesync-worker/internal/models"
)

type SyncRunRepository struct {
	db *gorm.DB
}

func NewSyncRunRepository(db *gorm.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

// Open creates a new run in the running state and returns it.
func (r *SyncRunRepository) Open(ctx context.Context, storeID, direction string) (*models.SyncRun, error) {
	run := models.SyncRun{
		ID:        uuid.New().String(),
		StoreID:   storeID,
		Direction: direction,
		Status:    models.RunStatusRunning,
		StartedAt: time.Now(),
	}
	result := r.db.WithContext(ctx).Create(&run)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to open sync run: %w", result.Error)
	}
	return &run, nil
}

// Close finalizes a run with its aggregate counts and terminal status.
func (r *SyncRunRepository) Close(ctx context.Context, runID string, sent, succeeded, failed int, status models.SyncRunStatus) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.SyncRun{}).
		Where("id = ?", runID).
		Updates(map[string]interface{}{
			"status":            status,
			"records_sent":      sent,
			"records_succeeded": succeeded,
			"records_failed":    failed,
			"completed_at":      &now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to close sync run: %w", result.Error)
	}
	return nil
}

// MarkFailed finalizes a run that could not complete its cycle.
func (r *SyncRunRepository) MarkFailed(ctx context.Context, runID, message string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.SyncRun{}).
		Where("id = ?", runID).
		Updates(map[string]interface{}{
			"status":        models.RunStatusFailed,
			"error_message": message,
			"completed_at":  &now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark sync run failed: %w", result.Error)
	}
	return nil
}

// ResetStale fails any run left in the running state longer than the
// threshold. A prior crash must not leave a run permanently "running".
func (r *SyncRunRepository) ResetStale(ctx context.Context, storeID string, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.SyncRun{}).
		Where("store_id = ? AND status = ? AND started_at < ?", storeID, models.RunStatusRunning, cutoff).
		Updates(map[string]interface{}{
			"status":        models.RunStatusFailed,
			"error_message": "run abandoned: worker restarted while run was in progress",
			"completed_at":  &now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to reset stale runs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
