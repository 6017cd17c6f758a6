package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lottoworks/storesync-worker/internal/models"
)

type QueueItemRepository struct {
	db *gorm.DB
}

func NewQueueItemRepository(db *gorm.DB) *QueueItemRepository {
	return &QueueItemRepository{db: db}
}

// GetRetryable retrieves non-synced items that still have retry budget,
// highest priority first, ties broken oldest first.
func (r *QueueItemRepository) GetRetryable(ctx context.Context, storeID string, limit int) ([]models.QueueItem, error) {
	var items []models.QueueItem
	result := r.db.WithContext(ctx).
		Where("store_id = ? AND synced = ? AND sync_attempts < max_attempts", storeID, false).
		Order("priority DESC, created_at ASC").
		Limit(limit).
		Find(&items)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query retryable items: %w", result.Error)
	}
	return items, nil
}

// Create enqueues a new item. Ingestion and the day lifecycle go through
// this; the engine itself never creates items.
func (r *QueueItemRepository) Create(ctx context.Context, item models.QueueItem) error {
	if item.MaxAttempts <= 0 {
		item.MaxAttempts = models.DefaultMaxAttempts
	}
	result := r.db.WithContext(ctx).Create(&item)
	if result.Error != nil {
		return fmt.Errorf("failed to create queue item: %w", result.Error)
	}
	return nil
}

// MarkSynced marks an item terminally successful, optionally recording the
// endpoint and status the cloud answered with.
func (r *QueueItemRepository) MarkSynced(ctx context.Context, itemID string, apiCtx *models.APIContext) error {
	now := time.Now()
	updates := map[string]interface{}{
		"synced":          true,
		"synced_at":       &now,
		"last_sync_error": nil,
		"updated_at":      now,
	}
	if apiCtx != nil {
		updates["api_endpoint"] = apiCtx.Endpoint
		updates["api_status_code"] = apiCtx.StatusCode
	}

	result := r.db.WithContext(ctx).Model(&models.QueueItem{}).
		Where("id = ?", itemID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to mark item synced: %w", result.Error)
	}
	return nil
}

// IncrementAttempts records a failed attempt with its error. The increment
// happens in the store so concurrent readers never see a torn write.
func (r *QueueItemRepository) IncrementAttempts(ctx context.Context, itemID string, syncErr string, apiCtx *models.APIContext) error {
	now := time.Now()
	updates := map[string]interface{}{
		"sync_attempts":   gorm.Expr("sync_attempts + 1"),
		"last_sync_error": syncErr,
		"last_attempt_at": &now,
		"updated_at":      now,
	}
	if apiCtx != nil {
		updates["api_endpoint"] = apiCtx.Endpoint
		updates["api_status_code"] = apiCtx.StatusCode
	}

	result := r.db.WithContext(ctx).Model(&models.QueueItem{}).
		Where("id = ?", itemID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to increment attempts: %w", result.Error)
	}
	return nil
}

// Counts returns the aggregate queue snapshot. Queued and Failed are
// computed with mutually exclusive predicates so they always partition
// Pending exactly.
func (r *QueueItemRepository) Counts(ctx context.Context, storeID string) (*models.QueueCounts, error) {
	counts := &models.QueueCounts{}

	err := r.db.WithContext(ctx).Model(&models.QueueItem{}).
		Where("store_id = ? AND synced = ?", storeID, false).
		Count(&counts.Pending).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count pending items: %w", err)
	}

	err = r.db.WithContext(ctx).Model(&models.QueueItem{}).
		Where("store_id = ? AND synced = ? AND sync_attempts < max_attempts", storeID, false).
		Count(&counts.Queued).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count queued items: %w", err)
	}

	err = r.db.WithContext(ctx).Model(&models.QueueItem{}).
		Where("store_id = ? AND synced = ? AND sync_attempts >= max_attempts", storeID, false).
		Count(&counts.Failed).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count failed items: %w", err)
	}

	startOfDay := time.Now().Truncate(24 * time.Hour)
	err = r.db.WithContext(ctx).Model(&models.QueueItem{}).
		Where("store_id = ? AND synced = ? AND synced_at >= ?", storeID, true, startOfDay).
		Count(&counts.SyncedToday).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count synced today: %w", err)
	}

	var oldest models.QueueItem
	result := r.db.WithContext(ctx).
		Where("store_id = ? AND synced = ?", storeID, false).
		Order("created_at ASC").
		Limit(1).
		Find(&oldest)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find oldest pending item: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		t := oldest.CreatedAt
		counts.OldestPendingAt = &t
	}

	return counts, nil
}

// CleanupSynced deletes synced items older than the cutoff and reports how
// many were removed. Dead items are never cleaned up here.
func (r *QueueItemRepository) CleanupSynced(ctx context.Context, storeID string, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("store_id = ? AND synced = ? AND synced_at < ?", storeID, true, olderThan).
		Delete(&models.QueueItem{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to cleanup synced items: %w", result.Error)
	}
	return result.RowsAffected, nil
}
