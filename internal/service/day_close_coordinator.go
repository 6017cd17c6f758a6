package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lottoworks/storesync-worker/internal/cloud"
	"github.com/lottoworks/storesync-worker/internal/models"
)

// DaySource resolves local business-day records.
type DaySource interface {
	GetByID(ctx context.Context, dayID models.LocalDayID) (*models.Day, error)
}

// Day close operation types carried in the payload.
const (
	dayCloseOpPrepare = "prepare"
	dayCloseOpCommit  = "commit"
	dayCloseOpCancel  = "cancel"
)

// DayCloseCoordinator drives the two-phase day close:
// OPEN -> (prepare) -> PENDING_CLOSE -> (commit) -> CLOSED, with cancel as
// the abort path back to OPEN. The cloud is the authority on whether the
// day may close and what its canonical id is, so prepare resolves the
// local day id to the cloud id through a status pull by business date and
// never sends the local id. Commit and cancel carry the cloud id captured
// from the prepare response.
type DayCloseCoordinator struct {
	days   DaySource
	client CloudClient
	logger *zap.Logger
}

func NewDayCloseCoordinator(days DaySource, client CloudClient, logger *zap.Logger) *DayCloseCoordinator {
	return &DayCloseCoordinator{days: days, client: client, logger: logger}
}

func (c *DayCloseCoordinator) Push(ctx context.Context, items []models.QueueItem) []PushResult {
	results := make([]PushResult, 0, len(items))
	for _, item := range items {
		results = append(results, c.pushOne(ctx, item))
	}
	return results
}

func (c *DayCloseCoordinator) pushOne(ctx context.Context, item models.QueueItem) PushResult {
	opType, ok := payloadString(item.Payload, "operation_type")
	if !ok {
		return failed(item.ID, missingFieldsError("day close", []string{"operation_type"}))
	}

	switch opType {
	case dayCloseOpPrepare:
		return c.prepare(ctx, item)
	case dayCloseOpCommit:
		return c.commit(ctx, item)
	case dayCloseOpCancel:
		return c.cancel(ctx, item)
	default:
		return failed(item.ID, fmt.Sprintf("day close payload has unknown operation_type %q", opType))
	}
}

func (c *DayCloseCoordinator) prepare(ctx context.Context, item models.QueueItem) PushResult {
	var missing []string

	localID, ok := payloadString(item.Payload, "day_id")
	if !ok {
		missing = append(missing, "day_id")
	}
	storeID, ok := payloadString(item.Payload, "store_id")
	if !ok {
		missing = append(missing, "store_id")
	}
	closings, ok := item.Payload["pack_closings"].([]interface{})
	if !ok {
		missing = append(missing, "pack_closings")
	}

	if len(missing) > 0 {
		return failed(item.ID, missingFieldsError("day close prepare", missing))
	}

	// The payload day id is local. Resolve it to the business date, then
	// pull the cloud's record for that date to learn the canonical id.
	day, err := c.days.GetByID(ctx, models.LocalDayID(localID))
	if err != nil {
		return failed(item.ID, fmt.Sprintf("day lookup failed: %v", err))
	}

	status, err := c.client.GetDayStatus(ctx, storeID, day.BusinessDate)
	if err != nil {
		return failed(item.ID, fmt.Sprintf("day id resolution failed: %v", err))
	}

	c.logger.Info("resolved day for close prepare",
		zap.String("local_day_id", localID),
		zap.String("business_date", day.BusinessDate),
		zap.String("cloud_day_id", string(status.DayID)))

	result, err := c.client.PrepareDayClose(ctx, cloud.DayClosePrepareRequest{
		DayID:        status.DayID,
		StoreID:      storeID,
		PackClosings: closings,
	})
	return outcome(item.ID, result, err)
}

func (c *DayCloseCoordinator) commit(ctx context.Context, item models.QueueItem) PushResult {
	cloudID, ok := payloadString(item.Payload, "cloud_day_id")
	if !ok {
		// No resolution path exists for a commit: the cloud id comes from
		// the prepare response or not at all.
		return failed(item.ID, "day close commit missing resolved cloud_day_id (day was never prepared)")
	}
	closedBy, ok := payloadString(item.Payload, "closed_by")
	if !ok {
		return failed(item.ID, missingFieldsError("day close commit", []string{"closed_by"}))
	}

	result, err := c.client.CommitDayClose(ctx, cloud.DayCloseCommitRequest{
		DayID:    models.CloudDayID(cloudID),
		ClosedBy: closedBy,
	})
	if err == nil && result.OK() && result.Data != nil {
		// The closed-day summary is audit context only; it is forwarded
		// to the log, never re-validated.
		c.logger.Info("day close committed",
			zap.String("cloud_day_id", cloudID),
			zap.Any("summary", result.Data))
	}
	return outcome(item.ID, result, err)
}

func (c *DayCloseCoordinator) cancel(ctx context.Context, item models.QueueItem) PushResult {
	var missing []string

	cloudID, ok := payloadString(item.Payload, "cloud_day_id")
	if !ok {
		return failed(item.ID, "day close cancel missing resolved cloud_day_id (day was never prepared)")
	}
	reason, ok := payloadString(item.Payload, "reason")
	if !ok {
		missing = append(missing, "reason")
	}
	cancelledBy, ok := payloadString(item.Payload, "cancelled_by")
	if !ok {
		missing = append(missing, "cancelled_by")
	}

	if len(missing) > 0 {
		return failed(item.ID, missingFieldsError("day close cancel", missing))
	}

	result, err := c.client.CancelDayClose(ctx, cloud.DayCloseCancelRequest{
		DayID:       models.CloudDayID(cloudID),
		Reason:      reason,
		CancelledBy: cancelledBy,
	})
	return outcome(item.ID, result, err)
}
