package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/lottoworks/storesync-worker/internal/cloud"
	"github.com/lottoworks/storesync-worker/internal/models"
)

// ShiftPusher pushes closed shifts one at a time. Shifts ride at elevated
// priority so they land before the pack records that reference them.
type ShiftPusher struct {
	client CloudClient
	logger *zap.Logger
}

func NewShiftPusher(client CloudClient, logger *zap.Logger) *ShiftPusher {
	return &ShiftPusher{client: client, logger: logger}
}

func (p *ShiftPusher) Push(ctx context.Context, items []models.QueueItem) []PushResult {
	results := make([]PushResult, 0, len(items))
	for _, item := range items {
		results = append(results, p.pushOne(ctx, item))
	}
	return results
}

func (p *ShiftPusher) pushOne(ctx context.Context, item models.QueueItem) PushResult {
	var missing []string

	businessDate, ok := payloadString(item.Payload, "business_date")
	if !ok {
		missing = append(missing, "business_date")
	}
	shiftNumber, ok := payloadInt(item.Payload, "shift_number")
	if !ok {
		missing = append(missing, "shift_number")
	}
	openedAt, ok := payloadString(item.Payload, "opened_at")
	if !ok {
		missing = append(missing, "opened_at")
	}
	closedAt, ok := payloadString(item.Payload, "closed_at")
	if !ok {
		missing = append(missing, "closed_at")
	}
	status, ok := payloadString(item.Payload, "status")
	if !ok {
		missing = append(missing, "status")
	}

	if len(missing) > 0 {
		// Validation failures never reach the cloud.
		return failed(item.ID, missingFieldsError("shift", missing))
	}

	req := cloud.ShiftRequest{
		StoreID:      item.StoreID,
		ShiftID:      item.EntityID,
		BusinessDate: businessDate,
		ShiftNumber:  shiftNumber,
		OpenedAt:     openedAt,
		ClosedAt:     closedAt,
		Status:       status,
		OpenedBy:     payloadOptString(item.Payload, "opened_by"),
		ClosedBy:     payloadOptString(item.Payload, "closed_by"),
	}

	result, err := p.client.PushShift(ctx, req)
	if err == nil && result.AlreadyExists {
		p.logger.Debug("shift already known to cloud, treating as synced",
			zap.String("shift_id", item.EntityID))
	}
	return outcome(item.ID, result, err)
}
