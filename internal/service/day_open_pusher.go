package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/lottoworks/storesync-worker/internal/cloud"
	"github.com/lottoworks/storesync-worker/internal/models"
)

// DayOpenPusher is the single-phase push for opening a business day.
// Anonymous opens are rejected locally; notes are omitted when absent
// rather than null-padded.
type DayOpenPusher struct {
	client CloudClient
	logger *zap.Logger
}

func NewDayOpenPusher(client CloudClient, logger *zap.Logger) *DayOpenPusher {
	return &DayOpenPusher{client: client, logger: logger}
}

func (p *DayOpenPusher) Push(ctx context.Context, items []models.QueueItem) []PushResult {
	results := make([]PushResult, 0, len(items))
	for _, item := range items {
		results = append(results, p.pushOne(ctx, item))
	}
	return results
}

func (p *DayOpenPusher) pushOne(ctx context.Context, item models.QueueItem) PushResult {
	var missing []string

	dayID, ok := payloadString(item.Payload, "day_id")
	if !ok {
		missing = append(missing, "day_id")
	}
	storeID, ok := payloadString(item.Payload, "store_id")
	if !ok {
		missing = append(missing, "store_id")
	}
	businessDate, ok := payloadString(item.Payload, "business_date")
	if !ok {
		missing = append(missing, "business_date")
	}
	openedBy, ok := payloadString(item.Payload, "opened_by")
	if !ok {
		missing = append(missing, "opened_by")
	}
	openedAt, ok := payloadString(item.Payload, "opened_at")
	if !ok {
		missing = append(missing, "opened_at")
	}

	if len(missing) > 0 {
		return failed(item.ID, missingFieldsError("day open", missing))
	}

	req := cloud.DayOpenRequest{
		DayID:        dayID,
		StoreID:      storeID,
		BusinessDate: businessDate,
		OpenedBy:     openedBy,
		OpenedAt:     openedAt,
		Notes:        payloadOptString(item.Payload, "notes"),
	}

	result, err := p.client.OpenDay(ctx, req)
	return outcome(item.ID, result, err)
}
