package service

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/lottoworks/storesync-worker/internal/cloud"
	"github.com/lottoworks/storesync-worker/internal/models"
)

func dayOpenItem(payload models.JSON) models.QueueItem {
	return models.QueueItem{
		ID:         "do-1",
		StoreID:    "store-1",
		EntityType: models.EntityDayOpen,
		EntityID:   "day-local-9",
		Operation:  models.OperationCreate,
		Payload:    payload,
	}
}

func validDayOpenPayload() models.JSON {
	return models.JSON{
		"day_id":        "day-local-9",
		"store_id":      "store-1",
		"business_date": "2026-08-31",
		"opened_by":     "user-1",
		"opened_at":     "2026-08-31T06:00:00Z",
	}
}

func TestDayOpenPusher_Success(t *testing.T) {
	var got cloud.DayOpenRequest
	mock := &mockCloudClient{
		openDayFunc: func(ctx context.Context, req cloud.DayOpenRequest) (*cloud.APIResult, error) {
			got = req
			return ok("/v1/days/open"), nil
		},
	}
	pusher := NewDayOpenPusher(mock, zap.NewNop())

	results := pusher.Push(context.Background(), []models.QueueItem{dayOpenItem(validDayOpenPayload())})

	if !results[0].Synced {
		t.Fatalf("expected success, got %q", results[0].Error)
	}
	if got.OpenedBy != "user-1" {
		t.Errorf("opened_by not forwarded: %q", got.OpenedBy)
	}
	if got.Notes != nil {
		t.Errorf("absent notes should stay omitted, got %v", got.Notes)
	}
}

func TestDayOpenPusher_AnonymousOpenRejected(t *testing.T) {
	payload := validDayOpenPayload()
	delete(payload, "opened_by")

	mock := &mockCloudClient{}
	pusher := NewDayOpenPusher(mock, zap.NewNop())

	results := pusher.Push(context.Background(), []models.QueueItem{dayOpenItem(payload)})

	if results[0].Synced {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(results[0].Error, "opened_by") {
		t.Errorf("error should name opened_by, got %q", results[0].Error)
	}
	if mock.callCount("OpenDay") != 0 {
		t.Error("cloud call attempted despite validation failure")
	}
}

func TestDayOpenPusher_NotesForwardedWhenPresent(t *testing.T) {
	payload := validDayOpenPayload()
	payload["notes"] = "till float counted twice"

	var got cloud.DayOpenRequest
	mock := &mockCloudClient{
		openDayFunc: func(ctx context.Context, req cloud.DayOpenRequest) (*cloud.APIResult, error) {
			got = req
			return ok("/v1/days/open"), nil
		},
	}
	pusher := NewDayOpenPusher(mock, zap.NewNop())

	results := pusher.Push(context.Background(), []models.QueueItem{dayOpenItem(payload)})

	if !results[0].Synced {
		t.Fatalf("expected success, got %q", results[0].Error)
	}
	if got.Notes == nil || *got.Notes != "till float counted twice" {
		t.Errorf("notes not forwarded: %v", got.Notes)
	}
}
