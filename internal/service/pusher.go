package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/lottoworks/storesync-worker/internal/cloud"
	"github.com/lottoworks/storesync-worker/internal/models"
)

// PushResult is the per-item outcome a pusher reports back to the engine.
// A failed result increments the item's attempt counter; it is never a
// terminal state by itself.
type PushResult struct {
	ItemID     string
	Synced     bool
	Error      string
	APIContext *models.APIContext
}

// Pusher handles one homogeneous batch of queue items for its entity type.
type Pusher interface {
	Push(ctx context.Context, items []models.QueueItem) []PushResult
}

// CloudClient is the slice of the cloud API the pushers consume.
type CloudClient interface {
	PushEmployees(ctx context.Context, storeID string, employees []cloud.EmployeeRecord) (*cloud.EmployeeBatchResult, error)
	PushShift(ctx context.Context, req cloud.ShiftRequest) (*cloud.APIResult, error)
	DepletePack(ctx context.Context, req cloud.PackDepleteRequest) (*cloud.APIResult, error)
	ReturnPack(ctx context.Context, req cloud.PackReturnRequest) (*cloud.APIResult, error)
	OpenDay(ctx context.Context, req cloud.DayOpenRequest) (*cloud.APIResult, error)
	PrepareDayClose(ctx context.Context, req cloud.DayClosePrepareRequest) (*cloud.APIResult, error)
	CommitDayClose(ctx context.Context, req cloud.DayCloseCommitRequest) (*cloud.APIResult, error)
	CancelDayClose(ctx context.Context, req cloud.DayCloseCancelRequest) (*cloud.APIResult, error)
	GetDayStatus(ctx context.Context, storeID, businessDate string) (*cloud.DayStatus, error)
}

func synced(itemID string, result *cloud.APIResult) PushResult {
	return PushResult{ItemID: itemID, Synced: true, APIContext: result.Context()}
}

func failed(itemID, msg string) PushResult {
	return PushResult{ItemID: itemID, Synced: false, Error: msg}
}

func failedWithContext(itemID, msg string, result *cloud.APIResult) PushResult {
	return PushResult{ItemID: itemID, Synced: false, Error: msg, APIContext: result.Context()}
}

// outcome folds a cloud call into a PushResult. An idempotent replay is
// success; transport errors carry no API context because no status exists.
func outcome(itemID string, result *cloud.APIResult, err error) PushResult {
	if err != nil {
		return failed(itemID, err.Error())
	}
	if result.OK() {
		return synced(itemID, result)
	}
	return failedWithContext(itemID, result.Error, result)
}

// payloadString returns a non-empty string field.
func payloadString(p models.JSON, key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// payloadInt returns an integer field. JSON numbers decode as float64.
func payloadInt(p models.JSON, key string) (int, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

// payloadOptString returns an optional string field as a pointer. An
// absent key and an explicit null both yield nil; the caller decides
// whether nil is forwarded or omitted.
func payloadOptString(p models.JSON, key string) *string {
	v, ok := p[key]
	if !ok || v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func missingFieldsError(what string, fields []string) string {
	return fmt.Sprintf("%s payload missing required fields: %s", what, strings.Join(fields, ", "))
}
