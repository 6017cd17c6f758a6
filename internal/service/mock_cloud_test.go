package service

import (
	"context"
	"sync"

	"github.com/lottoworks/storesync-worker/internal/cloud"
)

// mockCloudClient records every call and delegates to the optional func
// fields. Unset funcs answer with a generic success.
type mockCloudClient struct {
	mu    sync.Mutex
	calls []string

	pushEmployeesFunc   func(ctx context.Context, storeID string, employees []cloud.EmployeeRecord) (*cloud.EmployeeBatchResult, error)
	pushShiftFunc       func(ctx context.Context, req cloud.ShiftRequest) (*cloud.APIResult, error)
	depletePackFunc     func(ctx context.Context, req cloud.PackDepleteRequest) (*cloud.APIResult, error)
	returnPackFunc      func(ctx context.Context, req cloud.PackReturnRequest) (*cloud.APIResult, error)
	openDayFunc         func(ctx context.Context, req cloud.DayOpenRequest) (*cloud.APIResult, error)
	prepareDayCloseFunc func(ctx context.Context, req cloud.DayClosePrepareRequest) (*cloud.APIResult, error)
	commitDayCloseFunc  func(ctx context.Context, req cloud.DayCloseCommitRequest) (*cloud.APIResult, error)
	cancelDayCloseFunc  func(ctx context.Context, req cloud.DayCloseCancelRequest) (*cloud.APIResult, error)
	getDayStatusFunc    func(ctx context.Context, storeID, businessDate string) (*cloud.DayStatus, error)
}

func (m *mockCloudClient) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockCloudClient) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == name {
			n++
		}
	}
	return n
}

func ok(endpoint string) *cloud.APIResult {
	return &cloud.APIResult{Success: true, Endpoint: endpoint, StatusCode: 200}
}

func (m *mockCloudClient) PushEmployees(ctx context.Context, storeID string, employees []cloud.EmployeeRecord) (*cloud.EmployeeBatchResult, error) {
	m.record("PushEmployees")
	if m.pushEmployeesFunc != nil {
		return m.pushEmployeesFunc(ctx, storeID, employees)
	}
	batch := &cloud.EmployeeBatchResult{Endpoint: "/v1/employees/batch", StatusCode: 200}
	for _, e := range employees {
		batch.Results = append(batch.Results, cloud.EmployeeResult{EmployeeID: e.EmployeeID, Success: true})
	}
	return batch, nil
}

func (m *mockCloudClient) PushShift(ctx context.Context, req cloud.ShiftRequest) (*cloud.APIResult, error) {
	m.record("PushShift")
	if m.pushShiftFunc != nil {
		return m.pushShiftFunc(ctx, req)
	}
	return ok("/v1/shifts"), nil
}

func (m *mockCloudClient) DepletePack(ctx context.Context, req cloud.PackDepleteRequest) (*cloud.APIResult, error) {
	m.record("DepletePack")
	if m.depletePackFunc != nil {
		return m.depletePackFunc(ctx, req)
	}
	return ok("/v1/packs/deplete"), nil
}

func (m *mockCloudClient) ReturnPack(ctx context.Context, req cloud.PackReturnRequest) (*cloud.APIResult, error) {
	m.record("ReturnPack")
	if m.returnPackFunc != nil {
		return m.returnPackFunc(ctx, req)
	}
	return ok("/v1/packs/return"), nil
}

func (m *mockCloudClient) OpenDay(ctx context.Context, req cloud.DayOpenRequest) (*cloud.APIResult, error) {
	m.record("OpenDay")
	if m.openDayFunc != nil {
		return m.openDayFunc(ctx, req)
	}
	return ok("/v1/days/open"), nil
}

func (m *mockCloudClient) PrepareDayClose(ctx context.Context, req cloud.DayClosePrepareRequest) (*cloud.APIResult, error) {
	m.record("PrepareDayClose")
	if m.prepareDayCloseFunc != nil {
		return m.prepareDayCloseFunc(ctx, req)
	}
	return ok("/v1/days/close/prepare"), nil
}

func (m *mockCloudClient) CommitDayClose(ctx context.Context, req cloud.DayCloseCommitRequest) (*cloud.APIResult, error) {
	m.record("CommitDayClose")
	if m.commitDayCloseFunc != nil {
		return m.commitDayCloseFunc(ctx, req)
	}
	return ok("/v1/days/close/commit"), nil
}

func (m *mockCloudClient) CancelDayClose(ctx context.Context, req cloud.DayCloseCancelRequest) (*cloud.APIResult, error) {
	m.record("CancelDayClose")
	if m.cancelDayCloseFunc != nil {
		return m.cancelDayCloseFunc(ctx, req)
	}
	return ok("/v1/days/close/cancel"), nil
}

func (m *mockCloudClient) GetDayStatus(ctx context.Context, storeID, businessDate string) (*cloud.DayStatus, error) {
	m.record("GetDayStatus")
	if m.getDayStatusFunc != nil {
		return m.getDayStatusFunc(ctx, storeID, businessDate)
	}
	return &cloud.DayStatus{DayID: "cloud-day-1", BusinessDate: businessDate, Status: "OPEN"}, nil
}
