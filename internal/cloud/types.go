package cloud

import "github.com/lottoworks/storesync-worker/internal/models"

// APIResult is the decoded outcome of one cloud call. A transport-level
// failure is returned as an error instead; an APIResult always carries the
// endpoint and HTTP status for audit context.
type APIResult struct {
	Success       bool
	AlreadyExists bool
	Error         string
	Data          map[string]interface{}
	Endpoint      string
	StatusCode    int
}

// OK reports whether the cloud accepted the operation. An idempotent
// replay (already applied remotely) counts as success.
func (r *APIResult) OK() bool {
	return r.Success || r.AlreadyExists
}

// Context converts the result into queue audit context.
func (r *APIResult) Context() *models.APIContext {
	return &models.APIContext{Endpoint: r.Endpoint, StatusCode: r.StatusCode}
}

// EmployeeRecord is one employee in a batch push.
type EmployeeRecord struct {
	EmployeeID  string `json:"employee_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	PINHash     string `json:"pin_hash"`
}

// EmployeeResult is the per-employee outcome of a batch push, keyed by the
// employee id the request carried.
type EmployeeResult struct {
	EmployeeID string `json:"employee_id"`
	Success    bool   `json:"success"`
	Error      string `json:"error"`
}

// EmployeeBatchResult fans the batch response back out per employee.
type EmployeeBatchResult struct {
	Results    []EmployeeResult
	Endpoint   string
	StatusCode int
}

// ShiftRequest pushes one closed shift.
type ShiftRequest struct {
	StoreID      string  `json:"store_id"`
	ShiftID      string  `json:"shift_id"`
	BusinessDate string  `json:"business_date"`
	ShiftNumber  int     `json:"shift_number"`
	OpenedAt     string  `json:"opened_at"`
	ClosedAt     string  `json:"closed_at"`
	Status       string  `json:"status"`
	OpenedBy     *string `json:"opened_by,omitempty"`
	ClosedBy     *string `json:"closed_by,omitempty"`
}

// PackDepleteRequest marks a pack depleted. DepletedBy is forwarded
// verbatim, explicit null included.
type PackDepleteRequest struct {
	StoreID         string  `json:"store_id"`
	PackID          string  `json:"pack_id"`
	GameCode        *string `json:"game_code,omitempty"`
	ClosingSerial   string  `json:"closing_serial"`
	DepletedAt      string  `json:"depleted_at"`
	DepletionReason string  `json:"depletion_reason"`
	DepletedBy      *string `json:"depleted_by"`
	Notes           *string `json:"notes,omitempty"`
}

// PackReturnRequest returns a pack to the vendor. ReturnedBy is forwarded
// verbatim, explicit null included.
type PackReturnRequest struct {
	StoreID      string  `json:"store_id"`
	PackID       string  `json:"pack_id"`
	GameCode     *string `json:"game_code,omitempty"`
	ReturnedAt   string  `json:"returned_at"`
	ReturnReason string  `json:"return_reason"`
	ReturnedBy   *string `json:"returned_by"`
	Notes        *string `json:"notes,omitempty"`
}

// DayOpenRequest opens a business day. Notes are omitted entirely when the
// payload carried none.
type DayOpenRequest struct {
	DayID        string  `json:"day_id"`
	StoreID      string  `json:"store_id"`
	BusinessDate string  `json:"business_date"`
	OpenedBy     string  `json:"opened_by"`
	OpenedAt     string  `json:"opened_at"`
	Notes        *string `json:"notes,omitempty"`
}

// DayClosePrepareRequest stages a day close against the cloud's canonical
// day id. PackClosings are forwarded as the payload recorded them.
type DayClosePrepareRequest struct {
	DayID        models.CloudDayID `json:"day_id"`
	StoreID      string            `json:"store_id"`
	PackClosings []interface{}     `json:"pack_closings"`
}

// DayCloseCommitRequest finalizes a staged close.
type DayCloseCommitRequest struct {
	DayID    models.CloudDayID `json:"day_id"`
	ClosedBy string            `json:"closed_by"`
}

// DayCloseCancelRequest aborts a staged close.
type DayCloseCancelRequest struct {
	DayID       models.CloudDayID `json:"day_id"`
	Reason      string            `json:"reason"`
	CancelledBy string            `json:"cancelled_by"`
}

// DayStatus is the cloud's view of a business date, pulled before prepare
// to resolve the canonical day id.
type DayStatus struct {
	DayID        models.CloudDayID `json:"day_id"`
	BusinessDate string            `json:"business_date"`
	Status       string            `json:"status"`
}
