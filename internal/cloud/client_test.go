package cloud

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lottoworks/storesync-worker/internal/models"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, "", "", ""), srv
}

func TestPushShift_SuccessEnvelope(t *testing.T) {
	var gotPath string
	var gotBody ShiftRequest
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})
	defer srv.Close()

	result, err := client.PushShift(context.Background(), ShiftRequest{
		StoreID:      "store-1",
		ShiftID:      "shift-3",
		BusinessDate: "2026-08-31",
		ShiftNumber:  2,
		OpenedAt:     "2026-08-31T06:00:00Z",
		ClosedAt:     "2026-08-31T14:00:00Z",
		Status:       "CLOSED",
	})
	if err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if !result.OK() {
		t.Errorf("expected OK result, got error %q", result.Error)
	}
	if gotPath != "/v1/shifts" {
		t.Errorf("hit %s, want /v1/shifts", gotPath)
	}
	if gotBody.ShiftID != "shift-3" || gotBody.ShiftNumber != 2 {
		t.Errorf("request not forwarded: %+v", gotBody)
	}
	if result.Endpoint != "/v1/shifts" || result.StatusCode != 200 {
		t.Errorf("audit context = %s/%d", result.Endpoint, result.StatusCode)
	}
}

func TestPost_AlreadyExistsIsOK(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":        false,
			"already_exists": true,
			"error":          "shift already recorded",
		})
	})
	defer srv.Close()

	result, err := client.PushShift(context.Background(), ShiftRequest{})
	if err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if !result.OK() {
		t.Error("idempotent replay should count as OK")
	}
	if !result.AlreadyExists {
		t.Error("already_exists flag lost in decoding")
	}
}

func TestPost_RejectionKeepsStatusAndError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "closing_serial out of range",
		})
	})
	defer srv.Close()

	result, err := client.DepletePack(context.Background(), PackDepleteRequest{})
	if err != nil {
		t.Fatalf("decoded rejection should not be a transport error: %v", err)
	}
	if result.OK() {
		t.Error("rejection reported as OK")
	}
	if result.Error != "closing_serial out of range" {
		t.Errorf("error = %q", result.Error)
	}
	if result.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", result.StatusCode)
	}
}

func TestPost_NonJSONErrorBody(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	})
	defer srv.Close()

	result, err := client.PushShift(context.Background(), ShiftRequest{})
	if err != nil {
		t.Fatalf("non-2xx with opaque body should still yield a result: %v", err)
	}
	if result.OK() {
		t.Error("opaque error body reported as OK")
	}
	if !strings.Contains(result.Error, "502") {
		t.Errorf("error should carry the status code, got %q", result.Error)
	}
}

func TestPost_TransportErrorReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on
	client := NewClient(srv.URL, "", "", "")

	result, err := client.PushShift(context.Background(), ShiftRequest{})
	if err == nil {
		t.Fatal("expected transport error")
	}
	if result != nil {
		t.Errorf("transport failure must not produce a result, got %+v", result)
	}
}

func TestPushEmployees_PerEmployeeBreakdown(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"results": []map[string]interface{}{
					{"employee_id": "u1", "success": true},
					{"employee_id": "u2", "success": false, "error": "duplicate username"},
				},
			},
		})
	})
	defer srv.Close()

	batch, err := client.PushEmployees(context.Background(), "store-1", []EmployeeRecord{
		{EmployeeID: "u1", Username: "alice"},
		{EmployeeID: "u2", Username: "bob"},
	})
	if err != nil {
		t.Fatalf("batch push failed: %v", err)
	}
	if len(batch.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(batch.Results))
	}
	if !batch.Results[0].Success || batch.Results[1].Success {
		t.Errorf("per-employee outcomes not preserved: %+v", batch.Results)
	}
	if batch.Results[1].Error != "duplicate username" {
		t.Errorf("error = %q", batch.Results[1].Error)
	}
}

func TestPushEmployees_WholeBatchRejected(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "store suspended",
		})
	})
	defer srv.Close()

	batch, err := client.PushEmployees(context.Background(), "store-1", []EmployeeRecord{
		{EmployeeID: "u1"},
		{EmployeeID: "u2"},
	})
	if err != nil {
		t.Fatalf("rejection should not be a transport error: %v", err)
	}
	for _, r := range batch.Results {
		if r.Success {
			t.Errorf("employee %s marked success on rejected batch", r.EmployeeID)
		}
		if r.Error != "store suspended" {
			t.Errorf("employee %s error = %q", r.EmployeeID, r.Error)
		}
	}
}

func TestPushEmployees_NoBreakdownMeansAllSucceeded(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})
	defer srv.Close()

	batch, err := client.PushEmployees(context.Background(), "store-1", []EmployeeRecord{
		{EmployeeID: "u1"},
	})
	if err != nil {
		t.Fatalf("batch push failed: %v", err)
	}
	if len(batch.Results) != 1 || !batch.Results[0].Success {
		t.Errorf("expected implicit success for u1, got %+v", batch.Results)
	}
}

func TestGetDayStatus_ResolvesCanonicalID(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/days/status" {
			t.Fatalf("hit %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("store_id") != "store-1" || q.Get("business_date") != "2026-08-31" {
			t.Fatalf("query not forwarded: %v", q)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"day_id":        "cloud-day-777",
				"business_date": "2026-08-31",
				"status":        "OPEN",
			},
		})
	})
	defer srv.Close()

	status, err := client.GetDayStatus(context.Background(), "store-1", "2026-08-31")
	if err != nil {
		t.Fatalf("status pull failed: %v", err)
	}
	if status.DayID != models.CloudDayID("cloud-day-777") {
		t.Errorf("day_id = %q", status.DayID)
	}
	if status.Status != "OPEN" {
		t.Errorf("status = %q", status.Status)
	}
}

func TestGetDayStatus_MissingDayIDRejected(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"business_date": "2026-08-31"},
		})
	})
	defer srv.Close()

	_, err := client.GetDayStatus(context.Background(), "store-1", "2026-08-31")
	if err == nil {
		t.Fatal("expected error for response without day_id")
	}
	if !strings.Contains(err.Error(), "day_id") {
		t.Errorf("error should name the missing field, got %v", err)
	}
}

func TestPing(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/heartbeat" {
				t.Fatalf("hit %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
		})
		defer srv.Close()

		if err := client.Ping(context.Background(), "store-1"); err != nil {
			t.Errorf("ping failed: %v", err)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"error":   "unknown store",
			})
		})
		defer srv.Close()

		err := client.Ping(context.Background(), "store-1")
		if err == nil || !strings.Contains(err.Error(), "unknown store") {
			t.Errorf("expected rejection error, got %v", err)
		}
	})
}

func TestDepletedByNullSerializedVerbatim(t *testing.T) {
	var raw map[string]json.RawMessage
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})
	defer srv.Close()

	_, err := client.DepletePack(context.Background(), PackDepleteRequest{
		StoreID:         "store-1",
		PackID:          "pack-1",
		ClosingSerial:   "042",
		DepletedAt:      "2026-08-31T13:00:00Z",
		DepletionReason: "SOLD_OUT",
		DepletedBy:      nil,
	})
	if err != nil {
		t.Fatalf("deplete failed: %v", err)
	}

	val, present := raw["depleted_by"]
	if !present {
		t.Fatal("depleted_by should be serialized even when null")
	}
	if string(val) != "null" {
		t.Errorf("depleted_by = %s, want null", val)
	}
	if _, present := raw["notes"]; present {
		t.Error("absent notes should be omitted from the wire")
	}
}
