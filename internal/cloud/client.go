package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/lottoworks/storesync-worker/internal/models"
)

const (
	endpointEmployeesBatch  = "/v1/employees/batch"
	endpointShifts          = "/v1/shifts"
	endpointPackDeplete     = "/v1/packs/deplete"
	endpointPackReturn      = "/v1/packs/return"
	endpointDayOpen         = "/v1/days/open"
	endpointDayClosePrepare = "/v1/days/close/prepare"
	endpointDayCloseCommit  = "/v1/days/close/commit"
	endpointDayCloseCancel  = "/v1/days/close/cancel"
	endpointDayStatus       = "/v1/days/status"
	endpointHeartbeat       = "/v1/heartbeat"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds the cloud API client. When client credentials are
// configured the transport fetches and refreshes bearer tokens itself;
// otherwise requests go out unauthenticated (dev mode against a stub).
func NewClient(baseURL, tokenURL, clientID, clientSecret string) *Client {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	if clientID != "" && clientSecret != "" {
		cc := clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		}
		httpClient = cc.Client(context.Background())
		httpClient.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// envelope is the wire shape every cloud response uses.
type envelope struct {
	Success       bool                   `json:"success"`
	AlreadyExists bool                   `json:"already_exists"`
	Error         string                 `json:"error"`
	Data          map[string]interface{} `json:"data"`
}

// post issues a JSON POST and decodes the standard envelope. A non-nil
// error means the outcome is unknown at the application level (transport
// failure, unparseable body); a decoded envelope with success=false is
// returned as a non-OK APIResult instead.
func (c *Client) post(ctx context.Context, endpoint string, body interface{}) (*APIResult, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	result := &APIResult{Endpoint: endpoint, StatusCode: resp.StatusCode}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil, fmt.Errorf("failed to parse API response: %w", err)
		}
		result.Error = fmt.Sprintf("API error (status %d): %s", resp.StatusCode, string(respBody))
		return result, nil
	}

	result.Success = env.Success
	result.AlreadyExists = env.AlreadyExists
	result.Error = env.Error
	result.Data = env.Data
	if !result.OK() && result.Error == "" {
		result.Error = fmt.Sprintf("API error (status %d)", resp.StatusCode)
	}

	return result, nil
}

// PushEmployees pushes a whole partition of employees in one call and fans
// the per-employee outcomes back out.
func (c *Client) PushEmployees(ctx context.Context, storeID string, employees []EmployeeRecord) (*EmployeeBatchResult, error) {
	body := map[string]interface{}{
		"store_id":  storeID,
		"employees": employees,
	}

	result, err := c.post(ctx, endpointEmployeesBatch, body)
	if err != nil {
		return nil, err
	}

	batch := &EmployeeBatchResult{
		Endpoint:   result.Endpoint,
		StatusCode: result.StatusCode,
	}

	if !result.OK() {
		// Whole batch rejected: every employee shares the batch error.
		for _, e := range employees {
			batch.Results = append(batch.Results, EmployeeResult{
				EmployeeID: e.EmployeeID,
				Success:    false,
				Error:      result.Error,
			})
		}
		return batch, nil
	}

	raw, _ := json.Marshal(result.Data["results"])
	var perEmployee []EmployeeResult
	if err := json.Unmarshal(raw, &perEmployee); err != nil || len(perEmployee) == 0 {
		// No per-employee breakdown: the batch as a whole succeeded.
		for _, e := range employees {
			batch.Results = append(batch.Results, EmployeeResult{EmployeeID: e.EmployeeID, Success: true})
		}
		return batch, nil
	}

	batch.Results = perEmployee
	return batch, nil
}

func (c *Client) PushShift(ctx context.Context, req ShiftRequest) (*APIResult, error) {
	return c.post(ctx, endpointShifts, req)
}

func (c *Client) DepletePack(ctx context.Context, req PackDepleteRequest) (*APIResult, error) {
	return c.post(ctx, endpointPackDeplete, req)
}

func (c *Client) ReturnPack(ctx context.Context, req PackReturnRequest) (*APIResult, error) {
	return c.post(ctx, endpointPackReturn, req)
}

func (c *Client) OpenDay(ctx context.Context, req DayOpenRequest) (*APIResult, error) {
	return c.post(ctx, endpointDayOpen, req)
}

func (c *Client) PrepareDayClose(ctx context.Context, req DayClosePrepareRequest) (*APIResult, error) {
	return c.post(ctx, endpointDayClosePrepare, req)
}

func (c *Client) CommitDayClose(ctx context.Context, req DayCloseCommitRequest) (*APIResult, error) {
	return c.post(ctx, endpointDayCloseCommit, req)
}

func (c *Client) CancelDayClose(ctx context.Context, req DayCloseCancelRequest) (*APIResult, error) {
	return c.post(ctx, endpointDayCloseCancel, req)
}

// GetDayStatus pulls the cloud's record for a business date. This is how a
// local day id gets resolved to the cloud's canonical id before a prepare.
func (c *Client) GetDayStatus(ctx context.Context, storeID, businessDate string) (*DayStatus, error) {
	q := url.Values{}
	q.Set("store_id", storeID)
	q.Set("business_date", businessDate)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpointDayStatus+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("day status pull failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("failed to parse day status response: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("day status pull rejected: %s", env.Error)
	}

	raw, _ := json.Marshal(env.Data)
	var status DayStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("failed to parse day status: %w", err)
	}
	if status.DayID == models.CloudDayID("") {
		return nil, fmt.Errorf("day status response missing day_id for %s", businessDate)
	}

	return &status, nil
}

// Ping is the liveness check the heartbeat loop issues.
func (c *Client) Ping(ctx context.Context, storeID string) error {
	result, err := c.post(ctx, endpointHeartbeat, map[string]interface{}{"store_id": storeID})
	if err != nil {
		return err
	}
	if !result.OK() {
		return fmt.Errorf("heartbeat rejected: %s", result.Error)
	}
	return nil
}
