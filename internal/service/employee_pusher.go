package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lottoworks/storesync-worker/internal/cloud"
	"github.com/lottoworks/storesync-worker/internal/models"
)

// UserSource resolves local employee records for credential material.
type UserSource interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// EmployeePusher pushes the whole employee partition in one batch call and
// fans per-employee results back out by queue id.
type EmployeePusher struct {
	users  UserSource
	client CloudClient
	logger *zap.Logger
}

func NewEmployeePusher(users UserSource, client CloudClient, logger *zap.Logger) *EmployeePusher {
	return &EmployeePusher{users: users, client: client, logger: logger}
}

func (p *EmployeePusher) Push(ctx context.Context, items []models.QueueItem) []PushResult {
	results := make([]PushResult, 0, len(items))

	var records []cloud.EmployeeRecord
	itemByEmployee := make(map[string]string) // employee id -> queue item id
	var storeID string

	for _, item := range items {
		userID, ok := payloadString(item.Payload, "user_id")
		if !ok {
			userID = item.EntityID
		}

		user, err := p.users.GetByID(ctx, userID)
		if err != nil {
			results = append(results, failed(item.ID, fmt.Sprintf("employee lookup failed: %v", err)))
			continue
		}
		if user.PINHash == nil || *user.PINHash == "" {
			results = append(results, failed(item.ID, fmt.Sprintf("employee %s missing credential material", user.Username)))
			continue
		}

		storeID = item.StoreID
		itemByEmployee[user.ID] = item.ID
		records = append(records, cloud.EmployeeRecord{
			EmployeeID:  user.ID,
			Username:    user.Username,
			DisplayName: user.DisplayName,
			Role:        user.Role,
			PINHash:     *user.PINHash,
		})
	}

	if len(records) == 0 {
		return results
	}

	batch, err := p.client.PushEmployees(ctx, storeID, records)
	if err != nil {
		for _, rec := range records {
			results = append(results, failed(itemByEmployee[rec.EmployeeID], err.Error()))
		}
		return results
	}

	apiCtx := &models.APIContext{Endpoint: batch.Endpoint, StatusCode: batch.StatusCode}
	seen := make(map[string]bool)

	for _, res := range batch.Results {
		itemID, ok := itemByEmployee[res.EmployeeID]
		if !ok {
			p.logger.Warn("batch response for unknown employee", zap.String("employee_id", res.EmployeeID))
			continue
		}
		seen[res.EmployeeID] = true
		if res.Success {
			results = append(results, PushResult{ItemID: itemID, Synced: true, APIContext: apiCtx})
		} else {
			results = append(results, PushResult{ItemID: itemID, Synced: false, Error: res.Error, APIContext: apiCtx})
		}
	}

	// Employees the response never mentioned stay retryable.
	for _, rec := range records {
		if !seen[rec.EmployeeID] {
			results = append(results, PushResult{
				ItemID:     itemByEmployee[rec.EmployeeID],
				Synced:     false,
				Error:      fmt.Sprintf("no result returned for employee %s", rec.EmployeeID),
				APIContext: apiCtx,
			})
		}
	}

	return results
}
