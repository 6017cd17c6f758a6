package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// HeartbeatStatus mirrors the engine's run bookkeeping for the liveness
// ping subsystem.
type HeartbeatStatus struct {
	Online              bool       `json:"online"`
	LastPingAt          *time.Time `json:"last_ping_at"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastErrorMessage    *string    `json:"last_error_message"`
	LastErrorAt         *time.Time `json:"last_error_at"`
}

// Status is the snapshot exposed to callers. It is always well-formed:
// before the first run every timestamp is nil and every count zero.
type Status struct {
	Running             bool            `json:"running"`
	StartedAt           *time.Time      `json:"started_at"`
	IntervalMs          int64           `json:"interval_ms"`
	LastRunAt           *time.Time      `json:"last_run_at"`
	LastRunStatus       string          `json:"last_run_status"`
	NextRunInMs         int64           `json:"next_run_in_ms"`
	PendingCount        int64           `json:"pending_count"`
	QueuedCount         int64           `json:"queued_count"`
	FailedCount         int64           `json:"failed_count"`
	SyncedToday         int64           `json:"synced_today"`
	OldestPendingAt     *time.Time      `json:"oldest_pending_at"`
	Online              bool            `json:"online"`
	ConsecutiveFailures int             `json:"consecutive_failures"`
	LastErrorMessage    *string         `json:"last_error_message"`
	LastErrorAt         *time.Time      `json:"last_error_at"`
	Message             string          `json:"message"`
	Heartbeat           HeartbeatStatus `json:"heartbeat"`
}

// GetStatus builds a snapshot. Count lookups that fail are logged and
// reported as zeros; status queries never surface errors to the caller.
func (e *Engine) GetStatus(ctx context.Context) Status {
	e.mu.Lock()
	status := Status{
		Running:             e.running,
		StartedAt:           e.startedAt,
		IntervalMs:          e.interval.Milliseconds(),
		LastRunAt:           e.lastRunAt,
		LastRunStatus:       string(e.lastRunStatus),
		Online:              e.hbOnline,
		ConsecutiveFailures: e.consecutiveFailures,
		LastErrorMessage:    e.lastErrorMessage,
		LastErrorAt:         e.lastErrorAt,
		Heartbeat: HeartbeatStatus{
			Online:              e.hbOnline,
			LastPingAt:          e.hbLastPingAt,
			ConsecutiveFailures: e.hbConsecutive,
			LastErrorMessage:    e.hbLastError,
			LastErrorAt:         e.hbLastErrorAt,
		},
	}
	if status.Running && status.LastRunAt != nil {
		remaining := time.Until(status.LastRunAt.Add(e.interval))
		if remaining > 0 {
			status.NextRunInMs = remaining.Milliseconds()
		}
	}
	e.mu.Unlock()

	store, err := e.stores.GetActive(ctx)
	if err != nil {
		e.logger.Warn("status: failed to resolve store config", zap.Error(err))
		status.Message = "store configuration unavailable"
		return status
	}
	if store == nil {
		status.Message = "no store configured"
		return status
	}

	counts, err := e.queue.Counts(ctx, store.StoreID)
	if err != nil {
		e.logger.Warn("status: failed to read queue counts", zap.Error(err))
		status.Message = "queue counts unavailable"
		return status
	}

	status.PendingCount = counts.Pending
	status.QueuedCount = counts.Queued
	status.FailedCount = counts.Failed
	status.SyncedToday = counts.SyncedToday
	status.OldestPendingAt = counts.OldestPendingAt
	status.Message = statusMessage(counts.Queued, counts.Failed)

	return status
}

// statusMessage keeps the two failure populations distinct: items that
// exhausted their retry budget are reported as such, never folded into
// the waiting count.
func statusMessage(queued, failed int64) string {
	var parts []string
	if failed > 0 {
		parts = append(parts, fmt.Sprintf("%d item(s) exceeded retry limit", failed))
	}
	if queued > 0 {
		parts = append(parts, fmt.Sprintf("%d item(s) waiting to sync", queued))
	}
	if len(parts) == 0 {
		return "queue is empty"
	}
	return strings.Join(parts, "; ")
}
