package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lottoworks/storesync-worker/internal/models"
	"github.com/lottoworks/storesync-worker/internal/service"
)

const (
	// Interval bounds. Requests outside the range are clamped, not
	// rejected, so a bad config value degrades instead of failing.
	DefaultInterval = 60 * time.Second
	MinInterval     = 10 * time.Second
	MaxInterval     = 5 * time.Minute

	// DefaultCleanupDays is the age cutoff CleanupQueue falls back to.
	DefaultCleanupDays = 7

	heartbeatInterval = 60 * time.Second
	staleRunThreshold = 30 * time.Minute
	cycleBatchLimit   = 200
	runDirectionPush  = "push"
)

// QueueStore is the slice of the queue item store the engine consumes.
// All state mutation goes through its atomic operations; the engine never
// caches item state across cycles.
type QueueStore interface {
	GetRetryable(ctx context.Context, storeID string, limit int) ([]models.QueueItem, error)
	MarkSynced(ctx context.Context, itemID string, apiCtx *models.APIContext) error
	IncrementAttempts(ctx context.Context, itemID string, syncErr string, apiCtx *models.APIContext) error
	Counts(ctx context.Context, storeID string) (*models.QueueCounts, error)
	CleanupSynced(ctx context.Context, storeID string, olderThan time.Time) (int64, error)
}

// RunLog owns SyncRun persistence.
type RunLog interface {
	Open(ctx context.Context, storeID, direction string) (*models.SyncRun, error)
	Close(ctx context.Context, runID string, sent, succeeded, failed int, status models.SyncRunStatus) error
	MarkFailed(ctx context.Context, runID, message string) error
	ResetStale(ctx context.Context, storeID string, olderThan time.Duration) (int64, error)
}

// StoreSource resolves the configured tenant. nil, nil means not set up
// yet, which skips the cycle entirely.
type StoreSource interface {
	GetActive(ctx context.Context) (*models.StoreConfig, error)
}

// HeartbeatClient is the liveness ping the heartbeat loop issues.
type HeartbeatClient interface {
	Ping(ctx context.Context, storeID string) error
}

// Engine owns the sync run loop. All lifecycle state lives on the
// instance; multiple engines are safely constructible side by side.
type Engine struct {
	queue     QueueStore
	runs      RunLog
	stores    StoreSource
	heartbeat HeartbeatClient
	pushers   map[models.EntityType]service.Pusher
	logger    *zap.Logger

	// Ticker construction is injectable so tests can drive cycles
	// without waiting out real intervals.
	newSyncTicker      func(d time.Duration) (<-chan time.Time, func())
	newHeartbeatTicker func(d time.Duration) (<-chan time.Time, func())

	// cycleMu guards cycle execution: a trigger or tick that arrives
	// while a cycle runs is skipped, never queued.
	cycleMu sync.Mutex

	mu                  sync.Mutex
	running             bool
	startedAt           *time.Time
	interval            time.Duration
	stopCh              chan struct{}
	lastRunAt           *time.Time
	lastRunStatus       models.SyncRunStatus
	consecutiveFailures int
	lastErrorMessage    *string
	lastErrorAt         *time.Time

	hbOnline       bool
	hbLastPingAt   *time.Time
	hbConsecutive  int
	hbLastError    *string
	hbLastErrorAt  *time.Time
}

func New(
	queue QueueStore,
	runs RunLog,
	stores StoreSource,
	heartbeat HeartbeatClient,
	pushers map[models.EntityType]service.Pusher,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		queue:     queue,
		runs:      runs,
		stores:    stores,
		heartbeat: heartbeat,
		pushers:   pushers,
		logger:    logger,
		newSyncTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
		newHeartbeatTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// clampInterval bounds the requested interval. Zero means default.
func clampInterval(d time.Duration) time.Duration {
	if d == 0 {
		return DefaultInterval
	}
	if d < MinInterval {
		return MinInterval
	}
	if d > MaxInterval {
		return MaxInterval
	}
	return d
}

// Start begins the scheduler: one cycle immediately, then one per
// interval until Stop. Calling Start while running is a logged no-op.
func (e *Engine) Start(ctx context.Context, interval time.Duration) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		e.logger.Info("sync engine already running, ignoring start")
		return nil
	}

	interval = clampInterval(interval)
	now := time.Now()
	e.running = true
	e.startedAt = &now
	e.interval = interval
	e.stopCh = make(chan struct{})
	stopCh := e.stopCh
	e.mu.Unlock()

	e.logger.Info("sync engine starting", zap.Duration("interval", interval))

	// A prior crash must not leave a run permanently "running".
	if store, err := e.stores.GetActive(ctx); err != nil {
		e.logger.Warn("stale run reset skipped", zap.Error(err))
	} else if store != nil {
		reset, err := e.runs.ResetStale(ctx, store.StoreID, staleRunThreshold)
		if err != nil {
			e.logger.Warn("failed to reset stale runs", zap.Error(err))
		} else if reset > 0 {
			e.logger.Warn("reset stale sync runs", zap.Int64("count", reset))
		}
	}

	// Immediate first cycle, synchronous like the rest of startup.
	e.runCycle(ctx)

	go e.syncLoop(stopCh, interval)
	go e.heartbeatLoop(stopCh)

	return nil
}

func (e *Engine) syncLoop(stopCh <-chan struct{}, interval time.Duration) {
	tick, stop := e.newSyncTicker(interval)
	defer stop()

	for {
		select {
		case <-stopCh:
			e.logger.Info("sync loop stopped")
			return
		case <-tick:
			// A tick can race a close of stopCh; re-check so no cycle
			// starts after Stop returns.
			select {
			case <-stopCh:
				e.logger.Info("sync loop stopped")
				return
			default:
			}
			e.runCycle(context.Background())
		}
	}
}

// Stop halts scheduling. An in-flight cycle finishes; no further cycles
// run. Restart after Stop resumes the full lifecycle.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	close(e.stopCh)
	e.running = false
	e.logger.Info("sync engine stopped")
}

// WaitIdle blocks until any in-flight cycle finishes or the timeout
// elapses, reporting whether the engine went idle in time.
func (e *Engine) WaitIdle(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		e.cycleMu.Lock()
		e.cycleMu.Unlock()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// TriggerSync runs one manual cycle now. It reports false when a cycle
// was already in flight and this invocation was skipped.
func (e *Engine) TriggerSync(ctx context.Context) bool {
	return e.runCycle(ctx)
}

// runCycle executes one cycle unless one is already running.
func (e *Engine) runCycle(ctx context.Context) bool {
	if !e.cycleMu.TryLock() {
		e.logger.Debug("sync cycle already in progress, skipping")
		return false
	}
	defer e.cycleMu.Unlock()

	e.doCycle(ctx)
	return true
}

func (e *Engine) doCycle(ctx context.Context) {
	store, err := e.stores.GetActive(ctx)
	if err != nil {
		e.logger.Error("failed to resolve store config", zap.Error(err))
		return
	}
	if store == nil {
		// Not set up yet. No SyncRun is opened for a skipped cycle.
		e.logger.Debug("no store configured, skipping sync cycle")
		return
	}

	run, err := e.runs.Open(ctx, store.StoreID, runDirectionPush)
	if err != nil {
		e.logger.Error("failed to open sync run", zap.Error(err))
		return
	}

	items, err := e.queue.GetRetryable(ctx, store.StoreID, cycleBatchLimit)
	if err != nil {
		e.logger.Error("failed to fetch retryable items", zap.Error(err))
		if mErr := e.runs.MarkFailed(ctx, run.ID, err.Error()); mErr != nil {
			e.logger.Error("failed to mark run failed", zap.Error(mErr))
		}
		e.recordCycle(models.RunStatusFailed, 1)
		return
	}

	sent := len(items)
	succeeded := 0
	failedCount := 0

	// Partitions dispatch in first-occurrence order, which preserves the
	// priority-then-age ordering the store returned across entity types.
	for _, part := range partitionByEntity(items) {
		results := e.dispatch(ctx, part)
		for _, res := range results {
			if res.Synced {
				if err := e.queue.MarkSynced(ctx, res.ItemID, res.APIContext); err != nil {
					e.logger.Error("failed to mark item synced",
						zap.String("item_id", res.ItemID), zap.Error(err))
				}
				succeeded++
			} else {
				if err := e.queue.IncrementAttempts(ctx, res.ItemID, res.Error, res.APIContext); err != nil {
					e.logger.Error("failed to record item failure",
						zap.String("item_id", res.ItemID), zap.Error(err))
				}
				failedCount++
			}
		}
	}

	status := cycleStatus(sent, failedCount)
	if err := e.runs.Close(ctx, run.ID, sent, succeeded, failedCount, status); err != nil {
		e.logger.Error("failed to close sync run", zap.Error(err))
	}

	e.recordCycle(status, failedCount)

	e.logger.Info("sync cycle completed",
		zap.String("status", string(status)),
		zap.Int("sent", sent),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failedCount))
}

func (e *Engine) dispatch(ctx context.Context, part partitionGroup) []service.PushResult {
	pusher, ok := e.pushers[part.entityType]
	if !ok {
		// Fallback for unrecognized tags: the items age into the failed
		// count instead of being retried forever invisibly.
		results := make([]service.PushResult, 0, len(part.items))
		for _, item := range part.items {
			results = append(results, service.PushResult{
				ItemID: item.ID,
				Error:  fmt.Sprintf("no handler registered for entity type %q", part.entityType),
			})
		}
		return results
	}
	return pusher.Push(ctx, part.items)
}

func cycleStatus(sent, failed int) models.SyncRunStatus {
	switch {
	case failed == 0:
		return models.RunStatusSuccess
	case failed < sent:
		return models.RunStatusPartial
	default:
		return models.RunStatusFailed
	}
}

func (e *Engine) recordCycle(status models.SyncRunStatus, failedCount int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	e.lastRunAt = &now
	e.lastRunStatus = status

	switch status {
	case models.RunStatusSuccess:
		e.consecutiveFailures = 0
		e.lastErrorMessage = nil
		e.lastErrorAt = nil
	case models.RunStatusPartial:
		// A partial cycle is not an engine health problem: the message
		// updates but the failure streak does not.
		msg := fmt.Sprintf("%d item(s) failed to sync", failedCount)
		e.lastErrorMessage = &msg
		e.lastErrorAt = &now
	case models.RunStatusFailed:
		e.consecutiveFailures++
		msg := fmt.Sprintf("%d item(s) failed to sync", failedCount)
		e.lastErrorMessage = &msg
		e.lastErrorAt = &now
	}
}

type partitionGroup struct {
	entityType models.EntityType
	items      []models.QueueItem
}

// partitionByEntity groups items by entity type, keeping groups in the
// order their first item appeared.
func partitionByEntity(items []models.QueueItem) []partitionGroup {
	grouped := make(map[models.EntityType][]models.QueueItem)
	var order []models.EntityType

	for _, item := range items {
		et := models.ParseEntityType(string(item.EntityType))
		if _, seen := grouped[et]; !seen {
			order = append(order, et)
		}
		grouped[et] = append(grouped[et], item)
	}

	parts := make([]partitionGroup, 0, len(order))
	for _, et := range order {
		parts = append(parts, partitionGroup{entityType: et, items: grouped[et]})
	}
	return parts
}

// CleanupQueue purges synced items older than the given age in days
// (default 7) and returns the count removed.
func (e *Engine) CleanupQueue(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		days = DefaultCleanupDays
	}

	store, err := e.stores.GetActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve store config: %w", err)
	}
	if store == nil {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	removed, err := e.queue.CleanupSynced(ctx, store.StoreID, cutoff)
	if err != nil {
		return 0, err
	}

	e.logger.Info("queue cleanup completed",
		zap.Int("days", days), zap.Int64("removed", removed))
	return removed, nil
}
