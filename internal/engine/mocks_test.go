package engine

import (
	"context"
	"sync"
	"time"

	"github.com/lottoworks/storesync-worker/internal/models"
	"github.com/lottoworks/storesync-worker/internal/service"
)

type mockQueueStore struct {
	mu sync.Mutex

	getRetryableFunc func(ctx context.Context, storeID string, limit int) ([]models.QueueItem, error)
	countsFunc       func(ctx context.Context, storeID string) (*models.QueueCounts, error)
	cleanupFunc      func(ctx context.Context, storeID string, olderThan time.Time) (int64, error)

	fetches     int
	markedOK    []string
	markedFail  []string
	failReasons map[string]string
}

func (m *mockQueueStore) GetRetryable(ctx context.Context, storeID string, limit int) ([]models.QueueItem, error) {
	m.mu.Lock()
	m.fetches++
	m.mu.Unlock()
	if m.getRetryableFunc != nil {
		return m.getRetryableFunc(ctx, storeID, limit)
	}
	return nil, nil
}

func (m *mockQueueStore) MarkSynced(ctx context.Context, itemID string, apiCtx *models.APIContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markedOK = append(m.markedOK, itemID)
	return nil
}

func (m *mockQueueStore) IncrementAttempts(ctx context.Context, itemID string, syncErr string, apiCtx *models.APIContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markedFail = append(m.markedFail, itemID)
	if m.failReasons == nil {
		m.failReasons = make(map[string]string)
	}
	m.failReasons[itemID] = syncErr
	return nil
}

func (m *mockQueueStore) Counts(ctx context.Context, storeID string) (*models.QueueCounts, error) {
	if m.countsFunc != nil {
		return m.countsFunc(ctx, storeID)
	}
	return &models.QueueCounts{}, nil
}

func (m *mockQueueStore) CleanupSynced(ctx context.Context, storeID string, olderThan time.Time) (int64, error) {
	if m.cleanupFunc != nil {
		return m.cleanupFunc(ctx, storeID, olderThan)
	}
	return 0, nil
}

func (m *mockQueueStore) fetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches
}

type closedRun struct {
	runID     string
	sent      int
	succeeded int
	failed    int
	status    models.SyncRunStatus
}

type mockRunLog struct {
	mu sync.Mutex

	opened     int
	closed     []closedRun
	failedRuns []string
	staleCalls int
}

func (m *mockRunLog) Open(ctx context.Context, storeID, direction string) (*models.SyncRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened++
	return &models.SyncRun{ID: "run-1", StoreID: storeID, Direction: direction, Status: models.RunStatusRunning, StartedAt: time.Now()}, nil
}

func (m *mockRunLog) Close(ctx context.Context, runID string, sent, succeeded, failed int, status models.SyncRunStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = append(m.closed, closedRun{runID, sent, succeeded, failed, status})
	return nil
}

func (m *mockRunLog) MarkFailed(ctx context.Context, runID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failedRuns = append(m.failedRuns, runID)
	return nil
}

func (m *mockRunLog) ResetStale(ctx context.Context, storeID string, olderThan time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staleCalls++
	return 0, nil
}

func (m *mockRunLog) openedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened
}

func (m *mockRunLog) closedRuns() []closedRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]closedRun, len(m.closed))
	copy(out, m.closed)
	return out
}

type mockStoreSource struct {
	store *models.StoreConfig
	err   error
}

func (m *mockStoreSource) GetActive(ctx context.Context) (*models.StoreConfig, error) {
	return m.store, m.err
}

type mockHeartbeat struct {
	mu    sync.Mutex
	pings int
	err   error
}

func (m *mockHeartbeat) Ping(ctx context.Context, storeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pings++
	return m.err
}

// mockPusher records dispatch order into a shared log.
type mockPusher struct {
	name     string
	order    *dispatchLog
	pushFunc func(ctx context.Context, items []models.QueueItem) []service.PushResult
}

type dispatchLog struct {
	mu    sync.Mutex
	names []string
}

func (d *dispatchLog) add(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names = append(d.names, name)
}

func (d *dispatchLog) snapshot() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

func (p *mockPusher) Push(ctx context.Context, items []models.QueueItem) []service.PushResult {
	if p.order != nil {
		p.order.add(p.name)
	}
	if p.pushFunc != nil {
		return p.pushFunc(ctx, items)
	}
	results := make([]service.PushResult, 0, len(items))
	for _, item := range items {
		results = append(results, service.PushResult{ItemID: item.ID, Synced: true})
	}
	return results
}
