package engine

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// heartbeatLoop pings the cloud on a fixed interval, independent of the
// sync interval. The online flag reflects the most recent ping outcome.
func (e *Engine) heartbeatLoop(stopCh <-chan struct{}) {
	e.ping(context.Background())

	tick, stop := e.newHeartbeatTicker(heartbeatInterval)
	defer stop()

	for {
		select {
		case <-stopCh:
			return
		case <-tick:
			e.ping(context.Background())
		}
	}
}

func (e *Engine) ping(ctx context.Context) {
	store, err := e.stores.GetActive(ctx)
	if err != nil || store == nil {
		return
	}

	pingErr := e.heartbeat.Ping(ctx, store.StoreID)

	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	e.hbLastPingAt = &now

	if pingErr != nil {
		e.hbOnline = false
		e.hbConsecutive++
		msg := pingErr.Error()
		e.hbLastError = &msg
		e.hbLastErrorAt = &now
		e.logger.Warn("heartbeat ping failed",
			zap.Int("consecutive_failures", e.hbConsecutive), zap.Error(pingErr))
		return
	}

	e.hbOnline = true
	e.hbConsecutive = 0
	e.hbLastError = nil
	e.hbLastErrorAt = nil
}
