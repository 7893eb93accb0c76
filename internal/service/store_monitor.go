package service

import (
	"context"
	"sync/atomic"
	"time"

	"kodbank/internal/logger"
	"kodbank/internal/metrics"
	"kodbank/internal/repository"
)

// StoreMonitor pings storage on an interval so requests can fail fast while
// it is down instead of each waiting on its own timeout.
type StoreMonitor struct {
	store    repository.Store
	interval time.Duration
	timeout  time.Duration
	up       atomic.Bool
}

func NewStoreMonitor(store repository.Store, interval time.Duration) *StoreMonitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	m := &StoreMonitor{store: store, interval: interval, timeout: 3 * time.Second}
	m.up.Store(true)
	metrics.StoreUp.Set(1)
	return m
}

// Ready reports the result of the last check.
func (m *StoreMonitor) Ready() bool { return m.up.Load() }

// Check pings once and records the outcome.
func (m *StoreMonitor) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	err := m.store.Ping(ctx)

	was := m.up.Swap(err == nil)
	switch {
	case err != nil && was:
		logger.Error("storage became unavailable", "error", err)
	case err == nil && !was:
		logger.Info("storage recovered")
	}
	if err != nil {
		metrics.StoreUp.Set(0)
	} else {
		metrics.StoreUp.Set(1)
	}
	return err
}

func (m *StoreMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = m.Check(ctx)
		}
	}
}
