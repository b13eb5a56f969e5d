package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.aimuz.me/tempo/internal/types"
	"go.aimuz.me/tempo/telemetry"
)

// SourceAdapter runs one telemetry source for a producer with proper
// synchronization. Starting a new source stops the previous one.
type SourceAdapter struct {
	mu      sync.RWMutex
	handler telemetry.Handler
	surface string

	kind   string
	since  time.Time
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSourceAdapter creates an adapter delivering into h.
func NewSourceAdapter(surface string, h telemetry.Handler) *SourceAdapter {
	return &SourceAdapter{surface: surface, handler: h}
}

// Start runs src in the background. Stops any existing source first.
func (sa *SourceAdapter) Start(ctx context.Context, kind string, src telemetry.Source) {
	sa.Stop()

	sa.mu.Lock()
	defer sa.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	sa.kind = kind
	sa.since = time.Now()
	sa.cancel = cancel
	sa.done = done

	go func() {
		defer close(done)
		if err := src.Run(ctx, sa.handler); err != nil {
			slog.Error("telemetry source", "surface", sa.surface, "kind", kind, "error", err)
		}
		slog.Debug("telemetry source ended", "surface", sa.surface, "kind", kind)
	}()
}

// Stop cancels the running source and waits for it to return.
func (sa *SourceAdapter) Stop() {
	sa.mu.Lock()
	cancel, done := sa.cancel, sa.done
	sa.cancel, sa.done = nil, nil
	sa.kind = ""
	sa.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Status returns the current status, safe for concurrent access.
func (sa *SourceAdapter) Status() types.SourceStatus {
	sa.mu.RLock()
	defer sa.mu.RUnlock()

	st := types.SourceStatus{Surface: sa.surface, Kind: sa.kind}
	if sa.done == nil {
		return st
	}
	select {
	case <-sa.done:
	default:
		st.Running = true
		st.Since = sa.since.UnixMilli()
	}
	return st
}
