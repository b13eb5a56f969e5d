// Package channel propagates the current champion sample between rendering
// surfaces through a single persisted key.
//
// Only the latest value is kept. A surface that misses intermediate writes
// sees the final state, which is all the cadence needs.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"go.aimuz.me/tempo/internal/types"
	"go.aimuz.me/tempo/store"
)

// Key is the persisted key holding the current sample.
const Key = "tempo_champion"

// ErrInvalidSample is returned when publishing a sample without a positive rate.
var ErrInvalidSample = errors.New("channel: invalid sample")

// Update is delivered to subscribers. Cleared means the producer's session
// ended and there is no current sample.
type Update struct {
	Sample  types.SignalSample
	Cleared bool
	Origin  string
}

// record is the stored form. A cleared record is a tombstone so that the
// writer's origin survives the clear.
type record struct {
	Name        string  `json:"name,omitempty"`
	AttackSpeed float64 `json:"attackSpeed,omitempty"`
	Cleared     bool    `json:"cleared,omitempty"`
	Origin      string  `json:"origin"`
	WrittenAt   int64   `json:"writtenAt"` // Unix ms
}

// Channel is one surface's handle on the shared key. Each handle has its own
// origin so a surface never receives its own writes.
type Channel struct {
	store  *store.Store
	origin string
}

// New creates a handle with a fresh origin.
func New(st *store.Store) *Channel {
	return &Channel{store: st, origin: uuid.NewString()}
}

// Origin identifies writes made through this handle.
func (c *Channel) Origin() string {
	return c.origin
}

// Publish overwrites the current sample.
func (c *Channel) Publish(s types.SignalSample) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidSample, s.AttackSpeed)
	}
	return c.write(record{Name: s.Name, AttackSpeed: s.AttackSpeed})
}

// Clear marks the channel empty.
func (c *Channel) Clear() error {
	return c.write(record{Cleared: true})
}

func (c *Channel) write(r record) error {
	r.Origin = c.origin
	r.WrittenAt = time.Now().UnixMilli()
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := c.store.Set(Key, data); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Current returns the last published sample. ok is false when nothing was
// ever published, the channel was cleared, or the record is unreadable.
func (c *Channel) Current() (types.SignalSample, bool, error) {
	data, err := c.store.Get(Key)
	if errors.Is(err, store.ErrNotFound) {
		return types.SignalSample{}, false, nil
	}
	if err != nil {
		return types.SignalSample{}, false, err
	}

	u, err := decode(data)
	if err != nil {
		// Left in place; the next valid write supersedes it.
		slog.Warn("corrupt channel record", "key", Key, "error", err)
		return types.SignalSample{}, false, nil
	}
	if u.Cleared {
		return types.SignalSample{}, false, nil
	}
	return u.Sample, true, nil
}

// Subscribe calls fn for every write made by another handle until ctx is done.
func (c *Channel) Subscribe(ctx context.Context, fn func(Update)) error {
	return c.SubscribeReady(ctx, nil, fn)
}

// SubscribeReady is Subscribe with a ready callback that runs once the
// subscription is live, on the same goroutine as fn. Reading Current from
// ready never misses a write.
func (c *Channel) SubscribeReady(ctx context.Context, ready func(), fn func(Update)) error {
	return c.store.WatchReady(ctx, Key, ready, func(ch store.Change) {
		if ch.Deleted {
			fn(Update{Cleared: true})
			return
		}
		u, err := decode(ch.Value)
		if err != nil {
			slog.Warn("drop corrupt channel update", "error", err)
			return
		}
		if u.Origin == c.origin {
			return
		}
		fn(u)
	})
}

func decode(data []byte) (Update, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return Update{}, fmt.Errorf("unmarshal record: %w", err)
	}
	if r.Cleared {
		return Update{Cleared: true, Origin: r.Origin}, nil
	}
	s := types.SignalSample{Name: r.Name, AttackSpeed: r.AttackSpeed}
	if s.Name == "" || !s.Valid() {
		return Update{}, fmt.Errorf("%w: %+v", ErrInvalidSample, s)
	}
	return Update{Sample: s, Origin: r.Origin}, nil
}
