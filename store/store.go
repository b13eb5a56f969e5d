// Package store provides the persisted key/value database shared by all
// rendering surfaces, with a change feed per key.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/pb"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("store: key not found")

// Store wraps a badger database.
type Store struct {
	db *badger.DB
}

// Change is one observed write to a watched key.
// Deleted is set when the key was removed; Value is then nil.
type Change struct {
	Key     string
	Value   []byte
	Deleted bool
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{slog.Default()})
	return open(opts)
}

// OpenInMemory opens a database that lives only for the process.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(badgerLogger{slog.Default()})
	return open(opts)
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(key string) ([]byte, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return val, nil
}

// Set overwrites key with value.
func (s *Store) Set(key string, value []byte) error {
	return s.SetWithTTL(key, value, 0)
}

// SetWithTTL overwrites key with value that expires after ttl (0 = never).
func (s *Store) SetWithTTL(key string, value []byte, ttl time.Duration) error {
	if len(value) == 0 {
		return fmt.Errorf("set %s: empty value", key)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Watch calls fn for every committed write to key until ctx is done.
// When several writes land in one batch only the last is delivered.
func (s *Store) Watch(ctx context.Context, key string, fn func(Change)) error {
	return s.WatchReady(ctx, key, nil, fn)
}

// WatchReady is Watch with a ready callback. ready runs once, on the
// watching goroutine, after the subscription is known to be receiving
// writes; a value read from inside ready cannot miss a later change.
func (s *Store) WatchReady(ctx context.Context, key string, ready func(), fn func(Change)) error {
	k := []byte(key)
	marker := []byte(key + readyInfix + uuid.NewString())

	seen := make(chan struct{})
	if ready != nil {
		actx, stop := context.WithCancel(ctx)
		defer stop()
		go s.announce(actx, marker, seen)
	} else {
		close(seen)
	}

	err := s.db.Subscribe(ctx, func(list *badger.KVList) error {
		var last *pb.KV
		for _, kv := range list.GetKv() {
			switch {
			case bytes.Equal(kv.GetKey(), k):
				last = kv
			case bytes.Equal(kv.GetKey(), marker) && ready != nil:
				close(seen)
				ready()
				ready = nil
			}
		}
		if last == nil {
			return nil
		}
		// Values are never empty (SetWithTTL refuses them), so an empty
		// value here is a delete.
		if len(last.GetValue()) == 0 {
			fn(Change{Key: key, Deleted: true})
			return nil
		}
		fn(Change{Key: key, Value: last.GetValue()})
		return nil
	}, []pb.Match{{Prefix: k}})

	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("watch %s: %w", key, err)
	}
	return nil
}

// readyInfix separates a watched key from its readiness markers. Markers
// share the key as prefix so they reach the same subscription.
const readyInfix = "\x00ready/"

// announce writes marker until the subscription reports it. badger gives
// no signal when a subscriber is registered, so the first marker it sees
// is that signal.
func (s *Store) announce(ctx context.Context, marker []byte, seen <-chan struct{}) {
	t := time.NewTicker(announceInterval)
	defer t.Stop()
	for {
		err := s.db.Update(func(txn *badger.Txn) error {
			return txn.SetEntry(badger.NewEntry(marker, []byte{1}).WithTTL(time.Minute))
		})
		if err != nil {
			slog.Debug("write watch marker", "error", err)
		}
		select {
		case <-seen:
			return
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

const announceInterval = 10 * time.Millisecond

// badgerLogger routes badger's internal logging into slog.
type badgerLogger struct {
	l *slog.Logger
}

func (b badgerLogger) Errorf(f string, args ...any) {
	b.l.Error(strings.TrimSpace(fmt.Sprintf(f, args...)), "component", "badger")
}

func (b badgerLogger) Warningf(f string, args ...any) {
	b.l.Warn(strings.TrimSpace(fmt.Sprintf(f, args...)), "component", "badger")
}

// Infof is demoted to debug; badger logs every compaction at info.
func (b badgerLogger) Infof(f string, args ...any) {
	b.l.Debug(strings.TrimSpace(fmt.Sprintf(f, args...)), "component", "badger")
}

func (b badgerLogger) Debugf(f string, args ...any) {
	b.l.Debug(strings.TrimSpace(fmt.Sprintf(f, args...)), "component", "badger")
}
