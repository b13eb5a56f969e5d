// Package champion holds the champion reference table used to resolve
// identifiers into display names and base attack speeds.
package champion

import (
	"fmt"
	"strconv"
	"sync"

	"go.aimuz.me/tempo/internal/types"
)

// Table is an identifier → entry lookup. The zero value is an empty table.
// It is filled at most once and read concurrently afterwards.
type Table struct {
	mu      sync.RWMutex
	version string
	entries map[int]types.ReferenceEntry
}

// NewTable returns a table holding entries.
func NewTable(version string, entries []types.ReferenceEntry) *Table {
	t := &Table{}
	t.replace(version, entries)
	return t
}

func (t *Table) replace(version string, entries []types.ReferenceEntry) {
	m := make(map[int]types.ReferenceEntry, len(entries))
	for _, e := range entries {
		m[e.ID] = e
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.version = version
	t.entries = m
}

// Lookup returns the entry for id.
func (t *Table) Lookup(id int) (types.ReferenceEntry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[id]
	return e, ok
}

// Display renders id for the event log: "Name - AS: 0.625" when known,
// otherwise the raw identifier.
func (t *Table) Display(id int) string {
	e, ok := t.Lookup(id)
	if !ok {
		return strconv.Itoa(id)
	}
	return fmt.Sprintf("%s - AS: %s", e.Name, strconv.FormatFloat(e.AttackSpeed, 'f', -1, 64))
}

// Len returns the number of entries.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Version returns the dataset version, empty if never loaded.
func (t *Table) Version() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

// Entries returns a copy of all entries in no particular order.
func (t *Table) Entries() []types.ReferenceEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]types.ReferenceEntry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	return out
}
