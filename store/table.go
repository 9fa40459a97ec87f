// Package store keeps the client-side mirrors of the server's replicated
// tables and the normalization boundary that turns wire rows into canonical
// schemas. Nothing outside this package mutates a mirror.
package store

import "sync"

// Table is an in-memory mirror of one replicated table, keyed by that
// table's primary key. Insert and update both upsert; delete tolerates rows
// that were already removed, since per-table delivery may be reordered
// relative to what the client has seen.
type Table[K comparable, R any] struct {
	mu       sync.RWMutex
	rows     map[K]R
	key      func(R) K
	onChange []func()
}

func NewTable[K comparable, R any](key func(R) K) *Table[K, R] {
	return &Table[K, R]{
		rows: make(map[K]R),
		key:  key,
	}
}

// Init replaces the entire mirror with a fresh snapshot. Called when a
// subscription first becomes active; a reconnect invalidates old state.
func (t *Table[K, R]) Init(rows []R) {
	t.mu.Lock()
	t.rows = make(map[K]R, len(rows))
	for _, r := range rows {
		t.rows[t.key(r)] = r
	}
	t.mu.Unlock()
	t.notify()
}

func (t *Table[K, R]) ApplyInsert(row R) {
	t.mu.Lock()
	t.rows[t.key(row)] = row
	t.mu.Unlock()
	t.notify()
}

// ApplyUpdate upserts by the new row's key. If the old row was mirrored
// under a different key it is removed, so a key change cannot leave a stale
// twin behind.
func (t *Table[K, R]) ApplyUpdate(old, new R) {
	t.mu.Lock()
	oldKey, newKey := t.key(old), t.key(new)
	if oldKey != newKey {
		delete(t.rows, oldKey)
	}
	t.rows[newKey] = new
	t.mu.Unlock()
	t.notify()
}

// ApplyDelete removes by key; deleting an absent row is a no-op and fires
// no change notification.
func (t *Table[K, R]) ApplyDelete(row R) {
	k := t.key(row)
	t.mu.Lock()
	_, present := t.rows[k]
	delete(t.rows, k)
	t.mu.Unlock()
	if present {
		t.notify()
	}
}

func (t *Table[K, R]) Get(k K) (R, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.rows[k]
	return r, ok
}

func (t *Table[K, R]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Snapshot returns a fresh shallow copy of the mirror. Callers own the
// returned map and may mutate it freely.
func (t *Table[K, R]) Snapshot() map[K]R {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[K]R, len(t.rows))
	for k, r := range t.rows {
		out[k] = r
	}
	return out
}

// OnChange registers a callback fired after every applied mutation. The
// callback runs outside the table lock.
func (t *Table[K, R]) OnChange(fn func()) {
	t.mu.Lock()
	t.onChange = append(t.onChange, fn)
	t.mu.Unlock()
}

func (t *Table[K, R]) notify() {
	t.mu.RLock()
	handlers := make([]func(), len(t.onChange))
	copy(handlers, t.onChange)
	t.mu.RUnlock()
	for _, fn := range handlers {
		fn()
	}
}
