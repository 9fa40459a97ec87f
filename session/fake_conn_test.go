package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/vpalmerio/MoveGameDB/transport"
)

// fakeConn is an in-memory transport for driving the session from tests.
type fakeConn struct {
	mu           sync.Mutex
	nextID       int
	onConnect    map[int]func(identity, token string)
	onDisconnect map[int]func()
	onConnectErr map[int]func(error)
	onRow        map[string]map[int]func(transport.RowEvent)
	subs         map[string]fakeSub
	rows         map[string][]json.RawMessage
	calls        []fakeCall
	disconnected bool
}

type fakeSub struct {
	onApplied func()
	onError   func(string)
}

type fakeCall struct {
	reducer string
	args    any
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		onConnect:    make(map[int]func(string, string)),
		onDisconnect: make(map[int]func()),
		onConnectErr: make(map[int]func(error)),
		onRow:        make(map[string]map[int]func(transport.RowEvent)),
		subs:         make(map[string]fakeSub),
		rows:         make(map[string][]json.RawMessage),
	}
}

func (f *fakeConn) Connect(ctx context.Context) {}

func (f *fakeConn) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnected = true
}

func (f *fakeConn) OnConnect(fn func(identity, token string)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.onConnect[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.onConnect, id)
	}
}

func (f *fakeConn) OnDisconnect(fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.onDisconnect[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.onDisconnect, id)
	}
}

func (f *fakeConn) OnConnectError(fn func(error)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.onConnectErr[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.onConnectErr, id)
	}
}

func (f *fakeConn) OnRowEvent(table string, fn func(transport.RowEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	if f.onRow[table] == nil {
		f.onRow[table] = make(map[int]func(transport.RowEvent))
	}
	f.onRow[table][id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.onRow[table], id)
	}
}

func (f *fakeConn) Subscribe(query string, onApplied func(), onError func(string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[query] = fakeSub{onApplied: onApplied, onError: onError}
}

func (f *fakeConn) Rows(table string) []json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[table]
}

func (f *fakeConn) CallReducer(name string, args any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{reducer: name, args: args})
	return nil
}

// --- test drivers ---

func (f *fakeConn) fireConnect(identity, token string) {
	f.mu.Lock()
	fns := handlers(f.onConnect)
	f.mu.Unlock()
	for _, fn := range fns {
		fn(identity, token)
	}
}

func (f *fakeConn) fireDisconnect() {
	f.mu.Lock()
	fns := handlers(f.onDisconnect)
	f.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (f *fakeConn) fireConnectError(err error) {
	f.mu.Lock()
	fns := handlers(f.onConnectErr)
	f.mu.Unlock()
	for _, fn := range fns {
		fn(err)
	}
}

func (f *fakeConn) fireRow(ev transport.RowEvent) {
	f.mu.Lock()
	fns := handlers(f.onRow[ev.Table])
	f.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// applySnapshot stores rows for a table and fires its query's onApplied.
func (f *fakeConn) applySnapshot(table string, rows ...json.RawMessage) {
	f.mu.Lock()
	f.rows[table] = rows
	sub, ok := f.subs[queryFor(table)]
	f.mu.Unlock()
	if ok && sub.onApplied != nil {
		sub.onApplied()
	}
}

func (f *fakeConn) callLog() []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]fakeCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func handlers[T any](m map[int]T) []T {
	out := make([]T, 0, len(m))
	for _, fn := range m {
		out = append(out, fn)
	}
	return out
}
