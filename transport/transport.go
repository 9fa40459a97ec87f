// Package transport is the boundary with the replication backend: named
// query subscriptions, per-table row-change events, connection lifecycle
// callbacks, and outbound reducer invocations. The game never sees wire
// details past this package.
package transport

import (
	"context"
	"encoding/json"
)

// Op identifies the kind of row change carried by a RowEvent.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// RowEvent is one replicated row change. Rows are raw JSON here; the store
// normalizes them into canonical schemas.
type RowEvent struct {
	Table  string
	Op     Op
	Row    json.RawMessage
	OldRow json.RawMessage
}

// Conn is the replication connection contract. Registration methods return
// a cancel func that deregisters the callback; teardown must call every
// cancel before dropping the connection.
type Conn interface {
	// Connect starts the connection loop, reconnecting until ctx is
	// cancelled or Disconnect is called. It does not block.
	Connect(ctx context.Context)
	Disconnect()

	OnConnect(fn func(identity, token string)) (cancel func())
	OnDisconnect(fn func()) (cancel func())
	OnConnectError(fn func(err error)) (cancel func())
	OnRowEvent(table string, fn func(RowEvent)) (cancel func())

	// Subscribe registers a named query. onApplied fires once the query's
	// initial rows have been delivered; onError fires with a message on
	// subscription failure.
	Subscribe(query string, onApplied func(), onError func(msg string))

	// Rows returns the current raw rows delivered for a table, for
	// bootstrapping a mirror when a subscription becomes active.
	Rows(table string) []json.RawMessage

	// CallReducer invokes a server-side procedure by name. Fire and
	// forget: effects arrive later as replicated row changes.
	CallReducer(name string, args any) error
}
