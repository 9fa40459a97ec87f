package transport

import (
	"encoding/json"
	"fmt"
)

// Server envelope types.
const (
	envIdentity = "identity"
	envSnapshot = "snapshot"
	envApplied  = "applied"
	envError    = "error"
	envInsert   = "insert"
	envUpdate   = "update"
	envDelete   = "delete"
)

// serverEnvelope is one frame from the replication stream.
type serverEnvelope struct {
	Type     string            `json:"type"`
	Table    string            `json:"table,omitempty"`
	Query    string            `json:"query,omitempty"`
	Row      json.RawMessage   `json:"row,omitempty"`
	OldRow   json.RawMessage   `json:"oldRow,omitempty"`
	Rows     []json.RawMessage `json:"rows,omitempty"`
	Identity string            `json:"identity,omitempty"`
	Token    string            `json:"token,omitempty"`
	Message  string            `json:"message,omitempty"`
}

// clientEnvelope is one frame sent to the backend.
type clientEnvelope struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Module  string `json:"module,omitempty"`
	Query   string `json:"query,omitempty"`
	Reducer string `json:"reducer,omitempty"`
	Args    any    `json:"args,omitempty"`
	Token   string `json:"token,omitempty"`
}

func decodeServerEnvelope(data []byte) (serverEnvelope, error) {
	var env serverEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return serverEnvelope{}, fmt.Errorf("decode server envelope: %w", err)
	}
	if env.Type == "" {
		return serverEnvelope{}, fmt.Errorf("server envelope missing type")
	}
	return env, nil
}

// rowEvent converts a row-change envelope into the boundary event type.
// Returns false for envelope types that are not row changes.
func (env serverEnvelope) rowEvent() (RowEvent, bool) {
	var op Op
	switch env.Type {
	case envInsert:
		op = OpInsert
	case envUpdate:
		op = OpUpdate
	case envDelete:
		op = OpDelete
	default:
		return RowEvent{}, false
	}
	return RowEvent{Table: env.Table, Op: op, Row: env.Row, OldRow: env.OldRow}, true
}
