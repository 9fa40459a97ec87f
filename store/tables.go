package store

import (
	"encoding/json"
	"log/slog"

	"github.com/vpalmerio/MoveGameDB/game"
	"github.com/vpalmerio/MoveGameDB/metrics"
	"github.com/vpalmerio/MoveGameDB/transport"
)

// Tables bundles the five mirrors the client keeps and routes raw row
// events into them.
type Tables struct {
	Entities *Table[uint64, game.Entity]
	Circles  *Table[uint64, game.Circle]
	Food     *Table[uint64, game.Food]
	Players  *Table[string, game.Player]
	Config   *Table[uint32, game.Config]

	logger *slog.Logger
}

func NewTables(logger *slog.Logger) *Tables {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tables{
		Entities: NewTable(func(e game.Entity) uint64 { return e.EntityID }),
		Circles:  NewTable(func(c game.Circle) uint64 { return c.EntityID }),
		Food:     NewTable(func(f game.Food) uint64 { return f.EntityID }),
		Players:  NewTable(func(p game.Player) string { return p.Identity }),
		Config:   NewTable(func(c game.Config) uint32 { return c.ID }),
		logger:   logger.With("component", "store"),
	}
}

// Apply normalizes and routes one replicated row change to its mirror.
// Rows that cannot be keyed are counted, logged, and dropped; the client
// keeps running on whatever state it has.
func (ts *Tables) Apply(ev transport.RowEvent) {
	switch ev.Table {
	case TableEntity:
		applyEvent(ts, ts.Entities, ev, DecodeEntity)
	case TableCircle:
		applyEvent(ts, ts.Circles, ev, DecodeCircle)
	case TableFood:
		applyEvent(ts, ts.Food, ev, DecodeFood)
	case TablePlayer:
		applyEvent(ts, ts.Players, ev, DecodePlayer)
	case TableConfig:
		applyEvent(ts, ts.Config, ev, DecodeConfig)
	default:
		ts.logger.Debug("event for unmirrored table", "table", ev.Table)
	}
}

// InitTable bulk-loads a table's snapshot, replacing prior content.
func (ts *Tables) InitTable(table string, rows []json.RawMessage) {
	switch table {
	case TableEntity:
		initTable(ts, ts.Entities, table, rows, DecodeEntity)
	case TableCircle:
		initTable(ts, ts.Circles, table, rows, DecodeCircle)
	case TableFood:
		initTable(ts, ts.Food, table, rows, DecodeFood)
	case TablePlayer:
		initTable(ts, ts.Players, table, rows, DecodePlayer)
	case TableConfig:
		initTable(ts, ts.Config, table, rows, DecodeConfig)
	}
}

// Reset empties every mirror. Used when a fresh connection invalidates all
// prior replicated state.
func (ts *Tables) Reset() {
	ts.Entities.Init(nil)
	ts.Circles.Init(nil)
	ts.Food.Init(nil)
	ts.Players.Init(nil)
	ts.Config.Init(nil)
}

// OnChange registers fn on every mirror.
func (ts *Tables) OnChange(fn func()) {
	ts.Entities.OnChange(fn)
	ts.Circles.OnChange(fn)
	ts.Food.OnChange(fn)
	ts.Players.OnChange(fn)
	ts.Config.OnChange(fn)
}

// ConfigRow returns the singleton config row if it has arrived.
func (ts *Tables) ConfigRow() (game.Config, bool) {
	for _, cfg := range ts.Config.Snapshot() {
		return cfg, true
	}
	return game.Config{}, false
}

func applyEvent[K comparable, R any](ts *Tables, t *Table[K, R], ev transport.RowEvent, decode func(json.RawMessage) (R, error)) {
	row, err := decode(ev.Row)
	if err != nil {
		ts.logger.Warn("dropping unkeyable row", "table", ev.Table, "op", ev.Op, "error", err)
		metrics.RowsRejected.WithLabelValues(ev.Table).Inc()
		return
	}
	switch ev.Op {
	case transport.OpInsert:
		t.ApplyInsert(row)
	case transport.OpUpdate:
		old, oldErr := decode(ev.OldRow)
		if oldErr != nil {
			// Without a usable old row the update is still an upsert.
			old = row
		}
		t.ApplyUpdate(old, row)
	case transport.OpDelete:
		t.ApplyDelete(row)
	default:
		return
	}
	metrics.RowsApplied.WithLabelValues(ev.Table, string(ev.Op)).Inc()
}

func initTable[K comparable, R any](ts *Tables, t *Table[K, R], table string, raws []json.RawMessage, decode func(json.RawMessage) (R, error)) {
	rows := make([]R, 0, len(raws))
	for _, raw := range raws {
		row, err := decode(raw)
		if err != nil {
			ts.logger.Warn("dropping unkeyable snapshot row", "table", table, "error", err)
			metrics.RowsRejected.WithLabelValues(table).Inc()
			continue
		}
		rows = append(rows, row)
	}
	t.Init(rows)
}
