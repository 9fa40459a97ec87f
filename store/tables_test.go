package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vpalmerio/MoveGameDB/transport"
)

func TestTables_ApplyRoutes(t *testing.T) {
	ts := NewTables(nil)

	ts.Apply(transport.RowEvent{Table: TableEntity, Op: transport.OpInsert,
		Row: []byte(`{"entityId":1,"mass":10,"position":{"x":0,"y":0}}`)})
	ts.Apply(transport.RowEvent{Table: TableCircle, Op: transport.OpInsert,
		Row: []byte(`{"entityId":1,"playerId":7}`)})
	ts.Apply(transport.RowEvent{Table: TablePlayer, Op: transport.OpInsert,
		Row: []byte(`{"identity":"0x1","playerId":7,"name":"Ana"}`)})

	assert.Equal(t, 1, ts.Entities.Len())
	assert.Equal(t, 1, ts.Circles.Len())
	p, ok := ts.Players.Get("0x1")
	require.True(t, ok)
	assert.Equal(t, "Ana", p.Name)
}

func TestTables_ApplyDropsUnkeyableRow(t *testing.T) {
	ts := NewTables(nil)
	ts.Apply(transport.RowEvent{Table: TableEntity, Op: transport.OpInsert, Row: []byte(`{"mass":10}`)})
	assert.Equal(t, 0, ts.Entities.Len())
}

func TestTables_UpdateWithMissingOldRow(t *testing.T) {
	ts := NewTables(nil)
	ts.Apply(transport.RowEvent{Table: TableEntity, Op: transport.OpUpdate,
		Row: []byte(`{"entityId":4,"mass":8}`)})

	got, ok := ts.Entities.Get(4)
	require.True(t, ok)
	assert.Equal(t, 8.0, got.Mass)
}

func TestTables_InitTableAndReset(t *testing.T) {
	ts := NewTables(nil)
	ts.InitTable(TableFood, []json.RawMessage{
		[]byte(`{"entityId":1}`),
		[]byte(`{"bogus":true}`),
		[]byte(`{"entityId":2}`),
	})
	assert.Equal(t, 2, ts.Food.Len(), "unkeyable snapshot rows are skipped")

	ts.Reset()
	assert.Equal(t, 0, ts.Food.Len())
}

func TestTables_ConfigRow(t *testing.T) {
	ts := NewTables(nil)
	_, ok := ts.ConfigRow()
	assert.False(t, ok)

	ts.Apply(transport.RowEvent{Table: TableConfig, Op: transport.OpInsert,
		Row: []byte(`{"id":0,"worldSize":1000,"initialFoodTarget":600}`)})
	cfg, ok := ts.ConfigRow()
	require.True(t, ok)
	assert.Equal(t, 1000.0, cfg.WorldSize)
}

func TestTables_OnChangeCoversAllMirrors(t *testing.T) {
	ts := NewTables(nil)
	var fired int
	ts.OnChange(func() { fired++ })

	ts.Apply(transport.RowEvent{Table: TableEntity, Op: transport.OpInsert, Row: []byte(`{"entityId":1}`)})
	ts.Apply(transport.RowEvent{Table: TableFood, Op: transport.OpInsert, Row: []byte(`{"entityId":1}`)})
	assert.Equal(t, 2, fired)
}
