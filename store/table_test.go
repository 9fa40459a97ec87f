package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vpalmerio/MoveGameDB/game"
)

func newEntityTable() *Table[uint64, game.Entity] {
	return NewTable(func(e game.Entity) uint64 { return e.EntityID })
}

func TestTable_UpsertConvergence(t *testing.T) {
	tbl := newEntityTable()
	tbl.ApplyInsert(game.Entity{EntityID: 1, Mass: 10})
	tbl.ApplyUpdate(game.Entity{EntityID: 1, Mass: 10}, game.Entity{EntityID: 1, Mass: 25})

	require.Equal(t, 1, tbl.Len())
	got, ok := tbl.Get(1)
	require.True(t, ok)
	assert.Equal(t, 25.0, got.Mass)
}

func TestTable_UpdateWithoutPriorInsert(t *testing.T) {
	tbl := newEntityTable()
	tbl.ApplyUpdate(game.Entity{EntityID: 2}, game.Entity{EntityID: 2, Mass: 5})

	got, ok := tbl.Get(2)
	require.True(t, ok, "update must upsert even when the insert never arrived")
	assert.Equal(t, 5.0, got.Mass)
}

func TestTable_IdempotentDelete(t *testing.T) {
	tbl := newEntityTable()
	tbl.ApplyInsert(game.Entity{EntityID: 1})
	tbl.ApplyDelete(game.Entity{EntityID: 1})
	assert.Equal(t, 0, tbl.Len())

	assert.NotPanics(t, func() {
		tbl.ApplyDelete(game.Entity{EntityID: 1})
		tbl.ApplyDelete(game.Entity{EntityID: 99})
	})
	assert.Equal(t, 0, tbl.Len())
}

func TestTable_InitReplaces(t *testing.T) {
	tbl := newEntityTable()
	tbl.ApplyInsert(game.Entity{EntityID: 1})
	tbl.ApplyInsert(game.Entity{EntityID: 2})

	tbl.Init([]game.Entity{{EntityID: 7, Mass: 1}})

	assert.Equal(t, 1, tbl.Len())
	_, ok := tbl.Get(1)
	assert.False(t, ok, "init must discard pre-reconnect state")
}

func TestTable_SnapshotIsACopy(t *testing.T) {
	tbl := newEntityTable()
	tbl.ApplyInsert(game.Entity{EntityID: 1, Mass: 10})

	snap := tbl.Snapshot()
	snap[1] = game.Entity{EntityID: 1, Mass: 999}
	delete(snap, 1)
	snap[42] = game.Entity{EntityID: 42}

	got, ok := tbl.Get(1)
	require.True(t, ok)
	assert.Equal(t, 10.0, got.Mass, "mutating a snapshot must not touch the mirror")
	assert.Equal(t, 1, tbl.Len())
}

func TestTable_OnChange(t *testing.T) {
	tbl := newEntityTable()
	var fired int
	tbl.OnChange(func() { fired++ })

	tbl.ApplyInsert(game.Entity{EntityID: 1})
	tbl.ApplyUpdate(game.Entity{EntityID: 1}, game.Entity{EntityID: 1, Mass: 2})
	tbl.ApplyDelete(game.Entity{EntityID: 1})
	assert.Equal(t, 3, fired)

	tbl.ApplyDelete(game.Entity{EntityID: 1})
	assert.Equal(t, 3, fired, "a no-op delete is not a change")

	tbl.Init(nil)
	assert.Equal(t, 4, fired)
}
