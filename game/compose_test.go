package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeFood_JoinExclusion(t *testing.T) {
	food := map[uint64]Food{
		1: {EntityID: 1},
		2: {EntityID: 2},
	}
	entities := map[uint64]Entity{
		1: {EntityID: 1, Position: Vector2{X: 10, Y: 20}, Mass: 16},
	}

	got := ComposeFood(food, entities)
	require.Len(t, got, 1, "food without a backing entity must be excluded")
	assert.Equal(t, uint64(1), got[0].EntityID)
	assert.Equal(t, 16.0, got[0].Mass)
	assert.Equal(t, 4.0, got[0].Radius)

	// Once the missing entity arrives the next composition includes it.
	entities[2] = Entity{EntityID: 2, Position: Vector2{X: 5, Y: 5}, Mass: 9}
	got = ComposeFood(food, entities)
	require.Len(t, got, 2)
	assert.Equal(t, 3.0, got[1].Radius)
}

func TestComposeFood_ExcludesZeroMassEntity(t *testing.T) {
	food := map[uint64]Food{7: {EntityID: 7}}
	entities := map[uint64]Entity{7: {EntityID: 7}}

	assert.Empty(t, ComposeFood(food, entities))
}

func TestComposeCircles_JoinExclusion(t *testing.T) {
	circles := map[uint64]Circle{
		10: {EntityID: 10, PlayerID: 3},
		11: {EntityID: 11, PlayerID: 3}, // no entity yet
		12: {EntityID: 12},              // no player attribution yet
	}
	entities := map[uint64]Entity{
		10: {EntityID: 10, Position: Vector2{X: 1, Y: 2}, Mass: 25},
		12: {EntityID: 12, Position: Vector2{X: 3, Y: 4}, Mass: 25},
	}

	got := ComposeCircles(circles, entities)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(10), got[0].EntityID)
	assert.Equal(t, uint32(3), got[0].PlayerID)
	assert.Equal(t, 5.0, got[0].Radius)
}

func TestComposeCircles_StableOrdering(t *testing.T) {
	circles := map[uint64]Circle{}
	entities := map[uint64]Entity{}
	for id := uint64(1); id <= 50; id++ {
		circles[id] = Circle{EntityID: id, PlayerID: 1}
		entities[id] = Entity{EntityID: id, Mass: float64(id)}
	}

	first := ComposeCircles(circles, entities)
	second := ComposeCircles(circles, entities)
	require.Equal(t, first, second)
	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].EntityID, first[i].EntityID)
	}
}

func TestOwnedCircles(t *testing.T) {
	all := []RenderableCircle{
		{Circle: Circle{EntityID: 1, PlayerID: 7}, Mass: 10},
		{Circle: Circle{EntityID: 2, PlayerID: 8}, Mass: 20},
		{Circle: Circle{EntityID: 3, PlayerID: 7}, Mass: 30},
	}

	owned := OwnedCircles(all, 7)
	require.Len(t, owned, 2)
	assert.Equal(t, 40.0, TotalMass(owned))

	assert.Nil(t, OwnedCircles(all, 0), "unattributed player owns nothing")
}

func TestMassWeightedCenter(t *testing.T) {
	circles := []RenderableCircle{
		{Position: Vector2{X: 0, Y: 0}, Mass: 10},
		{Position: Vector2{X: 30, Y: 0}, Mass: 30},
	}

	center, ok := MassWeightedCenter(circles)
	require.True(t, ok)
	assert.InDelta(t, 22.5, center.X, 1e-9)
	assert.InDelta(t, 0.0, center.Y, 1e-9)

	_, ok = MassWeightedCenter(nil)
	assert.False(t, ok)
}
