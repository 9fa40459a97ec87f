package game

import "math"

// Vector2 is a 2D world-space vector, mirroring the server's DbVector2.
type Vector2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Magnitude returns the Euclidean length of the vector.
func (v Vector2) Magnitude() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalized returns the unit-length vector pointing the same way.
// The zero vector is returned unchanged.
func (v Vector2) Normalized() Vector2 {
	mag := v.Magnitude()
	if mag == 0 {
		return Vector2{}
	}
	return Vector2{X: v.X / mag, Y: v.Y / mag}
}

// Entity is a server-owned physical object: a food pellet or a player
// circle. Position and mass live here; circles and food reference it by
// EntityID.
type Entity struct {
	EntityID uint64
	Position Vector2
	Mass     float64
}

// Circle is one mass-blob owned by a player. Many circles may share a
// PlayerID after a split. Mass and position come from the joined Entity.
type Circle struct {
	EntityID      uint64
	PlayerID      uint32
	Direction     Vector2
	Speed         float64
	LastSplitTime int64
}

// Food marks an entity as edible scenery.
type Food struct {
	EntityID uint64
}

// Player is keyed by the stable per-connection identity the server assigns.
// PlayerID is the numeric handle circles reference; zero means the server
// has not assigned one yet.
type Player struct {
	Identity      string
	PlayerID      uint32
	Name          string
	WalletAddress string
}

// Config is the singleton world configuration row.
type Config struct {
	ID                uint32
	WorldSize         float64
	InitialFoodTarget uint32
}

// RenderableFood is the Food ⋈ Entity join used for drawing.
type RenderableFood struct {
	EntityID uint64
	Position Vector2
	Mass     float64
	Radius   float64
}

// RenderableCircle is the Circle ⋈ Entity join used for drawing.
type RenderableCircle struct {
	Circle
	Position Vector2
	Mass     float64
	Radius   float64
}

// MassToRadius converts a blob's mass to its drawn radius.
func MassToRadius(mass float64) float64 {
	return math.Sqrt(mass)
}
