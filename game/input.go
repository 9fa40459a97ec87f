package game

import "math"

// DirectionDeadZone is the pointer offset magnitude, in surface units,
// below which no direction update is emitted.
const DirectionDeadZone = 1.0

// PointerDirection converts a pointer position on the render surface into a
// unit-length movement direction relative to the surface center.
//
// Inside the dead zone nothing is emitted: a pointer parked at center means
// "no intent change", not "stop", so the last sent direction stays in
// effect server-side.
func PointerDirection(px, py, centerX, centerY, deadZone float64) (Vector2, bool) {
	dx := px - centerX
	dy := py - centerY
	mag := math.Hypot(dx, dy)
	if mag < deadZone {
		return Vector2{}, false
	}
	return Vector2{X: dx / mag, Y: dy / mag}, true
}
