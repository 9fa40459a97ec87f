package game

import "sort"

// ComposeFood joins food rows with their backing entities. Food whose
// entity has not arrived yet, or whose entity carries no usable mass, is
// excluded; per-table delivery order makes both directions of that gap
// normal, so exclusion is silent. Output is sorted by EntityID so repeated
// compositions over the same data render identically.
func ComposeFood(food map[uint64]Food, entities map[uint64]Entity) []RenderableFood {
	out := make([]RenderableFood, 0, len(food))
	for id := range food {
		ent, ok := entities[id]
		if !ok || ent.Mass <= 0 {
			continue
		}
		out = append(out, RenderableFood{
			EntityID: id,
			Position: ent.Position,
			Mass:     ent.Mass,
			Radius:   MassToRadius(ent.Mass),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}

// ComposeCircles joins circle rows with their backing entities. Circles
// without a backing entity, without usable mass, or not yet attributed to a
// player are excluded.
func ComposeCircles(circles map[uint64]Circle, entities map[uint64]Entity) []RenderableCircle {
	out := make([]RenderableCircle, 0, len(circles))
	for id, c := range circles {
		if c.PlayerID == 0 {
			continue
		}
		ent, ok := entities[id]
		if !ok || ent.Mass <= 0 {
			continue
		}
		out = append(out, RenderableCircle{
			Circle:   c,
			Position: ent.Position,
			Mass:     ent.Mass,
			Radius:   MassToRadius(ent.Mass),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}

// OwnedCircles filters the composed set down to one player's circles.
func OwnedCircles(all []RenderableCircle, playerID uint32) []RenderableCircle {
	if playerID == 0 {
		return nil
	}
	var owned []RenderableCircle
	for _, c := range all {
		if c.PlayerID == playerID {
			owned = append(owned, c)
		}
	}
	return owned
}

// TotalMass sums the mass of the given circles.
func TotalMass(circles []RenderableCircle) float64 {
	var total float64
	for _, c := range circles {
		total += c.Mass
	}
	return total
}

// MassWeightedCenter returns the centroid of the circles weighted by mass,
// used to aim the camera at the middle of a split-up player. ok is false
// when there is no mass to weigh.
func MassWeightedCenter(circles []RenderableCircle) (Vector2, bool) {
	var xSum, ySum, mSum float64
	for _, c := range circles {
		xSum += c.Position.X * c.Mass
		ySum += c.Position.Y * c.Mass
		mSum += c.Mass
	}
	if mSum <= 0 {
		return Vector2{}, false
	}
	return Vector2{X: xSum / mSum, Y: ySum / mSum}, true
}
