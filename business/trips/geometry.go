// business/trips/geometry.go
package trips

import (
	"fareRadar/domain"
	"fareRadar/pkg/geo"
)

// computeSinuosity relates road distance to the straight line between the
// endpoints. Clamped to >= 1.0; degenerate straight distances report 1.0.
func computeSinuosity(roadDistanceM, straightM float64) float64 {
	if straightM <= 0 || roadDistanceM <= 0 {
		return 1.0
	}
	s := roadDistanceM / straightM
	if s < 1.0 {
		return 1.0
	}
	return s
}

// countTurns weighs maneuvers: a plain turn counts once, a rotary or
// roundabout twice.
func countTurns(maneuvers []domain.Maneuver) int {
	turns := 0
	for _, m := range maneuvers {
		switch m.Type {
		case "turn":
			turns++
		case "rotary", "roundabout":
			turns += 2
		}
	}
	return turns
}

// computeTurnForce sums the minimal bearing change of each maneuver and
// normalizes per kilometer. At least half the maneuvers must carry bearing
// data, otherwise the signal is too sparse and the force reports 0.
func computeTurnForce(maneuvers []domain.Maneuver, roadDistanceM float64) float64 {
	if len(maneuvers) == 0 || roadDistanceM <= 0 {
		return 0
	}

	withBearings := 0
	total := 0.0
	for _, m := range maneuvers {
		if m.BearingBefore == 0 && m.BearingAfter == 0 {
			continue
		}
		withBearings++
		total += geo.BearingDelta(m.BearingBefore, m.BearingAfter)
	}

	if withBearings*2 < len(maneuvers) {
		return 0
	}

	return total / (roadDistanceM / 1000)
}
