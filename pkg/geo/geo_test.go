package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineM(t *testing.T) {
	// Akwa to Bonanjo, central Douala, roughly 1.9 km apart
	d := HaversineM(4.0483, 9.7043, 4.0415, 9.6889)
	assert.InDelta(t, 1870, d, 100)

	assert.Zero(t, HaversineM(4.05, 9.70, 4.05, 9.70))
}

func TestBearingDelta(t *testing.T) {
	tests := []struct {
		name   string
		b1, b2 float64
		want   float64
	}{
		{"same", 90, 90, 0},
		{"quarter", 0, 90, 90},
		{"wraparound", 350, 10, 20},
		{"opposite", 0, 180, 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, BearingDelta(tt.b1, tt.b2), 1e-9)
		})
	}
}

func TestPointInPolygon(t *testing.T) {
	square := Polygon{{0, 0}, {2, 0}, {2, 2}, {0, 2}}

	assert.True(t, PointInPolygon(1, 1, square))
	assert.False(t, PointInPolygon(3, 1, square))
	assert.False(t, PointInPolygon(-1, -1, square))

	// degenerate ring never contains
	assert.False(t, PointInPolygon(1, 1, Polygon{{0, 0}, {2, 2}}))
}
