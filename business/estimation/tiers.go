// business/estimation/tiers.go
package estimation

import (
	"errors"
	"sort"
)

// PriceTierTable is the fixed ascending list of valid fare amounts. Every
// monetary output of the engine snaps to one of its values.
type PriceTierTable struct {
	tiers []int
}

func NewPriceTierTable(tiers []int) (*PriceTierTable, error) {
	if len(tiers) == 0 {
		return nil, errors.New("empty tier table")
	}

	sorted := make([]int, len(tiers))
	copy(sorted, tiers)
	sort.Ints(sorted)

	// drop duplicates, keep strictly increasing
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}

	return &PriceTierTable{tiers: out}, nil
}

// Quantize clamps x into [min, max] and returns the nearest tier, ties broken
// toward the lower tier. Monotonic non-decreasing in x.
func (t *PriceTierTable) Quantize(x float64) int {
	tiers := t.tiers
	if x <= float64(tiers[0]) {
		return tiers[0]
	}
	if x >= float64(tiers[len(tiers)-1]) {
		return tiers[len(tiers)-1]
	}

	i := sort.Search(len(tiers), func(i int) bool {
		return float64(tiers[i]) >= x
	})

	lower, upper := tiers[i-1], tiers[i]
	if x-float64(lower) <= float64(upper)-x {
		return lower
	}
	return upper
}

// ByIndex maps a classifier class index to its tier value.
func (t *PriceTierTable) ByIndex(i int) (int, bool) {
	if i < 0 || i >= len(t.tiers) {
		return 0, false
	}
	return t.tiers[i], true
}

func (t *PriceTierTable) Min() int { return t.tiers[0] }

func (t *PriceTierTable) Max() int { return t.tiers[len(t.tiers)-1] }

func (t *PriceTierTable) Len() int { return len(t.tiers) }
