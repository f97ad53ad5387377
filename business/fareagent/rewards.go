// business/fareagent/rewards.go
package fareagent

import "math"

// reward scores one counterfactual action against a completed trip: how close
// the un-nudged estimate, adjusted by that action, lands to the price the
// rider actually paid. Perfect agreement scores +1, an error of one full paid
// price or more scores -1. All actions of a trip are scored, not just the one
// that happened to be played when the trip was estimated.
func reward(paidPrice, unnudgedEstimate, action float64) float64 {
	adjusted := unnudgedEstimate * (1 + action)
	r := 1 - 2*math.Abs(paidPrice-adjusted)/paidPrice

	if r < -1 {
		return -1
	}
	if r > 1 {
		return 1
	}
	return r
}
