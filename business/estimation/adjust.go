// business/estimation/adjust.go
package estimation

import (
	"fmt"

	"fareRadar/domain"
)

type aggregate struct {
	mean, min, max float64
	meanDistanceM  float64
}

func aggregatePrices(trips []domain.Trip) aggregate {
	agg := aggregate{min: trips[0].PricePaid, max: trips[0].PricePaid}

	var priceSum, distSum float64
	for _, t := range trips {
		priceSum += t.PricePaid
		distSum += t.RoadDistanceM
		if t.PricePaid < agg.min {
			agg.min = t.PricePaid
		}
		if t.PricePaid > agg.max {
			agg.max = t.PricePaid
		}
	}

	n := float64(len(trips))
	agg.mean = priceSum / n
	agg.meanDistanceM = distSum / n
	return agg
}

// adjustedPrices is the aggregator/adjuster output, pre-quantization mean
// carried for the audit trail.
type adjustedPrices struct {
	meanQ, minQ, maxQ int
	adjustments       []domain.AppliedAdjustment
}

// applyAdjustments runs the correction pipeline over the matched set, in
// fixed order: distance delta, night premium, weather delta, congestion
// premium, learned nudge. Min and max follow the mean's overall ratio, then
// all three quantize.
func (s *Service) applyAdjustments(res *matchResult, req *resolvedRequest, withNudge bool) adjustedPrices {
	agg := aggregatePrices(res.matched)
	mean := agg.mean
	var adjustments []domain.AppliedAdjustment

	// Distance delta, wide levels only. Narrow levels are already within
	// tight tolerance.
	if !res.level.narrow && req.routeDistanceM > 0 {
		deltaKm := (req.routeDistanceM - agg.meanDistanceM) / 1000
		amount := deltaKm * s.cfg.PerKmRateCFA
		if amount != 0 {
			mean += amount
			adjustments = append(adjustments, domain.AppliedAdjustment{
				Kind:      "distance",
				AmountCFA: amount,
				Detail:    fmt.Sprintf("%.0f m requested vs %.0f m matched mean", req.routeDistanceM, agg.meanDistanceM),
			})
		}
	}

	// Night premium, relaxed-context levels only. Asymmetric: moving into
	// night costs more than moving out saves.
	if !res.level.exactContext && req.timeBucket != "" {
		if matchedBucket, ok := majorityBucket(res.matched); ok && matchedBucket != req.timeBucket {
			reqNight := req.timeBucket == domain.TimeBucketNight
			matchedNight := matchedBucket == domain.TimeBucketNight

			if reqNight && !matchedNight {
				amount := mean * s.cfg.NightPremiumIn
				mean += amount
				adjustments = append(adjustments, domain.AppliedAdjustment{
					Kind:      "night",
					AmountCFA: amount,
					Detail:    "matched trips are " + matchedBucket + ", request is night",
				})
			} else if !reqNight && matchedNight {
				amount := mean * s.cfg.NightPremiumOut
				mean -= amount
				adjustments = append(adjustments, domain.AppliedAdjustment{
					Kind:      "night",
					AmountCFA: -amount,
					Detail:    "matched trips are night, request is " + req.timeBucket,
				})
			}
		}
	}

	// Weather delta, relaxed-context levels only.
	if !res.level.exactContext && req.weatherCode != nil {
		if matchedWeather, ok := majorityWeather(res.matched); ok && matchedWeather != *req.weatherCode {
			if *req.weatherCode > matchedWeather {
				amount := mean * s.cfg.WeatherPremiumWorse
				mean += amount
				adjustments = append(adjustments, domain.AppliedAdjustment{
					Kind:      "weather",
					AmountCFA: amount,
					Detail:    fmt.Sprintf("request %s vs matched %s", domain.WeatherLabel(*req.weatherCode), domain.WeatherLabel(matchedWeather)),
				})
			} else {
				amount := mean * s.cfg.WeatherDiscountBetter
				mean -= amount
				adjustments = append(adjustments, domain.AppliedAdjustment{
					Kind:      "weather",
					AmountCFA: -amount,
					Detail:    fmt.Sprintf("request %s vs matched %s", domain.WeatherLabel(*req.weatherCode), domain.WeatherLabel(matchedWeather)),
				})
			}
		}
	}

	// User-reported congestion, independent of the matching hierarchy.
	if req.UserCongestion != nil && int(*req.UserCongestion) >= s.cfg.CongestionThreshold {
		amount := mean * s.cfg.CongestionPremium
		mean += amount
		adjustments = append(adjustments, domain.AppliedAdjustment{
			Kind:      "congestion",
			AmountCFA: amount,
			Detail:    fmt.Sprintf("user reported %d/10", *req.UserCongestion),
		})
	}

	// Learned nudge, always last, matched results only.
	if withNudge && s.nudger != nil {
		factor := s.nudger.NudgeFactor(req.timeBucket, req.weatherValue(), req.zoneValue())
		if factor != 0 {
			amount := mean * factor
			mean += amount
			adjustments = append(adjustments, domain.AppliedAdjustment{
				Kind:      "nudge",
				AmountCFA: amount,
				Detail:    fmt.Sprintf("learned adjustment %+.0f%%", factor*100),
			})
		}
	}

	// Min/max follow the mean's overall scaling ratio.
	minAdj, maxAdj := agg.min, agg.max
	if agg.mean > 0 {
		ratio := mean / agg.mean
		minAdj *= ratio
		maxAdj *= ratio
	}

	return adjustedPrices{
		meanQ:       s.tiers.Quantize(mean),
		minQ:        s.tiers.Quantize(minAdj),
		maxQ:        s.tiers.Quantize(maxAdj),
		adjustments: adjustments,
	}
}
