// business/estimation/search.go
package estimation

import (
	"context"
	"strconv"
	"sync"

	"fareRadar/domain"
	"fareRadar/pkg/metrics"
)

// TripRepository is the candidate source. An empty filter returns the full
// history.
type TripRepository interface {
	QueryCandidates(ctx context.Context, filter CandidateFilter) ([]domain.Trip, error)
	AveragePricePerKm(ctx context.Context) (float64, error)
	AveragePriceByCity(ctx context.Context, city string) (float64, error)
}

// CandidateFilter is the coarse administrative pre-filter. Empty slices mean
// no constraint on that axis.
type CandidateFilter struct {
	Cities    []string
	Districts []string
}

func (f CandidateFilter) Empty() bool {
	return len(f.Cities) == 0 && len(f.Districts) == 0
}

// Search levels, in fixed order. The first level yielding at least one
// candidate wins.
type searchLevel struct {
	number       int
	narrow       bool
	exactContext bool
	reliability  float64
	status       string
}

var searchLevels = [4]searchLevel{
	{number: 1, narrow: true, exactContext: true, reliability: 0.95, status: domain.StatusExact},
	{number: 2, narrow: true, exactContext: false, reliability: 0.85, status: domain.StatusSimilarNarrow},
	{number: 3, narrow: false, exactContext: true, reliability: 0.75, status: domain.StatusSimilarWide},
	{number: 4, narrow: false, exactContext: false, reliability: 0.65, status: domain.StatusSimilarVarsDiffer},
}

// matchResult is the controller's output for a successful search.
type matchResult struct {
	level   searchLevel
	matched []domain.Trip

	perimeterMethod string
	differingVars   []string
}

// fanOutThreshold is the candidate count above which containment checks run
// on the worker pool instead of inline.
const fanOutThreshold = 32

// runSearch drives the four-level relaxation hierarchy. Returns nil when no
// level yields a candidate.
func (s *Service) runSearch(ctx context.Context, req *resolvedRequest, candidates []domain.Trip) *matchResult {
	var narrowPair, widePair *perimeterPair

	for _, level := range searchLevels {
		var pair *perimeterPair
		if level.narrow {
			if narrowPair == nil {
				narrowPair = s.buildPerimeters(ctx, req, true)
			}
			pair = narrowPair
		} else {
			if widePair == nil {
				widePair = s.buildPerimeters(ctx, req, false)
			}
			pair = widePair
		}

		pool := candidates
		if level.exactContext {
			pool = filterExactContext(pool, req)
		}

		tolerance := s.cfg.WideDistanceTolerance
		if level.narrow {
			tolerance = s.cfg.NarrowDistanceTolerance
		}

		matched := s.matchCandidates(pool, pair, req.routeDistanceM, tolerance)
		if len(matched) == 0 {
			continue
		}

		metrics.RelaxationLevel.WithLabelValues(strconv.Itoa(level.number)).Inc()

		res := &matchResult{
			level:           level,
			matched:         matched,
			perimeterMethod: pair.method,
		}
		if !level.exactContext {
			res.differingVars = differingVariables(matched, req)
		}
		return res
	}

	return nil
}

// filterExactContext keeps candidates compatible with the request context on
// every known axis. A candidate with an unset axis always passes that axis;
// an unset request axis constrains nothing.
func filterExactContext(trips []domain.Trip, req *resolvedRequest) []domain.Trip {
	out := make([]domain.Trip, 0, len(trips))
	for _, t := range trips {
		if req.timeBucket != "" && t.TimeBucket != nil && *t.TimeBucket != req.timeBucket {
			continue
		}
		if req.weatherCode != nil && t.WeatherCode != nil {
			d := *t.WeatherCode - *req.weatherCode
			if d < -1 || d > 1 {
				continue
			}
		}
		if req.zoneType != nil && t.ZoneType != nil && *t.ZoneType != *req.zoneType {
			continue
		}
		out = append(out, t)
	}
	return out
}

// matchCandidates applies the perimeter predicate and the distance tolerance.
// Large pools fan out across the worker pool; checks are read-only.
func (s *Service) matchCandidates(pool []domain.Trip, pair *perimeterPair, reqDistanceM, tolerance float64) []domain.Trip {
	accept := func(t *domain.Trip) bool {
		if reqDistanceM > 0 {
			lo := reqDistanceM * (1 - tolerance)
			hi := reqDistanceM * (1 + tolerance)
			if t.RoadDistanceM < lo || t.RoadDistanceM > hi {
				return false
			}
		}
		return pair.containsStart(t.StartPoint.Latitude, t.StartPoint.Longitude) &&
			pair.containsEnd(t.EndPoint.Latitude, t.EndPoint.Longitude)
	}

	if len(pool) <= fanOutThreshold || s.cfg.SearchWorkers <= 1 {
		matched := make([]domain.Trip, 0)
		for i := range pool {
			if accept(&pool[i]) {
				matched = append(matched, pool[i])
			}
		}
		return matched
	}

	hits := make([]bool, len(pool))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < s.cfg.SearchWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				hits[i] = accept(&pool[i])
			}
		}()
	}
	for i := range pool {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	matched := make([]domain.Trip, 0)
	for i, hit := range hits {
		if hit {
			matched = append(matched, pool[i])
		}
	}
	return matched
}

// differingVariables names the context axes where the matched majority
// disagrees with the request. Only axes known on both sides count.
func differingVariables(matched []domain.Trip, req *resolvedRequest) []string {
	var out []string

	if req.timeBucket != "" {
		if b, ok := majorityBucket(matched); ok && b != req.timeBucket {
			out = append(out, "time_bucket")
		}
	}
	if req.weatherCode != nil {
		if w, ok := majorityWeather(matched); ok && w != *req.weatherCode {
			out = append(out, "weather")
		}
	}
	if req.zoneType != nil {
		if z, ok := majorityZone(matched); ok && z != *req.zoneType {
			out = append(out, "zone")
		}
	}

	return out
}

func majorityBucket(trips []domain.Trip) (string, bool) {
	counts := make(map[string]int)
	for _, t := range trips {
		if t.TimeBucket != nil {
			counts[*t.TimeBucket]++
		}
	}
	return pickMajority(counts)
}

func majorityWeather(trips []domain.Trip) (int16, bool) {
	counts := make(map[int16]int)
	for _, t := range trips {
		if t.WeatherCode != nil {
			counts[*t.WeatherCode]++
		}
	}
	return pickMajority(counts)
}

func majorityZone(trips []domain.Trip) (int16, bool) {
	counts := make(map[int16]int)
	for _, t := range trips {
		if t.ZoneType != nil {
			counts[*t.ZoneType]++
		}
	}
	return pickMajority(counts)
}

func pickMajority[K comparable](counts map[K]int) (K, bool) {
	var (
		best  K
		bestN int
	)
	for k, n := range counts {
		if n > bestN {
			best, bestN = k, n
		}
	}
	return best, bestN > 0
}
