// business/estimation/perimeter.go
package estimation

import (
	"context"
	"sync"

	"fareRadar/pkg/geo"
	"fareRadar/pkg/logger"
	"fareRadar/pkg/metrics"
)

// IsochroneRepository fetches a travel-time polygon around a point.
type IsochroneRepository interface {
	GetIsochrone(ctx context.Context, lon, lat float64, minutes int) (geo.Polygon, error)
}

const (
	perimeterIsochrone = "isochrone"
	perimeterCircle    = "circle"
)

// perimeterPair is the containment predicate for one search width. The two
// endpoints always share a method: isochrone polygons for both, or circles
// for both. Mixing methods within one level is not allowed.
type perimeterPair struct {
	method string

	startPoly geo.Polygon
	endPoly   geo.Polygon

	startLat, startLon float64
	endLat, endLon     float64
	radiusM            float64
}

func (p *perimeterPair) containsStart(lat, lon float64) bool {
	if p.method == perimeterIsochrone {
		return geo.PointInPolygon(lon, lat, p.startPoly)
	}
	return geo.HaversineM(p.startLat, p.startLon, lat, lon) <= p.radiusM
}

func (p *perimeterPair) containsEnd(lat, lon float64) bool {
	if p.method == perimeterIsochrone {
		return geo.PointInPolygon(lon, lat, p.endPoly)
	}
	return geo.HaversineM(p.endLat, p.endLon, lat, lon) <= p.radiusM
}

// buildPerimeters fetches departure and arrival isochrones concurrently. If
// either fetch fails, both endpoints downgrade to fixed-radius circles for
// this width.
func (s *Service) buildPerimeters(ctx context.Context, req *resolvedRequest, narrow bool) *perimeterPair {
	minutes := s.cfg.WideIsochroneMinutes
	radius := s.cfg.WideCircleMeters
	if narrow {
		minutes = s.cfg.NarrowIsochroneMinutes
		radius = s.cfg.NarrowCircleMeters
	}

	pair := &perimeterPair{
		startLat: req.StartLatitude,
		startLon: req.StartLongitude,
		endLat:   req.EndLatitude,
		endLon:   req.EndLongitude,
		radiusM:  radius,
	}

	var (
		wg                 sync.WaitGroup
		startPoly, endPoly geo.Polygon
		startErr, endErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		startPoly, startErr = s.isochrones.GetIsochrone(ctx, req.StartLongitude, req.StartLatitude, minutes)
	}()
	go func() {
		defer wg.Done()
		endPoly, endErr = s.isochrones.GetIsochrone(ctx, req.EndLongitude, req.EndLatitude, minutes)
	}()
	wg.Wait()

	if startErr != nil || endErr != nil || len(startPoly) < 3 || len(endPoly) < 3 {
		logger.Warn("Isochrone unavailable, downgrading both endpoints to circle perimeter",
			"minutes", minutes,
			"radius_m", radius,
			"start_error", startErr,
			"end_error", endErr,
		)
		metrics.IsochroneFallbacks.Inc()
		pair.method = perimeterCircle
		return pair
	}

	pair.method = perimeterIsochrone
	pair.startPoly = startPoly
	pair.endPoly = endPoly
	return pair
}
