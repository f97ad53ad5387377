package estimation

import (
	"context"
	"errors"
	"time"

	"fareRadar/domain"
	"fareRadar/pkg/config"
	"fareRadar/pkg/geo"
)

// ---- fakes ----

type fakeTripRepo struct {
	trips   []domain.Trip
	perKm   float64
	cityAvg map[string]float64
	err     error
}

func (f *fakeTripRepo) QueryCandidates(_ context.Context, _ CandidateFilter) ([]domain.Trip, error) {
	return f.trips, f.err
}

func (f *fakeTripRepo) AveragePricePerKm(_ context.Context) (float64, error) {
	return f.perKm, nil
}

func (f *fakeTripRepo) AveragePriceByCity(_ context.Context, city string) (float64, error) {
	return f.cityAvg[city], nil
}

// fakeIsochrones serves a polygon per contour duration; missing durations
// fail like an uncovered area would.
type fakeIsochrones struct {
	perMinutes map[int]geo.Polygon
}

func (f *fakeIsochrones) GetIsochrone(_ context.Context, _, _ float64, minutes int) (geo.Polygon, error) {
	poly, ok := f.perMinutes[minutes]
	if !ok {
		return nil, errors.New("isochrone unavailable")
	}
	return poly, nil
}

type fakeRoutes struct {
	distM float64
	durS  float64
	err   error
}

func (f *fakeRoutes) GetRoute(_ context.Context, _, _, _, _ float64) (*domain.RouteInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.RouteInfo{DistanceM: f.distM, DurationS: f.durS}, nil
}

type fakeClassifier struct {
	pred *Prediction
	err  error
}

func (f *fakeClassifier) Predict(_ context.Context, _ FeatureVector) (*Prediction, error) {
	return f.pred, f.err
}

type fixedNudger struct {
	factor float64
}

func (n fixedNudger) NudgeFactor(_ string, _, _ int16) float64 {
	return n.factor
}

// ---- builders ----

// Request endpoints used across the tests, central Douala.
const (
	reqStartLat = 4.0500
	reqStartLon = 9.7000
	reqEndLat   = 4.0600
	reqEndLon   = 9.7100
)

// coveringPolygon contains both request endpoints and everything nearby.
var coveringPolygon = geo.Polygon{{9.6900, 4.0400}, {9.7200, 4.0400}, {9.7200, 4.0700}, {9.6900, 4.0700}}

// tightPolygon contains only points within ~50 m of the request endpoints.
var tightPolygon = geo.Polygon{{9.6995, 4.0495}, {9.7105, 4.0495}, {9.7105, 4.0605}, {9.6995, 4.0605}}

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		PriceTiers:              defaultTiers,
		NarrowIsochroneMinutes:  2,
		WideIsochroneMinutes:    5,
		NarrowCircleMeters:      200,
		WideCircleMeters:        500,
		NarrowDistanceTolerance: 0.15,
		WideDistanceTolerance:   0.25,
		PerKmRateCFA:            50,
		NightPremiumIn:          0.15,
		NightPremiumOut:         0.10,
		WeatherPremiumWorse:     0.10,
		WeatherDiscountBetter:   0.05,
		CongestionThreshold:     8,
		CongestionPremium:       0.10,
		StandardDayPriceCFA:     300,
		StandardNightPriceCFA:   350,
		FallbackSinuosity:       1.5,
		SearchWorkers:           4,
	}
}

func newTestService(trips TripRepository, iso IsochroneRepository, routes RouteRepository, classifier ClassifierRepository) *Service {
	tiers, err := NewPriceTierTable(defaultTiers)
	if err != nil {
		panic(err)
	}
	return NewService(trips, iso, routes, nil, nil, classifier, nil, tiers, testEngineConfig(), time.UTC)
}

// testTrip places a trip at an offset (degrees latitude, about 111 m each
// 0.001) from the request endpoints.
func testTrip(price, distM float64, bucket string, latOffset float64) domain.Trip {
	b := bucket
	trip := domain.Trip{
		PricePaid:     price,
		RoadDistanceM: distM,
		StartPoint:    domain.Point{Latitude: reqStartLat + latOffset, Longitude: reqStartLon},
		EndPoint:      domain.Point{Latitude: reqEndLat + latOffset, Longitude: reqEndLon},
	}
	if bucket != "" {
		trip.TimeBucket = &b
	}
	return trip
}

func testRequest(bucket string) domain.EstimationRequest {
	req := domain.EstimationRequest{
		StartLatitude:  reqStartLat,
		StartLongitude: reqStartLon,
		EndLatitude:    reqEndLat,
		EndLongitude:   reqEndLon,
	}
	if bucket != "" {
		req.TimeBucket = &bucket
	}
	return req
}
