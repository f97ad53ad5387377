package estimation

import (
	"context"
	"testing"

	"fareRadar/domain"
	"fareRadar/pkg/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Narrow exact match against three nearby trips.
func TestEstimateExactMatch(t *testing.T) {
	trips := &fakeTripRepo{trips: []domain.Trip{
		testTrip(200, 5200, domain.TimeBucketMorning, 0),
		testTrip(250, 5200, domain.TimeBucketMorning, 0),
		testTrip(300, 5200, domain.TimeBucketMorning, 0),
	}}
	iso := &fakeIsochrones{perMinutes: map[int]geo.Polygon{2: coveringPolygon, 5: coveringPolygon}}

	svc := newTestService(trips, iso, &fakeRoutes{distM: 5200, durS: 900}, nil)
	result := svc.Estimate(context.Background(), testRequest(domain.TimeBucketMorning))

	assert.Equal(t, domain.StatusExact, result.Status)
	assert.Equal(t, 0.95, result.Reliability)
	assert.Equal(t, 3, result.MatchCount)
	require.NotNil(t, result.PriceMean)
	assert.Equal(t, 250, *result.PriceMean)
	require.NotNil(t, result.PriceMin)
	assert.Equal(t, 200, *result.PriceMin)
	require.NotNil(t, result.PriceMax)
	assert.Equal(t, 300, *result.PriceMax)
}

// Wide match pays the distance delta: 200 m shorter at 50 CFA/km is -10 CFA
// before quantization.
func TestEstimateWideMatchDistanceDelta(t *testing.T) {
	trips := &fakeTripRepo{trips: []domain.Trip{
		testTrip(300, 5400, domain.TimeBucketMorning, 0),
	}}
	// narrow isochrone too tight for the request's own endpoints is not the
	// point here; the narrow contour only covers the immediate endpoints and
	// the candidate sits outside it
	iso := &fakeIsochrones{perMinutes: map[int]geo.Polygon{2: tightPolygon, 5: coveringPolygon}}

	trip := trips.trips[0]
	trip.StartPoint.Latitude += 0.003
	trip.EndPoint.Latitude += 0.003
	trips.trips[0] = trip

	svc := newTestService(trips, iso, &fakeRoutes{distM: 5200, durS: 900}, nil)
	result := svc.Estimate(context.Background(), testRequest(domain.TimeBucketMorning))

	assert.Equal(t, domain.StatusSimilarWide, result.Status)
	assert.Equal(t, 0.75, result.Reliability)

	adj := findAdjustment(result.Adjustments, "distance")
	require.NotNil(t, adj)
	assert.InDelta(t, -10, adj.AmountCFA, 1e-9)

	// 290 pre-quantization snaps back to tier 300
	require.NotNil(t, result.PriceMean)
	assert.Equal(t, 300, *result.PriceMean)
}

// Daytime history, night request: relaxed narrow match with the night
// premium, and the message names the differing variable.
func TestEstimateNightPremiumOnRelaxedMatch(t *testing.T) {
	trips := &fakeTripRepo{trips: []domain.Trip{
		testTrip(200, 5200, domain.TimeBucketAfternoon, 0),
		testTrip(200, 5200, domain.TimeBucketAfternoon, 0),
	}}
	iso := &fakeIsochrones{perMinutes: map[int]geo.Polygon{2: coveringPolygon, 5: coveringPolygon}}

	svc := newTestService(trips, iso, &fakeRoutes{distM: 5200, durS: 900}, nil)
	result := svc.Estimate(context.Background(), testRequest(domain.TimeBucketNight))

	assert.Equal(t, domain.StatusSimilarNarrow, result.Status)
	assert.Equal(t, 0.85, result.Reliability)
	assert.Contains(t, result.Message, "time_bucket")

	adj := findAdjustment(result.Adjustments, "night")
	require.NotNil(t, adj)
	assert.InDelta(t, 30, adj.AmountCFA, 1e-9)

	// 230 pre-quantization snaps to 250
	require.NotNil(t, result.PriceMean)
	assert.Equal(t, 250, *result.PriceMean)
}

// No history at all: the classifier fallback answers with its tier, and the
// supplemental heuristics ride along.
func TestEstimateClassifierFallback(t *testing.T) {
	classifier := &fakeClassifier{pred: &Prediction{ClassIndex: 4, Confidence: 0.62}}

	svc := newTestService(&fakeTripRepo{}, &fakeIsochrones{}, &fakeRoutes{distM: 5200, durS: 900}, classifier)
	result := svc.Estimate(context.Background(), testRequest(domain.TimeBucketMorning))

	assert.Equal(t, domain.StatusUnknown, result.Status)
	assert.Equal(t, 0.55, result.Reliability)
	assert.Nil(t, result.PriceMin)
	assert.Nil(t, result.PriceMax)

	require.NotNil(t, result.MLEstimate)
	assert.Equal(t, 300, result.MLEstimate.PriceCFA)
	assert.Equal(t, 0.62, result.MLEstimate.Confidence)
	require.NotNil(t, result.PriceMean)
	assert.Equal(t, 300, *result.PriceMean)

	var standardized *domain.SupplementalEstimate
	for i := range result.Supplements {
		if result.Supplements[i].Method == "standardized" {
			standardized = &result.Supplements[i]
		}
	}
	require.NotNil(t, standardized)
	assert.Equal(t, 300, standardized.PriceCFA)
}

func TestEstimateUnknownWithoutClassifier(t *testing.T) {
	svc := newTestService(&fakeTripRepo{}, &fakeIsochrones{}, &fakeRoutes{distM: 5200}, nil)
	result := svc.Estimate(context.Background(), testRequest(domain.TimeBucketNight))

	assert.Equal(t, domain.StatusUnknown, result.Status)
	assert.Equal(t, 0.30, result.Reliability)
	assert.Nil(t, result.PriceMean)
	assert.Nil(t, result.MLEstimate)

	// the standardized supplement uses the night tariff
	require.NotEmpty(t, result.Supplements)
	assert.Equal(t, 350, result.Supplements[0].PriceCFA)
}

// Isochrone service down for both endpoints: the circles take over and the
// four-level search still completes.
func TestEstimateIsochroneOutageFallsBackToCircles(t *testing.T) {
	trips := &fakeTripRepo{trips: []domain.Trip{
		testTrip(250, 5200, domain.TimeBucketMorning, 0),
	}}

	svc := newTestService(trips, &fakeIsochrones{}, &fakeRoutes{distM: 5200, durS: 900}, nil)
	result := svc.Estimate(context.Background(), testRequest(domain.TimeBucketMorning))

	assert.Equal(t, domain.StatusExact, result.Status)
	assert.Contains(t, result.Message, "circle")
	require.NotNil(t, result.PriceMean)
	assert.Equal(t, 250, *result.PriceMean)
}

// Route collaborator down: distance approximates from the straight line and
// the request still answers.
func TestEstimateRouteOutageApproximatesDistance(t *testing.T) {
	svc := newTestService(&fakeTripRepo{}, &fakeIsochrones{}, &fakeRoutes{err: assert.AnError}, nil)

	result := svc.Estimate(context.Background(), testRequest(domain.TimeBucketMorning))
	assert.Equal(t, domain.StatusUnknown, result.Status)
	assert.NotEmpty(t, result.RequestID)
}

func TestUnnudgedEstimateSkipsTheNudge(t *testing.T) {
	trips := &fakeTripRepo{trips: []domain.Trip{
		testTrip(200, 5200, domain.TimeBucketMorning, 0),
		testTrip(300, 5200, domain.TimeBucketMorning, 0),
	}}
	iso := &fakeIsochrones{perMinutes: map[int]geo.Polygon{2: coveringPolygon, 5: coveringPolygon}}

	svc := newTestService(trips, iso, &fakeRoutes{distM: 5200, durS: 900}, nil)
	svc.SetNudger(fixedNudger{factor: 0.10})

	base, ok := svc.UnnudgedEstimate(context.Background(), testRequest(domain.TimeBucketMorning))
	require.True(t, ok)
	assert.Equal(t, 250.0, base)

	nudged := svc.Estimate(context.Background(), testRequest(domain.TimeBucketMorning))
	require.NotNil(t, nudged.PriceMean)
	// 250 +10% = 275, tie between 250 and 300 resolves low; use the raw
	// adjustment record instead of the quantized mean
	adj := findAdjustment(nudged.Adjustments, "nudge")
	require.NotNil(t, adj)
	assert.InDelta(t, 25, adj.AmountCFA, 1e-9)
}

func TestUnnudgedEstimateUnknown(t *testing.T) {
	svc := newTestService(&fakeTripRepo{}, &fakeIsochrones{}, &fakeRoutes{distM: 5200}, nil)

	_, ok := svc.UnnudgedEstimate(context.Background(), testRequest(domain.TimeBucketMorning))
	assert.False(t, ok)
}
