package estimation

import (
	"context"
	"testing"

	"fareRadar/domain"
	"fareRadar/pkg/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReliabilityStrictlyDecreases(t *testing.T) {
	for i := 1; i < len(searchLevels); i++ {
		assert.Greater(t, searchLevels[i-1].reliability, searchLevels[i].reliability)
	}
	assert.Greater(t, searchLevels[3].reliability, 0.55)
}

func TestRunSearchFirstNonEmptyLevelWins(t *testing.T) {
	svc := newTestService(&fakeTripRepo{}, &fakeIsochrones{perMinutes: map[int]geo.Polygon{
		2: coveringPolygon,
		5: coveringPolygon,
	}}, &fakeRoutes{distM: 5200}, nil)

	req := &resolvedRequest{
		EstimationRequest: testRequest(domain.TimeBucketMorning),
		timeBucket:        domain.TimeBucketMorning,
		routeDistanceM:    5200,
	}

	candidates := []domain.Trip{
		testTrip(250, 5200, domain.TimeBucketMorning, 0),
		testTrip(300, 5200, domain.TimeBucketEvening, 0),
	}

	res := svc.runSearch(context.Background(), req, candidates)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.level.number)
	assert.Equal(t, domain.StatusExact, res.level.status)
	// the evening trip is excluded by the exact filter at level 1
	assert.Len(t, res.matched, 1)
}

func TestRunSearchRelaxesContextAtLevelTwo(t *testing.T) {
	svc := newTestService(&fakeTripRepo{}, &fakeIsochrones{perMinutes: map[int]geo.Polygon{
		2: coveringPolygon,
		5: coveringPolygon,
	}}, &fakeRoutes{distM: 5200}, nil)

	req := &resolvedRequest{
		EstimationRequest: testRequest(domain.TimeBucketNight),
		timeBucket:        domain.TimeBucketNight,
		routeDistanceM:    5200,
	}

	candidates := []domain.Trip{
		testTrip(250, 5200, domain.TimeBucketAfternoon, 0),
	}

	res := svc.runSearch(context.Background(), req, candidates)
	require.NotNil(t, res)
	assert.Equal(t, 2, res.level.number)
	assert.Equal(t, domain.StatusSimilarNarrow, res.level.status)
	assert.Contains(t, res.differingVars, "time_bucket")
}

func TestRunSearchWidensPerimeterAtLevelThree(t *testing.T) {
	// no isochrones at all: circles only, 200 m narrow / 500 m wide
	svc := newTestService(&fakeTripRepo{}, &fakeIsochrones{}, &fakeRoutes{distM: 5200}, nil)

	req := &resolvedRequest{
		EstimationRequest: testRequest(domain.TimeBucketMorning),
		timeBucket:        domain.TimeBucketMorning,
		routeDistanceM:    5200,
	}

	// ~330 m away: outside the narrow circle, inside the wide one
	candidates := []domain.Trip{
		testTrip(300, 5200, domain.TimeBucketMorning, 0.003),
	}

	res := svc.runSearch(context.Background(), req, candidates)
	require.NotNil(t, res)
	assert.Equal(t, 3, res.level.number)
	assert.Equal(t, domain.StatusSimilarWide, res.level.status)
	assert.Equal(t, perimeterCircle, res.perimeterMethod)
}

func TestRunSearchNoMatch(t *testing.T) {
	svc := newTestService(&fakeTripRepo{}, &fakeIsochrones{}, &fakeRoutes{distM: 5200}, nil)

	req := &resolvedRequest{
		EstimationRequest: testRequest(domain.TimeBucketMorning),
		timeBucket:        domain.TimeBucketMorning,
		routeDistanceM:    5200,
	}

	t.Run("no candidates", func(t *testing.T) {
		assert.Nil(t, svc.runSearch(context.Background(), req, nil))
	})

	t.Run("candidates out of every perimeter", func(t *testing.T) {
		far := []domain.Trip{testTrip(300, 5200, domain.TimeBucketMorning, 0.05)}
		assert.Nil(t, svc.runSearch(context.Background(), req, far))
	})

	t.Run("candidates out of distance tolerance", func(t *testing.T) {
		offDistance := []domain.Trip{testTrip(300, 9000, domain.TimeBucketMorning, 0)}
		assert.Nil(t, svc.runSearch(context.Background(), req, offDistance))
	})
}

func TestFilterExactContext(t *testing.T) {
	morning := domain.TimeBucketMorning
	cloudy := domain.WeatherCloudy
	storm := domain.WeatherStorm
	urban := domain.ZoneUrban
	rural := domain.ZoneRural

	unsetTrip := testTrip(200, 5200, "", 0)

	sameBucket := testTrip(200, 5200, morning, 0)

	nearWeather := testTrip(200, 5200, morning, 0)
	nearWeather.WeatherCode = &cloudy

	farWeather := testTrip(200, 5200, morning, 0)
	farWeather.WeatherCode = &storm

	otherZone := testTrip(200, 5200, morning, 0)
	otherZone.ZoneType = &rural

	clearCode := domain.WeatherClear
	req := &resolvedRequest{
		timeBucket:  morning,
		weatherCode: &clearCode,
		zoneType:    &urban,
	}

	out := filterExactContext([]domain.Trip{unsetTrip, sameBucket, nearWeather, farWeather, otherZone}, req)

	// unset axes pass, weather within one step passes, storm and the other
	// zone are excluded
	assert.Len(t, out, 3)
}

func TestMatchCandidatesFanOut(t *testing.T) {
	svc := newTestService(&fakeTripRepo{}, &fakeIsochrones{}, &fakeRoutes{}, nil)

	pair := &perimeterPair{
		method:   perimeterCircle,
		startLat: reqStartLat, startLon: reqStartLon,
		endLat: reqEndLat, endLon: reqEndLon,
		radiusM: 500,
	}

	// enough candidates to cross the fan-out threshold
	pool := make([]domain.Trip, 0, 100)
	for i := 0; i < 100; i++ {
		offset := 0.0
		if i%2 == 1 {
			offset = 0.05 // far outside
		}
		pool = append(pool, testTrip(250, 5200, "", offset))
	}

	matched := svc.matchCandidates(pool, pair, 5200, 0.25)
	assert.Len(t, matched, 50)
}
