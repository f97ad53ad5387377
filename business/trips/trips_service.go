// business/trips/trips_service.go
package trips

import (
	"context"
	"fmt"
	"time"

	"fareRadar/domain"
	"fareRadar/pkg/config"
	"fareRadar/pkg/geo"
	"fareRadar/pkg/logger"
	"fareRadar/pkg/metrics"
)

// ---- Repository interfaces ----

type TripRepository interface {
	Save(ctx context.Context, trip *domain.Trip) error
	Stats(ctx context.Context) (*domain.TripStats, error)
}

type PointRepository interface {
	FindByCoordinates(ctx context.Context, lat, lon float64) (*domain.Point, error)
	Save(ctx context.Context, point *domain.Point) error
}

type RouteRepository interface {
	GetRoute(ctx context.Context, startLat, startLon, endLat, endLon float64) (*domain.RouteInfo, error)
}

type GeocodeRepository interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (*domain.Place, error)
}

type WeatherRepository interface {
	CurrentWeatherCode(ctx context.Context, lat, lon float64) (int16, error)
}

// TrainingTrigger is notified once per persisted trip.
type TrainingTrigger interface {
	TripAdded()
}

// ---- Usecase / Service ----

type Service struct {
	trips    TripRepository
	points   PointRepository
	routes   RouteRepository
	geocoder GeocodeRepository
	weather  WeatherRepository
	trainer  TrainingTrigger
	cfg      config.EngineConfig
	loc      *time.Location
}

func NewService(
	trips TripRepository,
	points PointRepository,
	routes RouteRepository,
	geocoder GeocodeRepository,
	weather WeatherRepository,
	trainer TrainingTrigger,
	cfg config.EngineConfig,
	loc *time.Location,
) *Service {
	return &Service{
		trips:    trips,
		points:   points,
		routes:   routes,
		geocoder: geocoder,
		weather:  weather,
		trainer:  trainer,
		cfg:      cfg,
		loc:      loc,
	}
}

// ContributeInput is a validated trip contribution.
type ContributeInput struct {
	StartLatitude  float64
	StartLongitude float64
	EndLatitude    float64
	EndLongitude   float64
	PricePaid      float64
	DurationMin    *float64

	TimeBucket     *string
	WeatherCode    *int16
	ZoneType       *int16
	UserCongestion *int16
	MeanCongestion *float64
}

// Contribute enriches and persists one community trip: shared endpoint
// points, road geometry from the directions collaborator, derived sinuosity
// and turn features, then the trainer signal.
func (s *Service) Contribute(ctx context.Context, input ContributeInput) (*domain.Trip, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	start, err := s.resolvePoint(ctx, input.StartLatitude, input.StartLongitude)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve start point: %w", err)
	}
	end, err := s.resolvePoint(ctx, input.EndLatitude, input.EndLongitude)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve end point: %w", err)
	}

	straightM := geo.HaversineM(input.StartLatitude, input.StartLongitude, input.EndLatitude, input.EndLongitude)

	var (
		roadDistanceM float64
		durationMin   float64
		maneuvers     []domain.Maneuver
	)
	route, err := s.routes.GetRoute(ctx, input.StartLatitude, input.StartLongitude, input.EndLatitude, input.EndLongitude)
	if err != nil || route == nil || route.DistanceM <= 0 {
		logger.Warn("Route lookup failed for contribution, approximating from straight line", "error", err)
		roadDistanceM = straightM * s.cfg.FallbackSinuosity
	} else {
		roadDistanceM = route.DistanceM
		durationMin = route.DurationS / 60
		maneuvers = route.Maneuvers
	}
	if input.DurationMin != nil && *input.DurationMin > 0 {
		durationMin = *input.DurationMin
	}

	trip := &domain.Trip{
		StartPointID:   start.ID,
		EndPointID:     end.ID,
		PricePaid:      input.PricePaid,
		RoadDistanceM:  roadDistanceM,
		DurationMin:    durationMin,
		TimeBucket:     input.TimeBucket,
		WeatherCode:    input.WeatherCode,
		ZoneType:       input.ZoneType,
		UserCongestion: input.UserCongestion,
		MeanCongestion: input.MeanCongestion,
		Sinuosity:      computeSinuosity(roadDistanceM, straightM),
		TurnCount:      countTurns(maneuvers),
		TurnForce:      computeTurnForce(maneuvers, roadDistanceM),
	}

	if trip.TimeBucket == nil {
		bucket := domain.TimeBucketFromHour(time.Now().In(s.loc).Hour())
		trip.TimeBucket = &bucket
	}
	if trip.WeatherCode == nil && s.weather != nil {
		if code, werr := s.weather.CurrentWeatherCode(ctx, input.StartLatitude, input.StartLongitude); werr != nil {
			logger.Warn("Weather lookup failed for contribution, storing without weather", "error", werr)
		} else {
			trip.WeatherCode = &code
		}
	}

	if err := s.trips.Save(ctx, trip); err != nil {
		return nil, fmt.Errorf("failed to save trip: %w", err)
	}
	trip.StartPoint = *start
	trip.EndPoint = *end

	metrics.TripsContributed.Inc()
	if s.trainer != nil {
		s.trainer.TripAdded()
	}

	logger.Info("Trip contributed",
		"trip_id", trip.ID,
		"price_paid", trip.PricePaid,
		"distance_m", trip.RoadDistanceM,
	)
	return trip, nil
}

// resolvePoint reuses a stored point for the coordinate when one exists,
// otherwise reverse-geocodes and creates it. Geocoding failure still yields a
// usable unlabeled point.
func (s *Service) resolvePoint(ctx context.Context, lat, lon float64) (*domain.Point, error) {
	existing, err := s.points.FindByCoordinates(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	point := &domain.Point{Latitude: lat, Longitude: lon}
	if s.geocoder != nil {
		if place, gerr := s.geocoder.ReverseGeocode(ctx, lat, lon); gerr != nil {
			logger.Warn("Reverse geocoding failed, storing unlabeled point", "error", gerr)
		} else {
			point.Label = place.Label
			point.Neighborhood = place.Neighborhood
			point.City = place.City
			point.District = place.District
		}
	}

	if err := s.points.Save(ctx, point); err != nil {
		return nil, err
	}
	return point, nil
}

func (s *Service) Stats(ctx context.Context) (*domain.TripStats, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	stats, err := s.trips.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate trip stats: %w", err)
	}
	return stats, nil
}
