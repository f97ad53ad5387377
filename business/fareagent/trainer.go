// business/fareagent/trainer.go
package fareagent

import (
	"context"
	"sync/atomic"
	"time"

	"fareRadar/domain"
	"fareRadar/pkg/logger"
	"fareRadar/pkg/metrics"
)

// BaseEstimator produces the un-nudged estimate used as the counterfactual
// baseline. Implemented by the estimation service.
type BaseEstimator interface {
	UnnudgedEstimate(ctx context.Context, req domain.EstimationRequest) (float64, bool)
}

// TripSource yields the freshest contributed trips for a training batch.
type TripSource interface {
	RecentTrips(ctx context.Context, limit int) ([]domain.Trip, error)
}

// Trainer runs batch updates off the request path. Contribution handlers call
// TripAdded; every batchSize-th trip fires a non-blocking signal picked up by
// the Run loop.
type Trainer struct {
	agent     *Agent
	estimator BaseEstimator
	trips     TripSource
	batchSize int

	contributed atomic.Int64
	signals     chan struct{}
}

func NewTrainer(agent *Agent, estimator BaseEstimator, trips TripSource, batchSize int) *Trainer {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &Trainer{
		agent:     agent,
		estimator: estimator,
		trips:     trips,
		batchSize: batchSize,
		signals:   make(chan struct{}, 1),
	}
}

// TripAdded never blocks; a training run already pending absorbs the signal.
func (t *Trainer) TripAdded() {
	n := t.contributed.Add(1)
	if n%int64(t.batchSize) != 0 {
		return
	}

	select {
	case t.signals <- struct{}{}:
	default:
	}
}

// Run processes training signals until the context is canceled. Meant to run
// in its own goroutine, started from main.
func (t *Trainer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.signals:
			t.trainBatch(ctx)
		}
	}
}

func (t *Trainer) trainBatch(ctx context.Context) {
	started := time.Now()

	batch, err := t.trips.RecentTrips(ctx, t.batchSize)
	if err != nil {
		logger.Error("Training batch fetch failed", "error", err)
		return
	}

	trained, skipped := 0, 0
	for i := range batch {
		if t.trainTrip(ctx, &batch[i]) {
			trained++
		} else {
			skipped++
		}
	}

	t.agent.persist(ctx)
	metrics.AgentTrainingRuns.Inc()
	logger.Info("Agent training batch complete",
		"trained", trained,
		"skipped", skipped,
		"duration_ms", time.Since(started).Milliseconds(),
	)
}

// trainTrip scores every action counterfactually against one contributed
// trip. Trips without a usable paid price or whose un-nudged estimate is
// unknown are skipped.
func (t *Trainer) trainTrip(ctx context.Context, trip *domain.Trip) bool {
	if trip.PricePaid <= 0 {
		return false
	}

	req := domain.EstimationRequest{
		StartLatitude:  trip.StartPoint.Latitude,
		StartLongitude: trip.StartPoint.Longitude,
		EndLatitude:    trip.EndPoint.Latitude,
		EndLongitude:   trip.EndPoint.Longitude,
		StartCity:      trip.StartPoint.City,
		StartDistrict:  trip.StartPoint.District,
		EndCity:        trip.EndPoint.City,
		EndDistrict:    trip.EndPoint.District,
		TimeBucket:     trip.TimeBucket,
		WeatherCode:    trip.WeatherCode,
		ZoneType:       trip.ZoneType,
	}

	estimate, ok := t.estimator.UnnudgedEstimate(ctx, req)
	if !ok || estimate <= 0 {
		return false
	}

	state := stateFromTrip(trip)
	for i := range Actions {
		t.agent.update(state, i, reward(trip.PricePaid, estimate, Actions[i]))
	}
	return true
}

func stateFromTrip(trip *domain.Trip) State {
	state := State{WeatherCode: -1, ZoneType: -1}
	if trip.TimeBucket != nil {
		state.TimeBucket = *trip.TimeBucket
	}
	if trip.WeatherCode != nil {
		state.WeatherCode = *trip.WeatherCode
	}
	if trip.ZoneType != nil {
		state.ZoneType = *trip.ZoneType
	}
	return state
}
