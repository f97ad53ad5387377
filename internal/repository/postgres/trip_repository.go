package postgres

import (
	"context"
	"fmt"
	"time"

	"fareRadar/business/estimation"
	"fareRadar/domain"

	"gorm.io/gorm"
)

type TripRepository struct {
	DB *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{DB: db}
}

func (r *TripRepository) Save(ctx context.Context, trip *domain.Trip) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Omit("StartPoint", "EndPoint").Create(trip).Error; err != nil {
		return fmt.Errorf("failed to save trip: %w", err)
	}

	return nil
}

// QueryCandidates returns trips whose endpoints share an administrative label
// with the filter. An empty filter returns the full history.
func (r *TripRepository) QueryCandidates(ctx context.Context, filter estimation.CandidateFilter) ([]domain.Trip, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).
		Model(&domain.Trip{}).
		Preload("StartPoint").
		Preload("EndPoint")

	if !filter.Empty() {
		q = q.Joins("JOIN points sp ON sp.id = trips.start_point_id").
			Joins("JOIN points ep ON ep.id = trips.end_point_id")

		var (
			conds []string
			args  []interface{}
		)
		if len(filter.Cities) > 0 {
			conds = append(conds, "sp.city IN ?", "ep.city IN ?")
			args = append(args, filter.Cities, filter.Cities)
		}
		if len(filter.Districts) > 0 {
			conds = append(conds, "sp.district IN ?", "ep.district IN ?")
			args = append(args, filter.Districts, filter.Districts)
		}

		where := conds[0]
		for _, c := range conds[1:] {
			where += " OR " + c
		}
		q = q.Where(where, args...)
	}

	var trips []domain.Trip
	if err := q.Find(&trips).Error; err != nil {
		return nil, fmt.Errorf("failed to query candidate trips: %w", err)
	}

	return trips, nil
}

func (r *TripRepository) RecentTrips(ctx context.Context, limit int) ([]domain.Trip, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var trips []domain.Trip
	err := r.DB.WithContext(ctx).
		Preload("StartPoint").
		Preload("EndPoint").
		Order("created_at DESC").
		Limit(limit).
		Find(&trips).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query recent trips: %w", err)
	}

	return trips, nil
}

func (r *TripRepository) AveragePricePerKm(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var avg *float64
	err := r.DB.WithContext(ctx).
		Model(&domain.Trip{}).
		Where("road_distance_m > 0").
		Select("AVG(price_paid / (road_distance_m / 1000.0))").
		Scan(&avg).Error
	if err != nil {
		return 0, fmt.Errorf("failed to compute average price per km: %w", err)
	}
	if avg == nil {
		return 0, nil
	}

	return *avg, nil
}

func (r *TripRepository) AveragePriceByCity(ctx context.Context, city string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var avg *float64
	err := r.DB.WithContext(ctx).
		Model(&domain.Trip{}).
		Joins("JOIN points sp ON sp.id = trips.start_point_id").
		Where("sp.city = ?", city).
		Select("AVG(trips.price_paid)").
		Scan(&avg).Error
	if err != nil {
		return 0, fmt.Errorf("failed to compute average price for city: %w", err)
	}
	if avg == nil {
		return 0, nil
	}

	return *avg, nil
}

func (r *TripRepository) Stats(ctx context.Context) (*domain.TripStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	stats := &domain.TripStats{PriceByBucket: make(map[string]float64)}

	if err := r.DB.WithContext(ctx).Model(&domain.Trip{}).Count(&stats.TotalTrips).Error; err != nil {
		return nil, fmt.Errorf("failed to count trips: %w", err)
	}
	if err := r.DB.WithContext(ctx).Model(&domain.Point{}).Count(&stats.TotalPoints).Error; err != nil {
		return nil, fmt.Errorf("failed to count points: %w", err)
	}

	type overall struct {
		AvgPrice    *float64
		AvgDistance *float64
	}
	var o overall
	err := r.DB.WithContext(ctx).
		Model(&domain.Trip{}).
		Select("AVG(price_paid) AS avg_price, AVG(road_distance_m) AS avg_distance").
		Scan(&o).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute trip averages: %w", err)
	}
	if o.AvgPrice != nil {
		stats.AvgPrice = *o.AvgPrice
	}
	if o.AvgDistance != nil {
		stats.AvgDistanceM = *o.AvgDistance
	}

	type bucketRow struct {
		TimeBucket string
		AvgPrice   float64
	}
	var rows []bucketRow
	err = r.DB.WithContext(ctx).
		Model(&domain.Trip{}).
		Where("time_bucket IS NOT NULL").
		Select("time_bucket, AVG(price_paid) AS avg_price").
		Group("time_bucket").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute per-bucket averages: %w", err)
	}
	for _, row := range rows {
		stats.PriceByBucket[row.TimeBucket] = row.AvgPrice
	}

	now := time.Now()
	if err := r.DB.WithContext(ctx).Model(&domain.Trip{}).
		Where("created_at >= ?", now.AddDate(0, 0, -7)).
		Count(&stats.TripsLast7Days).Error; err != nil {
		return nil, fmt.Errorf("failed to count recent trips: %w", err)
	}
	if err := r.DB.WithContext(ctx).Model(&domain.Trip{}).
		Where("created_at >= ?", now.AddDate(0, 0, -30)).
		Count(&stats.TripsLast30Days).Error; err != nil {
		return nil, fmt.Errorf("failed to count recent trips: %w", err)
	}

	return stats, nil
}
