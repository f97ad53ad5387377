package postgres

import (
	"context"
	"fmt"

	"fareRadar/domain"

	"gorm.io/gorm"
)

// coordEpsilon groups contributions at the same place: about 11 m of
// latitude.
const coordEpsilon = 1e-4

type PointRepository struct {
	DB *gorm.DB
}

func NewPointRepository(db *gorm.DB) *PointRepository {
	return &PointRepository{DB: db}
}

// FindByCoordinates returns a stored point close enough to (lat, lon) to be
// reused, or nil when none exists.
func (r *PointRepository) FindByCoordinates(ctx context.Context, lat, lon float64) (*domain.Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var point domain.Point
	err := r.DB.WithContext(ctx).
		Where("ABS(latitude - ?) < ? AND ABS(longitude - ?) < ?", lat, coordEpsilon, lon, coordEpsilon).
		First(&point).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query point: %w", err)
	}

	return &point, nil
}

func (r *PointRepository) Save(ctx context.Context, point *domain.Point) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(point).Error; err != nil {
		return fmt.Errorf("failed to save point: %w", err)
	}

	return nil
}
