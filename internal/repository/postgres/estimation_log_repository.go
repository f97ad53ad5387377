package postgres

import (
	"context"
	"fmt"

	"fareRadar/domain"

	"gorm.io/gorm"
)

type EstimationLogRepository struct {
	DB *gorm.DB
}

func NewEstimationLogRepository(db *gorm.DB) *EstimationLogRepository {
	return &EstimationLogRepository{DB: db}
}

func (r *EstimationLogRepository) Save(ctx context.Context, entry *domain.EstimationLog) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to save estimation log: %w", err)
	}

	return nil
}
