package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Estimation outcome statuses, ordered from most to least reliable.
const (
	StatusExact             = "exact"
	StatusSimilarNarrow     = "similar-narrow"
	StatusSimilarWide       = "similar-wide"
	StatusSimilarVarsDiffer = "similar-variables-differ"
	StatusUnknown           = "unknown"
)

// EstimationRequest is what the orchestrator consumes. Context fields are
// optional; the orchestrator resolves fallbacks for missing ones.
type EstimationRequest struct {
	StartLatitude  float64
	StartLongitude float64
	EndLatitude    float64
	EndLongitude   float64

	StartCity     string
	StartDistrict string
	EndCity       string
	EndDistrict   string

	TimeBucket     *string
	WeatherCode    *int16
	ZoneType       *int16
	UserCongestion *int16
}

// AppliedAdjustment records one price correction for the result breakdown.
type AppliedAdjustment struct {
	Kind      string  `json:"kind"`
	AmountCFA float64 `json:"amount_cfa"`
	Detail    string  `json:"detail,omitempty"`
}

// MLEstimate is the classifier fallback output.
type MLEstimate struct {
	PriceCFA   int     `json:"price_cfa"`
	Confidence float64 `json:"confidence"`
}

// SupplementalEstimate is a heuristic price attached to unknown results.
type SupplementalEstimate struct {
	Method   string `json:"method"`
	PriceCFA int    `json:"price_cfa"`
}

// EstimationResult is the engine's answer. PriceMin/PriceMax are nil on
// unknown results; PriceMean is nil only when even the classifier produced
// nothing.
type EstimationResult struct {
	RequestID   string                 `json:"request_id"`
	Status      string                 `json:"status"`
	PriceMean   *int                   `json:"price_mean"`
	PriceMin    *int                   `json:"price_min"`
	PriceMax    *int                   `json:"price_max"`
	Reliability float64                `json:"reliability"`
	MatchCount  int                    `json:"match_count"`
	Adjustments []AppliedAdjustment    `json:"adjustments"`
	Message     string                 `json:"message"`
	MLEstimate  *MLEstimate            `json:"ml_estimate,omitempty"`
	Supplements []SupplementalEstimate `json:"supplemental_estimates,omitempty"`
}

// EstimationLog is the persisted audit row for one served estimate.
type EstimationLog struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	RequestID   string            `gorm:"column:request_id;not null" json:"request_id"`
	Status      string            `gorm:"column:status;not null" json:"status"`
	PriceMean   *int              `gorm:"column:price_mean" json:"price_mean"`
	Reliability float64           `gorm:"column:reliability;not null" json:"reliability"`
	MatchCount  int               `gorm:"column:match_count;not null" json:"match_count"`
	Adjustments datatypes.JSONMap `gorm:"column:adjustments;type:jsonb" json:"adjustments"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
