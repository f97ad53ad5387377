// business/estimation/features.go
package estimation

import "context"

// FeatureVersion declares which feature set the classifier expects. TripQuality
// is accepted by v1 but not consumed by the currently trained model; bumping
// the version is how that changes.
const FeatureVersion = 1

// FeatureVector is the classifier input contract.
type FeatureVector struct {
	Version     int     `json:"version"`
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
	StraightKm  float64 `json:"straight_km"`
	Sinuosity   float64 `json:"sinuosity"`
	SpeedKmh    float64 `json:"speed_kmh"`
	Congestion  float64 `json:"congestion"`
	WeatherCode int     `json:"weather_code"`
	TimeBucket  int     `json:"time_bucket"`
	ZoneType    int     `json:"zone_type"`
	TurnCount   int     `json:"turn_count"`
	TripQuality float64 `json:"trip_quality"`
}

// Prediction is a tier class index with its probability. The index maps
// through the tier table, it is never re-quantized.
type Prediction struct {
	ClassIndex int
	Confidence float64
}

// ClassifierRepository wraps the model server. A nil prediction with nil
// error means the model produced nothing usable.
type ClassifierRepository interface {
	Predict(ctx context.Context, features FeatureVector) (*Prediction, error)
}
