package domain

import "time"

// Time-of-day buckets used for matching and adjustments.
const (
	TimeBucketMorning   = "morning"   // 06:00-11:59
	TimeBucketAfternoon = "afternoon" // 12:00-16:59
	TimeBucketEvening   = "evening"   // 17:00-21:59
	TimeBucketNight     = "night"     // 22:00-05:59
)

// Weather severity codes, ordered worst-last.
const (
	WeatherClear  int16 = 0
	WeatherCloudy int16 = 1
	WeatherRain   int16 = 2
	WeatherStorm  int16 = 3
)

// Zone types.
const (
	ZoneUrban    int16 = 0
	ZoneSuburban int16 = 1
	ZoneRural    int16 = 2
)

func TimeBucketFromHour(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return TimeBucketMorning
	case hour >= 12 && hour < 17:
		return TimeBucketAfternoon
	case hour >= 17 && hour < 22:
		return TimeBucketEvening
	default:
		return TimeBucketNight
	}
}

// TimeBucketCode maps a bucket label to its numeric code for the classifier
// feature vector. Unknown labels report ok=false.
func TimeBucketCode(bucket string) (int, bool) {
	switch bucket {
	case TimeBucketMorning:
		return 0, true
	case TimeBucketAfternoon:
		return 1, true
	case TimeBucketEvening:
		return 2, true
	case TimeBucketNight:
		return 3, true
	default:
		return 0, false
	}
}

// WeatherFromWMO collapses a WMO weather interpretation code into the
// four-value severity scale.
func WeatherFromWMO(wmo int) int16 {
	switch {
	case wmo <= 1:
		return WeatherClear
	case wmo <= 48:
		return WeatherCloudy
	case wmo <= 82:
		return WeatherRain
	default:
		return WeatherStorm
	}
}

func WeatherLabel(code int16) string {
	switch code {
	case WeatherClear:
		return "clear"
	case WeatherCloudy:
		return "cloudy"
	case WeatherRain:
		return "rain"
	case WeatherStorm:
		return "storm"
	default:
		return "unknown"
	}
}

func ZoneLabel(code int16) string {
	switch code {
	case ZoneUrban:
		return "urban"
	case ZoneSuburban:
		return "suburban"
	case ZoneRural:
		return "rural"
	default:
		return "unknown"
	}
}

// Point is a resolved location shared across trips.
type Point struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Latitude     float64   `gorm:"column:latitude;not null" json:"latitude"`
	Longitude    float64   `gorm:"column:longitude;not null" json:"longitude"`
	Label        string    `gorm:"column:label" json:"label"`
	Neighborhood string    `gorm:"column:neighborhood" json:"neighborhood"`
	City         string    `gorm:"column:city" json:"city"`
	District     string    `gorm:"column:district" json:"district"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// Trip is one community-contributed trip. Immutable once created; nullable
// context fields stay nil when the contributor did not report them.
type Trip struct {
	ID           uint  `gorm:"primaryKey" json:"id"`
	StartPointID uint  `gorm:"column:start_point_id;not null" json:"start_point_id"`
	EndPointID   uint  `gorm:"column:end_point_id;not null" json:"end_point_id"`
	StartPoint   Point `gorm:"foreignKey:StartPointID" json:"start_point"`
	EndPoint     Point `gorm:"foreignKey:EndPointID" json:"end_point"`

	PricePaid     float64 `gorm:"column:price_paid;not null" json:"price_paid"`
	RoadDistanceM float64 `gorm:"column:road_distance_m;not null" json:"road_distance_m"`
	DurationMin   float64 `gorm:"column:duration_min;not null" json:"duration_min"`

	TimeBucket     *string  `gorm:"column:time_bucket" json:"time_bucket"`
	WeatherCode    *int16   `gorm:"column:weather_code" json:"weather_code"`
	ZoneType       *int16   `gorm:"column:zone_type" json:"zone_type"`
	UserCongestion *int16   `gorm:"column:user_congestion" json:"user_congestion"`
	MeanCongestion *float64 `gorm:"column:mean_congestion" json:"mean_congestion"`

	Sinuosity float64 `gorm:"column:sinuosity;not null;default:1.0" json:"sinuosity"`
	TurnCount int     `gorm:"column:turn_count;not null;default:0" json:"turn_count"`
	TurnForce float64 `gorm:"column:turn_force;not null;default:0" json:"turn_force"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TripStats is the aggregate view served by the stats endpoint.
type TripStats struct {
	TotalTrips      int64              `json:"total_trips"`
	TotalPoints     int64              `json:"total_points"`
	AvgPrice        float64            `json:"avg_price"`
	AvgDistanceM    float64            `json:"avg_distance_m"`
	PriceByBucket   map[string]float64 `json:"price_by_bucket"`
	TripsLast7Days  int64              `json:"trips_last_7_days"`
	TripsLast30Days int64              `json:"trips_last_30_days"`
}
