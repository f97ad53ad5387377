package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Mapbox    MapboxConfig
	Nominatim NominatimConfig
	OpenMeteo OpenMeteoConfig
	MLService MLServiceConfig
	Engine    EngineConfig
	Agent     AgentConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Timezone    string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type JWTConfig struct {
	SecretKey string
}

type MapboxConfig struct {
	BaseURL           string
	AccessToken       string
	Timeout           time.Duration
	IsochroneCacheTTL time.Duration
}

type NominatimConfig struct {
	BaseURL string
	Timeout time.Duration
}

type OpenMeteoConfig struct {
	BaseURL string
	Timeout time.Duration
}

type MLServiceConfig struct {
	BaseURL string
	Timeout time.Duration
}

// EngineConfig carries every tunable of the estimation core. Constructed once
// in main and injected; the engine never reads globals.
type EngineConfig struct {
	PriceTiers []int

	NarrowIsochroneMinutes int
	WideIsochroneMinutes   int
	NarrowCircleMeters     float64
	WideCircleMeters       float64

	NarrowDistanceTolerance float64
	WideDistanceTolerance   float64

	PerKmRateCFA          float64
	NightPremiumIn        float64
	NightPremiumOut       float64
	WeatherPremiumWorse   float64
	WeatherDiscountBetter float64
	CongestionThreshold   int
	CongestionPremium     float64

	StandardDayPriceCFA   float64
	StandardNightPriceCFA float64

	FallbackSinuosity float64
	SearchWorkers     int
}

type AgentConfig struct {
	Epsilon      float64
	LearningRate float64
	BatchSize    int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "fareRadar API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Timezone:    getEnv("APP_TIMEZONE", "Africa/Douala"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "fareradar"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Mapbox: MapboxConfig{
			BaseURL:           getEnv("MAPBOX_BASE_URL", "https://api.mapbox.com"),
			AccessToken:       getEnv("MAPBOX_ACCESS_TOKEN", ""),
			Timeout:           getEnvDuration("MAPBOX_TIMEOUT", 5*time.Second),
			IsochroneCacheTTL: getEnvDuration("MAPBOX_ISOCHRONE_CACHE_TTL", 24*time.Hour),
		},
		Nominatim: NominatimConfig{
			BaseURL: getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
			Timeout: getEnvDuration("NOMINATIM_TIMEOUT", 5*time.Second),
		},
		OpenMeteo: OpenMeteoConfig{
			BaseURL: getEnv("OPENMETEO_BASE_URL", "https://api.open-meteo.com"),
			Timeout: getEnvDuration("OPENMETEO_TIMEOUT", 5*time.Second),
		},
		MLService: MLServiceConfig{
			BaseURL: getEnv("ML_SERVICE_BASE_URL", "http://localhost:9000"),
			Timeout: getEnvDuration("ML_SERVICE_TIMEOUT", 5*time.Second),
		},
		Engine: EngineConfig{
			PriceTiers: getEnvIntList("ENGINE_PRICE_TIERS",
				[]int{100, 150, 200, 250, 300, 350, 400, 450, 500, 600, 700, 800, 900, 1000, 1200, 1500, 1700, 2000}),

			NarrowIsochroneMinutes: getEnvInt("ENGINE_NARROW_ISOCHRONE_MIN", 2),
			WideIsochroneMinutes:   getEnvInt("ENGINE_WIDE_ISOCHRONE_MIN", 5),
			NarrowCircleMeters:     getEnvFloat("ENGINE_NARROW_CIRCLE_M", 200),
			WideCircleMeters:       getEnvFloat("ENGINE_WIDE_CIRCLE_M", 500),

			NarrowDistanceTolerance: getEnvFloat("ENGINE_NARROW_DIST_TOL", 0.15),
			WideDistanceTolerance:   getEnvFloat("ENGINE_WIDE_DIST_TOL", 0.25),

			PerKmRateCFA:          getEnvFloat("ENGINE_PER_KM_RATE_CFA", 50),
			NightPremiumIn:        getEnvFloat("ENGINE_NIGHT_PREMIUM_IN", 0.15),
			NightPremiumOut:       getEnvFloat("ENGINE_NIGHT_PREMIUM_OUT", 0.10),
			WeatherPremiumWorse:   getEnvFloat("ENGINE_WEATHER_PREMIUM_WORSE", 0.10),
			WeatherDiscountBetter: getEnvFloat("ENGINE_WEATHER_DISCOUNT_BETTER", 0.05),
			CongestionThreshold:   getEnvInt("ENGINE_CONGESTION_THRESHOLD", 8),
			CongestionPremium:     getEnvFloat("ENGINE_CONGESTION_PREMIUM", 0.10),

			StandardDayPriceCFA:   getEnvFloat("ENGINE_STANDARD_DAY_CFA", 300),
			StandardNightPriceCFA: getEnvFloat("ENGINE_STANDARD_NIGHT_CFA", 350),

			FallbackSinuosity: getEnvFloat("ENGINE_FALLBACK_SINUOSITY", 1.5),
			SearchWorkers:     getEnvInt("ENGINE_SEARCH_WORKERS", 8),
		},
		Agent: AgentConfig{
			Epsilon:      getEnvFloat("AGENT_EPSILON", 0.1),
			LearningRate: getEnvFloat("AGENT_LEARNING_RATE", 0.1),
			BatchSize:    getEnvInt("AGENT_BATCH_SIZE", 20),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if cfg.Mapbox.AccessToken == "" {
		return nil, errors.New("missing mapbox access token")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}

	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}

	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}

	return defaultVal
}

func getEnvIntList(key string, defaultVal []int) []int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	parts := strings.Split(val, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return defaultVal
		}
		out = append(out, n)
	}

	return out
}
