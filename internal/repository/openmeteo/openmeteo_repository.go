package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"fareRadar/domain"
	"fareRadar/pkg/config"
)

type OpenMeteoRepository struct {
	baseURL string
	client  *http.Client
}

func NewOpenMeteoRepository(cfg config.OpenMeteoConfig) *OpenMeteoRepository {
	return &OpenMeteoRepository{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type forecastResponse struct {
	Current struct {
		WeatherCode int `json:"weather_code"`
	} `json:"current"`
}

// CurrentWeatherCode fetches the current WMO weather code and collapses it to
// the engine's 0..3 severity scale.
func (r *OpenMeteoRepository) CurrentWeatherCode(ctx context.Context, lat, lon float64) (int16, error) {
	endpoint := fmt.Sprintf("%s/v1/forecast?latitude=%f&longitude=%f&current=weather_code", r.baseURL, lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build weather request: %w", err)
	}

	res, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("weather request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("weather request returned status %d", res.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to decode weather response: %w", err)
	}

	return domain.WeatherFromWMO(body.Current.WeatherCode), nil
}
