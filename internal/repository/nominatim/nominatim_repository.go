package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"fareRadar/domain"
	"fareRadar/pkg/config"
)

type NominatimRepository struct {
	baseURL string
	client  *http.Client
}

func NewNominatimRepository(cfg config.NominatimConfig) *NominatimRepository {
	return &NominatimRepository{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Suburb        string `json:"suburb"`
		Neighbourhood string `json:"neighbourhood"`
		Quarter       string `json:"quarter"`
		City          string `json:"city"`
		Town          string `json:"town"`
		Village       string `json:"village"`
		County        string `json:"county"`
		StateDistrict string `json:"state_district"`
		State         string `json:"state"`
	} `json:"address"`
}

// ReverseGeocode resolves administrative labels for a coordinate. Label
// precedence mirrors what OpenStreetMap actually fills in for this region:
// suburb before neighbourhood before quarter, city before town before
// village, county before state district before state.
func (r *NominatimRepository) ReverseGeocode(ctx context.Context, lat, lon float64) (*domain.Place, error) {
	endpoint := fmt.Sprintf("%s/reverse?lat=%f&lon=%f&format=jsonv2", r.baseURL, lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build reverse geocode request: %w", err)
	}
	req.Header.Set("User-Agent", "fareRadar/1.0")

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocode request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reverse geocode returned status %d", res.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode reverse geocode response: %w", err)
	}

	place := &domain.Place{
		Label:        body.DisplayName,
		Neighborhood: firstNonEmpty(body.Address.Suburb, body.Address.Neighbourhood, body.Address.Quarter),
		City:         firstNonEmpty(body.Address.City, body.Address.Town, body.Address.Village),
		District:     firstNonEmpty(body.Address.County, body.Address.StateDistrict, body.Address.State),
	}
	return place, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
