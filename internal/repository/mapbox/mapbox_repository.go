package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"fareRadar/domain"
	"fareRadar/pkg/config"
	"fareRadar/pkg/geo"
)

type MapboxRepository struct {
	baseURL     string
	accessToken string
	client      *http.Client
}

func NewMapboxRepository(cfg config.MapboxConfig) *MapboxRepository {
	return &MapboxRepository{
		baseURL:     cfg.BaseURL,
		accessToken: cfg.AccessToken,
		client:      &http.Client{Timeout: cfg.Timeout},
	}
}

type isochroneResponse struct {
	Features []struct {
		Geometry struct {
			Type        string        `json:"type"`
			Coordinates [][][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// GetIsochrone fetches the driving travel-time polygon around a point.
func (r *MapboxRepository) GetIsochrone(ctx context.Context, lon, lat float64, minutes int) (geo.Polygon, error) {
	endpoint := fmt.Sprintf("%s/isochrone/v1/mapbox/driving/%f,%f?contours_minutes=%d&polygons=true&access_token=%s",
		r.baseURL, lon, lat, minutes, url.QueryEscape(r.accessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build isochrone request: %w", err)
	}

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("isochrone request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("isochrone request returned status %d", res.StatusCode)
	}

	var body isochroneResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode isochrone response: %w", err)
	}

	if len(body.Features) == 0 || len(body.Features[0].Geometry.Coordinates) == 0 {
		return nil, fmt.Errorf("isochrone response has no polygon")
	}

	ring := body.Features[0].Geometry.Coordinates[0]
	poly := make(geo.Polygon, 0, len(ring))
	for _, pair := range ring {
		if len(pair) < 2 {
			continue
		}
		poly = append(poly, [2]float64{pair[0], pair[1]})
	}

	if len(poly) < 3 {
		return nil, fmt.Errorf("isochrone polygon degenerate")
	}
	return poly, nil
}

type directionsResponse struct {
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Legs     []struct {
			Steps []struct {
				Maneuver struct {
					Type          string  `json:"type"`
					Modifier      string  `json:"modifier"`
					BearingBefore float64 `json:"bearing_before"`
					BearingAfter  float64 `json:"bearing_after"`
				} `json:"maneuver"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// GetRoute fetches the driving route between two points, with maneuvers for
// the turn features.
func (r *MapboxRepository) GetRoute(ctx context.Context, startLat, startLon, endLat, endLon float64) (*domain.RouteInfo, error) {
	endpoint := fmt.Sprintf("%s/directions/v5/mapbox/driving/%f,%f;%f,%f?steps=true&access_token=%s",
		r.baseURL, startLon, startLat, endLon, endLat, url.QueryEscape(r.accessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build directions request: %w", err)
	}

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directions request returned status %d", res.StatusCode)
	}

	var body directionsResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode directions response: %w", err)
	}

	if len(body.Routes) == 0 {
		return nil, fmt.Errorf("no route found")
	}

	route := body.Routes[0]
	info := &domain.RouteInfo{
		DistanceM: route.Distance,
		DurationS: route.Duration,
	}
	for _, leg := range route.Legs {
		for _, step := range leg.Steps {
			info.Maneuvers = append(info.Maneuvers, domain.Maneuver{
				Type:          step.Maneuver.Type,
				Modifier:      step.Maneuver.Modifier,
				BearingBefore: step.Maneuver.BearingBefore,
				BearingAfter:  step.Maneuver.BearingAfter,
			})
		}
	}

	return info, nil
}
