package mlservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"fareRadar/business/estimation"
	"fareRadar/pkg/config"
	"fareRadar/pkg/logger"
)

type MLServiceRepository struct {
	baseURL string
	client  *http.Client

	qualityNote sync.Once
}

func NewMLServiceRepository(cfg config.MLServiceConfig) *MLServiceRepository {
	return &MLServiceRepository{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type predictResponse struct {
	ClassIndex *int    `json:"class_index"`
	Confidence float64 `json:"confidence"`
}

// Predict posts the feature vector to the model server. Returns nil without
// error when the model produced nothing usable.
func (r *MLServiceRepository) Predict(ctx context.Context, features estimation.FeatureVector) (*estimation.Prediction, error) {
	// the v1 model ignores trip_quality even though the contract accepts it
	r.qualityNote.Do(func() {
		logger.Info("Classifier feature contract v1: trip_quality accepted but not consumed by the current model")
	})

	payload, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predict request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("predict request returned status %d", res.StatusCode)
	}

	var body predictResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode predict response: %w", err)
	}

	if body.ClassIndex == nil {
		return nil, nil
	}

	return &estimation.Prediction{
		ClassIndex: *body.ClassIndex,
		Confidence: body.Confidence,
	}, nil
}
