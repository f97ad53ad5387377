package rest

import (
	"context"
	"net/http"
	"time"

	"fareRadar/domain"
	"fareRadar/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	EstimateHandler struct {
		validate          *validator.Validate
		estimationService EstimationService
	}

	EstimationService interface {
		Estimate(ctx context.Context, req domain.EstimationRequest) *domain.EstimationResult
	}

	EstimateRequest struct {
		StartLatitude  float64 `json:"start_latitude" query:"start_latitude" validate:"required,min=-90,max=90"`
		StartLongitude float64 `json:"start_longitude" query:"start_longitude" validate:"required,min=-180,max=180"`
		EndLatitude    float64 `json:"end_latitude" query:"end_latitude" validate:"required,min=-90,max=90"`
		EndLongitude   float64 `json:"end_longitude" query:"end_longitude" validate:"required,min=-180,max=180"`

		StartCity     string `json:"start_city" query:"start_city"`
		StartDistrict string `json:"start_district" query:"start_district"`
		EndCity       string `json:"end_city" query:"end_city"`
		EndDistrict   string `json:"end_district" query:"end_district"`

		TimeBucket     *string `json:"time_bucket" query:"time_bucket" validate:"omitempty,oneof=morning afternoon evening night"`
		WeatherCode    *int16  `json:"weather_code" query:"weather_code" validate:"omitempty,min=0,max=3"`
		ZoneType       *int16  `json:"zone_type" query:"zone_type" validate:"omitempty,min=0,max=2"`
		UserCongestion *int16  `json:"congestion" query:"congestion" validate:"omitempty,min=1,max=10"`
	}
)

func NewEstimateHandler(svc EstimationService) *EstimateHandler {
	return &EstimateHandler{
		validate:          validator.New(),
		estimationService: svc,
	}
}

// Estimate serves POST and GET; the request binds from body or query. The
// engine always answers, so the only failure mode here is validation.
func (h *EstimateHandler) Estimate(c echo.Context) error {
	var req EstimateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	started := time.Now()
	result := h.estimationService.Estimate(c.Request().Context(), domain.EstimationRequest{
		StartLatitude:  req.StartLatitude,
		StartLongitude: req.StartLongitude,
		EndLatitude:    req.EndLatitude,
		EndLongitude:   req.EndLongitude,
		StartCity:      req.StartCity,
		StartDistrict:  req.StartDistrict,
		EndCity:        req.EndCity,
		EndDistrict:    req.EndDistrict,
		TimeBucket:     req.TimeBucket,
		WeatherCode:    req.WeatherCode,
		ZoneType:       req.ZoneType,
		UserCongestion: req.UserCongestion,
	})
	metrics.EstimateLatency.Observe(time.Since(started).Seconds())

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}
