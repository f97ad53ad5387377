package rest

import (
	"context"
	"net/http"

	"fareRadar/business/trips"
	"fareRadar/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	TripsHandler struct {
		validate     *validator.Validate
		tripsService TripsService
	}

	TripsService interface {
		Contribute(ctx context.Context, input trips.ContributeInput) (*domain.Trip, error)
		Stats(ctx context.Context) (*domain.TripStats, error)
	}

	ContributeRequest struct {
		StartLatitude  float64 `json:"start_latitude" validate:"required,min=-90,max=90"`
		StartLongitude float64 `json:"start_longitude" validate:"required,min=-180,max=180"`
		EndLatitude    float64 `json:"end_latitude" validate:"required,min=-90,max=90"`
		EndLongitude   float64 `json:"end_longitude" validate:"required,min=-180,max=180"`

		PricePaid   float64  `json:"price_paid" validate:"required,gt=0"`
		DurationMin *float64 `json:"duration_min" validate:"omitempty,gt=0"`

		TimeBucket     *string  `json:"time_bucket" validate:"omitempty,oneof=morning afternoon evening night"`
		WeatherCode    *int16   `json:"weather_code" validate:"omitempty,min=0,max=3"`
		ZoneType       *int16   `json:"zone_type" validate:"omitempty,min=0,max=2"`
		UserCongestion *int16   `json:"congestion" validate:"omitempty,min=1,max=10"`
		MeanCongestion *float64 `json:"mean_congestion" validate:"omitempty,min=0,max=100"`
	}
)

func NewTripsHandler(svc TripsService) *TripsHandler {
	return &TripsHandler{
		validate:     validator.New(),
		tripsService: svc,
	}
}

func (h *TripsHandler) Contribute(c echo.Context) error {
	var req ContributeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	trip, err := h.tripsService.Contribute(c.Request().Context(), trips.ContributeInput{
		StartLatitude:  req.StartLatitude,
		StartLongitude: req.StartLongitude,
		EndLatitude:    req.EndLatitude,
		EndLongitude:   req.EndLongitude,
		PricePaid:      req.PricePaid,
		DurationMin:    req.DurationMin,
		TimeBucket:     req.TimeBucket,
		WeatherCode:    req.WeatherCode,
		ZoneType:       req.ZoneType,
		UserCongestion: req.UserCongestion,
		MeanCongestion: req.MeanCongestion,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(trip))
}

func (h *TripsHandler) Stats(c echo.Context) error {
	stats, err := h.tripsService.Stats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(stats))
}
