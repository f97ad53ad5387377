package router

import (
	"fareRadar/internal/middleware"
	"fareRadar/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetEstimateRoutes(api *echo.Group, handler *rest.EstimateHandler) {
	estimate := api.Group("/estimate")
	estimate.POST("", handler.Estimate)
	estimate.GET("", handler.Estimate)
}

func SetTripsRoutes(api *echo.Group, handler *rest.TripsHandler) {
	trips := api.Group("/trips")
	trips.POST("", handler.Contribute)
	trips.GET("/stats", handler.Stats)
}

func SetAgentAdminRoutes(api *echo.Group, handler *rest.AgentAdminHandler) {
	admin := api.Group("/admin/agent", middleware.AuthMiddleware(), middleware.AdminOnly())

	admin.GET("/qtable", handler.QTable)
	admin.PUT("/epsilon", handler.SetEpsilon)
}
