package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fareRadar/app/echo-server/router"
	"fareRadar/business/estimation"
	"fareRadar/business/fareagent"
	tripsService "fareRadar/business/trips"
	"fareRadar/internal/middleware"
	"fareRadar/internal/repository/mapbox"
	"fareRadar/internal/repository/mlservice"
	"fareRadar/internal/repository/nominatim"
	"fareRadar/internal/repository/openmeteo"
	psqlRepo "fareRadar/internal/repository/postgres"
	redisRepo "fareRadar/internal/repository/redis"
	"fareRadar/internal/rest"
	"fareRadar/pkg/config"
	"fareRadar/pkg/database"
	redisdb "fareRadar/pkg/database/redis"
	"fareRadar/pkg/logger"
	"fareRadar/pkg/metrics"
	"fareRadar/pkg/utils"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting fareRadar", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey)
	metrics.Init()

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		logger.Fatal("Invalid timezone", "timezone", cfg.App.Timezone, "error", err)
	}

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}
	defer redisdb.CloseRedisClient(redisClient)

	// External collaborators
	mapboxRepo := mapbox.NewMapboxRepository(cfg.Mapbox)
	nominatimRepo := nominatim.NewNominatimRepository(cfg.Nominatim)
	openmeteoRepo := openmeteo.NewOpenMeteoRepository(cfg.OpenMeteo)
	classifierRepo := mlservice.NewMLServiceRepository(cfg.MLService)

	// Init repo
	tripRepo := psqlRepo.NewTripRepository(db)
	pointRepo := psqlRepo.NewPointRepository(db)
	logRepo := psqlRepo.NewEstimationLogRepository(db)
	qtableRepo := redisRepo.NewQTableRepository(redisClient)
	isochrones := redisRepo.NewIsochroneCache(redisClient, mapboxRepo, cfg.Mapbox.IsochroneCacheTTL)

	tiers, err := estimation.NewPriceTierTable(cfg.Engine.PriceTiers)
	if err != nil {
		logger.Fatal("Invalid price tier table", "error", err)
	}

	// Init service
	estimationService := estimation.NewService(
		tripRepo,
		isochrones,
		mapboxRepo,
		nominatimRepo,
		openmeteoRepo,
		classifierRepo,
		logRepo,
		tiers,
		cfg.Engine,
		loc,
	)

	agent := fareagent.NewAgent(qtableRepo, cfg.Agent)
	agent.LoadTable(context.Background())
	estimationService.SetNudger(agent)

	trainer := fareagent.NewTrainer(agent, estimationService, tripRepo, cfg.Agent.BatchSize)
	trainerCtx, trainerCancel := context.WithCancel(context.Background())
	defer trainerCancel()
	go trainer.Run(trainerCtx)

	tripSvc := tripsService.NewService(
		tripRepo,
		pointRepo,
		mapboxRepo,
		nominatimRepo,
		openmeteoRepo,
		trainer,
		cfg.Engine,
		loc,
	)

	// Init handler
	estimateHandler := rest.NewEstimateHandler(estimationService)
	tripsHandler := rest.NewTripsHandler(tripSvc)
	agentAdminHandler := rest.NewAgentAdminHandler(agent)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = middleware.ErrorHandler

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	router.SetEstimateRoutes(api, estimateHandler)
	router.SetTripsRoutes(api, tripsHandler)
	router.SetAgentAdminRoutes(api, agentAdminHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	trainerCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
