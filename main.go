package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/oohgrid/reservation-service/config"
	"github.com/oohgrid/reservation-service/internal/handler"
	"github.com/oohgrid/reservation-service/internal/locks"
	"github.com/oohgrid/reservation-service/internal/middleware"
	"github.com/oohgrid/reservation-service/internal/repository"
	"github.com/oohgrid/reservation-service/internal/service"
	"github.com/oohgrid/reservation-service/pkg/database"
	"github.com/oohgrid/reservation-service/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// RabbitMQ publisher: campaign.converted for downstream billing/ops
	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	// Repositories
	assetRepo := repository.NewAssetRepository(db)
	planRepo := repository.NewPlanRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	seqRepo := repository.NewSequenceRepository(db)

	// Services
	locker := locks.NewAssetLocker()
	availabilitySvc := service.NewAvailabilityService(assetRepo, campaignRepo)
	planSvc := service.NewPlanService(planRepo, assetRepo)
	conversionSvc := service.NewConversionService(planRepo, assetRepo, campaignRepo, seqRepo, locker, publisher)
	campaignSvc := service.NewCampaignService(campaignRepo)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "reservation-service"})
	})

	api := e.Group("/api/v1", middleware.TenantContext)
	handler.NewAvailabilityHandler(availabilitySvc).RegisterRoutes(api)
	handler.NewPlanHandler(planSvc, conversionSvc).RegisterRoutes(api)
	handler.NewCampaignHandler(campaignSvc).RegisterRoutes(api)

	log.Printf("Reservation Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
