package router

import (
	"time"

	"daansetu/config"
	"daansetu/internal/checkout"
	"daansetu/internal/handler"
	"daansetu/internal/middleware"
	"daansetu/internal/repository"
	"daansetu/internal/service"
	"daansetu/internal/ws"
	"daansetu/pkg/donationapi"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	donationRepo := repository.NewDonationRepository(db)

	apiClient := donationapi.NewClient(cfg.DonationAPI.BaseURL, cfg.DonationAPI.Timeout)
	donationSvc := service.NewDonationService(apiClient, cfg.Checkout.GatewayKey)

	hub := ws.NewOverlayHub()
	store := checkout.NewSessionStore()

	donationHandler := handler.NewDonationHandler(cfg, store, hub, donationSvc, donationRepo)

	authMw := middleware.OptionalAuth(&cfg.JWT)
	submitLimit := middleware.SubmitRateLimit(30, time.Minute)

	api := r.Group("/api/v1")
	{
		api.GET("/config/gateway-key", donationHandler.GatewayKey)

		checkoutGroup := api.Group("/checkout")
		{
			checkoutGroup.POST("/session", donationHandler.NewCheckoutSession)
			checkoutGroup.GET("/ws", handler.UpgradeCheckoutWS(store, hub))
		}

		api.POST("/donations", authMw, submitLimit, donationHandler.Submit)
		api.GET("/donations/:sessionID/state", donationHandler.State)

		campaigns := api.Group("/campaigns/:campaignID")
		{
			campaigns.POST("/donations", authMw, submitLimit, donationHandler.Submit)
			campaigns.GET("/donations", donationHandler.ListCampaignDonations)
		}
	}
	return r
}
