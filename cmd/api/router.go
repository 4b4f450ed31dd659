package api

import (
	"net/http"

	accountDelivery "hushh-backend/internal/account/delivery"
	accountusecase "hushh-backend/internal/account/usecase"
	orderDelivery "hushh-backend/internal/order/delivery"
	ordusecase "hushh-backend/internal/order/usecase"
	syncDelivery "hushh-backend/internal/sync/delivery"
	"hushh-backend/internal/sync/drive"
	"hushh-backend/internal/sync/meet"
	syncusecase "hushh-backend/internal/sync/usecase"
	"hushh-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, oauthUc accountusecase.OAuthUsecase, syncUc syncusecase.SyncUsecase, meetUc meet.Usecase, driveUc drive.Usecase, orderUc ordusecase.OrderUsecase, cfg *config.Config) {
	accountHandler := accountDelivery.NewAccountHandler(oauthUc)
	syncHandler := syncDelivery.NewSyncHandler(syncUc, meetUc, driveUc)
	orderHandler := orderDelivery.NewOrderHandler(orderUc)

	serviceAuth := accountDelivery.ServiceAuthMiddleware(cfg.JWTSecret)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// OAuth flows. Callbacks come from the provider's redirect, so they
		// carry no bearer token.
		auth := api.Group("/auth")
		{
			auth.POST("/:provider/exchange", serviceAuth, accountHandler.Exchange)
			auth.GET("/:provider/connect", serviceAuth, accountHandler.ConnectURL)
			auth.GET("/:provider/callback", accountHandler.Callback)
		}

		// Account state (protected)
		accounts := api.Group("/accounts")
		accounts.Use(serviceAuth)
		{
			accounts.GET("/:provider/status", accountHandler.Status)
			accounts.POST("/:provider/disconnect", accountHandler.Disconnect)
		}

		// Sync triggers (protected)
		sync := api.Group("/sync")
		sync.Use(serviceAuth)
		{
			sync.POST("/gmail", syncHandler.SyncGmail)
			sync.POST("/gmail/range", syncHandler.SyncGmailRange)
			sync.POST("/gmail/watch", syncHandler.SetupGmailWatch)
			sync.POST("/linkedin", syncHandler.SyncLinkedIn)
			sync.POST("/meet", syncHandler.SyncMeet)
			sync.GET("/meet/status", syncHandler.MeetStatus)
			sync.POST("/drive", syncHandler.SyncDrive)
			sync.GET("/drive/status", syncHandler.DriveStatus)
		}

		// Orders (protected)
		orders := api.Group("/orders")
		orders.Use(serviceAuth)
		{
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
		}
	}
}
