package api

import (
	accountusecase "hushh-backend/internal/account/usecase"
	ordusecase "hushh-backend/internal/order/usecase"
	"hushh-backend/internal/sync/drive"
	"hushh-backend/internal/sync/meet"
	syncusecase "hushh-backend/internal/sync/usecase"
	"hushh-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	oauthUsecase accountusecase.OAuthUsecase
	syncUsecase  syncusecase.SyncUsecase
	meetUsecase  meet.Usecase
	driveUsecase drive.Usecase
	orderUsecase ordusecase.OrderUsecase
	config       *config.Config
}

func NewHandler(oauthUc accountusecase.OAuthUsecase, syncUc syncusecase.SyncUsecase, meetUc meet.Usecase, driveUc drive.Usecase, orderUc ordusecase.OrderUsecase, cfg *config.Config) *Handler {
	return &Handler{
		oauthUsecase: oauthUc,
		syncUsecase:  syncUc,
		meetUsecase:  meetUc,
		driveUsecase: driveUc,
		orderUsecase: orderUc,
		config:       cfg,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.oauthUsecase, h.syncUsecase, h.meetUsecase, h.driveUsecase, h.orderUsecase, h.config)

	return r.Run(addr)
}
