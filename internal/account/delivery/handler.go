package delivery

import (
	"errors"
	"net/http"

	accountdomain "hushh-backend/internal/account/domain"
	"hushh-backend/internal/account/usecase"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles provider connect and status HTTP requests
type AccountHandler struct {
	oauthUsecase usecase.OAuthUsecase
}

func NewAccountHandler(oauthUsecase usecase.OAuthUsecase) *AccountHandler {
	return &AccountHandler{
		oauthUsecase: oauthUsecase,
	}
}

// Exchange swaps mobile credentials for a provider connection. Only Gmail
// supports the in-app exchange flow; other providers go through the browser.
// POST /api/auth/:provider/exchange
func (h *AccountHandler) Exchange(c *gin.Context) {
	if provider := c.Param("provider"); provider != accountdomain.ProviderGmail {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "exchange is only supported for gmail"})
		return
	}

	var input usecase.GmailConnectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	account, err := h.oauthUsecase.ConnectGmail(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Gmail account connected successfully",
		"account": account,
	})
}

// ConnectURL returns the consent URL for browser-based connect flows
// GET /api/auth/:provider/connect?userId=...
func (h *AccountHandler) ConnectURL(c *gin.Context) {
	provider := c.Param("provider")
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "userId is required"})
		return
	}

	url, err := h.oauthUsecase.ConnectURL(provider, userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
}

// Callback finishes a browser connect flow for any provider
// GET /api/auth/:provider/callback?code=...&state=...
func (h *AccountHandler) Callback(c *gin.Context) {
	if c.Param("provider") == accountdomain.ProviderLinkedIn {
		h.linkedInCallback(c)
		return
	}
	h.googleCallback(c)
}

func (h *AccountHandler) googleCallback(c *gin.Context) {
	provider := c.Param("provider")
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "code and state are required"})
		return
	}

	account, err := h.oauthUsecase.HandleGoogleCallback(c.Request.Context(), provider, code, state)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, usecase.ErrInvalidState) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Account connected successfully",
		"account": account,
	})
}

func (h *AccountHandler) linkedInCallback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   errParam,
			"message": c.Query("error_description"),
		})
		return
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "code and state are required"})
		return
	}

	account, err := h.oauthUsecase.HandleLinkedInCallback(c.Request.Context(), code, state)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, usecase.ErrInvalidState) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "LinkedIn account connected successfully",
		"account": account,
	})
}

// Status reports the connection state for one provider
// GET /api/accounts/:provider/status?userId=...
func (h *AccountHandler) Status(c *gin.Context) {
	provider := c.Param("provider")
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "userId is required"})
		return
	}

	account, err := h.oauthUsecase.Status(userID, provider)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if account == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "connected": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"connected": account.IsConnected,
		"account":   account,
	})
}

// Disconnect revokes a provider connection
// POST /api/accounts/:provider/disconnect
func (h *AccountHandler) Disconnect(c *gin.Context) {
	provider := c.Param("provider")

	var body struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := h.oauthUsecase.Disconnect(body.UserID, provider); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Account disconnected"})
}
