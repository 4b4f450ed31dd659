package delivery

import (
	"errors"
	"net/http"
	"time"

	accountusecase "hushh-backend/internal/account/usecase"
	"hushh-backend/internal/sync/drive"
	"hushh-backend/internal/sync/engine"
	"hushh-backend/internal/sync/meet"
	syncusecase "hushh-backend/internal/sync/usecase"

	"github.com/gin-gonic/gin"
)

// SyncHandler handles sync trigger HTTP requests
type SyncHandler struct {
	syncUsecase  syncusecase.SyncUsecase
	meetUsecase  meet.Usecase
	driveUsecase drive.Usecase
}

func NewSyncHandler(syncUsecase syncusecase.SyncUsecase, meetUsecase meet.Usecase, driveUsecase drive.Usecase) *SyncHandler {
	return &SyncHandler{
		syncUsecase:  syncUsecase,
		meetUsecase:  meetUsecase,
		driveUsecase: driveUsecase,
	}
}

type syncRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type rangeSyncRequest struct {
	UserID    string `json:"userId" binding:"required"`
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
}

// respondSyncError maps domain errors onto HTTP statuses.
func respondSyncError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "provider account not found"})
	case errors.Is(err, engine.ErrNotConnected):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "provider account is not connected"})
	case errors.Is(err, accountusecase.ErrReconnectRequired):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "token expired, please reconnect the account"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
	}
}

// SyncGmail triggers an incremental Gmail sync
// POST /api/sync/gmail
func (h *SyncHandler) SyncGmail(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.syncUsecase.SyncGmail(c.Request.Context(), req.UserID)
	if err != nil {
		respondSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

// SyncGmailRange backfills Gmail over an explicit date range
// POST /api/sync/gmail/range
func (h *SyncHandler) SyncGmailRange(c *gin.Context) {
	var req rangeSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid startDate"})
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid endDate"})
		return
	}
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "endDate must be after startDate"})
		return
	}

	result, err := h.syncUsecase.SyncGmailRange(c.Request.Context(), req.UserID, start, end)
	if err != nil {
		respondSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

// SetupGmailWatch registers Gmail push notifications
// POST /api/sync/gmail/watch
func (h *SyncHandler) SetupGmailWatch(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := h.syncUsecase.SetupGmailWatch(c.Request.Context(), req.UserID); err != nil {
		respondSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Gmail watch registered"})
}

// SyncLinkedIn triggers an incremental LinkedIn sync
// POST /api/sync/linkedin
func (h *SyncHandler) SyncLinkedIn(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.syncUsecase.SyncLinkedIn(c.Request.Context(), req.UserID)
	if err != nil {
		respondSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

// SyncMeet syncs Meet conferences plus calendar events and correlates them
// POST /api/sync/meet
func (h *SyncHandler) SyncMeet(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	summary, err := h.meetUsecase.Sync(c.Request.Context(), req.UserID)
	if err != nil {
		respondSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Google Meet and Calendar data synced successfully",
		"syncedData": summary,
	})
}

// MeetStatus reports the Meet connection state
// GET /api/sync/meet/status?userId=...
func (h *SyncHandler) MeetStatus(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "userId is required"})
		return
	}

	status, err := h.meetUsecase.Status(userID)
	if err != nil {
		if errors.Is(err, engine.ErrAccountNotFound) {
			c.JSON(http.StatusOK, gin.H{"success": true, "connected": false})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"connected":       status.Connected,
		"account":         status.Account,
		"conferenceCount": status.ConferenceCount,
	})
}

// DriveStatus reports the Drive connection state
// GET /api/sync/drive/status?userId=...
func (h *SyncHandler) DriveStatus(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "userId is required"})
		return
	}

	status, err := h.driveUsecase.Status(userID)
	if err != nil {
		if errors.Is(err, engine.ErrAccountNotFound) {
			c.JSON(http.StatusOK, gin.H{"success": true, "connected": false})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"connected": status.Connected,
		"account":   status.Account,
		"fileCount": status.FileCount,
	})
}

// SyncDrive syncs Drive file metadata
// POST /api/sync/drive
func (h *SyncHandler) SyncDrive(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	summary, err := h.driveUsecase.Sync(c.Request.Context(), req.UserID)
	if err != nil {
		respondSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "syncedData": summary})
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
