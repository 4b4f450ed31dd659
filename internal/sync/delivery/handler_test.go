package delivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	accountdomain "hushh-backend/internal/account/domain"
	"hushh-backend/internal/sync/drive"
	"hushh-backend/internal/sync/engine"
	"hushh-backend/internal/sync/meet"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSyncUsecase struct {
	result *engine.Result
	err    error
}

func (s *stubSyncUsecase) SyncGmail(ctx context.Context, userID string) (*engine.Result, error) {
	return s.result, s.err
}

func (s *stubSyncUsecase) SyncGmailRange(ctx context.Context, userID string, start, end time.Time) (*engine.Result, error) {
	return s.result, s.err
}

func (s *stubSyncUsecase) SyncLinkedIn(ctx context.Context, userID string) (*engine.Result, error) {
	return s.result, s.err
}

func (s *stubSyncUsecase) SetupGmailWatch(ctx context.Context, userID string) error { return s.err }

func (s *stubSyncUsecase) HandleGmailNotification(ctx context.Context, emailAddress string, historyID uint64) error {
	return s.err
}

type stubMeetUsecase struct {
	status *meet.ConnectionStatus
	err    error
}

func (s *stubMeetUsecase) Sync(ctx context.Context, userID string) (*meet.SyncSummary, error) {
	return nil, s.err
}

func (s *stubMeetUsecase) Status(userID string) (*meet.ConnectionStatus, error) {
	return s.status, s.err
}

type stubDriveUsecase struct {
	status *drive.ConnectionStatus
	err    error
}

func (s *stubDriveUsecase) Sync(ctx context.Context, userID string) (*drive.SyncSummary, error) {
	return nil, s.err
}

func (s *stubDriveUsecase) Status(userID string) (*drive.ConnectionStatus, error) {
	return s.status, s.err
}

func performRequest(t *testing.T, handler *SyncHandler, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/sync/meet/status", handler.MeetStatus)
	r.GET("/sync/drive/status", handler.DriveStatus)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	r.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestMeetStatusIncludesConferenceCount(t *testing.T) {
	handler := NewSyncHandler(&stubSyncUsecase{}, &stubMeetUsecase{
		status: &meet.ConnectionStatus{
			Connected:       true,
			Account:         &accountdomain.ProviderAccount{Provider: accountdomain.ProviderMeet},
			ConferenceCount: 7,
		},
	}, &stubDriveUsecase{})

	w, body := performRequest(t, handler, http.MethodGet, "/sync/meet/status?userId=user-1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["connected"])
	assert.Equal(t, float64(7), body["conferenceCount"])
}

func TestMeetStatusUnknownAccount(t *testing.T) {
	handler := NewSyncHandler(&stubSyncUsecase{}, &stubMeetUsecase{err: engine.ErrAccountNotFound}, &stubDriveUsecase{})

	w, body := performRequest(t, handler, http.MethodGet, "/sync/meet/status?userId=user-1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["connected"])
}

func TestDriveStatusIncludesFileCount(t *testing.T) {
	handler := NewSyncHandler(&stubSyncUsecase{}, &stubMeetUsecase{}, &stubDriveUsecase{
		status: &drive.ConnectionStatus{
			Connected: true,
			Account:   &accountdomain.ProviderAccount{Provider: accountdomain.ProviderDrive},
			FileCount: 42,
		},
	})

	w, body := performRequest(t, handler, http.MethodGet, "/sync/drive/status?userId=user-1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["connected"])
	assert.Equal(t, float64(42), body["fileCount"])
}

func TestStatusRequiresUserID(t *testing.T) {
	handler := NewSyncHandler(&stubSyncUsecase{}, &stubMeetUsecase{}, &stubDriveUsecase{})

	w, body := performRequest(t, handler, http.MethodGet, "/sync/drive/status")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
}
