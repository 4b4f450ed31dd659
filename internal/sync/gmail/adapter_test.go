package gmail

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	accountdomain "hushh-backend/internal/account/domain"
	"hushh-backend/internal/sync/engine"
	"hushh-backend/pkg/vendorapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func testAdapter(t *testing.T, handler http.Handler) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := vendorapi.NewClient(vendorapi.WithBackoff([]time.Duration{
		time.Millisecond, time.Millisecond, time.Millisecond,
	}))
	return NewAdapter(nil, client,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
}

func TestListChangesRetryKeepsEarlierPages(t *testing.T) {
	// Page 2 is rate limited on the first attempt. The retry restarts
	// pagination, so messages from the failed attempt's page 1 must still be
	// in the final change set.
	var page2Failures int32
	adapter := testAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/users/me/history") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("pageToken") {
		case "":
			w.Write([]byte(`{
				"historyId": "150",
				"nextPageToken": "p2",
				"history": [{"messagesAdded": [{"message": {"id": "m1"}}]}]
			}`))
		case "p2":
			if atomic.CompareAndSwapInt32(&page2Failures, 0, 1) {
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error": {"code": 429, "message": "rate limit"}}`))
				return
			}
			w.Write([]byte(`{
				"historyId": "200",
				"history": [{"messagesAdded": [{"message": {"id": "m2"}}]}]
			}`))
		default:
			http.NotFound(w, r)
		}
	}))

	changes, err := adapter.ListChanges(context.Background(), &accountdomain.ProviderAccount{UserID: "user-1"}, "tok", "100")

	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&page2Failures))
	assert.Equal(t, []string{"m1", "m2"}, changes.IDs)
	assert.Equal(t, "200", changes.NewCursor)
}

func TestListChangesExpiredHistoryID(t *testing.T) {
	adapter := testAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"code": 404, "message": "Requested entity was not found."}}`))
	}))

	_, err := adapter.ListChanges(context.Background(), &accountdomain.ProviderAccount{UserID: "user-1"}, "tok", "100")
	assert.ErrorIs(t, err, engine.ErrCursorInvalid)
}

func TestListChangesRejectsMalformedCursor(t *testing.T) {
	adapter := NewAdapter(nil, vendorapi.NewClient())
	_, err := adapter.ListChanges(context.Background(), &accountdomain.ProviderAccount{UserID: "user-1"}, "tok", "not-a-number")
	assert.ErrorIs(t, err, engine.ErrCursorInvalid)
}
