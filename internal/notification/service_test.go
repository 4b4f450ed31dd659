package notification

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"cloud.google.com/go/pubsub"
	"github.com/stretchr/testify/assert"
)

type recordingSyncer struct {
	mu        sync.Mutex
	calls     int
	lastEmail string
	lastHID   uint64
}

func (s *recordingSyncer) HandleGmailNotification(ctx context.Context, emailAddress string, historyID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastEmail = emailAddress
	s.lastHID = historyID
	return nil
}

func testService(syncer GmailSyncer) *Service {
	return &Service{
		syncer:        syncer,
		lastHistoryID: make(map[string]uint64),
	}
}

func notificationMessage(email string, historyID uint64) *pubsub.Message {
	return &pubsub.Message{
		Data: []byte(fmt.Sprintf(`{"emailAddress":%q,"historyId":%d}`, email, historyID)),
	}
}

func TestHandleMessageTriggersSync(t *testing.T) {
	syncer := &recordingSyncer{}
	svc := testService(syncer)

	svc.handleMessage(context.Background(), notificationMessage("user@example.com", 100))

	assert.Equal(t, 1, syncer.calls)
	assert.Equal(t, "user@example.com", syncer.lastEmail)
	assert.Equal(t, uint64(100), syncer.lastHID)
}

func TestHandleMessageSkipsStaleHistoryIDs(t *testing.T) {
	syncer := &recordingSyncer{}
	svc := testService(syncer)

	svc.handleMessage(context.Background(), notificationMessage("user@example.com", 100))
	svc.handleMessage(context.Background(), notificationMessage("user@example.com", 100))
	svc.handleMessage(context.Background(), notificationMessage("user@example.com", 50))

	assert.Equal(t, 1, syncer.calls)

	svc.handleMessage(context.Background(), notificationMessage("user@example.com", 150))
	assert.Equal(t, 2, syncer.calls)
}

func TestHandleMessageDedupIsPerMailbox(t *testing.T) {
	syncer := &recordingSyncer{}
	svc := testService(syncer)

	svc.handleMessage(context.Background(), notificationMessage("a@example.com", 100))
	svc.handleMessage(context.Background(), notificationMessage("b@example.com", 100))

	assert.Equal(t, 2, syncer.calls)
}

func TestHandleMessageConcurrentDelivery(t *testing.T) {
	// Receive dispatches callbacks concurrently; the dedup map must survive
	// that and end up at the highest delivered history ID.
	syncer := &recordingSyncer{}
	svc := testService(syncer)

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(historyID uint64) {
			defer wg.Done()
			svc.handleMessage(context.Background(), notificationMessage("user@example.com", historyID))
		}(uint64(i))
	}
	wg.Wait()

	assert.Equal(t, uint64(50), svc.lastHistoryID["user@example.com"])
	assert.LessOrEqual(t, syncer.calls, 50)
	assert.Greater(t, syncer.calls, 0)
}

func TestHandleMessageIgnoresMalformedPayload(t *testing.T) {
	syncer := &recordingSyncer{}
	svc := testService(syncer)

	svc.handleMessage(context.Background(), &pubsub.Message{Data: []byte("not json")})

	assert.Equal(t, 0, syncer.calls)
}
