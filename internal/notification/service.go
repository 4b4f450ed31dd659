package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// GmailNotification is the payload Gmail publishes to the watch topic.
type GmailNotification struct {
	EmailAddress string `json:"emailAddress"`
	HistoryID    uint64 `json:"historyId"`
}

// GmailSyncer triggers an incremental sync for a watched mailbox.
type GmailSyncer interface {
	HandleGmailNotification(ctx context.Context, emailAddress string, historyID uint64) error
}

// Service consumes Gmail push notifications from Pub/Sub and turns them into
// incremental syncs.
type Service struct {
	pubsubClient *pubsub.Client
	syncer       GmailSyncer
	projectID    string
	topicName    string
	subName      string
	// Deduplication: track last historyId per mailbox so redelivered or
	// out-of-order pushes don't trigger duplicate syncs. Receive runs
	// callbacks concurrently, so the map is guarded.
	mu            sync.Mutex
	lastHistoryID map[string]uint64
}

func NewService(projectID, topicName string, syncer GmailSyncer, credentialsFile string) (*Service, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %v", err)
	}

	return &Service{
		pubsubClient:  client,
		syncer:        syncer,
		projectID:     projectID,
		topicName:     topicName,
		subName:       topicName + "-sub", // Convention: topic-sub
		lastHistoryID: make(map[string]uint64),
	}, nil
}

func (s *Service) Start(ctx context.Context) {
	log.Printf("[PubSub] Starting notification service with topic: %s, subscription: %s", s.topicName, s.subName)

	// Ensure subscription exists
	sub := s.pubsubClient.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[PubSub] Error checking subscription existence: %v", err)
		return
	}

	if !exists {
		topic := s.pubsubClient.Topic(s.topicName)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			log.Printf("[PubSub] Error checking topic existence: %v", err)
			return
		}
		if !topicExists {
			log.Printf("[PubSub] Topic %s does not exist, cannot create subscription", s.topicName)
			return
		}

		sub, err = s.pubsubClient.CreateSubscription(ctx, s.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 10 * time.Second,
		})
		if err != nil {
			log.Printf("[PubSub] Failed to create subscription: %v", err)
			return
		}
		log.Printf("[PubSub] Created subscription: %s", s.subName)
	}

	log.Printf("[PubSub] Listening for messages on subscription: %s", s.subName)
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		s.handleMessage(ctx, msg)
		msg.Ack()
	})
	if err != nil {
		log.Printf("[PubSub] Error receiving messages: %v", err)
	}
}

func (s *Service) handleMessage(ctx context.Context, msg *pubsub.Message) {
	var notification GmailNotification
	if err := json.Unmarshal(msg.Data, &notification); err != nil {
		log.Printf("[PubSub] Failed to unmarshal notification: %v", err)
		return
	}

	log.Printf("[PubSub] Notification for %s (historyId: %d)", notification.EmailAddress, notification.HistoryID)

	if !s.advanceHistoryID(notification.EmailAddress, notification.HistoryID) {
		log.Printf("[PubSub] Skipping duplicate notification for %s (historyId %d)",
			notification.EmailAddress, notification.HistoryID)
		return
	}

	if err := s.syncer.HandleGmailNotification(ctx, notification.EmailAddress, notification.HistoryID); err != nil {
		log.Printf("[PubSub] Sync for %s failed: %v", notification.EmailAddress, err)
	}
}

// advanceHistoryID records historyID as the newest seen for the mailbox.
// Returns false when an equal or newer ID was already recorded.
func (s *Service) advanceHistoryID(email string, historyID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.lastHistoryID[email]; ok && historyID <= last {
		return false
	}
	s.lastHistoryID[email] = historyID
	return true
}
