package main

import (
	"context"
	"log"
	"strings"

	api "hushh-backend/cmd/api"
	accountdomain "hushh-backend/internal/account/domain"
	accountRepo "hushh-backend/internal/account/repository"
	accountUsecase "hushh-backend/internal/account/usecase"
	"hushh-backend/internal/notification"
	orderdomain "hushh-backend/internal/order/domain"
	orderRepo "hushh-backend/internal/order/repository"
	orderUsecase "hushh-backend/internal/order/usecase"
	syncdomain "hushh-backend/internal/sync/domain"
	"hushh-backend/internal/sync/drive"
	"hushh-backend/internal/sync/engine"
	gmailsync "hushh-backend/internal/sync/gmail"
	"hushh-backend/internal/sync/linkedin"
	"hushh-backend/internal/sync/meet"
	syncRepo "hushh-backend/internal/sync/repository"
	syncUsecase "hushh-backend/internal/sync/usecase"
	"hushh-backend/pkg/batch"
	"hushh-backend/pkg/config"
	"hushh-backend/pkg/database"
	"hushh-backend/pkg/fcm"
	"hushh-backend/pkg/vendorapi"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&accountdomain.ProviderAccount{},
		&syncdomain.EmailMessage{},
		&syncdomain.LinkedInPost{},
		&syncdomain.CalendarEvent{},
		&syncdomain.EventAttendee{},
		&syncdomain.MeetConference{},
		&syncdomain.MeetParticipant{},
		&syncdomain.MeetRecording{},
		&syncdomain.MeetTranscript{},
		&syncdomain.CalendarMeetLink{},
		&syncdomain.DriveFile{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&orderdomain.Agent{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	accounts := accountRepo.NewAccountRepository(db)
	emails := syncRepo.NewEmailRepository(db)
	posts := syncRepo.NewPostRepository(db)
	calendars := syncRepo.NewCalendarRepository(db)
	meets := syncRepo.NewMeetRepository(db)
	driveFiles := syncRepo.NewDriveRepository(db)
	orders := orderRepo.NewOrderRepository(db)
	agents := orderRepo.NewAgentRepository(db)

	// Shared vendor API client with the rate-limit retry policy
	apiClient := vendorapi.NewClient()

	// Token lifecycle and OAuth flows
	tokens := accountUsecase.NewTokenUsecase(accounts, cfg)
	oauth := accountUsecase.NewOAuthUsecase(accounts, tokens, apiClient, cfg)

	// Sync engine and provider adapters
	processor := batch.NewProcessor()
	eng := engine.NewEngine(accounts, tokens, processor, cfg.FirstSyncWindow, cfg.FallbackWindow)
	gmailAdapter := gmailsync.NewAdapter(emails, apiClient)
	linkedinAdapter := linkedin.NewAdapter(posts, apiClient)
	watch := gmailsync.NewWatchManager(accounts, apiClient, cfg.GoogleProjectID, shortTopicName(cfg.GmailPubSubTopic))

	syncUc := syncUsecase.NewSyncUsecase(eng, accounts, tokens, gmailAdapter, linkedinAdapter, watch)

	correlator := &meet.Correlator{
		TimeTolerance: cfg.CorrelationTimeTolerance,
		TimeWeight:    cfg.CorrelationTimeWeight,
		TitleWeight:   cfg.CorrelationTitleWeight,
		Threshold:     cfg.CorrelationThreshold,
	}
	meetUc := meet.NewUsecase(accounts, tokens, meets, calendars, correlator)
	driveUc := drive.NewUsecase(accounts, tokens, driveFiles)

	// Connecting Gmail registers the watch and runs a first sync in the
	// background; connecting LinkedIn runs a first sync.
	oauth.SetPostConnectHook(accountdomain.ProviderGmail, func(ctx context.Context, userID string) {
		go func() {
			if err := syncUc.SetupGmailWatch(context.Background(), userID); err != nil {
				log.Printf("[MAIN] Gmail watch setup failed for user %s: %v", userID, err)
			}
			if _, err := syncUc.SyncGmail(context.Background(), userID); err != nil {
				log.Printf("[MAIN] Initial Gmail sync failed for user %s: %v", userID, err)
			}
		}()
	})
	oauth.SetPostConnectHook(accountdomain.ProviderLinkedIn, func(ctx context.Context, userID string) {
		go func() {
			if _, err := syncUc.SyncLinkedIn(context.Background(), userID); err != nil {
				log.Printf("[MAIN] Initial LinkedIn sync failed for user %s: %v", userID, err)
			}
		}()
	})

	// FCM client for agent order notifications (optional)
	var sender orderUsecase.Sender
	if cfg.FirebaseCredentials != "" {
		fcmClient, err := fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (agent notifications disabled): %v", err)
		} else {
			sender = fcmClient
		}
	} else {
		log.Println("[WARN] FIREBASE_CREDENTIALS not set, agent notifications disabled")
	}

	dispatcher := orderUsecase.NewDispatcher(orders, agents, sender)
	orderUc := orderUsecase.NewOrderUsecase(orders, dispatcher)

	// Gmail push notification consumer (optional)
	if cfg.GoogleProjectID != "" {
		notificationService, err := notification.NewService(cfg.GoogleProjectID, shortTopicName(cfg.GmailPubSubTopic), syncUc, cfg.GoogleCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize notification service: %v", err)
		} else {
			go notificationService.Start(context.Background())
		}
	} else {
		log.Println("[WARN] GOOGLE_CLOUD_PROJECT_ID not set, Gmail push notifications disabled")
	}

	// Start HTTP server
	handler := api.NewHandler(oauth, syncUc, meetUc, driveUc, orderUc, cfg)
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// shortTopicName strips a full resource name down to the bare topic.
func shortTopicName(topic string) string {
	if parts := strings.Split(topic, "/"); len(parts) > 1 {
		return parts[len(parts)-1]
	}
	return topic
}
