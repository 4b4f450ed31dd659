package usecase

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	accountdomain "hushh-backend/internal/account/domain"
	accountrepo "hushh-backend/internal/account/repository"
	accountusecase "hushh-backend/internal/account/usecase"
	"hushh-backend/internal/sync/engine"
	"hushh-backend/internal/sync/gmail"
	"hushh-backend/internal/sync/linkedin"
)

// SyncUsecase exposes the cursor-driven providers (Gmail, LinkedIn) plus the
// Gmail push-notification plumbing built on top of the shared engine.
type SyncUsecase interface {
	SyncGmail(ctx context.Context, userID string) (*engine.Result, error)
	SyncGmailRange(ctx context.Context, userID string, start, end time.Time) (*engine.Result, error)
	SyncLinkedIn(ctx context.Context, userID string) (*engine.Result, error)
	// SetupGmailWatch registers inbox push notifications for the user.
	SetupGmailWatch(ctx context.Context, userID string) error
	// HandleGmailNotification reacts to a Pub/Sub push: stale history IDs are
	// dropped, fresh ones trigger an incremental sync.
	HandleGmailNotification(ctx context.Context, emailAddress string, historyID uint64) error
}

type syncUsecase struct {
	eng      *engine.Engine
	accounts accountrepo.AccountRepository
	tokens   accountusecase.TokenUsecase
	gmail    *gmail.Adapter
	linkedin *linkedin.Adapter
	watch    *gmail.WatchManager
}

func NewSyncUsecase(eng *engine.Engine, accounts accountrepo.AccountRepository, tokens accountusecase.TokenUsecase, gmailAdapter *gmail.Adapter, linkedinAdapter *linkedin.Adapter, watch *gmail.WatchManager) SyncUsecase {
	return &syncUsecase{
		eng:      eng,
		accounts: accounts,
		tokens:   tokens,
		gmail:    gmailAdapter,
		linkedin: linkedinAdapter,
		watch:    watch,
	}
}

func (u *syncUsecase) SyncGmail(ctx context.Context, userID string) (*engine.Result, error) {
	return u.eng.Sync(ctx, u.gmail, userID)
}

func (u *syncUsecase) SyncGmailRange(ctx context.Context, userID string, start, end time.Time) (*engine.Result, error) {
	return u.eng.SyncRange(ctx, u.gmail, userID, start, end)
}

func (u *syncUsecase) SyncLinkedIn(ctx context.Context, userID string) (*engine.Result, error) {
	return u.eng.Sync(ctx, u.linkedin, userID)
}

func (u *syncUsecase) SetupGmailWatch(ctx context.Context, userID string) error {
	account, err := u.accounts.FindByUserAndProvider(userID, accountdomain.ProviderGmail)
	if err != nil {
		return err
	}
	if account == nil {
		return engine.ErrAccountNotFound
	}
	token, err := u.tokens.GetValidToken(ctx, account)
	if err != nil {
		return err
	}
	return u.watch.Setup(ctx, account, token)
}

func (u *syncUsecase) HandleGmailNotification(ctx context.Context, emailAddress string, historyID uint64) error {
	account, err := u.accounts.FindConnectedByEmail(emailAddress, accountdomain.ProviderGmail)
	if err != nil {
		return err
	}
	if account == nil {
		log.Printf("[SYNC] Notification for unknown mailbox %s, ignoring", emailAddress)
		return nil
	}

	// A notification older than the stored cursor carries nothing new.
	if account.Cursor != "" {
		if cursor, err := strconv.ParseUint(account.Cursor, 10, 64); err == nil && historyID <= cursor {
			log.Printf("[SYNC] Stale notification for %s (history %d <= cursor %d)", emailAddress, historyID, cursor)
			return nil
		}
	}

	if _, err := u.eng.Sync(ctx, u.gmail, account.UserID); err != nil {
		return fmt.Errorf("push-triggered gmail sync failed: %w", err)
	}
	return nil
}
