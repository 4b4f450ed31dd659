package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	accountdomain "hushh-backend/internal/account/domain"
	accountrepo "hushh-backend/internal/account/repository"
	"hushh-backend/pkg/batch"
)

var (
	// ErrAccountNotFound means no connection row exists for (user, provider).
	ErrAccountNotFound = errors.New("provider account not found")
	// ErrNotConnected means the account row exists but was disconnected.
	ErrNotConnected = errors.New("provider account is not connected")
	// ErrCursorInvalid is returned by adapters when the stored cursor was
	// rejected by the vendor (expired history ID, malformed marker).
	ErrCursorInvalid = errors.New("sync cursor invalid or expired")
)

// Record is one normalized vendor item ready for storage.
type Record interface {
	VendorID() string
}

// ChangeSet is the outcome of a cursor-based delta listing.
type ChangeSet struct {
	IDs []string
	// NewCursor is the vendor's end-of-delta marker. May be empty, in which
	// case the engine derives the next cursor from the fetched records.
	NewCursor string
}

// Adapter is the provider-specific half of a sync: listing candidate IDs,
// fetching and normalizing single items, and storing batches. The engine owns
// everything else: windows, dedup, pacing, cursor advancement.
type Adapter interface {
	Provider() string
	// BatchSize is the fetch chunk size for this provider.
	BatchSize() int
	// ListChanges lists item IDs created since cursor. Returns ErrCursorInvalid
	// (possibly wrapped) when the cursor is no longer usable.
	ListChanges(ctx context.Context, account *accountdomain.ProviderAccount, token, cursor string) (*ChangeSet, error)
	// ListWindow lists item IDs in [since, until). A zero until means "now".
	ListWindow(ctx context.Context, account *accountdomain.ProviderAccount, token string, since, until time.Time) ([]string, error)
	// FetchItem fetches and normalizes one item.
	FetchItem(ctx context.Context, account *accountdomain.ProviderAccount, token, id string) (Record, error)
	// ExistingIDs returns which of the given vendor IDs are already stored.
	ExistingIDs(userID string, ids []string) ([]string, error)
	// StoreBatch persists records; implementations upsert so replays are safe.
	StoreBatch(userID string, records []Record) error
	// CursorFromRecord extracts a cursor candidate from a stored record.
	// Empty means the record carries no marker.
	CursorFromRecord(record Record) string
}

// Status summarizes how a sync run ended.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// Result reports what a sync run did.
type Result struct {
	Provider          string `json:"provider"`
	Status            Status `json:"status"`
	TotalFound        int    `json:"total_found"`
	NewCount          int    `json:"new_count"`
	DuplicatesSkipped int    `json:"duplicates_skipped"`
	FailedItems       int    `json:"failed_items"`
	Cursor            string `json:"cursor,omitempty"`
}

// TokenSource yields a usable access token for an account, refreshing it
// first when needed. Satisfied by the account token usecase.
type TokenSource interface {
	GetValidToken(ctx context.Context, account *accountdomain.ProviderAccount) (string, error)
}

// Engine drives the shared incremental-sync pipeline across providers.
type Engine struct {
	accountRepo     accountrepo.AccountRepository
	tokens          TokenSource
	processor       *batch.Processor
	firstSyncWindow time.Duration
	fallbackWindow  time.Duration
}

func NewEngine(accountRepo accountrepo.AccountRepository, tokens TokenSource, processor *batch.Processor, firstSyncWindow, fallbackWindow time.Duration) *Engine {
	return &Engine{
		accountRepo:     accountRepo,
		tokens:          tokens,
		processor:       processor,
		firstSyncWindow: firstSyncWindow,
		fallbackWindow:  fallbackWindow,
	}
}

func (e *Engine) loadAccount(userID, provider string) (*accountdomain.ProviderAccount, error) {
	account, err := e.accountRepo.FindByUserAndProvider(userID, provider)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	if !account.IsConnected {
		return nil, ErrNotConnected
	}
	return account, nil
}

// Sync runs one incremental pass: cursor delta when a cursor exists (falling
// back to a short date window if the vendor rejects it), first-sync window
// otherwise. The cursor only advances after storage succeeds, so a crashed
// run is re-fetched, deduplicated, and never lost.
func (e *Engine) Sync(ctx context.Context, adapter Adapter, userID string) (*Result, error) {
	provider := adapter.Provider()

	account, err := e.loadAccount(userID, provider)
	if err != nil {
		return nil, err
	}

	token, err := e.tokens.GetValidToken(ctx, account)
	if err != nil {
		return nil, err
	}

	var (
		ids       []string
		newCursor string
	)

	if account.Cursor != "" {
		changes, err := adapter.ListChanges(ctx, account, token, account.Cursor)
		if err != nil {
			// Cursor deltas are best effort. Expired or rejected cursors fall
			// back to a bounded re-scan; dedup absorbs the overlap.
			log.Printf("[SYNC] %s delta listing failed for user %s, falling back to %s window: %v",
				provider, userID, e.fallbackWindow, err)
			ids, err = adapter.ListWindow(ctx, account, token, time.Now().Add(-e.fallbackWindow), time.Time{})
			if err != nil {
				return nil, fmt.Errorf("%s fallback window listing failed: %w", provider, err)
			}
		} else {
			ids = changes.IDs
			newCursor = changes.NewCursor
		}
	} else {
		log.Printf("[SYNC] First %s sync for user %s, scanning last %s", provider, userID, e.firstSyncWindow)
		ids, err = adapter.ListWindow(ctx, account, token, time.Now().Add(-e.firstSyncWindow), time.Time{})
		if err != nil {
			return nil, fmt.Errorf("%s window listing failed: %w", provider, err)
		}
	}

	result, err := e.fetchAndStore(ctx, adapter, account, token, ids)
	if err != nil {
		return nil, err
	}

	if newCursor != "" {
		result.Cursor = newCursor
	}
	if err := e.accountRepo.UpdateCursor(account.ID, result.Cursor, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to advance %s cursor: %w", provider, err)
	}

	log.Printf("[SYNC] %s sync for user %s: %s (%d found, %d new, %d duplicates, %d failed)",
		provider, userID, result.Status, result.TotalFound, result.NewCount, result.DuplicatesSkipped, result.FailedItems)
	return result, nil
}

// SyncRange backfills an explicit [start, end) window. The cursor is left
// untouched: range syncs fill history and must not rewind or skip the
// incremental position.
func (e *Engine) SyncRange(ctx context.Context, adapter Adapter, userID string, start, end time.Time) (*Result, error) {
	provider := adapter.Provider()

	account, err := e.loadAccount(userID, provider)
	if err != nil {
		return nil, err
	}

	token, err := e.tokens.GetValidToken(ctx, account)
	if err != nil {
		return nil, err
	}

	ids, err := adapter.ListWindow(ctx, account, token, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s range listing failed: %w", provider, err)
	}

	result, err := e.fetchAndStore(ctx, adapter, account, token, ids)
	if err != nil {
		return nil, err
	}
	result.Cursor = ""

	if err := e.accountRepo.UpdateCursor(account.ID, "", time.Now()); err != nil {
		return nil, fmt.Errorf("failed to stamp %s sync time: %w", provider, err)
	}

	log.Printf("[SYNC] %s range sync for user %s [%s..%s]: %s (%d found, %d new)",
		provider, userID, start.Format(time.RFC3339), end.Format(time.RFC3339),
		result.Status, result.TotalFound, result.NewCount)
	return result, nil
}

// fetchAndStore runs the shared tail of every sync: dedup the candidate IDs,
// fetch the remainder in paced batches, filter already-stored records, and
// upsert what survives.
func (e *Engine) fetchAndStore(ctx context.Context, adapter Adapter, account *accountdomain.ProviderAccount, token string, ids []string) (*Result, error) {
	result := &Result{
		Provider:   adapter.Provider(),
		Status:     StatusSuccess,
		TotalFound: len(ids),
	}

	ids = dedupe(ids)
	if len(ids) == 0 {
		return result, nil
	}

	existing, err := adapter.ExistingIDs(account.UserID, ids)
	if err != nil {
		return nil, fmt.Errorf("existing-ID lookup failed: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, id := range existing {
		seen[id] = true
	}

	fresh := ids[:0]
	for _, id := range ids {
		if seen[id] {
			result.DuplicatesSkipped++
			continue
		}
		fresh = append(fresh, id)
	}

	records, failed, err := batch.Process(ctx, e.processor, fresh, adapter.BatchSize(), func(id string) (Record, error) {
		return adapter.FetchItem(ctx, account, token, id)
	})
	if err != nil {
		return nil, err
	}
	result.FailedItems = failed

	if len(records) > 0 {
		if err := adapter.StoreBatch(account.UserID, records); err != nil {
			return nil, fmt.Errorf("failed to store %s batch: %w", adapter.Provider(), err)
		}
		result.NewCount = len(records)

		// Newest-first listing order means the first record carries the most
		// recent marker.
		for _, record := range records {
			if cursor := adapter.CursorFromRecord(record); cursor != "" {
				result.Cursor = cursor
				break
			}
		}
	}

	if result.FailedItems > 0 {
		result.Status = StatusPartial
	}
	return result, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
