package gmail

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	accountdomain "hushh-backend/internal/account/domain"
	syncdomain "hushh-backend/internal/sync/domain"
	"hushh-backend/internal/sync/engine"
	syncrepo "hushh-backend/internal/sync/repository"
	"hushh-backend/pkg/vendorapi"

	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// fetchBatchSize keeps per-message fetches well under the Gmail per-user
// rate quota when combined with the processor delays.
const fetchBatchSize = 3

// listPageSize bounds a single windowed listing call.
const listPageSize = 100

// Adapter implements the provider half of Gmail sync: history deltas for
// incremental runs, query-by-date listings for windows, per-message fetch
// plus normalization.
type Adapter struct {
	emails syncrepo.EmailRepository
	client *vendorapi.Client
	// serviceOpts lets tests point the Gmail client at a local server.
	serviceOpts []option.ClientOption
}

func NewAdapter(emails syncrepo.EmailRepository, client *vendorapi.Client, opts ...option.ClientOption) *Adapter {
	return &Adapter{
		emails:      emails,
		client:      client,
		serviceOpts: opts,
	}
}

func (a *Adapter) Provider() string {
	return accountdomain.ProviderGmail
}

func (a *Adapter) BatchSize() int {
	return fetchBatchSize
}

func (a *Adapter) service(ctx context.Context, token string) (*gmailapi.Service, error) {
	opts := append([]option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})),
	}, a.serviceOpts...)
	return gmailapi.NewService(ctx, opts...)
}

// wrapGoogleErr maps googleapi errors onto the shared API error type so the
// rate-limit retry policy applies uniformly across raw and SDK clients.
func wrapGoogleErr(err error) error {
	if err == nil {
		return nil
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return &vendorapi.APIError{Status: gErr.Code, Body: gErr.Message}
	}
	return err
}

// ListChanges lists message IDs added since the history-ID cursor.
func (a *Adapter) ListChanges(ctx context.Context, account *accountdomain.ProviderAccount, token, cursor string) (*engine.ChangeSet, error) {
	startHistoryID, err := strconv.ParseUint(cursor, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a history ID", engine.ErrCursorInvalid, cursor)
	}

	srv, err := a.service(ctx, token)
	if err != nil {
		return nil, err
	}

	changes := &engine.ChangeSet{}

	err = a.client.Retry(ctx, func() error {
		// Each attempt restarts pagination from the first page, so every
		// partial result from a failed attempt must be discarded with it.
		changes.IDs = changes.IDs[:0]
		changes.NewCursor = ""
		seen := make(map[string]bool)
		pageErr := srv.Users.History.List("me").
			StartHistoryId(startHistoryID).
			HistoryTypes("messageAdded").
			Context(ctx).
			Pages(ctx, func(resp *gmailapi.ListHistoryResponse) error {
				if resp.HistoryId > 0 {
					changes.NewCursor = strconv.FormatUint(resp.HistoryId, 10)
				}
				for _, history := range resp.History {
					for _, added := range history.MessagesAdded {
						if added.Message == nil || seen[added.Message.Id] {
							continue
						}
						seen[added.Message.Id] = true
						changes.IDs = append(changes.IDs, added.Message.Id)
					}
				}
				return nil
			})
		return wrapGoogleErr(pageErr)
	})
	if err != nil {
		var apiErr *vendorapi.APIError
		if errors.As(err, &apiErr) && (apiErr.Status == 404 || apiErr.Status == 400) {
			// Gmail expires history IDs after roughly a week.
			return nil, fmt.Errorf("%w: %v", engine.ErrCursorInvalid, err)
		}
		return nil, err
	}
	return changes, nil
}

// ListWindow lists message IDs received in [since, until) using a date query.
func (a *Adapter) ListWindow(ctx context.Context, account *accountdomain.ProviderAccount, token string, since, until time.Time) ([]string, error) {
	srv, err := a.service(ctx, token)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("after:%d", since.Unix())
	if !until.IsZero() {
		query = fmt.Sprintf("%s before:%d", query, until.Unix())
	}

	var ids []string
	pageToken := ""
	for {
		var resp *gmailapi.ListMessagesResponse
		err := a.client.Retry(ctx, func() error {
			call := srv.Users.Messages.List("me").Q(query).MaxResults(listPageSize).Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			var callErr error
			resp, callErr = call.Do()
			return wrapGoogleErr(callErr)
		})
		if err != nil {
			return nil, err
		}

		for _, message := range resp.Messages {
			ids = append(ids, message.Id)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return ids, nil
}

// FetchItem fetches one full message and normalizes it.
func (a *Adapter) FetchItem(ctx context.Context, account *accountdomain.ProviderAccount, token, id string) (engine.Record, error) {
	srv, err := a.service(ctx, token)
	if err != nil {
		return nil, err
	}

	var msg *gmailapi.Message
	err = a.client.Retry(ctx, func() error {
		var callErr error
		msg, callErr = srv.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
		return wrapGoogleErr(callErr)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message %s: %w", id, err)
	}

	return Normalize(msg, account.UserID), nil
}

func (a *Adapter) ExistingIDs(userID string, ids []string) ([]string, error) {
	return a.emails.ExistingMessageIDs(userID, ids)
}

func (a *Adapter) StoreBatch(userID string, records []engine.Record) error {
	emails := make([]*syncdomain.EmailMessage, 0, len(records))
	for _, record := range records {
		email, ok := record.(*syncdomain.EmailMessage)
		if !ok {
			return fmt.Errorf("unexpected record type %T", record)
		}
		emails = append(emails, email)
	}
	return a.emails.UpsertBatch(emails)
}

func (a *Adapter) CursorFromRecord(record engine.Record) string {
	if email, ok := record.(*syncdomain.EmailMessage); ok {
		return email.HistoryID
	}
	return ""
}
