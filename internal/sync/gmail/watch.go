package gmail

import (
	"context"
	"fmt"
	"log"
	"strconv"

	accountdomain "hushh-backend/internal/account/domain"
	accountrepo "hushh-backend/internal/account/repository"
	"hushh-backend/pkg/vendorapi"

	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// WatchManager registers Gmail push notifications to a Pub/Sub topic and
// records the returned history baseline on the account.
type WatchManager struct {
	accounts    accountrepo.AccountRepository
	client      *vendorapi.Client
	topicName   string // fully qualified: projects/{project}/topics/{topic}
	serviceOpts []option.ClientOption
}

func NewWatchManager(accounts accountrepo.AccountRepository, client *vendorapi.Client, projectID, topic string, opts ...option.ClientOption) *WatchManager {
	return &WatchManager{
		accounts:    accounts,
		client:      client,
		topicName:   fmt.Sprintf("projects/%s/topics/%s", projectID, topic),
		serviceOpts: opts,
	}
}

// Setup starts (or renews) the inbox watch. Gmail expires watches after about
// seven days, so this runs on every connect and on renewal sweeps.
func (w *WatchManager) Setup(ctx context.Context, account *accountdomain.ProviderAccount, token string) error {
	opts := append([]option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})),
	}, w.serviceOpts...)
	srv, err := gmailapi.NewService(ctx, opts...)
	if err != nil {
		return err
	}

	var resp *gmailapi.WatchResponse
	err = w.client.Retry(ctx, func() error {
		var callErr error
		resp, callErr = srv.Users.Watch("me", &gmailapi.WatchRequest{
			TopicName:         w.topicName,
			LabelIds:          []string{"INBOX"},
			LabelFilterAction: "include",
		}).Context(ctx).Do()
		return wrapGoogleErr(callErr)
	})
	if err != nil {
		return fmt.Errorf("gmail watch registration failed: %w", err)
	}

	historyID := strconv.FormatUint(resp.HistoryId, 10)
	if err := w.accounts.UpdateWatch(account.ID, historyID, resp.Expiration); err != nil {
		return fmt.Errorf("failed to store watch state: %w", err)
	}

	log.Printf("[GMAIL] Watch registered for %s (history %s, expires %d)", account.Email, historyID, resp.Expiration)
	return nil
}

// Stop tears down the active watch. Used on disconnect.
func (w *WatchManager) Stop(ctx context.Context, token string) error {
	opts := append([]option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})),
	}, w.serviceOpts...)
	srv, err := gmailapi.NewService(ctx, opts...)
	if err != nil {
		return err
	}
	return wrapGoogleErr(srv.Users.Stop("me").Context(ctx).Do())
}
