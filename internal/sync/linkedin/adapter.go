package linkedin

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	accountdomain "hushh-backend/internal/account/domain"
	syncdomain "hushh-backend/internal/sync/domain"
	"hushh-backend/internal/sync/engine"
	syncrepo "hushh-backend/internal/sync/repository"
	"hushh-backend/pkg/vendorapi"
)

// DefaultBaseURL is the LinkedIn API host. Overridable for tests.
const DefaultBaseURL = "https://api.linkedin.com"

// restliHeader is required on all versioned REST endpoints.
const (
	restliHeaderName  = "X-Restli-Protocol-Version"
	restliHeaderValue = "2.0.0"
	versionHeaderName = "LinkedIn-Version"
	apiVersion        = "202405"
)

const fetchBatchSize = 3

// Adapter implements LinkedIn post sync over the raw REST API. LinkedIn has
// no history API, so the cursor is the RFC3339 timestamp of the newest post
// stored; deltas are a filtered author listing.
type Adapter struct {
	posts   syncrepo.PostRepository
	client  *vendorapi.Client
	baseURL string
}

func NewAdapter(posts syncrepo.PostRepository, client *vendorapi.Client) *Adapter {
	return &Adapter{
		posts:   posts,
		client:  client,
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL points the adapter at a different API host. Test hook.
func (a *Adapter) WithBaseURL(base string) *Adapter {
	a.baseURL = base
	return a
}

func (a *Adapter) Provider() string {
	return accountdomain.ProviderLinkedIn
}

func (a *Adapter) BatchSize() int {
	return fetchBatchSize
}

type postListResponse struct {
	Elements []postPayload `json:"elements"`
}

// listAuthoredPosts fetches the member's recent posts, newest first.
func (a *Adapter) listAuthoredPosts(ctx context.Context, account *accountdomain.ProviderAccount, token string, count int) ([]postPayload, error) {
	if account.ProviderUserID == "" {
		return nil, fmt.Errorf("linkedin account for user %s has no member ID", account.UserID)
	}

	author := fmt.Sprintf("urn:li:person:%s", account.ProviderUserID)
	endpoint := fmt.Sprintf("%s/rest/posts?author=%s&q=author&count=%d&sortBy=LAST_MODIFIED",
		a.baseURL, url.QueryEscape(author), count)

	var resp postListResponse
	err := a.client.GetJSON(ctx, endpoint, token, &resp,
		restliHeaderName, restliHeaderValue,
		versionHeaderName, apiVersion,
	)
	if err != nil {
		return nil, err
	}
	return resp.Elements, nil
}

// ListChanges returns IDs of posts created strictly after the cursor time.
func (a *Adapter) ListChanges(ctx context.Context, account *accountdomain.ProviderAccount, token, cursor string) (*engine.ChangeSet, error) {
	since, err := time.Parse(time.RFC3339, cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a timestamp", engine.ErrCursorInvalid, cursor)
	}

	posts, err := a.listAuthoredPosts(ctx, account, token, 50)
	if err != nil {
		return nil, err
	}

	changes := &engine.ChangeSet{}
	for _, post := range posts {
		if post.createdTime().After(since) {
			changes.IDs = append(changes.IDs, post.ID)
		}
	}
	return changes, nil
}

// ListWindow returns IDs of posts created in [since, until).
func (a *Adapter) ListWindow(ctx context.Context, account *accountdomain.ProviderAccount, token string, since, until time.Time) ([]string, error) {
	posts, err := a.listAuthoredPosts(ctx, account, token, 100)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, post := range posts {
		created := post.createdTime()
		if created.Before(since) {
			continue
		}
		if !until.IsZero() && !created.Before(until) {
			continue
		}
		ids = append(ids, post.ID)
	}
	return ids, nil
}

// FetchItem fetches one post by URN and enriches it with engagement counts.
// Social-action enrichment is best effort: a failure logs and leaves zeros.
func (a *Adapter) FetchItem(ctx context.Context, account *accountdomain.ProviderAccount, token, id string) (engine.Record, error) {
	endpoint := fmt.Sprintf("%s/rest/posts/%s", a.baseURL, url.PathEscape(id))

	var payload postPayload
	err := a.client.GetJSON(ctx, endpoint, token, &payload,
		restliHeaderName, restliHeaderValue,
		versionHeaderName, apiVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post %s: %w", id, err)
	}

	post := Normalize(&payload, account.UserID, account.DisplayName)

	var social socialActionsResponse
	socialEndpoint := fmt.Sprintf("%s/v2/socialActions/%s", a.baseURL, url.PathEscape(id))
	if err := a.client.GetJSON(ctx, socialEndpoint, token, &social); err != nil {
		log.Printf("[LINKEDIN] Social counts unavailable for %s: %v", id, err)
	} else {
		post.LikeCount = social.LikesSummary.TotalLikes
		post.CommentCount = social.CommentsSummary.AggregatedTotalComments
	}

	return post, nil
}

func (a *Adapter) ExistingIDs(userID string, ids []string) ([]string, error) {
	return a.posts.ExistingPostIDs(userID, ids)
}

func (a *Adapter) StoreBatch(userID string, records []engine.Record) error {
	posts := make([]*syncdomain.LinkedInPost, 0, len(records))
	for _, record := range records {
		post, ok := record.(*syncdomain.LinkedInPost)
		if !ok {
			return fmt.Errorf("unexpected record type %T", record)
		}
		posts = append(posts, post)
	}
	return a.posts.UpsertBatch(posts)
}

func (a *Adapter) CursorFromRecord(record engine.Record) string {
	if post, ok := record.(*syncdomain.LinkedInPost); ok && !post.PostedAt.IsZero() {
		return post.PostedAt.UTC().Format(time.RFC3339)
	}
	return ""
}

type socialActionsResponse struct {
	LikesSummary struct {
		TotalLikes int `json:"totalLikes"`
	} `json:"likesSummary"`
	CommentsSummary struct {
		AggregatedTotalComments int `json:"aggregatedTotalComments"`
	} `json:"commentsSummary"`
}
