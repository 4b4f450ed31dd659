package usecase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	accountdomain "hushh-backend/internal/account/domain"
	"hushh-backend/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeAccountRepo struct {
	upserted            *accountdomain.ProviderAccount
	updatedAccessToken  string
	updatedRefreshToken string
	updatedExpiry       *time.Time
	updateCalls         int
}

func (r *fakeAccountRepo) Upsert(account *accountdomain.ProviderAccount) error {
	r.upserted = account
	return nil
}

func (r *fakeAccountRepo) FindByUserAndProvider(userID, provider string) (*accountdomain.ProviderAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) FindConnectedByEmail(email, provider string) (*accountdomain.ProviderAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) UpdateTokens(id, accessToken, refreshToken string, expiresAt *time.Time) error {
	r.updateCalls++
	r.updatedAccessToken = accessToken
	r.updatedRefreshToken = refreshToken
	r.updatedExpiry = expiresAt
	return nil
}

func (r *fakeAccountRepo) UpdateCursor(id, cursor string, syncedAt time.Time) error { return nil }

func (r *fakeAccountRepo) UpdateWatch(id, historyID string, expiration int64) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		GoogleClientID:     "client-id",
		GoogleClientSecret: "client-secret",
		TokenRefreshSkew:   5 * time.Minute,
	}
}

func newTestTokenUsecase(repo *fakeAccountRepo, tokenURL string) *tokenUsecase {
	u := NewTokenUsecase(repo, testConfig()).(*tokenUsecase)
	if tokenURL != "" {
		u.endpoints[accountdomain.ProviderGmail] = oauth2.Endpoint{
			AuthURL:  tokenURL + "/auth",
			TokenURL: tokenURL + "/token",
		}
	}
	return u
}

func futureExpiry(d time.Duration) *time.Time {
	t := time.Now().Add(d)
	return &t
}

func TestGetValidTokenReturnsStoredWhenFresh(t *testing.T) {
	repo := &fakeAccountRepo{}
	u := newTestTokenUsecase(repo, "")

	account := &accountdomain.ProviderAccount{
		Provider:       accountdomain.ProviderGmail,
		AccessToken:    "fresh-token",
		RefreshToken:   "refresh",
		TokenExpiresAt: futureExpiry(time.Hour),
	}

	token, err := u.GetValidToken(context.Background(), account)

	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, 0, repo.updateCalls)
}

func TestGetValidTokenRefreshesWithinSkew(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "old-refresh", r.Form.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"new-access","refresh_token":"new-refresh","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	repo := &fakeAccountRepo{}
	u := newTestTokenUsecase(repo, srv.URL)

	account := &accountdomain.ProviderAccount{
		ID:             "acct-1",
		Provider:       accountdomain.ProviderGmail,
		AccessToken:    "stale-token",
		RefreshToken:   "old-refresh",
		TokenExpiresAt: futureExpiry(time.Minute), // inside the 5m skew
	}

	token, err := u.GetValidToken(context.Background(), account)

	require.NoError(t, err)
	assert.Equal(t, "new-access", token)
	assert.Equal(t, 1, requests)

	// Refreshed pair is persisted and mirrored onto the account.
	assert.Equal(t, 1, repo.updateCalls)
	assert.Equal(t, "new-access", repo.updatedAccessToken)
	assert.Equal(t, "new-refresh", repo.updatedRefreshToken)
	require.NotNil(t, repo.updatedExpiry)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *repo.updatedExpiry, time.Minute)
	assert.Equal(t, "new-access", account.AccessToken)
	assert.Equal(t, "new-refresh", account.RefreshToken)
}

func TestGetValidTokenRejectionRequiresReconnect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	repo := &fakeAccountRepo{}
	u := newTestTokenUsecase(repo, srv.URL)

	account := &accountdomain.ProviderAccount{
		Provider:       accountdomain.ProviderGmail,
		AccessToken:    "stale",
		RefreshToken:   "revoked",
		TokenExpiresAt: futureExpiry(-time.Hour),
	}

	_, err := u.GetValidToken(context.Background(), account)

	assert.ErrorIs(t, err, ErrReconnectRequired)
	assert.Equal(t, 0, repo.updateCalls)
}

func TestGetValidTokenExpiredWithoutRefreshToken(t *testing.T) {
	u := newTestTokenUsecase(&fakeAccountRepo{}, "")

	account := &accountdomain.ProviderAccount{
		Provider:       accountdomain.ProviderLinkedIn,
		AccessToken:    "expired",
		TokenExpiresAt: futureExpiry(-time.Hour),
	}

	_, err := u.GetValidToken(context.Background(), account)
	assert.ErrorIs(t, err, ErrReconnectRequired)
}

func TestGetValidTokenNoExpiryTreatedAsFresh(t *testing.T) {
	u := newTestTokenUsecase(&fakeAccountRepo{}, "")

	account := &accountdomain.ProviderAccount{
		Provider:    accountdomain.ProviderGmail,
		AccessToken: "opaque",
	}

	token, err := u.GetValidToken(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, "opaque", token)
}

func TestParseState(t *testing.T) {
	userID, err := parseState("1756700000000-3f1c2d8e-aaaa-bbbb-cccc-000000000001")
	require.NoError(t, err)
	assert.Equal(t, "3f1c2d8e-aaaa-bbbb-cccc-000000000001", userID)

	_, err = parseState("no-delimiter-but-empty-")
	assert.NoError(t, err) // trailing content is still a user ID

	_, err = parseState("justonechunk")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = parseState("")
	assert.ErrorIs(t, err, ErrInvalidState)
}
