package usecase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	accountdomain "hushh-backend/internal/account/domain"
	"hushh-backend/pkg/vendorapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type stubTokens struct {
	exchanged *oauth2.Token
}

func (s *stubTokens) GetValidToken(ctx context.Context, account *accountdomain.ProviderAccount) (string, error) {
	return account.AccessToken, nil
}

func (s *stubTokens) ExchangeCode(ctx context.Context, provider, code, redirectURI string) (*oauth2.Token, error) {
	return s.exchanged, nil
}

func (s *stubTokens) AuthCodeURL(provider, redirectURI, state string, scopes []string) (string, error) {
	return "https://example.com/auth?state=" + state, nil
}

func TestHandleLinkedInCallbackStoresIdentityAndHeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v2/userinfo":
			w.Write([]byte(`{"sub":"member-1","name":"Jane Doe","email":"jane@example.com","picture":"https://cdn.example.com/p.jpg"}`))
		case "/v2/me":
			assert.Equal(t, "2.0.0", r.Header.Get("X-Restli-Protocol-Version"))
			w.Write([]byte(`{"localizedHeadline":"Platform Engineer"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	repo := &fakeAccountRepo{}
	expiry := time.Now().Add(time.Hour)
	tokens := &stubTokens{exchanged: &oauth2.Token{AccessToken: "li-token", Expiry: expiry}}
	u := NewOAuthUsecase(repo, tokens, vendorapi.NewClient(), testConfig()).(*oauthUsecase)
	u.linkedInBaseURL = srv.URL

	account, err := u.HandleLinkedInCallback(context.Background(), "auth-code", "1756700000000-user-1")

	require.NoError(t, err)
	require.NotNil(t, repo.upserted)
	assert.Equal(t, "user-1", account.UserID)
	assert.Equal(t, accountdomain.ProviderLinkedIn, account.Provider)
	assert.Equal(t, "member-1", account.ProviderUserID)
	assert.Equal(t, "Jane Doe", account.DisplayName)
	assert.Equal(t, "jane@example.com", account.Email)
	assert.Equal(t, "Platform Engineer", account.Headline)
	assert.Equal(t, "li-token", account.AccessToken)
	assert.True(t, account.IsConnected)
}

func TestHandleLinkedInCallbackHeadlineIsBestEffort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v2/userinfo":
			w.Write([]byte(`{"sub":"member-1","name":"Jane Doe","email":"jane@example.com"}`))
		case "/v2/me":
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message":"insufficient permissions"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	repo := &fakeAccountRepo{}
	tokens := &stubTokens{exchanged: &oauth2.Token{AccessToken: "li-token"}}
	u := NewOAuthUsecase(repo, tokens, vendorapi.NewClient(), testConfig()).(*oauthUsecase)
	u.linkedInBaseURL = srv.URL

	account, err := u.HandleLinkedInCallback(context.Background(), "auth-code", "1756700000000-user-1")

	require.NoError(t, err)
	assert.Empty(t, account.Headline)
	assert.Equal(t, "member-1", account.ProviderUserID)
}

func TestHandleLinkedInCallbackRejectsBadState(t *testing.T) {
	u := NewOAuthUsecase(&fakeAccountRepo{}, &stubTokens{}, vendorapi.NewClient(), testConfig())

	_, err := u.HandleLinkedInCallback(context.Background(), "auth-code", "nostate")
	assert.ErrorIs(t, err, ErrInvalidState)
}
