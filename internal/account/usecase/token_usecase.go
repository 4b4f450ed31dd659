package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	accountdomain "hushh-backend/internal/account/domain"
	"hushh-backend/internal/account/repository"
	"hushh-backend/pkg/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/linkedin"
)

// ErrReconnectRequired signals that the stored refresh token was rejected by
// the provider. The caller must surface a reconnect state, never retry.
var ErrReconnectRequired = errors.New("provider rejected refresh token, reconnect required")

// Gmail scopes requested during the Google OAuth exchange.
var GmailScopes = []string{
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

// MeetScopes cover Meet conference records plus read-only Calendar access.
var MeetScopes = []string{
	"https://www.googleapis.com/auth/meetings.space.readonly",
	"https://www.googleapis.com/auth/meetings.space.created",
	"https://www.googleapis.com/auth/calendar.readonly",
	"https://www.googleapis.com/auth/calendar.events.readonly",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

var DriveScopes = []string{
	"https://www.googleapis.com/auth/drive.metadata.readonly",
	"https://www.googleapis.com/auth/drive.readonly",
}

// TokenUsecase owns OAuth token lifecycle for provider accounts: code
// exchange on connect, refresh-on-expiry on every use.
type TokenUsecase interface {
	// GetValidToken returns a usable access token for the account, refreshing
	// and persisting it first when it expires within the configured skew.
	GetValidToken(ctx context.Context, account *accountdomain.ProviderAccount) (string, error)
	// ExchangeCode swaps an authorization code for tokens. redirectURI may be
	// empty for mobile flows, in which case the parameter is omitted entirely.
	ExchangeCode(ctx context.Context, provider, code, redirectURI string) (*oauth2.Token, error)
	// AuthCodeURL builds the provider consent URL for a connect flow.
	AuthCodeURL(provider, redirectURI, state string, scopes []string) (string, error)
}

type tokenUsecase struct {
	accountRepo repository.AccountRepository
	cfg         *config.Config
	skew        time.Duration
	// endpoints is overridable in tests to point at a local token server.
	endpoints map[string]oauth2.Endpoint
}

func NewTokenUsecase(accountRepo repository.AccountRepository, cfg *config.Config) TokenUsecase {
	return &tokenUsecase{
		accountRepo: accountRepo,
		cfg:         cfg,
		skew:        cfg.TokenRefreshSkew,
		endpoints: map[string]oauth2.Endpoint{
			accountdomain.ProviderGmail:    google.Endpoint,
			accountdomain.ProviderMeet:     google.Endpoint,
			accountdomain.ProviderDrive:    google.Endpoint,
			accountdomain.ProviderLinkedIn: linkedin.Endpoint,
		},
	}
}

func (u *tokenUsecase) oauthConfig(provider, redirectURI string, scopes []string) (*oauth2.Config, error) {
	endpoint, ok := u.endpoints[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}

	clientID := u.cfg.GoogleClientID
	clientSecret := u.cfg.GoogleClientSecret
	if provider == accountdomain.ProviderLinkedIn {
		clientID = u.cfg.LinkedInClientID
		clientSecret = u.cfg.LinkedInClientSecret
	}
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("OAuth client credentials for %s are not configured", provider)
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Endpoint:     endpoint,
		Scopes:       scopes,
	}, nil
}

func (u *tokenUsecase) GetValidToken(ctx context.Context, account *accountdomain.ProviderAccount) (string, error) {
	if account.AccessToken == "" && account.RefreshToken == "" {
		return "", ErrReconnectRequired
	}

	if account.TokenExpiresAt == nil || time.Now().Add(u.skew).Before(*account.TokenExpiresAt) {
		return account.AccessToken, nil
	}

	// Expired (or expiring within the skew). LinkedIn tokens carry no refresh
	// token; without one the caller has to reconnect.
	if account.RefreshToken == "" {
		return "", ErrReconnectRequired
	}

	conf, err := u.oauthConfig(account.Provider, "", nil)
	if err != nil {
		return "", err
	}

	log.Printf("[TOKEN] Refreshing %s token for user %s", account.Provider, account.UserID)

	src := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: account.RefreshToken})
	token, err := src.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReconnectRequired, err)
	}

	expiry := token.Expiry
	if err := u.accountRepo.UpdateTokens(account.ID, token.AccessToken, token.RefreshToken, &expiry); err != nil {
		return "", fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	account.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		account.RefreshToken = token.RefreshToken
	}
	account.TokenExpiresAt = &expiry

	log.Printf("[TOKEN] Refreshed %s token for user %s (expires %s)", account.Provider, account.UserID, expiry.Format(time.RFC3339))
	return token.AccessToken, nil
}

func (u *tokenUsecase) ExchangeCode(ctx context.Context, provider, code, redirectURI string) (*oauth2.Token, error) {
	conf, err := u.oauthConfig(provider, redirectURI, nil)
	if err != nil {
		return nil, err
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	return token, nil
}

func (u *tokenUsecase) AuthCodeURL(provider, redirectURI, state string, scopes []string) (string, error) {
	conf, err := u.oauthConfig(provider, redirectURI, scopes)
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}
