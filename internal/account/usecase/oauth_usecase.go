package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	accountdomain "hushh-backend/internal/account/domain"
	"hushh-backend/internal/account/repository"
	"hushh-backend/internal/sync/linkedin"
	"hushh-backend/pkg/config"
	"hushh-backend/pkg/vendorapi"

	"github.com/lib/pq"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// ErrInvalidState is returned when an OAuth callback state cannot be parsed.
var ErrInvalidState = errors.New("invalid OAuth state")

// GoogleUserInfo is the identity payload from the Google userinfo endpoint.
type GoogleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GmailConnectInput carries the three supported mobile connect shapes:
// a server auth code, a ready access token, or a request to reuse the
// already-connected Meet account's Google credentials.
type GmailConnectInput struct {
	UserID                   string `json:"userId"`
	Email                    string `json:"email"`
	ServerAuthCode           string `json:"serverAuthCode"`
	AccessToken              string `json:"accessToken"`
	UseGoogleMeetCredentials bool   `json:"useGoogleMeetCredentials"`
}

// PostConnectHook runs after an account is stored; wiring uses it to start
// the Gmail watch and kick off first syncs without import cycles.
type PostConnectHook func(ctx context.Context, userID string)

// OAuthUsecase owns the provider connect flows.
type OAuthUsecase interface {
	ConnectGmail(ctx context.Context, input GmailConnectInput) (*accountdomain.ProviderAccount, error)
	// ConnectURL builds the consent URL for a browser-based connect flow
	// (Meet, Drive). The state encodes the requesting user.
	ConnectURL(provider, userID string) (string, error)
	// HandleGoogleCallback finishes a browser connect flow for Meet or Drive.
	HandleGoogleCallback(ctx context.Context, provider, code, state string) (*accountdomain.ProviderAccount, error)
	// HandleLinkedInCallback finishes the LinkedIn redirect flow.
	HandleLinkedInCallback(ctx context.Context, code, state string) (*accountdomain.ProviderAccount, error)
	// SetPostConnectHook registers a hook invoked after provider connects.
	SetPostConnectHook(provider string, hook PostConnectHook)
	Status(userID, provider string) (*accountdomain.ProviderAccount, error)
	Disconnect(userID, provider string) error
}

type oauthUsecase struct {
	accounts repository.AccountRepository
	tokens   TokenUsecase
	client   *vendorapi.Client
	cfg      *config.Config
	hooks    map[string]PostConnectHook

	linkedInBaseURL string
}

func NewOAuthUsecase(accounts repository.AccountRepository, tokens TokenUsecase, client *vendorapi.Client, cfg *config.Config) OAuthUsecase {
	return &oauthUsecase{
		accounts:        accounts,
		tokens:          tokens,
		client:          client,
		cfg:             cfg,
		hooks:           make(map[string]PostConnectHook),
		linkedInBaseURL: linkedin.DefaultBaseURL,
	}
}

func (u *oauthUsecase) SetPostConnectHook(provider string, hook PostConnectHook) {
	u.hooks[provider] = hook
}

func (u *oauthUsecase) runHook(ctx context.Context, provider, userID string) {
	if hook, ok := u.hooks[provider]; ok {
		hook(ctx, userID)
	}
}

func (u *oauthUsecase) fetchGoogleUserInfo(ctx context.Context, accessToken string) (*GoogleUserInfo, error) {
	var info GoogleUserInfo
	if err := u.client.GetJSON(ctx, googleUserInfoURL, accessToken, &info); err != nil {
		return nil, fmt.Errorf("google userinfo failed: %w", err)
	}
	return &info, nil
}

// ConnectGmail stores a Gmail connection from any of the mobile flows and
// fires the post-connect hook (watch registration, first sync).
func (u *oauthUsecase) ConnectGmail(ctx context.Context, input GmailConnectInput) (*accountdomain.ProviderAccount, error) {
	if input.UserID == "" {
		return nil, errors.New("userId is required")
	}
	if !input.UseGoogleMeetCredentials && input.ServerAuthCode == "" && input.AccessToken == "" {
		return nil, errors.New("either serverAuthCode, accessToken, or useGoogleMeetCredentials is required")
	}

	account := &accountdomain.ProviderAccount{
		UserID:      input.UserID,
		Provider:    accountdomain.ProviderGmail,
		Email:       input.Email,
		IsConnected: true,
		Scopes:      pq.StringArray(GmailScopes),
	}

	switch {
	case input.UseGoogleMeetCredentials:
		meetAccount, err := u.accounts.FindByUserAndProvider(input.UserID, accountdomain.ProviderMeet)
		if err != nil {
			return nil, err
		}
		if meetAccount == nil || !meetAccount.IsConnected {
			return nil, errors.New("no connected Google Meet account to borrow credentials from")
		}
		// The Meet grant already covers the user's Google identity; reuse the
		// token pair so the app avoids a second consent screen.
		token, err := u.tokens.GetValidToken(ctx, meetAccount)
		if err != nil {
			return nil, err
		}
		account.AccessToken = token
		account.RefreshToken = meetAccount.RefreshToken
		account.TokenExpiresAt = meetAccount.TokenExpiresAt
		account.Email = meetAccount.Email
		account.ProviderUserID = meetAccount.ProviderUserID
		account.DisplayName = meetAccount.DisplayName
		account.ProfilePictureURL = meetAccount.ProfilePictureURL

	case input.ServerAuthCode != "":
		// Mobile flow: no redirect_uri, the code was minted on-device.
		token, err := u.tokens.ExchangeCode(ctx, accountdomain.ProviderGmail, input.ServerAuthCode, "")
		if err != nil {
			return nil, err
		}
		account.AccessToken = token.AccessToken
		account.RefreshToken = token.RefreshToken
		if !token.Expiry.IsZero() {
			expiry := token.Expiry
			account.TokenExpiresAt = &expiry
		}

	default:
		account.AccessToken = input.AccessToken
	}

	if info, err := u.fetchGoogleUserInfo(ctx, account.AccessToken); err != nil {
		log.Printf("[OAUTH] Google userinfo unavailable for user %s: %v", input.UserID, err)
	} else {
		account.Email = info.Email
		account.ProviderUserID = info.ID
		account.DisplayName = info.Name
		account.ProfilePictureURL = info.Picture
	}

	if err := u.accounts.Upsert(account); err != nil {
		return nil, fmt.Errorf("failed to store gmail account: %w", err)
	}

	log.Printf("[OAUTH] Gmail connected for user %s (%s)", input.UserID, account.Email)
	u.runHook(ctx, accountdomain.ProviderGmail, input.UserID)
	return account, nil
}

func (u *oauthUsecase) redirectURI(provider string) string {
	if provider == accountdomain.ProviderDrive && u.cfg.DriveRedirectURI != "" {
		return u.cfg.DriveRedirectURI
	}
	return u.cfg.GoogleRedirectURI
}

func (u *oauthUsecase) ConnectURL(provider, userID string) (string, error) {
	var scopes []string
	switch provider {
	case accountdomain.ProviderMeet:
		scopes = MeetScopes
	case accountdomain.ProviderDrive:
		scopes = DriveScopes
	case accountdomain.ProviderGmail:
		scopes = GmailScopes
	default:
		return "", fmt.Errorf("unsupported provider: %s", provider)
	}

	state := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), userID)
	return u.tokens.AuthCodeURL(provider, u.redirectURI(provider), state, scopes)
}

// parseState splits "timestamp-userId". User IDs are UUIDs, so only the
// first dash delimits.
func parseState(state string) (string, error) {
	idx := strings.Index(state, "-")
	if idx <= 0 || idx == len(state)-1 {
		return "", fmt.Errorf("%w: %q", ErrInvalidState, state)
	}
	return state[idx+1:], nil
}

func (u *oauthUsecase) HandleGoogleCallback(ctx context.Context, provider, code, state string) (*accountdomain.ProviderAccount, error) {
	if provider != accountdomain.ProviderMeet && provider != accountdomain.ProviderDrive {
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}

	userID, err := parseState(state)
	if err != nil {
		return nil, err
	}

	token, err := u.tokens.ExchangeCode(ctx, provider, code, u.redirectURI(provider))
	if err != nil {
		return nil, err
	}

	scopes := MeetScopes
	if provider == accountdomain.ProviderDrive {
		scopes = DriveScopes
	}

	account := &accountdomain.ProviderAccount{
		UserID:       userID,
		Provider:     provider,
		IsConnected:  true,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Scopes:       pq.StringArray(scopes),
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		account.TokenExpiresAt = &expiry
	}

	if info, err := u.fetchGoogleUserInfo(ctx, token.AccessToken); err != nil {
		log.Printf("[OAUTH] Google userinfo unavailable for user %s: %v", userID, err)
	} else {
		account.Email = info.Email
		account.ProviderUserID = info.ID
		account.DisplayName = info.Name
		account.ProfilePictureURL = info.Picture
	}

	if err := u.accounts.Upsert(account); err != nil {
		return nil, fmt.Errorf("failed to store %s account: %w", provider, err)
	}

	log.Printf("[OAUTH] %s connected for user %s (%s)", provider, userID, account.Email)
	u.runHook(ctx, provider, userID)
	return account, nil
}

func (u *oauthUsecase) HandleLinkedInCallback(ctx context.Context, code, state string) (*accountdomain.ProviderAccount, error) {
	userID, err := parseState(state)
	if err != nil {
		return nil, err
	}

	token, err := u.tokens.ExchangeCode(ctx, accountdomain.ProviderLinkedIn, code, u.cfg.LinkedInRedirectURI)
	if err != nil {
		return nil, err
	}

	account := &accountdomain.ProviderAccount{
		UserID:      userID,
		Provider:    accountdomain.ProviderLinkedIn,
		IsConnected: true,
		AccessToken: token.AccessToken,
		Scopes:      pq.StringArray{"openid", "profile", "email", "w_member_social"},
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		account.TokenExpiresAt = &expiry
	}

	info, err := linkedin.FetchUserInfo(ctx, u.client, u.linkedInBaseURL, token.AccessToken)
	if err != nil {
		return nil, err
	}
	account.Email = info.Email
	account.ProviderUserID = info.Sub
	account.DisplayName = info.Name
	account.ProfilePictureURL = info.Picture
	// Headline needs a broader scope than the OpenID set; empty when denied.
	account.Headline = linkedin.FetchHeadline(ctx, u.client, u.linkedInBaseURL, token.AccessToken)

	if err := u.accounts.Upsert(account); err != nil {
		return nil, fmt.Errorf("failed to store linkedin account: %w", err)
	}

	log.Printf("[OAUTH] LinkedIn connected for user %s (%s)", userID, account.Email)
	u.runHook(ctx, accountdomain.ProviderLinkedIn, userID)
	return account, nil
}

func (u *oauthUsecase) Status(userID, provider string) (*accountdomain.ProviderAccount, error) {
	return u.accounts.FindByUserAndProvider(userID, provider)
}

func (u *oauthUsecase) Disconnect(userID, provider string) error {
	account, err := u.accounts.FindByUserAndProvider(userID, provider)
	if err != nil {
		return err
	}
	if account == nil {
		return nil
	}
	account.IsConnected = false
	account.AccessToken = ""
	account.RefreshToken = ""
	account.TokenExpiresAt = nil
	return u.accounts.Upsert(account)
}
