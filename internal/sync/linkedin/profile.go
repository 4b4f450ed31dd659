package linkedin

import (
	"context"
	"fmt"
	"log"

	"hushh-backend/pkg/vendorapi"
)

// UserInfo is the OpenID Connect identity returned after an OAuth exchange.
type UserInfo struct {
	Sub        string `json:"sub"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
	Email      string `json:"email"`
	Locale     any    `json:"locale"`
}

// FetchUserInfo resolves the member identity for a fresh access token.
func FetchUserInfo(ctx context.Context, client *vendorapi.Client, baseURL, token string) (*UserInfo, error) {
	var info UserInfo
	err := client.GetJSON(ctx, fmt.Sprintf("%s/v2/userinfo", baseURL), token, &info)
	if err != nil {
		return nil, fmt.Errorf("linkedin userinfo failed: %w", err)
	}
	return &info, nil
}

type meResponse struct {
	LocalizedHeadline string `json:"localizedHeadline"`
}

// FetchHeadline reads the member's headline. Requires scopes beyond the basic
// OpenID set, so a failure just logs and returns empty.
func FetchHeadline(ctx context.Context, client *vendorapi.Client, baseURL, token string) string {
	var me meResponse
	endpoint := fmt.Sprintf("%s/v2/me?projection=(localizedHeadline)", baseURL)
	if err := client.GetJSON(ctx, endpoint, token, &me, restliHeaderName, restliHeaderValue); err != nil {
		log.Printf("[LINKEDIN] Headline unavailable: %v", err)
		return ""
	}
	return me.LocalizedHeadline
}
