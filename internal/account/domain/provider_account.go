package domain

import (
	"time"

	"github.com/lib/pq"
)

// Provider identifiers as stored in provider_accounts.provider.
const (
	ProviderGmail    = "gmail"
	ProviderLinkedIn = "linkedin"
	ProviderMeet     = "google_meet"
	ProviderDrive    = "google_drive"
)

// ProviderAccount holds the live token pair and sync cursor for one
// (user, provider) connection. The unique index makes the OAuth exchange an
// upsert, so a reconnect can never leave two token pairs behind.
type ProviderAccount struct {
	ID             string         `json:"id" gorm:"primaryKey"`
	UserID         string         `json:"user_id" gorm:"index:idx_user_provider,unique;not null"`
	Provider       string         `json:"provider" gorm:"index:idx_user_provider,unique;not null"`
	Email          string         `json:"email" gorm:"index"`
	IsConnected    bool           `json:"is_connected"`
	AccessToken    string         `json:"-"`
	RefreshToken   string         `json:"-"`
	TokenExpiresAt *time.Time     `json:"token_expires_at"`
	Scopes         pq.StringArray `json:"scopes" gorm:"type:text[]"`

	// Cursor is the provider-specific progress marker: Gmail history ID or an
	// RFC3339 last-synced timestamp. Empty means no sync has completed yet.
	Cursor     string     `json:"cursor"`
	LastSyncAt *time.Time `json:"last_sync_at"`

	// Gmail watch bookkeeping (push notifications).
	WatchExpiration int64 `json:"watch_expiration,omitempty"`

	// ProviderUserID is the vendor-side identity (LinkedIn member ID, Google
	// account ID) captured during the OAuth exchange.
	ProviderUserID    string `json:"provider_user_id,omitempty"`
	DisplayName       string `json:"display_name,omitempty"`
	Headline          string `json:"headline,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`

	ConnectedAt time.Time `json:"connected_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ProviderAccount) TableName() string {
	return "provider_accounts"
}
