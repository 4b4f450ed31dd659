package repository

import (
	"time"

	accountdomain "hushh-backend/internal/account/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRepository defines persistence for provider account connections
type AccountRepository interface {
	Upsert(account *accountdomain.ProviderAccount) error
	FindByUserAndProvider(userID, provider string) (*accountdomain.ProviderAccount, error)
	FindConnectedByEmail(email, provider string) (*accountdomain.ProviderAccount, error)
	UpdateTokens(id, accessToken, refreshToken string, expiresAt *time.Time) error
	UpdateCursor(id, cursor string, syncedAt time.Time) error
	UpdateWatch(id, historyID string, expiration int64) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{
		db: db,
	}
}

// Upsert inserts or replaces the account for its (user, provider) pair.
// The conflict target is the unique index, so reconnecting always overwrites
// the previous token pair instead of duplicating the row.
func (r *accountRepository) Upsert(account *accountdomain.ProviderAccount) error {
	now := time.Now()
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.ConnectedAt.IsZero() {
		account.ConnectedAt = now
	}
	account.UpdatedAt = now

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"email", "is_connected", "access_token", "refresh_token",
			"token_expires_at", "scopes", "provider_user_id", "display_name",
			"headline", "profile_picture_url", "connected_at", "updated_at",
		}),
	}).Create(account).Error
}

func (r *accountRepository) FindByUserAndProvider(userID, provider string) (*accountdomain.ProviderAccount, error) {
	var account accountdomain.ProviderAccount
	err := r.db.Where("user_id = ? AND provider = ?", userID, provider).First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindConnectedByEmail(email, provider string) (*accountdomain.ProviderAccount, error) {
	var account accountdomain.ProviderAccount
	err := r.db.Where("email = ? AND provider = ? AND is_connected = ?", email, provider, true).First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) UpdateTokens(id, accessToken, refreshToken string, expiresAt *time.Time) error {
	updates := map[string]interface{}{
		"access_token":     accessToken,
		"token_expires_at": expiresAt,
		"updated_at":       time.Now(),
	}
	// Providers may omit the refresh token on refresh responses; keep the old one.
	if refreshToken != "" {
		updates["refresh_token"] = refreshToken
	}
	return r.db.Model(&accountdomain.ProviderAccount{}).Where("id = ?", id).Updates(updates).Error
}

func (r *accountRepository) UpdateCursor(id, cursor string, syncedAt time.Time) error {
	updates := map[string]interface{}{
		"last_sync_at": syncedAt,
		"updated_at":   time.Now(),
	}
	if cursor != "" {
		updates["cursor"] = cursor
	}
	return r.db.Model(&accountdomain.ProviderAccount{}).Where("id = ?", id).Updates(updates).Error
}

func (r *accountRepository) UpdateWatch(id, historyID string, expiration int64) error {
	return r.db.Model(&accountdomain.ProviderAccount{}).Where("id = ?", id).Updates(map[string]interface{}{
		"cursor":           historyID,
		"watch_expiration": expiration,
		"updated_at":       time.Now(),
	}).Error
}
