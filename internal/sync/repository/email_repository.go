package repository

import (
	"time"

	syncdomain "hushh-backend/internal/sync/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertChunkSize bounds the number of rows per INSERT so parameter limits
// are never hit on large syncs.
const upsertChunkSize = 100

// EmailRepository defines persistence for synced Gmail messages
type EmailRepository interface {
	UpsertBatch(emails []*syncdomain.EmailMessage) error
	ExistingMessageIDs(userID string, messageIDs []string) ([]string, error)
}

type emailRepository struct {
	db *gorm.DB
}

func NewEmailRepository(db *gorm.DB) EmailRepository {
	return &emailRepository{
		db: db,
	}
}

// UpsertBatch writes messages in chunks, updating mutable fields on the
// (user_id, message_id) conflict so repeated syncs refresh flags and labels.
func (r *emailRepository) UpsertBatch(emails []*syncdomain.EmailMessage) error {
	if len(emails) == 0 {
		return nil
	}

	now := time.Now()
	for _, email := range emails {
		if email.ID == "" {
			email.ID = uuid.New().String()
		}
		email.UpdatedAt = now
	}

	for i := 0; i < len(emails); i += upsertChunkSize {
		end := i + upsertChunkSize
		if end > len(emails) {
			end = len(emails)
		}

		err := r.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "message_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"history_id", "subject", "from_email", "from_name",
				"to_emails", "cc_emails", "bcc_emails",
				"body_text", "body_html", "snippet",
				"is_read", "is_important", "is_starred", "labels",
				"synced_at", "updated_at",
			}),
		}).Create(emails[i:end]).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *emailRepository) ExistingMessageIDs(userID string, messageIDs []string) ([]string, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	var existing []string
	err := r.db.Model(&syncdomain.EmailMessage{}).
		Where("user_id = ? AND message_id IN ?", userID, messageIDs).
		Pluck("message_id", &existing).Error
	if err != nil {
		return nil, err
	}
	return existing, nil
}
