package domain

import (
	"time"

	"github.com/lib/pq"
)

// EmailMessage is one synced Gmail message. The (user_id, message_id) unique
// index is the dedup boundary: re-syncing the same vendor message updates the
// row in place.
type EmailMessage struct {
	ID        string `json:"id" gorm:"primaryKey"`
	UserID    string `json:"user_id" gorm:"index:idx_user_message,unique;not null"`
	MessageID string `json:"message_id" gorm:"index:idx_user_message,unique;not null"`
	ThreadID  string `json:"thread_id" gorm:"index"`
	HistoryID string `json:"history_id"`

	Subject   string         `json:"subject"`
	FromEmail string         `json:"from_email"`
	FromName  string         `json:"from_name"`
	ToEmails  pq.StringArray `json:"to_emails" gorm:"type:text[]"`
	CcEmails  pq.StringArray `json:"cc_emails" gorm:"type:text[]"`
	BccEmails pq.StringArray `json:"bcc_emails" gorm:"type:text[]"`

	BodyText string `json:"body_text"`
	BodyHTML string `json:"body_html"`
	Snippet  string `json:"snippet"`

	IsRead      bool           `json:"is_read"`
	IsImportant bool           `json:"is_important"`
	IsStarred   bool           `json:"is_starred"`
	Labels      pq.StringArray `json:"labels" gorm:"type:text[]"`

	ReceivedAt time.Time `json:"received_at" gorm:"index"`
	SentAt     time.Time `json:"sent_at"`
	SyncedAt   time.Time `json:"synced_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (EmailMessage) TableName() string {
	return "email_messages"
}

// VendorID returns the Gmail message ID, the identity used for dedup.
func (m *EmailMessage) VendorID() string {
	return m.MessageID
}
