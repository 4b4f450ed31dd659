package gmail

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmailapi "google.golang.org/api/gmail/v1"
)

func encodeBody(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func fullMessage() *gmailapi.Message {
	return &gmailapi.Message{
		Id:           "msg-1",
		ThreadId:     "thread-1",
		HistoryId:    12345,
		Snippet:      "Hello there",
		InternalDate: 1700000000000,
		LabelIds:     []string{"INBOX", "IMPORTANT", "STARRED"},
		Payload: &gmailapi.MessagePart{
			MimeType: "multipart/alternative",
			Headers: []*gmailapi.MessagePartHeader{
				{Name: "Subject", Value: "Quarterly report"},
				{Name: "From", Value: `"Jane Doe" <jane@example.com>`},
				{Name: "To", Value: "a@example.com, b@example.com"},
				{Name: "Cc", Value: " c@example.com "},
			},
			Parts: []*gmailapi.MessagePart{
				{
					MimeType: "text/plain",
					Body:     &gmailapi.MessagePartBody{Data: encodeBody("plain body")},
				},
				{
					MimeType: "text/html",
					Body:     &gmailapi.MessagePartBody{Data: encodeBody("<p>html body</p>")},
				},
			},
		},
	}
}

func TestNormalizeFullMessage(t *testing.T) {
	email := Normalize(fullMessage(), "user-1")

	assert.Equal(t, "user-1", email.UserID)
	assert.Equal(t, "msg-1", email.MessageID)
	assert.Equal(t, "thread-1", email.ThreadID)
	assert.Equal(t, "12345", email.HistoryID)
	assert.Equal(t, "Quarterly report", email.Subject)
	assert.Equal(t, "jane@example.com", email.FromEmail)
	assert.Equal(t, "Jane Doe", email.FromName)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, []string(email.ToEmails))
	assert.Equal(t, []string{"c@example.com"}, []string(email.CcEmails))
	assert.Empty(t, []string(email.BccEmails))
	assert.Equal(t, "plain body", email.BodyText)
	assert.Equal(t, "<p>html body</p>", email.BodyHTML)
	assert.Equal(t, int64(1700000000000), email.ReceivedAt.UnixMilli())
}

func TestNormalizeFlagsFromLabels(t *testing.T) {
	msg := fullMessage()
	email := Normalize(msg, "user-1")
	assert.True(t, email.IsRead, "no UNREAD label means read")
	assert.True(t, email.IsImportant)
	assert.True(t, email.IsStarred)

	msg.LabelIds = []string{"INBOX", "UNREAD"}
	email = Normalize(msg, "user-1")
	assert.False(t, email.IsRead)
	assert.False(t, email.IsImportant)
	assert.False(t, email.IsStarred)
}

func TestNormalizeHeadersAreCaseInsensitive(t *testing.T) {
	msg := fullMessage()
	msg.Payload.Headers = []*gmailapi.MessagePartHeader{
		{Name: "subject", Value: "lowercase header"},
		{Name: "FROM", Value: "bare@example.com"},
	}

	email := Normalize(msg, "user-1")

	assert.Equal(t, "lowercase header", email.Subject)
	assert.Equal(t, "bare@example.com", email.FromEmail)
	assert.Empty(t, email.FromName)
}

func TestNormalizeNestedBodyParts(t *testing.T) {
	msg := fullMessage()
	msg.Payload.Parts = []*gmailapi.MessagePart{
		{
			MimeType: "multipart/related",
			Parts: []*gmailapi.MessagePart{
				{
					MimeType: "text/plain",
					Body:     &gmailapi.MessagePartBody{Data: encodeBody("nested plain")},
				},
			},
		},
	}

	email := Normalize(msg, "user-1")
	assert.Equal(t, "nested plain", email.BodyText)
}

func TestNormalizeUnpaddedBase64Body(t *testing.T) {
	msg := fullMessage()
	msg.Payload.Parts = []*gmailapi.MessagePart{
		{
			MimeType: "text/plain",
			Body:     &gmailapi.MessagePartBody{Data: base64.RawURLEncoding.EncodeToString([]byte("no padding"))},
		},
	}

	email := Normalize(msg, "user-1")
	assert.Equal(t, "no padding", email.BodyText)
}

func TestNormalizeMessageWithoutPayload(t *testing.T) {
	email := Normalize(&gmailapi.Message{Id: "bare"}, "user-1")

	require.NotNil(t, email)
	assert.Equal(t, "bare", email.MessageID)
	assert.Empty(t, email.Subject)
	assert.NotNil(t, email.ToEmails)
	assert.NotNil(t, email.Labels)
	assert.True(t, email.ReceivedAt.IsZero())
}

func TestParseAddress(t *testing.T) {
	cases := []struct {
		raw   string
		email string
		name  string
	}{
		{`"Jane Doe" <jane@example.com>`, "jane@example.com", "Jane Doe"},
		{`Jane Doe <jane@example.com>`, "jane@example.com", "Jane Doe"},
		{`jane@example.com`, "jane@example.com", ""},
		{``, "", ""},
	}
	for _, tc := range cases {
		email, name := parseAddress(tc.raw)
		assert.Equal(t, tc.email, email, tc.raw)
		assert.Equal(t, tc.name, name, tc.raw)
	}
}
