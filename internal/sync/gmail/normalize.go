package gmail

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	syncdomain "hushh-backend/internal/sync/domain"

	"github.com/lib/pq"
	gmailapi "google.golang.org/api/gmail/v1"
)

// Normalize flattens a full-format Gmail message into the storage model.
// Missing fields map to zero values; a message with no payload still yields
// a storable record.
func Normalize(msg *gmailapi.Message, userID string) *syncdomain.EmailMessage {
	email := &syncdomain.EmailMessage{
		UserID:    userID,
		MessageID: msg.Id,
		ThreadID:  msg.ThreadId,
		Snippet:   msg.Snippet,
		Labels:    pq.StringArray(msg.LabelIds),
		SyncedAt:  time.Now(),
	}
	if msg.HistoryId > 0 {
		email.HistoryID = strconv.FormatUint(msg.HistoryId, 10)
	}
	if email.Labels == nil {
		email.Labels = pq.StringArray{}
	}

	if msg.InternalDate > 0 {
		received := time.UnixMilli(msg.InternalDate)
		email.ReceivedAt = received
		email.SentAt = received
	}

	email.IsRead = !hasLabel(msg.LabelIds, "UNREAD")
	email.IsImportant = hasLabel(msg.LabelIds, "IMPORTANT")
	email.IsStarred = hasLabel(msg.LabelIds, "STARRED")

	if msg.Payload == nil {
		email.ToEmails = pq.StringArray{}
		email.CcEmails = pq.StringArray{}
		email.BccEmails = pq.StringArray{}
		return email
	}

	email.Subject = header(msg.Payload.Headers, "Subject")
	email.FromEmail, email.FromName = parseAddress(header(msg.Payload.Headers, "From"))
	email.ToEmails = parseAddressList(header(msg.Payload.Headers, "To"))
	email.CcEmails = parseAddressList(header(msg.Payload.Headers, "Cc"))
	email.BccEmails = parseAddressList(header(msg.Payload.Headers, "Bcc"))

	if sent := header(msg.Payload.Headers, "Date"); sent != "" {
		if t, err := parseMailDate(sent); err == nil {
			email.SentAt = t
		}
	}

	email.BodyText, email.BodyHTML = extractBody(msg.Payload)
	return email
}

// header returns the first header matching name, case-insensitively.
func header(headers []*gmailapi.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

func hasLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

// parseAddress splits `Display Name <addr@host>` into address and name.
// A bare address yields an empty name.
func parseAddress(raw string) (email, name string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}
	open := strings.LastIndex(raw, "<")
	end := strings.LastIndex(raw, ">")
	if open >= 0 && end > open {
		email = strings.TrimSpace(raw[open+1 : end])
		name = strings.Trim(strings.TrimSpace(raw[:open]), `"`)
		return email, name
	}
	return raw, ""
}

// parseAddressList splits a comma-separated recipient header, trimming each
// entry and dropping empties. The result is never nil so empty lists store as
// empty arrays rather than NULL.
func parseAddressList(raw string) pq.StringArray {
	out := pq.StringArray{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

var mailDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	"2 Jan 2006 15:04:05 -0700",
}

func parseMailDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range mailDateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// extractBody walks the MIME tree collecting the first text/plain and
// text/html parts.
func extractBody(payload *gmailapi.MessagePart) (text, html string) {
	if payload == nil {
		return "", ""
	}

	if payload.Body != nil && payload.Body.Data != "" {
		decoded := decodeBase64URL(payload.Body.Data)
		switch payload.MimeType {
		case "text/html":
			html = decoded
		default:
			text = decoded
		}
	}

	for _, part := range payload.Parts {
		partText, partHTML := extractBody(part)
		if text == "" {
			text = partText
		}
		if html == "" {
			html = partHTML
		}
		if text != "" && html != "" {
			break
		}
	}
	return text, html
}

// decodeBase64URL handles Gmail body data, which is URL-safe base64 with or
// without padding. Undecodable data yields an empty string.
func decodeBase64URL(data string) string {
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	return ""
}
