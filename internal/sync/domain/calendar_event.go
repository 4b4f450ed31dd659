package domain

import "time"

// CalendarEvent is a Google Calendar event captured for Meet correlation.
// Only events carrying a Meet link are stored.
type CalendarEvent struct {
	ID            string `json:"id" gorm:"primaryKey"`
	UserID        string `json:"user_id" gorm:"index:idx_user_event,unique;not null"`
	GoogleEventID string `json:"google_event_id" gorm:"index:idx_user_event,unique;not null"`
	CalendarID    string `json:"calendar_id"`

	Summary     string `json:"summary"`
	Description string `json:"description"`
	Location    string `json:"location"`

	StartTime time.Time `json:"start_time" gorm:"index"`
	EndTime   time.Time `json:"end_time"`
	IsAllDay  bool      `json:"is_all_day"`

	Status         string `json:"status"`
	MeetLink       string `json:"meet_link"`
	OrganizerEmail string `json:"organizer_email"`
	OrganizerName  string `json:"organizer_name"`
	RecurrenceRule string `json:"recurrence_rule"`

	Attendees []EventAttendee `json:"attendees,omitempty" gorm:"foreignKey:EventID"`

	SyncedAt  time.Time `json:"synced_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CalendarEvent) TableName() string {
	return "calendar_events"
}

// EventAttendee is one invitee on a calendar event.
type EventAttendee struct {
	ID      string `json:"id" gorm:"primaryKey"`
	EventID string `json:"event_id" gorm:"index:idx_event_attendee,unique;not null"`
	Email   string `json:"email" gorm:"index:idx_event_attendee,unique;not null"`

	DisplayName    string `json:"display_name"`
	ResponseStatus string `json:"response_status"`
	IsOrganizer    bool   `json:"is_organizer"`
	IsOptional     bool   `json:"is_optional"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (EventAttendee) TableName() string {
	return "event_attendees"
}
