package repository

import (
	"time"

	syncdomain "hushh-backend/internal/sync/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CalendarRepository defines persistence for calendar events captured during
// Meet sync.
type CalendarRepository interface {
	UpsertEvents(events []*syncdomain.CalendarEvent) error
	UpsertAttendees(attendees []*syncdomain.EventAttendee) error
	ListByUser(userID string) ([]syncdomain.CalendarEvent, error)
}

type calendarRepository struct {
	db *gorm.DB
}

func NewCalendarRepository(db *gorm.DB) CalendarRepository {
	return &calendarRepository{
		db: db,
	}
}

func (r *calendarRepository) UpsertEvents(events []*syncdomain.CalendarEvent) error {
	if len(events) == 0 {
		return nil
	}

	now := time.Now()
	for _, event := range events {
		if event.ID == "" {
			event.ID = uuid.New().String()
		}
		event.UpdatedAt = now
	}

	for i := 0; i < len(events); i += upsertChunkSize {
		end := i + upsertChunkSize
		if end > len(events) {
			end = len(events)
		}

		err := r.db.Omit("Attendees").Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "google_event_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"calendar_id", "summary", "description", "location",
				"start_time", "end_time", "is_all_day", "status",
				"meet_link", "organizer_email", "organizer_name",
				"recurrence_rule", "synced_at", "updated_at",
			}),
		}).Create(events[i:end]).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *calendarRepository) UpsertAttendees(attendees []*syncdomain.EventAttendee) error {
	if len(attendees) == 0 {
		return nil
	}

	now := time.Now()
	for _, attendee := range attendees {
		if attendee.ID == "" {
			attendee.ID = uuid.New().String()
		}
		attendee.UpdatedAt = now
	}

	for i := 0; i < len(attendees); i += upsertChunkSize {
		end := i + upsertChunkSize
		if end > len(attendees) {
			end = len(attendees)
		}

		err := r.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "event_id"}, {Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"display_name", "response_status", "is_organizer", "is_optional", "updated_at",
			}),
		}).Create(attendees[i:end]).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *calendarRepository) ListByUser(userID string) ([]syncdomain.CalendarEvent, error) {
	var events []syncdomain.CalendarEvent
	err := r.db.Where("user_id = ?", userID).Order("start_time ASC").Find(&events).Error
	return events, err
}
