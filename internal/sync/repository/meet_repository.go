package repository

import (
	"time"

	syncdomain "hushh-backend/internal/sync/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MeetRepository defines persistence for Meet conference records and their
// correlation links to calendar events.
type MeetRepository interface {
	UpsertConferences(conferences []*syncdomain.MeetConference) error
	UpsertParticipants(participants []*syncdomain.MeetParticipant) error
	UpsertRecordings(recordings []*syncdomain.MeetRecording) error
	UpsertTranscripts(transcripts []*syncdomain.MeetTranscript) error
	UpsertLinks(links []*syncdomain.CalendarMeetLink) error
	ListByUser(userID string) ([]syncdomain.MeetConference, error)
	CountByUser(userID string) (int64, error)
}

type meetRepository struct {
	db *gorm.DB
}

func NewMeetRepository(db *gorm.DB) MeetRepository {
	return &meetRepository{
		db: db,
	}
}

func (r *meetRepository) UpsertConferences(conferences []*syncdomain.MeetConference) error {
	if len(conferences) == 0 {
		return nil
	}

	now := time.Now()
	for _, conference := range conferences {
		if conference.ID == "" {
			conference.ID = uuid.New().String()
		}
		conference.UpdatedAt = now
	}

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "conference_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"space_name", "start_time", "end_time", "participant_count",
			"was_recorded", "was_transcribed", "synced_at", "updated_at",
		}),
	}).Create(conferences).Error
}

func (r *meetRepository) UpsertParticipants(participants []*syncdomain.MeetParticipant) error {
	if len(participants) == 0 {
		return nil
	}

	now := time.Now()
	for _, participant := range participants {
		if participant.ID == "" {
			participant.ID = uuid.New().String()
		}
		participant.UpdatedAt = now
	}

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "conference_id"}, {Name: "participant_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"display_name", "participant_type", "joined_at", "left_at", "updated_at",
		}),
	}).Create(participants).Error
}

func (r *meetRepository) UpsertRecordings(recordings []*syncdomain.MeetRecording) error {
	if len(recordings) == 0 {
		return nil
	}

	now := time.Now()
	for _, recording := range recordings {
		if recording.ID == "" {
			recording.ID = uuid.New().String()
		}
		recording.UpdatedAt = now
	}

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "conference_id"}, {Name: "recording_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"state", "drive_file_id", "export_uri",
			"recording_start", "recording_end", "updated_at",
		}),
	}).Create(recordings).Error
}

func (r *meetRepository) UpsertTranscripts(transcripts []*syncdomain.MeetTranscript) error {
	if len(transcripts) == 0 {
		return nil
	}

	now := time.Now()
	for _, transcript := range transcripts {
		if transcript.ID == "" {
			transcript.ID = uuid.New().String()
		}
		transcript.UpdatedAt = now
	}

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "conference_id"}, {Name: "transcript_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"state", "docs_document_id", "export_uri",
			"transcript_start", "transcript_end", "updated_at",
		}),
	}).Create(transcripts).Error
}

func (r *meetRepository) UpsertLinks(links []*syncdomain.CalendarMeetLink) error {
	if len(links) == 0 {
		return nil
	}

	now := time.Now()
	for _, link := range links {
		if link.ID == "" {
			link.ID = uuid.New().String()
		}
		link.UpdatedAt = now
	}

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "calendar_event_id"}, {Name: "conference_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"confidence", "method", "updated_at",
		}),
	}).Create(links).Error
}

func (r *meetRepository) ListByUser(userID string) ([]syncdomain.MeetConference, error) {
	var conferences []syncdomain.MeetConference
	err := r.db.Where("user_id = ?", userID).Order("start_time DESC").Find(&conferences).Error
	return conferences, err
}

func (r *meetRepository) CountByUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&syncdomain.MeetConference{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
