package domain

import "time"

// MeetConference is one finished Google Meet conference record.
// ConferenceName is the vendor resource name ("conferenceRecords/{id}").
type MeetConference struct {
	ID             string `json:"id" gorm:"primaryKey"`
	UserID         string `json:"user_id" gorm:"index:idx_user_conference,unique;not null"`
	ConferenceName string `json:"conference_name" gorm:"index:idx_user_conference,unique;not null"`
	SpaceName      string `json:"space_name"`

	StartTime time.Time `json:"start_time" gorm:"index"`
	EndTime   time.Time `json:"end_time"`

	ParticipantCount int  `json:"participant_count"`
	WasRecorded      bool `json:"was_recorded"`
	WasTranscribed   bool `json:"was_transcribed"`

	SyncedAt  time.Time `json:"synced_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MeetConference) TableName() string {
	return "meet_conferences"
}

// MeetParticipant is one attendee session within a conference.
type MeetParticipant struct {
	ID              string `json:"id" gorm:"primaryKey"`
	ConferenceID    string `json:"conference_id" gorm:"index:idx_conference_participant,unique;not null"`
	ParticipantName string `json:"participant_name" gorm:"index:idx_conference_participant,unique;not null"`

	DisplayName     string     `json:"display_name"`
	ParticipantType string     `json:"participant_type"` // signed_in, anonymous, phone
	JoinedAt        *time.Time `json:"joined_at"`
	LeftAt          *time.Time `json:"left_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MeetParticipant) TableName() string {
	return "meet_participants"
}

// MeetRecording is a Drive-backed recording of a conference.
type MeetRecording struct {
	ID            string `json:"id" gorm:"primaryKey"`
	ConferenceID  string `json:"conference_id" gorm:"index:idx_conference_recording,unique;not null"`
	RecordingName string `json:"recording_name" gorm:"index:idx_conference_recording,unique;not null"`

	State          string     `json:"state"`
	DriveFileID    string     `json:"drive_file_id"`
	ExportURI      string     `json:"export_uri"`
	RecordingStart *time.Time `json:"recording_start"`
	RecordingEnd   *time.Time `json:"recording_end"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MeetRecording) TableName() string {
	return "meet_recordings"
}

// MeetTranscript is a Docs-backed transcript of a conference.
type MeetTranscript struct {
	ID             string `json:"id" gorm:"primaryKey"`
	ConferenceID   string `json:"conference_id" gorm:"index:idx_conference_transcript,unique;not null"`
	TranscriptName string `json:"transcript_name" gorm:"index:idx_conference_transcript,unique;not null"`

	State           string     `json:"state"`
	DocsDocumentID  string     `json:"docs_document_id"`
	ExportURI       string     `json:"export_uri"`
	TranscriptStart *time.Time `json:"transcript_start"`
	TranscriptEnd   *time.Time `json:"transcript_end"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MeetTranscript) TableName() string {
	return "meet_transcripts"
}

// CalendarMeetLink records a correlation between a calendar event and a
// conference record, with the confidence score that produced the match.
type CalendarMeetLink struct {
	ID              string `json:"id" gorm:"primaryKey"`
	CalendarEventID string `json:"calendar_event_id" gorm:"index:idx_event_conference,unique;not null"`
	ConferenceID    string `json:"conference_id" gorm:"index:idx_event_conference,unique;not null"`

	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"` // time_window, time_and_title

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CalendarMeetLink) TableName() string {
	return "calendar_meet_links"
}
