package meet

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	accountdomain "hushh-backend/internal/account/domain"
	accountrepo "hushh-backend/internal/account/repository"
	accountusecase "hushh-backend/internal/account/usecase"
	syncdomain "hushh-backend/internal/sync/domain"
	"hushh-backend/internal/sync/engine"
	syncrepo "hushh-backend/internal/sync/repository"

	"golang.org/x/oauth2"
	calendarapi "google.golang.org/api/calendar/v3"
	meetapi "google.golang.org/api/meet/v2"
	"google.golang.org/api/option"
)

// Calendar capture window around "now". Past meetings feed correlation,
// future ones let the app show upcoming Meet events.
const (
	calendarLookback  = 30 * 24 * time.Hour
	calendarLookahead = 60 * 24 * time.Hour
	calendarPageSize  = 250
	conferencePage    = 50
)

var meetLinkPattern = regexp.MustCompile(`https://meet\.google\.com/[a-z0-9\-]+`)

// SyncSummary reports what one Meet sync run stored.
type SyncSummary struct {
	Conferences    int `json:"conferences"`
	Participants   int `json:"participants"`
	Recordings     int `json:"recordings"`
	Transcripts    int `json:"transcripts"`
	CalendarEvents int `json:"calendar_events"`
	Attendees      int `json:"attendees"`
	Correlations   int `json:"correlations"`
}

// ConnectionStatus reports the Meet connection and how much is stored.
type ConnectionStatus struct {
	Connected       bool                           `json:"connected"`
	Account         *accountdomain.ProviderAccount `json:"account"`
	ConferenceCount int64                          `json:"conference_count"`
}

// Usecase syncs Meet conference records plus the surrounding calendar events
// and correlates the two.
type Usecase interface {
	Sync(ctx context.Context, userID string) (*SyncSummary, error)
	Status(userID string) (*ConnectionStatus, error)
}

type usecase struct {
	accounts    accountrepo.AccountRepository
	tokens      accountusecase.TokenUsecase
	meetRepo    syncrepo.MeetRepository
	calRepo     syncrepo.CalendarRepository
	correlator  *Correlator
	serviceOpts []option.ClientOption
}

func NewUsecase(accounts accountrepo.AccountRepository, tokens accountusecase.TokenUsecase, meetRepo syncrepo.MeetRepository, calRepo syncrepo.CalendarRepository, correlator *Correlator, opts ...option.ClientOption) Usecase {
	return &usecase{
		accounts:    accounts,
		tokens:      tokens,
		meetRepo:    meetRepo,
		calRepo:     calRepo,
		correlator:  correlator,
		serviceOpts: opts,
	}
}

func (u *usecase) Status(userID string) (*ConnectionStatus, error) {
	account, err := u.accounts.FindByUserAndProvider(userID, accountdomain.ProviderMeet)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, engine.ErrAccountNotFound
	}
	count, err := u.meetRepo.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	return &ConnectionStatus{
		Connected:       account.IsConnected,
		Account:         account,
		ConferenceCount: count,
	}, nil
}

func (u *usecase) Sync(ctx context.Context, userID string) (*SyncSummary, error) {
	account, err := u.accounts.FindByUserAndProvider(userID, accountdomain.ProviderMeet)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, engine.ErrAccountNotFound
	}
	if !account.IsConnected {
		return nil, engine.ErrNotConnected
	}

	token, err := u.tokens.GetValidToken(ctx, account)
	if err != nil {
		return nil, err
	}

	opts := append([]option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})),
	}, u.serviceOpts...)

	summary := &SyncSummary{}

	if err := u.syncConferences(ctx, account, summary, opts); err != nil {
		return nil, err
	}

	// Calendar capture and correlation are best effort: a calendar scope the
	// user declined must not fail the conference sync.
	if err := u.syncCalendar(ctx, account, summary, opts); err != nil {
		log.Printf("[MEET] Calendar sync failed for user %s: %v", userID, err)
	} else if err := u.correlate(account.UserID, summary); err != nil {
		log.Printf("[MEET] Correlation failed for user %s: %v", userID, err)
	}

	if err := u.accounts.UpdateCursor(account.ID, "", time.Now()); err != nil {
		return nil, err
	}

	log.Printf("[MEET] Sync for user %s: %d conferences, %d events, %d correlations",
		userID, summary.Conferences, summary.CalendarEvents, summary.Correlations)
	return summary, nil
}

func (u *usecase) syncConferences(ctx context.Context, account *accountdomain.ProviderAccount, summary *SyncSummary, opts []option.ClientOption) error {
	srv, err := meetapi.NewService(ctx, opts...)
	if err != nil {
		return err
	}

	resp, err := srv.ConferenceRecords.List().PageSize(conferencePage).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to list conference records: %w", err)
	}

	now := time.Now()
	conferences := make([]*syncdomain.MeetConference, 0, len(resp.ConferenceRecords))
	participantsByConf := make(map[string][]*syncdomain.MeetParticipant)
	recordingsByConf := make(map[string][]*syncdomain.MeetRecording)
	transcriptsByConf := make(map[string][]*syncdomain.MeetTranscript)

	for _, record := range resp.ConferenceRecords {
		conference := &syncdomain.MeetConference{
			UserID:         account.UserID,
			ConferenceName: record.Name,
			SpaceName:      record.Space,
			StartTime:      parseRFC3339(record.StartTime),
			EndTime:        parseRFC3339(record.EndTime),
			SyncedAt:       now,
		}

		// Sub-resource fetches are per-conference and independently fallible.
		if participants, err := srv.ConferenceRecords.Participants.List(record.Name).Context(ctx).Do(); err != nil {
			log.Printf("[MEET] Participants unavailable for %s: %v", record.Name, err)
		} else {
			for _, p := range participants.Participants {
				participantsByConf[record.Name] = append(participantsByConf[record.Name], normalizeParticipant(p))
			}
			conference.ParticipantCount = len(participants.Participants)
		}

		if recordings, err := srv.ConferenceRecords.Recordings.List(record.Name).Context(ctx).Do(); err != nil {
			log.Printf("[MEET] Recordings unavailable for %s: %v", record.Name, err)
		} else {
			for _, r := range recordings.Recordings {
				recordingsByConf[record.Name] = append(recordingsByConf[record.Name], normalizeRecording(r))
			}
			conference.WasRecorded = len(recordings.Recordings) > 0
		}

		if transcripts, err := srv.ConferenceRecords.Transcripts.List(record.Name).Context(ctx).Do(); err != nil {
			log.Printf("[MEET] Transcripts unavailable for %s: %v", record.Name, err)
		} else {
			for _, t := range transcripts.Transcripts {
				transcriptsByConf[record.Name] = append(transcriptsByConf[record.Name], normalizeTranscript(t))
			}
			conference.WasTranscribed = len(transcripts.Transcripts) > 0
		}

		conferences = append(conferences, conference)
	}

	if err := u.meetRepo.UpsertConferences(conferences); err != nil {
		return err
	}
	summary.Conferences = len(conferences)

	// Re-read to resolve stored row IDs: on conflict the existing row keeps
	// its primary key, not the one generated above.
	stored, err := u.meetRepo.ListByUser(account.UserID)
	if err != nil {
		return err
	}
	idByName := make(map[string]string, len(stored))
	for _, c := range stored {
		idByName[c.ConferenceName] = c.ID
	}

	var allParticipants []*syncdomain.MeetParticipant
	var allRecordings []*syncdomain.MeetRecording
	var allTranscripts []*syncdomain.MeetTranscript
	for name, id := range idByName {
		for _, p := range participantsByConf[name] {
			p.ConferenceID = id
			allParticipants = append(allParticipants, p)
		}
		for _, r := range recordingsByConf[name] {
			r.ConferenceID = id
			allRecordings = append(allRecordings, r)
		}
		for _, t := range transcriptsByConf[name] {
			t.ConferenceID = id
			allTranscripts = append(allTranscripts, t)
		}
	}

	if err := u.meetRepo.UpsertParticipants(allParticipants); err != nil {
		return err
	}
	if err := u.meetRepo.UpsertRecordings(allRecordings); err != nil {
		return err
	}
	if err := u.meetRepo.UpsertTranscripts(allTranscripts); err != nil {
		return err
	}
	summary.Participants = len(allParticipants)
	summary.Recordings = len(allRecordings)
	summary.Transcripts = len(allTranscripts)
	return nil
}

func (u *usecase) syncCalendar(ctx context.Context, account *accountdomain.ProviderAccount, summary *SyncSummary, opts []option.ClientOption) error {
	srv, err := calendarapi.NewService(ctx, opts...)
	if err != nil {
		return err
	}

	now := time.Now()
	resp, err := srv.Events.List("primary").
		TimeMin(now.Add(-calendarLookback).Format(time.RFC3339)).
		TimeMax(now.Add(calendarLookahead).Format(time.RFC3339)).
		MaxResults(calendarPageSize).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to list calendar events: %w", err)
	}

	var events []*syncdomain.CalendarEvent
	attendeesByEvent := make(map[string][]*syncdomain.EventAttendee)

	for _, item := range resp.Items {
		link := extractMeetLink(item)
		if link == "" {
			continue
		}

		event := &syncdomain.CalendarEvent{
			UserID:        account.UserID,
			GoogleEventID: item.Id,
			CalendarID:    "primary",
			Summary:       item.Summary,
			Description:   item.Description,
			Location:      item.Location,
			Status:        item.Status,
			MeetLink:      link,
			SyncedAt:      now,
		}
		event.StartTime, event.IsAllDay = parseEventTime(item.Start)
		event.EndTime, _ = parseEventTime(item.End)
		if item.Organizer != nil {
			event.OrganizerEmail = item.Organizer.Email
			event.OrganizerName = item.Organizer.DisplayName
		}
		if len(item.Recurrence) > 0 {
			event.RecurrenceRule = item.Recurrence[0]
		}
		events = append(events, event)

		for _, a := range item.Attendees {
			if a.Email == "" {
				continue
			}
			status := a.ResponseStatus
			if status == "" {
				status = "needsAction"
			}
			attendeesByEvent[item.Id] = append(attendeesByEvent[item.Id], &syncdomain.EventAttendee{
				Email:          a.Email,
				DisplayName:    a.DisplayName,
				ResponseStatus: status,
				IsOrganizer:    a.Organizer,
				IsOptional:     a.Optional,
			})
		}
	}

	if err := u.calRepo.UpsertEvents(events); err != nil {
		return err
	}
	summary.CalendarEvents = len(events)

	stored, err := u.calRepo.ListByUser(account.UserID)
	if err != nil {
		return err
	}
	idByGoogleID := make(map[string]string, len(stored))
	for _, e := range stored {
		idByGoogleID[e.GoogleEventID] = e.ID
	}

	var attendees []*syncdomain.EventAttendee
	for googleID, list := range attendeesByEvent {
		eventID, ok := idByGoogleID[googleID]
		if !ok {
			continue
		}
		for _, a := range list {
			a.EventID = eventID
			attendees = append(attendees, a)
		}
	}
	if err := u.calRepo.UpsertAttendees(attendees); err != nil {
		return err
	}
	summary.Attendees = len(attendees)
	return nil
}

func (u *usecase) correlate(userID string, summary *SyncSummary) error {
	events, err := u.calRepo.ListByUser(userID)
	if err != nil {
		return err
	}
	conferences, err := u.meetRepo.ListByUser(userID)
	if err != nil {
		return err
	}

	matches := u.correlator.Correlate(events, conferences)
	if len(matches) == 0 {
		return nil
	}

	links := make([]*syncdomain.CalendarMeetLink, 0, len(matches))
	for _, match := range matches {
		links = append(links, &syncdomain.CalendarMeetLink{
			CalendarEventID: match.EventID,
			ConferenceID:    match.ConferenceID,
			Confidence:      match.Confidence,
			Method:          match.Method,
		})
	}
	if err := u.meetRepo.UpsertLinks(links); err != nil {
		return err
	}
	summary.Correlations = len(links)
	return nil
}

func normalizeParticipant(p *meetapi.Participant) *syncdomain.MeetParticipant {
	participant := &syncdomain.MeetParticipant{
		ParticipantName: p.Name,
	}
	switch {
	case p.SignedinUser != nil:
		participant.DisplayName = p.SignedinUser.DisplayName
		participant.ParticipantType = "signed_in"
	case p.AnonymousUser != nil:
		participant.DisplayName = p.AnonymousUser.DisplayName
		participant.ParticipantType = "anonymous"
	case p.PhoneUser != nil:
		participant.DisplayName = p.PhoneUser.DisplayName
		participant.ParticipantType = "phone"
	}
	if t := parseRFC3339(p.EarliestStartTime); !t.IsZero() {
		participant.JoinedAt = &t
	}
	if t := parseRFC3339(p.LatestEndTime); !t.IsZero() {
		participant.LeftAt = &t
	}
	return participant
}

func normalizeRecording(r *meetapi.Recording) *syncdomain.MeetRecording {
	recording := &syncdomain.MeetRecording{
		RecordingName: r.Name,
		State:         r.State,
	}
	if r.DriveDestination != nil {
		recording.DriveFileID = r.DriveDestination.File
		recording.ExportURI = r.DriveDestination.ExportUri
	}
	if t := parseRFC3339(r.StartTime); !t.IsZero() {
		recording.RecordingStart = &t
	}
	if t := parseRFC3339(r.EndTime); !t.IsZero() {
		recording.RecordingEnd = &t
	}
	return recording
}

func normalizeTranscript(t *meetapi.Transcript) *syncdomain.MeetTranscript {
	transcript := &syncdomain.MeetTranscript{
		TranscriptName: t.Name,
		State:          t.State,
	}
	if t.DocsDestination != nil {
		transcript.DocsDocumentID = t.DocsDestination.Document
		transcript.ExportURI = t.DocsDestination.ExportUri
	}
	if ts := parseRFC3339(t.StartTime); !ts.IsZero() {
		transcript.TranscriptStart = &ts
	}
	if ts := parseRFC3339(t.EndTime); !ts.IsZero() {
		transcript.TranscriptEnd = &ts
	}
	return transcript
}

// extractMeetLink finds the Meet URL on an event: the hangout link, a video
// entry point, or a bare link in the description.
func extractMeetLink(event *calendarapi.Event) string {
	if event.HangoutLink != "" {
		return event.HangoutLink
	}
	if event.ConferenceData != nil {
		for _, ep := range event.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" && strings.Contains(ep.Uri, "meet.google.com") {
				return ep.Uri
			}
		}
	}
	if event.Description != "" {
		return meetLinkPattern.FindString(event.Description)
	}
	return ""
}

func parseEventTime(t *calendarapi.EventDateTime) (time.Time, bool) {
	if t == nil {
		return time.Time{}, false
	}
	if t.DateTime != "" {
		return parseRFC3339(t.DateTime), false
	}
	if t.Date != "" {
		parsed, err := time.Parse("2006-01-02", t.Date)
		if err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func parseRFC3339(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
