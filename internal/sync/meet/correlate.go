package meet

import (
	"strings"
	"time"

	syncdomain "hushh-backend/internal/sync/domain"
)

// Correlator links calendar events to conference records by start-time
// proximity, with a weak title-similarity boost. All knobs come from config
// so the matching can be tuned without a deploy.
type Correlator struct {
	TimeTolerance time.Duration
	TimeWeight    float64
	TitleWeight   float64
	Threshold     float64
}

// Match is one accepted event/conference pairing.
type Match struct {
	EventID      string
	ConferenceID string
	Confidence   float64
	Method       string
}

// Correlate scores every event-with-Meet-link against every conference and
// keeps pairings at or above the threshold. Time proximity is a hard gate:
// title similarity only ever boosts a time match, never creates one.
func (c *Correlator) Correlate(events []syncdomain.CalendarEvent, conferences []syncdomain.MeetConference) []Match {
	var matches []Match

	for _, event := range events {
		if event.MeetLink == "" {
			continue
		}

		for _, conference := range conferences {
			diff := event.StartTime.Sub(conference.StartTime)
			if diff < 0 {
				diff = -diff
			}
			if diff > c.TimeTolerance {
				continue
			}

			confidence := c.TimeWeight
			method := "time_match"

			if titleSimilar(event.Summary, conference.ConferenceName) {
				confidence += c.TitleWeight
				method = "time_match,title_similarity"
			}

			if confidence < c.Threshold {
				continue
			}
			if confidence > 1.0 {
				confidence = 1.0
			}

			matches = append(matches, Match{
				EventID:      event.ID,
				ConferenceID: conference.ID,
				Confidence:   confidence,
				Method:       method,
			})
		}
	}
	return matches
}

// titleSimilar is a loose check: the event looks like a meeting, or the
// conference resource name carries the leading chunk of the event title.
func titleSimilar(summary, conferenceName string) bool {
	if summary == "" || conferenceName == "" {
		return false
	}
	summary = strings.ToLower(summary)
	conferenceName = strings.ToLower(conferenceName)

	if strings.Contains(summary, "meet") {
		return true
	}
	prefix := summary
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	return strings.Contains(conferenceName, prefix)
}
