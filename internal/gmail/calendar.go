package gmail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mailbrief/internal/model"

	calendarv3 "google.golang.org/api/calendar/v3"
)

// EventTimeLayout is the form users type event times in.
const EventTimeLayout = "2006-01-02T15:04"

// DefaultEventTitle is the first line of the summary, or the first 80
// characters of the snippet when there is no summary.
func DefaultEventTitle(d model.Digest) string {
	if line, _, _ := strings.Cut(strings.TrimSpace(d.Summary), "\n"); line != "" {
		return strings.TrimSpace(line)
	}
	r := []rune(d.Snippet)
	if len(r) > 80 {
		r = r[:80]
	}
	return string(r)
}

// SuggestedEventTime returns candidate when it is already in EventTimeLayout,
// so the prompt can be prefilled; otherwise "".
func SuggestedEventTime(candidate string) string {
	if _, err := time.Parse(EventTimeLayout, candidate); err != nil {
		return ""
	}
	return candidate
}

// DraftEvent builds a zero-length event at when (EventTimeLayout, in loc).
func DraftEvent(d model.Digest, title, when string, loc *time.Location) (model.EventDraft, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.EventDraft{}, fmt.Errorf("event title is required")
	}
	if loc == nil {
		loc = time.Local
	}
	start, err := time.ParseInLocation(EventTimeLayout, strings.TrimSpace(when), loc)
	if err != nil {
		return model.EventDraft{}, fmt.Errorf("event time %q: want YYYY-MM-DDTHH:MM", when)
	}
	return model.EventDraft{
		Title:       title,
		Description: d.Snippet + "\n\nSummary:\n" + d.Summary,
		Start:       start,
		End:         start,
	}, nil
}

// CreateEvent inserts the draft into the primary calendar and returns the
// event's web link.
func CreateEvent(ctx context.Context, svc *calendarv3.Service, draft model.EventDraft) (string, error) {
	ev := &calendarv3.Event{
		Summary:     draft.Title,
		Description: draft.Description,
		Start:       &calendarv3.EventDateTime{DateTime: draft.Start.Format(time.RFC3339)},
		End:         &calendarv3.EventDateTime{DateTime: draft.End.Format(time.RFC3339)},
	}
	created, err := svc.Events.Insert("primary", ev).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create event: %w", err)
	}
	return created.HtmlLink, nil
}
