package gmail

import (
	"strings"
	"testing"
	"time"

	"mailbrief/internal/model"
)

func TestDefaultEventTitle(t *testing.T) {
	d := model.Digest{Summary: "  Submit the grant report.\nMore detail here.", Mail: model.Mail{Snippet: "ignored"}}
	if got := DefaultEventTitle(d); got != "Submit the grant report." {
		t.Fatalf("got %q", got)
	}
	long := strings.Repeat("s", 120)
	d = model.Digest{Mail: model.Mail{Snippet: long}}
	if got := DefaultEventTitle(d); got != long[:80] {
		t.Fatalf("snippet fallback got %d chars", len(got))
	}
}

func TestSuggestedEventTime(t *testing.T) {
	if got := SuggestedEventTime("2025-10-31T17:00"); got != "2025-10-31T17:00" {
		t.Fatalf("got %q", got)
	}
	for _, c := range []string{"tomorrow", "2025-10-31", "3:30 PM"} {
		if got := SuggestedEventTime(c); got != "" {
			t.Errorf("SuggestedEventTime(%q) = %q", c, got)
		}
	}
}

func TestDraftEvent(t *testing.T) {
	d := model.Digest{Summary: "Sum", Mail: model.Mail{Snippet: "Snip"}}
	loc := time.FixedZone("X", 2*60*60)

	draft, err := DraftEvent(d, " Review ", "2025-10-31T17:00", loc)
	if err != nil {
		t.Fatalf("DraftEvent: %v", err)
	}
	want := time.Date(2025, 10, 31, 17, 0, 0, 0, loc)
	if draft.Title != "Review" || !draft.Start.Equal(want) || !draft.End.Equal(want) {
		t.Fatalf("draft %+v", draft)
	}
	if draft.Description != "Snip\n\nSummary:\nSum" {
		t.Fatalf("description %q", draft.Description)
	}

	if _, err := DraftEvent(d, "Review", "next friday", loc); err == nil {
		t.Fatal("expected error for unparsable time")
	}
	if _, err := DraftEvent(d, "  ", "2025-10-31T17:00", loc); err == nil {
		t.Fatal("expected error for empty title")
	}
}
