package model

import "time"

// Mail is one Gmail message with its body already decoded to plain text.
type Mail struct {
	ID       string
	ThreadID string
	From     string
	To       string
	Subject  string
	Date     string    // raw Date header
	Received time.Time // parsed Date header, zero if unparsable
	Snippet  string
	Body     string
}

// Digest is the unit the UI renders: a mail, its summary, and the date
// candidates found in summary + body + snippet.
type Digest struct {
	Mail
	Summary    string
	Candidates []string
	MarkedRead bool
}

// ExtractionText is the haystack the candidate extractor scans.
func (d Digest) ExtractionText() string {
	return d.Summary + "\n\n" + d.Body + "\n\n" + d.Snippet
}

// EventDraft is a calendar event built from a digest and a user-confirmed time.
type EventDraft struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
}

// SummaryProgress is sent from the summarizer to the UI as messages complete.
type SummaryProgress struct {
	Done  int
	Total int
}
