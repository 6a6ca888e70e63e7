package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func b64(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }

func TestParseMessage_HeadersAndPlainBody(t *testing.T) {
	msg := &gmailv1.Message{
		Id:       "m1",
		ThreadId: "t1",
		Snippet:  "Reminder about the report",
		Payload: &gmailv1.MessagePart{
			MimeType: "text/plain",
			Headers: []*gmailv1.MessagePartHeader{
				{Name: "From", Value: "Alice <alice@example.com>"},
				{Name: "TO", Value: "me@example.com"},
				{Name: "subject", Value: "Report due"},
				{Name: "Date", Value: "Tue, 4 Nov 2025 09:30:00 +0100"},
			},
			Body: &gmailv1.MessagePartBody{Data: b64("Please send it by Friday.")},
		},
	}
	got := ParseMessage(msg)
	if got.ID != "m1" || got.ThreadID != "t1" {
		t.Fatalf("ids: got %q/%q", got.ID, got.ThreadID)
	}
	if got.From != "Alice <alice@example.com>" || got.To != "me@example.com" || got.Subject != "Report due" {
		t.Fatalf("headers: %+v", got)
	}
	if got.Body != "Please send it by Friday." {
		t.Fatalf("body got %q", got.Body)
	}
	want := time.Date(2025, 11, 4, 8, 30, 0, 0, time.UTC)
	if !got.Received.Equal(want) {
		t.Fatalf("received want %v got %v", want, got.Received)
	}
}

func TestParseMessage_NestedMultipartPrefersPlain(t *testing.T) {
	msg := &gmailv1.Message{
		Id: "m2",
		Payload: &gmailv1.MessagePart{
			MimeType: "multipart/mixed",
			Parts: []*gmailv1.MessagePart{
				{
					MimeType: "multipart/alternative",
					Parts: []*gmailv1.MessagePart{
						{MimeType: "text/html", Body: &gmailv1.MessagePartBody{Data: b64("<p>html</p>")}},
						{MimeType: "text/plain", Body: &gmailv1.MessagePartBody{Data: b64("plain wins")}},
					},
				},
				{MimeType: "application/pdf", Body: &gmailv1.MessagePartBody{AttachmentId: "a1"}},
			},
		},
	}
	if got := ParseMessage(msg).Body; got != "plain wins" {
		t.Fatalf("body got %q", got)
	}
}

func TestParseMessage_HTMLOnlyFallsBackToMarkdown(t *testing.T) {
	msg := &gmailv1.Message{
		Payload: &gmailv1.MessagePart{
			MimeType: "text/html",
			Body:     &gmailv1.MessagePartBody{Data: b64("<p>Kickoff on <b>12 March</b></p>")},
		},
	}
	got := ParseMessage(msg).Body
	if strings.Contains(got, "<p>") || !strings.Contains(got, "12 March") {
		t.Fatalf("body got %q", got)
	}
}

func TestParseMessage_Latin1Charset(t *testing.T) {
	raw := []byte{'c', 'a', 'f', 0xE9}
	msg := &gmailv1.Message{
		Payload: &gmailv1.MessagePart{
			MimeType: "text/plain",
			Headers:  []*gmailv1.MessagePartHeader{{Name: "Content-Type", Value: `text/plain; charset="ISO-8859-1"`}},
			Body:     &gmailv1.MessagePartBody{Data: base64.URLEncoding.EncodeToString(raw)},
		},
	}
	if got := ParseMessage(msg).Body; got != "café" {
		t.Fatalf("body got %q", got)
	}
}

func TestParseMessage_MissingPayload(t *testing.T) {
	got := ParseMessage(&gmailv1.Message{Id: "x", Snippet: "only a snippet"})
	if got.Body != "" || got.Subject != "" || got.Snippet != "only a snippet" {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodeBase64URL_PaddedAndUnpadded(t *testing.T) {
	for _, in := range []string{"aGk_", "aGk-Pz4", "aGk-Pz4="} {
		if decodeBase64URL(in) == nil {
			t.Errorf("decodeBase64URL(%q) failed", in)
		}
	}
	if decodeBase64URL("!!!") != nil {
		t.Error("expected nil for invalid input")
	}
}

func TestParseDate_Layouts(t *testing.T) {
	tests := []struct {
		in   string
		zero bool
	}{
		{"Mon, 3 Nov 2025 10:00:00 -0500", false},
		{"Mon, 03 Nov 2025 10:00:00 +0000 (UTC)", false},
		{"3 Nov 2025 10:00:00 -0500", false},
		{"yesterday-ish", true},
		{"", true},
	}
	for _, tc := range tests {
		if got := parseDate(tc.in); got.IsZero() != tc.zero {
			t.Errorf("parseDate(%q) = %v; zero want %v", tc.in, got, tc.zero)
		}
	}
}

func TestCodeFromInput(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{"  4/abc  ", "4/abc", false},
		{"http://127.0.0.1:1234/?state=s1&code=xyz", "xyz", false},
		{"http://127.0.0.1:1234/?code=xyz", "xyz", false},
		{"http://127.0.0.1:1234/?state=other&code=xyz", "", true},
		{"https://example.com/?state=s1", "", true},
		{"", "", true},
	}
	for _, tc := range tests {
		got, err := codeFromInput(tc.in, "s1")
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("codeFromInput(%q) = %q, %v", tc.in, got, err)
		}
	}
}

// fakeGmail serves just enough of the Gmail REST surface for FetchUnread and MarkRead.
type fakeGmail struct {
	mu       sync.Mutex
	query    string
	modified map[string][]string
}

func (f *fakeGmail) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.query = r.URL.Query().Get("q")
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]string{{"id": "a"}, {"id": "b"}},
		})
	})
	mux.HandleFunc("/gmail/v1/users/me/messages/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/gmail/v1/users/me/messages/")
		if id, ok := strings.CutSuffix(rest, "/modify"); ok {
			var req gmailv1.ModifyMessageRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode modify: %v", err)
			}
			f.mu.Lock()
			f.modified[id] = req.RemoveLabelIds
			f.mu.Unlock()
			json.NewEncoder(w).Encode(map[string]any{"id": id})
			return
		}
		if got := r.URL.Query().Get("format"); got != "full" {
			t.Errorf("format want full got %q", got)
		}
		json.NewEncoder(w).Encode(&gmailv1.Message{
			Id:      rest,
			Snippet: "snippet " + rest,
			Payload: &gmailv1.MessagePart{
				MimeType: "text/plain",
				Headers:  []*gmailv1.MessagePartHeader{{Name: "Subject", Value: "subject " + rest}},
				Body:     &gmailv1.MessagePartBody{Data: b64("body " + rest)},
			},
		})
	})
	return mux
}

func newFakeService(t *testing.T, f *fakeGmail) *gmailv1.Service {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	svc, err := gmailv1.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestFetchUnread_SequentialFullFetch(t *testing.T) {
	f := &fakeGmail{modified: map[string][]string{}}
	svc := newFakeService(t, f)

	mails, err := FetchUnread(context.Background(), svc, "", 0)
	if err != nil {
		t.Fatalf("FetchUnread: %v", err)
	}
	if f.query != DefaultQuery {
		t.Fatalf("query want %q got %q", DefaultQuery, f.query)
	}
	if len(mails) != 2 {
		t.Fatalf("want 2 mails got %d", len(mails))
	}
	if mails[0].ID != "a" || mails[1].ID != "b" {
		t.Fatalf("order: %s, %s", mails[0].ID, mails[1].ID)
	}
	if mails[1].Subject != "subject b" || mails[1].Body != "body b" || mails[1].Snippet != "snippet b" {
		t.Fatalf("mail b: %+v", mails[1])
	}
}

func TestMarkRead_RemovesUnreadLabel(t *testing.T) {
	f := &fakeGmail{modified: map[string][]string{}}
	svc := newFakeService(t, f)

	if err := MarkRead(context.Background(), svc, "a"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	got := f.modified["a"]
	if len(got) != 1 || got[0] != "UNREAD" {
		t.Fatalf("removeLabelIds got %v", got)
	}
}
