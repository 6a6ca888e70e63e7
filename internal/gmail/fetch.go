package gmail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mailbrief/internal/model"

	gmailv1 "google.golang.org/api/gmail/v1"
)

const (
	// DefaultQuery selects the mail the digest is built from.
	DefaultQuery = "is:unread"
	// DefaultMaxResults is how many messages one refresh fetches.
	DefaultMaxResults = 5
)

// FetchUnread lists up to limit messages matching query and fetches each one in
// full, one call at a time. Any failed call aborts the fetch.
func FetchUnread(ctx context.Context, svc *gmailv1.Service, query string, limit int64) ([]model.Mail, error) {
	user := "me"
	if query == "" {
		query = DefaultQuery
	}
	if limit <= 0 {
		limit = DefaultMaxResults
	}

	list, err := svc.Users.Messages.List(user).
		Q(query).
		MaxResults(limit).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	mails := make([]model.Mail, 0, len(list.Messages))
	for _, m := range list.Messages {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		msg, err := svc.Users.Messages.Get(user, m.Id).
			Format("full").
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("get message %s: %w", m.Id, err)
		}
		mails = append(mails, ParseMessage(msg))
	}
	return mails, nil
}

// ParseMessage flattens a full-format Gmail message into a Mail. Header
// lookups are case-insensitive; a missing header yields "".
func ParseMessage(msg *gmailv1.Message) model.Mail {
	if msg == nil {
		return model.Mail{}
	}
	headers := make(map[string]string)
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			headers[strings.ToLower(h.Name)] = h.Value
		}
	}
	return model.Mail{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		From:     headers["from"],
		To:       headers["to"],
		Subject:  headers["subject"],
		Date:     headers["date"],
		Received: parseDate(headers["date"]),
		Snippet:  msg.Snippet,
		Body:     bodyText(msg.Payload),
	}
}

// parseDate tries the layouts Gmail commonly uses in the Date header.
func parseDate(h string) time.Time {
	h = strings.TrimSpace(h)
	if h == "" {
		return time.Time{}
	}
	// Some servers append a zone comment, e.g. "... +0000 (UTC)".
	if i := strings.Index(h, " ("); i > 0 {
		h = h[:i]
	}
	layouts := []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC822Z,
		time.RFC822,
		time.RFC850,
		time.RFC3339,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"2 Jan 2006 15:04:05 -0700",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, h); err == nil {
			return t
		}
	}
	return time.Time{}
}
