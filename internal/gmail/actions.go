package gmail

import (
	"context"
	"fmt"

	gmailv1 "google.golang.org/api/gmail/v1"
)

// MarkRead removes the UNREAD label from one message.
func MarkRead(ctx context.Context, svc *gmailv1.Service, messageID string) error {
	req := &gmailv1.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}
	if _, err := svc.Users.Messages.Modify("me", messageID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("mark message %s read: %w", messageID, err)
	}
	return nil
}
