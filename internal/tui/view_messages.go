package tui

import (
	"fmt"
	"strings"

	"mailbrief/internal/model"
	"mailbrief/internal/util"

	"github.com/charmbracelet/bubbles/list"
)

// digestItem wraps a Digest for the list display. idx points back into
// AppModel.digests so actions survive list filtering.
type digestItem struct {
	model.Digest
	idx int
}

func (d digestItem) FilterValue() string { return d.Subject + " " + d.From }
func (d digestItem) Title() string {
	subject := d.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	if d.MarkedRead {
		return "✓ " + subject
	}
	return subject
}
func (d digestItem) Description() string {
	parts := []string{util.SenderName(d.From)}
	if !d.Received.IsZero() {
		parts = append(parts, d.Received.Local().Format("Jan 2, 15:04"))
	}
	if n := len(d.Candidates); n > 0 {
		parts = append(parts, fmt.Sprintf("%d date(s)", n))
	}
	return strings.Join(parts, "  ·  ")
}

func (m *AppModel) listFooter() string {
	return m.theme.footer.Render("enter: open  r: refresh  d: dark mode  /: filter  q: quit")
}

func digestsToItems(digests []model.Digest) []list.Item {
	items := make([]list.Item, len(digests))
	for i, d := range digests {
		items[i] = digestItem{Digest: d, idx: i}
	}
	return items
}
