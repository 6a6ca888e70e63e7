package tui

import (
	"fmt"
	"strings"

	"mailbrief/internal/model"
)

func (m *AppModel) detailHeader(d model.Digest) string {
	date := d.Date
	if !d.Received.IsZero() {
		date = d.Received.Local().Format("Mon, Jan 2 2006 15:04")
	}
	return m.theme.header.Render(fmt.Sprintf("From: %s\nSubject: %s\nDate: %s", d.From, d.Subject, date))
}

// renderDetail is the viewport content for one digest: header, summary, the
// candidate chips, and the located context for the selected chip.
func (m *AppModel) renderDetail(d model.Digest) string {
	var b strings.Builder
	b.WriteString(m.detailHeader(d))
	b.WriteString("\n")

	b.WriteString(m.theme.label.Render("Summary"))
	b.WriteString("\n")
	b.WriteString(m.theme.summary.Render(d.Summary))
	b.WriteString("\n")

	b.WriteString(m.theme.label.Render("Dates"))
	b.WriteString("\n")
	if len(d.Candidates) == 0 {
		b.WriteString(m.theme.muted.Render("No dates found"))
	} else {
		chips := make([]string, len(d.Candidates))
		for i, c := range d.Candidates {
			if i == m.candidateIdx {
				chips[i] = m.theme.chipSelected.Render(c)
			} else {
				chips[i] = m.theme.chip.Render(c)
			}
		}
		b.WriteString(strings.Join(chips, ""))
	}
	b.WriteString("\n")

	if m.contextText != "" {
		b.WriteString(m.theme.context.Render(m.contextText))
		b.WriteString("\n")
	}

	if d.MarkedRead {
		b.WriteString("\n")
		b.WriteString(m.theme.muted.Render("Marked"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *AppModel) detailFooter(d model.Digest) string {
	keys := []string{"←/→: pick date", "enter: context", "a: add event"}
	if !d.MarkedRead {
		keys = append(keys, "m: mark read")
	}
	keys = append(keys, "o: open in gmail", "esc: back", "q: quit")
	return m.theme.footer.Render(strings.Join(keys, "  "))
}
