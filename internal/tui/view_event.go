package tui

import (
	"strings"

	"mailbrief/internal/gmail"
	"mailbrief/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
)

const (
	eventFieldTitle = iota
	eventFieldWhen
)

func newEventInputs() [2]textinput.Model {
	title := textinput.New()
	title.Prompt = "Title: "
	title.CharLimit = 200

	when := textinput.New()
	when.Prompt = "When:  "
	when.Placeholder = "YYYY-MM-DDTHH:MM"
	when.CharLimit = len(gmail.EventTimeLayout)
	return [2]textinput.Model{title, when}
}

// startEvent prefills the event form from the digest and the selected candidate.
func (m *AppModel) startEvent(d model.Digest) {
	m.eventInputs[eventFieldTitle].SetValue(gmail.DefaultEventTitle(d))
	when := ""
	if m.candidateIdx >= 0 && m.candidateIdx < len(d.Candidates) {
		when = gmail.SuggestedEventTime(d.Candidates[m.candidateIdx])
	}
	m.eventInputs[eventFieldWhen].SetValue(when)
	m.focusEventField(eventFieldTitle)
	m.view = viewEvent
}

func (m *AppModel) focusEventField(i int) {
	m.eventField = i
	for j := range m.eventInputs {
		if j == i {
			m.eventInputs[j].Focus()
		} else {
			m.eventInputs[j].Blur()
		}
	}
}

func (m *AppModel) renderEvent(d model.Digest) string {
	var b strings.Builder
	b.WriteString(m.theme.header.Render("Add to Google Calendar: " + d.Subject))
	b.WriteString("\n")
	for _, in := range m.eventInputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString(m.theme.footer.Render("tab: next field  enter: create  esc: cancel"))
	return b.String()
}
