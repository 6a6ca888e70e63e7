package tui

import (
	"mailbrief/internal/gmail"
	"mailbrief/internal/model"
)

// Async message types for Bubble Tea commands.

type authResultMsg struct {
	services *gmail.Services
	err      error
}

type authURLMsg string

type summaryProgressMsg model.SummaryProgress

type digestsLoadedMsg struct {
	digests []model.Digest
	err     error
}

type markedReadMsg struct {
	id  string
	err error
}

type eventCreatedMsg struct {
	link string
	err  error
}

type actionResultMsg struct {
	action string // "Open", "Save preference"
	err    error
}

type statusMsg string
