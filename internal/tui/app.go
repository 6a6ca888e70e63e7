package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mailbrief/internal/config"
	"mailbrief/internal/deadline"
	"mailbrief/internal/digest"
	"mailbrief/internal/gmail"
	"mailbrief/internal/model"
	"mailbrief/internal/summarize"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

type viewState int

const (
	viewLoading viewState = iota
	viewAuth              // waiting for auth code input
	viewList              // digest list
	viewDetail            // one digest with its date candidates
	viewEvent             // calendar event form
)

const noKeyNotice = "No API key set. Run `mailbrief options` to add one; summaries are placeholders."

// Options wires the app to its collaborators.
type Options struct {
	ConfigDir  string
	ConfigPath string
	Config     *config.Config
	Summarizer *summarize.Orchestrator
	Log        zerolog.Logger

	// Context bounds every Gmail, Calendar and summarizer call. Quitting
	// cancels a child of it. Nil means context.Background().
	Context context.Context

	// Fetch overrides how a refresh gets mail. Nil fetches unread mail
	// through the authenticated Gmail service.
	Fetch digest.FetchFunc
}

type AppModel struct {
	// Core state
	services   *gmail.Services
	summarizer *summarize.Orchestrator
	cfg        *config.Config
	cfgPath    string
	configDir  string
	log        zerolog.Logger
	Err        error
	status     string
	notice     string

	// Auth flow
	uiEvents      chan interface{}
	userResponses chan string
	textInput     textinput.Model
	authURL       string

	// View state machine
	view         viewState
	digests      []model.Digest
	current      int // index into digests while in detail/event views
	candidateIdx int
	contextText  string
	eventInputs  [2]textinput.Model
	eventField   int

	// Sub-models
	digestList     list.Model
	detailViewport viewport.Model
	spinner        spinner.Model
	theme          theme

	// Layout
	width, height int

	// ctx is cancelled on quit so in-flight commands stop.
	ctx    context.Context
	cancel context.CancelFunc
	fetch  digest.FetchFunc

	// Program reference for sending messages from goroutines
	program *tea.Program
}

// SetProgram stores a reference to the tea.Program so goroutines can send
// progress messages back to the Update loop.
func (m *AppModel) SetProgram(p *tea.Program) {
	m.program = p
}

func NewAppModel(opts Options) AppModel {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	orch := opts.Summarizer
	if orch == nil {
		orch = summarize.NewOrchestrator(nil, nil, cfg.Summarizer.Model, opts.Log)
	}

	ti := textinput.New()
	ti.Placeholder = "Paste auth code or redirect URL here"
	ti.Focus()

	dl := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	dl.Title = "Unread"
	// Remove esc from the list's built-in Quit binding so it doesn't exit on home
	dl.KeyMap.Quit.SetKeys("q")

	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return AppModel{
		summarizer:     orch,
		cfg:            cfg,
		cfgPath:        opts.ConfigPath,
		configDir:      opts.ConfigDir,
		log:            opts.Log.With().Str("component", "tui").Logger(),
		ctx:            ctx,
		cancel:         cancel,
		fetch:          opts.Fetch,
		status:         "Authenticating...",
		view:           viewLoading,
		uiEvents:       make(chan interface{}),
		userResponses:  make(chan string, 1),
		textInput:      ti,
		eventInputs:    newEventInputs(),
		digestList:     dl,
		detailViewport: viewport.New(0, 0),
		spinner:        sp,
		theme:          newTheme(cfg.Display.DarkMode),
	}
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(m.authenticateCmd(), textinput.Blink, m.spinner.Tick)
}

func (m *AppModel) authenticateCmd() tea.Cmd {
	return func() tea.Msg {
		go func() {
			svcs, err := gmail.NewServicesInteractive(m.ctx, m.configDir, m.uiEvents, m.userResponses, m.log)
			m.uiEvents <- authResultMsg{services: svcs, err: err}
		}()

		// The auth flow sends a raw string (the auth URL) first when it
		// needs consent, then the goroutine above sends authResultMsg.
		event := <-m.uiEvents
		switch v := event.(type) {
		case string:
			return authURLMsg(v)
		default:
			return event
		}
	}
}

// quit cancels in-flight work and stops the program.
func (m *AppModel) quit() tea.Cmd {
	m.cancel()
	return tea.Quit
}

// waitForAuthCmd waits for the auth goroutine to finish, whether the code
// arrived through the loopback redirect or was pasted.
func (m *AppModel) waitForAuthCmd() tea.Cmd {
	return func() tea.Msg {
		return <-m.uiEvents
	}
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listH := msg.Height - 5 // room for notice + footer
		m.digestList.SetSize(msg.Width, listH)
		m.detailViewport.Width = msg.Width
		m.detailViewport.Height = msg.Height - 4 // room for footer
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.view != viewLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case authResultMsg:
		if msg.err != nil {
			m.Err = msg.err
			m.status = "Authentication failed!"
			return m, m.quit()
		}
		m.services = msg.services
		return m, m.startRefresh()

	case authURLMsg:
		m.authURL = string(msg)
		m.view = viewAuth
		return m, m.waitForAuthCmd()

	case summaryProgressMsg:
		m.status = fmt.Sprintf("Summarizing... %d / %d", msg.Done, msg.Total)
		return m, nil

	case digestsLoadedMsg:
		if msg.err != nil && !errors.Is(msg.err, summarize.ErrNoAPIKey) {
			m.Err = msg.err
			m.status = "Fetch failed!"
			return m, m.quit()
		}
		m.notice = ""
		if errors.Is(msg.err, summarize.ErrNoAPIKey) {
			m.notice = noKeyNotice
		}
		m.digests = msg.digests
		m.digestList.SetItems(digestsToItems(m.digests))
		m.digestList.Title = fmt.Sprintf("Unread (%d)", len(m.digests))
		m.view = viewList
		m.status = ""
		return m, nil

	case markedReadMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Mark read failed: %v", msg.err)
			return m, clearStatusAfter(3 * time.Second)
		}
		for i := range m.digests {
			if m.digests[i].ID == msg.id {
				m.digests[i].MarkedRead = true
			}
		}
		m.digestList.SetItems(digestsToItems(m.digests))
		m.refreshDetail()
		m.status = "Marked"
		return m, clearStatusAfter(2 * time.Second)

	case eventCreatedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Failed to create event: %v", msg.err)
			return m, clearStatusAfter(4 * time.Second)
		}
		m.status = "Event created: " + msg.link
		return m, clearStatusAfter(4 * time.Second)

	case actionResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
		} else {
			m.status = fmt.Sprintf("%s complete", msg.action)
		}
		return m, clearStatusAfter(2 * time.Second)

	case statusMsg:
		if string(msg) == "" {
			m.status = ""
		}
		return m, nil
	}

	// Delegate to active sub-model
	var cmd tea.Cmd
	switch m.view {
	case viewAuth:
		m.textInput, cmd = m.textInput.Update(msg)
	case viewList:
		m.digestList, cmd = m.digestList.Update(msg)
	case viewDetail:
		m.detailViewport, cmd = m.detailViewport.Update(msg)
	case viewEvent:
		m.eventInputs[m.eventField], cmd = m.eventInputs[m.eventField].Update(msg)
	}
	return m, cmd
}

func (m *AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global keys
	switch key {
	case "ctrl+c":
		return m, m.quit()
	}

	switch m.view {
	case viewAuth:
		switch key {
		case "enter":
			val := m.textInput.Value()
			m.textInput.Reset()
			m.view = viewLoading
			m.status = "Exchanging code..."
			select {
			case m.userResponses <- val:
			default:
			}
			return m, m.spinner.Tick
		case "esc":
			return m, m.quit()
		}
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd

	case viewLoading:
		if key == "q" {
			return m, m.quit()
		}
		return m, nil

	case viewList:
		// When the list is filtering, let it handle all keys except ctrl+c
		if m.digestList.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.digestList, cmd = m.digestList.Update(msg)
			return m, cmd
		}
		switch key {
		case "q":
			return m, m.quit()
		case "enter":
			return m.enterDigest()
		case "r":
			return m, m.startRefresh()
		case "d":
			return m, m.toggleDark()
		}
		var cmd tea.Cmd
		m.digestList, cmd = m.digestList.Update(msg)
		return m, cmd

	case viewDetail:
		d := m.digests[m.current]
		switch key {
		case "q":
			return m, m.quit()
		case "esc", "backspace":
			m.view = viewList
			m.contextText = ""
			return m, nil
		case "left", "h":
			m.selectCandidate(m.candidateIdx - 1)
			return m, nil
		case "right", "l", "tab":
			m.selectCandidate(m.candidateIdx + 1)
			return m, nil
		case "enter", "c":
			m.showContext()
			return m, nil
		case "m":
			if d.MarkedRead {
				return m, nil
			}
			m.status = "Marking read..."
			return m, m.markReadCmd(d.ID)
		case "a":
			m.startEvent(d)
			return m, textinput.Blink
		case "o":
			url := gmail.MessageURL(d.ID)
			return m, func() tea.Msg {
				return actionResultMsg{action: "Open in Gmail", err: gmail.OpenBrowser(url)}
			}
		case "d":
			cmd := m.toggleDark()
			m.refreshDetail()
			return m, cmd
		}
		var cmd tea.Cmd
		m.detailViewport, cmd = m.detailViewport.Update(msg)
		return m, cmd

	case viewEvent:
		switch key {
		case "esc":
			m.view = viewDetail
			return m, nil
		case "tab", "shift+tab", "up", "down":
			m.focusEventField(1 - m.eventField)
			return m, textinput.Blink
		case "enter":
			if m.eventField == eventFieldTitle {
				m.focusEventField(eventFieldWhen)
				return m, textinput.Blink
			}
			return m.submitEvent()
		}
		var cmd tea.Cmd
		m.eventInputs[m.eventField], cmd = m.eventInputs[m.eventField].Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *AppModel) enterDigest() (tea.Model, tea.Cmd) {
	selected := m.digestList.SelectedItem()
	if selected == nil {
		return m, nil
	}
	m.current = selected.(digestItem).idx
	m.candidateIdx = 0
	m.contextText = ""
	m.view = viewDetail
	m.refreshDetail()
	m.detailViewport.GotoTop()
	return m, nil
}

// selectCandidate moves the chip selection, clamped to the candidate list.
func (m *AppModel) selectCandidate(i int) {
	n := len(m.digests[m.current].Candidates)
	if n == 0 {
		return
	}
	m.candidateIdx = max(0, min(i, n-1))
	m.contextText = ""
	m.refreshDetail()
}

func (m *AppModel) showContext() {
	d := m.digests[m.current]
	if m.candidateIdx >= len(d.Candidates) {
		return
	}
	m.contextText = deadline.LocateContext(d.Summary, d.Body, d.Snippet, d.Candidates[m.candidateIdx])
	if m.contextText == "" {
		m.contextText = deadline.NoContext
	}
	m.refreshDetail()
}

func (m *AppModel) refreshDetail() {
	if m.current < 0 || m.current >= len(m.digests) {
		return
	}
	m.detailViewport.SetContent(m.renderDetail(m.digests[m.current]))
}

func (m *AppModel) submitEvent() (tea.Model, tea.Cmd) {
	d := m.digests[m.current]
	draft, err := gmail.DraftEvent(d,
		m.eventInputs[eventFieldTitle].Value(),
		m.eventInputs[eventFieldWhen].Value(),
		time.Local)
	if err != nil {
		m.status = err.Error()
		return m, clearStatusAfter(3 * time.Second)
	}
	m.view = viewDetail
	m.status = "Creating event..."
	return m, m.createEventCmd(draft)
}

// toggleDark flips the palette and persists the preference.
func (m *AppModel) toggleDark() tea.Cmd {
	m.cfg.Display.DarkMode = !m.cfg.Display.DarkMode
	m.theme = newTheme(m.cfg.Display.DarkMode)
	if m.cfgPath == "" {
		return nil
	}
	cfg := *m.cfg
	path := m.cfgPath
	return func() tea.Msg {
		if err := config.Save(path, &cfg); err != nil {
			return actionResultMsg{action: "Save preference", err: err}
		}
		return nil
	}
}

// Commands

func (m *AppModel) startRefresh() tea.Cmd {
	m.view = viewLoading
	m.status = "Fetching unread mail..."
	return tea.Batch(m.refreshCmd(), m.spinner.Tick)
}

func (m *AppModel) refreshCmd() tea.Cmd {
	ctx := m.ctx
	fetch := m.fetch
	if fetch == nil {
		svcs := m.services
		query, limit := m.cfg.Mail.Query, m.cfg.Mail.MaxResults
		fetch = func(ctx context.Context) ([]model.Mail, error) {
			return gmail.FetchUnread(ctx, svcs.Gmail, query, limit)
		}
	}
	return func() tea.Msg {
		progress := func(p model.SummaryProgress) {
			if m.program != nil {
				m.program.Send(summaryProgressMsg(p))
			}
		}
		digests, err := digest.Run(ctx, fetch, m.summarizer, progress)
		if err != nil && !errors.Is(err, summarize.ErrNoAPIKey) && !errors.Is(err, context.Canceled) {
			m.log.Error().Err(err).Msg("refresh failed")
		}
		return digestsLoadedMsg{digests: digests, err: err}
	}
}

func (m *AppModel) markReadCmd(id string) tea.Cmd {
	svcs := m.services
	ctx := m.ctx
	return func() tea.Msg {
		err := gmail.MarkRead(ctx, svcs.Gmail, id)
		if err == nil {
			if ferr := m.summarizer.Forget(ctx, id); ferr != nil {
				m.log.Warn().Err(ferr).Str("message_id", id).Msg("drop cached summary")
			}
		}
		return markedReadMsg{id: id, err: err}
	}
}

func (m *AppModel) createEventCmd(draft model.EventDraft) tea.Cmd {
	svcs := m.services
	ctx := m.ctx
	return func() tea.Msg {
		link, err := gmail.CreateEvent(ctx, svcs.Calendar, draft)
		return eventCreatedMsg{link: link, err: err}
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return statusMsg("")
	})
}

// View renders the appropriate view based on current state.
func (m *AppModel) View() string {
	// Auth code input
	if m.view == viewAuth {
		return "Please open this URL in your browser to authenticate:\n\n" +
			m.authURL + "\n\n" +
			"The browser redirect is picked up automatically; otherwise paste the code below.\n\n" +
			m.textInput.View()
	}

	// Error state
	if m.Err != nil {
		return "Error: " + m.Err.Error() + "\n"
	}

	// Loading/summarizing
	if m.view == viewLoading {
		status := m.status
		if status == "" {
			status = "Loading..."
		}
		return m.spinner.View() + " " + status + "\n"
	}

	var b strings.Builder

	switch m.view {
	case viewList:
		if m.notice != "" {
			b.WriteString(m.theme.notice.Render(m.notice))
			b.WriteString("\n")
		}
		if len(m.digests) == 0 {
			b.WriteString(m.theme.muted.Render("No unread messages."))
			b.WriteString("\n")
		} else {
			b.WriteString(m.digestList.View())
			b.WriteString("\n")
		}
		b.WriteString(m.listFooter())
	case viewDetail:
		b.WriteString(m.detailViewport.View())
		b.WriteString("\n")
		b.WriteString(m.detailFooter(m.digests[m.current]))
	case viewEvent:
		b.WriteString(m.renderEvent(m.digests[m.current]))
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
	}

	return b.String()
}
