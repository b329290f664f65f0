package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vincentsto199-blip/Comic/internal/auth"
	"github.com/vincentsto199-blip/Comic/internal/catalog"
	"github.com/vincentsto199-blip/Comic/internal/library"
	"github.com/vincentsto199-blip/Comic/internal/models"
	"github.com/vincentsto199-blip/Comic/internal/player"
	"github.com/vincentsto199-blip/Comic/internal/repositories"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	ResultsView
	IssueView
)

const (
	debounceDelay    = 350 * time.Millisecond
	playerTickEvery  = 500 * time.Millisecond
	minSuggestionLen = 2
)

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	catalog    *catalog.Client
	library    *library.Library
	auth       *auth.Service
	controller *player.Controller
	searches   *repositories.SearchRepository
	width      int
	height     int

	searchInput textinput.Model
	searchSeq   int
	suggestions []catalog.Issue
	suggestIdx  int
	recent      []string

	resultsList list.Model
	results     []catalog.Issue

	issue          *models.Issue
	soundtrackList list.Model
	soundtracks    []*models.Soundtrack

	snapshot player.Snapshot
	notice   string
	err      error
	help     help.Model
	keys     keyMap
}

type debounceMsg struct {
	seq int
}

type suggestionsMsg struct {
	seq    int
	issues []catalog.Issue
	err    error
}

type recentMsg struct {
	queries []string
}

type resultsMsg struct {
	query  string
	issues []catalog.Issue
	err    error
}

type issueOpenedMsg struct {
	issue       *models.Issue
	soundtracks []*models.Soundtrack
	err         error
}

type soundtracksMsg struct {
	soundtracks []*models.Soundtrack
	err         error
}

type playerTickMsg time.Time

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, cat *catalog.Client, lib *library.Library, authSvc *auth.Service, controller *player.Controller, searches *repositories.SearchRepository) *Model {
	input := textinput.New()
	input.Placeholder = "Search comic issues..."
	input.Focus()
	input.CharLimit = 120

	return &Model{
		ctx:         ctx,
		view:        SearchView,
		catalog:     cat,
		library:     lib,
		auth:        authSvc,
		controller:  controller,
		searches:    searches,
		searchInput: input,
		suggestIdx:  -1,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init starts the input cursor, loads recent searches, and begins the player ticker.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadRecent(), m.tickPlayer())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.resultsList.Width() == 0 {
			m.resultsList.SetSize(msg.Width-4, msg.Height-10)
		}
		if m.soundtrackList.Width() == 0 {
			m.soundtrackList.SetSize(msg.Width-4, msg.Height-10)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SearchView:
			return m.handleSearchKeys(msg)
		case ResultsView:
			return m.handleResultsKeys(msg)
		case IssueView:
			return m.handleIssueKeys(msg)
		}

	case debounceMsg:
		if msg.seq != m.searchSeq {
			return m, nil
		}
		query := strings.TrimSpace(m.searchInput.Value())
		if len(query) < minSuggestionLen {
			m.suggestions = nil
			m.suggestIdx = -1
			return m, nil
		}
		return m, m.fetchSuggestions(msg.seq, query)

	case suggestionsMsg:
		if msg.seq != m.searchSeq || msg.err != nil {
			return m, nil
		}
		m.suggestions = msg.issues
		m.suggestIdx = -1
		return m, nil

	case recentMsg:
		m.recent = msg.queries
		return m, nil

	case resultsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.results = msg.issues
		items := make([]list.Item, len(msg.issues))
		for i, issue := range msg.issues {
			items[i] = issueItem{issue: issue}
		}
		m.resultsList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.resultsList.Title = fmt.Sprintf("Results for '%s'", msg.query)
		m.resultsList.SetSize(m.width-4, m.height-10)
		m.view = ResultsView
		return m, m.loadRecent()

	case issueOpenedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.issue = msg.issue
		m.setSoundtracks(msg.soundtracks)
		m.view = IssueView
		return m, nil

	case soundtracksMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.setSoundtracks(msg.soundtracks)
		return m, nil

	case playerTickMsg:
		m.snapshot = m.controller.Snapshot()
		return m, m.tickPlayer()
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SearchView:
		return m.renderSearch()
	case ResultsView:
		return m.renderResults()
	case IssueView:
		return m.renderIssue()
	default:
		return ""
	}
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.searchInput.SetValue("")
		m.suggestions = nil
		m.suggestIdx = -1
		m.err = nil
		return m, nil
	case "up":
		if len(m.suggestions) > 0 && m.suggestIdx > -1 {
			m.suggestIdx--
		}
		return m, nil
	case "down":
		if m.suggestIdx < len(m.suggestions)-1 {
			m.suggestIdx++
		}
		return m, nil
	case "enter":
		if m.suggestIdx >= 0 && m.suggestIdx < len(m.suggestions) {
			return m, m.openIssue(m.suggestions[m.suggestIdx])
		}
		query := strings.TrimSpace(m.searchInput.Value())
		if query == "" {
			return m, nil
		}
		return m, m.runSearch(query)
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.searchInput.Value() != before {
		m.searchSeq++
		return m, tea.Batch(cmd, m.debounce(m.searchSeq))
	}
	return m, cmd
}

func (m *Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = SearchView
		return m, nil
	case "enter":
		if selected, ok := m.resultsList.SelectedItem().(issueItem); ok {
			return m, m.openIssue(selected.issue)
		}
		return m, nil
	}

	if handled, cmd := m.handlePlayerKeys(msg); handled {
		return m, cmd
	}

	var cmd tea.Cmd
	m.resultsList, cmd = m.resultsList.Update(msg)
	return m, cmd
}

func (m *Model) handleIssueKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		if len(m.results) > 0 {
			m.view = ResultsView
		} else {
			m.view = SearchView
		}
		return m, nil
	case "enter":
		if selected, ok := m.soundtrackList.SelectedItem().(soundtrackItem); ok {
			return m, m.playSoundtrack(selected.soundtrack)
		}
		return m, nil
	case "u":
		return m, m.vote(1)
	case "d":
		return m, m.vote(-1)
	}

	if handled, cmd := m.handlePlayerKeys(msg); handled {
		return m, cmd
	}

	var cmd tea.Cmd
	m.soundtrackList, cmd = m.soundtrackList.Update(msg)
	return m, cmd
}

// handlePlayerKeys services playback bindings shared by the results and issue views.
func (m *Model) handlePlayerKeys(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case " ":
		m.controller.TogglePlay()
	case "n":
		m.controller.PlayNext()
	case "p":
		m.controller.PlayPrev()
	case "r":
		if m.snapshot.Status == player.StatusBlocked {
			m.controller.Retry(m.ctx)
		}
	case "+", "=":
		m.controller.SetVolume(m.snapshot.Volume + 5)
	case "-":
		m.controller.SetVolume(m.snapshot.Volume - 5)
	default:
		return false, nil
	}
	m.snapshot = m.controller.Snapshot()
	return true, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ResultsView:
		m.resultsList, cmd = m.resultsList.Update(msg)
	case IssueView:
		m.soundtrackList, cmd = m.soundtrackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) setSoundtracks(soundtracks []*models.Soundtrack) {
	m.soundtracks = soundtracks
	items := make([]list.Item, len(soundtracks))
	for i, st := range soundtracks {
		items[i] = soundtrackItem{soundtrack: st}
	}
	selected := m.soundtrackList.Index()
	m.soundtrackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.soundtrackList.Title = m.issue.Title()
	m.soundtrackList.SetSize(m.width-4, m.height-10)
	if selected > 0 && selected < len(items) {
		m.soundtrackList.Select(selected)
	}
}

func (m *Model) viewerID() string {
	if user := m.auth.Current(); user != nil {
		return user.ID()
	}
	return ""
}

func (m *Model) debounce(seq int) tea.Cmd {
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq}
	})
}

func (m *Model) tickPlayer() tea.Cmd {
	return tea.Tick(playerTickEvery, func(t time.Time) tea.Msg {
		return playerTickMsg(t)
	})
}

func (m *Model) loadRecent() tea.Cmd {
	return func() tea.Msg {
		queries, err := m.searches.Recent(0)
		if err != nil {
			return recentMsg{}
		}
		return recentMsg{queries: queries}
	}
}

func (m *Model) fetchSuggestions(seq int, query string) tea.Cmd {
	return func() tea.Msg {
		issues, err := m.catalog.Suggest(m.ctx, query)
		return suggestionsMsg{seq: seq, issues: issues, err: err}
	}
}

func (m *Model) runSearch(query string) tea.Cmd {
	return func() tea.Msg {
		if err := m.searches.Record(query); err != nil {
			return resultsMsg{query: query, err: err}
		}
		issues, err := m.catalog.Search(m.ctx, query)
		return resultsMsg{query: query, issues: issues, err: err}
	}
}

func (m *Model) openIssue(issue catalog.Issue) tea.Cmd {
	viewerID := m.viewerID()
	return func() tea.Msg {
		resolved, err := m.library.ResolveIssue(issue)
		if err != nil {
			return issueOpenedMsg{err: err}
		}
		soundtracks, err := m.library.ListSoundtracks(resolved.ID(), viewerID)
		return issueOpenedMsg{issue: resolved, soundtracks: soundtracks, err: err}
	}
}

func (m *Model) playSoundtrack(soundtrack *models.Soundtrack) tea.Cmd {
	tracks := soundtrack.Tracks()
	if len(tracks) == 0 {
		m.notice = "This soundtrack has no tracks."
		return nil
	}
	m.notice = ""
	m.controller.Start(m.ctx)
	if err := m.controller.PlayQueue(tracks, tracks[0]); err != nil {
		m.notice = fmt.Sprintf("Playback failed: %v", err)
	}
	m.snapshot = m.controller.Snapshot()
	return nil
}

func (m *Model) vote(direction int) tea.Cmd {
	user := m.auth.Current()
	if user == nil {
		m.notice = "Sign in to vote."
		return nil
	}
	selected, ok := m.soundtrackList.SelectedItem().(soundtrackItem)
	if !ok {
		return nil
	}
	m.notice = ""
	issueID := m.issue.ID()
	soundtrackID := selected.soundtrack.ID()
	userID := user.ID()
	return func() tea.Msg {
		if err := m.library.Vote(soundtrackID, userID, direction); err != nil {
			return soundtracksMsg{err: err}
		}
		soundtracks, err := m.library.ListSoundtracks(issueID, userID)
		return soundtracksMsg{soundtracks: soundtracks, err: err}
	}
}

func (m *Model) renderSearch() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Comic Soundtracks"))
	b.WriteString("\n\n")
	b.WriteString(m.searchInput.View())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	if len(m.suggestions) > 0 {
		b.WriteString("\n")
		for i, issue := range m.suggestions {
			line := library.IssueTitle(issue)
			if issue.CoverDate != "" {
				line = fmt.Sprintf("%s (%s)", line, issue.CoverDate)
			}
			if i == m.suggestIdx {
				b.WriteString(styles.ok.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	} else if len(m.recent) > 0 && m.searchInput.Value() == "" {
		b.WriteString("\n")
		b.WriteString(styles.help.Render("Recent searches:"))
		b.WriteString("\n")
		for _, query := range m.recent {
			b.WriteString(styles.help.Render("  " + query))
			b.WriteString("\n")
		}
	}

	enterKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search"))
	escKey := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear"))
	quitKey := key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{enterKey, escKey, quitKey}))
	return b.String()
}

func (m *Model) renderResults() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n%s", m.resultsList.View(), m.renderPlayerBar(), helpView)
}

func (m *Model) renderIssue() string {
	voteHint := m.help.ShortHelpView([]key.Binding{
		m.keys.enter, m.keys.voteUp, m.keys.voteDown, m.keys.back, m.keys.quit,
	})

	body := m.soundtrackList.View()
	if m.err != nil {
		body = fmt.Sprintf("%s\n%s", body, styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if m.notice != "" {
		body = fmt.Sprintf("%s\n%s", body, styles.warn.Render(m.notice))
	}
	return fmt.Sprintf("%s\n%s\n%s", body, m.renderPlayerBar(), voteHint)
}

// renderPlayerBar renders the persistent playback line beneath list views.
func (m *Model) renderPlayerBar() string {
	snap := m.snapshot

	if snap.Status == player.StatusBlocked {
		message := snap.Message
		if message == "" {
			message = "Player blocked."
		}
		return styles.err.Render(fmt.Sprintf("✗ %s Press r to retry.", message))
	}

	if snap.Track == nil {
		if snap.Status == player.StatusLoading {
			return styles.help.Render("Player loading...")
		}
		return styles.help.Render("Nothing playing. Select a soundtrack and press enter.")
	}

	icon := "⏸"
	if snap.Playing {
		icon = "▶"
	}

	bar := fmt.Sprintf("%s %s  %s/%s  vol %d%%",
		icon, snap.Track.Title, fmtClock(snap.Elapsed), fmtClock(snap.Duration), snap.Volume)
	if snap.QueueSize > 1 {
		bar = fmt.Sprintf("%s  (%d/%d)", bar, snap.Index+1, snap.QueueSize)
	}
	if snap.Message != "" {
		bar = fmt.Sprintf("%s  %s", bar, styles.warn.Render(snap.Message))
	}
	return styles.ok.Render(bar)
}

// fmtClock renders seconds as m:ss.
func fmtClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
