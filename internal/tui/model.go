package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ATsirtiris/rag-chatbot/internal"
	"github.com/ATsirtiris/rag-chatbot/internal/export"
)

// tickInterval drives the typing-indicator animation and toast refresh.
const tickInterval = 400 * time.Millisecond

type tickMsg time.Time

type sendDoneMsg struct{}

type resetDoneMsg struct{}

type healthMsg struct {
	status internal.HealthStatus
}

type savedMsg struct {
	path string
	err  error
}

// Model is the interactive chat shell. All conversation state lives in the
// Conversation; the model only holds presentation concerns.
type Model struct {
	conv     *internal.Conversation
	client   *internal.Client
	notifier *internal.Notifier
	store    internal.Store

	input textinput.Model
	theme Theme
	width int
	dots  int
}

// New creates the chat shell, restoring the persisted theme preference.
func New(conv *internal.Conversation, client *internal.Client, notifier *internal.Notifier, store internal.Store) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask anything..."
	ti.Prompt = "> "
	ti.Focus()

	themeName := ""
	if store != nil {
		themeName, _ = store.Get(internal.KeyTheme)
	}

	return Model{
		conv:     conv,
		client:   client,
		notifier: notifier,
		store:    store,
		input:    ti,
		theme:    ThemeByName(themeName),
		width:    80,
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 4
		return m, nil

	case tickMsg:
		if m.conv.Awaiting() {
			m.dots = m.dots%3 + 1
		} else {
			m.dots = 0
		}
		// the tick also refreshes expired toasts
		return m, tick()

	case sendDoneMsg, resetDoneMsg:
		return m, nil

	case healthMsg:
		m.notifier.Push(internal.HealthText(msg.status))
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.notifier.Push("Error saving chat: " + msg.err.Error())
		} else {
			m.notifier.Push("Chat exported to " + msg.path)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.notifier.Close()
			return m, tea.Quit
		case "enter":
			return m.submit()
		case "ctrl+n":
			return m, m.resetCmd()
		case "ctrl+g":
			return m, m.healthCmd()
		case "ctrl+s":
			return m, m.saveCmd()
		case "ctrl+r":
			opts := m.conv.Options()
			opts.UseRAG = !opts.UseRAG
			m.conv.SetOptions(opts)
			return m, nil
		case "ctrl+t":
			return m.toggleTheme()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.conv.Awaiting() {
		return m, nil
	}
	m.input.Reset()

	conv := m.conv
	return m, func() tea.Msg {
		conv.Send(context.Background(), text)
		return sendDoneMsg{}
	}
}

func (m Model) resetCmd() tea.Cmd {
	conv := m.conv
	return func() tea.Msg {
		conv.Reset(context.Background())
		return resetDoneMsg{}
	}
}

func (m Model) healthCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return healthMsg{status: client.Health(context.Background())}
	}
}

// saveCmd exports the transcript to session_<id>.json in the working
// directory, preferring the backend's persisted copy over the local log.
func (m Model) saveCmd() tea.Cmd {
	conv, client := m.conv, m.client
	return func() tea.Msg {
		sessionID := conv.SessionID()
		if sessionID == "" {
			return savedMsg{err: errors.New("no active chat to save")}
		}

		doc, err := client.FetchSession(context.Background(), sessionID)
		if err != nil {
			internal.LogDebug("falling back to local transcript: %v", err)
			doc = conv.Document()
		}

		exporter := &export.JSONExporter{}
		name := export.Filename(sessionID, exporter)
		f, err := os.Create(name)
		if err != nil {
			return savedMsg{err: err}
		}
		defer f.Close()

		if err := exporter.Export(doc, f); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{path: name}
	}
}

func (m Model) toggleTheme() (tea.Model, tea.Cmd) {
	if m.theme.Name == "dark" {
		m.theme = LightTheme()
	} else {
		m.theme = DarkTheme()
	}
	if m.store != nil {
		if err := m.store.Set(internal.KeyTheme, m.theme.Name); err != nil {
			internal.LogWarn("failed to persist theme: %v", err)
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	stats := m.conv.Stats()
	opts := m.conv.Options()

	b.WriteString(m.theme.Title.Render("RAG Chatbot"))
	b.WriteString(m.theme.Subtitle.Render(" — " + m.conv.Title()))
	b.WriteString("\n")
	b.WriteString(m.theme.Subtitle.Render(fmt.Sprintf(
		"in %d • out %d • p50 %dms • p95 %dms", stats.TokensIn, stats.TokensOut, stats.P50, stats.P95)))
	b.WriteString("\n")

	mode := "RAG: OFF"
	if opts.UseRAG {
		mode = fmt.Sprintf("RAG: ON (k=%d)", opts.TopK)
	}
	session := "no session"
	if id := m.conv.SessionID(); id != "" {
		session = "session " + shortID(id)
	}
	b.WriteString(m.theme.Subtitle.Render(mode + " • " + session))
	b.WriteString("\n\n")

	for _, t := range m.notifier.Active() {
		b.WriteString(m.theme.Toast.Render(t.Text))
		b.WriteString("\n")
	}

	for _, msg := range m.conv.Messages() {
		m.renderMessage(&b, msg)
	}

	if m.conv.Awaiting() {
		b.WriteString(m.theme.Typing.Render("Thinking" + strings.Repeat(".", m.dots+1)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render(
		"enter send • ctrl+n new • ctrl+g health • ctrl+s save • ctrl+r rag • ctrl+t theme • esc quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderMessage(b *strings.Builder, msg internal.Message) {
	if msg.Role == internal.RoleUser {
		b.WriteString(m.theme.User.Render("you"))
		b.WriteString(" " + msg.Content + "\n")
		return
	}

	b.WriteString(m.theme.Assistant.Render("ai"))
	b.WriteString(" " + msg.Content + "\n")

	var meta []string
	if msg.TokensIn > 0 || msg.TokensOut > 0 {
		meta = append(meta, fmt.Sprintf("tok in %d • out %d", msg.TokensIn, msg.TokensOut))
	}
	if msg.LatencyMs > 0 {
		meta = append(meta, fmt.Sprintf("%dms", msg.LatencyMs))
	}
	if len(msg.Sources) > 0 {
		meta = append(meta, "sources: "+formatSources(msg.Sources))
	}
	if len(meta) > 0 {
		b.WriteString(m.theme.Meta.Render("   " + strings.Join(meta, " • ")))
		b.WriteString("\n")
	}
}

// formatSources shows up to three citations as "file (p.N)".
func formatSources(sources []internal.Citation) string {
	if len(sources) > 3 {
		sources = sources[:3]
	}
	parts := make([]string, 0, len(sources))
	for _, s := range sources {
		name := s.Source
		if idx := strings.LastIndex(name, "/"); idx >= 0 {
			name = name[idx+1:]
		}
		if name == "" {
			name = "?"
		}
		if s.Page != nil {
			name = fmt.Sprintf("%s (p.%d)", name, *s.Page)
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, ", ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
