// Package chatui is the terminal rendition of the chat panel: a transcript
// viewport above a text input, with bot replies rendered as markdown.
package chatui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Chatter answers a chat message. It never fails.
type Chatter interface {
	Chat(ctx context.Context, message string) string
}

// Transcript commands, shared with the editor bridge.
const (
	CommandUserMessage = "userMessage"
	CommandBotReply    = "botReply"
)

// Message is one transcript entry.
type Message struct {
	Command string
	Text    string
	Time    time.Time
}

// replyMsg carries a bot reply back into the update loop.
type replyMsg string

const (
	headerHeight = 1
	inputHeight  = 3
	padding      = 2
)

// Model is the chat program state.
type Model struct {
	ctx     context.Context
	chatter Chatter
	style   string

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	styles   styles

	history []Message
	waiting bool
	ready   bool
	width   int
}

// New creates a chat model. style is a glamour style name; "auto" detects
// the terminal background.
func New(ctx context.Context, chatter Chatter, style string) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask anything... (Enter to send, Ctrl+C to exit)"
	ta.ShowLineNumbers = false
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	if style == "" {
		style = "auto"
	}

	return Model{
		ctx:      ctx,
		chatter:  chatter,
		style:    style,
		textarea: ta,
		spinner:  sp,
		styles:   defaultStyles(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		height := msg.Height - headerHeight - inputHeight - padding
		if height < 1 {
			height = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.textarea.SetWidth(max(1, msg.Width-2))
		m.renderer = m.newRenderer(msg.Width - 4)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.textarea.Value())
			if text == "" || m.waiting {
				return m, nil
			}
			m.textarea.Reset()
			m.history = append(m.history, Message{Command: CommandUserMessage, Text: text, Time: time.Now()})
			m.waiting = true
			m.refresh()
			return m, tea.Batch(m.ask(text), m.spinner.Tick)
		}

	case replyMsg:
		m.waiting = false
		m.history = append(m.history, Message{Command: CommandBotReply, Text: string(msg), Time: time.Now()})
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) ask(text string) tea.Cmd {
	return func() tea.Msg {
		return replyMsg(m.chatter.Chat(m.ctx, text))
	}
}

// History returns the transcript.
func (m Model) History() []Message {
	return append([]Message(nil), m.history...)
}

func (m *Model) newRenderer(wrap int) *glamour.TermRenderer {
	if wrap < 20 {
		wrap = 20
	}
	opt := glamour.WithStandardStyle(m.style)
	if m.style == "auto" {
		opt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(wrap))
	if err != nil {
		return nil
	}
	return r
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m Model) renderHistory() string {
	var b strings.Builder
	for i, msg := range m.history {
		if i > 0 {
			b.WriteString("\n")
		}
		switch msg.Command {
		case CommandUserMessage:
			b.WriteString(m.styles.User.Render("You: " + msg.Text))
			b.WriteString("\n")
		default:
			b.WriteString(m.styles.Bot.Render("Assistant:"))
			b.WriteString("\n")
			b.WriteString(m.renderMarkdown(msg.Text))
		}
	}
	return b.String()
}

func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content + "\n"
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content + "\n"
	}
	return rendered
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	status := "fastcoding chat"
	if m.waiting {
		status += " " + m.spinner.View() + " thinking..."
	}
	header := m.styles.Header.Width(m.width).Render(status)
	input := m.styles.Input.Render(m.textarea.View())
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), input)
}

// Run starts the chat program on the terminal.
func Run(ctx context.Context, chatter Chatter, style string) error {
	p := tea.NewProgram(New(ctx, chatter, style), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
