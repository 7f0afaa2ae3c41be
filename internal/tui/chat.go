package tui

import (
	"errors"
	"fmt"
	"strings"

	"codeberg.org/talespin/server/internal/agent"
	"codeberg.org/talespin/server/internal/client"
	"codeberg.org/talespin/server/talespin/conversations"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

func NewChat(conv *conversations.Conversation, name string, width, height int) *ChatModel {
	ti := textinput.New()
	ti.Placeholder = "say something..."
	ti.Focus()
	ti.CharLimit = 4000
	ti.Prompt = "> "

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &ChatModel{
		input:          ti,
		spinner:        sp,
		viewport:       viewport.New(width, max(height-8, 5)),
		conversationID: conv.ID,
		characterID:    conv.CharacterID,
		characterName:  name,
		history:        append([]conversations.Message(nil), conv.Messages...),
	}

	m.resize(width, height)

	return m
}

func (m *ChatModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-6, 10)
	m.viewport.Width = width
	m.viewport.Height = max(height-8, 5)

	// word wrap follows the terminal width; a nil renderer falls back to plain text
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err == nil {
		m.renderer = r
	}

	m.refresh()
}

func (m *ChatModel) Update(msg tea.Msg, api API) (*ChatModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" && !m.isFetching {
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}

			m.input.SetValue("")
			m.isFetching = true
			m.notice = ""

			req := agent.ChatRequest{
				ConversationID:      m.conversationID,
				CharacterID:         m.characterID,
				Message:             text,
				ConversationHistory: m.history,
			}

			// shown right away; committed to history once the reply lands
			m.refreshWith(conversations.Message{Role: conversations.RoleUser, Content: text})

			return m, tea.Batch(sendChat(api, req), m.spinner.Tick)
		}

	case chatReplyMsg:
		m.isFetching = false
		m.history = append(m.history,
			conversations.Message{Role: conversations.RoleUser, Content: msg.message},
			conversations.Message{Role: conversations.RoleAssistant, Content: msg.resp.Response},
		)
		m.refresh()

		return m, nil

	case chatErrorMsg:
		m.isFetching = false
		m.notice = describeChatError(msg.err)
		m.input.SetValue(msg.message)
		m.refresh()

		return m, nil

	case spinner.TickMsg:
		if m.isFetching {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	}

	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *ChatModel) refresh() {
	m.refreshWith()
}

func (m *ChatModel) refreshWith(extra ...conversations.Message) {
	var b strings.Builder

	for _, msg := range append(append([]conversations.Message(nil), m.history...), extra...) {
		who := "you"
		if msg.Role == conversations.RoleAssistant {
			who = m.characterName
		}

		fmt.Fprintf(&b, "**%s:** %s\n\n", who, msg.Content)
	}

	content := b.String()

	if m.renderer != nil {
		if out, err := m.renderer.Render(content); err == nil {
			content = out
		}
	}

	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

func (m *ChatModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("chatting with " + m.characterName))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(warnStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(boxStyle.Width(max(m.width-2, 10)).Render(m.input.View()))
	b.WriteString("\n")

	if m.isFetching {
		b.WriteString(infoStyle.Render(m.spinner.View() + " " + m.characterName + " is thinking..."))
	}

	return b.String()
}

// turns API failures into a line the user can act on
func describeChatError(err error) string {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return "could not reach the server: " + err.Error()
	}

	switch apiErr.Code {
	case "quota_exceeded":
		return apiErr.Message + ". upgrade to premium or come back tomorrow"
	case "upstream_failure":
		return "the storyteller is unavailable right now, your message was not counted"
	}

	return apiErr.Error()
}
