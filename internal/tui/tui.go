package tui

import (
	"errors"
	"fmt"
	"strings"

	"codeberg.org/talespin/server/internal/client"
	"codeberg.org/talespin/server/internal/quota"
	tea "github.com/charmbracelet/bubbletea"
)

func NewApp(api API, opts Options) *Model {
	return &Model{
		state:  StateFeed,
		api:    api,
		events: opts.Events,
		feed:   NewFeed(api, opts),
		cast:   &CharacterList{loading: true},
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(loadFeed(m.api), loadUsage(m.api), waitForEvent(m.events))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			m.err = nil
			m.state = StateFeed
			return m, nil
		}

		// single letter shortcuts would eat chat input
		if m.state != StateChat {
			switch msg.String() {
			case "q":
				return m, tea.Quit

			case "r":
				m.err = nil
				return m, tea.Batch(loadFeed(m.api), loadUsage(m.api))

			case "c":
				m.err = nil
				m.state = StateCharacters
				m.cast.loading = true
				return m, loadCharacters(m.api)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ErrorMsg:
		m.err = msg.err
		return m, nil

	case SessionExpiredMsg:
		m.status = "session expired, log in again to like or chat"
		return m, nil

	case usageMsg:
		m.usage = msg.usage
		return m, nil

	case feedEventMsg:
		m.feed.observe(msg.msg)
		return m, waitForEvent(m.events)

	case streamClosedMsg:
		return m, nil

	case feedLoadedMsg, likeResultMsg:
		var cmd tea.Cmd
		m.feed, cmd = m.feed.Update(msg)
		return m, cmd

	case charactersLoadedMsg:
		var cmd tea.Cmd
		m.cast, cmd = m.cast.Update(msg, m.api)
		return m, cmd

	case conversationStartedMsg:
		m.chat = NewChat(msg.conversation, msg.name, m.width, m.height)
		m.state = StateChat
		return m, nil

	case chatReplyMsg:
		usage := msg.resp.Usage
		m.usage = &usage

		return m, m.updateChat(msg)

	case chatErrorMsg:
		return m, m.updateChat(msg)
	}

	var cmd tea.Cmd

	switch m.state {
	case StateFeed:
		m.feed, cmd = m.feed.Update(msg)

	case StateCharacters:
		m.cast, cmd = m.cast.Update(msg, m.api)

	case StateChat:
		cmd = m.updateChat(msg)
	}

	return m, cmd
}

// replies land in the chat even if the user went back to the feed
func (m *Model) updateChat(msg tea.Msg) tea.Cmd {
	if m.chat == nil {
		return nil
	}

	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg, m.api)

	return cmd
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(logo))
	b.WriteString("\n")

	if line := usageLine(m.usage); line != "" {
		b.WriteString(infoStyle.Render(line))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(warnStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorView(m.err))
		b.WriteString("\n")
	}

	switch m.state {
	case StateFeed:
		b.WriteString(m.feed.View())
		b.WriteString(helpStyle.Render("j/k: move  l/space: like  c: characters  r: reload  q: quit"))

	case StateCharacters:
		b.WriteString(m.cast.View())
		b.WriteString(helpStyle.Render("j/k: move  enter: chat  esc: back to feed"))

	case StateChat:
		if m.chat != nil {
			b.WriteString(m.chat.View())
		}

		b.WriteString(helpStyle.Render("enter: send  esc: back to feed  ctrl+c: quit"))
	}

	return b.String()
}

// remaining daily chats for the header
func usageLine(u *quota.Snapshot) string {
	if u == nil {
		return ""
	}

	if u.IsPremium || u.Remaining < 0 {
		return "premium: unlimited chats"
	}

	line := fmt.Sprintf("chats today: %d/%d", u.Used, u.Limit)
	if u.ResetsAt != nil {
		line += " (resets " + u.ResetsAt.Local().Format("Jan 2 15:04") + ")"
	}

	return line
}

func errorView(err error) string {
	if errors.Is(err, client.ErrUnauthorized) {
		return warnStyle.Render("not logged in: set TALESPIN_TOKEN or pass -token")
	}

	return warnStyle.Render(fmt.Sprintf("error: %v", err))
}
