package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m *CharacterList) Update(msg tea.Msg, api API) (*CharacterList, tea.Cmd) {
	switch msg := msg.(type) {
	case charactersLoadedMsg:
		m.items = m.items[:0]

		for _, c := range msg.resp.Characters {
			m.items = append(m.items, characterView{ID: c.ID, Name: c.Name, Description: c.Description})
		}

		m.loading = false
		m.cursor = 0

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}

		case "enter":
			if m.cursor < len(m.items) {
				return m, startConversation(api, m.items[m.cursor])
			}
		}
	}

	return m, nil
}

func (m *CharacterList) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("pick a character"))
	b.WriteString("\n")

	if m.loading {
		b.WriteString(infoStyle.Render("loading..."))
		return b.String()
	}

	if len(m.items) == 0 {
		b.WriteString(infoStyle.Render("no public characters yet"))
		return b.String()
	}

	for i, c := range m.items {
		line := c.Name + "  " + infoStyle.Render(truncate(c.Description, 60))

		if i == m.cursor {
			b.WriteString(itemSelectedStyle.Render("> " + line))
		} else {
			b.WriteString(itemStyle.Render("  " + line))
		}

		b.WriteString("\n")
	}

	return b.String()
}
