package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorWhite     = lipgloss.Color("#FFFFFF")
	colorLightGray = lipgloss.Color("#CCCCCC")
	colorGray      = lipgloss.Color("#888888")
	colorDarkGray  = lipgloss.Color("#444444")
	colorPink      = lipgloss.Color("#E0457B")
	colorAmber     = lipgloss.Color("#F2A541")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite).
			MarginBottom(1)

	itemStyle = lipgloss.NewStyle().
			Foreground(colorLightGray).
			PaddingLeft(2)

	itemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorWhite).
				Bold(true).
				PaddingLeft(2)

	likedStyle = lipgloss.NewStyle().
			Foreground(colorPink).
			Bold(true)

	pendingStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorAmber).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorGray)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDarkGray).
			Italic(true).
			MarginTop(1)
)

const logo = `
 ▀█▀ ▄▀█ █   █▀▀ █▀ █▀█ █ █▄ █
  █  █▀█ █▄▄ ██▄ ▄█ █▀▀ █ █ ▀█
`
