package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	frameStyle   = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).Padding(0, 1)
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true) // purple
	markedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("227"))           // yellow
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true) // blue
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("227"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)
