package chatui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Header lipgloss.Style
	User   lipgloss.Style
	Bot    lipgloss.Style
	Input  lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("62")).Padding(0, 1),
		User:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		Bot:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		Input:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
	}
}
