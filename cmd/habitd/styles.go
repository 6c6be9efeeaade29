package main

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	p1Style = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("196"))

	p2Style = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("214"))

	p3Style = lipgloss.NewStyle().
		Foreground(lipgloss.Color("243"))

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)
