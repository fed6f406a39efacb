package main

import "github.com/charmbracelet/lipgloss"

// Lipgloss styles for terminal output.
var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // Green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // Red
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // Yellow
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // Gray
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

// success marks a written file.
func success(text string) string { return successStyle.Render("✓ " + text) }

// failure marks the error that ended the run.
func failure(text string) string { return errorStyle.Render("✗ " + text) }

// warning marks a catalog warning.
func warning(text string) string { return warningStyle.Render("⚠ " + text) }

// dim renders secondary details such as file sizes.
func dim(text string) string { return dimStyle.Render(text) }

// bold renders the run summary.
func bold(text string) string { return boldStyle.Render(text) }
