package ui

import (
	"github.com/charmbracelet/lipgloss"

	"cocreate/pkg/frontend"
)

// Toast renders a notification box.
func (r Renderer) Toast(t frontend.Toast) string {
	color := r.Theme.Accent
	if t.Variant == frontend.VariantDestructive {
		color = r.Theme.Danger
	}
	body := lipgloss.NewStyle().Bold(true).Foreground(color).Render(t.Title)
	if t.Description != "" {
		body += "\n" + lipgloss.NewStyle().Foreground(r.Theme.Text).Render(t.Description)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		MaxWidth(r.width()).
		Render(body)
}
