package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cocreate/pkg/frontend"
	"cocreate/pkg/models"
	"cocreate/pkg/utils"
)

// TroubleDescLen bounds the description shown in a trouble row.
const TroubleDescLen = 100

// StatusLabel is the human label of a trouble status.
func StatusLabel(status string) string {
	switch status {
	case models.TroubleUnresolved:
		return "Unresolved"
	case models.TroubleInProgress:
		return "In progress"
	case models.TroubleResolved:
		return "Resolved"
	}
	return status
}

func (r Renderer) statusBadge(status string) string {
	color := r.Theme.Muted
	switch status {
	case models.TroubleUnresolved:
		color = r.Theme.Unresolved
	case models.TroubleInProgress:
		color = r.Theme.InProgress
	case models.TroubleResolved:
		color = r.Theme.Resolved
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render("[" + StatusLabel(status) + "]")
}

// TroubleRow renders one trouble.
func (r Renderer) TroubleRow(it frontend.TroubleItem) string {
	head := fmt.Sprintf("#%d %s %s", it.ID, r.statusBadge(it.Status),
		lipgloss.NewStyle().Foreground(r.Theme.Accent).Render(it.Category))
	meta := r.muted().Render(fmt.Sprintf("%s · %s · 💬 %d",
		nonEmpty(it.CreatorName, "unknown"), FormatTime(it.CreatedAt, r.now()), it.Comments))
	body := "  " + utils.Truncate(it.Description, TroubleDescLen)
	return lipgloss.NewStyle().Width(r.width()).Render(head + "\n" + body + "\n  " + meta)
}

// TroubleList renders the project header and its troubles.
func (r Renderer) TroubleList(projectTitle string, items []frontend.TroubleItem) string {
	var b strings.Builder
	b.WriteString(r.heading(projectTitle))
	b.WriteString("\n")
	if len(items) == 0 {
		b.WriteString(r.muted().Render("No troubles yet."))
		b.WriteString("\n")
		return b.String()
	}
	for _, it := range items {
		b.WriteString(r.TroubleRow(it))
		b.WriteString("\n")
	}
	return b.String()
}

// Participants renders avatars, names and roles.
func (r Renderer) Participants(ps []models.Participant) string {
	if len(ps) == 0 {
		return r.muted().Render("No participants.") + "\n"
	}
	avatar := lipgloss.NewStyle().Bold(true).Foreground(r.Theme.Accent)
	var b strings.Builder
	for _, p := range ps {
		fmt.Fprintf(&b, "%s %s %s\n", avatar.Render("("+p.Avatar+")"), p.Name, r.muted().Render(p.Role))
	}
	return b.String()
}
