package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cocreate/pkg/models"
	"cocreate/pkg/utils"
)

// SummaryLen bounds the summary shown on a project card.
const SummaryLen = 120

// ProjectCard renders one project.
func (r Renderer) ProjectCard(p models.Project) string {
	star := "☆"
	if p.IsFavorite {
		star = lipgloss.NewStyle().Foreground(r.Theme.InProgress).Render("★")
	}
	owner := p.OwnerName
	if owner == "" {
		owner = p.CreatorName
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(r.Theme.Text).Render(p.Title)
	meta := r.muted().Render(fmt.Sprintf("#%d · %s · %s · %s · ♥ %d · 💬 %d",
		p.ID, owner, nonEmpty(p.CategoryName, "Other"), FormatTime(p.CreatedAt, r.now()), p.Likes, p.Comments))

	lines := []string{star + " " + title, "  " + meta}
	summary := p.Summary
	if summary == "" {
		summary = p.Description
	}
	if summary != "" {
		lines = append(lines, "  "+utils.Truncate(summary, SummaryLen))
	}
	return lipgloss.NewStyle().Width(r.width()).Render(strings.Join(lines, "\n"))
}

// ProjectList renders a titled list of cards, or empty when there are none.
func (r Renderer) ProjectList(title string, ps []models.Project, empty string) string {
	var b strings.Builder
	b.WriteString(r.heading(title))
	b.WriteString("\n")
	if len(ps) == 0 {
		b.WriteString(r.muted().Render(empty))
		b.WriteString("\n")
		return b.String()
	}
	for _, p := range ps {
		b.WriteString(r.ProjectCard(p))
		b.WriteString("\n")
	}
	return b.String()
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
