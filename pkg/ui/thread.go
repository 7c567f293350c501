package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cocreate/pkg/frontend"
	"cocreate/pkg/models"
)

// Message renders one message. Own messages are right-aligned.
func (r Renderer) Message(th *frontend.Thread, m models.Message) string {
	own := th.IsOwn(m)
	nameColor := r.Theme.Accent
	if own {
		nameColor = r.Theme.Own
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(nameColor).Render(m.SenderName) +
		" " + r.muted().Render(FormatTime(m.SentAt, r.now()))

	var lines []string
	lines = append(lines, header)
	if q := th.QuotePreview(m); q != "" {
		lines = append(lines, r.muted().Italic(true).Render("> "+q))
	}
	content := lipgloss.NewStyle().Foreground(r.Theme.Text)
	if m.Placeholder {
		content = content.Foreground(r.Theme.Placeholder)
	}
	lines = append(lines, content.Render(m.Content))
	if m.Placeholder {
		lines = append(lines, r.muted().Render("(not delivered)"))
	}

	w := r.width()
	block := strings.Join(lines, "\n")
	if limit := w * 3 / 4; lipgloss.Width(block) > limit {
		block = lipgloss.NewStyle().Width(limit).Render(block)
	}
	align := lipgloss.Left
	if own {
		align = lipgloss.Right
	}
	return lipgloss.PlaceHorizontal(w, align, block)
}

// Thread renders the whole conversation, a reply banner and an empty state.
func (r Renderer) Thread(th *frontend.Thread) string {
	var b strings.Builder
	if len(th.Messages) == 0 {
		b.WriteString(r.muted().Render("No messages yet. Start the conversation."))
		b.WriteString("\n")
	}
	for _, m := range th.Messages {
		b.WriteString(r.Message(th, m))
		b.WriteString("\n")
	}
	if th.ReplyTarget != nil {
		b.WriteString(r.muted().Render("Replying to " + th.ReplyTarget.SenderName))
		b.WriteString("\n")
	}
	return b.String()
}
