// Package ui renders the client's pages for a terminal.
package ui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// DefaultWidth is used when a Renderer has no width set.
const DefaultWidth = 80

// Theme is the color palette.
type Theme struct {
	Accent      lipgloss.Color
	Muted       lipgloss.Color
	Text        lipgloss.Color
	Own         lipgloss.Color
	Danger      lipgloss.Color
	Unresolved  lipgloss.Color
	InProgress  lipgloss.Color
	Resolved    lipgloss.Color
	Placeholder lipgloss.Color
}

var DefaultTheme = Theme{
	Accent:      lipgloss.Color("12"),
	Muted:       lipgloss.Color("245"),
	Text:        lipgloss.Color("252"),
	Own:         lipgloss.Color("14"),
	Danger:      lipgloss.Color("9"),
	Unresolved:  lipgloss.Color("9"),
	InProgress:  lipgloss.Color("11"),
	Resolved:    lipgloss.Color("10"),
	Placeholder: lipgloss.Color("240"),
}

// Renderer turns models into styled text.
type Renderer struct {
	Width int
	Theme Theme
	// Now anchors relative timestamps; defaults to time.Now.
	Now func() time.Time
}

func New(width int) Renderer {
	return Renderer{Width: width, Theme: DefaultTheme}
}

func (r Renderer) width() int {
	if r.Width <= 0 {
		return DefaultWidth
	}
	return r.Width
}

func (r Renderer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r Renderer) muted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(r.Theme.Muted)
}

func (r Renderer) heading(s string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(r.Theme.Accent).Render(s)
}

// FormatTime renders t relative to now: "15:04" today, "yesterday 15:04",
// otherwise "01/02 15:04".
func FormatTime(t, now time.Time) string {
	if t.IsZero() {
		return "unknown time"
	}
	t = t.In(now.Location())
	y, m, d := now.Date()
	ty, tm, td := t.Date()
	if y == ty && m == tm && d == td {
		return t.Format("15:04")
	}
	yy, ym, yd := now.AddDate(0, 0, -1).Date()
	if yy == ty && ym == tm && yd == td {
		return "yesterday " + t.Format("15:04")
	}
	return t.Format("01/02 15:04")
}
