package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette(Scheme{
	Accent:  "#E50914",
	Good:    "#46D369",
	Fair:    "#F5C518",
	Poor:    "#8C8C8C",
	Error:   "#FF4D4F",
	Muted:   "#626262",
	Current: "#7D56F4",
})

// Scheme names the colors a [Palette] is built from.
type Scheme struct {
	Accent, Good, Fair, Poor, Error, Muted, Current string
}

// Palette is the stylesheet for every view.
type Palette struct {
	title   lipgloss.Style
	err     lipgloss.Style
	warn    lipgloss.Style
	help    lipgloss.Style
	label   lipgloss.Style
	page    lipgloss.Style
	marked  lipgloss.Style
	ratings [3]lipgloss.Style
}

func NewPalette(s Scheme) *Palette {
	return &Palette{
		title:   lipgloss.NewStyle().Foreground(lipgloss.Color(s.Accent)).Bold(true).MarginBottom(1),
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color(s.Error)).Bold(true),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color(s.Fair)),
		help:    lipgloss.NewStyle().Foreground(lipgloss.Color(s.Muted)).Italic(true),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color(s.Muted)).Bold(true),
		page:    lipgloss.NewStyle().Foreground(lipgloss.Color(s.Current)).Bold(true),
		marked:  lipgloss.NewStyle().Foreground(lipgloss.Color(s.Accent)),
		ratings: [3]lipgloss.Style{
			lipgloss.NewStyle().Foreground(lipgloss.Color(s.Good)).Bold(true),
			lipgloss.NewStyle().Foreground(lipgloss.Color(s.Fair)),
			lipgloss.NewStyle().Foreground(lipgloss.Color(s.Poor)),
		},
	}
}

// rating renders a star score colored by band: 7.5 and up, 6 and up, below 6.
func (p *Palette) rating(r float64) string {
	s := fmt.Sprintf("★ %.1f", r)
	switch {
	case r >= 7.5:
		return p.ratings[0].Render(s)
	case r >= 6:
		return p.ratings[1].Render(s)
	default:
		return p.ratings[2].Render(s)
	}
}
