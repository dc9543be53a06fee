// Package render formats walks, divergence reports and recorded runs for the
// terminal.
package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// TimeLayout prints UTC instants with millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Marker columns of the text format.
const (
	ReplayedMarker   = " *"
	OutOfOrderMarker = " <--"
)

// maxAuthorWidth caps the author column in terminal cells.
const maxAuthorWidth = 24

// ColorMode selects when output is styled.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Printer writes styled output to one writer.
type Printer struct {
	w      io.Writer
	styles styles
}

type styles struct {
	hash       lipgloss.Style
	replayed   lipgloss.Style
	outOfOrder lipgloss.Style
	author     lipgloss.Style
	insert     lipgloss.Style
	delete     lipgloss.Style
	faint      lipgloss.Style
}

// NewPrinter creates a Printer for w. ColorAuto styles only when w is a
// terminal that supports color.
func NewPrinter(w io.Writer, mode ColorMode) *Printer {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI256)
	}

	return &Printer{
		w: w,
		styles: styles{
			hash:       r.NewStyle().Foreground(lipgloss.Color("214")),
			replayed:   r.NewStyle().Foreground(lipgloss.Color("220")).Bold(true),
			outOfOrder: r.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
			author:     r.NewStyle().Foreground(lipgloss.Color("111")),
			insert:     r.NewStyle().Foreground(lipgloss.Color("114")),
			delete:     r.NewStyle().Foreground(lipgloss.Color("203")),
			faint:      r.NewStyle().Faint(true),
		},
	}
}

func (p *Printer) println(s string) error {
	_, err := fmt.Fprintln(p.w, s)
	return err
}
