package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ------- minimal styling helpers (Lip Gloss) -------
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Faint(true)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

// Printer writes user-facing messages. Errors and hints go to Err.
type Printer struct {
	Out   io.Writer
	Err   io.Writer
	Color bool
}

// NewPrinter returns a Printer over out and errw.
func NewPrinter(out, errw io.Writer, color bool) *Printer {
	return &Printer{Out: out, Err: errw, Color: color}
}

func (p *Printer) render(s lipgloss.Style, text string) string {
	if !p.Color {
		return text
	}
	return s.Render(text)
}

// OK prints a success line.
func (p *Printer) OK(msg string) {
	fmt.Fprintln(p.Out, p.render(successStyle, "✔ "+msg))
}

// Fail prints an error line to Err.
func (p *Printer) Fail(msg string) {
	fmt.Fprintln(p.Err, p.render(errorStyle, "✖ "+msg))
}

// Hint prints a muted follow-up line to Err.
func (p *Printer) Hint(msg string) {
	fmt.Fprintln(p.Err, p.Muted(msg))
}

// Println writes s unstyled to Out.
func (p *Printer) Println(s string) {
	fmt.Fprintln(p.Out, s)
}

// Prompt writes a question without a trailing newline.
func (p *Printer) Prompt(q string) {
	fmt.Fprint(p.Out, p.render(accentStyle, q)+" ")
}

// Title renders a bold heading.
func (p *Printer) Title(s string) string { return p.render(titleStyle, s) }

// Muted renders faint text.
func (p *Printer) Muted(s string) string { return p.render(mutedStyle, s) }

// Pending renders text in the pending colour.
func (p *Printer) Pending(s string) string { return p.render(pendingStyle, s) }

// Success renders text in the success colour.
func (p *Printer) Success(s string) string { return p.render(successStyle, s) }

// Panel draws lines inside a rounded border on Out.
func (p *Printer) Panel(lines []string) {
	body := strings.Join(lines, "\n")
	if !p.Color {
		fmt.Fprintln(p.Out, body)
		return
	}
	fmt.Fprintln(p.Out, borderStyle.Render(body))
}
