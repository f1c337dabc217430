package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// BuiltinPager is the pager setting that selects Pager instead of an
// external program.
const BuiltinPager = "builtin"

// Pager shows a document file in a scrollable Bubble Tea view.
type Pager struct {
	Title  string
	Input  io.Reader // nil: stdin
	Output io.Writer // nil: stdout
}

// Open renders the file at path and blocks until the user quits.
func (p *Pager) Open(ctx context.Context, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if p.Input != nil {
		opts = append(opts, tea.WithInput(p.Input))
	}
	if p.Output != nil {
		opts = append(opts, tea.WithOutput(p.Output))
	}
	if _, err := tea.NewProgram(newPagerModel(p.Title, string(b)), opts...).Run(); err != nil {
		return fmt.Errorf("pager: %w", err)
	}
	return nil
}

type pagerKeys struct {
	Quit key.Binding
	Top  key.Binding
	End  key.Binding
}

var defaultPagerKeys = pagerKeys{
	Quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	Top:  key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	End:  key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
}

type pagerModel struct {
	title    string
	doc      string
	keys     pagerKeys
	viewport viewport.Model
	ready    bool
}

func newPagerModel(title, doc string) pagerModel {
	return pagerModel{title: title, doc: doc, keys: defaultPagerKeys}
}

// Update and View implement Bubble Tea's Model on pagerModel
func (m pagerModel) Init() tea.Cmd { return nil }

func (m pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Top):
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.End):
			m.viewport.GotoBottom()
			return m, nil
		}
	case tea.WindowSizeMsg:
		// border (2) + padding (2) horizontally; border, title and footer vertically
		w, h := max(msg.Width-4, 10), max(msg.Height-4, 3)
		if !m.ready {
			m.viewport = viewport.New(w, h)
			m.ready = true
		} else {
			m.viewport.Width, m.viewport.Height = w, h
		}
		m.viewport.SetContent(renderMarkdown(m.doc, w))
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m pagerModel) View() string {
	if !m.ready {
		return "loading…"
	}
	footer := helpStyle.Render(fmt.Sprintf("%3.f%%  q quit · g/G top/bottom", m.viewport.ScrollPercent()*100))
	return borderStyle.Render(titleStyle.Render(m.title) + "\n" + m.viewport.View() + "\n" + footer)
}

// renderMarkdown styles doc for the terminal; on failure the raw text is shown.
func renderMarkdown(doc string, width int) string {
	if strings.TrimSpace(doc) == "" {
		return mutedStyle.Render("no todos for today")
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return doc
	}
	out, err := r.Render(doc)
	if err != nil {
		return doc
	}
	return out
}
