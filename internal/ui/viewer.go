// Package ui holds the interactive trace viewer.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Line is one row of a rendered trace: the text filters match against and
// the styled text shown.
type Line struct {
	Plain  string
	Styled string
}

// ZipLines pairs the plain and styled renderings of the same trace.
func ZipLines(plain, styled string) []Line {
	p := strings.Split(strings.TrimRight(plain, "\n"), "\n")
	s := strings.Split(strings.TrimRight(styled, "\n"), "\n")
	out := make([]Line, len(p))
	for i := range p {
		out[i] = Line{Plain: p[i], Styled: p[i]}
		if i < len(s) {
			out[i].Styled = s[i]
		}
	}
	return out
}

type viewerModel struct {
	title   string
	footer  string // error summary shown under the trace
	lines   []Line
	visible []int // indexes into lines matching the filter
	keys    keyMap
	help    help.Model
	vp      viewport.Model
	input   textinput.Model
	filter  string
	typing  bool
	width   int
}

// NewViewer returns a Bubble Tea model that pages through trace lines.
// The footer, if any, is shown below the trace.
func NewViewer(title string, lines []Line, footer string) tea.Model {
	in := textinput.New()
	in.Prompt = "/"
	in.Placeholder = "rule or text"

	m := &viewerModel{
		title:  title,
		footer: strings.TrimRight(footer, "\n"),
		lines:  lines,
		keys:   defaultKeys(),
		help:   help.New(),
		vp:     viewport.New(80, 20),
		input:  in,
		width:  80,
	}
	m.applyFilter("")
	return m
}

func (m *viewerModel) Init() tea.Cmd {
	return nil
}

func (m *viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.vp.Width = msg.Width
		m.vp.Height = max(1, msg.Height-m.chromeHeight())
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.typing {
			return m.updateInput(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Filter):
			m.typing = true
			m.input.SetValue(m.filter)
			return m, m.input.Focus()
		case key.Matches(msg, m.keys.Clear):
			m.applyFilter("")
			return m, nil
		case key.Matches(msg, m.keys.NextError):
			m.nextError()
			return m, nil
		case key.Matches(msg, m.keys.Top):
			m.vp.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.Bottom):
			m.vp.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *viewerModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.typing = false
		m.input.Blur()
		m.applyFilter(m.input.Value())
		return m, nil
	case tea.KeyEsc:
		m.typing = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *viewerModel) applyFilter(filter string) {
	m.filter = strings.TrimSpace(filter)
	m.visible = m.visible[:0]
	for i, l := range m.lines {
		if m.filter == "" || strings.Contains(l.Plain, m.filter) {
			m.visible = append(m.visible, i)
		}
	}
	rows := make([]string, len(m.visible))
	for i, idx := range m.visible {
		rows[i] = m.lines[idx].Styled
	}
	m.vp.SetContent(strings.Join(rows, "\n"))
	m.vp.GotoTop()
}

// nextError scrolls to the first failing rule below the top of the view,
// wrapping around at the end.
func (m *viewerModel) nextError() {
	n := len(m.visible)
	if n == 0 {
		return
	}
	for step := 1; step <= n; step++ {
		row := (m.vp.YOffset + step) % n
		if strings.Contains(m.lines[m.visible[row]].Plain, "\u2717") {
			m.vp.SetYOffset(row)
			return
		}
	}
}

func (m *viewerModel) chromeHeight() int {
	h := 3 // title, status and help
	if m.footer != "" {
		h += strings.Count(m.footer, "\n") + 1
	}
	return h
}

func (m *viewerModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	var b strings.Builder
	b.WriteString(titleStyle.Render(truncate(m.title, m.width)))
	b.WriteByte('\n')
	b.WriteString(m.vp.View())
	b.WriteByte('\n')

	status := fmt.Sprintf("%d/%d lines", len(m.visible), len(m.lines))
	if m.filter != "" {
		status += fmt.Sprintf("  filter %q", m.filter)
	}
	if m.typing {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(statusStyle.Render(status))
	}
	b.WriteByte('\n')
	if m.footer != "" {
		b.WriteString(m.footer)
		b.WriteByte('\n')
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
