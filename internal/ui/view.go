package ui

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/examslot/internal/formatter"
	"github.com/oakwood-commons/examslot/internal/session"
)

const (
	headerLines = 2
	footerLines = 2
	linesPerRow = 2

	cursorMark      = "› "
	maxSubjectWidth = 20
	pointerColWidth = 5
)

type styles struct {
	cells   formatter.CellStyles
	title   lipgloss.Style
	dim     lipgloss.Style
	cursor  lipgloss.Style
	helpKey lipgloss.Style
	helpVal lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
}

func newStyles(p formatter.Palette, noColor bool) styles {
	s := styles{cells: formatter.NewCellStyles(p, noColor)}
	if noColor {
		plain := lipgloss.NewStyle()
		s.title, s.dim, s.cursor = plain, plain, plain
		s.helpKey, s.helpVal = plain, plain
		s.success, s.failure = plain, plain
		return s
	}
	s.title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	s.dim = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	s.cursor = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	s.helpKey = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	s.helpVal = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	s.success = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	s.failure = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	return s
}

func (m *Model) subjectWidth() int {
	w := 0
	if t := m.session.Table(); t != nil {
		for _, row := range t.Rows {
			w = max(w, runewidth.StringWidth(row.Subject))
		}
	}
	return min(max(w, 1), maxSubjectWidth)
}

func (m *Model) gutterWidth() int {
	return runewidth.StringWidth(cursorMark) + m.subjectWidth() + 1 + pointerColWidth + 1
}

func (m *Model) render() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	if m.HelpVisible {
		b.WriteString(m.renderHelp())
	} else {
		b.WriteString(m.renderBody())
	}
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderHeader() string {
	name := m.AppName
	if name == "" {
		name = "examslot"
	}
	line := m.styles.title.Render(name)
	if loc := m.session.Location(); loc != "" {
		line += "  " + m.styles.dim.Render(runewidth.Truncate(loc, max(m.WinWidth-len(name)-2, 0), "…"))
	}
	if m.Loading {
		line += "  " + m.styles.dim.Render("loading…")
	}

	var query string
	switch {
	case m.InputFocused:
		query = m.QueryInput.View()
	case m.session.Query() != "":
		query = "id: " + m.session.Query()
	default:
		query = "id: " + m.styles.dim.Render("(none, press / to set)")
	}
	return line + "\n" + query + "\n"
}

func (m *Model) renderBody() string {
	if !m.session.HasData() {
		if m.Loading {
			return "no data loaded yet\n"
		}
		return "no data loaded\n"
	}
	n := m.session.Len()
	if n == 0 {
		return "schedule has no rows\n"
	}

	subjectW := m.subjectWidth()
	gutter := m.gutterWidth()
	cells := m.visibleCells()
	end := min(n, m.RowOffset+m.visibleRows())

	var b strings.Builder
	for i := m.RowOffset; i < end; i++ {
		view := m.session.View(i)
		lo := min(m.ColOffset, len(view.Cells))
		hi := min(lo+cells, len(view.Cells))

		b.WriteString(m.styles.cells.MarkerLine(view.Cells[lo:hi], gutter, m.CellWidth))
		b.WriteString("\n")

		mark := strings.Repeat(" ", runewidth.StringWidth(cursorMark))
		if i == m.Cursor {
			mark = m.styles.cursor.Render(cursorMark)
		}
		subject := runewidth.FillRight(runewidth.Truncate(view.Row.Subject, subjectW, "…"), subjectW)
		pointer := fmt.Sprintf("%*s", pointerColWidth, fmt.Sprintf("%d/%d", view.State.EffectivePointer, view.Row.SlotCount()))

		b.WriteString(mark)
		b.WriteString(m.styles.cells.Subject.Render(subject))
		b.WriteString(" ")
		b.WriteString(pointer)
		b.WriteString(" ")
		for j := lo; j < hi; j++ {
			b.WriteString(m.styles.cells.RenderCell(view.Row.Slots[j], view.Cells[j], m.CellWidth))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderHelp() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(helpTable(m.keys.fullHelp(), m.styles.helpKey, m.styles.helpVal))
	b.WriteString("\n")
	b.WriteString("  cells: ~ before pointer, > next slot for id, + later slot for id, * current slot\n")
	return b.String()
}

func (m *Model) renderFooter() string {
	var status []string
	if m.session.HasData() && m.session.Len() > 0 {
		status = append(status, formatter.Summary(m.session.View(m.Cursor)))
	}
	if m.notice != "" {
		text := noticeText(m.notice, m.noticeKind)
		switch m.noticeKind {
		case noticeError:
			text = m.styles.failure.Render(text)
		case noticeSuccess:
			text = m.styles.success.Render(text)
		}
		status = append(status, text)
	}

	var keys string
	if m.InputFocused {
		keys = m.styles.helpKey.Render("enter") + " " + m.styles.helpVal.Render("apply") +
			" • " + m.styles.helpKey.Render("esc") + " " + m.styles.helpVal.Render("cancel")
	} else {
		keys = legend(m.keys.shortHelp(), m.styles.helpKey, m.styles.helpVal)
	}
	return strings.Join(status, "  ") + "\n" + keys
}

// RenderSnapshot renders one frame for sess without starting a program.
func RenderSnapshot(sess *session.Session, opts Options) string {
	m := New(context.Background(), sess, opts)
	m.clampCursor()
	return m.render()
}

// Run starts the interactive program and blocks until it exits.
func Run(ctx context.Context, sess *session.Session, opts Options, progOpts ...tea.ProgramOption) error {
	m := New(ctx, sess, opts)
	progOpts = append([]tea.ProgramOption{tea.WithContext(ctx)}, progOpts...)
	_, err := tea.NewProgram(m, progOpts...).Run()
	return err
}
