// Package formatter renders derived schedule rows as text tables or
// structured documents.
package formatter

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/examslot/internal/session"
	"github.com/oakwood-commons/examslot/internal/tracker"
)

// DefaultCellWidth is the visible width of one slot cell.
const DefaultCellWidth = 6

// CurrentMarker is drawn above the slot at the effective pointer.
const CurrentMarker = "▼"

// Palette holds the colors used for each slot class.
// Nil fields fall back to defaults.
type Palette struct {
	Neutral color.Color
	Past    color.Color
	Next    color.Color
	NextBG  color.Color
	Future  color.Color
	Current color.Color
	Marker  color.Color
	Subject color.Color
}

// DefaultPalette is used when no theme is configured.
func DefaultPalette() Palette {
	return Palette{
		Neutral: lipgloss.Color("250"),
		Past:    lipgloss.Color("240"),
		Next:    lipgloss.Color("16"),
		NextBG:  lipgloss.Color("214"),
		Future:  lipgloss.Color("229"),
		Current: lipgloss.Color("81"),
		Marker:  lipgloss.Color("81"),
		Subject: lipgloss.Color("252"),
	}
}

func (p Palette) withDefaults() Palette {
	d := DefaultPalette()
	if p.Neutral == nil {
		p.Neutral = d.Neutral
	}
	if p.Past == nil {
		p.Past = d.Past
	}
	if p.Next == nil {
		p.Next = d.Next
	}
	if p.NextBG == nil {
		p.NextBG = d.NextBG
	}
	if p.Future == nil {
		p.Future = d.Future
	}
	if p.Current == nil {
		p.Current = d.Current
	}
	if p.Marker == nil {
		p.Marker = d.Marker
	}
	if p.Subject == nil {
		p.Subject = d.Subject
	}
	return p
}

// CellStyles maps slot classes to lipgloss styles.
type CellStyles struct {
	NoColor bool
	Class   map[tracker.Class]lipgloss.Style
	Current lipgloss.Style
	Marker  lipgloss.Style
	Subject lipgloss.Style
}

// NewCellStyles builds styles from a palette. With noColor every style is
// plain and classes are shown with text markers instead.
func NewCellStyles(p Palette, noColor bool) CellStyles {
	if noColor {
		plain := lipgloss.NewStyle()
		return CellStyles{
			NoColor: true,
			Class: map[tracker.Class]lipgloss.Style{
				tracker.Neutral: plain, tracker.Past: plain, tracker.Next: plain, tracker.Future: plain,
			},
			Current: plain,
			Marker:  plain,
			Subject: plain,
		}
	}
	p = p.withDefaults()
	return CellStyles{
		Class: map[tracker.Class]lipgloss.Style{
			tracker.Neutral: lipgloss.NewStyle().Foreground(p.Neutral),
			tracker.Past:    lipgloss.NewStyle().Foreground(p.Past).Faint(true),
			tracker.Next:    lipgloss.NewStyle().Foreground(p.Next).Background(p.NextBG).Bold(true),
			tracker.Future:  lipgloss.NewStyle().Foreground(p.Future).Underline(true),
		},
		Current: lipgloss.NewStyle().Foreground(p.Current).Bold(true),
		Marker:  lipgloss.NewStyle().Foreground(p.Marker).Bold(true),
		Subject: lipgloss.NewStyle().Foreground(p.Subject).Bold(true),
	}
}

// ClassMarker prefixes a cell in no-color output.
var ClassMarker = map[tracker.Class]string{
	tracker.Neutral: " ",
	tracker.Past:    "~",
	tracker.Next:    ">",
	tracker.Future:  "+",
}

// CurrentSuffix closes the cell at the effective pointer in no-color output.
const CurrentSuffix = "*"

// RenderCell renders a single slot to exactly width columns.
func (s CellStyles) RenderCell(occupant string, cell tracker.Cell, width int) string {
	if width < 3 {
		width = 3
	}
	inner := runewidth.Truncate(occupant, width-2, "")
	if s.NoColor {
		suffix := " "
		if cell.IsCurrentColumn {
			suffix = CurrentSuffix
		}
		return runewidth.FillRight(ClassMarker[cell.Class]+inner+suffix, width)
	}

	text := runewidth.FillRight(" "+inner+" ", width)
	style := s.Class[cell.Class]
	if cell.IsCurrentColumn {
		if cell.Class == tracker.Neutral {
			style = s.Current
		}
		style = style.Underline(true)
	}
	return style.Render(text)
}

// MarkerLine renders the line above a row's cells with CurrentMarker over
// the current column. prefix is the width of the subject gutter.
func (s CellStyles) MarkerLine(cells []tracker.Cell, prefix, width int) string {
	for i, c := range cells {
		if !c.IsCurrentColumn {
			continue
		}
		pad := prefix + i*width + (width-1)/2
		return strings.Repeat(" ", pad) + s.Marker.Render(CurrentMarker)
	}
	return ""
}

// Summary describes one row as "p/n next:k" for footers and clipboard text.
func Summary(view session.RowView) string {
	next := "-"
	if view.State.HasNext {
		next = fmt.Sprintf("%d", view.State.NextOrdinal)
	}
	return fmt.Sprintf("%s %d/%d next:%s", view.Row.Subject, view.State.EffectivePointer, view.Row.SlotCount(), next)
}

// TableOptions control the text grid.
type TableOptions struct {
	CellWidth    int
	SubjectWidth int
	Width        int // total width budget; 0 = unlimited
	NoColor      bool
	Palette      Palette
}

// RenderGrid renders rows as a text grid: a marker line and a cell line per
// row, with a subject gutter and pointer column.
func RenderGrid(views []session.RowView, opts TableOptions) string {
	cellW := opts.CellWidth
	if cellW <= 0 {
		cellW = DefaultCellWidth
	}
	subjectW := opts.SubjectWidth
	if subjectW <= 0 {
		for _, v := range views {
			if w := runewidth.StringWidth(v.Row.Subject); w > subjectW {
				subjectW = w
			}
		}
		if subjectW > 24 {
			subjectW = 24
		}
	}
	styles := NewCellStyles(opts.Palette, opts.NoColor)
	gutter := subjectW + 1 + pointerWidth + 1

	var b strings.Builder
	for _, v := range views {
		cells := v.Cells
		maxCells := len(cells)
		if opts.Width > 0 {
			if fit := (opts.Width - gutter) / cellW; fit < maxCells {
				maxCells = max(fit, 0)
			}
		}
		b.WriteString(styles.MarkerLine(cells[:maxCells], gutter, cellW))
		b.WriteString("\n")

		subject := runewidth.FillRight(runewidth.Truncate(v.Row.Subject, subjectW, "…"), subjectW)
		b.WriteString(styles.Subject.Render(subject))
		b.WriteString(" ")
		b.WriteString(fmt.Sprintf("%*s", pointerWidth, fmt.Sprintf("%d/%d", v.State.EffectivePointer, v.Row.SlotCount())))
		b.WriteString(" ")
		for i := 0; i < maxCells; i++ {
			b.WriteString(styles.RenderCell(v.Row.Slots[i], cells[i], cellW))
		}
		b.WriteString("\n")
	}
	return b.String()
}

const pointerWidth = 5
