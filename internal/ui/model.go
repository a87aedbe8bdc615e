// Package ui is the interactive Bubble Tea front end for a schedule session.
package ui

import (
	"context"
	"fmt"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/examslot/internal/formatter"
	"github.com/oakwood-commons/examslot/internal/session"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// Options configure a Model.
type Options struct {
	AppName   string
	NoColor   bool
	CellWidth int
	Palette   formatter.Palette
	Width     int
	Height    int
	Log       logr.Logger
}

// refreshedMsg carries the outcome of a background load.
type refreshedMsg struct {
	loaded *session.Loaded
	err    error
}

// Model owns the session for the lifetime of the program. Only Update
// mutates it; refresh commands call session.Load, which does not.
type Model struct {
	session *session.Session
	ctx     context.Context
	log     logr.Logger
	keys    keyMap
	styles  styles

	AppName   string
	NoColor   bool
	CellWidth int

	Cursor    int
	RowOffset int
	ColOffset int

	QueryInput   textinput.Model
	InputFocused bool
	HelpVisible  bool

	WinWidth  int
	WinHeight int

	Loading  bool
	inFlight int

	notice     string
	noticeKind noticeKind
	noticeSeq  int
}

// New builds a model around sess. ctx bounds every refresh started by the
// model.
func New(ctx context.Context, sess *session.Session, opts Options) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	ti := textinput.New()
	ti.Prompt = "id: "
	ti.Placeholder = "identifier to track"
	ti.CharLimit = 200
	ti.SetWidth(40)
	ti.SetValue(sess.Query())

	cellWidth := opts.CellWidth
	if cellWidth <= 0 {
		cellWidth = formatter.DefaultCellWidth
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	lgr := opts.Log
	if lgr.GetSink() == nil {
		lgr = logr.Discard()
	}
	return &Model{
		session:    sess,
		ctx:        ctx,
		log:        lgr,
		keys:       defaultKeyMap(),
		styles:     newStyles(opts.Palette, opts.NoColor),
		AppName:    opts.AppName,
		NoColor:    opts.NoColor,
		CellWidth:  cellWidth,
		QueryInput: ti,
		WinWidth:   width,
		WinHeight:  height,
	}
}

// Session returns the session driven by the model.
func (m *Model) Session() *session.Session { return m.session }

// Notice returns the text currently shown in the status line.
func (m *Model) Notice() string { return m.notice }

func (m *Model) Init() tea.Cmd {
	return m.refreshCmd()
}

// refreshCmd reserves a sequence number on the owning goroutine and loads in
// the background. Results are applied in arrival order.
func (m *Model) refreshCmd() tea.Cmd {
	seq := m.session.NextSeq()
	m.Loading = true
	m.inFlight++
	sess, ctx := m.session, m.ctx
	return func() tea.Msg {
		loaded, err := sess.Load(ctx, seq)
		return refreshedMsg{loaded: loaded, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WinWidth = msg.Width
		m.WinHeight = msg.Height
		m.QueryInput.SetWidth(max(10, msg.Width-10))
		m.clampCursor()
		return m, nil

	case refreshedMsg:
		return m, m.handleRefreshed(msg)

	case clearNoticeMsg:
		if msg.id == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.InputFocused {
			return m, m.handleInputKey(msg)
		}
		return m.handleKey(msg)
	}

	if m.InputFocused {
		var cmd tea.Cmd
		m.QueryInput, cmd = m.QueryInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleRefreshed(msg refreshedMsg) tea.Cmd {
	if m.inFlight > 0 {
		m.inFlight--
	}
	m.Loading = m.inFlight > 0
	if msg.err != nil {
		m.log.Error(msg.err, "refresh failed", "source", m.session.Location())
		return m.startNotice(fmt.Sprintf("refresh failed: %v", msg.err), noticeError)
	}
	m.session.Apply(msg.loaded)
	m.clampCursor()
	return m.startNotice(fmt.Sprintf("loaded %d rows", m.session.Len()), noticeSuccess)
}

func (m *Model) handleInputKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.session.SetQuery(m.QueryInput.Value())
		m.QueryInput.SetValue(m.session.Query())
		m.QueryInput.Blur()
		m.InputFocused = false
		return nil
	case "esc":
		m.QueryInput.SetValue(m.session.Query())
		m.QueryInput.Blur()
		m.InputFocused = false
		return nil
	case "ctrl+c":
		return tea.Quit
	}
	var cmd tea.Cmd
	m.QueryInput, cmd = m.QueryInput.Update(msg)
	return cmd
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.HelpVisible {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help), msg.String() == "esc":
			m.HelpVisible = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.HelpVisible = true
	case key.Matches(msg, m.keys.Query):
		m.InputFocused = true
		m.QueryInput.SetValue(m.session.Query())
		m.QueryInput.CursorEnd()
		return m, m.QueryInput.Focus()
	case key.Matches(msg, m.keys.ClearQuery):
		m.session.ClearQuery()
		m.QueryInput.SetValue("")
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Increment):
		m.adjust(1)
	case key.Matches(msg, m.keys.Decrement):
		m.adjust(-1)
	case key.Matches(msg, m.keys.ScrollLeft):
		m.ColOffset = max(0, m.ColOffset-1)
	case key.Matches(msg, m.keys.ScrollRight):
		if m.ColOffset+1 < m.maxSlots() {
			m.ColOffset++
		}
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyRow()
	}
	return m, nil
}

func (m *Model) adjust(delta int) {
	if !m.session.HasData() {
		return
	}
	p := m.session.Adjust(m.Cursor, delta)
	if p < 0 {
		return
	}
	m.ensureColumnVisible(p)
}

func (m *Model) copyRow() tea.Cmd {
	if !m.session.HasData() || m.session.Len() == 0 {
		return m.startNotice("nothing to copy", noticeInfo)
	}
	text := formatter.Summary(m.session.View(m.Cursor))
	if err := CopyToClipboard(text); err != nil {
		return m.startNotice(fmt.Sprintf("copy failed: %v", err), noticeError)
	}
	return m.startNotice("copied: "+text, noticeSuccess)
}

func (m *Model) moveCursor(delta int) {
	n := m.session.Len()
	if n == 0 {
		m.Cursor = 0
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), n-1)
	m.ensureRowVisible()
}

func (m *Model) clampCursor() {
	n := m.session.Len()
	if m.Cursor >= n {
		m.Cursor = max(n-1, 0)
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if ms := m.maxSlots(); m.ColOffset >= ms {
		m.ColOffset = max(ms-1, 0)
	}
	m.ensureRowVisible()
}

func (m *Model) maxSlots() int {
	return m.session.Table().MaxSlots()
}

// visibleRows is the number of row blocks that fit between header and footer.
func (m *Model) visibleRows() int {
	return max(1, (m.WinHeight-headerLines-footerLines)/linesPerRow)
}

// visibleCells is the number of slot cells that fit beside the gutter.
func (m *Model) visibleCells() int {
	return max(1, (m.WinWidth-m.gutterWidth())/m.CellWidth)
}

func (m *Model) ensureRowVisible() {
	rows := m.visibleRows()
	if m.Cursor < m.RowOffset {
		m.RowOffset = m.Cursor
	}
	if m.Cursor >= m.RowOffset+rows {
		m.RowOffset = m.Cursor - rows + 1
	}
}

// ensureColumnVisible scrolls so the slot at ordinal p (1-based) is shown.
func (m *Model) ensureColumnVisible(p int) {
	if p <= 0 {
		return
	}
	idx := p - 1
	cells := m.visibleCells()
	if idx < m.ColOffset {
		m.ColOffset = idx
	}
	if idx >= m.ColOffset+cells {
		m.ColOffset = idx - cells + 1
	}
}

func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}
