package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/examslot/internal/session"
)

const scheduleCSV = "Subject,Pointer,E1,E2,E3,E4\nMaths,2,101,102,101,104\nPhysics,0,101,201\n"

type stubFetcher struct {
	bodies []string
	errs   []error
	calls  int
}

func (f *stubFetcher) Location() string { return "schedule.csv" }

func (f *stubFetcher) Fetch(context.Context) (string, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.bodies) {
		return f.bodies[i], nil
	}
	return f.bodies[len(f.bodies)-1], nil
}

func runes(s string) []tea.Msg {
	out := make([]tea.Msg, 0, len(s))
	for _, r := range s {
		out = append(out, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return out
}

func press(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "ctrl+c":
		return tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func send(t *testing.T, m *Model, msgs ...tea.Msg) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

// loaded returns a model whose initial refresh has been applied.
func loaded(t *testing.T, f *stubFetcher) *Model {
	t.Helper()
	sess := session.New(f, nil, logr.Discard())
	m := New(context.Background(), sess, Options{NoColor: true, Width: 80, Height: 24})
	cmd := m.Init()
	require.NotNil(t, cmd)
	assert.True(t, m.Loading)
	send(t, m, cmd())
	require.True(t, sess.HasData())
	return m
}

func TestInitLoadsSchedule(t *testing.T) {
	m := loaded(t, &stubFetcher{bodies: []string{scheduleCSV}})
	assert.False(t, m.Loading)
	assert.Equal(t, 2, m.Session().Len())
	assert.Equal(t, "loaded 2 rows", m.Notice())
}

func TestPointerKeys(t *testing.T) {
	m := loaded(t, &stubFetcher{bodies: []string{scheduleCSV}})
	sess := m.Session()

	send(t, m, press("+"))
	assert.Equal(t, 3, sess.Pointer(0))
	send(t, m, press("="), press("l"))
	assert.Equal(t, 4, sess.Pointer(0), "clamped at slot count")

	send(t, m, press("-"))
	assert.Equal(t, 3, sess.Pointer(0))
	send(t, m, press("h"), press("h"), press("h"), press("h"))
	assert.Equal(t, 0, sess.Pointer(0), "clamped at zero")

	send(t, m, press("j"), press("+"))
	assert.Equal(t, 1, sess.Pointer(1))
	assert.Equal(t, 0, sess.Pointer(0))
}

func TestPointerKeysWithoutData(t *testing.T) {
	sess := session.New(&stubFetcher{bodies: []string{scheduleCSV}}, nil, logr.Discard())
	m := New(context.Background(), sess, Options{NoColor: true})
	send(t, m, press("+"))
	assert.False(t, sess.HasData())
	assert.Contains(t, m.render(), "no data loaded")
}

func TestCursorMovement(t *testing.T) {
	m := loaded(t, &stubFetcher{bodies: []string{scheduleCSV}})
	send(t, m, press("k"))
	assert.Equal(t, 0, m.Cursor)
	send(t, m, press("down"), press("down"), press("j"))
	assert.Equal(t, 1, m.Cursor)
	send(t, m, press("up"))
	assert.Equal(t, 0, m.Cursor)
}

func TestQueryInput(t *testing.T) {
	m := loaded(t, &stubFetcher{bodies: []string{scheduleCSV}})

	send(t, m, press("/"))
	require.True(t, m.InputFocused)
	send(t, m, runes("101")...)
	// keys typed into the field do not move pointers
	assert.Equal(t, 2, m.Session().Pointer(0))
	send(t, m, press("enter"))
	assert.False(t, m.InputFocused)
	assert.Equal(t, "101", m.Session().Query())

	view := m.Session().View(0)
	assert.True(t, view.State.HasNext)
	assert.Equal(t, 3, view.State.NextOrdinal)

	send(t, m, press("/"), press("9"), press("esc"))
	assert.False(t, m.InputFocused)
	assert.Equal(t, "101", m.Session().Query(), "esc keeps the previous id")

	send(t, m, press("x"))
	assert.Equal(t, "", m.Session().Query())
}

func TestQueryInputKeepsWhitespace(t *testing.T) {
	m := loaded(t, &stubFetcher{bodies: []string{"Subject,Pointer,E1,E2\nMaths,0, 101,101\n"}})

	send(t, m, press("/"))
	send(t, m, runes(" 101")...)
	send(t, m, press("enter"))
	require.Equal(t, " 101", m.Session().Query())

	view := m.Session().View(0)
	assert.Equal(t, []int{1}, view.State.MatchingOrdinals)
	assert.True(t, view.State.HasNext)
	assert.Equal(t, 1, view.State.NextOrdinal)

	send(t, m, press("/"))
	m.QueryInput.SetValue("101 ")
	send(t, m, press("enter"))
	require.Equal(t, "101 ", m.Session().Query())
	view = m.Session().View(0)
	assert.Empty(t, view.State.MatchingOrdinals)
	assert.False(t, view.State.HasNext)
}

func TestRefreshReplacesOverrides(t *testing.T) {
	m := loaded(t, &stubFetcher{bodies: []string{scheduleCSV, strings.Replace(scheduleCSV, "Maths,2", "Maths,1", 1)}})
	send(t, m, press("+"))
	require.Equal(t, 3, m.Session().Pointer(0))

	cmd := send(t, m, press("r"))
	require.NotNil(t, cmd)
	assert.True(t, m.Loading)
	send(t, m, cmd())
	assert.False(t, m.Loading)
	assert.Equal(t, 1, m.Session().Pointer(0))
}

func TestFailedRefreshKeepsState(t *testing.T) {
	m := loaded(t, &stubFetcher{
		bodies: []string{scheduleCSV},
		errs:   []error{nil, errors.New("connection refused")},
	})
	send(t, m, press("+"))
	id := m.Session().LastRefreshID()

	cmd := send(t, m, press("r"))
	send(t, m, cmd())
	assert.Equal(t, 3, m.Session().Pointer(0))
	assert.Equal(t, id, m.Session().LastRefreshID())
	assert.Contains(t, m.Notice(), "connection refused")
	assert.Contains(t, m.render(), "× refresh failed")
}

func TestFailedInitialLoad(t *testing.T) {
	sess := session.New(&stubFetcher{errs: []error{errors.New("boom")}, bodies: []string{""}}, nil, logr.Discard())
	m := New(context.Background(), sess, Options{NoColor: true})
	send(t, m, m.Init()())
	assert.False(t, sess.HasData())
	out := m.render()
	assert.Contains(t, out, "no data loaded")
	assert.Contains(t, out, "boom")
}

func TestNoticeClears(t *testing.T) {
	m := loaded(t, &stubFetcher{bodies: []string{scheduleCSV}})
	require.NotEmpty(t, m.Notice())

	send(t, m, clearNoticeMsg{id: m.noticeSeq - 1})
	assert.NotEmpty(t, m.Notice(), "stale timer ignored")
	send(t, m, clearNoticeMsg{id: m.noticeSeq})
	assert.Empty(t, m.Notice())
}

func TestCopyRow(t *testing.T) {
	var copied string
	restore := StubPlatformActions(func(s string) error {
		copied = s
		return nil
	})
	defer restore()

	m := loaded(t, &stubFetcher{bodies: []string{scheduleCSV}})
	send(t, m, press("/"))
	send(t, m, runes("101")...)
	send(t, m, press("enter"), press("y"))
	assert.Equal(t, "Maths 2/4 next:3", copied)
	assert.Equal(t, "copied: Maths 2/4 next:3", m.Notice())
}

func TestCopyRowFailure(t *testing.T) {
	restore := StubPlatformActions(func(string) error { return errors.New("no clipboard") })
	defer restore()

	m := loaded(t, &stubFetcher{bodies: []string{scheduleCSV}})
	send(t, m, press("y"))
	assert.Contains(t, m.Notice(), "no clipboard")
}

func TestHelpAndQuit(t *testing.T) {
	m := loaded(t, &stubFetcher{bodies: []string{scheduleCSV}})

	send(t, m, press("?"))
	require.True(t, m.HelpVisible)
	assert.Contains(t, m.render(), "advance pointer")
	send(t, m, press("+"))
	assert.Equal(t, 2, m.Session().Pointer(0), "help swallows keys")
	send(t, m, press("esc"))
	assert.False(t, m.HelpVisible)

	for _, k := range []string{"q", "ctrl+c"} {
		cmd := send(t, m, press(k))
		require.NotNil(t, cmd, k)
		_, ok := cmd().(tea.QuitMsg)
		assert.True(t, ok, k)
	}
}

func TestWindowSize(t *testing.T) {
	m := loaded(t, &stubFetcher{bodies: []string{scheduleCSV}})
	send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.WinWidth)
	assert.Equal(t, 40, m.WinHeight)
}

func TestView(t *testing.T) {
	m := loaded(t, &stubFetcher{bodies: []string{scheduleCSV}})
	v := m.View()
	assert.True(t, v.AltScreen)
}
