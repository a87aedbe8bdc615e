package ui

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/examslot/internal/formatter"
	"github.com/oakwood-commons/examslot/internal/session"
)

func TestRenderSnapshotNoColor(t *testing.T) {
	sess := session.New(&stubFetcher{bodies: []string{scheduleCSV}}, nil, logr.Discard())
	require.NoError(t, sess.Refresh(context.Background()))
	sess.SetQuery("101")

	out := RenderSnapshot(sess, Options{NoColor: true, Width: 80, Height: 24})
	lines := strings.Split(out, "\n")

	assert.Equal(t, "examslot  schedule.csv", lines[0])
	assert.Equal(t, "id: 101", lines[1])

	// gutter: cursor mark, subject, pointer column
	gutter := 2 + len("Physics") + 1 + 5 + 1
	assert.Equal(t, strings.Repeat(" ", gutter+6+2)+formatter.CurrentMarker, lines[2])
	assert.Equal(t, "› Maths     2/4 ~101   102* >101   104  ", lines[3])
	assert.Equal(t, "", lines[4])
	assert.Equal(t, "  Physics   0/2 >101   201  ", lines[5])
	assert.Equal(t, "Maths 2/4 next:3", lines[6])
	assert.Contains(t, lines[7], "/ set id")
}

func TestHorizontalScroll(t *testing.T) {
	header := "Subject,Pointer"
	row := "Wide,12"
	for i := 1; i <= 20; i++ {
		header += fmt.Sprintf(",E%d", i)
		row += fmt.Sprintf(",%d", 100+i)
	}
	sess := session.New(&stubFetcher{bodies: []string{header + "\n" + row + "\n"}}, nil, logr.Discard())
	m := New(context.Background(), sess, Options{NoColor: true, Width: 40, Height: 24})
	send(t, m, m.Init()())

	// 40 columns leave room for (40-13)/6 = 4 cells
	require.Equal(t, 4, m.visibleCells())
	assert.NotContains(t, m.render(), "112*")

	send(t, m, press("+"))
	assert.Equal(t, 13, sess.Pointer(0))
	assert.Equal(t, 9, m.ColOffset)
	assert.Contains(t, m.render(), "113*")

	send(t, m, press("<"), press("<"))
	assert.Equal(t, 7, m.ColOffset)
	send(t, m, press(">"))
	assert.Equal(t, 8, m.ColOffset)
}

func TestVerticalScroll(t *testing.T) {
	var b strings.Builder
	b.WriteString("Subject,Pointer,E1\n")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "S%02d,0,1\n", i)
	}
	sess := session.New(&stubFetcher{bodies: []string{b.String()}}, nil, logr.Discard())
	m := New(context.Background(), sess, Options{NoColor: true, Width: 80, Height: 14})
	send(t, m, m.Init()())

	require.Equal(t, 5, m.visibleRows())
	for i := 0; i < 7; i++ {
		send(t, m, press("j"))
	}
	assert.Equal(t, 7, m.Cursor)
	assert.Equal(t, 3, m.RowOffset)
	out := m.render()
	assert.Contains(t, out, "› S07")
	assert.NotContains(t, out, "S02")
}

func TestRenderInputFocused(t *testing.T) {
	m := loaded(t, &stubFetcher{bodies: []string{scheduleCSV}})
	send(t, m, press("/"))
	out := m.render()
	assert.Contains(t, out, "enter apply")
	assert.Contains(t, out, "esc cancel")
}
