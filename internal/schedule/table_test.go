package schedule

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	raw := "Subject,Pointer,E1,E2,E3,E4\r\n" +
		"Maths,2,101,102,101,104\r\n" +
		"\n" +
		"Physics,abc,201,101\n" +
		"Art\n" +
		"Chemistry,,101\n"

	table, err := NewParser(',', logr.Discard()).Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"Subject", "Pointer", "E1", "E2", "E3", "E4"}, table.Header)
	require.Equal(t, 4, table.Len())

	assert.Equal(t, Row{Subject: "Maths", Pointer: 2, Slots: []string{"101", "102", "101", "104"}}, table.Rows[0])
	assert.Equal(t, Row{Subject: "Physics", Pointer: 0, Slots: []string{"201", "101"}}, table.Rows[1])
	assert.Equal(t, Row{Subject: "Art"}, table.Rows[2])
	assert.Equal(t, Row{Subject: "Chemistry", Slots: []string{"101"}}, table.Rows[3])

	assert.Equal(t, 4, table.MaxSlots())
	assert.Equal(t, map[int]int{0: 2, 1: 0, 2: 0, 3: 0}, table.Fallbacks())
}

func TestParseDelimiters(t *testing.T) {
	tests := []struct {
		name  string
		delim rune
		raw   string
		want  []string
	}{
		{name: "default on zero", delim: 0, raw: "h\nA,1,x,y", want: []string{"x", "y"}},
		{name: "semicolon", delim: ';', raw: "h\nA;1;x;y", want: []string{"x", "y"}},
		{name: "tab", delim: '\t', raw: "h\nA\t1\tx\ty", want: []string{"x", "y"}},
		{name: "no quoting", delim: ',', raw: "h\nA,1,\"x,y\"", want: []string{"\"x", "y\""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewParser(tt.delim, logr.Discard()).Parse(tt.raw)
			require.NoError(t, err)
			require.Equal(t, 1, table.Len())
			assert.Equal(t, tt.want, table.Rows[0].Slots)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	for _, raw := range []string{"", "\n\n", "  \r\n"} {
		_, err := NewParser(',', logr.Discard()).Parse(raw)
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
}

func TestParseBlankFirstLineIsHeader(t *testing.T) {
	table, err := NewParser(',', logr.Discard()).Parse("\nMaths,1,a\n\nPhysics,0,b\n")
	require.NoError(t, err)
	assert.Empty(t, table.Header)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, Row{Subject: "Maths", Pointer: 1, Slots: []string{"a"}}, table.Rows[0])
	assert.Equal(t, Row{Subject: "Physics", Pointer: 0, Slots: []string{"b"}}, table.Rows[1])
}

func TestParseHeaderOnly(t *testing.T) {
	table, err := NewParser(',', logr.Discard()).Parse("Subject,Pointer\n")
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 0, table.MaxSlots())
}

func TestParsePointer(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"3", 3, true},
		{" 7 ", 7, true},
		{"-2", -2, true},
		{"", 0, false},
		{"two", 0, false},
		{"2.5", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePointer(tt.raw)
		assert.Equal(t, tt.want, got, "raw %q", tt.raw)
		assert.Equal(t, tt.wantOK, ok, "raw %q", tt.raw)
	}
}

func TestRowOccupant(t *testing.T) {
	row := Row{Slots: []string{"a", "b"}}
	assert.Equal(t, "a", row.Occupant(1))
	assert.Equal(t, "b", row.Occupant(2))
	assert.Equal(t, "", row.Occupant(0))
	assert.Equal(t, "", row.Occupant(3))
}

func TestNilTable(t *testing.T) {
	var table *Table
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 0, table.MaxSlots())
	assert.Empty(t, table.Fallbacks())
}
