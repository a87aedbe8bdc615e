// Package schedule decodes delimiter-separated exam schedules into subject rows.
package schedule

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
)

// DefaultDelimiter separates fields when no delimiter is configured.
const DefaultDelimiter = ','

// ErrEmptyInput is returned when the raw text has no header line.
var ErrEmptyInput = errors.New("schedule: empty input")

// Row is one subject line of the schedule.
// Slots holds the occupant identifier of every exam occurrence; slot ordinals
// are 1-based, so Slots[0] is ordinal 1.
type Row struct {
	Subject string   `json:"subject" yaml:"subject" toml:"subject"`
	Pointer int      `json:"pointer" yaml:"pointer" toml:"pointer"`
	Slots   []string `json:"slots" yaml:"slots" toml:"slots"`
}

// SlotCount returns the number of slots in the row.
func (r Row) SlotCount() int {
	return len(r.Slots)
}

// Occupant returns the identifier at the given 1-based ordinal, or "" when the
// ordinal is out of range.
func (r Row) Occupant(ordinal int) string {
	if ordinal < 1 || ordinal > len(r.Slots) {
		return ""
	}
	return r.Slots[ordinal-1]
}

// Table is a decoded schedule. The header line is kept for display only.
type Table struct {
	Header []string `json:"header" yaml:"header" toml:"header"`
	Rows   []Row    `json:"rows" yaml:"rows" toml:"rows"`
}

// Len returns the number of subject rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Fallbacks returns the parsed raw pointer of every row keyed by row index.
func (t *Table) Fallbacks() map[int]int {
	out := make(map[int]int, t.Len())
	if t == nil {
		return out
	}
	for i, row := range t.Rows {
		out[i] = row.Pointer
	}
	return out
}

// MaxSlots returns the slot count of the widest row.
func (t *Table) MaxSlots() int {
	maxSlots := 0
	if t == nil {
		return 0
	}
	for _, row := range t.Rows {
		if n := row.SlotCount(); n > maxSlots {
			maxSlots = n
		}
	}
	return maxSlots
}

// Parser splits raw schedule text into rows. Fields are separated by a single
// delimiter; quoting and escaping are not supported.
type Parser struct {
	Delimiter rune
	Log       logr.Logger
}

// NewParser returns a parser for the given delimiter. A zero delimiter falls
// back to DefaultDelimiter.
func NewParser(delim rune, lgr logr.Logger) *Parser {
	if delim == 0 {
		delim = DefaultDelimiter
	}
	return &Parser{Delimiter: delim, Log: lgr}
}

// Parse decodes raw text. The first line is the header, even when blank, and
// is dropped from the rows. Blank lines after it are skipped.
func (p *Parser) Parse(raw string) (*Table, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyInput
	}
	delim := p.Delimiter
	if delim == 0 {
		delim = DefaultDelimiter
	}
	sep := string(delim)

	lines := strings.Split(raw, "\n")
	var header []string
	if first := strings.TrimSuffix(lines[0], "\r"); strings.TrimSpace(first) != "" {
		header = strings.Split(first, sep)
	}
	records := [][]string{header}
	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, strings.Split(line, sep))
	}

	table := &Table{
		Header: records[0],
		Rows:   make([]Row, 0, len(records)-1),
	}
	for i, fields := range records[1:] {
		table.Rows = append(table.Rows, p.rowFromFields(i, fields))
	}
	p.Log.V(1).Info("parsed schedule", "rows", len(table.Rows), "max_slots", table.MaxSlots())
	return table, nil
}

func (p *Parser) rowFromFields(index int, fields []string) Row {
	row := Row{}
	if len(fields) > 0 {
		row.Subject = fields[0]
	}
	raw := ""
	if len(fields) > 1 {
		raw = fields[1]
	}
	pointer, ok := ParsePointer(raw)
	if !ok {
		p.Log.V(1).Info("pointer field not numeric, using 0", "row", index, "raw", raw)
	}
	row.Pointer = pointer
	if len(fields) > 2 {
		row.Slots = append([]string(nil), fields[2:]...)
	}
	return row
}

// ParsePointer coerces a raw pointer field to an integer. Anything that is not
// a base-10 integer yields 0 and false.
func ParsePointer(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}
