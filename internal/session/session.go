// Package session owns the state of one viewing session: the loaded schedule,
// the per-row pointer overrides and the query identifier.
package session

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/oakwood-commons/examslot/internal/schedule"
	"github.com/oakwood-commons/examslot/internal/source"
	"github.com/oakwood-commons/examslot/internal/tracker"
	"github.com/oakwood-commons/examslot/pkg/logger"
)

// Loaded is the result of a fetch and parse that has not been applied yet.
type Loaded struct {
	ID    string
	Seq   uint64
	Table *schedule.Table
}

// RowView is the derived display state of one row.
type RowView struct {
	Index int              `json:"index" yaml:"index" toml:"index"`
	Row   schedule.Row     `json:"row" yaml:"row" toml:"row"`
	State tracker.RowState `json:"state" yaml:"state" toml:"state"`
	Cells []tracker.Cell   `json:"cells" yaml:"cells" toml:"cells"`
}

// Session is owned by a single goroutine; it has no locking.
type Session struct {
	fetcher source.Fetcher
	parser  *schedule.Parser
	log     logr.Logger

	table    *schedule.Table
	pointers *tracker.PointerStore
	query    string

	issued  uint64
	applied uint64
	lastID  string
}

// New returns an empty session reading from fetcher.
func New(fetcher source.Fetcher, parser *schedule.Parser, lgr logr.Logger) *Session {
	if parser == nil {
		parser = schedule.NewParser(schedule.DefaultDelimiter, lgr)
	}
	return &Session{
		fetcher:  fetcher,
		parser:   parser,
		log:      lgr,
		pointers: tracker.NewPointerStore(),
	}
}

// Location describes the schedule source.
func (s *Session) Location() string {
	if s.fetcher == nil {
		return ""
	}
	return s.fetcher.Location()
}

// NextSeq reserves a sequence number for a refresh.
func (s *Session) NextSeq() uint64 {
	s.issued++
	return s.issued
}

// Load fetches and parses the schedule without touching session state, so it
// can run off the owning goroutine.
func (s *Session) Load(ctx context.Context, seq uint64) (*Loaded, error) {
	if s.fetcher == nil {
		return nil, source.ErrNoSource
	}
	id := uuid.NewString()
	lgr := s.log.WithValues(logger.RefreshIDKey, id, "seq", seq, logger.SourceKey, s.fetcher.Location())
	lgr.V(1).Info("refresh started")

	raw, err := s.fetcher.Fetch(ctx)
	if err != nil {
		lgr.Error(err, "refresh failed")
		return nil, err
	}
	table, err := s.parser.Parse(raw)
	if err != nil {
		lgr.Error(err, "decode failed")
		return nil, &source.FetchError{Source: s.fetcher.Location(), Err: fmt.Errorf("decode: %w", err)}
	}
	lgr.V(1).Info("refresh loaded", "rows", table.Len())
	return &Loaded{ID: id, Seq: seq, Table: table}, nil
}

// Apply replaces the table and resets every pointer override to the freshly
// parsed values in one step. Results are applied in arrival order.
func (s *Session) Apply(l *Loaded) {
	if l == nil || l.Table == nil {
		return
	}
	if l.Seq < s.applied {
		s.log.V(1).Info("applying refresh older than current data", "seq", l.Seq, "current", s.applied)
	}
	s.table = l.Table
	s.pointers.ResetAll(l.Table.Fallbacks())
	s.applied = l.Seq
	s.lastID = l.ID
	s.log.V(1).Info("schedule loaded", logger.RefreshIDKey, l.ID, "rows", l.Table.Len())
}

// Refresh loads and applies in one call. On error the current state is kept.
func (s *Session) Refresh(ctx context.Context) error {
	loaded, err := s.Load(ctx, s.NextSeq())
	if err != nil {
		return err
	}
	s.Apply(loaded)
	return nil
}

// HasData reports whether a schedule has been applied.
func (s *Session) HasData() bool {
	return s.table != nil
}

// Table returns the current schedule, or nil before the first load.
func (s *Session) Table() *schedule.Table {
	return s.table
}

// LastRefreshID returns the correlation id of the applied refresh.
func (s *Session) LastRefreshID() string {
	return s.lastID
}

// Len returns the number of rows.
func (s *Session) Len() int {
	return s.table.Len()
}

// Query returns the current query identifier.
func (s *Session) Query() string {
	return s.query
}

// SetQuery replaces the query identifier. It is compared verbatim.
func (s *Session) SetQuery(q string) {
	s.query = q
}

// ClearQuery resets the query identifier to empty.
func (s *Session) ClearQuery() {
	s.query = ""
}

// Adjust nudges the pointer of row by delta and returns the new value.
// Out-of-range rows are ignored and return -1.
func (s *Session) Adjust(row, delta int) int {
	if row < 0 || row >= s.Len() {
		return -1
	}
	v := s.pointers.Adjust(row, delta, s.table.Rows[row].SlotCount())
	s.log.V(1).Info("pointer adjusted", logger.RowKey, row, "delta", delta, "value", v)
	return v
}

// Pointer returns the effective pointer of row.
func (s *Session) Pointer(row int) int {
	if row < 0 || row >= s.Len() {
		return 0
	}
	return s.View(row).State.EffectivePointer
}

// View derives the display state of one row. Before the first load, or for
// a row out of range, it returns an empty view carrying only the index.
func (s *Session) View(row int) RowView {
	if row < 0 || row >= s.Len() {
		return RowView{Index: row}
	}
	r := s.table.Rows[row]
	var override *int
	if v, ok := s.pointers.Lookup(row); ok {
		override = &v
	}
	state := tracker.Derive(r, override, s.query)
	return RowView{
		Index: row,
		Row:   r,
		State: state,
		Cells: tracker.ClassifyRow(r, state, s.query),
	}
}

// Views derives every row.
func (s *Session) Views() []RowView {
	out := make([]RowView, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		out = append(out, s.View(i))
	}
	return out
}

// Overrides returns a copy of the pointer overrides.
func (s *Session) Overrides() map[int]int {
	return s.pointers.Snapshot()
}
