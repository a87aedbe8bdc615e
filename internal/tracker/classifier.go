package tracker

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/examslot/internal/schedule"
)

// Class is the highlight classification of a slot.
type Class int

const (
	// Neutral slots do not match the query.
	Neutral Class = iota
	// Past slots match the query at or before the effective pointer.
	Past
	// Next is the single earliest match at or after the effective pointer.
	Next
	// Future slots match the query after the Next slot.
	Future
)

var classNames = [...]string{
	Neutral: "NEUTRAL",
	Past:    "PAST",
	Next:    "NEXT",
	Future:  "FUTURE",
}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return fmt.Sprintf("Class(%d)", int(c))
	}
	return classNames[c]
}

// MarshalText encodes the class by name for json, yaml and toml output.
func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a class name, ignoring case.
func (c *Class) UnmarshalText(b []byte) error {
	name := strings.ToUpper(strings.TrimSpace(string(b)))
	for i, n := range classNames {
		if n == name {
			*c = Class(i)
			return nil
		}
	}
	return fmt.Errorf("unknown class %q", string(b))
}

// Cell is the display state of one slot.
type Cell struct {
	Class           Class `json:"class" yaml:"class" toml:"class"`
	IsCurrentColumn bool  `json:"current" yaml:"current" toml:"current"`
}

// Classify returns the display state of the slot at ordinal.
// The current-column flag depends only on the effective pointer; the class
// follows the first matching rule: empty query, occupant mismatch, next
// ordinal, at or before the pointer, otherwise future.
func Classify(occupant string, ordinal int, state RowState, query string) Cell {
	cell := Cell{
		Class:           Neutral,
		IsCurrentColumn: state.EffectivePointer > 0 && ordinal == state.EffectivePointer,
	}
	switch {
	case query == "":
	case occupant != query:
	case state.HasNext && ordinal == state.NextOrdinal:
		cell.Class = Next
	case ordinal <= state.EffectivePointer:
		cell.Class = Past
	default:
		cell.Class = Future
	}
	return cell
}

// ClassifyRow classifies every slot of row in ordinal order.
func ClassifyRow(row schedule.Row, state RowState, query string) []Cell {
	cells := make([]Cell, len(row.Slots))
	for i, occupant := range row.Slots {
		cells[i] = Classify(occupant, i+1, state, query)
	}
	return cells
}
