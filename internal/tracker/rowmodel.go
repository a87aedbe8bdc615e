package tracker

import "github.com/oakwood-commons/examslot/internal/schedule"

// RowState is the derived state of one schedule row.
// NextOrdinal is only meaningful when HasNext is true.
type RowState struct {
	EffectivePointer int   `json:"effective_pointer" yaml:"effective_pointer" toml:"effective_pointer"`
	MatchingOrdinals []int `json:"matching_ordinals" yaml:"matching_ordinals" toml:"matching_ordinals"`
	NextOrdinal      int   `json:"next_ordinal,omitempty" yaml:"next_ordinal,omitempty" toml:"next_ordinal,omitempty"`
	HasNext          bool  `json:"has_next" yaml:"has_next" toml:"has_next"`
}

// Derive computes the row state for the given override and query.
// A nil override uses the row's parsed pointer. The effective pointer is
// clamped to [0, SlotCount].
func Derive(row schedule.Row, override *int, query string) RowState {
	pointer := row.Pointer
	if override != nil {
		pointer = *override
	}
	state := RowState{
		EffectivePointer: clamp(pointer, 0, row.SlotCount()),
		MatchingOrdinals: []int{},
	}
	if query == "" {
		return state
	}

	for i, occupant := range row.Slots {
		if occupant != query {
			continue
		}
		ordinal := i + 1
		state.MatchingOrdinals = append(state.MatchingOrdinals, ordinal)
		// inclusive: a match on the current slot is still next
		if !state.HasNext && ordinal >= state.EffectivePointer {
			state.NextOrdinal = ordinal
			state.HasNext = true
		}
	}
	return state
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
