package tracker

// PointerStore holds per-row pointer overrides for one session.
// It is not safe for concurrent use.
type PointerStore struct {
	overrides map[int]int
}

// NewPointerStore returns an empty store.
func NewPointerStore() *PointerStore {
	return &PointerStore{overrides: make(map[int]int)}
}

// Get returns the override for rowIndex, or fallback when none is set.
func (s *PointerStore) Get(rowIndex, fallback int) int {
	if v, ok := s.overrides[rowIndex]; ok {
		return v
	}
	return fallback
}

// Lookup returns the override for rowIndex and whether one is set.
func (s *PointerStore) Lookup(rowIndex int) (int, bool) {
	v, ok := s.overrides[rowIndex]
	return v, ok
}

// Adjust moves the row's pointer by delta, clamped to [0, slotCount], and
// stores the result. A row without an override starts from 0; a stored value
// outside the range is clamped before delta is applied.
func (s *PointerStore) Adjust(rowIndex, delta, slotCount int) int {
	if s.overrides == nil {
		s.overrides = make(map[int]int)
	}
	if slotCount < 0 {
		slotCount = 0
	}
	v := clamp(clamp(s.overrides[rowIndex], 0, slotCount)+delta, 0, slotCount)
	s.overrides[rowIndex] = v
	return v
}

// ResetAll replaces every override with the given values.
func (s *PointerStore) ResetAll(fallbacks map[int]int) {
	next := make(map[int]int, len(fallbacks))
	for k, v := range fallbacks {
		next[k] = v
	}
	s.overrides = next
}

// Snapshot returns a copy of the current overrides.
func (s *PointerStore) Snapshot() map[int]int {
	out := make(map[int]int, len(s.overrides))
	for k, v := range s.overrides {
		out[k] = v
	}
	return out
}

// Len returns the number of rows with an override.
func (s *PointerStore) Len() int {
	return len(s.overrides)
}
