package schedule

import (
	"slices"
	"strconv"
	"strings"

	"github.com/sgrm/scheduler/internal/delivery"
)

// Selection is the set of delivery identifiers ticked in the table.
// The zero value is an empty selection ready to use.
type Selection struct {
	ids map[int64]struct{}
}

// NewSelection returns a selection holding ids.
func NewSelection(ids ...int64) Selection {
	s := Selection{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		if id > 0 {
			s.ids[id] = struct{}{}
		}
	}
	return s
}

// Toggle flips id and reports whether it is selected afterwards.
func (s *Selection) Toggle(id int64) bool {
	if id <= 0 {
		return false
	}
	if s.ids == nil {
		s.ids = make(map[int64]struct{})
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// SetAll selects every persisted visible delivery when checked is true and
// clears the selection otherwise.
func (s *Selection) SetAll(visible []delivery.Delivery, checked bool) {
	s.Clear()
	if !checked {
		return
	}
	for _, d := range visible {
		if d.Persisted() {
			s.ids[d.Key()] = struct{}{}
		}
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = make(map[int64]struct{})
}

// Contains reports whether id is selected.
func (s Selection) Contains(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected identifiers.
func (s Selection) Len() int {
	return len(s.ids)
}

// AllSelected is true only when visible is non-empty and each of its
// persisted deliveries is selected.
func (s Selection) AllSelected(visible []delivery.Delivery) bool {
	if len(visible) == 0 {
		return false
	}
	for _, d := range visible {
		if !d.Persisted() || !s.Contains(d.Key()) {
			return false
		}
	}
	return true
}

// IDs returns the selected identifiers in ascending order.
func (s Selection) IDs() []int64 {
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Encode serialises the selection for session storage ("3,7,9").
func (s Selection) Encode() string {
	ids := s.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// DecodeSelection parses Encode output. Malformed entries are dropped.
func DecodeSelection(raw string) Selection {
	s := NewSelection()
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		s.ids[id] = struct{}{}
	}
	return s
}
