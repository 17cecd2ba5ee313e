package service

import "sync"

// Selection is the ephemeral set of selected entity ids. It is UI-session
// scoped: nothing about it survives a refresh, and bulk actions clear it.
// Insertion order is kept so exports list rows in the order they were picked.
type Selection struct {
	mu    sync.Mutex
	ids   map[string]struct{}
	order []string
}

// NewSelection constructs an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: map[string]struct{}{}}
}

// Toggle adds the id if absent and removes it if present.
func (s *Selection) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		for i, existing := range s.order {
			if existing == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return false
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// SelectAll replaces the selection with the given ids. Callers pass the ids
// of the currently displayed page, not the full filtered set; acting on rows
// the user cannot see is deliberately out of reach.
func (s *Selection) SelectAll(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[string]struct{}, len(ids))
	s.order = s.order[:0]
	for _, id := range ids {
		if _, ok := s.ids[id]; ok {
			continue
		}
		s.ids[id] = struct{}{}
		s.order = append(s.order, id)
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = map[string]struct{}{}
	s.order = s.order[:0]
}

// IDs returns the selected ids in selection order.
func (s *Selection) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Contains reports membership.
func (s *Selection) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Len returns the selection size.
func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
