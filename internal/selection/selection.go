// Package selection tracks the set of defect identifiers chosen for bulk
// action, scoped to the currently filtered view.
package selection

import (
	"sort"
	"sync"
)

// Model holds the selected identifiers. Safe for concurrent use.
//
// Invariant: a member must exist in the currently filtered view; Prune
// enforces this whenever the view changes.
type Model struct {
	mu  sync.Mutex
	set map[int]struct{}
}

// NewModel creates an empty selection.
func NewModel() *Model {
	return &Model{set: make(map[int]struct{})}
}

// Toggle adds the identifier to the selection if absent, removes it if
// present.
func (m *Model) Toggle(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.set[id]; ok {
		delete(m.set, id)
	} else {
		m.set[id] = struct{}{}
	}
}

// SelectAll toggles against the full filtered view: if the selection already
// equals exactly the visible identifiers, it clears; otherwise it becomes
// exactly that set, discarding any prior unrelated members.
func (m *Model) SelectAll(visible []int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.equalsLocked(visible) {
		m.set = make(map[int]struct{})
		return
	}

	m.set = make(map[int]struct{}, len(visible))
	for _, id := range visible {
		m.set[id] = struct{}{}
	}
}

// Prune drops every member no longer present in the filtered view.
func (m *Model) Prune(visible []int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keep := make(map[int]struct{}, len(visible))
	for _, id := range visible {
		keep[id] = struct{}{}
	}
	for id := range m.set {
		if _, ok := keep[id]; !ok {
			delete(m.set, id)
		}
	}
}

// Contains reports whether the identifier is selected.
func (m *Model) Contains(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.set[id]
	return ok
}

// IDs returns the selected identifiers in ascending order.
func (m *Model) IDs() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int, 0, len(m.set))
	for id := range m.set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Count returns the number of selected identifiers.
func (m *Model) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.set)
}

// Clear empties the selection.
func (m *Model) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = make(map[int]struct{})
}

// equalsLocked reports whether the selection is exactly the given id set.
// Caller holds mu.
func (m *Model) equalsLocked(visible []int) bool {
	if len(m.set) != len(visible) {
		return false
	}
	for _, id := range visible {
		if _, ok := m.set[id]; !ok {
			return false
		}
	}
	return true
}
