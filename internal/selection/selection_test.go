package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleAddsAndRemoves(t *testing.T) {
	m := NewModel()

	m.Toggle(3)
	assert.True(t, m.Contains(3))
	assert.Equal(t, 1, m.Count())

	m.Toggle(3)
	assert.False(t, m.Contains(3))
	assert.Zero(t, m.Count())
}

func TestSelectAllBecomesExactlyTheVisibleSet(t *testing.T) {
	m := NewModel()
	m.Toggle(99) // unrelated prior member

	m.SelectAll([]int{1, 2, 3})

	assert.Equal(t, []int{1, 2, 3}, m.IDs())
	assert.False(t, m.Contains(99))
}

func TestSelectAllTogglesOffWhenAlreadyExact(t *testing.T) {
	m := NewModel()

	m.SelectAll([]int{1, 2, 3})
	assert.Equal(t, 3, m.Count())

	// Second invocation against the same view clears
	m.SelectAll([]int{1, 2, 3})
	assert.Zero(t, m.Count())
}

func TestSelectAllWithPartialOverlapReplaces(t *testing.T) {
	m := NewModel()
	m.Toggle(1)
	m.Toggle(2)

	// Selection differs from the view, so it becomes the view
	m.SelectAll([]int{2, 3})
	assert.Equal(t, []int{2, 3}, m.IDs())
}

func TestPruneDropsMembersOutsideTheView(t *testing.T) {
	m := NewModel()
	m.SelectAll([]int{1, 2, 3, 4})

	m.Prune([]int{2, 4})

	assert.Equal(t, []int{2, 4}, m.IDs())

	m.Prune(nil)
	assert.Zero(t, m.Count())
}

func TestIDsAreSorted(t *testing.T) {
	m := NewModel()
	m.Toggle(9)
	m.Toggle(1)
	m.Toggle(5)

	assert.Equal(t, []int{1, 5, 9}, m.IDs())
}

func TestClear(t *testing.T) {
	m := NewModel()
	m.SelectAll([]int{1, 2})

	m.Clear()

	assert.Zero(t, m.Count())
	assert.Empty(t, m.IDs())
}
