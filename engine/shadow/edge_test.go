package shadow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEdgeIsCanonical(t *testing.T) {
	assert.Equal(t, Edge{A: 2, B: 7}, NewEdge(7, 2))
	assert.Equal(t, NewEdge(2, 7), NewEdge(7, 2))
	assert.Equal(t, Edge{A: 2, B: 7}, Edge{A: 7, B: 2}.Key())
}

func TestEdgeSetToggle(t *testing.T) {
	s := NewEdgeSet(4)

	assert.True(t, s.Toggle(Edge{A: 3, B: 1}))
	assert.True(t, s.Contains(Edge{A: 1, B: 3}))
	assert.True(t, s.Contains(Edge{A: 3, B: 1}))
	assert.Equal(t, []Edge{{A: 3, B: 1}}, s.Edges(), "first orientation is kept")

	assert.False(t, s.Toggle(Edge{A: 1, B: 3}), "reverse orientation cancels")
	assert.False(t, s.Contains(Edge{A: 3, B: 1}))
	assert.Equal(t, 0, s.Len())
}

func TestEdgeSetSwapRemove(t *testing.T) {
	s := NewEdgeSet(0)
	s.Toggle(Edge{A: 0, B: 1})
	s.Toggle(Edge{A: 1, B: 2})
	s.Toggle(Edge{A: 2, B: 3})

	s.Toggle(Edge{A: 1, B: 0})
	assert.Equal(t, []Edge{{A: 2, B: 3}, {A: 1, B: 2}}, s.Edges())

	s.Toggle(Edge{A: 2, B: 1})
	assert.Equal(t, []Edge{{A: 2, B: 3}}, s.Edges())
	assert.True(t, s.Contains(Edge{A: 3, B: 2}))
}

func TestEdgeSetDeterministicOrder(t *testing.T) {
	seq := []Edge{{0, 1}, {1, 2}, {2, 0}, {0, 2}, {2, 3}, {3, 0}, {1, 0}}

	a, b := NewEdgeSet(0), NewEdgeSet(16)
	for _, e := range seq {
		a.Toggle(e)
		b.Toggle(e)
	}
	assert.Equal(t, a.Edges(), b.Edges())
}

func TestEdgeSetClearKeepsStorage(t *testing.T) {
	s := NewEdgeSet(8)
	for i := range uint32(8) {
		s.Toggle(Edge{A: i, B: i + 1})
	}
	capacity := cap(s.Edges())

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains(Edge{A: 0, B: 1}))
	assert.Equal(t, capacity, cap(s.Edges()))

	assert.True(t, s.Toggle(Edge{A: 0, B: 1}))
}
