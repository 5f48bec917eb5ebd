package shadow

// Edge is a mesh edge between two welded vertex indices. Edges compare by their Key, which
// orders the endpoints as (min, max), so (a, b) and (b, a) are the same edge. The endpoint
// order of an Edge value is kept so the volume builder can follow the winding of the
// triangle the edge came from.
type Edge struct {
	A uint32
	B uint32
}

// Key returns the canonical form of e used for set membership.
func (e Edge) Key() Edge {
	return NewEdge(e.A, e.B)
}

// NewEdge returns the canonical edge between a and b.
//
// Parameters:
//   - a: first vertex index
//   - b: second vertex index
//
// Returns:
//   - Edge: the edge with A = min(a, b) and B = max(a, b)
func NewEdge(a, b uint32) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// EdgeSet is a toggle set of edges. Toggling an absent edge inserts it and toggling a
// present edge removes it, so an edge shared by two light-facing triangles cancels out and
// only silhouette edges survive.
//
// The set keeps each edge in the orientation it was first inserted with.
// Iteration order is insertion order, except that removing an edge moves the most recently
// inserted edge into its slot. Identical toggle sequences therefore always yield identical
// orders.
type EdgeSet struct {
	index map[Edge]int
	edges []Edge
}

// NewEdgeSet creates an empty edge set with room for capacity edges.
//
// Parameters:
//   - capacity: number of edges to reserve
//
// Returns:
//   - *EdgeSet: the empty set
func NewEdgeSet(capacity int) *EdgeSet {
	return &EdgeSet{
		index: make(map[Edge]int, capacity),
		edges: make([]Edge, 0, capacity),
	}
}

// Toggle inserts e when no edge with the same Key is present and removes the stored edge
// otherwise.
//
// Parameters:
//   - e: the edge to toggle, in either orientation
//
// Returns:
//   - bool: true if the edge is in the set after the call
func (s *EdgeSet) Toggle(e Edge) bool {
	key := e.Key()
	if i, ok := s.index[key]; ok {
		last := len(s.edges) - 1
		if i != last {
			moved := s.edges[last]
			s.edges[i] = moved
			s.index[moved.Key()] = i
		}
		s.edges = s.edges[:last]
		delete(s.index, key)
		return false
	}
	s.index[key] = len(s.edges)
	s.edges = append(s.edges, e)
	return true
}

// Contains reports whether an edge with the same Key as e is in the set.
func (s *EdgeSet) Contains(e Edge) bool {
	_, ok := s.index[e.Key()]
	return ok
}

// Len returns the number of edges in the set.
func (s *EdgeSet) Len() int {
	return len(s.edges)
}

// Edges returns the edges in iteration order and insertion orientation. The slice is owned by the set and is only
// valid until the next Toggle or Clear.
func (s *EdgeSet) Edges() []Edge {
	return s.edges
}

// Clear empties the set and keeps its storage.
func (s *EdgeSet) Clear() {
	clear(s.index)
	s.edges = s.edges[:0]
}
