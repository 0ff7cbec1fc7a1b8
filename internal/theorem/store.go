// Package theorem holds the set of derived strings and the depth at which
// each was first derived.
package theorem

// Theorem is a derivable string tagged with the iteration that first
// produced it. Axioms have depth 0.
type Theorem struct {
	Value string `json:"value"`
	Depth int    `json:"depth"`
}

// Store is an insertion-ordered set of theorems. A value is recorded once,
// at its first depth, and never removed. Store is not safe for concurrent
// mutation.
type Store struct {
	order []Theorem
	index map[string]int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Add records value at depth. It returns false, leaving the store
// unchanged, when value is already known.
func (s *Store) Add(value string, depth int) bool {
	if _, ok := s.index[value]; ok {
		return false
	}
	s.index[value] = len(s.order)
	s.order = append(s.order, Theorem{Value: value, Depth: depth})
	return true
}

// Contains reports whether value is known.
func (s *Store) Contains(value string) bool {
	_, ok := s.index[value]
	return ok
}

// Depth returns the depth value was first derived at.
func (s *Store) Depth(value string) (int, bool) {
	i, ok := s.index[value]
	if !ok {
		return 0, false
	}
	return s.order[i].Depth, true
}

// Len returns the number of theorems.
func (s *Store) Len() int {
	return len(s.order)
}

// Values returns the known strings in insertion order.
func (s *Store) Values() []string {
	out := make([]string, len(s.order))
	for i, t := range s.order {
		out[i] = t.Value
	}
	return out
}

// All returns a copy of every theorem in insertion order.
func (s *Store) All() []Theorem {
	out := make([]Theorem, len(s.order))
	copy(out, s.order)
	return out
}

// UpTo returns the theorems with depth <= maxDepth in insertion order.
func (s *Store) UpTo(maxDepth int) []Theorem {
	var out []Theorem
	for _, t := range s.order {
		if t.Depth <= maxDepth {
			out = append(out, t)
		}
	}
	return out
}
