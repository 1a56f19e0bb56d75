package extract

// OrderedSet is an insertion-ordered set. Iteration order is the order of
// first insertion, which keeps deduplicated output deterministic.
type OrderedSet[T comparable] struct {
	seen  map[T]struct{}
	items []T
}

// NewOrderedSet creates an empty ordered set
func NewOrderedSet[T comparable]() *OrderedSet[T] {
	return &OrderedSet[T]{seen: make(map[T]struct{})}
}

// Add inserts v and reports whether it was new
func (s *OrderedSet[T]) Add(v T) bool {
	if _, ok := s.seen[v]; ok {
		return false
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Len returns the number of distinct items
func (s *OrderedSet[T]) Len() int {
	return len(s.items)
}

// Items returns the distinct items in insertion order
func (s *OrderedSet[T]) Items() []T {
	return s.items
}

// Head returns at most n distinct items in insertion order
func (s *OrderedSet[T]) Head(n int) []T {
	if n < 0 || n >= len(s.items) {
		return append([]T(nil), s.items...)
	}
	return append([]T(nil), s.items[:n]...)
}

// Unique returns the distinct values of items in first-seen order, capped at limit.
// A negative limit means no cap.
func Unique[T comparable](items []T, limit int) []T {
	set := NewOrderedSet[T]()
	for _, it := range items {
		set.Add(it)
	}
	return set.Head(limit)
}
