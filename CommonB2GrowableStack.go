package box2d

/// A slice backed LIFO used for tree traversal and island flood fill.
/// The backing array is kept between uses so steady state traversals
/// do not allocate.
type B2GrowableStack[T any] struct {
	items []T
}

func MakeB2GrowableStack[T any](capacity int) B2GrowableStack[T] {
	return B2GrowableStack[T]{items: make([]T, 0, capacity)}
}

func (s B2GrowableStack[T]) GetCount() int {
	return len(s.items)
}

func (s *B2GrowableStack[T]) Push(value T) {
	s.items = append(s.items, value)
}

/// Pops the top element. The zero value is returned on an empty stack.
func (s *B2GrowableStack[T]) Pop() T {
	var zero T
	n := len(s.items)
	if n == 0 {
		return zero
	}
	value := s.items[n-1]
	s.items[n-1] = zero
	s.items = s.items[:n-1]
	return value
}

func (s *B2GrowableStack[T]) Reset() {
	s.items = s.items[:0]
}
