package stream

import "sync"

// Stream is a lazy, cacheable sequence of Items of type T. Its produce
// function is not invoked until a terminal operation (Iterate,
// Materialize, ForEach, Run, First, Count) runs the graph.
type Stream[T any] struct {
	Name string

	produce func() ([]Item[T], error)

	mu           sync.Mutex
	cache        map[Key]Item[T]
	cacheEnabled bool

	// parallel carries enough type-erased information about this stream's
	// upstream and transformation to let Parallel re-run the same
	// transformation across a worker pool instead of sequentially. It is
	// non-nil only for streams produced by Map.
	parallel *parallelSource
}

// parallelSource lets Parallel extract "the items before the map" and
// "the map function" from a stream built by Map without needing Go generics to
// parameterize over the stream's own type parameters a second time.
type parallelSource struct {
	name  string
	items func() ([]Item[any], error)
	apply func(any) (any, error)
}

func newStream[T any](name string, produce func() ([]Item[T], error)) *Stream[T] {
	return &Stream[T]{
		Name:         name,
		produce:      produce,
		cache:        make(map[Key]Item[T]),
		cacheEnabled: true,
	}
}

// Source creates the entry point of a pipeline from a producer function.
func Source[T any](name string, producer func() ([]Item[T], error)) *Stream[T] {
	return newStream(name, producer)
}

// Iterate runs the stream's computation graph and returns its items,
// serving cached items whose key and version are unchanged.
func (s *Stream[T]) Iterate() ([]Item[T], error) {
	items, err := s.produce()
	if err != nil {
		return nil, err
	}
	if !s.cacheEnabled {
		return items, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item[T], len(items))
	for i, item := range items {
		if cached, ok := s.cache[item.Key]; ok && cached.Key.Version == item.Key.Version {
			out[i] = cached
			continue
		}
		s.cache[item.Key] = item
		out[i] = item
	}
	return out, nil
}

// iterateAny is Iterate with its values type-erased to any, used by
// Combine and Parallel to operate across streams of differing T.
func (s *Stream[T]) iterateAny() ([]Item[any], error) {
	items, err := s.Iterate()
	if err != nil {
		return nil, err
	}
	out := make([]Item[any], len(items))
	for i, item := range items {
		out[i] = eraseItem(item)
	}
	return out, nil
}

// Materialize runs the stream and returns its values.
func (s *Stream[T]) Materialize() ([]T, error) {
	items, err := s.Iterate()
	if err != nil {
		return nil, err
	}
	values := make([]T, len(items))
	for i, item := range items {
		values[i] = item.Value
	}
	return values, nil
}

// ClearCache empties the stream's item cache.
func (s *Stream[T]) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[Key]Item[T])
}

// DisableCache turns off item caching for this stream and returns it for
// chaining.
func (s *Stream[T]) DisableCache() *Stream[T] {
	s.cacheEnabled = false
	return s
}

// ForEach runs the stream and calls fn for each value's side effect.
func (s *Stream[T]) ForEach(fn func(T) error) error {
	items, err := s.Iterate()
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := fn(item.Value); err != nil {
			return err
		}
	}
	return nil
}

// Run executes the stream and returns the count of items processed.
func (s *Stream[T]) Run() (int, error) {
	items, err := s.Iterate()
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// First returns the stream's first value, or ok=false if it is empty.
func (s *Stream[T]) First() (value T, ok bool, err error) {
	items, err := s.Iterate()
	if err != nil {
		return value, false, err
	}
	if len(items) == 0 {
		return value, false, nil
	}
	return items[0].Value, true, nil
}

// Count returns the number of items the stream produces.
func (s *Stream[T]) Count() (int, error) {
	return s.Run()
}
