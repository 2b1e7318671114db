package stream

import "fmt"

// Map applies fn to every item in upstream, producing one output item per
// input under the same id. The result stream remembers enough about
// upstream and fn for Parallel to re-run the same transformation
// concurrently instead of sequentially.
func Map[T, U any](upstream *Stream[T], name string, fn func(T) (U, error)) *Stream[U] {
	s := newStream[U](name, func() ([]Item[U], error) {
		upItems, err := upstream.Iterate()
		if err != nil {
			return nil, err
		}
		out := make([]Item[U], len(upItems))
		for i, item := range upItems {
			val, err := fn(item.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			out[i] = NewItem(name, item.Key.ID, val)
		}
		return out, nil
	})
	s.parallel = &parallelSource{
		name:  name,
		items: upstream.iterateAny,
		apply: func(v any) (any, error) { return fn(v.(T)) },
	}
	return s
}

// Filter keeps only the items for which predicate returns true.
func Filter[T any](upstream *Stream[T], name string, predicate func(T) bool) *Stream[T] {
	return newStream(name, func() ([]Item[T], error) {
		upItems, err := upstream.Iterate()
		if err != nil {
			return nil, err
		}
		out := make([]Item[T], 0, len(upItems))
		for _, item := range upItems {
			if predicate(item.Value) {
				out = append(out, item)
			}
		}
		return out, nil
	})
}

// FlatMap transforms each upstream item into zero or more output items,
// flattening the results. Output ids are "<upstreamID>:<index>".
func FlatMap[T, U any](upstream *Stream[T], name string, fn func(T) ([]U, error)) *Stream[U] {
	return newStream[U](name, func() ([]Item[U], error) {
		upItems, err := upstream.Iterate()
		if err != nil {
			return nil, err
		}
		var out []Item[U]
		for _, item := range upItems {
			results, err := fn(item.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			for i, result := range results {
				out = append(out, NewItem(name, fmt.Sprintf("%s:%d", item.Key.ID, i), result))
			}
		}
		return out, nil
	})
}

// Cache rekeys each item's id using keyFn while preserving its version,
// for explicit control over cache identity. A nil keyFn passes items
// through unchanged.
func Cache[T any](upstream *Stream[T], name string, keyFn func(T) string) *Stream[T] {
	return newStream(name, func() ([]Item[T], error) {
		items, err := upstream.Iterate()
		if err != nil {
			return nil, err
		}
		if keyFn == nil {
			return items, nil
		}
		out := make([]Item[T], len(items))
		for i, item := range items {
			out[i] = Item[T]{
				Key:        Key{Source: name, ID: keyFn(item.Value), Version: item.Key.Version},
				Value:      item.Value,
				ProducedAt: item.ProducedAt,
			}
		}
		return out, nil
	})
}
