package stream

import (
	"strings"

	"github.com/bengal-ssg/bengal/internal/bhash"
)

// Collect is a barrier: it waits for every upstream item, then emits a
// single item holding all values as a slice. Its version is derived from
// every upstream item's version, so any upstream change invalidates it.
func Collect[T any](upstream *Stream[T], name string) *Stream[[]T] {
	return newStream[[]T](name, func() ([]Item[[]T], error) {
		items, err := upstream.Iterate()
		if err != nil {
			return nil, err
		}
		values := make([]T, len(items))
		versions := make([]string, len(items))
		for i, item := range items {
			values[i] = item.Value
			versions[i] = item.Key.Version
		}

		version := "empty"
		if len(items) > 0 {
			version = bhash.Content(strings.Join(versions, ":"))
		}
		return []Item[[]T]{NewItemVersion(name, "all", version, values)}, nil
	})
}

// anyStream is satisfied by every *Stream[T]; it lets Combine accept
// streams of differing element types.
type anyStream interface {
	streamName() string
	iterateAny() ([]Item[any], error)
}

func (s *Stream[T]) streamName() string { return s.Name }

// Combine is a barrier over heterogeneous streams: it collects each
// upstream fully, then emits a single []any item holding one entry per
// upstream (a scalar if that upstream produced exactly one item, or a
// []any if it produced several).
func Combine(name string, upstreams ...anyStream) *Stream[[]any] {
	return newStream[[]any](name, func() ([]Item[[]any], error) {
		collected := make([][]Item[any], len(upstreams))
		for i, up := range upstreams {
			items, err := up.iterateAny()
			if err != nil {
				return nil, err
			}
			collected[i] = items
		}

		for _, items := range collected {
			if len(items) == 0 {
				return []Item[[]any]{NewItemVersion(name, "combined", "empty", []any{})}, nil
			}
		}

		values := make([]any, len(collected))
		versions := make([]string, len(collected))
		for i, items := range collected {
			if len(items) == 1 {
				values[i] = items[0].Value
				versions[i] = items[0].Key.Version
				continue
			}
			vals := make([]any, len(items))
			vers := make([]string, len(items))
			for j, item := range items {
				vals[j] = item.Value
				vers[j] = item.Key.Version
			}
			values[i] = vals
			versions[i] = bhash.Content(strings.Join(vers, ":"))
		}

		version := bhash.Content(strings.Join(versions, ":"))
		return []Item[[]any]{NewItemVersion(name, "combined", version, values)}, nil
	})
}
