package stream

import (
	"fmt"
	"sync"
)

// Parallel re-runs a Map transformation across a bounded worker pool
// instead of sequentially. It requires upstream to be the direct result
// of Map; for any other stream it degrades to a pass-through.
//
// The upstream Map's source items are materialized exactly once before
// any worker starts, each item is submitted to the pool as exactly one
// task, the map function therefore runs exactly once per item, and
// results are returned in source order regardless of completion order.
func Parallel[T any](upstream *Stream[T], name string, workers int) *Stream[T] {
	if upstream.parallel == nil {
		return newStream(name, upstream.Iterate)
	}
	if workers < 1 {
		workers = 1
	}
	src := upstream.parallel

	return newStream[T](name, func() ([]Item[T], error) {
		sourceItems, err := src.items()
		if err != nil {
			return nil, err
		}
		if len(sourceItems) == 0 {
			return nil, nil
		}

		results := make([]Item[T], len(sourceItems))
		errs := make([]error, len(sourceItems))

		sem := make(chan struct{}, workers)
		var wg sync.WaitGroup
		for i, item := range sourceItems {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, item Item[any]) {
				defer wg.Done()
				defer func() { <-sem }()

				val, err := src.apply(item.Value)
				if err != nil {
					errs[i] = fmt.Errorf("parallel execution failed for %s: %w", item.Key, err)
					return
				}
				typed, ok := val.(T)
				if !ok {
					errs[i] = fmt.Errorf("parallel execution produced unexpected type for %s", item.Key)
					return
				}
				results[i] = NewItem(src.name, item.Key.ID, typed)
			}(i, item)
		}
		wg.Wait()

		for _, e := range errs {
			if e != nil {
				return nil, e
			}
		}
		return results, nil
	})
}
