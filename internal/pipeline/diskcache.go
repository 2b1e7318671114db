package pipeline

import (
	"github.com/bengal-ssg/bengal/internal/stream"
	"github.com/bengal-ssg/bengal/internal/streamcache"
)

// diskCachedMap wraps upstream in a stage whose output is persisted to
// cache under name, keyed by each item's existing key with its Source
// replaced by name. A disk hit skips fn entirely; this is built on
// stream.Source rather than stream.Map, so it does not carry the
// .parallel metadata stream.Parallel looks for and should only wrap
// stages that don't need worker-pool fan-out.
func diskCachedMap[T, U any](upstream *stream.Stream[T], name string, cache *streamcache.Cache, fn func(T) (U, error)) *stream.Stream[U] {
	return stream.Source(name, func() ([]stream.Item[U], error) {
		items, err := upstream.Iterate()
		if err != nil {
			return nil, err
		}
		out := make([]stream.Item[U], 0, len(items))
		for _, it := range items {
			key := stream.Key{Source: name, ID: it.Key.ID, Version: it.Key.Version}
			if cached, ok := streamcache.Get[U](cache, key); ok {
				out = append(out, stream.Item[U]{Key: key, Value: cached})
				continue
			}
			val, err := fn(it.Value)
			if err != nil {
				return nil, err
			}
			if err := streamcache.Put(cache, key, val); err != nil {
				return nil, err
			}
			out = append(out, stream.Item[U]{Key: key, Value: val})
		}
		return out, nil
	})
}
