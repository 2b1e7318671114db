package streamcache

import "github.com/bengal-ssg/bengal/internal/stream"

// DiskCached wraps upstream so that items with an unchanged key and
// version take their value from the disk cache, and items missing from it
// are written back to cache. Upstream is still iterated in full on every
// run, so a cache hit does not skip upstream's own work. Cache contents
// survive across builds via Save/Open.
func DiskCached[T any](upstream *stream.Stream[T], name string, cache *Cache) *stream.Stream[T] {
	return stream.Source[T](name, func() ([]stream.Item[T], error) {
		upItems, err := upstream.Iterate()
		if err != nil {
			return nil, err
		}
		out := make([]stream.Item[T], len(upItems))
		for i, item := range upItems {
			if cached, ok := Get[T](cache, item.Key); ok {
				out[i] = stream.NewItemVersion(name, item.Key.ID, item.Key.Version, cached)
				continue
			}
			if err := Put(cache, item.Key, item.Value); err != nil {
				return nil, err
			}
			out[i] = stream.NewItemVersion(name, item.Key.ID, item.Key.Version, item.Value)
		}
		return out, nil
	})
}
