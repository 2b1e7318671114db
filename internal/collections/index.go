package collections

import "sort"

// Index is a generic secondary index over a key type K, mapping each key to
// the paths of the pages carrying it. It backs collection-style listings
// that aren't reflected in the section tree, such as author or category
// pages built from frontmatter fields rather than directory structure.
type Index[K comparable] struct {
	byKey map[K][]string
}

// NewIndex returns an empty Index.
func NewIndex[K comparable]() *Index[K] {
	return &Index[K]{byKey: map[K][]string{}}
}

// Add records that path carries key.
func (idx *Index[K]) Add(key K, path string) {
	idx.byKey[key] = append(idx.byKey[key], path)
}

// Paths returns the sorted page paths recorded for key.
func (idx *Index[K]) Paths(key K) []string {
	paths := append([]string(nil), idx.byKey[key]...)
	sort.Strings(paths)
	return paths
}

// Keys returns every key currently recorded in the index, sorted with less.
func (idx *Index[K]) Keys(less func(a, b K) bool) []K {
	keys := make([]K, 0, len(idx.byKey))
	for k := range idx.byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return less(keys[i], keys[j]) })
	return keys
}

// BuildIndex builds an Index[K] from items, using keyFn to extract zero or
// more keys per item and pathFn to extract the item's page path.
func BuildIndex[T any, K comparable](items []T, pathFn func(T) string, keyFn func(T) []K) *Index[K] {
	idx := NewIndex[K]()
	for _, item := range items {
		path := pathFn(item)
		for _, key := range keyFn(item) {
			idx.Add(key, path)
		}
	}
	return idx
}
