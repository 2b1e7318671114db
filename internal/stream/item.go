package stream

import "time"

// Item is a single value flowing through a stream, carrying the key used
// to cache and invalidate it across builds.
type Item[T any] struct {
	Key        Key
	Value      T
	ProducedAt time.Time
}

// NewItem builds an Item with a version computed from value's content
// hash (or its ContentHash method, if it implements one).
func NewItem[T any](source, id string, value T) Item[T] {
	return NewItemVersion(source, id, versionFor(value), value)
}

// NewItemVersion builds an Item with an explicit version, bypassing
// content hashing.
func NewItemVersion[T any](source, id, version string, value T) Item[T] {
	return Item[T]{
		Key:        Key{Source: source, ID: id, Version: version},
		Value:      value,
		ProducedAt: time.Now(),
	}
}

func eraseItem[T any](item Item[T]) Item[any] {
	return Item[any]{Key: item.Key, Value: item.Value, ProducedAt: item.ProducedAt}
}
