package schema

// Union holds the result of validating a value against a union(T,U,...)
// field: the coerced Value and the name of the variant that matched, in the
// order declared by the field's `union=` tag.
type Union struct {
	Value   any
	Variant string
}

// Date represents a date-only value distinct from a full date-time.
type Date struct {
	Year, Month, Day int
}
