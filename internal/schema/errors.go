package schema

import "fmt"

// ValidationError describes a single field-level validation failure.
type ValidationError struct {
	Field        string
	Message      string
	Value        any
	ExpectedType string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult is the outcome of validating a frontmatter dictionary
// against a schema. On success Data holds the coerced record and Errors is
// empty; on failure Data is nil and Errors lists every field that failed.
type ValidationResult struct {
	Valid  bool
	Data   any
	Errors []*ValidationError
	Extra  map[string]any
}

// ErrorSummary renders every error as one "- field: message" line.
func (r *ValidationResult) ErrorSummary() string {
	if len(r.Errors) == 0 {
		return ""
	}
	s := ""
	for i, e := range r.Errors {
		if i > 0 {
			s += "\n"
		}
		s += "  - " + e.Field + ": " + e.Message
	}
	return s
}
