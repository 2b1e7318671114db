// Package schema validates frontmatter maps against a Go struct schema,
// coercing scalar, list, union, optional, and nested-schema fields and
// collecting every field-level error rather than failing on the first.
package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// DefaultMaxDepth is the default recursion budget for nested schemas.
const DefaultMaxDepth = 10

// Validator validates frontmatter dictionaries against a struct schema.
type Validator struct {
	schemaType reflect.Type
	strict     bool
	allowExtra bool
	maxDepth   int
}

// Option configures a Validator.
type Option func(*Validator)

// Strict rejects unknown frontmatter fields with a per-field error.
func Strict(strict bool) Option {
	return func(v *Validator) { v.strict = strict }
}

// AllowExtra collects unknown fields in ValidationResult.Extra instead of
// rejecting or silently dropping them; they are not stored on the validated
// record itself. Only meaningful when Strict(false).
func AllowExtra(allow bool) Option {
	return func(v *Validator) { v.allowExtra = allow }
}

// MaxDepth overrides the nested-schema recursion budget.
func MaxDepth(n int) Option {
	return func(v *Validator) { v.maxDepth = n }
}

// New builds a Validator for the given struct type. schemaPtr must be a
// pointer to a zero-value instance of the schema struct, e.g. New(&BlogPost{}).
func New(schemaPtr any, opts ...Option) *Validator {
	t := reflect.TypeOf(schemaPtr)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	v := &Validator{
		schemaType: t,
		strict:     true,
		maxDepth:   DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate coerces data against the schema and returns the result. It never
// panics on malformed input.
func (v *Validator) Validate(data map[string]any) *ValidationResult {
	if data == nil {
		return &ValidationResult{
			Valid: false,
			Errors: []*ValidationError{{
				Field: "(root)", Message: "expected map, got nil", ExpectedType: "map",
			}},
		}
	}
	return v.validateStruct(v.schemaType, data, 0)
}

func (v *Validator) validateStruct(t reflect.Type, data map[string]any, depth int) *ValidationResult {
	if depth > v.maxDepth {
		return &ValidationResult{
			Valid: false,
			Errors: []*ValidationError{{
				Field: "(schema)", Message: fmt.Sprintf("maximum nesting depth (%d) exceeded", v.maxDepth),
			}},
		}
	}

	var errs []*ValidationError
	out := reflect.New(t).Elem()
	seen := make(map[string]bool, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := parseFieldTag(sf.Name, sf.Tag.Get("schema"))
		if tag.Skip {
			continue
		}
		seen[tag.Name] = true

		raw, present := data[tag.Name]
		if !present {
			if tag.Required {
				errs = append(errs, &ValidationError{
					Field:        tag.Name,
					Message:      fmt.Sprintf("required field %q is missing", tag.Name),
					ExpectedType: typeDisplayName(sf.Type),
				})
			}
			continue
		}

		coerced, fieldErrs := v.coerce(tag.Name, raw, sf.Type, tag, depth)
		if len(fieldErrs) > 0 {
			errs = append(errs, fieldErrs...)
			continue
		}
		if coerced != nil {
			out.Field(i).Set(reflect.ValueOf(coerced))
		}
	}

	var extra map[string]any
	for k, val := range data {
		if seen[k] {
			continue
		}
		if v.strict {
			errs = append(errs, &ValidationError{
				Field:   k,
				Message: fmt.Sprintf("unknown field %q (not in schema)", k),
				Value:   val,
			})
			continue
		}
		if v.allowExtra {
			if extra == nil {
				extra = make(map[string]any)
			}
			extra[k] = val
		}
	}

	if len(errs) > 0 {
		return &ValidationResult{Valid: false, Errors: errs}
	}
	return &ValidationResult{Valid: true, Data: out.Addr().Interface(), Extra: extra}
}

var timeType = reflect.TypeOf(time.Time{})
var dateType = reflect.TypeOf(Date{})
var unionType = reflect.TypeOf(Union{})

func (v *Validator) coerce(name string, value any, t reflect.Type, tag fieldTag, depth int) (any, []*ValidationError) {
	if value == nil {
		if t.Kind() == reflect.Ptr {
			return nil, nil
		}
		return nil, []*ValidationError{{
			Field: name, Message: "value cannot be nil", ExpectedType: typeDisplayName(t),
		}}
	}

	switch {
	case t.Kind() == reflect.Ptr:
		inner, errs := v.coerce(name, value, t.Elem(), tag, depth)
		if len(errs) > 0 {
			return nil, errs
		}
		ptr := reflect.New(t.Elem())
		if inner != nil {
			ptr.Elem().Set(reflect.ValueOf(inner))
		}
		return ptr.Interface(), nil

	case t == unionType:
		return v.coerceUnion(name, value, tag.UnionOrder, depth)

	case t == timeType:
		return v.coerceDateTime(name, value)

	case t == dateType:
		return v.coerceDate(name, value)

	case t.Kind() == reflect.Slice:
		return v.coerceList(name, value, t, tag, depth)

	case t.Kind() == reflect.Map:
		return v.coerceMap(name, value, t)

	case t.Kind() == reflect.Struct:
		if depth >= v.maxDepth {
			return value, []*ValidationError{{
				Field: name, Message: fmt.Sprintf("maximum nesting depth (%d) exceeded at %q", v.maxDepth, name),
			}}
		}
		m, ok := value.(map[string]any)
		if !ok {
			return value, []*ValidationError{{
				Field: name, Message: fmt.Sprintf("expected map for nested schema, got %T", value),
				Value: value, ExpectedType: t.Name(),
			}}
		}
		nested := &Validator{schemaType: t, strict: v.strict, allowExtra: v.allowExtra, maxDepth: v.maxDepth}
		result := nested.validateStruct(t, m, depth+1)
		if !result.Valid {
			for _, e := range result.Errors {
				e.Field = name + "." + e.Field
			}
			return value, result.Errors
		}
		return reflect.ValueOf(result.Data).Elem().Interface(), nil

	default:
		return v.coerceScalar(name, value, t)
	}
}

func (v *Validator) coerceScalar(name string, value any, t reflect.Type) (any, []*ValidationError) {
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(t) {
		return value, nil
	}

	switch t.Kind() {
	case reflect.String:
		switch val := value.(type) {
		case string:
			return val, nil
		case int, int32, int64:
			return fmt.Sprintf("%d", val), nil
		case float64, float32:
			return fmt.Sprintf("%v", val), nil
		case bool:
			return strconv.FormatBool(val), nil
		}
	case reflect.Bool:
		if b, ok := value.(bool); ok {
			return b, nil
		}
		if s, ok := value.(string); ok {
			switch strings.ToLower(s) {
			case "true", "yes", "1", "on":
				return true, nil
			case "false", "no", "0", "off":
				return false, nil
			}
		}
	case reflect.Int, reflect.Int64:
		if n, ok := asInt64(value); ok {
			return reflect.ValueOf(n).Convert(t).Interface(), nil
		}
		if s, ok := value.(string); ok {
			if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
				return reflect.ValueOf(n).Convert(t).Interface(), nil
			}
		}
	case reflect.Float64, reflect.Float32:
		if f, ok := asFloat64(value); ok {
			return reflect.ValueOf(f).Convert(t).Interface(), nil
		}
		if s, ok := value.(string); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return reflect.ValueOf(f).Convert(t).Interface(), nil
			}
		}
	}

	if _, isCollection := value.([]any); isCollection {
		return value, []*ValidationError{{
			Field: name, Message: fmt.Sprintf("expected %s, got list", t.Kind()),
			Value: value, ExpectedType: t.Kind().String(),
		}}
	}
	if _, isMap := value.(map[string]any); isMap {
		return value, []*ValidationError{{
			Field: name, Message: fmt.Sprintf("expected %s, got map", t.Kind()),
			Value: value, ExpectedType: t.Kind().String(),
		}}
	}
	return value, []*ValidationError{{
		Field: name, Message: fmt.Sprintf("expected %s, got %T", t.Kind(), value),
		Value: value, ExpectedType: t.Kind().String(),
	}}
}

func (v *Validator) coerceList(name string, value any, t reflect.Type, tag fieldTag, depth int) (any, []*ValidationError) {
	items, ok := value.([]any)
	if !ok {
		return value, []*ValidationError{{
			Field: name, Message: fmt.Sprintf("expected list, got %T", value),
			Value: value, ExpectedType: "list",
		}}
	}
	elemType := t.Elem()
	out := reflect.MakeSlice(t, 0, len(items))
	var errs []*ValidationError
	for i, item := range items {
		coerced, itemErrs := v.coerce(fmt.Sprintf("%s[%d]", name, i), item, elemType, fieldTag{}, depth)
		if len(itemErrs) > 0 {
			errs = append(errs, itemErrs...)
			continue
		}
		out = reflect.Append(out, reflect.ValueOf(coerced))
	}
	if len(errs) > 0 {
		return value, errs
	}
	return out.Interface(), nil
}

func (v *Validator) coerceMap(name string, value any, t reflect.Type) (any, []*ValidationError) {
	m, ok := value.(map[string]any)
	if !ok {
		return value, []*ValidationError{{
			Field: name, Message: fmt.Sprintf("expected map, got %T", value),
			Value: value, ExpectedType: "map",
		}}
	}
	if t == reflect.TypeOf(map[string]any{}) {
		return m, nil
	}
	// Structural acceptance only: keys/values are not descended.
	return m, nil
}

func (v *Validator) coerceUnion(name string, value any, order []string, depth int) (any, []*ValidationError) {
	for _, variant := range order {
		vt, ok := unionPrimitiveType(variant)
		if !ok {
			continue
		}
		coerced, errs := v.coerce(name, value, vt, fieldTag{}, depth)
		if len(errs) == 0 {
			return Union{Value: coerced, Variant: variant}, nil
		}
	}
	return value, []*ValidationError{{
		Field: name, Message: fmt.Sprintf("value does not match any type in union(%s)", strings.Join(order, ",")),
		Value: value,
	}}
}

func unionPrimitiveType(name string) (reflect.Type, bool) {
	switch name {
	case "string":
		return reflect.TypeOf(""), true
	case "int":
		return reflect.TypeOf(int(0)), true
	case "float":
		return reflect.TypeOf(float64(0)), true
	case "bool":
		return reflect.TypeOf(false), true
	case "date":
		return dateType, true
	case "datetime":
		return timeType, true
	}
	return nil, false
}

func (v *Validator) coerceDateTime(name string, value any) (any, []*ValidationError) {
	switch val := value.(type) {
	case time.Time:
		return val, nil
	case Date:
		return time.Date(val.Year, time.Month(val.Month), val.Day, 0, 0, 0, 0, time.UTC), nil
	case string:
		if t, ok := ParseFlexibleTime(val); ok {
			return t, nil
		}
	}
	return nil, []*ValidationError{{
		Field: name, Message: fmt.Sprintf("cannot parse %v as date-time", value),
		Value: value, ExpectedType: "date-time",
	}}
}

func (v *Validator) coerceDate(name string, value any) (any, []*ValidationError) {
	switch val := value.(type) {
	case Date:
		return val, nil
	case time.Time:
		return toDate(val), nil
	case string:
		if t, ok := ParseFlexibleTime(val); ok {
			return toDate(t), nil
		}
	}
	return nil, []*ValidationError{{
		Field: name, Message: fmt.Sprintf("cannot parse %v as date", value),
		Value: value, ExpectedType: "date",
	}}
}

func asInt64(value any) (int64, bool) {
	switch n := value.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}

func asFloat64(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func typeDisplayName(t reflect.Type) string {
	switch {
	case t == timeType:
		return "date-time"
	case t == dateType:
		return "date"
	case t == unionType:
		return "union"
	case t.Kind() == reflect.Ptr:
		return "optional(" + typeDisplayName(t.Elem()) + ")"
	case t.Kind() == reflect.Slice:
		return "list<" + typeDisplayName(t.Elem()) + ">"
	default:
		return t.Kind().String()
	}
}
