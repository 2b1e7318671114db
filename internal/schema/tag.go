package schema

import "strings"

// fieldTag is the parsed form of a `schema:"..."` struct tag.
//
// Syntax: `schema:"name,required"` or `schema:"name,union=string|int"`.
// The name defaults to the lowercased Go field name when omitted (a dash
// name disables the field entirely, as with encoding/json).
type fieldTag struct {
	Name       string
	Required   bool
	UnionOrder []string
	Skip       bool
}

func parseFieldTag(goName, tag string) fieldTag {
	if tag == "-" {
		return fieldTag{Skip: true}
	}
	parts := strings.Split(tag, ",")
	ft := fieldTag{Name: strings.ToLower(goName)}
	if len(parts) > 0 && parts[0] != "" {
		ft.Name = parts[0]
	}
	for _, p := range parts[1:] {
		switch {
		case p == "required":
			ft.Required = true
		case strings.HasPrefix(p, "union="):
			ft.UnionOrder = strings.Split(strings.TrimPrefix(p, "union="), "|")
		}
	}
	return ft
}
