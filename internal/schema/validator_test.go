package schema

import "testing"

type BlogPost struct {
	Title string   `schema:"title,required"`
	Draft bool     `schema:"draft"`
	Tags  []string `schema:"tags"`
	Extra *string  `schema:"subtitle"`
}

func TestValidateRequiredMissing(t *testing.T) {
	v := New(&BlogPost{})
	result := v.Validate(map[string]any{})
	if result.Valid {
		t.Fatal("expected validation to fail on missing required field")
	}
	if len(result.Errors) != 1 || result.Errors[0].Field != "title" {
		t.Errorf("unexpected errors: %+v", result.Errors)
	}
}

func TestValidateBoolCoercion(t *testing.T) {
	v := New(&BlogPost{})
	result := v.Validate(map[string]any{"title": "Hi", "draft": "yes"})
	if !result.Valid {
		t.Fatalf("expected valid, got errors: %s", result.ErrorSummary())
	}
	post := result.Data.(*BlogPost)
	if !post.Draft {
		t.Error("expected draft=true from 'yes'")
	}
}

func TestValidateListOfString(t *testing.T) {
	v := New(&BlogPost{})
	result := v.Validate(map[string]any{
		"title": "Hi",
		"tags":  []any{"go", "cli"},
	})
	if !result.Valid {
		t.Fatalf("expected valid, got: %s", result.ErrorSummary())
	}
	post := result.Data.(*BlogPost)
	if len(post.Tags) != 2 || post.Tags[0] != "go" {
		t.Errorf("unexpected tags: %v", post.Tags)
	}
}

func TestValidateUnknownFieldStrict(t *testing.T) {
	v := New(&BlogPost{}, Strict(true))
	result := v.Validate(map[string]any{"title": "Hi", "bogus": 1})
	if result.Valid {
		t.Fatal("expected strict mode to reject unknown field")
	}
}

func TestValidateUnknownFieldLenient(t *testing.T) {
	v := New(&BlogPost{}, Strict(false))
	result := v.Validate(map[string]any{"title": "Hi", "bogus": 1})
	if !result.Valid {
		t.Fatalf("expected lenient mode to ignore unknown field: %s", result.ErrorSummary())
	}
}

func TestValidateOptionalPointer(t *testing.T) {
	v := New(&BlogPost{})
	result := v.Validate(map[string]any{"title": "Hi"})
	if !result.Valid {
		t.Fatalf("unexpected errors: %s", result.ErrorSummary())
	}
	post := result.Data.(*BlogPost)
	if post.Extra != nil {
		t.Error("expected nil optional field when absent")
	}
}

type unionSchema struct {
	ID Union `schema:"id,union=string|int"`
}

func TestValidateUnionOrderPreserved(t *testing.T) {
	v := New(&unionSchema{})

	result := v.Validate(map[string]any{"id": 42})
	if !result.Valid {
		t.Fatalf("unexpected errors: %s", result.ErrorSummary())
	}
	id := result.Data.(*unionSchema).ID
	if id.Variant != "string" || id.Value != "42" {
		t.Errorf("expected 42 to coerce to string variant '42', got %+v", id)
	}
}

func TestValidateDepthExceeded(t *testing.T) {
	type Leaf struct {
		Child *Leaf `schema:"child"`
	}
	v := New(&Leaf{}, MaxDepth(1))
	result := v.Validate(map[string]any{"child": map[string]any{"child": map[string]any{}}})
	if result.Valid {
		t.Fatal("expected depth-exceeded error")
	}
}
