package rebuild

import "testing"

func TestClassifyStructuralWinsFirst(t *testing.T) {
	events := map[string]EventType{"content/a.md": EventCreated}
	preds := Predicates{IsTemplate: func(string) bool { return true }}
	got := Classify([]string{"content/a.md"}, events, preds)
	if !got.FullRebuild || got.Reason != ReasonStructural {
		t.Fatalf("got %+v, want structural full rebuild", got)
	}
}

func TestClassifyTemplate(t *testing.T) {
	preds := Predicates{IsTemplate: func(p string) bool { return p == "templates/base.html" }}
	got := Classify([]string{"templates/base.html"}, nil, preds)
	if !got.FullRebuild || got.Reason != ReasonTemplate {
		t.Fatalf("got %+v, want template", got)
	}
}

func TestClassifySVGIcon(t *testing.T) {
	got := Classify([]string{"themes/default/assets/icons/star.svg"}, nil, Predicates{})
	if !got.FullRebuild || got.Reason != ReasonSVGIcon {
		t.Fatalf("got %+v, want svg-icon", got)
	}
}

func TestClassifySVGOutsideIconsDir(t *testing.T) {
	got := Classify([]string{"content/images/star.svg"}, nil, Predicates{})
	if got.FullRebuild {
		t.Fatalf("got %+v, want incremental", got)
	}
}

func TestClassifySharedContent(t *testing.T) {
	preds := Predicates{IsSharedContent: func(p string) bool { return p == "content/shared/banner.md" }}
	got := Classify([]string{"content/shared/banner.md"}, nil, preds)
	if !got.FullRebuild || got.Reason != ReasonSharedContent {
		t.Fatalf("got %+v, want shared-content", got)
	}
}

func TestClassifyVersionConfig(t *testing.T) {
	preds := Predicates{IsVersionConfig: func(p string) bool { return p == "versions.toml" }}
	got := Classify([]string{"versions.toml"}, nil, preds)
	if !got.FullRebuild || got.Reason != ReasonVersionConfig {
		t.Fatalf("got %+v, want version-config", got)
	}
}

func TestClassifyIncremental(t *testing.T) {
	got := Classify([]string{"content/post.md"}, map[string]EventType{"content/post.md": EventModified}, Predicates{})
	if got.FullRebuild || got.Reason != ReasonIncremental {
		t.Fatalf("got %+v, want incremental", got)
	}
}

func TestClassifyAutodoc(t *testing.T) {
	preds := Predicates{RequiresAutodocRegen: func(p string) bool { return p == "src/pkg.go" }}
	got := Classify([]string{"src/pkg.go"}, nil, preds)
	if !got.FullRebuild || got.Reason != ReasonAutodoc {
		t.Fatalf("got %+v, want autodoc", got)
	}
}
