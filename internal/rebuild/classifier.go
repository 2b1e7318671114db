// Package rebuild classifies a batch of filesystem changes as requiring a
// full rebuild or only an incremental one. The classifier
// is pure: every domain predicate it consults is injected, so it has no
// filesystem or cache dependency of its own.
package rebuild

import "strings"

// EventType is the kind of filesystem event observed for a changed path.
type EventType string

const (
	EventCreated  EventType = "created"
	EventModified EventType = "modified"
	EventDeleted  EventType = "deleted"
	EventMoved    EventType = "moved"
)

// Reason names why a batch was classified as a full rebuild, or
// "incremental" if it wasn't.
type Reason string

const (
	ReasonStructural    Reason = "structural"
	ReasonTemplate      Reason = "template"
	ReasonAutodoc       Reason = "autodoc"
	ReasonSVGIcon       Reason = "svg-icon"
	ReasonSharedContent Reason = "shared-content"
	ReasonVersionConfig Reason = "version-config"
	ReasonIncremental   Reason = "incremental"
)

// Decision is the classifier's verdict for one batch of changes.
type Decision struct {
	FullRebuild bool
	Reason      Reason
}

// Predicates are the injected, domain-specific tests the classifier
// consults. Each operates on a single normalized POSIX path (except
// IsTemplate, which is also asked per-path) and must be pure.
type Predicates struct {
	IsTemplate           func(path string) bool
	RequiresAutodocRegen func(path string) bool
	IsSharedContent      func(path string) bool
	IsVersionConfig      func(path string) bool
}

var structuralEvents = map[EventType]bool{
	EventCreated: true,
	EventDeleted: true,
	EventMoved:   true,
}

const svgIconPrefix = "themes/"
const svgIconSuffix = "/assets/icons/"

// isSVGIcon reports whether path is an .svg file somewhere under
// themes/<any>/assets/icons/, matched on a normalized POSIX path.
func isSVGIcon(path string) bool {
	p := strings.TrimPrefix(path, "/")
	if !strings.HasSuffix(p, ".svg") {
		return false
	}
	if !strings.HasPrefix(p, svgIconPrefix) {
		return false
	}
	return strings.Contains(p, svgIconSuffix)
}

// Classify applies a fixed first-match-wins rule order:
// structural change types, template change, autodoc regeneration, SVG
// theme icons, shared content, version-config, else incremental.
func Classify(changedPaths []string, eventTypes map[string]EventType, preds Predicates) Decision {
	for _, et := range eventTypes {
		if structuralEvents[et] {
			return Decision{FullRebuild: true, Reason: ReasonStructural}
		}
	}

	for _, path := range changedPaths {
		if preds.IsTemplate != nil && preds.IsTemplate(path) {
			return Decision{FullRebuild: true, Reason: ReasonTemplate}
		}
	}

	for _, path := range changedPaths {
		if preds.RequiresAutodocRegen != nil && preds.RequiresAutodocRegen(path) {
			return Decision{FullRebuild: true, Reason: ReasonAutodoc}
		}
	}

	for _, path := range changedPaths {
		if isSVGIcon(path) {
			return Decision{FullRebuild: true, Reason: ReasonSVGIcon}
		}
	}

	for _, path := range changedPaths {
		if preds.IsSharedContent != nil && preds.IsSharedContent(path) {
			return Decision{FullRebuild: true, Reason: ReasonSharedContent}
		}
	}

	for _, path := range changedPaths {
		if preds.IsVersionConfig != nil && preds.IsVersionConfig(path) {
			return Decision{FullRebuild: true, Reason: ReasonVersionConfig}
		}
	}

	return Decision{FullRebuild: false, Reason: ReasonIncremental}
}
