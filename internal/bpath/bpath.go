// Package bpath provides POSIX path normalization and the .bengal state
// directory layout shared by the build cache, stream cache, and pipeline.
package bpath

import (
	"path/filepath"
	"strings"
)

// StateDirName is the well-known state directory under the project root.
const StateDirName = ".bengal"

// ToPosix normalizes a filesystem path to forward-slash form. All cache and
// stream keys use this form regardless of the host operating system.
func ToPosix(path string) string {
	if path == "" {
		return path
	}
	return filepath.ToSlash(path)
}

// Join joins path components and normalizes the result to POSIX form.
func Join(elem ...string) string {
	return ToPosix(filepath.Join(elem...))
}

// StateDir returns the .bengal directory under root.
func StateDir(root string) string {
	return filepath.Join(root, StateDirName)
}

// CachePath returns the build cache file path (uncompressed).
func CachePath(root string) string {
	return filepath.Join(StateDir(root), "cache.json")
}

// CompressedCachePath returns the zstd-compressed build cache file path.
func CompressedCachePath(root string) string {
	return filepath.Join(StateDir(root), "cache.json.zst")
}

// StreamCachePath returns the stream disk cache file path.
func StreamCachePath(root string) string {
	return filepath.Join(StateDir(root), "pipeline", "streams.json")
}

// BuildLogPath returns the build log file path.
func BuildLogPath(root string) string {
	return filepath.Join(StateDir(root), "logs", "build.log")
}

// ServeLogPath returns the dev-server log file path.
func ServeLogPath(root string) string {
	return filepath.Join(StateDir(root), "logs", "serve.log")
}

// GeneratedDir returns the root directory for virtual source paths of
// synthesized pages (e.g., tag listing pages).
func GeneratedDir(root string) string {
	return filepath.Join(StateDir(root), "generated")
}

// GeneratedTagPath returns the deterministic virtual source path for a
// synthesized tag listing page.
func GeneratedTagPath(root, slug string) string {
	return ToPosix(filepath.Join(GeneratedDir(root), "tags", slug, "index.md"))
}

// TemplatesCacheDir returns the directory for compiled template bytecode.
func TemplatesCacheDir(root string) string {
	return filepath.Join(StateDir(root), "templates")
}

// AssetManifestPath returns the asset manifest file path.
func AssetManifestPath(root string) string {
	return filepath.Join(StateDir(root), "asset-manifest.json")
}

// IsAncestorComponent reports whether dir is an ancestor of path, matched at
// path-component boundaries (never a byte prefix). Both arguments are POSIX
// paths.
func IsAncestorComponent(dir, path string) bool {
	dir = strings.Trim(dir, "/")
	path = strings.Trim(path, "/")
	if dir == "" {
		return true
	}
	if path == dir {
		return true
	}
	return strings.HasPrefix(path, dir+"/")
}

// OutputPathForURL converts a page URL to its output-relative file path.
// The empty URL becomes index.html; a URL not ending in .html becomes
// <url>/index.html with the leading slash stripped.
func OutputPathForURL(url string) string {
	url = strings.TrimPrefix(url, "/")
	if url == "" {
		return "index.html"
	}
	if strings.HasSuffix(url, ".html") {
		return url
	}
	return ToPosix(filepath.Join(url, "index.html"))
}
