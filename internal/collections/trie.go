// Package collections routes content files to their declared collection by
// longest-matching directory prefix, and validates each file's frontmatter
// against that collection's schema.
package collections

import "strings"

// Config is the routing-relevant subset of a declared collection: the
// directory prefix it owns and the glob its files must match. Schema
// validation itself is driven by internal/schema.Validator, constructed
// by the caller per collection name.
type Config struct {
	Name       string
	Directory  string
	Glob       string
	Strict     bool
	AllowExtra bool
}

// trieNode is one path component's position in the prefix tree. cfg is
// non-nil only at a terminator: the node where a collection's directory
// ends.
type trieNode struct {
	children map[string]*trieNode
	cfg      *Config
}

func newNode() *trieNode {
	return &trieNode{children: make(map[string]*trieNode)}
}

// PathTrie is a prefix tree over POSIX path components, used to find the
// deepest collection directory that is an ancestor of a given file path.
// A collection with an empty Directory is inserted at the root node, so it
// is an ancestor of every path and matches whenever no deeper collection
// directory does.
type PathTrie struct {
	root *trieNode
}

// NewPathTrie builds a trie from cfgs, keyed by each collection's
// Directory. Building inserts each cfg once, at O(directory depth) per
// cfg; a lookup costs O(path depth), independent of len(cfgs).
func NewPathTrie(cfgs []Config) *PathTrie {
	t := &PathTrie{root: newNode()}
	for i := range cfgs {
		t.Insert(cfgs[i])
	}
	return t
}

func splitComponents(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Insert places cfg's terminator at the node for cfg.Directory.
func (t *PathTrie) Insert(cfg Config) {
	node := t.root
	for _, comp := range splitComponents(cfg.Directory) {
		child, ok := node.children[comp]
		if !ok {
			child = newNode()
			node.children[comp] = child
		}
		node = child
	}
	c := cfg
	node.cfg = &c
}

// Find returns the collection whose directory is the deepest ancestor of
// path, or ok=false if no collection's directory is an ancestor. Matching
// is at path-component boundaries: "content/blog" never matches a file
// under "content/blogposts/...".
func (t *PathTrie) Find(path string) (cfg Config, ok bool) {
	node := t.root
	var last *Config
	if node.cfg != nil {
		last = node.cfg
	}
	for _, comp := range splitComponents(path) {
		child, exists := node.children[comp]
		if !exists {
			break
		}
		node = child
		if node.cfg != nil {
			last = node.cfg
		}
	}
	if last == nil {
		return Config{}, false
	}
	return *last, true
}

// FindLinear is a reference implementation used to cross-check the trie in
// tests: it scans every cfg and keeps the one with the longest directory
// prefix that is an ancestor of path. O(len(cfgs)) but easy to verify
// correct by inspection.
func FindLinear(cfgs []Config, path string) (cfg Config, ok bool) {
	bestDepth := -1
	for _, c := range cfgs {
		if !isAncestorComponent(c.Directory, path) {
			continue
		}
		depth := len(splitComponents(c.Directory))
		if depth > bestDepth {
			bestDepth = depth
			cfg = c
			ok = true
		}
	}
	return cfg, ok
}

func isAncestorComponent(dir, path string) bool {
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
