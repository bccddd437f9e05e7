package core

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingIdentity is returned by Upsert when neither an id nor a URL
// is supplied.
var ErrMissingIdentity = errors.New("node needs an id or a url")

// maxTitleLen is the longest stored title; longer titles are truncated
// with a trailing ellipsis.
const maxTitleLen = 200

// NodeSpec carries the fields for a Registry upsert. At least one of
// ID and URL must be set; when only URL is given the id is derived by
// hashing it, so the same address always lands on the same node.
type NodeSpec struct {
	ID      string
	URL     string
	Title   string
	Content string
	Desc    string
	Tags    []string
	Type    NodeType

	// RawContent skips the HTML cleanup transform for Content.
	RawContent bool
}

// Registry owns every node in one import. Nodes are kept in insertion
// order (traversal and export both depend on it) with an id index for
// lookups.
type Registry struct {
	nodes   []*Node
	index   map[string]*Node
	cleaner Cleaner
}

// NewRegistry creates an empty Registry. cleaner, when non-nil, is applied
// to every piece of content passed through Upsert.
func NewRegistry(cleaner Cleaner) *Registry {
	return &Registry{
		index:   make(map[string]*Node),
		cleaner: cleaner,
	}
}

// Upsert creates a node or updates an existing one by id. Only non-empty
// incoming fields overwrite stored values, so a node can be identified
// early (say, from a link to it) and filled in later when its content is
// known. Content is passed through the cleanup transform unless
// spec.RawContent is set.
func (r *Registry) Upsert(spec NodeSpec) (*Node, error) {
	id := spec.ID
	if id == "" {
		if spec.URL == "" {
			return nil, ErrMissingIdentity
		}
		id = IDFromURL(spec.URL, false)
	}

	node, ok := r.index[id]
	if !ok {
		node = &Node{ID: id, reg: r}
		r.nodes = append(r.nodes, node)
		r.index[id] = node
	}

	if spec.URL != "" {
		node.URL = spec.URL
	}
	if spec.Title != "" {
		node.Title = truncateTitle(spec.Title)
	}
	if spec.Desc != "" {
		node.Desc = spec.Desc
	}
	if spec.Content != "" {
		if r.cleaner != nil && !spec.RawContent {
			cleaned, err := r.cleaner.Clean(spec.Content)
			if err != nil {
				return nil, fmt.Errorf("cleaning content for %s: %w", id, err)
			}
			node.Content = cleaned
		} else {
			node.Content = spec.Content
		}
	}
	if spec.Type != TypeNone {
		node.Type = spec.Type
	}
	if len(spec.Tags) > 0 {
		node.Tags = spec.Tags
	}

	return node, nil
}

// Lookup returns the node with the given id, if present.
func (r *Registry) Lookup(id string) (*Node, bool) {
	n, ok := r.index[id]
	return n, ok
}

// Exists reports whether a node with the given id is registered.
func (r *Registry) Exists(id string) bool {
	_, ok := r.index[id]
	return ok
}

// Nodes returns every node in insertion order. The slice is shared;
// callers must not reorder it.
func (r *Registry) Nodes() []*Node {
	return r.nodes
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int {
	return len(r.nodes)
}

// Roots returns the nodes that currently have no parent, in insertion
// order. These are the traversal entry points.
func (r *Registry) Roots() []*Node {
	var roots []*Node
	for _, n := range r.nodes {
		if len(n.Parents) == 0 {
			roots = append(roots, n)
		}
	}
	return roots
}

// IDFromURL derives a stable id from an address by hashing it. With
// withExtension, the trailing extension of the path (anything after the
// last dot, query string excluded) is kept as a suffix when it is shorter
// than five characters — resource files keep a usable extension while
// page ids stay bare hashes.
func IDFromURL(rawURL string, withExtension bool) string {
	sum := md5.Sum([]byte(rawURL))
	id := hex.EncodeToString(sum[:])

	if withExtension {
		trimmed, _, _ := strings.Cut(rawURL, "?")
		ext := trimmed[strings.LastIndex(trimmed, ".")+1:]
		if len(ext) < 5 {
			return id + "." + ext
		}
	}
	return id
}

// truncateTitle trims whitespace and caps the title at maxTitleLen runes,
// marking truncation with an ellipsis.
func truncateTitle(title string) string {
	title = strings.TrimSpace(title)
	runes := []rune(title)
	if len(runes) <= maxTitleLen {
		return title
	}
	return string(runes[:maxTitleLen-3]) + "..."
}
