// Package generator resolves topic paths to problem generators and runs
// them: the topic registry, option resolution, and the orchestrator that
// produces ordered and optionally shuffled problem lists.
package generator

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/p-n-ai/pai-classroom/internal/problem"
)

// Func generates one problem from resolved parameters.
type Func func(r problem.Rand, p problem.Params) (problem.Problem, error)

// Leaf is a resolved catalog leaf.
type Leaf struct {
	Path     []string
	Defaults map[string]any
	Generate Func
}

type node struct {
	children map[string]*node
	leaf     *Leaf
}

// IndexNode is the client-facing view of the catalog.
type IndexNode struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Topics     []IndexNode    `json:"topics,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Registry maps topic paths to generators. It is immutable after NewRegistry
// returns and safe for concurrent use.
type Registry struct {
	root  *node
	index []IndexNode
}

// NewRegistry builds a registry from catalog trees and a generator table
// keyed by slash-joined path. Every leaf must have a generator.
func NewRegistry(roots []Node, funcs map[string]Func) (*Registry, error) {
	reg := &Registry{root: &node{children: map[string]*node{}}}
	title := cases.Title(language.English)
	used := make(map[string]bool, len(funcs))

	var build func(parent *node, n Node, prefix []string) (IndexNode, error)
	build = func(parent *node, n Node, prefix []string) (IndexNode, error) {
		name := strings.TrimSpace(n.Name)
		if name == "" || strings.Contains(name, "/") {
			return IndexNode{}, fmt.Errorf("invalid topic name %q under %q", n.Name, strings.Join(prefix, "/"))
		}
		p := append(slices.Clone(prefix), name)
		key := strings.Join(p, "/")
		if _, dup := parent.children[name]; dup {
			return IndexNode{}, fmt.Errorf("duplicate topic %q", key)
		}
		child := &node{}
		parent.children[name] = child
		idx := IndexNode{ID: name, Name: displayName(title, name)}

		if n.IsLeaf() {
			fn, ok := funcs[key]
			if !ok {
				return IndexNode{}, fmt.Errorf("no generator registered for %q", key)
			}
			used[key] = true
			defaults := maps.Clone(n.Parameters)
			if defaults == nil {
				defaults = map[string]any{}
			}
			child.leaf = &Leaf{Path: p, Defaults: defaults, Generate: fn}
			idx.Parameters = maps.Clone(defaults)
			return idx, nil
		}
		if len(n.Parameters) > 0 {
			return IndexNode{}, fmt.Errorf("topic %q has both subtopics and parameters", key)
		}

		child.children = map[string]*node{}
		for _, sub := range n.Topics {
			subIdx, err := build(child, sub, p)
			if err != nil {
				return IndexNode{}, err
			}
			idx.Topics = append(idx.Topics, subIdx)
		}
		return idx, nil
	}

	for _, root := range roots {
		idx, err := build(reg.root, root, nil)
		if err != nil {
			return nil, fmt.Errorf("building registry: %w", err)
		}
		reg.index = append(reg.index, idx)
	}

	for key := range funcs {
		if !used[key] {
			slog.Warn("generator has no catalog entry", "path", key)
		}
	}
	return reg, nil
}

// Resolve walks path segment by segment. It fails with ErrGeneratorNotFound
// when a segment is missing, when the path stops on an inner topic, or when
// it continues past a leaf.
func (r *Registry) Resolve(path []string) (Leaf, error) {
	cur := r.root
	for i, seg := range path {
		if cur.leaf != nil {
			return Leaf{}, notFound(path, "path continues past leaf "+strings.Join(path[:i], "/"))
		}
		next, ok := cur.children[seg]
		if !ok {
			return Leaf{}, notFound(path, fmt.Sprintf("unknown topic %q", seg))
		}
		cur = next
	}
	if cur.leaf == nil {
		return Leaf{}, notFound(path, "path does not end on a generator")
	}
	leaf := *cur.leaf
	leaf.Path = slices.Clone(leaf.Path)
	leaf.Defaults = maps.Clone(leaf.Defaults)
	return leaf, nil
}

// Index returns the catalog tree with display names and default parameters.
func (r *Registry) Index() []IndexNode {
	return slices.Clone(r.index)
}

func notFound(path []string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrGeneratorNotFound, strings.Join(path, "/"), reason)
}

// displayName turns catalog ids into titles: "linear-equations" and
// "linearEquations" both become "Linear Equations".
func displayName(title cases.Caser, id string) string {
	var b strings.Builder
	prev := rune(0)
	for _, c := range id {
		switch {
		case c == '-' || c == '_':
			c = ' '
		case unicode.IsUpper(c) && prev != 0 && prev != ' ' && !unicode.IsUpper(prev):
			b.WriteRune(' ')
		}
		b.WriteRune(c)
		prev = c
	}
	return title.String(b.String())
}
