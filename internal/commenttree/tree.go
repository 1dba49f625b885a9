// Package commenttree turns a post's flat comment list into the nested forest
// the client renders.
package commenttree

import "time"

// Record is a single comment as stored, with an optional parent reference.
type Record struct {
	ID        string
	PostID    string
	AuthorID  string
	Text      string
	ParentID  *string
	Votes     int
	CreatedAt time.Time
	Hidden    bool
}

// Node is a Record plus its replies. Children is never nil.
type Node struct {
	Record
	Children []*Node
}

type options struct {
	rootOrder  Policy
	childOrder Policy
}

// Option configures Build.
type Option func(*options)

// WithRootOrder replaces the ordering applied to top-level comments.
func WithRootOrder(p Policy) Option {
	return func(o *options) {
		if p != nil {
			o.rootOrder = p
		}
	}
}

// WithChildOrder replaces the ordering applied to every replies list.
func WithChildOrder(p Policy) Option {
	return func(o *options) {
		if p != nil {
			o.childOrder = p
		}
	}
}

const (
	unvisited = iota
	walking
	resolved
)

// Build links records into a forest. Every id ends up exactly once in the
// result, carrying the last record seen for it: replies whose parent is missing, is the record itself, or closes a
// parent cycle are promoted to roots. Roots are ordered newest first and
// replies keep input order unless options say otherwise.
func Build(records []Record, opts ...Option) []*Node {
	o := options{rootOrder: ByRecency, childOrder: InsertionOrder}
	for _, opt := range opts {
		opt(&o)
	}

	// All nodes must exist before any linking happens.
	lookup := make(map[string]*Node, len(records))
	for _, r := range records {
		lookup[r.ID] = &Node{Record: r, Children: []*Node{}}
	}

	parents := resolveParents(records, lookup)

	roots := make([]*Node, 0)
	placed := make(map[string]bool, len(lookup))
	for _, r := range records {
		// A repeated id shares one node; place it once.
		if placed[r.ID] {
			continue
		}
		placed[r.ID] = true
		node := lookup[r.ID]
		if pid := parents[r.ID]; pid != "" {
			parent := lookup[pid]
			parent.Children = append(parent.Children, node)
			continue
		}
		roots = append(roots, node)
	}

	for _, n := range lookup {
		if len(n.Children) > 1 {
			n.Children = o.childOrder(n.Children)
		}
	}

	return o.rootOrder(roots)
}

// resolveParents returns the effective parent id for every record id, with ""
// meaning root. Each id is visited once.
func resolveParents(records []Record, lookup map[string]*Node) map[string]string {
	parents := make(map[string]string, len(lookup))
	state := make(map[string]int, len(lookup))

	parentOf := func(id string) string {
		p := lookup[id].ParentID
		if p == nil || *p == id {
			return ""
		}
		if _, ok := lookup[*p]; !ok {
			return ""
		}
		return *p
	}

	var path []string
	for _, r := range records {
		path = path[:0]
		cur := r.ID
		for cur != "" && state[cur] == unvisited {
			state[cur] = walking
			path = append(path, cur)
			p := parentOf(cur)
			parents[cur] = p
			cur = p
		}
		// Walked back into the current chain: cut the loop at its entry point.
		if cur != "" && state[cur] == walking {
			parents[cur] = ""
		}
		for _, id := range path {
			state[id] = resolved
		}
	}
	return parents
}

// Count returns the number of nodes in the forest, replies included.
func Count(forest []*Node) int {
	total := 0
	Walk(forest, func(*Node, int) bool {
		total++
		return true
	})
	return total
}
