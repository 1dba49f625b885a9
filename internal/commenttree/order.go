package commenttree

import (
	"cmp"
	"slices"
)

// Policy orders one list of sibling nodes. It returns a new slice and leaves
// its argument untouched.
type Policy func(nodes []*Node) []*Node

// OrderRoots applies the default root ordering.
func OrderRoots(nodes []*Node) []*Node {
	return ByRecency(nodes)
}

// ByRecency puts the newest comment first. Ties go to the smaller id.
func ByRecency(nodes []*Node) []*Node {
	return sortedCopy(nodes, func(a, b *Node) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// ByAge puts the oldest comment first. Ties go to the smaller id.
func ByAge(nodes []*Node) []*Node {
	return sortedCopy(nodes, func(a, b *Node) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// ByVotes puts the highest score first, then falls back to ByRecency.
func ByVotes(nodes []*Node) []*Node {
	return sortedCopy(nodes, func(a, b *Node) int {
		if c := cmp.Compare(b.Votes, a.Votes); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// InsertionOrder keeps the order the builder produced.
func InsertionOrder(nodes []*Node) []*Node {
	return slices.Clone(nodes)
}

// PolicyByName resolves the sort names accepted by the comments endpoint.
func PolicyByName(name string) (Policy, bool) {
	switch name {
	case "", "newest":
		return ByRecency, true
	case "oldest":
		return ByAge, true
	case "top":
		return ByVotes, true
	case "none":
		return InsertionOrder, true
	}
	return nil, false
}

func sortedCopy(nodes []*Node, less func(a, b *Node) int) []*Node {
	out := slices.Clone(nodes)
	if out == nil {
		out = []*Node{}
	}
	slices.SortStableFunc(out, less)
	return out
}
