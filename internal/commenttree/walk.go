package commenttree

// MaxVisualDepth is the deepest indentation level a client should draw.
// Deeper replies are still returned, just drawn at this level.
const MaxVisualDepth = 5

// VisualDepth caps depth for indentation only.
func VisualDepth(depth int) int {
	if depth > MaxVisualDepth {
		return MaxVisualDepth
	}
	return depth
}

// Walk visits the forest in render order: a node, then its replies, depth
// first. Roots have depth 0. If fn returns false the node's replies are
// skipped. Uses an explicit stack so thread depth is not bounded by the
// goroutine stack.
func Walk(forest []*Node, fn func(n *Node, depth int) bool) {
	type frame struct {
		node  *Node
		depth int
	}

	stack := make([]frame, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: forest[i]})
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !fn(top.node, top.depth) {
			continue
		}
		for i := len(top.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: top.node.Children[i], depth: top.depth + 1})
		}
	}
}

// Entry is one row of a flattened thread.
type Entry struct {
	Node   *Node
	Depth  int
	Indent int
}

// Flatten lists the forest in render order with the depth of every comment
// and the indentation to draw it at.
func Flatten(forest []*Node) []Entry {
	entries := make([]Entry, 0, len(forest))
	Walk(forest, func(n *Node, depth int) bool {
		entries = append(entries, Entry{Node: n, Depth: depth, Indent: VisualDepth(depth)})
		return true
	})
	return entries
}
