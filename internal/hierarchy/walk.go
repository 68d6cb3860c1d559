package hierarchy

// Walk visits n and all of its descendants depth-first in display order.
// depth is 0 for n itself.
func (n Node) Walk(fn func(node Node, depth int)) {
	n.walk(fn, 0)
}

func (n Node) walk(fn func(node Node, depth int), depth int) {
	fn(n, depth)
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// TaskIDs returns the IDs of every task node under n in display order,
// including duplicates for shared descendants.
func (n Node) TaskIDs() []string {
	var ids []string
	n.Walk(func(node Node, _ int) {
		if node.Kind == KindTask {
			ids = append(ids, node.ID)
		}
	})
	return ids
}
