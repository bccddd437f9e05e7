package core

import "slices"

// Visit is a traversal callback. parent is nil at a root; depth starts at
// 0 at each root and increments per level.
type Visit func(n *Node, parent *Node, depth int)

// Walk performs a rooted pre-order traversal over every node that has no
// parent, in Registry insertion order. Children are visited in Children
// list order. pre runs when a node is first reached; post, when non-nil,
// runs after the node's whole subtree has been visited.
//
// The child list is snapshotted after pre runs, so a callback may insert
// children onto the node it is visiting and still have them walked.
// Accumulators (an export listing, preview fragments) are threaded by
// capturing them in the callbacks.
func (r *Registry) Walk(pre, post Visit) {
	for _, n := range r.nodes {
		if len(n.Parents) == 0 {
			r.walk(n, nil, 0, pre, post)
		}
	}
}

func (r *Registry) walk(n, parent *Node, depth int, pre, post Visit) {
	if pre != nil {
		pre(n, parent, depth)
	}
	for _, id := range slices.Clone(n.Children) {
		if child, ok := r.index[id]; ok {
			r.walk(child, n, depth+1, pre, post)
		}
	}
	if post != nil {
		post(n, parent, depth)
	}
}
