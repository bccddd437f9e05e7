package core

import (
	"slices"
	"testing"
)

func buildTree(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(nil)
	root := mustNode(t, r, NodeSpec{ID: "root"})
	a := mustNode(t, r, NodeSpec{ID: "a"})
	b := mustNode(t, r, NodeSpec{ID: "b"})
	leaf := mustNode(t, r, NodeSpec{ID: "leaf"})

	if err := root.AddChild(a, false); err != nil {
		t.Fatal(err)
	}
	if err := root.AddChild(b, false); err != nil {
		t.Fatal(err)
	}
	if err := a.AddChild(leaf, false); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestWalkPreOrder(t *testing.T) {
	r := buildTree(t)

	var order []string
	depths := map[string]int{}
	r.Walk(func(n, parent *Node, depth int) {
		order = append(order, n.ID)
		depths[n.ID] = depth
		if n.ID == "leaf" && (parent == nil || parent.ID != "a") {
			t.Errorf("leaf visited with parent %v, want a", parent)
		}
	}, nil)

	if !slices.Equal(order, []string{"root", "a", "leaf", "b"}) {
		t.Errorf("pre-order = %v", order)
	}
	if depths["root"] != 0 || depths["a"] != 1 || depths["leaf"] != 2 {
		t.Errorf("depths = %v", depths)
	}
}

func TestWalkPostOrder(t *testing.T) {
	r := buildTree(t)

	var order []string
	r.Walk(nil, func(n, parent *Node, depth int) {
		order = append(order, n.ID)
	})

	if !slices.Equal(order, []string{"leaf", "a", "b", "root"}) {
		t.Errorf("post-order = %v", order)
	}
}

func TestWalkMultipleRootsInInsertionOrder(t *testing.T) {
	r := NewRegistry(nil)
	mustNode(t, r, NodeSpec{ID: "r2"})
	mustNode(t, r, NodeSpec{ID: "r1"})

	var order []string
	r.Walk(func(n, parent *Node, depth int) {
		order = append(order, n.ID)
	}, nil)

	if !slices.Equal(order, []string{"r2", "r1"}) {
		t.Errorf("root order = %v, want insertion order", order)
	}
}

// Callbacks may attach children to the node they are visiting; the new
// children must still be walked.
func TestWalkSeesChildrenInsertedByCallback(t *testing.T) {
	r := NewRegistry(nil)
	root := mustNode(t, r, NodeSpec{ID: "root"})
	_ = root

	var order []string
	r.Walk(func(n, parent *Node, depth int) {
		order = append(order, n.ID)
		if n.ID == "root" {
			inserted := mustNode(t, r, NodeSpec{ID: "inserted"})
			if err := n.AddChild(inserted, true); err != nil {
				t.Fatal(err)
			}
		}
	}, nil)

	if !slices.Equal(order, []string{"root", "inserted"}) {
		t.Errorf("order = %v, inserted child not visited", order)
	}
}
