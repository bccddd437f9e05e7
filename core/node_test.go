package core

import (
	"errors"
	"slices"
	"testing"
)

func mustNode(t *testing.T, r *Registry, spec NodeSpec) *Node {
	t.Helper()
	n, err := r.Upsert(spec)
	if err != nil {
		t.Fatalf("Upsert(%+v): %v", spec, err)
	}
	return n
}

func TestAddChildRejectsCycle(t *testing.T) {
	r := NewRegistry(nil)
	a := mustNode(t, r, NodeSpec{ID: "a"})
	b := mustNode(t, r, NodeSpec{ID: "b"})
	c := mustNode(t, r, NodeSpec{ID: "c"})

	if err := a.AddChild(b, false); err != nil {
		t.Fatalf("AddChild(a, b): %v", err)
	}
	if err := b.AddChild(c, false); err != nil {
		t.Fatalf("AddChild(b, c): %v", err)
	}

	// c -> a would make a its own transitive ancestor.
	before := slices.Clone(c.Children)
	err := c.AddChild(a, false)
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("AddChild(c, a) = %v, want ErrCycle", err)
	}
	if !slices.Equal(c.Children, before) {
		t.Errorf("children mutated by rejected AddChild: %v", c.Children)
	}
	if len(a.Parents) != 0 {
		t.Errorf("a gained a parent from rejected AddChild")
	}
}

func TestAddChildRejectsSelf(t *testing.T) {
	r := NewRegistry(nil)
	a := mustNode(t, r, NodeSpec{ID: "a"})

	if err := a.AddChild(a, false); !errors.Is(err, ErrCycle) {
		t.Fatalf("AddChild(a, a) = %v, want ErrCycle", err)
	}
	if len(a.Children) != 0 {
		t.Errorf("self-add mutated children: %v", a.Children)
	}
}

func TestAddChildIdempotent(t *testing.T) {
	r := NewRegistry(nil)
	p := mustNode(t, r, NodeSpec{ID: "p"})
	c := mustNode(t, r, NodeSpec{ID: "c"})

	for i := 0; i < 2; i++ {
		if err := p.AddChild(c, false); err != nil {
			t.Fatalf("AddChild #%d: %v", i+1, err)
		}
	}

	count := 0
	for _, id := range p.Children {
		if id == "c" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("child registered %d times, want 1", count)
	}
	if len(c.Parents) != 1 {
		t.Errorf("parent registered %d times, want 1", len(c.Parents))
	}
}

func TestAddChildFirst(t *testing.T) {
	r := NewRegistry(nil)
	p := mustNode(t, r, NodeSpec{ID: "p"})
	a := mustNode(t, r, NodeSpec{ID: "a"})
	b := mustNode(t, r, NodeSpec{ID: "b"})

	if err := p.AddChild(a, false); err != nil {
		t.Fatal(err)
	}
	if err := p.AddChild(b, true); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(p.Children, []string{"b", "a"}) {
		t.Errorf("Children = %v, want [b a]", p.Children)
	}
}

func TestMultipleParents(t *testing.T) {
	r := NewRegistry(nil)
	p1 := mustNode(t, r, NodeSpec{ID: "p1"})
	p2 := mustNode(t, r, NodeSpec{ID: "p2"})
	c := mustNode(t, r, NodeSpec{ID: "c"})

	if err := p1.AddChild(c, false); err != nil {
		t.Fatal(err)
	}
	if err := p2.AddChild(c, false); err != nil {
		t.Fatal(err)
	}

	if len(c.Parents) != 2 {
		t.Fatalf("Parents = %d, want 2", len(c.Parents))
	}
	if !slices.Contains(p1.Children, "c") || !slices.Contains(p2.Children, "c") {
		t.Errorf("child missing from a parent: %v / %v", p1.Children, p2.Children)
	}
}

func TestAncestorsTolerantOfConvergingPaths(t *testing.T) {
	r := NewRegistry(nil)
	root := mustNode(t, r, NodeSpec{ID: "root"})
	p1 := mustNode(t, r, NodeSpec{ID: "p1"})
	p2 := mustNode(t, r, NodeSpec{ID: "p2"})
	c := mustNode(t, r, NodeSpec{ID: "c"})

	if err := root.AddChild(p1, false); err != nil {
		t.Fatal(err)
	}
	if err := root.AddChild(p2, false); err != nil {
		t.Fatal(err)
	}
	if err := p1.AddChild(c, false); err != nil {
		t.Fatal(err)
	}
	if err := p2.AddChild(c, false); err != nil {
		t.Fatal(err)
	}

	ancestors := c.Ancestors()
	ids := make([]string, len(ancestors))
	for i, a := range ancestors {
		ids[i] = a.ID
	}
	// root is reachable through both p1 and p2, so it shows up twice.
	if got := countOf(ids, "root"); got != 2 {
		t.Errorf("root appears %d times in %v, want 2", got, ids)
	}

	// Cycle detection must still reject root as a child of c.
	if err := c.AddChild(root, false); !errors.Is(err, ErrCycle) {
		t.Errorf("AddChild(c, root) = %v, want ErrCycle", err)
	}
}

func TestDetachAndMoveTo(t *testing.T) {
	r := NewRegistry(nil)
	p1 := mustNode(t, r, NodeSpec{ID: "p1"})
	p2 := mustNode(t, r, NodeSpec{ID: "p2"})
	c := mustNode(t, r, NodeSpec{ID: "c"})

	if err := p1.AddChild(c, false); err != nil {
		t.Fatal(err)
	}
	if err := p2.AddChild(c, false); err != nil {
		t.Fatal(err)
	}

	c.Detach()
	if len(c.Parents) != 0 {
		t.Errorf("Parents after Detach = %d, want 0", len(c.Parents))
	}
	if slices.Contains(p1.Children, "c") || slices.Contains(p2.Children, "c") {
		t.Errorf("detached node still listed as a child")
	}

	if err := c.MoveTo(p1); err != nil {
		t.Fatal(err)
	}
	if len(c.Parents) != 1 || c.Parents[0].ID != "p1" {
		t.Errorf("MoveTo left parents = %v", c.Parents)
	}
	if !slices.Contains(p1.Children, "c") {
		t.Errorf("MoveTo did not register child")
	}
}

func countOf(values []string, want string) int {
	n := 0
	for _, v := range values {
		if v == want {
			n++
		}
	}
	return n
}
