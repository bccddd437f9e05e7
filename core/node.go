// Package core defines the node graph and the shared contracts for CardSync.
// Nodes are owned by a Registry and carry explicit parent/child id lists;
// the structural passes (classify, repair, resolve) mutate them in place.
package core

import (
	"errors"
	"fmt"
	"slices"
)

// ErrCycle is returned by AddChild when the insertion would make a node
// its own transitive ancestor.
var ErrCycle = errors.New("cycle")

// NodeType is the structural role a node plays in the exported collection.
// Every node starts as TypeNone; the classifier assigns the final type.
type NodeType int

const (
	TypeNone NodeType = iota
	TypeBoardGroup
	TypeBoard
	TypeSection
	TypeCard
)

func (t NodeType) String() string {
	switch t {
	case TypeBoardGroup:
		return "BOARD_GROUP"
	case TypeBoard:
		return "BOARD"
	case TypeSection:
		return "SECTION"
	case TypeCard:
		return "CARD"
	default:
		return "NONE"
	}
}

// Node is a single content item: a card candidate with an origin URL,
// a title, optional HTML content, and parent/child edges. Some nodes carry
// only a title and exist to group the nodes that do carry content.
//
// Children holds node ids in export order. Parents holds owning nodes;
// a node may have several parents while the graph is being built, but each
// parent's Children list contains the node at most once.
type Node struct {
	ID      string
	URL     string
	Title   string
	Desc    string
	Tags    []string
	Content string
	Type    NodeType

	Children []string
	Parents  []*Node

	reg *Registry
}

// label returns the best human-readable name for error messages.
func (n *Node) label() string {
	if n.Title != "" {
		return n.Title
	}
	return n.ID
}

// AddChild adds child under n. By default children go to the end of the
// list; first puts the new child at the front.
//
// The call is rejected with ErrCycle, before any mutation, if child is
// already a transitive ancestor of n (or is n itself). Re-adding an
// existing child is a no-op.
func (n *Node) AddChild(child *Node, first bool) error {
	if child.ID == n.ID {
		return fmt.Errorf("%w: adding %q as a child of itself", ErrCycle, n.label())
	}
	for _, ancestor := range n.Ancestors() {
		if ancestor.ID == child.ID {
			return fmt.Errorf("%w: adding %q as a child of %q", ErrCycle, child.label(), n.label())
		}
	}

	// Nodes can only have a child once.
	if slices.Contains(n.Children, child.ID) {
		return nil
	}

	child.Parents = append(child.Parents, n)
	if first {
		n.Children = append([]string{child.ID}, n.Children...)
	} else {
		n.Children = append(n.Children, child.ID)
	}
	return nil
}

// AddTo adds n as a child of parent. Convenience inverse of AddChild.
func (n *Node) AddTo(parent *Node) error {
	return parent.AddChild(n, false)
}

// Ancestors returns the transitive closure over Parents, breadth-first.
// When multiple paths converge the result contains duplicates; callers
// must tolerate repeats.
func (n *Node) Ancestors() []*Node {
	result := slices.Clone(n.Parents)
	for i := 0; i < len(result); i++ {
		result = append(result, result[i].Parents...)
	}
	return result
}

// Detach removes n from every current parent's child list and clears
// its Parents. The node stays in the Registry.
func (n *Node) Detach() {
	for _, parent := range n.Parents {
		parent.Children = slices.DeleteFunc(parent.Children, func(id string) bool {
			return id == n.ID
		})
	}
	n.Parents = nil
}

// MoveTo detaches n from all parents and adds it under parent.
func (n *Node) MoveTo(parent *Node) error {
	n.Detach()
	return parent.AddChild(n, false)
}
