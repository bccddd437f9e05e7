// Package classify assigns structural types to every node in a Registry
// and repairs the tree so type constraints hold (only cards carry
// renderable content).
//
// Classification is a single traversal evaluating a first-matching-rule
// decision table at each node. Two policies exist because real
// hierarchies are ambiguous at exactly three levels: favor-boards reads a
// middle level as nested boards (promoting their containers to board
// groups), favor-sections reads it as sections inside one board.
package classify

import (
	"fmt"

	"github.com/gaurav-prasanna/cardsync/core"
)

// Policy selects the classification decision table.
type Policy string

const (
	// PolicyFavorBoards maps three levels to board group > board > card.
	// This is the default.
	PolicyFavorBoards Policy = "favor-boards"
	// PolicyFavorSections maps three levels to board > section > card.
	PolicyFavorSections Policy = "favor-sections"
)

// ParsePolicy validates a policy name. An empty name selects the default.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "":
		return PolicyFavorBoards, nil
	case PolicyFavorBoards, PolicyFavorSections:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("unknown policy %q (want %s or %s)", s, PolicyFavorBoards, PolicyFavorSections)
	}
}

// Run classifies every node in the registry under the given policy.
// Rules are applied pre-order, so a parent's type is already settled when
// its children are decided. Promotions rewrite a type that was assigned
// earlier in the same pass: favor-boards promotes a board to a board
// group when a depth-1 child turns out to be a board, favor-sections
// promotes a section back to a board when a depth-2 child must be a
// section.
//
// Under favor-boards a node matched by no rule (for example a node with
// children whose parent is a section) keeps whatever type ingestion gave
// it — usually none. That gap is deliberate: callers that pre-typed nodes
// keep their choice.
func Run(reg *core.Registry, policy Policy) {
	if policy == PolicyFavorSections {
		reg.Walk(favorSections, promoteBoardGroups(reg))
		return
	}
	reg.Walk(favorBoards, nil)
}

func favorBoards(n, parent *core.Node, depth int) {
	switch {
	case len(n.Children) == 0 && parent == nil && n.Content != "":
		n.Type = core.TypeCard
	case depth == 0:
		n.Type = core.TypeBoard
	case len(n.Children) == 0:
		n.Type = core.TypeCard
	case depth > 2:
		n.Type = core.TypeCard
	case parent.Type == core.TypeBoard && depth == 1:
		// A board inside a board means the parent is really a group.
		n.Type = core.TypeBoard
		parent.Type = core.TypeBoardGroup
	case parent.Type == core.TypeBoard && depth == 2:
		n.Type = core.TypeSection
	case parent.Type == core.TypeBoardGroup:
		n.Type = core.TypeBoard
	}
}

func favorSections(n, parent *core.Node, depth int) {
	switch {
	case len(n.Children) == 0 && parent == nil && n.Content != "":
		n.Type = core.TypeCard
	case len(n.Children) > 0 && depth == 0:
		n.Type = core.TypeBoard
	case len(n.Children) == 0:
		n.Type = core.TypeCard
	case depth > 2:
		n.Type = core.TypeCard
	case parent.Type == core.TypeBoard && depth == 1:
		n.Type = core.TypeSection
	case parent.Type == core.TypeSection && depth == 2:
		parent.Type = core.TypeBoard
		n.Type = core.TypeSection
	default:
		n.Type = core.TypeCard
	}
}

// promoteBoardGroups is the favor-sections post-order correction: a board
// that ended up containing a board is really a board group. This cannot
// be decided top-down because the child's type is only known after
// visiting it.
func promoteBoardGroups(reg *core.Registry) core.Visit {
	return func(n, parent *core.Node, depth int) {
		if n.Type != core.TypeBoard {
			return
		}
		for _, id := range n.Children {
			if child, ok := reg.Lookup(id); ok && child.Type == core.TypeBoard {
				n.Type = core.TypeBoardGroup
				return
			}
		}
	}
}
