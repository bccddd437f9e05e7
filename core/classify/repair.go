package classify

import (
	"fmt"

	"github.com/gaurav-prasanna/cardsync/core"
)

// Repair runs after classification and inserts synthetic nodes so every
// container that also carries raw content gets a content-holder child:
//
//   - a board group with content gets a synthetic board holding a
//     synthetic card with the group's content;
//   - a board or section with content gets a synthetic card as its first
//     child;
//   - a card sitting directly under a board group (groups may only
//     contain boards) is moved into a synthetic wrapper board.
//
// Synthetic ids derive from the original id ({id}_content,
// {id}_content_board), so repeated runs over an unmodified graph produce
// stable ids; a container whose synthetic child already exists is
// skipped. The container's own content field is left untouched — only
// structure changes.
func Repair(reg *core.Registry) error {
	var failed error
	reg.Walk(func(n, parent *core.Node, depth int) {
		if err := repairNode(reg, n, parent); err != nil && failed == nil {
			failed = err
		}
	}, nil)
	return failed
}

func repairNode(reg *core.Registry, n, parent *core.Node) error {
	switch {
	case n.Content != "" && n.Type == core.TypeBoardGroup:
		// Two new nodes: one board to live in the group, one card inside
		// it carrying the group's content.
		boardID := n.ID + "_content_board"
		if reg.Exists(boardID) {
			return nil
		}
		board, err := reg.Upsert(core.NodeSpec{
			ID:    boardID,
			URL:   n.URL,
			Title: n.Title + " Content",
			Type:  core.TypeBoard,
		})
		if err != nil {
			return fmt.Errorf("inserting content board for %s: %w", n.ID, err)
		}
		if err := n.AddChild(board, true); err != nil {
			return err
		}
		card, err := reg.Upsert(core.NodeSpec{
			ID:      n.ID + "_content",
			URL:     n.URL,
			Title:   n.Title,
			Content: n.Content,
			Type:    core.TypeCard,
		})
		if err != nil {
			return fmt.Errorf("inserting content card for %s: %w", n.ID, err)
		}
		return board.AddChild(card, false)

	case n.Content != "" && (n.Type == core.TypeBoard || n.Type == core.TypeSection):
		cardID := n.ID + "_content"
		if reg.Exists(cardID) {
			return nil
		}
		card, err := reg.Upsert(core.NodeSpec{
			ID:      cardID,
			URL:     n.URL,
			Title:   n.Title,
			Content: n.Content,
			Type:    core.TypeCard,
		})
		if err != nil {
			return fmt.Errorf("inserting content card for %s: %w", n.ID, err)
		}
		return n.AddChild(card, true)

	case n.Type == core.TypeCard && parent != nil && parent.Type == core.TypeBoardGroup:
		// Classification should not place a card directly under a group,
		// but pre-typed ingestion can. Move the card instead of erroring.
		wrapID := n.ID + "_content_board"
		if reg.Exists(wrapID) {
			return nil
		}
		wrapper, err := reg.Upsert(core.NodeSpec{
			ID:    wrapID,
			Title: n.Title + " Content",
			Type:  core.TypeBoard,
		})
		if err != nil {
			return fmt.Errorf("inserting wrapper board for %s: %w", n.ID, err)
		}
		if err := n.MoveTo(wrapper); err != nil {
			return err
		}
		return parent.AddChild(wrapper, true)
	}
	return nil
}
