// Package render provides optional representations of a finalized graph:
// Markdown copies of cards, a PDF outline of the whole collection, and
// the HTML preview page. None of these feed back into the engine.
package render

import (
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/gaurav-prasanna/cardsync/core"
)

// CardMarkdown converts a finalized card's HTML body into Markdown.
func CardMarkdown(n *core.Node) ([]byte, error) {
	markdown, err := htmltomarkdown.ConvertString(n.Content)
	if err != nil {
		return nil, fmt.Errorf("converting card %s to markdown: %w", n.ID, err)
	}
	return []byte(markdown), nil
}
