// Package clean implements the core.Cleaner contract: a deterministic,
// idempotent cleanup transform for HTML fragments on their way into the
// Registry. It strips everything the knowledge-base renderer ignores —
// unknown attributes, decorative style properties, table plumbing — so
// cards stay small and diffs stay readable.
package clean

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// keepAttrs are the only element attributes that survive cleanup.
var keepAttrs = map[string]bool{
	"style":  true,
	"start":  true, // numbered lists
	"href":   true, // links...
	"target": true,
	"rel":    true,
	"title":  true,
	"src":    true, // images...
	"alt":    true,
	"height": true,
	"width":  true,
}

// keepStyleProps are the only properties kept inside a style attribute.
var keepStyleProps = map[string]bool{
	"background":       true,
	"background-color": true,
	"color":            true,
	"font-style":       true,
	"font-weight":      true,
	"text-decoration":  true,
}

// HTMLCleaner cleans HTML fragments with goquery.
type HTMLCleaner struct{}

// New creates an HTMLCleaner.
func New() *HTMLCleaner {
	return &HTMLCleaner{}
}

// Clean applies the cleanup transform and returns the cleaned fragment.
// Running Clean on its own output returns the input unchanged.
func (c *HTMLCleaner) Clean(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	// Only keep the attributes we need, otherwise they just take up space.
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		stripAttrs(s.Get(0))
	})

	// Flatten lists inside table cells: each item becomes a line-broken
	// "- " prefix and the list wrapper goes away.
	doc.Find("td li").Each(func(_ int, s *goquery.Selection) {
		li := s.Get(0)
		prependNode(li, &html.Node{Type: html.TextNode, Data: "- "})
		prependNode(li, &html.Node{Type: html.ElementNode, Data: "br", DataAtom: atom.Br})
		unwrap(li)
	})
	doc.Find("td ul, td ol").Each(func(_ int, s *goquery.Selection) {
		unwrap(s.Get(0))
	})

	doc.Find("colgroup, table caption, script, style").Remove()

	// Drop decorative style properties (e.g. width/height on table cells);
	// if nothing survives, drop the attribute altogether.
	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		filtered := filterStyle(style)
		if strings.TrimSpace(filtered) == "" {
			s.RemoveAttr("style")
		} else {
			s.SetAttr("style", filtered)
		}
	})

	// Spans with no style left are pure wrappers; unwrap them.
	doc.Find("span").Each(func(_ int, s *goquery.Selection) {
		if _, ok := s.Attr("style"); !ok {
			unwrap(s.Get(0))
		}
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("serializing content: %w", err)
	}
	return out, nil
}

// stripAttrs removes every attribute not in the allow-list.
func stripAttrs(n *html.Node) {
	if n.Type != html.ElementNode || len(n.Attr) == 0 {
		return
	}
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if keepAttrs[a.Key] {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

// filterStyle keeps only allow-listed properties of a style attribute,
// preserving their order. Properties are "key: value" pairs joined by
// semicolons; the output uses the compact "key:value" form.
func filterStyle(style string) string {
	var kept []string
	for _, pair := range strings.Split(style, ";") {
		key, value, found := strings.Cut(pair, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if keepStyleProps[key] {
			kept = append(kept, key+":"+strings.TrimSpace(value))
		}
	}
	return strings.Join(kept, ";")
}

// prependNode inserts child as the first child of n.
func prependNode(n, child *html.Node) {
	if n.FirstChild != nil {
		n.InsertBefore(child, n.FirstChild)
	} else {
		n.AppendChild(child)
	}
}

// unwrap replaces n with its own children.
func unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for child := n.FirstChild; child != nil; {
		next := child.NextSibling
		n.RemoveChild(child)
		parent.InsertBefore(child, n)
		child = next
	}
	parent.RemoveChild(n)
}
