package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/gaurav-prasanna/cardsync/core"
)

// Preview builds a self-contained index.html showing the finalized tree
// next to an iframe previewing card HTML files. cardHref maps a card id
// to the href used in the tree (usually "cards/<id>.html").
func Preview(reg *core.Registry, cardHref func(id string) string) []byte {
	// The tree fragment is accumulated through the traversal callback.
	var pieces []string
	reg.Walk(func(n, parent *core.Node, depth int) {
		indent := strings.Repeat("&nbsp;&nbsp;", min(3, depth))
		title := html.EscapeString(n.Title)
		if title == "" {
			title = html.EscapeString(n.ID)
		}
		if n.Type == core.TypeCard {
			pieces = append(pieces, fmt.Sprintf(
				`<a href=%q target="iframe">%s%s (%s)</a>`,
				cardHref(n.ID), indent, title, n.Type,
			))
		} else {
			pieces = append(pieces, fmt.Sprintf(
				"<div>%s%s (%s)</div>", indent, title, n.Type,
			))
		}
	}, nil)

	return []byte(fmt.Sprintf(previewTemplate, strings.Join(pieces, "\n    ")))
}

const previewTemplate = `<!doctype html>
<html>
  <head>
    <style>
      body {
        display: flex;
        flex-direction: row;
        margin: 0;
        position: fixed;
        inset: 0;
        font-family: arial, sans-serif;
        font-size: 12px;
        background: #f7f8fa;
      }
      #tree {
        padding: 10px 10px 30px;
        height: 100%%;
        overflow: auto;
        box-sizing: border-box;
      }
      #tree > * {
        display: block;
        padding: 2px;
      }
      iframe {
        flex-grow: 1;
        max-width: 734px;
        margin: 20px auto;
        box-shadow: rgba(0, 0, 0, 0.15) 0 3px 10px;
        padding: 20px 60px;
        border: 1px solid #ccc;
        border-radius: 5px;
        background: #fff;
      }
      a, a:visited {
        display: block;
        color: #44f;
        text-decoration: none;
      }
      a:hover { background: #eef; }
      a.selected { background: #44f; color: #fff; }
    </style>
  </head>
  <body>
    <div id="tree">%s</div>
    <iframe name="iframe" src=""></iframe>
    <script>
      var links = document.querySelectorAll("#tree a");
      var current = -1;
      function select(index) {
        if (links[current]) links[current].classList.remove("selected");
        current = (index + links.length) %% links.length;
        links[current].classList.add("selected");
        links[current].click();
      }
      links.forEach(function (link, index) {
        link.addEventListener("click", function () {
          if (links[current]) links[current].classList.remove("selected");
          current = index;
          link.classList.add("selected");
        });
      });
      document.addEventListener("keydown", function (event) {
        if (event.key === "ArrowUp") { select(current - 1); event.preventDefault(); }
        else if (event.key === "ArrowDown") { select(current + 1); event.preventDefault(); }
      });
      if (links.length) select(0);
    </script>
  </body>
</html>
`
