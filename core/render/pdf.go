// Package render — PDF outline.
// Renders the finalized tree as a one-document outline using gofpdf:
// boards and groups as headings, sections as subheadings, cards as
// indented entries. Card bodies are intentionally not rendered.
package render

import (
	"bytes"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/gaurav-prasanna/cardsync/core"
)

// OutlinePDF renders the collection structure as PDF bytes.
func OutlinePDF(reg *core.Registry, title string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Helvetica", "B", 18)
		pdf.MultiCell(0, 8, title, "", "L", false)
		pdf.Ln(4)
	}

	reg.Walk(func(n, parent *core.Node, depth int) {
		indent := strings.Repeat("    ", min(3, depth))
		name := n.Title
		if name == "" {
			name = n.ID
		}

		switch n.Type {
		case core.TypeBoardGroup:
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "B", 14)
			pdf.MultiCell(0, 7, indent+name, "", "L", false)
		case core.TypeBoard:
			pdf.Ln(1)
			pdf.SetFont("Helvetica", "B", 12)
			pdf.MultiCell(0, 6, indent+name, "", "L", false)
		case core.TypeSection:
			pdf.SetFont("Helvetica", "I", 11)
			pdf.MultiCell(0, 5.5, indent+name, "", "L", false)
		default:
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, indent+"• "+name, "", "L", false)
		}
	}, nil)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
