// Package pdfrender lays out a block sequence onto A4 pages with the
// go-pdf/fpdf engine. Rendering is deterministic: the same blocks on
// the same host always produce an equivalent document.
package pdfrender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/diliima/markdown-to-pdf-api/internal/block"
	"github.com/diliima/markdown-to-pdf-api/internal/inline"
	"github.com/diliima/markdown-to-pdf-api/internal/textutil"
)

// ErrRender indicates the PDF engine rejected the document.
var ErrRender = errors.New("render pdf")

const (
	marginSide   = 72
	marginTop    = 72
	marginBottom = 18
	listIndent   = 18
	quoteIndent  = 30
	cellPad      = 2
)

// Renderer converts a block sequence into PDF bytes.
type Renderer struct {
	styles StyleSheet
}

// New builds a Renderer with the default style sheet.
func New() *Renderer {
	return &Renderer{styles: defaultStyles()}
}

// Render produces a single PDF document. An empty block sequence still
// yields a valid one-page document.
func (r *Renderer) Render(ctx context.Context, blocks []block.Block) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(marginSide, marginTop, marginSide)
	pdf.SetAutoPageBreak(true, marginBottom)

	fonts := loadFonts(pdf)
	tr := func(s string) string { return s }
	if !fonts.unicode {
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	d := &document{
		pdf:    pdf,
		fonts:  fonts,
		tr:     tr,
		styles: r.styles,
		width:  pageW - 2*marginSide,
		pageH:  pageH,
	}
	for i := range blocks {
		d.renderBlock(&blocks[i])
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}

// document carries the per-render layout state.
type document struct {
	pdf    *fpdf.Fpdf
	fonts  fontSet
	tr     func(string) string
	styles StyleSheet
	width  float64
	pageH  float64
}

func (d *document) renderBlock(b *block.Block) {
	switch b.Kind {
	case block.KindTitle:
		d.textBlock(d.styles.Title, b.Text)
	case block.KindHeading:
		d.textBlock(d.styles.headingStyle(b.Level), b.Text)
	case block.KindParagraph:
		d.paragraph(b.Spans)
	case block.KindListItem:
		d.listItem(b)
	case block.KindCode:
		d.code(b.Text)
	case block.KindQuote:
		d.quote(b.Text)
	case block.KindTable:
		d.table(b.Rows)
	default:
		d.textBlock(d.styles.Normal, b.PlainText())
	}
}

// setStyle applies a style's font and color. The mono flag swaps the
// family only; size and weight stay with the active style.
func (d *document) setStyle(st Style, mono bool, extra string) {
	family := d.fonts.body
	if mono {
		family = d.fonts.mono
	}
	styleStr := extra
	if st.Bold {
		styleStr += "B"
	}
	if st.Italic {
		styleStr += "I"
	}
	d.pdf.SetFont(family, styleStr, st.Size)
	d.pdf.SetTextColor(st.Color.R, st.Color.G, st.Color.B)
}

func (d *document) clean(text string) string {
	return d.tr(textutil.Sanitize(text))
}

func (d *document) textBlock(st Style, text string) {
	d.setStyle(st, false, "")
	d.pdf.MultiCell(d.width, st.LineHeight, d.clean(text), "", "L", false)
	d.pdf.Ln(st.SpaceAfter)
}

// paragraph flows the spans as one wrapped run of text, switching font
// attributes at each span boundary.
func (d *document) paragraph(spans []inline.Span) {
	st := d.styles.Normal
	wrote := false
	for _, s := range spans {
		if s.Text == "" {
			continue
		}
		var extra string
		if s.Bold {
			extra += "B"
		}
		if s.Italic {
			extra += "I"
		}
		if s.Underline {
			extra += "U"
		}
		spanStyle := st
		spanStyle.Bold, spanStyle.Italic = false, false
		d.setStyle(spanStyle, s.Code, extra)
		d.pdf.Write(st.LineHeight, d.clean(s.Text))
		wrote = true
	}
	if wrote {
		d.pdf.Ln(st.LineHeight + st.SpaceAfter)
	}
}

func (d *document) listItem(b *block.Block) {
	st := d.styles.Normal
	marker := "• "
	if b.Ordinal > 0 {
		marker = fmt.Sprintf("%d. ", b.Ordinal)
	}
	d.setStyle(st, false, "")

	lm, _, _, _ := d.pdf.GetMargins()
	d.pdf.SetLeftMargin(lm + listIndent)
	d.pdf.SetX(lm + listIndent)
	d.pdf.MultiCell(d.width-listIndent, st.LineHeight, d.clean(marker+b.Text), "", "L", false)
	d.pdf.SetLeftMargin(lm)
	d.pdf.Ln(st.SpaceAfter)
}

// code renders each line as a filled cell with the accent bar on the
// left edge, so a block split across a page break keeps its backdrop.
func (d *document) code(text string) {
	st := d.styles.Code
	d.setStyle(st, true, "")
	d.pdf.SetFillColor(colorCodeFill.R, colorCodeFill.G, colorCodeFill.B)
	d.pdf.SetDrawColor(colorAccent.R, colorAccent.G, colorAccent.B)
	d.pdf.SetLineWidth(1.5)

	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			line = " "
		}
		d.pdf.MultiCell(d.width, st.LineHeight, d.clean(line), "L", "L", true)
	}
	d.pdf.Ln(st.SpaceAfter)
}

func (d *document) quote(text string) {
	st := d.styles.Quote
	d.setStyle(st, false, "")
	d.pdf.SetDrawColor(colorAccent.R, colorAccent.G, colorAccent.B)
	d.pdf.SetLineWidth(1.5)

	lm, _, _, _ := d.pdf.GetMargins()
	d.pdf.SetLeftMargin(lm + quoteIndent)
	d.pdf.SetX(lm + quoteIndent)
	d.pdf.MultiCell(d.width-2*quoteIndent, st.LineHeight, d.clean(text), "L", "L", false)
	d.pdf.SetLeftMargin(lm)
	d.pdf.Ln(st.SpaceAfter)
}

// table draws a fixed grid with equal column widths. The first row is
// the header; body rows alternate the fill for readability.
func (d *document) table(rows [][]string) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}
	st := d.styles.Normal
	cols := len(rows[0])
	colW := d.width / float64(cols)
	lm, _, _, _ := d.pdf.GetMargins()

	for i, row := range rows {
		cells := make([]string, cols)
		for j := 0; j < cols && j < len(row); j++ {
			cells[j] = d.clean(row[j])
		}

		header := i == 0
		d.setStyle(st, false, "")
		if header {
			d.pdf.SetFont(d.fonts.body, "B", st.Size)
			d.pdf.SetTextColor(255, 255, 255)
		}

		rowH := d.rowHeight(cells, colW, st.LineHeight)
		if d.pdf.GetY()+rowH > d.pageH-marginBottom {
			d.pdf.AddPage()
		}

		y := d.pdf.GetY()
		d.pdf.SetDrawColor(colorGrid.R, colorGrid.G, colorGrid.B)
		d.pdf.SetLineWidth(0.5)
		switch {
		case header:
			d.pdf.SetFillColor(colorHeaderRow.R, colorHeaderRow.G, colorHeaderRow.B)
		case i%2 == 0:
			d.pdf.SetFillColor(colorAltRow.R, colorAltRow.G, colorAltRow.B)
		default:
			d.pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range cells {
			x := lm + float64(j)*colW
			d.pdf.Rect(x, y, colW, rowH, "FD")
			d.pdf.SetXY(x+cellPad, y+cellPad)
			d.pdf.MultiCell(colW-2*cellPad, st.LineHeight, cell, "", "L", false)
		}
		d.pdf.SetXY(lm, y+rowH)
	}
	d.pdf.Ln(d.styles.Code.SpaceAfter)
}

// rowHeight sizes a row to its tallest wrapped cell.
func (d *document) rowHeight(cells []string, colW, lineH float64) float64 {
	maxLines := 1
	for _, cell := range cells {
		if cell == "" {
			continue
		}
		if n := len(d.pdf.SplitText(cell, colW-2*cellPad)); n > maxLines {
			maxLines = n
		}
	}
	return float64(maxLines)*lineH + 2*cellPad
}
