// Package docxrender writes a document as a WordprocessingML package.
//
// The package is assembled by hand from XML part templates and zipped
// with archive/zip; no external Word library is involved, which keeps
// the output deterministic and the dependency surface small.
package docxrender

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/diliima/markdown-to-pdf-api/internal/block"
	"github.com/diliima/markdown-to-pdf-api/internal/inline"
	"github.com/diliima/markdown-to-pdf-api/internal/textutil"
	"github.com/diliima/markdown-to-pdf-api/pkg/logger"
)

// ErrEncode indicates the OOXML package could not be assembled.
var ErrEncode = errors.New("encode docx package")

const quoteBorderColor = "3498DB"

var hexColor = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// Renderer converts a block sequence into DOCX bytes.
type Renderer struct{}

// New builds a Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render produces a complete .docx package for the given blocks. An
// empty or nil block slice yields a valid document with an empty body.
func (r *Renderer) Render(ctx context.Context, blocks []block.Block) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render docx: %w", err)
	}

	var body strings.Builder
	body.WriteString(documentOpen)
	for i := range blocks {
		body.WriteString(blockXML(&blocks[i]))
	}
	body.WriteString(documentClose)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/_rels/document.xml.rels", wordRelsXML},
		{"word/styles.xml", stylesXML},
		{"word/numbering.xml", numberingXML},
		{"word/document.xml", body.String()},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("%w: create %s: %v", ErrEncode, part.name, err)
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, fmt.Errorf("%w: write %s: %v", ErrEncode, part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: close archive: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

func blockXML(b *block.Block) string {
	switch b.Kind {
	case block.KindTitle:
		return styledParagraph("Title", plainRuns(b.Text))
	case block.KindHeading:
		style := "Heading2"
		switch b.Level {
		case 1:
			style = "Heading1"
		case 3:
			style = "Heading3"
		}
		return styledParagraph(style, plainRuns(b.Text))
	case block.KindParagraph:
		return styledParagraph("Normal", spanRuns(b.Spans))
	case block.KindListItem:
		marker := "• "
		if b.Ordinal > 0 {
			marker = fmt.Sprintf("%d. ", b.Ordinal)
		}
		return styledParagraph("ListParagraph", plainRuns(marker+b.Text))
	case block.KindCode:
		return codeParagraph(b.Text)
	case block.KindQuote:
		return quoteParagraph(b.Text)
	case block.KindTable:
		return tableXML(b.Rows)
	default:
		return styledParagraph("Normal", plainRuns(b.PlainText()))
	}
}

func styledParagraph(style, runs string) string {
	var sb strings.Builder
	sb.WriteString("    <w:p><w:pPr><w:pStyle w:val=\"")
	sb.WriteString(style)
	sb.WriteString("\"/></w:pPr>")
	sb.WriteString(runs)
	sb.WriteString("</w:p>\n")
	return sb.String()
}

// codeParagraph joins the code lines into one paragraph with explicit
// line breaks so indentation inside the block survives.
func codeParagraph(text string) string {
	lines := strings.Split(text, "\n")
	var runs strings.Builder
	for i, line := range lines {
		if i > 0 {
			runs.WriteString("<w:r><w:br/></w:r>")
		}
		runs.WriteString("<w:r><w:t xml:space=\"preserve\">")
		runs.WriteString(esc(line))
		runs.WriteString("</w:t></w:r>")
	}
	return styledParagraph("Code", runs.String())
}

// quoteParagraph adds the accent left border on top of the Quote style.
// The border is cosmetic: if the color constant is ever invalid the
// paragraph is emitted without it and a warning is logged.
func quoteParagraph(text string) string {
	border, err := quoteBorder(quoteBorderColor)
	if err != nil {
		logger.Warn("quote border skipped", logger.F("error", err.Error()))
		border = ""
	}
	var sb strings.Builder
	sb.WriteString("    <w:p><w:pPr><w:pStyle w:val=\"Quote\"/>")
	sb.WriteString(border)
	sb.WriteString("</w:pPr>")
	sb.WriteString(plainRuns(text))
	sb.WriteString("</w:p>\n")
	return sb.String()
}

func quoteBorder(color string) (string, error) {
	if !hexColor.MatchString(color) {
		return "", fmt.Errorf("invalid border color %q", color)
	}
	return `<w:pBdr><w:left w:val="single" w:sz="18" w:space="8" w:color="` + color + `"/></w:pBdr>`, nil
}

func tableXML(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("    <w:tbl><w:tblPr><w:tblStyle w:val=\"TableGrid\"/><w:tblW w:w=\"0\" w:type=\"auto\"/></w:tblPr>\n")
	for i, row := range rows {
		sb.WriteString("      <w:tr>")
		for _, cell := range row {
			sb.WriteString(cellXML(cell, i == 0))
		}
		sb.WriteString("</w:tr>\n")
	}
	sb.WriteString("    </w:tbl>\n")
	// A table must be followed by a paragraph to stay valid when it is
	// the last body element.
	sb.WriteString("    <w:p/>\n")
	return sb.String()
}

func cellXML(text string, header bool) string {
	var sb strings.Builder
	sb.WriteString("<w:tc><w:tcPr>")
	if header {
		sb.WriteString(`<w:shd w:val="clear" w:color="auto" w:fill="4472C4"/>`)
	}
	sb.WriteString("</w:tcPr><w:p>")
	if header {
		sb.WriteString(`<w:r><w:rPr><w:b/><w:color w:val="FFFFFF"/></w:rPr><w:t xml:space="preserve">`)
	} else {
		sb.WriteString(`<w:r><w:t xml:space="preserve">`)
	}
	sb.WriteString(esc(text))
	sb.WriteString("</w:t></w:r></w:p></w:tc>")
	return sb.String()
}

func plainRuns(text string) string {
	if text == "" {
		return ""
	}
	return "<w:r><w:t xml:space=\"preserve\">" + esc(text) + "</w:t></w:r>"
}

func spanRuns(spans []inline.Span) string {
	var sb strings.Builder
	for _, s := range spans {
		if s.Text == "" {
			continue
		}
		sb.WriteString("<w:r>")
		if props := runProps(s); props != "" {
			sb.WriteString("<w:rPr>")
			sb.WriteString(props)
			sb.WriteString("</w:rPr>")
		}
		sb.WriteString("<w:t xml:space=\"preserve\">")
		sb.WriteString(esc(s.Text))
		sb.WriteString("</w:t></w:r>")
	}
	return sb.String()
}

func runProps(s inline.Span) string {
	var sb strings.Builder
	if s.Code {
		sb.WriteString(`<w:rFonts w:ascii="Courier New" w:hAnsi="Courier New"/><w:sz w:val="18"/>`)
	}
	if s.Bold {
		sb.WriteString("<w:b/>")
	}
	if s.Italic {
		sb.WriteString("<w:i/>")
	}
	if s.Underline {
		sb.WriteString(`<w:u w:val="single"/>`)
	}
	return sb.String()
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func esc(s string) string {
	return xmlReplacer.Replace(textutil.Sanitize(s))
}
