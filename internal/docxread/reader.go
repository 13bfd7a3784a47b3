// Package docxread extracts the block model from an existing Word
// document. The document body is walked in its stored element order so
// that tables interleaved between paragraphs keep their position;
// enumerating all paragraphs and then all tables would corrupt the
// layout of mixed documents.
package docxread

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	docx "github.com/fumiama/go-docx"

	"github.com/diliima/markdown-to-pdf-api/internal/block"
	"github.com/diliima/markdown-to-pdf-api/internal/inline"
)

// Sentinel errors for reader operations.
var (
	ErrNotWordDocument = errors.New("input is not a Word document container")
	ErrMalformed       = errors.New("Word document cannot be parsed")
)

// emptyPlaceholder is emitted for a document with no paragraphs and no
// tables, so callers that treat a non-empty block sequence as success
// keep working. Disable with WithoutEmptyPlaceholder.
const emptyPlaceholder = "Document converted from DOCX"

// Option configures a Reader.
type Option func(*Reader)

// WithoutEmptyPlaceholder makes Read return an empty sequence for an
// empty document instead of the placeholder paragraph.
func WithoutEmptyPlaceholder() Option {
	return func(r *Reader) {
		r.placeholder = false
	}
}

// Reader converts DOCX bytes into an ordered block sequence.
type Reader struct {
	placeholder bool
}

// New creates a Reader with the placeholder behavior enabled.
func New(opts ...Option) *Reader {
	r := &Reader{placeholder: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read parses the document and walks its body in stored order. The ZIP
// container signature is checked before any parse attempt; a byte
// stream without it fails fast with ErrNotWordDocument.
func (r *Reader) Read(ctx context.Context, data []byte) ([]block.Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(data) < 2 || data[0] != 'P' || data[1] != 'K' {
		return nil, fmt.Errorf("%w: missing PK signature", ErrNotWordDocument)
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var blocks []block.Block
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			if b, ok := convertParagraph(it); ok {
				blocks = append(blocks, b)
			}
		case *docx.Table:
			if b, ok := convertTable(it); ok {
				blocks = append(blocks, b)
			}
		}
	}

	if len(blocks) == 0 && r.placeholder {
		blocks = append(blocks, block.ParagraphText(emptyPlaceholder))
	}
	return blocks, nil
}

// convertParagraph classifies a paragraph by its style name and builds
// the matching block. Whitespace-only paragraphs are dropped.
func convertParagraph(p *docx.Paragraph) (block.Block, bool) {
	spans := paragraphSpans(p)
	text := strings.TrimSpace(inline.Concat(spans))
	if text == "" {
		return block.Block{}, false
	}

	style := ""
	if p.Properties != nil && p.Properties.Style != nil {
		style = strings.ToLower(p.Properties.Style.Val)
	}

	switch {
	case strings.Contains(style, "title"):
		return block.Title(text), true
	case strings.Contains(style, "heading"):
		return block.Heading(headingLevel(style), text), true
	case strings.Contains(style, "list"), strings.Contains(style, "bullet"):
		return block.ListItem(text, 0), true
	default:
		return block.Paragraph(spans), true
	}
}

// headingLevel extracts the trailing digit of a heading style name
// ("Heading2", "heading 3"); anything else maps to level 2.
func headingLevel(style string) int {
	for i := len(style) - 1; i >= 0; i-- {
		if c := style[i]; c >= '1' && c <= '9' {
			return int(c - '0')
		}
	}
	return 2
}

// paragraphSpans flattens the paragraph's runs into inline spans,
// carrying run-level bold/italic/underline formatting.
func paragraphSpans(p *docx.Paragraph) []inline.Span {
	var spans []inline.Span
	appendRun := func(run *docx.Run) {
		text := runText(run)
		if text == "" {
			return
		}
		span := inline.Span{Text: text}
		if rp := run.RunProperties; rp != nil {
			span.Bold = rp.Bold != nil
			span.Italic = rp.Italic != nil
			span.Underline = underlined(rp.Underline)
		}
		spans = append(spans, span)
	}

	for _, child := range p.Children {
		switch c := child.(type) {
		case *docx.Run:
			appendRun(c)
		case *docx.Hyperlink:
			appendRun(&c.Run)
		}
	}
	return spans
}

// underlined reports whether the w:u element describes a visible
// underline. Word writes w:val="none" to cancel one inherited from the
// style, so element presence alone is not enough.
func underlined(u *docx.Underline) bool {
	if u == nil {
		return false
	}
	switch strings.ToLower(u.Val) {
	case "none", "false", "0":
		return false
	}
	return true
}

// runText concatenates the text nodes of a run.
func runText(run *docx.Run) string {
	var b strings.Builder
	for _, child := range run.Children {
		if t, ok := child.(*docx.Text); ok {
			b.WriteString(t.Text)
		}
	}
	return b.String()
}

// convertTable flattens each cell to the space-joined plain text of its
// paragraphs. Cell formatting is not preserved; cells render with the
// default style downstream.
func convertTable(t *docx.Table) (block.Block, bool) {
	var rows [][]string
	for _, tr := range t.TableRows {
		var row []string
		for _, tc := range tr.TableCells {
			var parts []string
			for _, p := range tc.Paragraphs {
				if text := strings.TrimSpace(inline.Concat(paragraphSpans(p))); text != "" {
					parts = append(parts, text)
				}
			}
			row = append(row, strings.Join(parts, " "))
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return block.Block{}, false
	}
	return block.Table(rows), true
}
