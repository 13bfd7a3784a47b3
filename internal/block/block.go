// Package block defines the intermediate representation shared by all
// parsers and renderers: an ordered sequence of typed content blocks.
// Sequence order is significant and always equals source document order.
// Blocks are never mutated after construction; one parser produces a
// sequence, exactly one renderer consumes it.
package block

import (
	"strings"

	"github.com/diliima/markdown-to-pdf-api/internal/inline"
)

// Kind discriminates the content block variants.
type Kind int

const (
	KindTitle Kind = iota
	KindHeading
	KindParagraph
	KindListItem
	KindCode
	KindQuote
	KindTable
)

// String returns the kind name, mainly for test failure messages.
func (k Kind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindHeading:
		return "heading"
	case KindParagraph:
		return "paragraph"
	case KindListItem:
		return "list-item"
	case KindCode:
		return "code"
	case KindQuote:
		return "quote"
	case KindTable:
		return "table"
	}
	return "unknown"
}

// Block is one element of the block model. Only the fields relevant to
// its Kind are set:
//
//	KindTitle               Text
//	KindHeading             Text, Level (1..3)
//	KindParagraph           Spans
//	KindListItem            Text, Ordinal (0 = bullet, >0 = numbered)
//	KindCode                Text (raw, newline-separated)
//	KindQuote               Text
//	KindTable               Rows (row-major cell text)
type Block struct {
	Kind    Kind
	Level   int
	Ordinal int
	Text    string
	Spans   []inline.Span
	Rows    [][]string
}

// Title constructs a document title block.
func Title(text string) Block {
	return Block{Kind: KindTitle, Text: text}
}

// Heading constructs a heading block. Levels outside 1..3 are clamped.
func Heading(level int, text string) Block {
	if level < 1 {
		level = 1
	}
	if level > 3 {
		level = 3
	}
	return Block{Kind: KindHeading, Level: level, Text: text}
}

// Paragraph constructs a paragraph block from ordered inline spans.
func Paragraph(spans []inline.Span) Block {
	return Block{Kind: KindParagraph, Spans: spans}
}

// ParagraphText constructs a paragraph holding a single plain span.
func ParagraphText(text string) Block {
	return Paragraph([]inline.Span{{Text: text}})
}

// ListItem constructs a list item. Ordinal 0 renders as a bullet;
// positive ordinals render as numbered items.
func ListItem(text string, ordinal int) Block {
	return Block{Kind: KindListItem, Ordinal: ordinal, Text: text}
}

// Code constructs a code block holding raw preformatted text.
func Code(text string) Block {
	return Block{Kind: KindCode, Text: text}
}

// Quote constructs a blockquote.
func Quote(text string) Block {
	return Block{Kind: KindQuote, Text: text}
}

// Table constructs a table block from row-major cell text. The first
// row is treated as the header row by renderers.
func Table(rows [][]string) Block {
	return Block{Kind: KindTable, Rows: rows}
}

// PlainText returns the block's visible text. For paragraphs this is
// the span concatenation; for tables, cells joined by single spaces.
func (b Block) PlainText() string {
	switch b.Kind {
	case KindParagraph:
		return inline.Concat(b.Spans)
	case KindTable:
		var parts []string
		for _, row := range b.Rows {
			parts = append(parts, strings.Join(row, " "))
		}
		return strings.Join(parts, " ")
	default:
		return b.Text
	}
}

// PlainText joins the visible text of a block sequence with single
// spaces. Used by the text-preservation tests.
func PlainText(blocks []Block) string {
	var parts []string
	for _, b := range blocks {
		if t := b.PlainText(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
